package indicators

import (
	"sort"

	"github.com/skalibog/signalengine/pkg/models"
)

// FibRatios уровни коррекции Фибоначчи
var FibRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

const fibMinCandles = 10

// FibLevel уровень коррекции
type FibLevel struct {
	Ratio float64
	Price float64
}

// FibonacciResult результат уровней Фибоначчи
type FibonacciResult struct {
	SwingHigh  float64
	SwingLow   float64
	Uptrend    bool // максимум сформирован позже минимума
	Levels     []FibLevel
	Support    *FibLevel
	Resistance *FibLevel
	Signal     Signal
}

// Fibonacci строит уровни коррекции от экстремумов последних lookback свечей.
// Если максимум позже минимума, коррекция считается вниз от максимума, иначе вверх от минимума.
func Fibonacci(candles []models.Candle, lookback int) FibonacciResult {
	if lookback < fibMinCandles || len(candles) < fibMinCandles {
		return FibonacciResult{Signal: SignalInsufficient}
	}
	if lookback > len(candles) {
		lookback = len(candles)
	}

	window := candles[len(candles)-lookback:]
	highIdx, lowIdx := 0, 0
	for i, c := range window {
		if c.High > window[highIdx].High {
			highIdx = i
		}
		if c.Low < window[lowIdx].Low {
			lowIdx = i
		}
	}

	result := FibonacciResult{
		SwingHigh: window[highIdx].High,
		SwingLow:  window[lowIdx].Low,
		Uptrend:   highIdx > lowIdx,
		Signal:    SignalNeutral,
	}

	span := result.SwingHigh - result.SwingLow
	if span <= 0 {
		return result
	}

	result.Levels = make([]FibLevel, len(FibRatios))
	for i, r := range FibRatios {
		price := result.SwingLow + span*r
		if result.Uptrend {
			price = result.SwingHigh - span*r
		}
		result.Levels[i] = FibLevel{Ratio: r, Price: price}
	}

	sorted := make([]FibLevel, len(result.Levels))
	copy(sorted, result.Levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	price := window[len(window)-1].Close
	for i := range sorted {
		if sorted[i].Price <= price {
			lvl := sorted[i]
			result.Support = &lvl
			continue
		}
		lvl := sorted[i]
		result.Resistance = &lvl
		break
	}

	switch {
	case result.Uptrend:
		result.Signal = SignalBullish
	default:
		result.Signal = SignalBearish
	}

	return result
}
