package indicators

import (
	"math"

	"github.com/skalibog/signalengine/pkg/models"
)

// MomentumResult результат моментума (rate of change)
type MomentumResult struct {
	ROC      float64 // %
	Signal   Signal
	Strength float64
}

const momentumDeadZone = 0.1

// Momentum изменение цены в процентах за period баров
func Momentum(closes []float64, period int) MomentumResult {
	if period < 1 || len(closes) < period+1 {
		return MomentumResult{Signal: SignalInsufficient}
	}

	base := closes[len(closes)-1-period]
	result := MomentumResult{Signal: SignalNeutral}
	if base != 0 {
		result.ROC = (last(closes) - base) / base * 100
	}

	switch {
	case result.ROC >= momentumDeadZone:
		result.Signal = SignalBullish
	case result.ROC <= -momentumDeadZone:
		result.Signal = SignalBearish
	default:
		return result
	}
	result.Strength = clamp01(math.Abs(result.ROC) / 5)

	return result
}

// SupertrendResult результат Supertrend
type SupertrendResult struct {
	Value     float64
	Direction Trend // rising: линия под ценой, falling: над ценой
	Flipped   bool
	Signal    Signal
	Strength  float64
}

// Supertrend строит полосы (high+low)/2 ± multiplier*ATR и ведет направление:
// оно сохраняется, пока закрытие остается по свою сторону предыдущей финальной полосы.
func Supertrend(candles []models.Candle, period int, multiplier float64) SupertrendResult {
	atr := atrSeries(candles, period)
	if atr == nil {
		return SupertrendResult{Signal: SignalInsufficient, Direction: TrendFlat}
	}

	start := period - 1
	n := len(candles)
	upper := make([]float64, n)
	lower := make([]float64, n)
	up := make([]bool, n)

	for i := start; i < n; i++ {
		c := candles[i]
		mid := (c.High + c.Low) / 2
		basicUpper := mid + multiplier*atr[i]
		basicLower := mid - multiplier*atr[i]

		if i == start {
			upper[i], lower[i] = basicUpper, basicLower
			up[i] = c.Close >= mid
			continue
		}

		prevClose := candles[i-1].Close
		if basicUpper < upper[i-1] || prevClose > upper[i-1] {
			upper[i] = basicUpper
		} else {
			upper[i] = upper[i-1]
		}
		if basicLower > lower[i-1] || prevClose < lower[i-1] {
			lower[i] = basicLower
		} else {
			lower[i] = lower[i-1]
		}

		switch {
		case up[i-1] && c.Close < lower[i-1]:
			up[i] = false
		case !up[i-1] && c.Close > upper[i-1]:
			up[i] = true
		case up[i-1] && c.Close == lower[i-1], !up[i-1] && c.Close == upper[i-1]:
			// Закрытие ровно на полосе: решает середина свечи
			up[i] = c.Close >= mid
		default:
			up[i] = up[i-1]
		}
	}

	end := n - 1
	result := SupertrendResult{Flipped: up[end] != up[end-1]}
	if up[end] {
		result.Value, result.Direction = lower[end], TrendRising
	} else {
		result.Value, result.Direction = upper[end], TrendFalling
	}

	switch {
	case result.Flipped && up[end]:
		result.Signal, result.Strength = SignalBuy, 1
	case result.Flipped:
		result.Signal, result.Strength = SignalSell, 1
	case up[end]:
		result.Signal, result.Strength = SignalBullish, 0.6
	default:
		result.Signal, result.Strength = SignalBearish, 0.6
	}

	return result
}
