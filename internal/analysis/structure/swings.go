package structure

import (
	"time"

	"github.com/skalibog/signalengine/pkg/models"
)

// SwingKind тип экстремума
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// Swing локальный экстремум. Список свингов строится один раз за вызов и не изменяется;
// статус пробоя хранится отдельно (см. detectBreaks).
type Swing struct {
	Kind  SwingKind
	Index int
	Price float64
	Time  time.Time
}

// findSwings ищет бары, которые строго выше (ниже) всех баров в окне ±lookback.
// Равенство с соседом исключает бар.
func findSwings(candles []models.Candle, lookback int) (highs, lows []Swing) {
	for i := lookback; i < len(candles)-lookback; i++ {
		isHigh, isLow := true, true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		if isHigh {
			highs = append(highs, Swing{Kind: SwingHigh, Index: i, Price: candles[i].High, Time: candles[i].OpenTime})
		}
		if isLow {
			lows = append(lows, Swing{Kind: SwingLow, Index: i, Price: candles[i].Low, Time: candles[i].OpenTime})
		}
	}
	return highs, lows
}

// Bias направление структуры
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasRanging Bias = "ranging"
)

func (b Bias) sign() float64 {
	switch b {
	case BiasBullish:
		return 1
	case BiasBearish:
		return -1
	}
	return 0
}

// TrendResult структура рынка по последним свингам
type TrendResult struct {
	Trend       Bias
	Strength    float64
	HigherHighs int
	LowerHighs  int
	HigherLows  int
	LowerLows   int
}

const trendSwings = 4

// structureTrend сравнивает попарно последние 4 максимума и 4 минимума
func structureTrend(highs, lows []Swing) TrendResult {
	result := TrendResult{Trend: BiasRanging}

	hs := tail(highs, trendSwings)
	for i := 1; i < len(hs); i++ {
		switch {
		case hs[i].Price > hs[i-1].Price:
			result.HigherHighs++
		case hs[i].Price < hs[i-1].Price:
			result.LowerHighs++
		}
	}

	ls := tail(lows, trendSwings)
	for i := 1; i < len(ls); i++ {
		switch {
		case ls[i].Price > ls[i-1].Price:
			result.HigherLows++
		case ls[i].Price < ls[i-1].Price:
			result.LowerLows++
		}
	}

	pairs := float64(2 * (trendSwings - 1))
	switch {
	case result.HigherHighs >= 2 && result.HigherLows >= 2:
		result.Trend = BiasBullish
		result.Strength = min(1, float64(result.HigherHighs+result.HigherLows)/pairs)
	case result.LowerHighs >= 2 && result.LowerLows >= 2:
		result.Trend = BiasBearish
		result.Strength = min(1, float64(result.LowerHighs+result.LowerLows)/pairs)
	}

	return result
}

func tail(swings []Swing, n int) []Swing {
	if len(swings) <= n {
		return swings
	}
	return swings[len(swings)-n:]
}
