// Package indicators содержит чистые функции технических индикаторов.
//
// Каждая функция принимает ряд (цены закрытия или свечи) и параметры, возвращает
// собственный тип результата и никогда не паникует: если данных меньше минимума,
// результат помечается сигналом SignalInsufficient.
package indicators

import "math"

// Signal категориальный сигнал индикатора
type Signal string

const (
	SignalInsufficient     Signal = "insufficient_data"
	SignalNeutral          Signal = "neutral"
	SignalBullish          Signal = "bullish"
	SignalBearish          Signal = "bearish"
	SignalOverbought       Signal = "overbought"
	SignalOversold         Signal = "oversold"
	SignalBuy              Signal = "buy"
	SignalSell             Signal = "sell"
	SignalStrongBuy        Signal = "strong_buy"
	SignalStrongSell       Signal = "strong_sell"
	SignalBullishCrossover Signal = "bullish_crossover"
	SignalBearishCrossover Signal = "bearish_crossover"
)

// Ready сообщает, был ли индикатор рассчитан
func (s Signal) Ready() bool {
	return s != SignalInsufficient && s != ""
}

// Divergence направление дивергенции цены и осциллятора
type Divergence string

const (
	DivergenceNone    Divergence = "none"
	DivergenceBullish Divergence = "bullish"
	DivergenceBearish Divergence = "bearish"
)

// Trend направление ряда
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// divergenceLookback окно поиска дивергенций для OBV, CVD и RSI
const divergenceLookback = 20

// halvesDivergence делит окно пополам и сравнивает экстремумы цены и осциллятора.
// Цена обновила минимум, а осциллятор нет: бычья дивергенция. Медвежья зеркально.
func halvesDivergence(price, osc []float64, lookback int) Divergence {
	n := len(price)
	if len(osc) < n {
		n = len(osc)
	}
	if lookback > n {
		lookback = n
	}
	if lookback < 4 {
		return DivergenceNone
	}

	p := price[len(price)-lookback:]
	o := osc[len(osc)-lookback:]
	half := lookback / 2

	pFirstHigh, pFirstLow := extremes(p[:half])
	pSecondHigh, pSecondLow := extremes(p[half:])
	oFirstHigh, oFirstLow := extremes(o[:half])
	oSecondHigh, oSecondLow := extremes(o[half:])

	bullish := pSecondLow < pFirstLow && oSecondLow > oFirstLow
	bearish := pSecondHigh > pFirstHigh && oSecondHigh < oFirstHigh

	switch {
	case bullish && !bearish:
		return DivergenceBullish
	case bearish && !bullish:
		return DivergenceBearish
	default:
		return DivergenceNone
	}
}

// extremes возвращает максимум и минимум непустого ряда
func extremes(values []float64) (float64, float64) {
	hi, lo := values[0], values[0]
	for _, v := range values[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	return hi, lo
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func last(values []float64) float64 {
	return values[len(values)-1]
}

// crossover определяет пересечение по двум последним парам значений.
// Равенство текущих значений пересечением не считается.
func crossover(prevA, prevB, curA, curB float64) Signal {
	switch {
	case prevA <= prevB && curA > curB:
		return SignalBullishCrossover
	case prevA >= prevB && curA < curB:
		return SignalBearishCrossover
	default:
		return SignalNeutral
	}
}
