package indicators

import (
	"math"

	"github.com/skalibog/signalengine/pkg/models"
)

// Volatility режим волатильности по ATR
type Volatility string

const (
	VolatilityExtreme Volatility = "extreme"
	VolatilityHigh    Volatility = "high"
	VolatilityNormal  Volatility = "normal"
	VolatilityCalm    Volatility = "calm"
	VolatilityLow     Volatility = "low"
)

// atrBaselineBars окно средней ATR для поиска всплеска волатильности
const atrBaselineBars = 50

// ATRResult результат Average True Range
type ATRResult struct {
	Value    float64
	Percent  float64 // % от цены закрытия
	Baseline float64 // средняя ATR за atrBaselineBars
	Regime   Volatility
	Extreme  bool
	Signal   Signal
}

// ATR рассчитывает средний истинный диапазон со сглаживанием Уайлдера
func ATR(candles []models.Candle, period int) ATRResult {
	series := atrSeries(candles, period)
	if series == nil {
		return ATRResult{Signal: SignalInsufficient, Regime: VolatilityNormal}
	}

	result := ATRResult{Value: last(series), Signal: SignalNeutral}

	valid := series[period-1:]
	if len(valid) > atrBaselineBars {
		valid = valid[len(valid)-atrBaselineBars:]
	}
	result.Baseline = mean(valid)

	if price := candles[len(candles)-1].Close; price > 0 {
		result.Percent = result.Value / price * 100
	}

	// Пороги для криптовалютного рынка
	switch {
	case result.Percent > 5:
		result.Regime = VolatilityExtreme
	case result.Percent > 3:
		result.Regime = VolatilityHigh
	case result.Percent < 0.5:
		result.Regime = VolatilityLow
	case result.Percent < 1:
		result.Regime = VolatilityCalm
	default:
		result.Regime = VolatilityNormal
	}

	result.Extreme = result.Regime == VolatilityExtreme ||
		(result.Baseline > 0 && result.Value > 2*result.Baseline)

	return result
}

// atrSeries возвращает ряд ATR длиной len(candles); значимы элементы с period-1
func atrSeries(candles []models.Candle, period int) []float64 {
	if period < 1 || len(candles) < period+1 {
		return nil
	}

	tr := trueRanges(candles)
	atr := make([]float64, len(candles))
	atr[period-1] = mean(tr[:period])

	p := float64(period)
	for i := period; i < len(candles); i++ {
		atr[i] = (atr[i-1]*(p-1) + tr[i]) / p
	}
	return atr
}

func trueRanges(candles []models.Candle) []float64 {
	tr := make([]float64, len(candles))
	tr[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		tr[i] = trueRange(candles[i], candles[i-1].Close)
	}
	return tr
}

func trueRange(c models.Candle, prevClose float64) float64 {
	return math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
}

// TrendStrength сила тренда по ADX
type TrendStrength string

const (
	TrendStrong     TrendStrength = "strong"
	TrendDeveloping TrendStrength = "developing"
	TrendWeak       TrendStrength = "weak"
)

// ADXResult результат ADX
type ADXResult struct {
	ADX      float64
	PlusDI   float64
	MinusDI  float64
	Strength TrendStrength
	Signal   Signal
}

// ADX сглаживает TR, +DM и -DM по Уайлдеру и возвращает DX последнего бара.
// DX повторно не сглаживается.
func ADX(candles []models.Candle, period int) ADXResult {
	if period < 1 || len(candles) < 2*period+1 {
		return ADXResult{Signal: SignalInsufficient, Strength: TrendWeak}
	}

	var smTR, smPlus, smMinus float64
	p := float64(period)

	for i := 1; i < len(candles); i++ {
		tr := trueRange(candles[i], candles[i-1].Close)
		plus, minus := directionalMovement(candles[i], candles[i-1])

		if i <= period {
			smTR += tr
			smPlus += plus
			smMinus += minus
			continue
		}
		smTR = smTR - smTR/p + tr
		smPlus = smPlus - smPlus/p + plus
		smMinus = smMinus - smMinus/p + minus
	}

	result := ADXResult{Signal: SignalNeutral}
	if smTR > 0 {
		result.PlusDI = 100 * smPlus / smTR
		result.MinusDI = 100 * smMinus / smTR
	}
	if sum := result.PlusDI + result.MinusDI; sum > 0 {
		result.ADX = 100 * math.Abs(result.PlusDI-result.MinusDI) / sum
	}

	switch {
	case result.ADX >= 25:
		result.Strength = TrendStrong
	case result.ADX >= 20:
		result.Strength = TrendDeveloping
	default:
		result.Strength = TrendWeak
	}

	switch {
	case result.PlusDI > result.MinusDI:
		result.Signal = SignalBullish
	case result.PlusDI < result.MinusDI:
		result.Signal = SignalBearish
	}

	return result
}

func directionalMovement(cur, prev models.Candle) (plus, minus float64) {
	up := cur.High - prev.High
	down := prev.Low - cur.Low
	if up > down && up > 0 {
		plus = up
	}
	if down > up && down > 0 {
		minus = down
	}
	return plus, minus
}
