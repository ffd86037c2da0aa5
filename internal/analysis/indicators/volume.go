package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/skalibog/signalengine/pkg/models"
)

// OBVResult результат On-Balance Volume
type OBVResult struct {
	Value      float64
	Trend      Trend
	Divergence Divergence
	Signal     Signal
	Strength   float64
}

// OBV накапливает объем по знаку изменения цены закрытия, начиная с объема первой свечи
func OBV(candles []models.Candle, lookback int) OBVResult {
	if lookback < 2 || len(candles) < lookback+1 {
		return OBVResult{Signal: SignalInsufficient, Trend: TrendFlat, Divergence: DivergenceNone}
	}

	closes := models.Closes(candles)
	obv := talib.Obv(closes, models.Volumes(candles))

	result := OBVResult{
		Value:      last(obv),
		Trend:      seriesTrend(obv, lookback),
		Divergence: halvesDivergence(closes, obv, lookback),
	}

	switch {
	case result.Divergence == DivergenceBullish:
		result.Signal, result.Strength = SignalBullish, 1
	case result.Divergence == DivergenceBearish:
		result.Signal, result.Strength = SignalBearish, 1
	case result.Trend == TrendRising:
		result.Signal, result.Strength = SignalBullish, 0.5
	case result.Trend == TrendFalling:
		result.Signal, result.Strength = SignalBearish, 0.5
	default:
		result.Signal = SignalNeutral
	}

	return result
}

// VWAPResult результат VWAP с полосами отклонения
type VWAPResult struct {
	VWAP      float64
	StdDev    float64
	Upper1    float64
	Lower1    float64
	Upper2    float64
	Lower2    float64
	Deviation float64 // % цены от VWAP
	Sigmas    float64 // отклонение цены в σ, 0 при σ == 0
	Signal    Signal
	Strength  float64
}

const vwapMinCandles = 10

// VWAP считается от начала переданного ряда, без сброса по сессиям
func VWAP(candles []models.Candle) VWAPResult {
	if len(candles) < vwapMinCandles {
		return VWAPResult{Signal: SignalInsufficient}
	}

	price := candles[len(candles)-1].Close

	var tpv, volume float64
	for _, c := range candles {
		tpv += typicalPrice(c) * c.Volume
		volume += c.Volume
	}

	result := VWAPResult{VWAP: price, Signal: SignalNeutral}
	if volume > 0 {
		result.VWAP = tpv / volume

		var variance float64
		for _, c := range candles {
			d := typicalPrice(c) - result.VWAP
			variance += c.Volume * d * d
		}
		result.StdDev = math.Sqrt(variance / volume)
	}

	result.Upper1 = result.VWAP + result.StdDev
	result.Lower1 = result.VWAP - result.StdDev
	result.Upper2 = result.VWAP + 2*result.StdDev
	result.Lower2 = result.VWAP - 2*result.StdDev

	if result.VWAP != 0 {
		result.Deviation = (price - result.VWAP) / result.VWAP * 100
	}
	if result.StdDev > 0 {
		result.Sigmas = (price - result.VWAP) / result.StdDev
	}

	switch {
	case result.StdDev > 0 && price > result.Upper2:
		result.Signal, result.Strength = SignalOverbought, 1
	case result.StdDev > 0 && price < result.Lower2:
		result.Signal, result.Strength = SignalOversold, 1
	case price > result.VWAP:
		result.Signal, result.Strength = SignalBullish, clamp01(math.Abs(result.Sigmas)/2)
	case price < result.VWAP:
		result.Signal, result.Strength = SignalBearish, clamp01(math.Abs(result.Sigmas)/2)
	}

	return result
}

func typicalPrice(c models.Candle) float64 {
	return (c.High + c.Low + c.Close) / 3
}

// CVDResult результат кумулятивной дельты объема
type CVDResult struct {
	Value      float64
	Delta      float64 // дельта за окно
	Trend      Trend
	Divergence Divergence
	Signal     Signal
	Strength   float64
}

// CVD оценивает дельту свечи по положению закрытия в диапазоне:
// delta = volume * (2*(close-low)/(high-low) - 1)
func CVD(candles []models.Candle, lookback int) CVDResult {
	if lookback < 2 || len(candles) < lookback+1 {
		return CVDResult{Signal: SignalInsufficient, Trend: TrendFlat, Divergence: DivergenceNone}
	}

	cvd := make([]float64, len(candles))
	running := 0.0
	for i, c := range candles {
		running += candleDelta(c)
		cvd[i] = running
	}

	n := len(cvd) - 1
	window := candles[len(candles)-lookback:]
	var windowVolume float64
	for _, c := range window {
		windowVolume += c.Volume
	}

	result := CVDResult{
		Value:      cvd[n],
		Delta:      cvd[n] - cvd[n-lookback],
		Trend:      seriesTrend(cvd, lookback),
		Divergence: halvesDivergence(models.Closes(candles), cvd, lookback),
	}
	if windowVolume > 0 {
		result.Strength = clamp01(math.Abs(result.Delta) / windowVolume)
	}

	switch {
	case result.Divergence == DivergenceBullish:
		result.Signal, result.Strength = SignalBullish, 1
	case result.Divergence == DivergenceBearish:
		result.Signal, result.Strength = SignalBearish, 1
	case result.Trend == TrendRising:
		result.Signal = SignalBullish
	case result.Trend == TrendFalling:
		result.Signal = SignalBearish
	default:
		result.Signal, result.Strength = SignalNeutral, 0
	}

	return result
}

func candleDelta(c models.Candle) float64 {
	rng := c.High - c.Low
	if rng <= 0 {
		return 0
	}
	return c.Volume * (2*(c.Close-c.Low)/rng - 1)
}

// VolumeResult результат анализа объема последней свечи
type VolumeResult struct {
	Current float64
	Average float64
	Ratio   float64
	Level   VolumeLevel
	Signal  Signal
	// Strength доля веса: 1 для высокого объема, 0.5 для обычного
	Strength float64
}

// VolumeLevel уровень объема относительно среднего
type VolumeLevel string

const (
	VolumeHigh   VolumeLevel = "high"
	VolumeNormal VolumeLevel = "normal"
	VolumeQuiet  VolumeLevel = "quiet"
	VolumeLow    VolumeLevel = "low"
)

// Volume сравнивает объем последней свечи со средним за period предыдущих
func Volume(candles []models.Candle, period int) VolumeResult {
	if period < 1 || len(candles) < period+1 {
		return VolumeResult{Signal: SignalInsufficient, Level: VolumeLow}
	}

	lastCandle := candles[len(candles)-1]
	prev := models.Volumes(candles[len(candles)-1-period : len(candles)-1])

	result := VolumeResult{
		Current: lastCandle.Volume,
		Average: last(talib.Sma(prev, period)),
		Signal:  SignalNeutral,
	}
	if result.Average > 0 {
		result.Ratio = result.Current / result.Average
	}

	switch {
	case result.Ratio >= 1.5:
		result.Level, result.Strength = VolumeHigh, 1
	case result.Ratio >= 1.0:
		result.Level, result.Strength = VolumeNormal, 0.5
	case result.Ratio >= 0.5:
		result.Level = VolumeQuiet
	default:
		result.Level = VolumeLow
	}

	if result.Strength > 0 {
		switch {
		case lastCandle.Bullish():
			result.Signal = SignalBullish
		case lastCandle.Bearish():
			result.Signal = SignalBearish
		default:
			result.Strength = 0
		}
	}

	return result
}

// seriesTrend сравнивает последнее значение ряда со значением lookback баров назад
func seriesTrend(series []float64, lookback int) Trend {
	n := len(series) - 1
	if n < lookback {
		return TrendFlat
	}
	switch d := series[n] - series[n-lookback]; {
	case d > 0:
		return TrendRising
	case d < 0:
		return TrendFalling
	default:
		return TrendFlat
	}
}
