package indicators

import "github.com/markcheno/go-talib"

// MACDTrend состояние гистограммы и линии MACD
type MACDTrend string

const (
	MACDStrongBullish MACDTrend = "strong_bullish"
	MACDWeakBullish   MACDTrend = "weak_bullish"
	MACDStrongBearish MACDTrend = "strong_bearish"
	MACDWeakBearish   MACDTrend = "weak_bearish"
	MACDNeutral       MACDTrend = "neutral"
)

// MACDResult результат MACD
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
	Trend     MACDTrend
	Crossover Signal
	Status    Signal
	Strength  float64
}

// MACD рассчитывает MACD, сигнальную линию и пересечение на последнем баре
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	if fast < 1 || slow < 1 || signal < 1 {
		return MACDResult{Status: SignalInsufficient, Trend: MACDNeutral, Crossover: SignalNeutral}
	}
	longest := max(fast, slow)
	if len(closes) < longest+signal {
		return MACDResult{Status: SignalInsufficient, Trend: MACDNeutral, Crossover: SignalNeutral}
	}

	fastSeries := talib.Ema(closes, fast)
	slowSeries := talib.Ema(closes, slow)

	line := make([]float64, 0, len(closes)-longest+1)
	for i := longest - 1; i < len(closes); i++ {
		line = append(line, fastSeries[i]-slowSeries[i])
	}
	signalSeries := talib.Ema(line, signal)

	n := len(line) - 1
	result := MACDResult{
		MACD:   line[n],
		Signal: signalSeries[n],
	}
	result.Histogram = result.MACD - result.Signal
	result.Trend = macdTrend(result.MACD, result.Histogram)
	result.Crossover = crossover(line[n-1], signalSeries[n-1], line[n], signalSeries[n])

	switch {
	case result.Crossover != SignalNeutral:
		result.Status, result.Strength = result.Crossover, 1
	case result.Trend == MACDStrongBullish:
		result.Status, result.Strength = SignalBullish, 0.7
	case result.Trend == MACDWeakBullish:
		result.Status, result.Strength = SignalBullish, 0.4
	case result.Trend == MACDStrongBearish:
		result.Status, result.Strength = SignalBearish, 0.7
	case result.Trend == MACDWeakBearish:
		result.Status, result.Strength = SignalBearish, 0.4
	default:
		result.Status = SignalNeutral
	}

	return result
}

func macdTrend(macd, hist float64) MACDTrend {
	switch {
	case hist > 0 && macd > 0:
		return MACDStrongBullish
	case hist > 0:
		return MACDWeakBullish
	case hist < 0 && macd < 0:
		return MACDStrongBearish
	case hist < 0:
		return MACDWeakBearish
	case macd > 0:
		return MACDWeakBullish
	case macd < 0:
		return MACDWeakBearish
	default:
		return MACDNeutral
	}
}
