package indicators

import "github.com/markcheno/go-talib"

const squeezeBandwidth = 4.0

// BollingerResult результат полос Боллинджера
type BollingerResult struct {
	Upper     float64
	Middle    float64
	Lower     float64
	PercentB  float64
	Bandwidth float64
	Squeeze   bool
	Signal    Signal
	Strength  float64
}

// Bollinger рассчитывает полосы: SMA ± stdDev * стандартное отклонение генеральной совокупности
func Bollinger(closes []float64, period int, stdDev float64) BollingerResult {
	if period < 1 || len(closes) < period {
		return BollingerResult{Signal: SignalInsufficient}
	}

	middle := last(talib.Sma(closes, period))
	deviation := last(talib.StdDev(closes, period, 1.0))
	price := last(closes)

	result := BollingerResult{
		Upper:  middle + stdDev*deviation,
		Middle: middle,
		Lower:  middle - stdDev*deviation,
	}

	width := result.Upper - result.Lower
	if width > 0 {
		result.PercentB = (price - result.Lower) / width * 100
	} else {
		result.PercentB = 50
	}
	if middle != 0 {
		result.Bandwidth = width / middle * 100
	}
	result.Squeeze = result.Bandwidth < squeezeBandwidth

	switch {
	case result.PercentB >= 100:
		result.Signal, result.Strength = SignalOverbought, 1
	case result.PercentB <= 0:
		result.Signal, result.Strength = SignalOversold, 1
	case result.PercentB > 80:
		result.Signal, result.Strength = SignalBearish, (result.PercentB-80)/20
	case result.PercentB < 20:
		result.Signal, result.Strength = SignalBullish, (20-result.PercentB)/20
	default:
		result.Signal = SignalNeutral
	}

	return result
}
