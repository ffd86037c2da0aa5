package indicators

import "github.com/markcheno/go-talib"

// StochRSIResult результат Stochastic RSI
type StochRSIResult struct {
	K         float64
	D         float64
	Crossover Signal
	Signal    Signal
	Strength  float64
}

// StochRSI пересчитывает RSI в скользящем окне, нормирует его стохастиком
// за stochPeriod и дважды сглаживает простой средней (K, затем D).
func StochRSI(closes []float64, rsiPeriod, stochPeriod, kPeriod, dPeriod int, overbought, oversold float64) StochRSIResult {
	if rsiPeriod < 1 || stochPeriod < 1 || kPeriod < 1 || dPeriod < 1 ||
		len(closes) < rsiPeriod+stochPeriod+kPeriod+dPeriod-1 {
		return StochRSIResult{Signal: SignalInsufficient, Crossover: SignalNeutral}
	}

	rsi := make([]float64, 0, len(closes)-rsiPeriod)
	for i := rsiPeriod; i < len(closes); i++ {
		rsi = append(rsi, windowRSI(closes[i-rsiPeriod:i+1]))
	}

	stoch := make([]float64, 0, len(rsi)-stochPeriod+1)
	for i := stochPeriod - 1; i < len(rsi); i++ {
		hi, lo := extremes(rsi[i-stochPeriod+1 : i+1])
		if hi == lo {
			stoch = append(stoch, 50)
			continue
		}
		stoch = append(stoch, (rsi[i]-lo)/(hi-lo)*100)
	}

	k := talib.Sma(stoch, kPeriod)[kPeriod-1:]
	d := talib.Sma(k, dPeriod)

	n := len(k) - 1
	result := StochRSIResult{K: k[n], D: d[n]}
	result.Crossover = crossover(k[n-1], d[n-1], k[n], d[n])

	result.Signal, result.Strength = stochSignal(result.Crossover, result.K, result.D, overbought, oversold)
	return result
}

// stochSignal пересечение в зоне сильнее простого пересечения, затем зоны, затем K против D
func stochSignal(cross Signal, k, d, overbought, oversold float64) (Signal, float64) {
	switch {
	case cross == SignalBullishCrossover && k < oversold:
		return SignalStrongBuy, 1
	case cross == SignalBearishCrossover && k > overbought:
		return SignalStrongSell, 1
	case cross == SignalBullishCrossover:
		return SignalBuy, 0.7
	case cross == SignalBearishCrossover:
		return SignalSell, 0.7
	case k > overbought:
		return SignalOverbought, clamp01((k - overbought) / (100 - overbought))
	case k < oversold:
		return SignalOversold, clamp01((oversold - k) / oversold)
	case k > d:
		return SignalBullish, 0.3
	case k < d:
		return SignalBearish, 0.3
	}
	return SignalNeutral, 0
}
