package indicators

// RSIResult результат RSI
type RSIResult struct {
	Value      float64
	Signal     Signal
	Strength   float64
	Divergence Divergence
}

// RSI рассчитывает индекс относительной силы со сглаживанием Уайлдера.
// talib.Rsi здесь не подходит: для плоского ряда он отдает 0, а нужно 50.
func RSI(closes []float64, period int, overbought, oversold float64) RSIResult {
	if period < 1 || len(closes) < period+1 {
		return RSIResult{Signal: SignalInsufficient, Divergence: DivergenceNone}
	}

	series := RSISeries(closes, period)
	value := last(series)

	result := RSIResult{
		Value:      value,
		Divergence: halvesDivergence(closes[period:], series, divergenceLookback),
	}
	result.Signal, result.Strength = rsiBucket(value, overbought, oversold)

	return result
}

// RSISeries возвращает ряд RSI; элемент j соответствует closes[period+j]
func RSISeries(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period+1 {
		return nil
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		gain, loss := change(closes[i-1], closes[i])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	series := make([]float64, 0, len(closes)-period)
	series = append(series, rsiFromAverages(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := change(closes[i-1], closes[i])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		series = append(series, rsiFromAverages(avgGain, avgLoss))
	}

	return series
}

// windowRSI считает RSI ровно по period+1 ценам без сглаживания хвоста
func windowRSI(window []float64) float64 {
	period := len(window) - 1
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i < len(window); i++ {
		gain, loss := change(window[i-1], window[i])
		avgGain += gain
		avgLoss += loss
	}
	return rsiFromAverages(avgGain/float64(period), avgLoss/float64(period))
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	// Плоский ряд: ни роста, ни падения
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}
	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - 100/(1+rs)
}

// rsiBucket переводит значение RSI в сигнал и линейную силу
func rsiBucket(value, overbought, oversold float64) (Signal, float64) {
	switch {
	case value >= overbought:
		return SignalOverbought, clamp01((value - overbought) / (100 - overbought))
	case value <= oversold:
		return SignalOversold, clamp01((oversold - value) / oversold)
	case value > 50:
		return SignalBullish, clamp01((value - 50) / (overbought - 50))
	case value < 50:
		return SignalBearish, clamp01((50 - value) / (50 - oversold))
	default:
		return SignalNeutral, 0
	}
}
