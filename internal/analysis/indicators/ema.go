package indicators

import "github.com/markcheno/go-talib"

// EMAResult результат EMA
type EMAResult struct {
	Value  float64
	Series []float64
	Signal Signal
}

// EMA рассчитывает экспоненциальную среднюю.
// talib.Ema берет SMA первых period значений как затравку, затем
// ema[i] = (x[i]-ema[i-1])*2/(period+1) + ema[i-1]; до period-1 в ряду нули.
func EMA(values []float64, period int) EMAResult {
	if period < 1 || len(values) < period {
		return EMAResult{Signal: SignalInsufficient}
	}
	series := talib.Ema(values, period)
	return EMAResult{Value: last(series), Series: series, Signal: SignalNeutral}
}

// Position положение цены относительно средней
type Position string

const (
	PositionAbove Position = "above"
	PositionBelow Position = "below"
	PositionNear  Position = "near"
)

const (
	trendNearPercent  = 2.0
	trendSlopeBars    = 5
	trendSlopePercent = 0.1
)

// EMATrendResult результат трендового фильтра по длинной EMA
type EMATrendResult struct {
	EMA        float64
	Position   Position
	Distance   float64 // % от EMA
	Slope      float64 // % за trendSlopeBars баров
	SlopeTrend Trend
	Signal     Signal
	Strength   float64
}

// EMATrend фильтр тренда по длинной EMA (обычно 200)
func EMATrend(closes []float64, period int) EMATrendResult {
	if period < 1 || len(closes) < period+trendSlopeBars {
		return EMATrendResult{Signal: SignalInsufficient}
	}

	series := talib.Ema(closes, period)
	n := len(series) - 1
	ema := series[n]
	price := closes[len(closes)-1]

	result := EMATrendResult{EMA: ema, Position: PositionNear, SlopeTrend: TrendFlat, Signal: SignalNeutral}

	if ema != 0 {
		result.Distance = (price - ema) / ema * 100
	}
	switch {
	case result.Distance > trendNearPercent:
		result.Position = PositionAbove
	case result.Distance < -trendNearPercent:
		result.Position = PositionBelow
	}

	if prev := series[n-trendSlopeBars]; prev != 0 {
		result.Slope = (ema - prev) / prev * 100
	}
	switch {
	case result.Slope > trendSlopePercent:
		result.SlopeTrend = TrendRising
	case result.Slope < -trendSlopePercent:
		result.SlopeTrend = TrendFalling
	}

	switch {
	case result.Position == PositionAbove && result.SlopeTrend == TrendRising:
		result.Signal, result.Strength = SignalBullish, 1
	case result.Position == PositionAbove:
		result.Signal, result.Strength = SignalBullish, 0.6
	case result.Position == PositionBelow && result.SlopeTrend == TrendFalling:
		result.Signal, result.Strength = SignalBearish, 1
	case result.Position == PositionBelow:
		result.Signal, result.Strength = SignalBearish, 0.6
	case result.SlopeTrend == TrendRising:
		result.Signal, result.Strength = SignalBullish, 0.3
	case result.SlopeTrend == TrendFalling:
		result.Signal, result.Strength = SignalBearish, 0.3
	}

	return result
}

// EMACrossResult результат пары быстрых EMA
type EMACrossResult struct {
	Fast     float64
	Slow     float64
	Spread   float64 // % между быстрой и медленной
	Signal   Signal
	Strength float64
}

// EMACross сравнивает быструю и медленную EMA и ищет свежее пересечение
func EMACross(closes []float64, fast, slow int) EMACrossResult {
	if fast < 1 || slow < 1 || len(closes) < max(fast, slow)+1 {
		return EMACrossResult{Signal: SignalInsufficient}
	}

	fastSeries := talib.Ema(closes, fast)
	slowSeries := talib.Ema(closes, slow)
	n := len(closes) - 1

	result := EMACrossResult{Fast: fastSeries[n], Slow: slowSeries[n], Signal: SignalNeutral}
	if result.Slow != 0 {
		result.Spread = (result.Fast - result.Slow) / result.Slow * 100
	}

	cross := crossover(fastSeries[n-1], slowSeries[n-1], fastSeries[n], slowSeries[n])
	switch {
	case cross != SignalNeutral:
		result.Signal, result.Strength = cross, 1
	case result.Fast > result.Slow:
		result.Signal, result.Strength = SignalBullish, 0.6
	case result.Fast < result.Slow:
		result.Signal, result.Strength = SignalBearish, 0.6
	}

	return result
}
