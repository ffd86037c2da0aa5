// Package confluence сводит результаты индикаторов в взвешенный счет от -100 до 100.
package confluence

import (
	"fmt"
	"math"

	"github.com/skalibog/signalengine/internal/analysis/indicators"
)

// Inputs результаты индикаторов, участвующих в подсчете
type Inputs struct {
	RSI       indicators.RSIResult
	StochRSI  indicators.StochRSIResult
	MACD      indicators.MACDResult
	EMATrend  indicators.EMATrendResult
	EMAPair   indicators.EMACrossResult
	VWAP      indicators.VWAPResult
	CVD       indicators.CVDResult
	OBV       indicators.OBVResult
	Volume    indicators.VolumeResult
	Bollinger indicators.BollingerResult
}

// Strength сила сигнала
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

const (
	strongThreshold     = 50
	signalThreshold     = 25
	strongConfluenceMin = 4
)

// Contribution вклад одного индикатора или бонуса
type Contribution struct {
	Name     string
	Signal   string
	Weight   float64
	Fraction float64 // доля веса со знаком
	Points   float64
	Bonus    bool
	Reason   string
}

// Result итог подсчета конфлюенса
type Result struct {
	Score         float64 // [-100, 100]
	RawScore      float64 // до ограничения
	Direction     indicators.Signal
	Strength      Strength
	Confluence    int
	Bullish       float64 // частичный счет согласных бычьих индикаторов
	Bearish       float64
	Contributions []Contribution
}

// Reasons причины для журнала: только ненулевые вклады
func (r Result) Reasons() []string {
	var out []string
	for _, c := range r.Contributions {
		if c.Points != 0 {
			out = append(out, c.Reason)
		}
	}
	return out
}

type tally struct {
	result Result
}

func (t *tally) add(name, signal string, weight, fraction float64, reason string) {
	c := Contribution{Name: name, Signal: signal, Weight: weight, Fraction: fraction, Points: weight * fraction, Reason: reason}
	t.result.Contributions = append(t.result.Contributions, c)
	t.count(fraction)
	t.result.RawScore += c.Points
}

func (t *tally) bonus(name, signal string, points float64, reason string) {
	t.result.Contributions = append(t.result.Contributions, Contribution{
		Name: name, Signal: signal, Weight: math.Abs(points), Fraction: math.Copysign(1, points),
		Points: points, Bonus: true, Reason: reason,
	})
	t.count(math.Copysign(1, points))
	t.result.RawScore += points
}

func (t *tally) count(fraction float64) {
	switch {
	case fraction > 0:
		t.result.Bullish += fraction
	case fraction < 0:
		t.result.Bearish -= fraction
	}
}

// Score считает взвешенный счет. Веса передаются явно в каждый вызов.
func Score(in Inputs, w Weights) Result {
	t := &tally{}

	scoreRSI(t, in.RSI, w.RSI)
	scoreStochRSI(t, in.StochRSI, w.StochRSI)
	scoreMACD(t, in.MACD, w.MACD)
	scoreEMATrend(t, in.EMATrend, w.EMATrend)
	scoreEMAPair(t, in.EMAPair, w.EMAPair)
	scoreVWAP(t, in.VWAP, w.VWAP)
	scoreCVD(t, in.CVD, w.CVD)
	scoreOBV(t, in.OBV, w.OBV)
	scoreVolume(t, in.Volume, w.Volume)
	scoreBollinger(t, in.Bollinger)

	r := t.result
	r.Score = math.Max(-100, math.Min(100, r.RawScore))
	r.Confluence = int(math.Floor(math.Max(r.Bullish, r.Bearish)))

	switch {
	case r.Score >= strongThreshold:
		r.Direction = indicators.SignalStrongBuy
	case r.Score >= signalThreshold:
		r.Direction = indicators.SignalBuy
	case r.Score <= -strongThreshold:
		r.Direction = indicators.SignalStrongSell
	case r.Score <= -signalThreshold:
		r.Direction = indicators.SignalSell
	default:
		r.Direction = indicators.SignalNeutral
	}

	switch abs := math.Abs(r.Score); {
	case abs >= strongThreshold:
		r.Strength = StrengthStrong
	case abs >= signalThreshold:
		r.Strength = StrengthModerate
	default:
		r.Strength = StrengthWeak
	}
	if r.Confluence >= strongConfluenceMin && r.Direction != indicators.SignalNeutral {
		r.Strength = StrengthStrong
	}

	return r
}

func lean(strength float64) float64 {
	return 0.3 + 0.5*strength
}

func scoreRSI(t *tally, r indicators.RSIResult, weight float64) {
	var f float64
	switch r.Signal {
	case indicators.SignalOversold:
		f = 1
	case indicators.SignalOverbought:
		f = -1
	case indicators.SignalBullish:
		f = lean(r.Strength)
	case indicators.SignalBearish:
		f = -lean(r.Strength)
	}
	t.add("rsi", string(r.Signal), weight, f, fmt.Sprintf("RSI %.1f: %s", r.Value, r.Signal))

	switch r.Divergence {
	case indicators.DivergenceBullish:
		t.bonus("rsi_divergence", "divergence", BonusRSIDivergence, "бычья дивергенция RSI")
	case indicators.DivergenceBearish:
		t.bonus("rsi_divergence", "divergence", -BonusRSIDivergence, "медвежья дивергенция RSI")
	}
}

func scoreStochRSI(t *tally, r indicators.StochRSIResult, weight float64) {
	var f float64
	switch r.Signal {
	case indicators.SignalStrongBuy:
		f = 1
	case indicators.SignalStrongSell:
		f = -1
	case indicators.SignalBuy:
		f = 0.7
	case indicators.SignalSell:
		f = -0.7
	case indicators.SignalOversold:
		f = 0.5
	case indicators.SignalOverbought:
		f = -0.5
	case indicators.SignalBullish:
		f = 0.3
	case indicators.SignalBearish:
		f = -0.3
	}
	t.add("stoch_rsi", string(r.Signal), weight, f, fmt.Sprintf("StochRSI K=%.1f D=%.1f: %s", r.K, r.D, r.Signal))
}

func scoreMACD(t *tally, r indicators.MACDResult, weight float64) {
	var f float64
	switch {
	case r.Crossover == indicators.SignalBullishCrossover:
		f = 1
	case r.Crossover == indicators.SignalBearishCrossover:
		f = -1
	case r.Trend == indicators.MACDStrongBullish:
		f = 0.7
	case r.Trend == indicators.MACDStrongBearish:
		f = -0.7
	case r.Trend == indicators.MACDWeakBullish:
		f = 0.4
	case r.Trend == indicators.MACDWeakBearish:
		f = -0.4
	}
	if !r.Status.Ready() {
		f = 0
	}
	t.add("macd", string(r.Status), weight, f, fmt.Sprintf("MACD гистограмма %.4f: %s", r.Histogram, r.Trend))
}

func scoreEMATrend(t *tally, r indicators.EMATrendResult, weight float64) {
	var f float64
	switch r.Signal {
	case indicators.SignalBullish:
		f = r.Strength
	case indicators.SignalBearish:
		f = -r.Strength
	}
	t.add("ema_trend", string(r.Signal), weight, f, fmt.Sprintf("цена %s EMA (%.2f%%), наклон %s", r.Position, r.Distance, r.SlopeTrend))
}

func scoreEMAPair(t *tally, r indicators.EMACrossResult, weight float64) {
	var f float64
	switch r.Signal {
	case indicators.SignalBullishCrossover:
		f = 1
	case indicators.SignalBearishCrossover:
		f = -1
	case indicators.SignalBullish:
		f = 0.6
	case indicators.SignalBearish:
		f = -0.6
	}
	t.add("ema_pair", string(r.Signal), weight, f, fmt.Sprintf("быстрая EMA к медленной %.2f%%: %s", r.Spread, r.Signal))
}

func scoreVWAP(t *tally, r indicators.VWAPResult, weight float64) {
	var f float64
	switch {
	case r.Signal == indicators.SignalOversold:
		f = 1
	case r.Signal == indicators.SignalOverbought:
		f = -1
	case r.Signal == indicators.SignalBullish && r.Sigmas >= 1:
		f = 0.8
	case r.Signal == indicators.SignalBearish && r.Sigmas <= -1:
		f = -0.8
	case r.Signal == indicators.SignalBullish:
		f = 0.5
	case r.Signal == indicators.SignalBearish:
		f = -0.5
	}
	t.add("vwap", string(r.Signal), weight, f, fmt.Sprintf("цена к VWAP %.2f%% (%.1fσ): %s", r.Deviation, r.Sigmas, r.Signal))
}

func scoreCVD(t *tally, r indicators.CVDResult, weight float64) {
	var f float64
	switch {
	case r.Divergence == indicators.DivergenceBullish:
		f = 1
	case r.Divergence == indicators.DivergenceBearish:
		f = -1
	case r.Signal == indicators.SignalBullish:
		f = lean(r.Strength)
	case r.Signal == indicators.SignalBearish:
		f = -lean(r.Strength)
	}
	t.add("cvd", string(r.Signal), weight, f, fmt.Sprintf("CVD дельта %.2f, тренд %s", r.Delta, r.Trend))

	switch r.Divergence {
	case indicators.DivergenceBullish:
		t.bonus("cvd_divergence", "divergence", BonusCVDDivergence, "бычья дивергенция CVD")
	case indicators.DivergenceBearish:
		t.bonus("cvd_divergence", "divergence", -BonusCVDDivergence, "медвежья дивергенция CVD")
	}
}

func scoreOBV(t *tally, r indicators.OBVResult, weight float64) {
	var f float64
	switch {
	case r.Divergence == indicators.DivergenceBullish:
		f = 1
	case r.Divergence == indicators.DivergenceBearish:
		f = -1
	case r.Trend == indicators.TrendRising && r.Signal.Ready():
		f = 0.5
	case r.Trend == indicators.TrendFalling && r.Signal.Ready():
		f = -0.5
	}
	t.add("obv", string(r.Signal), weight, f, fmt.Sprintf("OBV тренд %s", r.Trend))

	switch r.Divergence {
	case indicators.DivergenceBullish:
		t.bonus("obv_divergence", "divergence", BonusOBVDivergence, "бычья дивергенция OBV")
	case indicators.DivergenceBearish:
		t.bonus("obv_divergence", "divergence", -BonusOBVDivergence, "медвежья дивергенция OBV")
	}
}

func scoreVolume(t *tally, r indicators.VolumeResult, weight float64) {
	var f float64
	switch {
	case r.Level == indicators.VolumeHigh:
		f = 1
	case r.Level == indicators.VolumeNormal:
		f = 0.5
	}
	switch r.Signal {
	case indicators.SignalBearish:
		f = -f
	case indicators.SignalBullish:
	default:
		f = 0
	}
	t.add("volume", string(r.Signal), weight, f, fmt.Sprintf("объем x%.2f от среднего (%s)", r.Ratio, r.Level))
}

func scoreBollinger(t *tally, r indicators.BollingerResult) {
	switch r.Signal {
	case indicators.SignalOversold:
		t.bonus("bollinger", string(r.Signal), BonusBollingerExtreme, fmt.Sprintf("цена у нижней полосы Боллинджера (%%B %.1f)", r.PercentB))
	case indicators.SignalOverbought:
		t.bonus("bollinger", string(r.Signal), -BonusBollingerExtreme, fmt.Sprintf("цена у верхней полосы Боллинджера (%%B %.1f)", r.PercentB))
	}
}
