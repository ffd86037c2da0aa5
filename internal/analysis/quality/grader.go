// Package quality оценивает качество сигнала конфлюенса и решает, можно ли по нему торговать.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/skalibog/signalengine/internal/analysis/confluence"
	"github.com/skalibog/signalengine/internal/analysis/indicators"
)

// Ladder шкала оценок
type Ladder string

const (
	LadderStandard Ladder = "standard"
	LadderScalping Ladder = "scalping"
)

// ParseLadder разбирает название шкалы, пустая строка дает стандартную
func ParseLadder(s string) (Ladder, error) {
	switch Ladder(strings.ToLower(strings.TrimSpace(s))) {
	case "", LadderStandard:
		return LadderStandard, nil
	case LadderScalping:
		return LadderScalping, nil
	}
	return "", fmt.Errorf("неизвестная шкала оценок: %q", s)
}

// Grade буквенная оценка
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Inputs данные для оценки качества
type Inputs struct {
	Confluence confluence.Result
	Volume     indicators.VolumeResult
	CVD        indicators.CVDResult
	VWAP       indicators.VWAPResult
	RSI        indicators.RSIResult
	OBV        indicators.OBVResult
	Liquidity  indicators.LiquidityResult
	Momentum   indicators.MomentumResult
	Fakeout    indicators.FakeoutResult
	ATR        indicators.ATRResult
}

// Factor начисленные очки качества
type Factor struct {
	Name   string
	Points float64
	Max    float64
	Reason string
}

// Filter фильтр безопасности
type Filter struct {
	Name    string
	Passed  bool
	Penalty float64
	Reason  string
}

// Result оценка качества
type Result struct {
	Score         float64 // [0, 100]
	Grade         Grade
	Tradeable     bool
	Ladder        Ladder
	Factors       []Factor
	Filters       []Filter
	PassedFilters int
}

const (
	maxConfluencePoints = 35
	maxMagnitudePoints  = 25
	maxVolumePoints     = 15
	maxCVDPoints        = 10
	maxVWAPPoints       = 10
	maxDivergencePoints = 5

	penaltyLiquidity  = 15
	penaltyMomentum   = 10
	penaltyFakeout    = 20
	penaltyVolatility = 10
)

// Evaluate считает очки, вычитает штрафы фильтров и ставит оценку по выбранной шкале.
// Согласованность факторов проверяется по знаку счета конфлюенса.
func Evaluate(in Inputs, ladder Ladder) Result {
	if ladder == "" {
		ladder = LadderStandard
	}
	r := Result{Ladder: ladder}
	c := in.Confluence
	bias := sign(c.Score)

	r.Factors = []Factor{
		confluenceFactor(c.Confluence),
		magnitudeFactor(c.Score),
		volumeFactor(in.Volume),
		cvdFactor(in.CVD, bias),
		vwapFactor(in.VWAP),
		divergenceFactor(in, bias),
	}
	r.Filters = []Filter{
		liquidityFilter(in.Liquidity),
		momentumFilter(in.Momentum, bias),
		fakeoutFilter(in.Fakeout),
		volatilityFilter(in.ATR),
	}

	for _, f := range r.Factors {
		r.Score += f.Points
	}
	for _, f := range r.Filters {
		if f.Passed {
			r.PassedFilters++
			continue
		}
		r.Score -= f.Penalty
	}
	r.Score = math.Max(0, math.Min(100, r.Score))

	if ladder == LadderScalping {
		r.Grade, r.Tradeable = scalpingGrade(r.Score, c.Confluence)
	} else {
		r.Grade, r.Tradeable = standardGrade(r.Score, c.Confluence, r.PassedFilters)
	}
	if c.Direction == indicators.SignalNeutral || !c.Direction.Ready() {
		r.Tradeable = false
	}

	return r
}

func standardGrade(score float64, confluence, passed int) (Grade, bool) {
	switch {
	case score >= 80:
		return GradeA, true
	case score >= 65:
		return GradeB, true
	case score >= 50:
		return GradeC, confluence >= 3 && passed >= 3
	default:
		return GradeD, false
	}
}

func scalpingGrade(score float64, confluence int) (Grade, bool) {
	switch {
	case score >= 70:
		return GradeA, true
	case score >= 55:
		return GradeB, true
	case score >= 40:
		return GradeC, confluence >= 2
	case score >= 30:
		return GradeD, confluence >= 3
	default:
		return GradeD, false
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func signalSign(s indicators.Signal) float64 {
	switch s {
	case indicators.SignalBullish, indicators.SignalBuy, indicators.SignalStrongBuy, indicators.SignalOversold:
		return 1
	case indicators.SignalBearish, indicators.SignalSell, indicators.SignalStrongSell, indicators.SignalOverbought:
		return -1
	}
	return 0
}

func divergenceSign(d indicators.Divergence) float64 {
	switch d {
	case indicators.DivergenceBullish:
		return 1
	case indicators.DivergenceBearish:
		return -1
	}
	return 0
}

func confluenceFactor(count int) Factor {
	return Factor{
		Name:   "confluence",
		Points: math.Min(maxConfluencePoints, 7*float64(count)),
		Max:    maxConfluencePoints,
		Reason: fmt.Sprintf("согласны %d индикаторов", count),
	}
}

func magnitudeFactor(score float64) Factor {
	return Factor{
		Name:   "magnitude",
		Points: math.Min(maxMagnitudePoints, math.Abs(score)/4),
		Max:    maxMagnitudePoints,
		Reason: fmt.Sprintf("модуль счета %.1f", math.Abs(score)),
	}
}

func volumeFactor(v indicators.VolumeResult) Factor {
	f := Factor{Name: "volume", Max: maxVolumePoints, Reason: fmt.Sprintf("объем x%.2f", v.Ratio)}
	switch {
	case v.Ratio >= 2:
		f.Points = 15
	case v.Ratio >= 1.5:
		f.Points = 10
	case v.Ratio >= 1:
		f.Points = 5
	}
	return f
}

func cvdFactor(c indicators.CVDResult, bias float64) Factor {
	f := Factor{Name: "cvd", Max: maxCVDPoints, Reason: "CVD не подтверждает"}
	if bias == 0 || signalSign(c.Signal) != bias {
		return f
	}
	f.Points, f.Reason = 5, "CVD подтверждает направление"
	if divergenceSign(c.Divergence) == bias || c.Strength >= 0.5 {
		f.Points, f.Reason = 10, "CVD уверенно подтверждает направление"
	}
	return f
}

func vwapFactor(v indicators.VWAPResult) Factor {
	f := Factor{Name: "vwap", Max: maxVWAPPoints, Reason: fmt.Sprintf("цена в %.1fσ от VWAP", v.Sigmas)}
	switch {
	case !v.Signal.Ready():
	case v.StdDev == 0:
		f.Points = 5
	case math.Abs(v.Sigmas) <= 1:
		f.Points = 10
	case math.Abs(v.Sigmas) <= 2:
		f.Points = 5
	}
	return f
}

func divergenceFactor(in Inputs, bias float64) Factor {
	f := Factor{Name: "divergence", Max: maxDivergencePoints, Reason: "нет дивергенций по направлению"}
	if bias == 0 {
		return f
	}
	for _, d := range []indicators.Divergence{in.RSI.Divergence, in.OBV.Divergence, in.CVD.Divergence} {
		if divergenceSign(d) == bias {
			f.Points, f.Reason = maxDivergencePoints, "дивергенция подтверждает направление"
			break
		}
	}
	return f
}

func liquidityFilter(l indicators.LiquidityResult) Filter {
	f := Filter{Name: "liquidity", Passed: l.Sufficient, Penalty: penaltyLiquidity}
	if f.Passed {
		f.Reason = fmt.Sprintf("ликвидность достаточна (x%.2f)", l.VolumeRatio)
	} else {
		f.Reason = fmt.Sprintf("низкая ликвидность (x%.2f, пустых свечей %d)", l.VolumeRatio, l.ZeroVolume)
	}
	return f
}

func momentumFilter(m indicators.MomentumResult, bias float64) Filter {
	misaligned := bias != 0 && signalSign(m.Signal) == -bias
	f := Filter{Name: "momentum", Passed: !misaligned, Penalty: penaltyMomentum,
		Reason: fmt.Sprintf("моментум %.2f%%", m.ROC)}
	if misaligned {
		f.Reason = fmt.Sprintf("моментум %.2f%% против направления", m.ROC)
	}
	return f
}

func fakeoutFilter(fk indicators.FakeoutResult) Filter {
	f := Filter{Name: "fakeout", Passed: !fk.IsFakeout, Penalty: penaltyFakeout,
		Reason: fmt.Sprintf("признаки ложного пробоя: %.0f", fk.Score)}
	if fk.IsFakeout {
		f.Reason = fmt.Sprintf("вероятен ложный пробой (%.0f): %s", fk.Score, strings.Join(fk.Reasons, ", "))
	}
	return f
}

func volatilityFilter(a indicators.ATRResult) Filter {
	return Filter{
		Name:    "volatility",
		Passed:  !a.Extreme,
		Penalty: penaltyVolatility,
		Reason:  fmt.Sprintf("ATR %.2f%% (%s)", a.Percent, a.Regime),
	}
}
