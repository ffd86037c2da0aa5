// Package structure реализует структурный анализ рынка (SMC): свинги, ордер-блоки,
// разрывы справедливой стоимости, пробои структуры, снятие ликвидности и зоны премии/дисконта.
package structure

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/skalibog/signalengine/internal/analysis/indicators"
	"github.com/skalibog/signalengine/internal/analysis/profile"
	"github.com/skalibog/signalengine/pkg/models"
)

// MinCandles минимальная длина ряда для структурного анализа
const MinCandles = 100

const (
	directionThreshold = 4
	stopBuffer         = 0.002
	targetBuffer       = 0.001
	fallbackBars       = 20
	rewardRisk         = 2
)

// Result структурный сигнал
type Result struct {
	Signal     indicators.Signal // bullish, bearish, neutral или insufficient_data
	Score      float64
	Confidence float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Reasons    []string

	Trend       TrendResult
	Swings      []Swing
	SwingBroken []bool // статус пробоя, параллельно Swings
	OrderBlocks []OrderBlock
	FVGs        []FairValueGap
	Breaks      []StructureBreak
	Sweeps      []LiquiditySweep
	Zone        ZoneResult
	Session     Session
}

// Analyzer структурный анализатор. Значение неизменяемое, параметры фиксируются при создании.
type Analyzer struct {
	params profile.Structure
}

// NewAnalyzer создает анализатор с параметрами профиля
func NewAnalyzer(params profile.Structure) Analyzer {
	return Analyzer{params: params}
}

// Analyze выполняет структурный анализ ряда свечей
func (a Analyzer) Analyze(candles []models.Candle) Result {
	if len(candles) < MinCandles {
		return Result{Signal: indicators.SignalInsufficient, Trend: TrendResult{Trend: BiasRanging}}
	}

	n := len(candles)
	last := candles[n-1]
	price := last.Close

	highs, lows := findSwings(candles, a.params.SwingLookback)
	swings := mergeSwings(highs, lows)
	breaks, broken := detectBreaks(candles, swings)

	result := Result{
		Signal:      indicators.SignalNeutral,
		Price:       price,
		Trend:       structureTrend(highs, lows),
		Swings:      swings,
		SwingBroken: broken,
		OrderBlocks: a.findOrderBlocks(candles, highs, lows),
		FVGs:        a.findFVGs(candles),
		Breaks:      breaks,
		Sweeps:      a.findSweeps(candles, swings),
		Zone:        premiumDiscount(highs, lows, price),
		Session:     sessionAt(last.OpenTime),
	}

	a.synthesize(&result, candles, highs, lows)
	return result
}

func mergeSwings(highs, lows []Swing) []Swing {
	swings := make([]Swing, 0, len(highs)+len(lows))
	swings = append(swings, highs...)
	swings = append(swings, lows...)
	sort.SliceStable(swings, func(i, j int) bool { return swings[i].Index < swings[j].Index })
	return swings
}

func (a Analyzer) synthesize(r *Result, candles []models.Candle, highs, lows []Swing) {
	score := 0.0
	add := func(points float64, reason string) {
		score += points
		r.Reasons = append(r.Reasons, reason)
	}

	switch r.Trend.Trend {
	case BiasBullish:
		add(2, fmt.Sprintf("бычья структура (сила %.2f)", r.Trend.Strength))
	case BiasBearish:
		add(-2, fmt.Sprintf("медвежья структура (сила %.2f)", r.Trend.Strength))
	}

	if len(r.Breaks) > 0 {
		b := r.Breaks[len(r.Breaks)-1]
		if b.Age <= a.params.RecentBreakBars {
			add(2*b.Direction.sign(), fmt.Sprintf("%s %s на уровне %.4f", b.Type, b.Direction, b.Level))
		}
	}

	for i := len(r.OrderBlocks) - 1; i >= 0; i-- {
		ob := r.OrderBlocks[i]
		if ob.Tested && ob.Contains(r.Price) {
			add(2*ob.Type.sign(), fmt.Sprintf("цена в протестированном %s ордер-блоке %.4f-%.4f", ob.Type, ob.Low, ob.High))
			break
		}
	}

	if gap, ok := nearestOpenGap(r.FVGs, r.Price); ok && r.Price > 0 &&
		math.Abs(r.Price-gap.Midpoint)/r.Price*100 <= a.params.FVGProximity {
		add(gap.Type.sign(), fmt.Sprintf("рядом незаполненный %s FVG %.4f-%.4f", gap.Type, gap.Low, gap.High))
	}

	if len(r.Sweeps) > 0 {
		s := r.Sweeps[len(r.Sweeps)-1]
		if s.Age <= a.params.RecentSweepBars {
			add(2*s.Type.sign(), fmt.Sprintf("снятие ликвидности у %.4f (%s)", s.Level, s.Type))
		}
	}

	switch {
	case score > 0 && r.Zone.Zone == ZoneDiscount:
		add(1, "покупка из зоны дисконта")
	case score < 0 && r.Zone.Zone == ZonePremium:
		add(-1, "продажа из зоны премии")
	}

	if r.Session.Overlap && score != 0 {
		add(math.Copysign(1, score), "пересечение сессий Лондона и Нью-Йорка")
	}
	if r.Session.Multiplier != 1 {
		score *= r.Session.Multiplier
		r.Reasons = append(r.Reasons, fmt.Sprintf("слабая сессия %s, счет x%.1f", r.Session.Name, r.Session.Multiplier))
	}

	r.Score = score
	r.Confidence = min(1, math.Abs(score)/10)

	switch {
	case score >= directionThreshold:
		r.Signal = indicators.SignalBullish
		r.StopLoss, r.TakeProfit = longLevels(candles, highs, lows, r.Price)
	case score <= -directionThreshold:
		r.Signal = indicators.SignalBearish
		r.StopLoss, r.TakeProfit = shortLevels(candles, highs, lows, r.Price)
	}
}

func nearestOpenGap(gaps []FairValueGap, price float64) (FairValueGap, bool) {
	best, found := FairValueGap{}, false
	for _, g := range gaps {
		if g.Filled {
			continue
		}
		if !found || math.Abs(price-g.Midpoint) < math.Abs(price-best.Midpoint) {
			best, found = g, true
		}
	}
	return best, found
}

// longLevels стоп за ближайшим минимумом ниже цены, цель перед ближайшим максимумом,
// который с отступом остается выше цены. Без подходящих свингов цель 2:1 к риску.
func longLevels(candles []models.Candle, highs, lows []Swing, price float64) (stop, target float64) {
	if s, ok := nearestBelow(lows, price); ok {
		stop = s * (1 - stopBuffer)
	} else {
		stop = slices.Min(models.Lows(recent(candles))) * (1 - stopBuffer)
	}

	found := false
	for _, s := range highs {
		if t := s.Price * (1 - targetBuffer); t > price && (!found || t < target) {
			target, found = t, true
		}
	}
	if !found {
		target = price + rewardRisk*(price-stop)
	}
	return stop, target
}

// shortLevels зеркально longLevels
func shortLevels(candles []models.Candle, highs, lows []Swing, price float64) (stop, target float64) {
	if s, ok := nearestAbove(highs, price); ok {
		stop = s * (1 + stopBuffer)
	} else {
		stop = slices.Max(models.Highs(recent(candles))) * (1 + stopBuffer)
	}

	found := false
	for _, s := range lows {
		if t := s.Price * (1 + targetBuffer); t < price && (!found || t > target) {
			target, found = t, true
		}
	}
	if !found {
		target = price - rewardRisk*(stop-price)
	}
	return stop, target
}

func recent(candles []models.Candle) []models.Candle {
	return candles[max(0, len(candles)-fallbackBars):]
}

func nearestBelow(swings []Swing, price float64) (float64, bool) {
	best, found := 0.0, false
	for _, s := range swings {
		if s.Price < price && (!found || s.Price > best) {
			best, found = s.Price, true
		}
	}
	return best, found
}

func nearestAbove(swings []Swing, price float64) (float64, bool) {
	best, found := 0.0, false
	for _, s := range swings {
		if s.Price > price && (!found || s.Price < best) {
			best, found = s.Price, true
		}
	}
	return best, found
}
