package structure

import (
	"sort"

	"github.com/skalibog/signalengine/pkg/models"
)

// BreakType тип пробоя структуры
type BreakType string

const (
	BreakBOS   BreakType = "bos"
	BreakCHoCH BreakType = "choch"
)

// StructureBreak пробой свинга закрытием
type StructureBreak struct {
	Type      BreakType
	Direction Bias
	Level     float64
	Swing     int // индекс свечи свинга
	Index     int // индекс пробойной свечи
	Age       int
}

// detectBreaks идет по свечам хронологически. Каждый свинг пробивается один раз;
// пробой против текущего тренда считается CHoCH, иначе BOS.
// swings отсортированы по индексу; статус пробоя возвращается в broken, swings не меняются.
func detectBreaks(candles []models.Candle, swings []Swing) (breaks []StructureBreak, broken []bool) {
	n := len(candles)
	broken = make([]bool, len(swings))
	running := BiasRanging

	for k := 1; k < n; k++ {
		closePrice := candles[k].Close
		for i, s := range swings {
			if s.Index >= k {
				break
			}
			if broken[i] {
				continue
			}

			var dir Bias
			switch {
			case s.Kind == SwingHigh && closePrice > s.Price:
				dir = BiasBullish
			case s.Kind == SwingLow && closePrice < s.Price:
				dir = BiasBearish
			default:
				continue
			}

			broken[i] = true
			kind := BreakBOS
			if running != BiasRanging && running != dir {
				kind = BreakCHoCH
			}
			running = dir

			breaks = append(breaks, StructureBreak{
				Type:      kind,
				Direction: dir,
				Level:     s.Price,
				Swing:     s.Index,
				Index:     k,
				Age:       n - 1 - k,
			})
		}
	}

	return breaks, broken
}

// LiquiditySweep снятие ликвидности за свингом
type LiquiditySweep struct {
	Type    Bias // bearish для снятого максимума, bullish для минимума
	Level   float64
	Extreme float64
	Index   int
	Age     int
	Size    float64 // % прокола
}

// findSweeps для каждого свинга смотрит первую свечу, которая проколола уровень тенью.
// Прокол не больше LiquidityThreshold% и возврат следующего закрытия за уровень дают снятие.
func (a Analyzer) findSweeps(candles []models.Candle, swings []Swing) []LiquiditySweep {
	n := len(candles)
	var sweeps []LiquiditySweep

	for _, s := range swings {
		if s.Price <= 0 {
			continue
		}
		for k := s.Index + 1; k < n; k++ {
			c := candles[k]
			var pierce, extreme float64
			switch {
			case s.Kind == SwingHigh && c.High > s.Price:
				extreme = c.High
				pierce = (c.High - s.Price) / s.Price * 100
			case s.Kind == SwingLow && c.Low < s.Price:
				extreme = c.Low
				pierce = (s.Price - c.Low) / s.Price * 100
			default:
				continue
			}

			if pierce <= a.params.LiquidityThreshold && k+1 < n {
				next := candles[k+1].Close
				if s.Kind == SwingHigh && next < s.Price {
					sweeps = append(sweeps, LiquiditySweep{Type: BiasBearish, Level: s.Price, Extreme: extreme, Index: k, Age: n - 1 - k, Size: pierce})
				}
				if s.Kind == SwingLow && next > s.Price {
					sweeps = append(sweeps, LiquiditySweep{Type: BiasBullish, Level: s.Price, Extreme: extreme, Index: k, Age: n - 1 - k, Size: pierce})
				}
			}
			break
		}
	}

	sort.SliceStable(sweeps, func(i, j int) bool { return sweeps[i].Index < sweeps[j].Index })
	return sweeps
}
