package structure

import (
	"sort"

	"github.com/skalibog/signalengine/pkg/models"
)

// obSearchBars сколько баров назад от свинга ищется свеча ордер-блока
const obSearchBars = 10

// OrderBlock последняя противоположная свеча перед импульсом
type OrderBlock struct {
	Type     Bias
	High     float64
	Low      float64
	Index    int
	Age      int
	Impulse  float64 // % движения после блока
	Strength float64
	Tested   bool
}

// Contains проверяет, находится ли цена внутри блока
func (ob OrderBlock) Contains(price float64) bool {
	return price >= ob.Low && price <= ob.High
}

// findOrderBlocks строит бычьи блоки от минимумов и медвежьи от максимумов.
// Блок исключается, если позднее закрытие прошло его дальнюю границу или он старше OBMaxAge.
func (a Analyzer) findOrderBlocks(candles []models.Candle, highs, lows []Swing) []OrderBlock {
	seen := make([]bool, len(candles))
	var blocks []OrderBlock

	for _, s := range lows {
		if ob, ok := a.orderBlockAt(candles, s.Index, BiasBullish); ok && !seen[ob.Index] {
			seen[ob.Index] = true
			blocks = append(blocks, ob)
		}
	}
	for _, s := range highs {
		if ob, ok := a.orderBlockAt(candles, s.Index, BiasBearish); ok && !seen[ob.Index] {
			seen[ob.Index] = true
			blocks = append(blocks, ob)
		}
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })
	return blocks
}

func (a Analyzer) orderBlockAt(candles []models.Candle, swing int, bias Bias) (OrderBlock, bool) {
	n := len(candles)

	// Ближайшая противоположная свеча не дальше obSearchBars от свинга
	idx := -1
	for j := swing; j >= 0 && j >= swing-obSearchBars; j-- {
		if (bias == BiasBullish && candles[j].Bearish()) || (bias == BiasBearish && candles[j].Bullish()) {
			idx = j
			break
		}
	}
	if idx < 0 || idx+1 >= n {
		return OrderBlock{}, false
	}

	ob := OrderBlock{Type: bias, High: candles[idx].High, Low: candles[idx].Low, Index: idx, Age: n - 1 - idx}
	if ob.Age > a.params.OBMaxAge {
		return OrderBlock{}, false
	}

	end := min(n, idx+1+a.params.OBForwardWindow)
	peak := idx + 1
	for k := idx + 1; k < end; k++ {
		if bias == BiasBullish && candles[k].High > candles[peak].High {
			peak = k
		}
		if bias == BiasBearish && candles[k].Low < candles[peak].Low {
			peak = k
		}
	}

	if bias == BiasBullish {
		if ob.High <= 0 {
			return OrderBlock{}, false
		}
		ob.Impulse = (candles[peak].High - ob.High) / ob.High * 100
	} else {
		if ob.Low <= 0 {
			return OrderBlock{}, false
		}
		ob.Impulse = (ob.Low - candles[peak].Low) / ob.Low * 100
	}
	if ob.Impulse < a.params.OBMinSize {
		return OrderBlock{}, false
	}

	for k := idx + 1; k < n; k++ {
		c := candles[k]
		if bias == BiasBullish && c.Close < ob.Low || bias == BiasBearish && c.Close > ob.High {
			return OrderBlock{}, false
		}
		// Возврат в блок после вершины импульса
		if k > peak && (bias == BiasBullish && c.Low <= ob.High || bias == BiasBearish && c.High >= ob.Low) {
			ob.Tested = true
		}
	}

	ob.Strength = min(1, ob.Impulse/(3*a.params.OBMinSize))
	return ob, true
}

// FairValueGap трехсвечный разрыв
type FairValueGap struct {
	Type     Bias
	High     float64
	Low      float64
	Midpoint float64
	Index    int // третья свеча паттерна
	Age      int
	Size     float64 // % от нижней границы
	Filled   bool
}

// findFVGs ищет разрывы low[i] > high[i-2] (бычий) и high[i] < low[i-2] (медвежий).
// Разрыв заполнен, если тень любой последующей свечи вошла в него.
func (a Analyzer) findFVGs(candles []models.Candle) []FairValueGap {
	n := len(candles)
	var gaps []FairValueGap

	for i := 2; i < n; i++ {
		age := n - 1 - i
		if age > a.params.FVGMaxAge {
			continue
		}

		var gap FairValueGap
		switch {
		case candles[i].Low > candles[i-2].High:
			gap = FairValueGap{Type: BiasBullish, High: candles[i].Low, Low: candles[i-2].High}
		case candles[i].High < candles[i-2].Low:
			gap = FairValueGap{Type: BiasBearish, High: candles[i-2].Low, Low: candles[i].High}
		default:
			continue
		}
		if gap.Low <= 0 {
			continue
		}

		gap.Size = (gap.High - gap.Low) / gap.Low * 100
		if gap.Size < a.params.FVGMinSize {
			continue
		}
		gap.Index, gap.Age = i, age
		gap.Midpoint = (gap.High + gap.Low) / 2

		for k := i + 1; k < n; k++ {
			if gap.Type == BiasBullish && candles[k].Low < gap.High ||
				gap.Type == BiasBearish && candles[k].High > gap.Low {
				gap.Filled = true
				break
			}
		}

		gaps = append(gaps, gap)
	}

	return gaps
}
