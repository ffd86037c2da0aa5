package confluence

import (
	"fmt"
	"math"
)

// Weights веса индикаторов в итоговом счете. Сумма весов равна 100.
type Weights struct {
	RSI      float64 `yaml:"rsi"`
	StochRSI float64 `yaml:"stoch_rsi"`
	MACD     float64 `yaml:"macd"`
	EMATrend float64 `yaml:"ema_trend"`
	EMAPair  float64 `yaml:"ema_pair"`
	VWAP     float64 `yaml:"vwap"`
	CVD      float64 `yaml:"cvd"`
	OBV      float64 `yaml:"obv"`
	Volume   float64 `yaml:"volume"`
}

// DefaultWeights стандартная таблица весов
func DefaultWeights() Weights {
	return Weights{
		RSI:      8,
		StochRSI: 10,
		MACD:     12,
		EMATrend: 10,
		EMAPair:  12,
		VWAP:     15,
		CVD:      15,
		OBV:      8,
		Volume:   10,
	}
}

// Бонусы за дивергенции и экстремумы Боллинджера добавляются сверх весов
const (
	BonusRSIDivergence    = 15
	BonusOBVDivergence    = 8
	BonusCVDDivergence    = 15
	BonusBollingerExtreme = 8
)

// Sum сумма весов
func (w Weights) Sum() float64 {
	return w.RSI + w.StochRSI + w.MACD + w.EMATrend + w.EMAPair + w.VWAP + w.CVD + w.OBV + w.Volume
}

// IsZero сообщает, что таблица не задана
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Validate проверяет неотрицательность весов и сумму 100
func (w Weights) Validate() error {
	for _, v := range []float64{w.RSI, w.StochRSI, w.MACD, w.EMATrend, w.EMAPair, w.VWAP, w.CVD, w.OBV, w.Volume} {
		if v < 0 {
			return fmt.Errorf("вес не может быть отрицательным: %.2f", v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-100) > 1e-6 {
		return fmt.Errorf("сумма весов должна быть 100, получено %.2f", sum)
	}
	return nil
}
