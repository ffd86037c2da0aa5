package aggregator

import (
	"github.com/skalibog/signalengine/internal/analysis/confluence"
	"github.com/skalibog/signalengine/internal/analysis/indicators"
	"github.com/skalibog/signalengine/internal/analysis/quality"
	"github.com/skalibog/signalengine/internal/analysis/structure"
)

// Status статус отчета
type Status string

const (
	StatusOK           Status = "ok"
	StatusInsufficient Status = "insufficient_data"
)

// Report итог анализа для потребителей сигнала (риск-менеджер, исполнение, CLI)
type Report struct {
	Symbol    string
	Timeframe string
	Profile   string // примененный профиль
	Status    Status
	Candles   int
	Price     float64

	Score         float64 // [-100, 100]
	Direction     indicators.Signal
	Strength      confluence.Strength
	Confluence    int
	Contributions []confluence.Contribution

	Quality    quality.Result
	Structure  structure.Result
	Indicators Snapshot
	Reasons    []string
}

// Tradeable сигнал прошел оценку качества
func (r *Report) Tradeable() bool {
	return r.Status == StatusOK && r.Quality.Tradeable
}

// Snapshot значения всех индикаторов последнего бара
type Snapshot struct {
	RSI        indicators.RSIResult
	StochRSI   indicators.StochRSIResult
	MACD       indicators.MACDResult
	Bollinger  indicators.BollingerResult
	EMATrend   indicators.EMATrendResult
	EMAPair    indicators.EMACrossResult
	OBV        indicators.OBVResult
	VWAP       indicators.VWAPResult
	CVD        indicators.CVDResult
	Volume     indicators.VolumeResult
	ATR        indicators.ATRResult
	ADX        indicators.ADXResult
	Momentum   indicators.MomentumResult
	Supertrend indicators.SupertrendResult
	Fibonacci  indicators.FibonacciResult
	Liquidity  indicators.LiquidityResult
	Fakeout    indicators.FakeoutResult
}

func (s Snapshot) confluenceInputs() confluence.Inputs {
	return confluence.Inputs{
		RSI:       s.RSI,
		StochRSI:  s.StochRSI,
		MACD:      s.MACD,
		EMATrend:  s.EMATrend,
		EMAPair:   s.EMAPair,
		VWAP:      s.VWAP,
		CVD:       s.CVD,
		OBV:       s.OBV,
		Volume:    s.Volume,
		Bollinger: s.Bollinger,
	}
}
