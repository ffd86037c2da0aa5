// Package aggregator объединяет индикаторный и структурный анализ в итоговый отчет.
package aggregator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/skalibog/signalengine/internal/analysis/confluence"
	"github.com/skalibog/signalengine/internal/analysis/indicators"
	"github.com/skalibog/signalengine/internal/analysis/profile"
	"github.com/skalibog/signalengine/internal/analysis/quality"
	"github.com/skalibog/signalengine/internal/analysis/structure"
	"github.com/skalibog/signalengine/pkg/models"
)

// MinCandles минимальная длина ряда для индикаторного анализа
const MinCandles = 30

// Request входные данные одного анализа
type Request struct {
	Symbol    string
	Timeframe string
	Candles   []models.Candle // по возрастанию времени
	Ladder    quality.Ladder
	Overrides map[string]profile.Profile
}

// Engine сигнальный движок. Не хранит состояния между вызовами,
// поэтому один экземпляр можно вызывать из нескольких горутин.
type Engine struct {
	log     *zap.Logger
	weights confluence.Weights
}

// NewEngine создает движок. nil логгер заменяется пустым, нулевые веса стандартными.
func NewEngine(log *zap.Logger, weights confluence.Weights) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if weights.IsZero() {
		weights = confluence.DefaultWeights()
	}
	return &Engine{log: log, weights: weights}
}

// Weights таблица весов движка
func (e *Engine) Weights() confluence.Weights {
	return e.weights
}

// Analyze выполняет полный анализ ряда свечей
func (e *Engine) Analyze(req Request) *Report {
	p := profile.Resolve(req.Timeframe, req.Overrides)
	if err := p.Validate(); err != nil {
		e.log.Warn("Некорректное переопределение профиля, используется встроенный",
			zap.String("symbol", req.Symbol), zap.String("timeframe", req.Timeframe), zap.Error(err))
		p = profile.ForTimeframe(req.Timeframe)
	}

	ladder := req.Ladder
	if ladder == "" {
		ladder = quality.LadderStandard
	}

	report := &Report{
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Profile:   p.Label,
		Candles:   len(req.Candles),
	}
	if n := len(req.Candles); n > 0 {
		report.Price = req.Candles[n-1].Close
	}

	if len(req.Candles) < MinCandles {
		e.log.Warn("Недостаточно свечей для анализа",
			zap.String("symbol", req.Symbol),
			zap.Int("candles", len(req.Candles)),
			zap.Int("требуется_свечей", MinCandles))
		report.Status = StatusInsufficient
		report.Direction = indicators.SignalInsufficient
		report.Strength = confluence.StrengthWeak
		report.Quality = quality.Result{Grade: quality.GradeD, Ladder: ladder}
		report.Structure = structure.NewAnalyzer(p.Structure).Analyze(req.Candles)
		return report
	}

	// Индикаторный и структурный пути независимы
	var wg sync.WaitGroup
	var snapshot Snapshot
	var smc structure.Result

	wg.Add(2)
	go func() {
		defer wg.Done()
		snapshot = computeSnapshot(req.Candles, p)
	}()
	go func() {
		defer wg.Done()
		smc = structure.NewAnalyzer(p.Structure).Analyze(req.Candles)
	}()
	wg.Wait()

	conf := confluence.Score(snapshot.confluenceInputs(), e.weights)
	q := quality.Evaluate(quality.Inputs{
		Confluence: conf,
		Volume:     snapshot.Volume,
		CVD:        snapshot.CVD,
		VWAP:       snapshot.VWAP,
		RSI:        snapshot.RSI,
		OBV:        snapshot.OBV,
		Liquidity:  snapshot.Liquidity,
		Momentum:   snapshot.Momentum,
		Fakeout:    snapshot.Fakeout,
		ATR:        snapshot.ATR,
	}, ladder)

	report.Status = StatusOK
	report.Score = conf.Score
	report.Direction = conf.Direction
	report.Strength = conf.Strength
	report.Confluence = conf.Confluence
	report.Contributions = conf.Contributions
	report.Quality = q
	report.Structure = smc
	report.Indicators = snapshot
	report.Reasons = buildReasons(conf, q, smc)

	if !smc.Signal.Ready() {
		e.log.Warn("Структурный анализ пропущен: недостаточно свечей",
			zap.String("symbol", req.Symbol),
			zap.Int("candles", len(req.Candles)),
			zap.Int("требуется_свечей", structure.MinCandles))
	}

	e.log.Debug("Анализ завершен",
		zap.String("symbol", req.Symbol),
		zap.String("timeframe", req.Timeframe),
		zap.String("profile", p.Label),
		zap.Int("candles", len(req.Candles)),
		zap.Float64("score", conf.Score),
		zap.String("direction", string(conf.Direction)),
		zap.Int("confluence", conf.Confluence),
		zap.Float64("quality", q.Score),
		zap.String("grade", string(q.Grade)),
		zap.Bool("tradeable", q.Tradeable),
		zap.String("structure", string(smc.Signal)))

	return report
}

// AnalyzeBatch анализирует несколько рядов параллельно; порядок отчетов совпадает с порядком запросов
func (e *Engine) AnalyzeBatch(reqs []Request) []*Report {
	reports := make([]*Report, len(reqs))

	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i] = e.Analyze(reqs[i])
		}(i)
	}
	wg.Wait()

	return reports
}

func computeSnapshot(candles []models.Candle, p profile.Profile) Snapshot {
	closes := models.Closes(candles)

	return Snapshot{
		RSI:        indicators.RSI(closes, p.RSIPeriod, p.RSIOverbought, p.RSIOversold),
		StochRSI:   indicators.StochRSI(closes, p.StochRSIPeriod, p.StochPeriod, p.StochK, p.StochD, p.StochOverbought, p.StochOversold),
		MACD:       indicators.MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		Bollinger:  indicators.Bollinger(closes, p.BBPeriod, p.BBStdDev),
		EMATrend:   indicators.EMATrend(closes, p.EMATrendPeriod),
		EMAPair:    indicators.EMACross(closes, p.EMAFast, p.EMASlow),
		OBV:        indicators.OBV(candles, p.FlowLookback),
		VWAP:       indicators.VWAP(candles),
		CVD:        indicators.CVD(candles, p.FlowLookback),
		Volume:     indicators.Volume(candles, p.VolumePeriod),
		ATR:        indicators.ATR(candles, p.ATRPeriod),
		ADX:        indicators.ADX(candles, p.ADXPeriod),
		Momentum:   indicators.Momentum(closes, p.MomentumPeriod),
		Supertrend: indicators.Supertrend(candles, p.SupertrendPeriod, p.SupertrendMultiplier),
		Fibonacci:  indicators.Fibonacci(candles, p.FibLookback),
		Liquidity:  indicators.Liquidity(candles, p.LiquidityRecent, p.LiquidityLong),
		Fakeout:    indicators.Fakeout(candles),
	}
}

func buildReasons(conf confluence.Result, q quality.Result, smc structure.Result) []string {
	reasons := conf.Reasons()
	for _, f := range q.Filters {
		if !f.Passed {
			reasons = append(reasons, "фильтр: "+f.Reason)
		}
	}
	for _, r := range smc.Reasons {
		reasons = append(reasons, "SMC: "+r)
	}
	return reasons
}
