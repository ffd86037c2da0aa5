package aggregator

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/skalibog/signalengine/internal/analysis/confluence"
	"github.com/skalibog/signalengine/internal/analysis/indicators"
	"github.com/skalibog/signalengine/internal/analysis/profile"
	"github.com/skalibog/signalengine/internal/analysis/quality"
	"github.com/skalibog/signalengine/pkg/models"
)

var start = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// rising строго растущий ряд: закрытие +0.5% за бар, объем растет вместе с ценой
func rising(n int) []models.Candle {
	const growth = 1.005
	out := make([]models.Candle, n)
	prev := 100 / growth
	for i := range out {
		c := 100 * math.Pow(growth, float64(i))
		out[i] = models.Candle{
			Symbol:   "BTCUSDT",
			Interval: "1h",
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     prev,
			High:     c * 1.001,
			Low:      prev * 0.999,
			Close:    c,
			Volume:   100 + float64(i),
		}
		prev = c
	}
	return out
}

// wave колеблющийся ряд со случайным на вид, но детерминированным объемом
func wave(n int, period float64) []models.Candle {
	out := make([]models.Candle, n)
	prev := 100.0
	for i := range out {
		c := 100 + 5*math.Sin(float64(i)*2*math.Pi/period) + 0.02*float64(i)
		out[i] = models.Candle{
			OpenTime: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:     prev,
			High:     math.Max(prev, c) + 0.4,
			Low:      math.Min(prev, c) - 0.4,
			Close:    c,
			Volume:   1000 + 300*math.Cos(float64(i)*0.7),
		}
		prev = c
	}
	return out
}

func TestAnalyzeRisingSeries(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t), confluence.DefaultWeights())
	r := e.Analyze(Request{Symbol: "BTCUSDT", Timeframe: "1h", Candles: rising(250)})

	if r.Status != StatusOK {
		t.Fatalf("Status = %s", r.Status)
	}
	if r.Indicators.RSI.Value <= 70 {
		t.Errorf("RSI = %v, want > 70", r.Indicators.RSI.Value)
	}
	if r.Indicators.EMATrend.Position != indicators.PositionAbove {
		t.Errorf("EMA200 position = %s, want above", r.Indicators.EMATrend.Position)
	}
	if !strings.Contains(string(r.Indicators.MACD.Trend), "bullish") {
		t.Errorf("MACD trend = %s, want bullish", r.Indicators.MACD.Trend)
	}
	if r.Direction != indicators.SignalBuy && r.Direction != indicators.SignalStrongBuy {
		t.Errorf("Direction = %s (score %.2f), want buy or strong_buy", r.Direction, r.Score)
	}
	if r.Score < -100 || r.Score > 100 {
		t.Errorf("Score out of range: %v", r.Score)
	}
	if r.Quality.Score < 0 || r.Quality.Score > 100 {
		t.Errorf("quality out of range: %v", r.Quality.Score)
	}
	if len(r.Reasons) == 0 {
		t.Errorf("no reasons reported")
	}
}

func TestAnalyzeInsufficient(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEngine(zap.New(core), confluence.Weights{})

	r := e.Analyze(Request{Symbol: "ETHUSDT", Timeframe: "5m", Candles: rising(MinCandles - 1)})
	if r.Status != StatusInsufficient {
		t.Fatalf("Status = %s, want %s", r.Status, StatusInsufficient)
	}
	if r.Direction != indicators.SignalInsufficient || r.Tradeable() {
		t.Fatalf("direction %s tradeable %v", r.Direction, r.Tradeable())
	}
	if r.Structure.Signal != indicators.SignalInsufficient {
		t.Fatalf("structure signal = %s", r.Structure.Signal)
	}
	if r.Quality.Grade != quality.GradeD {
		t.Fatalf("grade = %s, want D", r.Quality.Grade)
	}
	if logs.Len() != 1 {
		t.Fatalf("warn logs = %d, want 1", logs.Len())
	}

	if r := e.Analyze(Request{Timeframe: "1h"}); r.Status != StatusInsufficient || r.Price != 0 {
		t.Fatalf("empty series: %+v", r)
	}
}

func TestAnalyzeStructureNeedsMoreCandles(t *testing.T) {
	e := NewEngine(nil, confluence.Weights{})
	r := e.Analyze(Request{Timeframe: "15m", Candles: wave(60, 16)})

	if r.Status != StatusOK {
		t.Fatalf("Status = %s", r.Status)
	}
	if r.Structure.Signal != indicators.SignalInsufficient {
		t.Fatalf("structure must be insufficient below 100 candles, got %s", r.Structure.Signal)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	e := NewEngine(nil, confluence.DefaultWeights())
	candles := wave(300, 24)
	snapshot := append([]models.Candle(nil), candles...)
	req := Request{Symbol: "SOLUSDT", Timeframe: "15m", Candles: candles, Ladder: quality.LadderScalping}

	first, second := e.Analyze(req), e.Analyze(req)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated analysis differs")
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("serialized reports differ")
	}

	if !reflect.DeepEqual(candles, snapshot) {
		t.Fatalf("input candles mutated")
	}
}

func TestAnalyzeBatchMatchesSequential(t *testing.T) {
	e := NewEngine(nil, confluence.DefaultWeights())
	reqs := []Request{
		{Symbol: "A", Timeframe: "1h", Candles: rising(250)},
		{Symbol: "B", Timeframe: "15m", Candles: wave(200, 20)},
		{Symbol: "C", Timeframe: "1m", Candles: wave(150, 12), Ladder: quality.LadderScalping},
		{Symbol: "D", Timeframe: "1d", Candles: wave(20, 10)},
	}

	got := e.AnalyzeBatch(reqs)
	if len(got) != len(reqs) {
		t.Fatalf("reports = %d, want %d", len(got), len(reqs))
	}
	for i, req := range reqs {
		want := e.Analyze(req)
		if !reflect.DeepEqual(got[i], want) {
			t.Errorf("%s: batch report differs from sequential", req.Symbol)
		}
	}
}

func TestAnalyzeProfileOverrides(t *testing.T) {
	e := NewEngine(nil, confluence.DefaultWeights())
	candles := wave(200, 20)

	base := e.Analyze(Request{Timeframe: "1h", Candles: candles})

	// macd_fast больше macd_slow: переопределение отбрасывается
	invalid := e.Analyze(Request{Timeframe: "1h", Candles: candles, Overrides: map[string]profile.Profile{
		"1h": {MACDFast: 40},
	}})
	if !reflect.DeepEqual(base, invalid) {
		t.Fatalf("invalid override must fall back to built-in profile")
	}

	custom := e.Analyze(Request{Timeframe: "1h", Candles: candles, Overrides: map[string]profile.Profile{
		"1h": {RSIPeriod: 7},
	}})
	if custom.Indicators.RSI.Value == base.Indicators.RSI.Value {
		t.Fatalf("override did not change RSI period")
	}

	unknown := e.Analyze(Request{Timeframe: "7m", Candles: candles})
	if unknown.Profile != profile.DefaultLabel {
		t.Fatalf("Profile = %s, want %s", unknown.Profile, profile.DefaultLabel)
	}
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(nil, confluence.Weights{})
	if e.Weights() != confluence.DefaultWeights() {
		t.Fatalf("zero weights must be replaced by defaults")
	}
}
