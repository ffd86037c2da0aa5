package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/skalibog/signalengine/internal/config"
)

func TestToCandlesSortsAndParses(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	hour := time.Hour.Milliseconds()

	klines := []kline{
		{base + hour, "101.5", "102", "100.9", "101.75", "12.5", base + 2*hour - 1},
		{base, "100.00000001", "101.6", "99.5", "101.5", "10", base + hour - 1},
	}
	candles, err := toCandles("BTCUSDT", "1h", klines)
	if err != nil {
		t.Fatalf("toCandles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("candles = %d", len(candles))
	}
	if !candles[0].OpenTime.Before(candles[1].OpenTime) {
		t.Fatalf("candles not ascending: %v %v", candles[0].OpenTime, candles[1].OpenTime)
	}
	c := candles[1]
	if c.Open != 101.5 || c.High != 102 || c.Low != 100.9 || c.Close != 101.75 || c.Volume != 12.5 {
		t.Fatalf("parsed candle = %+v", c)
	}
	if c.Symbol != "BTCUSDT" || c.Interval != "1h" || c.OpenTime.Location() != time.UTC {
		t.Fatalf("metadata = %+v", c)
	}
	if got := c.CloseTime.Sub(c.OpenTime); got != time.Hour-time.Millisecond {
		t.Fatalf("close-open = %v", got)
	}
}

func TestToCandlesRejectsGarbage(t *testing.T) {
	_, err := toCandles("BTCUSDT", "1h", []kline{{0, "1", "2", "x", "1", "1", 0}})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestGetCandlesHonorsCanceledContext(t *testing.T) {
	c := NewBinanceClient(config.BinanceConfig{}, config.SourceConfig{
		Market:     config.MarketFutures,
		Retries:    5,
		RetryMinMs: 1000,
		RetryMaxMs: 1000,
	})
	c.futures.BaseURL = "http://127.0.0.1:1"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := c.GetCandles(ctx, "BTCUSDT", "1h", 10); err == nil {
		t.Fatalf("expected error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("canceled request kept retrying")
	}
}
