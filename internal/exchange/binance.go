package exchange

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/skalibog/signalengine/internal/config"
	"github.com/skalibog/signalengine/pkg/logger"
	"github.com/skalibog/signalengine/pkg/models"
)

const (
	futuresTestnetURL = "https://testnet.binancefuture.com"
	spotTestnetURL    = "https://testnet.binance.vision"
)

// kline поля свечи, общие для спота и фьючерсов
type kline struct {
	OpenTime  int64
	Open      string
	High      string
	Low       string
	Close     string
	Volume    string
	CloseTime int64
}

// BinanceClient клиент для получения свечей с Binance
type BinanceClient struct {
	futures *futures.Client
	spot    *binance.Client
	market  string
	retries int
	minWait time.Duration
	maxWait time.Duration
}

// NewBinanceClient создает новый клиент Binance
func NewBinanceClient(cfg config.BinanceConfig, source config.SourceConfig) *BinanceClient {
	futuresClient := futures.NewClient(cfg.APIKey, cfg.APISecret)
	spotClient := binance.NewClient(cfg.APIKey, cfg.APISecret)

	if cfg.Testnet {
		futuresClient.BaseURL = futuresTestnetURL
		spotClient.BaseURL = spotTestnetURL
	}

	return &BinanceClient{
		futures: futuresClient,
		spot:    spotClient,
		market:  source.Market,
		retries: source.Retries,
		minWait: time.Duration(source.RetryMinMs) * time.Millisecond,
		maxWait: time.Duration(source.RetryMaxMs) * time.Millisecond,
	}
}

// GetCandles получает исторические свечи по возрастанию времени.
// Сетевые ошибки повторяются с экспоненциальной задержкой.
func (c *BinanceClient) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	b := &backoff.Backoff{
		Min:    c.minWait,
		Max:    c.maxWait,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 0; ; attempt++ {
		klines, err := c.fetch(ctx, symbol, interval, limit)
		if err == nil {
			return toCandles(symbol, interval, klines)
		}
		if attempt >= c.retries {
			return nil, fmt.Errorf("ошибка получения свечей %s %s: %w", symbol, interval, err)
		}

		wait := b.Duration()
		logger.Warn("Ошибка запроса свечей, повтор",
			zap.String("symbol", symbol),
			zap.String("interval", interval),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *BinanceClient) fetch(ctx context.Context, symbol, interval string, limit int) ([]kline, error) {
	if c.market == config.MarketSpot {
		raw, err := c.spot.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			Limit(limit).
			Do(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]kline, len(raw))
		for i, k := range raw {
			out[i] = kline{k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume, k.CloseTime}
		}
		return out, nil
	}

	raw, err := c.futures.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]kline, len(raw))
	for i, k := range raw {
		out[i] = kline{k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume, k.CloseTime}
	}
	return out, nil
}

func toCandles(symbol, interval string, klines []kline) ([]models.Candle, error) {
	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := parseKline(symbol, interval, k)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})
	return candles, nil
}

func parseKline(symbol, interval string, k kline) (models.Candle, error) {
	var vals [5]float64
	for i, s := range [5]string{k.Open, k.High, k.Low, k.Close, k.Volume} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return models.Candle{}, fmt.Errorf("ошибка разбора свечи %s: %w", time.UnixMilli(k.OpenTime).UTC(), err)
		}
		vals[i], _ = d.Float64()
	}

	return models.Candle{
		Symbol:    symbol,
		Interval:  interval,
		OpenTime:  time.UnixMilli(k.OpenTime).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		CloseTime: time.UnixMilli(k.CloseTime).UTC(),
	}, nil
}
