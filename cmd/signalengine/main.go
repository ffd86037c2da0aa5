package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skalibog/signalengine/internal/analysis/aggregator"
	"github.com/skalibog/signalengine/internal/config"
	"github.com/skalibog/signalengine/internal/exchange"
	"github.com/skalibog/signalengine/internal/storage"
	"github.com/skalibog/signalengine/internal/ui"
	"github.com/skalibog/signalengine/pkg/logger"
	"github.com/skalibog/signalengine/pkg/models"
)

const requestTimeout = 60 * time.Second

func main() {
	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	syncStore := flag.Bool("sync", false, "сохранить полученные с Binance свечи в InfluxDB")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.String("path", *configPath), zap.Error(err))
	}

	if err := logger.Init(cfg.Logging); err != nil {
		logger.Fatal("Ошибка инициализации логгера", zap.Error(err))
	}
	defer logger.Sync()

	logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Запуск анализа",
		zap.String("symbol", cfg.Source.Symbol),
		zap.String("interval", cfg.Source.Interval),
		zap.String("source", cfg.Source.Type))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	candles, err := loadCandles(ctx, cfg, *syncStore)
	if err != nil {
		logger.Fatal("Ошибка получения свечей", zap.Error(err))
	}

	engine := aggregator.NewEngine(logger.Component("engine"), cfg.Engine.Weights)
	report := engine.Analyze(aggregator.Request{
		Symbol:    cfg.Source.Symbol,
		Timeframe: cfg.Source.Interval,
		Candles:   candles,
		Ladder:    cfg.Ladder(),
		Overrides: cfg.Engine.Profiles,
	})

	logger.Info("Анализ завершен",
		zap.String("direction", string(report.Direction)),
		zap.Float64("score", report.Score),
		zap.String("grade", string(report.Quality.Grade)),
		zap.Bool("tradeable", report.Tradeable()))

	fmt.Fprintln(os.Stdout, ui.NewRenderer(cfg.UI).Render(report))
}

func loadCandles(ctx context.Context, cfg *config.Config, syncStore bool) ([]models.Candle, error) {
	src := cfg.Source

	if src.Type == config.SourceInfluxDB {
		store, err := storage.NewInfluxDBStorage(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.GetCandles(ctx, src.Symbol, src.Interval, src.Limit)
	}

	client := exchange.NewBinanceClient(cfg.Binance, src)
	candles, err := client.GetCandles(ctx, src.Symbol, src.Interval, src.Limit)
	if err != nil {
		return nil, err
	}

	if syncStore {
		// Ошибка синхронизации не мешает анализу
		if err := saveCandles(ctx, cfg.Storage, candles); err != nil {
			logger.Error("Ошибка синхронизации свечей", zap.Error(err))
		} else {
			logger.Info("Свечи сохранены в InfluxDB", zap.Int("count", len(candles)))
		}
	}
	return candles, nil
}

func saveCandles(ctx context.Context, cfg config.StorageConfig, candles []models.Candle) error {
	store, err := storage.NewInfluxDBStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveCandles(ctx, candles)
}
