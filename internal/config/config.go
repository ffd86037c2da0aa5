package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/skalibog/signalengine/internal/analysis/confluence"
	"github.com/skalibog/signalengine/internal/analysis/profile"
	"github.com/skalibog/signalengine/internal/analysis/quality"
	"github.com/skalibog/signalengine/pkg/logger"
)

// Источники свечей
const (
	SourceBinance  = "binance"
	SourceInfluxDB = "influxdb"
)

// Рынки Binance
const (
	MarketFutures = "futures"
	MarketSpot    = "spot"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Logging logger.Config `yaml:"logging"`
	Source  SourceConfig  `yaml:"source"`
	Binance BinanceConfig `yaml:"binance"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
	UI      UIConfig      `yaml:"ui"`
}

// SourceConfig откуда брать свечи для анализа
type SourceConfig struct {
	Type       string `yaml:"type"`
	Symbol     string `yaml:"symbol"`
	Interval   string `yaml:"interval"`
	Limit      int    `yaml:"limit"`
	Market     string `yaml:"market"`
	Retries    int    `yaml:"retries"`
	RetryMinMs int    `yaml:"retry_min_ms"`
	RetryMaxMs int    `yaml:"retry_max_ms"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
}

// StorageConfig настройки хранения свечей
type StorageConfig struct {
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
	Range        string `yaml:"range"`
}

// EngineConfig настройки сигнального движка
type EngineConfig struct {
	Ladder   string                     `yaml:"ladder"`
	Weights  confluence.Weights         `yaml:"weights"`
	Profiles map[string]profile.Profile `yaml:"profiles"`
}

// UIConfig настройки вывода отчета
type UIConfig struct {
	Color             bool `yaml:"color"`
	Width             int  `yaml:"width"`
	ShowContributions bool `yaml:"show_contributions"`
	ShowStructure     bool `yaml:"show_structure"`
}

// Default конфигурация без файла
func Default() *Config {
	return &Config{
		Logging: logger.Config{Level: "info", Console: true},
		Source: SourceConfig{
			Type:       SourceBinance,
			Symbol:     "BTCUSDT",
			Interval:   "1h",
			Limit:      300,
			Market:     MarketFutures,
			Retries:    3,
			RetryMinMs: 500,
			RetryMaxMs: 5000,
		},
		Storage: StorageConfig{
			URL:          "http://localhost:8086",
			Organization: "signalengine",
			Bucket:       "candles",
			Range:        "-30d",
		},
		Engine: EngineConfig{
			Ladder:  string(quality.LadderStandard),
			Weights: confluence.DefaultWeights(),
		},
		UI: UIConfig{Color: true, Width: 72, ShowContributions: true, ShowStructure: true},
	}
}

// Load загружает конфигурацию из файла и переменных окружения.
// Пустой path означает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение файла конфигурации: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("разбор файла конфигурации: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("чтение .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.Binance.APIKey, "BINANCE_API_KEY")
	setString(&c.Binance.APISecret, "BINANCE_API_SECRET")
	setString(&c.Storage.Token, "INFLUX_TOKEN")
	setString(&c.Source.Symbol, "SIGNAL_SYMBOL")
	setString(&c.Source.Interval, "SIGNAL_INTERVAL")
}

// applyDefaults заполняет поля, обнуленные файлом
func (c *Config) applyDefaults() {
	d := Default()

	c.Source.Type = strings.ToLower(strings.TrimSpace(c.Source.Type))
	c.Source.Market = strings.ToLower(strings.TrimSpace(c.Source.Market))
	c.Source.Symbol = strings.ToUpper(strings.TrimSpace(c.Source.Symbol))
	if c.Source.Type == "" {
		c.Source.Type = d.Source.Type
	}
	if c.Source.Market == "" {
		c.Source.Market = d.Source.Market
	}
	if c.Source.Interval == "" {
		c.Source.Interval = d.Source.Interval
	}
	if c.Source.Limit <= 0 {
		c.Source.Limit = d.Source.Limit
	}
	if c.Source.RetryMinMs <= 0 {
		c.Source.RetryMinMs = d.Source.RetryMinMs
	}
	if c.Source.RetryMaxMs < c.Source.RetryMinMs {
		c.Source.RetryMaxMs = max(d.Source.RetryMaxMs, c.Source.RetryMinMs)
	}
	if c.Storage.Range == "" {
		c.Storage.Range = d.Storage.Range
	}
	if c.Engine.Ladder == "" {
		c.Engine.Ladder = d.Engine.Ladder
	}
	if c.Engine.Weights.IsZero() {
		c.Engine.Weights = d.Engine.Weights
	}
	if c.UI.Width <= 0 {
		c.UI.Width = d.UI.Width
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.Source.Type {
	case SourceBinance, SourceInfluxDB:
	default:
		return fmt.Errorf("неизвестный источник свечей %q", c.Source.Type)
	}
	switch c.Source.Market {
	case MarketFutures, MarketSpot:
	default:
		return fmt.Errorf("неизвестный рынок %q", c.Source.Market)
	}
	if c.Source.Symbol == "" {
		return errors.New("не задан символ")
	}
	if c.Source.Retries < 0 {
		return fmt.Errorf("retries не может быть отрицательным: %d", c.Source.Retries)
	}
	if c.Source.Type == SourceInfluxDB && c.Storage.Bucket == "" {
		return errors.New("для источника influxdb нужен storage.bucket")
	}

	if _, err := quality.ParseLadder(c.Engine.Ladder); err != nil {
		return err
	}
	if err := c.Engine.Weights.Validate(); err != nil {
		return fmt.Errorf("веса конфлюенса: %w", err)
	}
	for label := range c.Engine.Profiles {
		p := profile.Resolve(label, c.Engine.Profiles)
		if err := p.Validate(); err != nil {
			return fmt.Errorf("профиль %q: %w", label, err)
		}
	}
	return nil
}

// Ladder шкала оценки качества
func (c *Config) Ladder() quality.Ladder {
	l, err := quality.ParseLadder(c.Engine.Ladder)
	if err != nil {
		return quality.LadderStandard
	}
	return l
}
