// Package profile описывает параметры индикаторов для каждого таймфрейма.
package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultLabel таймфрейм, профиль которого используется для неизвестных меток
const DefaultLabel = "1h"

// Profile набор параметров индикаторов для одного таймфрейма.
// Значение передается в каждый вызов анализа и не изменяется движком.
type Profile struct {
	// Label метка профиля, который фактически применен
	Label string `yaml:"-"`

	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	BBPeriod int     `yaml:"bb_period"`
	BBStdDev float64 `yaml:"bb_std_dev"`

	StochRSIPeriod  int     `yaml:"stoch_rsi_period"`
	StochPeriod     int     `yaml:"stoch_period"`
	StochK          int     `yaml:"stoch_k"`
	StochD          int     `yaml:"stoch_d"`
	StochOverbought float64 `yaml:"stoch_overbought"`
	StochOversold   float64 `yaml:"stoch_oversold"`

	EMATrendPeriod int `yaml:"ema_trend_period"`
	EMAFast        int `yaml:"ema_fast"`
	EMASlow        int `yaml:"ema_slow"`

	ATRPeriod            int     `yaml:"atr_period"`
	ADXPeriod            int     `yaml:"adx_period"`
	SupertrendPeriod     int     `yaml:"supertrend_period"`
	SupertrendMultiplier float64 `yaml:"supertrend_multiplier"`
	MomentumPeriod       int     `yaml:"momentum_period"`

	VolumePeriod int `yaml:"volume_period"`
	FlowLookback int `yaml:"flow_lookback"` // OBV и CVD

	FibLookback     int `yaml:"fib_lookback"`
	LiquidityRecent int `yaml:"liquidity_recent"`
	LiquidityLong   int `yaml:"liquidity_long"`

	Structure Structure `yaml:"structure"`
}

// Structure параметры структурного анализа (SMC).
// Размеры в процентах от цены.
type Structure struct {
	SwingLookback      int     `yaml:"swing_lookback"`
	OBMinSize          float64 `yaml:"ob_min_size"`
	OBMaxAge           int     `yaml:"ob_max_age"`
	OBForwardWindow    int     `yaml:"ob_forward_window"`
	FVGMinSize         float64 `yaml:"fvg_min_size"`
	FVGMaxAge          int     `yaml:"fvg_max_age"`
	FVGProximity       float64 `yaml:"fvg_proximity"`
	LiquidityThreshold float64 `yaml:"liquidity_threshold"`
	RecentBreakBars    int     `yaml:"recent_break_bars"`
	RecentSweepBars    int     `yaml:"recent_sweep_bars"`
}

// Labels возвращает метки встроенных профилей
func Labels() []string {
	return []string{"1m", "3m", "5m", "15m", "30m", "1h", "2h", "4h", "1d"}
}

// Duration длительность свечи для метки вида "15m", "4h", "1d", "1w" или "1M" (месяц, 30 дней).
// Метка, которую не удалось разобрать, дает длительность DefaultLabel.
func Duration(label string) time.Duration {
	label = strings.TrimSpace(label)
	if d, ok := parseDuration(label); ok {
		return d
	}
	d, _ := parseDuration(DefaultLabel)
	return d
}

func parseDuration(label string) (time.Duration, bool) {
	if len(label) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(label[:len(label)-1])
	if err != nil || n <= 0 {
		return 0, false
	}

	var unit time.Duration
	switch label[len(label)-1] {
	case 'm':
		unit = time.Minute
	case 'h', 'H':
		unit = time.Hour
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	default:
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// ForTimeframe возвращает профиль для метки таймфрейма.
// Неизвестная метка дает профиль "1h".
func ForTimeframe(label string) Profile {
	key := strings.ToLower(strings.TrimSpace(label))
	p, ok := builtin(key)
	if !ok {
		key = DefaultLabel
		p, _ = builtin(key)
	}
	p.Label = key
	return p
}

// Resolve берет встроенный профиль и накладывает на него переопределения из конфигурации.
// Нулевые поля переопределения не меняют встроенное значение.
func Resolve(label string, overrides map[string]Profile) Profile {
	base := ForTimeframe(label)
	if len(overrides) == 0 {
		return base
	}

	o, ok := overrides[base.Label]
	if !ok {
		// Переопределение могло быть задано для исходной метки ("3m" при профиле 5m)
		o, ok = overrides[strings.ToLower(strings.TrimSpace(label))]
	}
	if !ok {
		return base
	}
	return merge(base, o)
}

func merge(p, o Profile) Profile {
	setInt(&p.RSIPeriod, o.RSIPeriod)
	setFloat(&p.RSIOverbought, o.RSIOverbought)
	setFloat(&p.RSIOversold, o.RSIOversold)
	setInt(&p.MACDFast, o.MACDFast)
	setInt(&p.MACDSlow, o.MACDSlow)
	setInt(&p.MACDSignal, o.MACDSignal)
	setInt(&p.BBPeriod, o.BBPeriod)
	setFloat(&p.BBStdDev, o.BBStdDev)
	setInt(&p.StochRSIPeriod, o.StochRSIPeriod)
	setInt(&p.StochPeriod, o.StochPeriod)
	setInt(&p.StochK, o.StochK)
	setInt(&p.StochD, o.StochD)
	setFloat(&p.StochOverbought, o.StochOverbought)
	setFloat(&p.StochOversold, o.StochOversold)
	setInt(&p.EMATrendPeriod, o.EMATrendPeriod)
	setInt(&p.EMAFast, o.EMAFast)
	setInt(&p.EMASlow, o.EMASlow)
	setInt(&p.ATRPeriod, o.ATRPeriod)
	setInt(&p.ADXPeriod, o.ADXPeriod)
	setInt(&p.SupertrendPeriod, o.SupertrendPeriod)
	setFloat(&p.SupertrendMultiplier, o.SupertrendMultiplier)
	setInt(&p.MomentumPeriod, o.MomentumPeriod)
	setInt(&p.VolumePeriod, o.VolumePeriod)
	setInt(&p.FlowLookback, o.FlowLookback)
	setInt(&p.FibLookback, o.FibLookback)
	setInt(&p.LiquidityRecent, o.LiquidityRecent)
	setInt(&p.LiquidityLong, o.LiquidityLong)

	s, ov := &p.Structure, o.Structure
	setInt(&s.SwingLookback, ov.SwingLookback)
	setFloat(&s.OBMinSize, ov.OBMinSize)
	setInt(&s.OBMaxAge, ov.OBMaxAge)
	setInt(&s.OBForwardWindow, ov.OBForwardWindow)
	setFloat(&s.FVGMinSize, ov.FVGMinSize)
	setInt(&s.FVGMaxAge, ov.FVGMaxAge)
	setFloat(&s.FVGProximity, ov.FVGProximity)
	setFloat(&s.LiquidityThreshold, ov.LiquidityThreshold)
	setInt(&s.RecentBreakBars, ov.RecentBreakBars)
	setInt(&s.RecentSweepBars, ov.RecentSweepBars)

	return p
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// Validate проверяет, что периоды положительны, а пороги лежат в допустимых диапазонах
func (p Profile) Validate() error {
	periods := []struct {
		name  string
		value int
	}{
		{"rsi_period", p.RSIPeriod},
		{"macd_fast", p.MACDFast},
		{"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal},
		{"bb_period", p.BBPeriod},
		{"stoch_rsi_period", p.StochRSIPeriod},
		{"stoch_period", p.StochPeriod},
		{"stoch_k", p.StochK},
		{"stoch_d", p.StochD},
		{"ema_trend_period", p.EMATrendPeriod},
		{"ema_fast", p.EMAFast},
		{"ema_slow", p.EMASlow},
		{"atr_period", p.ATRPeriod},
		{"adx_period", p.ADXPeriod},
		{"supertrend_period", p.SupertrendPeriod},
		{"momentum_period", p.MomentumPeriod},
		{"volume_period", p.VolumePeriod},
		{"flow_lookback", p.FlowLookback},
		{"fib_lookback", p.FibLookback},
		{"liquidity_recent", p.LiquidityRecent},
		{"liquidity_long", p.LiquidityLong},
		{"structure.swing_lookback", p.Structure.SwingLookback},
		{"structure.ob_max_age", p.Structure.OBMaxAge},
		{"structure.ob_forward_window", p.Structure.OBForwardWindow},
		{"structure.fvg_max_age", p.Structure.FVGMaxAge},
		{"structure.recent_break_bars", p.Structure.RecentBreakBars},
		{"structure.recent_sweep_bars", p.Structure.RecentSweepBars},
	}
	for _, f := range periods {
		if f.value <= 0 {
			return fmt.Errorf("профиль %s: %s должен быть положительным, получено %d", p.Label, f.name, f.value)
		}
	}

	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("профиль %s: macd_fast (%d) должен быть меньше macd_slow (%d)", p.Label, p.MACDFast, p.MACDSlow)
	}
	if p.EMAFast >= p.EMASlow {
		return fmt.Errorf("профиль %s: ema_fast (%d) должен быть меньше ema_slow (%d)", p.Label, p.EMAFast, p.EMASlow)
	}
	if p.LiquidityRecent > p.LiquidityLong {
		return fmt.Errorf("профиль %s: liquidity_recent больше liquidity_long", p.Label)
	}
	if err := checkZone("rsi", p.RSIOverbought, p.RSIOversold); err != nil {
		return fmt.Errorf("профиль %s: %w", p.Label, err)
	}
	if err := checkZone("stoch", p.StochOverbought, p.StochOversold); err != nil {
		return fmt.Errorf("профиль %s: %w", p.Label, err)
	}
	if p.BBStdDev <= 0 || p.SupertrendMultiplier <= 0 {
		return fmt.Errorf("профиль %s: множители полос должны быть положительными", p.Label)
	}

	s := p.Structure
	if s.OBMinSize <= 0 || s.FVGMinSize <= 0 || s.FVGProximity <= 0 || s.LiquidityThreshold <= 0 {
		return fmt.Errorf("профиль %s: пороги структуры должны быть положительными", p.Label)
	}

	return nil
}

func checkZone(name string, overbought, oversold float64) error {
	if overbought <= 50 || overbought >= 100 {
		return fmt.Errorf("%s_overbought должен быть в (50, 100), получено %.2f", name, overbought)
	}
	if oversold <= 0 || oversold >= 50 {
		return fmt.Errorf("%s_oversold должен быть в (0, 50), получено %.2f", name, oversold)
	}
	return nil
}

// builtin возвращает встроенный профиль. 3m использует параметры 5m, 30m параметры 15m.
func builtin(label string) (Profile, bool) {
	switch label {
	case "1m":
		return Profile{
			RSIPeriod: 7, RSIOverbought: 75, RSIOversold: 25,
			MACDFast: 5, MACDSlow: 13, MACDSignal: 4,
			BBPeriod: 20, BBStdDev: 2,
			StochRSIPeriod: 7, StochPeriod: 7, StochK: 3, StochD: 3, StochOverbought: 80, StochOversold: 20,
			EMATrendPeriod: 200, EMAFast: 5, EMASlow: 13,
			ATRPeriod: 10, ADXPeriod: 10, SupertrendPeriod: 7, SupertrendMultiplier: 2, MomentumPeriod: 5,
			VolumePeriod: 20, FlowLookback: 14,
			FibLookback: 30, LiquidityRecent: 5, LiquidityLong: 50,
			Structure: Structure{
				SwingLookback: 3, OBMinSize: 0.3, OBMaxAge: 30, OBForwardWindow: 5,
				FVGMinSize: 0.05, FVGMaxAge: 20, FVGProximity: 0.2, LiquidityThreshold: 0.1,
				RecentBreakBars: 10, RecentSweepBars: 3,
			},
		}, true
	case "3m", "5m":
		return Profile{
			RSIPeriod: 9, RSIOverbought: 70, RSIOversold: 30,
			MACDFast: 8, MACDSlow: 17, MACDSignal: 9,
			BBPeriod: 20, BBStdDev: 2,
			StochRSIPeriod: 14, StochPeriod: 14, StochK: 3, StochD: 3, StochOverbought: 80, StochOversold: 20,
			EMATrendPeriod: 200, EMAFast: 9, EMASlow: 21,
			ATRPeriod: 14, ADXPeriod: 14, SupertrendPeriod: 10, SupertrendMultiplier: 2.5, MomentumPeriod: 10,
			VolumePeriod: 20, FlowLookback: 20,
			FibLookback: 50, LiquidityRecent: 5, LiquidityLong: 50,
			Structure: Structure{
				SwingLookback: 3, OBMinSize: 0.5, OBMaxAge: 40, OBForwardWindow: 5,
				FVGMinSize: 0.1, FVGMaxAge: 30, FVGProximity: 0.3, LiquidityThreshold: 0.2,
				RecentBreakBars: 10, RecentSweepBars: 5,
			},
		}, true
	case "15m", "30m":
		return Profile{
			RSIPeriod: 14, RSIOverbought: 70, RSIOversold: 30,
			MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
			BBPeriod: 20, BBStdDev: 2,
			StochRSIPeriod: 14, StochPeriod: 14, StochK: 3, StochD: 3, StochOverbought: 80, StochOversold: 20,
			EMATrendPeriod: 200, EMAFast: 9, EMASlow: 21,
			ATRPeriod: 14, ADXPeriod: 14, SupertrendPeriod: 10, SupertrendMultiplier: 3, MomentumPeriod: 10,
			VolumePeriod: 20, FlowLookback: 20,
			FibLookback: 50, LiquidityRecent: 5, LiquidityLong: 50,
			Structure: Structure{
				SwingLookback: 4, OBMinSize: 0.8, OBMaxAge: 50, OBForwardWindow: 5,
				FVGMinSize: 0.15, FVGMaxAge: 40, FVGProximity: 0.4, LiquidityThreshold: 0.3,
				RecentBreakBars: 10, RecentSweepBars: 5,
			},
		}, true
	case "1h":
		return Profile{
			RSIPeriod: 14, RSIOverbought: 70, RSIOversold: 30,
			MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
			BBPeriod: 20, BBStdDev: 2,
			StochRSIPeriod: 14, StochPeriod: 14, StochK: 3, StochD: 3, StochOverbought: 80, StochOversold: 20,
			EMATrendPeriod: 200, EMAFast: 12, EMASlow: 26,
			ATRPeriod: 14, ADXPeriod: 14, SupertrendPeriod: 10, SupertrendMultiplier: 3, MomentumPeriod: 10,
			VolumePeriod: 20, FlowLookback: 20,
			FibLookback: 50, LiquidityRecent: 5, LiquidityLong: 50,
			Structure: Structure{
				SwingLookback: 5, OBMinSize: 1.0, OBMaxAge: 50, OBForwardWindow: 5,
				FVGMinSize: 0.2, FVGMaxAge: 50, FVGProximity: 0.5, LiquidityThreshold: 0.5,
				RecentBreakBars: 10, RecentSweepBars: 5,
			},
		}, true
	case "2h", "4h":
		return Profile{
			RSIPeriod: 14, RSIOverbought: 70, RSIOversold: 30,
			MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
			BBPeriod: 20, BBStdDev: 2,
			StochRSIPeriod: 14, StochPeriod: 14, StochK: 3, StochD: 3, StochOverbought: 80, StochOversold: 20,
			EMATrendPeriod: 200, EMAFast: 21, EMASlow: 55,
			ATRPeriod: 14, ADXPeriod: 14, SupertrendPeriod: 10, SupertrendMultiplier: 3, MomentumPeriod: 10,
			VolumePeriod: 20, FlowLookback: 20,
			FibLookback: 50, LiquidityRecent: 5, LiquidityLong: 50,
			Structure: Structure{
				SwingLookback: 5, OBMinSize: 1.5, OBMaxAge: 60, OBForwardWindow: 5,
				FVGMinSize: 0.3, FVGMaxAge: 60, FVGProximity: 0.7, LiquidityThreshold: 0.7,
				RecentBreakBars: 8, RecentSweepBars: 4,
			},
		}, true
	case "1d":
		return Profile{
			RSIPeriod: 14, RSIOverbought: 70, RSIOversold: 30,
			MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
			BBPeriod: 20, BBStdDev: 2,
			StochRSIPeriod: 14, StochPeriod: 14, StochK: 3, StochD: 3, StochOverbought: 80, StochOversold: 20,
			EMATrendPeriod: 200, EMAFast: 21, EMASlow: 55,
			ATRPeriod: 14, ADXPeriod: 14, SupertrendPeriod: 10, SupertrendMultiplier: 3, MomentumPeriod: 10,
			VolumePeriod: 20, FlowLookback: 20,
			FibLookback: 50, LiquidityRecent: 5, LiquidityLong: 50,
			Structure: Structure{
				SwingLookback: 5, OBMinSize: 2.5, OBMaxAge: 60, OBForwardWindow: 5,
				FVGMinSize: 0.5, FVGMaxAge: 60, FVGProximity: 1.0, LiquidityThreshold: 1.0,
				RecentBreakBars: 6, RecentSweepBars: 3,
			},
		}, true
	}
	return Profile{}, false
}
