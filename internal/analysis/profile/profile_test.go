package profile

import (
	"testing"
	"time"
)

func TestForTimeframe(t *testing.T) {
	tests := []struct {
		label     string
		wantLabel string
	}{
		{"1m", "1m"},
		{"5m", "5m"},
		{"3m", "3m"},
		{" 4H ", "4h"},
		{"1d", "1d"},
		{"7w", DefaultLabel},
		{"", DefaultLabel},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p := ForTimeframe(tt.label)
			if p.Label != tt.wantLabel {
				t.Fatalf("Label = %q, want %q", p.Label, tt.wantLabel)
			}
			if err := p.Validate(); err != nil {
				t.Fatalf("Validate() = %v", err)
			}
		})
	}
}

func TestForTimeframeAliases(t *testing.T) {
	pairs := [][2]string{{"3m", "5m"}, {"30m", "15m"}, {"2h", "4h"}}
	for _, pair := range pairs {
		a, b := ForTimeframe(pair[0]), ForTimeframe(pair[1])
		a.Label, b.Label = "", ""
		if a != b {
			t.Errorf("%s должен использовать параметры %s", pair[0], pair[1])
		}
	}

	unknown, hour := ForTimeframe("13m"), ForTimeframe("1h")
	if unknown != hour {
		t.Errorf("неизвестный таймфрейм должен давать профиль 1h")
	}
}

func TestAllBuiltinsValid(t *testing.T) {
	for _, label := range Labels() {
		if err := ForTimeframe(label).Validate(); err != nil {
			t.Errorf("%s: %v", label, err)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		label string
		want  time.Duration
	}{
		{"1m", time.Minute},
		{"15m", 15 * time.Minute},
		{" 4H ", 4 * time.Hour},
		{"12h", 12 * time.Hour},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1M", 30 * 24 * time.Hour},
		{"7x", time.Hour},
		{"0h", time.Hour},
		{"h", time.Hour},
		{"", time.Hour},
	}
	for _, tt := range tests {
		if got := Duration(tt.label); got != tt.want {
			t.Errorf("Duration(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}

	for _, label := range Labels() {
		if Duration(label) <= 0 {
			t.Errorf("%s: no duration", label)
		}
	}
}

func TestResolve(t *testing.T) {
	overrides := map[string]Profile{
		"1h": {RSIPeriod: 21, Structure: Structure{SwingLookback: 7}},
		"3m": {MACDSignal: 5},
	}

	p := Resolve("1h", overrides)
	base := ForTimeframe("1h")
	if p.RSIPeriod != 21 {
		t.Errorf("RSIPeriod = %d, want 21", p.RSIPeriod)
	}
	if p.Structure.SwingLookback != 7 {
		t.Errorf("SwingLookback = %d, want 7", p.Structure.SwingLookback)
	}
	if p.MACDSlow != base.MACDSlow || p.Structure.OBMinSize != base.Structure.OBMinSize {
		t.Errorf("нулевые поля переопределения не должны менять встроенный профиль")
	}

	if got := Resolve("3m", overrides).MACDSignal; got != 5 {
		t.Errorf("переопределение по исходной метке: MACDSignal = %d, want 5", got)
	}
	if got := Resolve("1d", overrides); got != ForTimeframe("1d") {
		t.Errorf("профиль без переопределения изменился")
	}

	// Исходный профиль не должен меняться
	if ForTimeframe("1h").RSIPeriod != base.RSIPeriod {
		t.Errorf("Resolve изменил встроенный профиль")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"zero period", func(p *Profile) { p.RSIPeriod = 0 }},
		{"macd order", func(p *Profile) { p.MACDFast = p.MACDSlow }},
		{"ema order", func(p *Profile) { p.EMAFast = 50; p.EMASlow = 20 }},
		{"rsi overbought", func(p *Profile) { p.RSIOverbought = 100 }},
		{"stoch oversold", func(p *Profile) { p.StochOversold = 0 }},
		{"structure size", func(p *Profile) { p.Structure.OBMinSize = -1 }},
		{"liquidity windows", func(p *Profile) { p.LiquidityRecent = 60 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ForTimeframe("1h")
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatalf("ожидалась ошибка валидации")
			}
		})
	}
}
