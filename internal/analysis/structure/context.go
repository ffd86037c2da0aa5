package structure

import (
	"time"
)

// Zone положение цены в диапазоне свингов
type Zone string

const (
	ZonePremium     Zone = "premium"
	ZoneDiscount    Zone = "discount"
	ZoneEquilibrium Zone = "equilibrium"
)

// ZoneResult зона премии/дисконта
type ZoneResult struct {
	Zone        Zone
	RangeHigh   float64
	RangeLow    float64
	Equilibrium float64
}

const (
	zoneSwings = 3
	zoneBuffer = 0.1 // доля половины диапазона вокруг равновесия
)

// premiumDiscount строит диапазон по последним трем максимумам и минимумам
func premiumDiscount(highs, lows []Swing, price float64) ZoneResult {
	if len(highs) == 0 || len(lows) == 0 {
		return ZoneResult{Zone: ZoneEquilibrium, RangeHigh: price, RangeLow: price, Equilibrium: price}
	}

	hi := highs[len(highs)-1].Price
	for _, s := range tail(highs, zoneSwings) {
		hi = max(hi, s.Price)
	}
	lo := lows[len(lows)-1].Price
	for _, s := range tail(lows, zoneSwings) {
		lo = min(lo, s.Price)
	}

	result := ZoneResult{RangeHigh: hi, RangeLow: lo, Equilibrium: (hi + lo) / 2, Zone: ZoneEquilibrium}
	buffer := (hi - lo) / 2 * zoneBuffer
	switch {
	case price > result.Equilibrium+buffer:
		result.Zone = ZonePremium
	case price < result.Equilibrium-buffer:
		result.Zone = ZoneDiscount
	}

	return result
}

// Session торговая сессия последней свечи (UTC)
type Session struct {
	Name       string
	Asia       bool
	London     bool
	NewYork    bool
	Overlap    bool    // Лондон и Нью-Йорк одновременно
	Multiplier float64 // множитель итогового счета
}

const weakSessionMultiplier = 0.7

// sessionAt Азия [0,9), Лондон [7,16), Нью-Йорк [12,21) по UTC
func sessionAt(t time.Time) Session {
	h := t.UTC().Hour()
	s := Session{
		Asia:       h < 9,
		London:     h >= 7 && h < 16,
		NewYork:    h >= 12 && h < 21,
		Multiplier: 1,
	}
	s.Overlap = s.London && s.NewYork

	switch {
	case s.Overlap:
		s.Name = "london_new_york"
	case s.London && s.Asia:
		s.Name = "asia_london"
	case s.London:
		s.Name = "london"
	case s.NewYork:
		s.Name = "new_york"
	case s.Asia:
		s.Name = "asia"
	default:
		s.Name = "off_hours"
	}

	if !s.London && !s.NewYork {
		s.Multiplier = weakSessionMultiplier
	}
	return s
}
