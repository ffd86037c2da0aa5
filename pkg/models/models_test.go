package models

import (
	"reflect"
	"testing"
)

func TestExtractors(t *testing.T) {
	candles := []Candle{
		{Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 10},
		{Open: 2, High: 2.5, Low: 1, Close: 1.5, Volume: 20},
	}

	if got := Closes(candles); !reflect.DeepEqual(got, []float64{2, 1.5}) {
		t.Errorf("Closes = %v", got)
	}
	if got := Highs(candles); !reflect.DeepEqual(got, []float64{3, 2.5}) {
		t.Errorf("Highs = %v", got)
	}
	if got := Lows(candles); !reflect.DeepEqual(got, []float64{0.5, 1}) {
		t.Errorf("Lows = %v", got)
	}
	if got := Volumes(candles); !reflect.DeepEqual(got, []float64{10, 20}) {
		t.Errorf("Volumes = %v", got)
	}
	if !candles[0].Bullish() || !candles[1].Bearish() || (Candle{Open: 1, Close: 1}).Bullish() {
		t.Errorf("candle color mismatch")
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   float64
	}{
		{0, 2, 0},
		{64250.123456789, 8, 64250.12345679},
		{0.1 + 0.2, 2, 0.3},
		{-1.005, 1, -1},
	}
	for _, tt := range tests {
		if got := RoundPrice(tt.in, tt.places); got != tt.want {
			t.Errorf("RoundPrice(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
