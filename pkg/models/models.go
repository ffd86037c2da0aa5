package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle представляет свечу
type Candle struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

// Bullish сообщает, закрылась ли свеча выше открытия
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// Bearish сообщает, закрылась ли свеча ниже открытия
func (c Candle) Bearish() bool {
	return c.Close < c.Open
}

// Closes возвращает цены закрытия в том же порядке, что и свечи
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs возвращает максимумы свечей
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows возвращает минимумы свечей
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes возвращает объемы свечей
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// RoundPrice округляет значение для отчета, не трогая нули и служебные значения
func RoundPrice(v float64, places int32) float64 {
	if v == 0 {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
