package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/skalibog/signalengine/pkg/models"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// candlesFrom свечи с закрытием на максимуме и диапазоном 2
func candlesFrom(closes []float64, volume float64) []models.Candle {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     open,
			High:     c,
			Low:      c - 2,
			Close:    c,
			Volume:   volume,
		}
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		value  float64
		signal Signal
	}{
		{"flat", flat(20, 100), 14, 50, SignalNeutral},
		{"wilder", []float64{10, 11, 10, 11}, 2, 75, SignalOverbought},
		{"falling", linear(20, 100, -1), 14, 0, SignalOversold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RSI(tt.closes, tt.period, 70, 30)
			if !approx(r.Value, tt.value) || r.Signal != tt.signal {
				t.Fatalf("RSI = %v %s, want %v %s", r.Value, r.Signal, tt.value, tt.signal)
			}
		})
	}

	if r := RSI(linear(20, 100, 1), 14, 70, 30); r.Value < 99 || r.Signal != SignalOverbought {
		t.Fatalf("rising RSI = %v %s", r.Value, r.Signal)
	}
	if r := RSI(flat(14, 1), 14, 70, 30); r.Signal != SignalInsufficient || r.Signal.Ready() {
		t.Fatalf("short series must be insufficient, got %s", r.Signal)
	}
}

func TestEMA(t *testing.T) {
	// Затравка SMA(1,2,3) = 2, дальше ряд отстает на единицу
	r := EMA(linear(10, 1, 1), 3)
	if !approx(r.Value, 9) {
		t.Fatalf("EMA = %v, want 9", r.Value)
	}
	if EMA([]float64{1, 2}, 3).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestEMATrend(t *testing.T) {
	up := EMATrend(linear(260, 100, 1), 200)
	if up.Position != PositionAbove || up.SlopeTrend != TrendRising || up.Signal != SignalBullish || up.Strength != 1 {
		t.Fatalf("rising trend = %+v", up)
	}

	near := EMATrend(flat(210, 50), 200)
	if near.Position != PositionNear || near.Signal != SignalNeutral {
		t.Fatalf("flat trend = %+v", near)
	}

	if EMATrend(flat(204, 50), 200).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestEMACross(t *testing.T) {
	up := EMACross(append(flat(30, 100), 101), 9, 21)
	if up.Signal != SignalBullishCrossover || up.Strength != 1 {
		t.Fatalf("up = %+v", up)
	}

	down := EMACross(append(flat(30, 100), 99), 9, 21)
	if down.Signal != SignalBearishCrossover {
		t.Fatalf("down = %+v", down)
	}

	trend := EMACross(linear(60, 100, 1), 9, 21)
	if trend.Signal != SignalBullish || trend.Strength != 0.6 || trend.Spread <= 0 {
		t.Fatalf("trend = %+v", trend)
	}
}

func TestMACD(t *testing.T) {
	r := MACD(append(flat(40, 100), 101), 12, 26, 9)
	if r.Crossover != SignalBullishCrossover || r.Status != SignalBullishCrossover {
		t.Fatalf("crossover = %s status = %s", r.Crossover, r.Status)
	}
	if r.Trend != MACDStrongBullish || r.Histogram <= 0 {
		t.Fatalf("trend = %s hist = %v", r.Trend, r.Histogram)
	}

	if r := MACD(flat(34, 100), 12, 26, 9); r.Status != SignalInsufficient || r.Trend != MACDNeutral {
		t.Fatalf("short series = %+v", r)
	}
	if r := MACD(flat(60, 100), 12, 26, 9); r.Status != SignalNeutral || r.Trend != MACDNeutral {
		t.Fatalf("flat series = %+v", r)
	}
}

func TestBollinger(t *testing.T) {
	f := Bollinger(flat(20, 100), 20, 2)
	if f.PercentB != 50 || !f.Squeeze || f.Signal != SignalNeutral {
		t.Fatalf("flat = %+v", f)
	}

	spike := Bollinger(append(flat(19, 100), 110), 20, 2)
	if spike.Signal != SignalOverbought || spike.PercentB <= 100 {
		t.Fatalf("spike = %+v", spike)
	}

	dip := Bollinger(append(flat(19, 100), 90), 20, 2)
	if dip.Signal != SignalOversold || dip.PercentB >= 0 {
		t.Fatalf("dip = %+v", dip)
	}
}

func TestStochRSI(t *testing.T) {
	r := StochRSI(flat(60, 100), 14, 14, 3, 3, 80, 20)
	if r.K != 50 || r.D != 50 || r.Signal != SignalNeutral || r.Crossover != SignalNeutral {
		t.Fatalf("flat = %+v", r)
	}
	if StochRSI(flat(32, 100), 14, 14, 3, 3, 80, 20).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestStochSignal(t *testing.T) {
	tests := []struct {
		name         string
		prevK, prevD float64
		k, d         float64
		want         Signal
		wantCross    Signal
		wantStrength float64
	}{
		{"bullish cross oversold", 10, 12, 15, 13, SignalStrongBuy, SignalBullishCrossover, 1},
		{"bullish cross mid", 45, 50, 55, 52, SignalBuy, SignalBullishCrossover, 0.7},
		{"bearish cross overbought", 92, 88, 85, 87, SignalStrongSell, SignalBearishCrossover, 1},
		{"bearish cross mid", 55, 50, 45, 48, SignalSell, SignalBearishCrossover, 0.7},
		{"bullish cross into overbought", 78, 79, 85, 82, SignalBuy, SignalBullishCrossover, 0.7},
		{"overbought", 95, 90, 90, 85, SignalOverbought, SignalNeutral, 0.5},
		{"oversold", 5, 8, 10, 12, SignalOversold, SignalNeutral, 0.5},
		{"k above d", 55, 50, 60, 52, SignalBullish, SignalNeutral, 0.3},
		{"k below d", 45, 50, 40, 48, SignalBearish, SignalNeutral, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cross := crossover(tt.prevK, tt.prevD, tt.k, tt.d)
			if cross != tt.wantCross {
				t.Fatalf("crossover = %s, want %s", cross, tt.wantCross)
			}
			got, strength := stochSignal(cross, tt.k, tt.d, 80, 20)
			if got != tt.want || !approx(strength, tt.wantStrength) {
				t.Fatalf("signal = %s (%v), want %s (%v)", got, strength, tt.want, tt.wantStrength)
			}
		})
	}
}

func TestOBVAndCVD(t *testing.T) {
	candles := candlesFrom(linear(40, 100, 1), 10)

	obv := OBV(candles, 20)
	if obv.Trend != TrendRising || obv.Signal != SignalBullish || obv.Strength != 0.5 || obv.Divergence != DivergenceNone {
		t.Fatalf("OBV = %+v", obv)
	}
	if !approx(obv.Value, 400) {
		t.Fatalf("OBV value = %v, want 400", obv.Value)
	}

	cvd := CVD(candles, 20)
	if cvd.Signal != SignalBullish || cvd.Strength != 1 || !approx(cvd.Delta, 200) {
		t.Fatalf("CVD = %+v", cvd)
	}

	if OBV(candles[:20], 20).Signal != SignalInsufficient || CVD(candles[:20], 20).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestOBVSeededWithFirstVolume(t *testing.T) {
	closes := []float64{10, 11, 11, 10}
	candles := candlesFrom(closes, 0)
	for i, v := range []float64{5, 3, 4, 2} {
		candles[i].Volume = v
	}

	// 5, +3, без изменения, -2
	r := OBV(candles, 2)
	if !approx(r.Value, 6) || r.Trend != TrendFalling {
		t.Fatalf("OBV = %+v, want value 6 falling", r)
	}
}

func TestHalvesDivergence(t *testing.T) {
	price := []float64{5, 4, 3, 2, 3, 2, 1, 2}
	osc := []float64{30, 20, 10, 15, 20, 25, 30, 25}
	if d := halvesDivergence(price, osc, 8); d != DivergenceBullish {
		t.Fatalf("divergence = %s, want bullish", d)
	}

	inverted := make([]float64, len(price))
	invertedOsc := make([]float64, len(osc))
	for i := range price {
		inverted[i] = -price[i]
		invertedOsc[i] = -osc[i]
	}
	if d := halvesDivergence(inverted, invertedOsc, 8); d != DivergenceBearish {
		t.Fatalf("divergence = %s, want bearish", d)
	}

	if d := halvesDivergence(price[:3], osc[:3], 8); d != DivergenceNone {
		t.Fatalf("short window = %s", d)
	}
}

func TestVWAP(t *testing.T) {
	candles := make([]models.Candle, 20)
	for i := range candles {
		candles[i] = models.Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 10}
	}
	if r := VWAP(candles); r.VWAP != 100 || r.Signal != SignalNeutral || r.Sigmas != 0 {
		t.Fatalf("flat = %+v", r)
	}

	candles[19] = models.Candle{Open: 120, High: 120, Low: 120, Close: 120, Volume: 10}
	r := VWAP(candles)
	if !approx(r.VWAP, 101) || !approx(r.StdDev, math.Sqrt(19)) {
		t.Fatalf("vwap = %v std = %v", r.VWAP, r.StdDev)
	}
	if r.Signal != SignalOverbought || r.Strength != 1 {
		t.Fatalf("spike = %+v", r)
	}

	if VWAP(candles[:9]).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestVolume(t *testing.T) {
	base := func(last models.Candle) []models.Candle {
		out := make([]models.Candle, 0, 6)
		for i := 0; i < 5; i++ {
			out = append(out, models.Candle{Open: 100, Close: 100, Volume: 100})
		}
		return append(out, last)
	}

	tests := []struct {
		name     string
		last     models.Candle
		level    VolumeLevel
		signal   Signal
		strength float64
	}{
		{"high bullish", models.Candle{Open: 100, Close: 101, Volume: 200}, VolumeHigh, SignalBullish, 1},
		{"normal bearish", models.Candle{Open: 101, Close: 100, Volume: 120}, VolumeNormal, SignalBearish, 0.5},
		{"quiet", models.Candle{Open: 100, Close: 101, Volume: 60}, VolumeQuiet, SignalNeutral, 0},
		{"low", models.Candle{Open: 100, Close: 101, Volume: 40}, VolumeLow, SignalNeutral, 0},
		{"doji", models.Candle{Open: 100, Close: 100, Volume: 300}, VolumeHigh, SignalNeutral, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Volume(base(tt.last), 5)
			if r.Level != tt.level || r.Signal != tt.signal || r.Strength != tt.strength {
				t.Fatalf("Volume = %+v", r)
			}
		})
	}
}

func TestATRAndADX(t *testing.T) {
	atr := ATR(candlesFrom(flat(40, 100), 10), 14)
	if !approx(atr.Value, 2) || !approx(atr.Percent, 2) || atr.Regime != VolatilityNormal || atr.Extreme {
		t.Fatalf("ATR = %+v", atr)
	}
	if ATR(candlesFrom(flat(14, 100), 10), 14).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}

	adx := ADX(candlesFrom(linear(40, 100, 1), 10), 14)
	if adx.Signal != SignalBullish || adx.Strength != TrendStrong || !approx(adx.ADX, 100) {
		t.Fatalf("ADX = %+v", adx)
	}
	if ADX(candlesFrom(linear(28, 100, 1), 10), 14).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestMomentum(t *testing.T) {
	r := Momentum([]float64{100, 101, 102, 103, 104, 105}, 5)
	if !approx(r.ROC, 5) || r.Signal != SignalBullish || r.Strength != 1 {
		t.Fatalf("Momentum = %+v", r)
	}

	dead := Momentum([]float64{100, 100, 100.05}, 2)
	if dead.Signal != SignalNeutral || dead.Strength != 0 {
		t.Fatalf("dead zone = %+v", dead)
	}
}

func TestSupertrend(t *testing.T) {
	candles := candlesFrom(linear(60, 100, 1), 10)
	r := Supertrend(candles, 10, 3)
	if r.Direction != TrendRising || r.Signal != SignalBullish || r.Flipped {
		t.Fatalf("Supertrend = %+v", r)
	}
	if r.Value >= candles[len(candles)-1].Close {
		t.Fatalf("line %v must be below price", r.Value)
	}
}

func TestFibonacci(t *testing.T) {
	// Рост до 119, затем откат к 115
	r := Fibonacci(candlesFrom(append(linear(20, 100, 1), 115), 10), 21)
	if !r.Uptrend || r.Signal != SignalBullish {
		t.Fatalf("Fibonacci = %+v", r)
	}
	if r.SwingHigh != 119 || r.SwingLow != 98 || len(r.Levels) != len(FibRatios) {
		t.Fatalf("swings %v %v levels %d", r.SwingHigh, r.SwingLow, len(r.Levels))
	}
	if r.Levels[0].Price != 119 || r.Levels[len(r.Levels)-1].Price != 98 {
		t.Fatalf("levels = %+v", r.Levels)
	}
	if r.Support == nil || r.Support.Ratio != 0.236 || r.Resistance == nil || r.Resistance.Ratio != 0 {
		t.Fatalf("support %+v resistance %+v", r.Support, r.Resistance)
	}

	if Fibonacci(candlesFrom(flat(9, 100), 10), 20).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}

func TestLiquidity(t *testing.T) {
	candles := candlesFrom(flat(30, 100), 100)
	if r := Liquidity(candles, 3, 20); !r.Sufficient || r.Score != 0 || !approx(r.VolumeRatio, 1) {
		t.Fatalf("normal = %+v", r)
	}

	for i := 27; i < 30; i++ {
		candles[i].Volume = 0
	}
	r := Liquidity(candles, 3, 20)
	if r.Sufficient || r.Score != 100 || r.ZeroVolume != 3 {
		t.Fatalf("dry = %+v", r)
	}
}

func TestFakeout(t *testing.T) {
	candles := []models.Candle{
		{Open: 99, High: 100.5, Low: 98.5, Close: 100, Volume: 100},
		{Open: 100, High: 102.5, Low: 99.5, Close: 102, Volume: 100},
		{Open: 102, High: 104.5, Low: 101.5, Close: 104, Volume: 100},
		{Open: 104.2, High: 106, Low: 102, Close: 103.9, Volume: 50},
	}
	r := Fakeout(candles)
	if r.Score != 100 || !r.IsFakeout || len(r.Reasons) != 4 {
		t.Fatalf("Fakeout = %+v", r)
	}
	if r.Signal != SignalBullish {
		t.Fatalf("signal = %s, want opposite of bearish candle", r.Signal)
	}

	if Fakeout(candles[:3]).Signal != SignalInsufficient {
		t.Fatalf("expected insufficient")
	}
}
