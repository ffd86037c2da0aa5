package indicators

import (
	"math"

	"github.com/skalibog/signalengine/pkg/models"
)

const (
	liquidityMinCandles  = 10
	liquidityMinRatio    = 0.3
	liquidityThinRatio   = 0.5
	liquidityMaxZeroBars = 2
)

// LiquidityResult проверка ликвидности по объемам
type LiquidityResult struct {
	Sufficient  bool
	VolumeRatio float64
	ZeroVolume  int
	Score       float64 // штрафные очки, 0..100
	Signal      Signal
}

// Liquidity сравнивает средний объем последних recent свечей со средним за long свечей.
// Ликвидности недостаточно, если отношение < 0.3 или среди последних свечей ≥ 2 без объема.
func Liquidity(candles []models.Candle, recent, long int) LiquidityResult {
	if recent < 1 || long < recent || len(candles) < liquidityMinCandles {
		return LiquidityResult{Signal: SignalInsufficient}
	}
	if long > len(candles) {
		long = len(candles)
	}
	if recent > long {
		recent = long
	}

	volumes := models.Volumes(candles)
	recentVolumes := volumes[len(volumes)-recent:]
	longAvg := mean(volumes[len(volumes)-long:])

	result := LiquidityResult{Signal: SignalNeutral}
	if longAvg > 0 {
		result.VolumeRatio = mean(recentVolumes) / longAvg
	}
	for _, v := range recentVolumes {
		if v == 0 {
			result.ZeroVolume++
		}
	}

	if result.VolumeRatio < liquidityMinRatio {
		result.Score += 50
	} else if result.VolumeRatio < liquidityThinRatio {
		result.Score += 20
	}
	if result.ZeroVolume >= liquidityMaxZeroBars {
		result.Score += 50
	}
	result.Score = math.Min(result.Score, 100)

	result.Sufficient = result.VolumeRatio >= liquidityMinRatio && result.ZeroVolume < liquidityMaxZeroBars
	return result
}

const fakeoutThreshold = 50

// FakeoutResult оценка ложного пробоя последней свечи
type FakeoutResult struct {
	Score     float64
	IsFakeout bool
	Reasons   []string
	Signal    Signal
}

// Fakeout суммирует признаки ложного движения последней свечи
func Fakeout(candles []models.Candle) FakeoutResult {
	if len(candles) < 4 {
		return FakeoutResult{Signal: SignalInsufficient}
	}

	n := len(candles) - 1
	cur, prev, prev2 := candles[n], candles[n-1], candles[n-2]
	result := FakeoutResult{Signal: SignalNeutral}

	// Маленькое тело при длинных тенях: нерешительность
	bodyRatio := 0.0
	if rng := cur.High - cur.Low; rng > 0 {
		bodyRatio = math.Abs(cur.Close-cur.Open) / rng
	}
	if bodyRatio < 0.3 {
		result.Score += 25
		result.Reasons = append(result.Reasons, "маленькое тело свечи")
	}

	// Движение против двух предыдущих свечей
	if (cur.Bullish() && prev.Bearish() && prev2.Bearish()) ||
		(cur.Bearish() && prev.Bullish() && prev2.Bullish()) {
		result.Score += 20
		result.Reasons = append(result.Reasons, "цвет свечи против предыдущих")
	}

	// Затухание объема
	avgPrev := mean([]float64{candles[n-1].Volume, candles[n-2].Volume, candles[n-3].Volume})
	if avgPrev > 0 && cur.Volume < 0.8*avgPrev {
		result.Score += 25
		result.Reasons = append(result.Reasons, "объем затухает")
	}

	// Закрытие не удержалось за открытием предыдущей свечи
	if (cur.Bullish() && cur.Close < prev.Open) || (cur.Bearish() && cur.Close > prev.Open) {
		result.Score += 30
		result.Reasons = append(result.Reasons, "закрытие не прошло открытие предыдущей свечи")
	}

	result.IsFakeout = result.Score >= fakeoutThreshold
	if result.IsFakeout {
		result.Signal = SignalBearish
		if cur.Bearish() {
			result.Signal = SignalBullish
		}
	}

	return result
}
