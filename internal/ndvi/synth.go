package ndvi

import (
	"agroscan/internal/models"
	"math"
	"math/rand"
	"time"
)

// DateLayout renders series labels as day/month
const DateLayout = "02/01"

// Clamp bounds for every series value
const (
	MinSeriesNDVI = 0.1
	MaxSeriesNDVI = 0.9
)

// cellJitter is the half-width of the spread applied around the field mean
// when no raster is available
const cellJitter = 0.08

// RandSource returns a float in [0, 1)
type RandSource func() float64

// NewRandSource returns a request-local source seeded with seed
func NewRandSource(seed int64) RandSource {
	return rand.New(rand.NewSource(seed)).Float64
}

// SynthesizeSeries builds a fully synthetic series for days now-period..now:
// 0.5 + 0.2*sin(i/10) plus uniform noise in [0, 0.1].
func SynthesizeSeries(period int, now time.Time, rnd RandSource) models.TimeSeries {
	return synthesize(period, now, func(i float64) float64 {
		return 0.5 + 0.2*math.Sin(i/10) + rnd()*0.1
	})
}

// SynthesizeAnchoredSeries builds a series around a known mean:
// mean + 0.05*sin(i/5) plus uniform noise in [-0.01, 0.01].
func SynthesizeAnchoredSeries(mean float64, period int, now time.Time, rnd RandSource) models.TimeSeries {
	return synthesize(period, now, func(i float64) float64 {
		return mean + 0.05*math.Sin(i/5) + (rnd()*0.02 - 0.01)
	})
}

func synthesize(period int, now time.Time, value func(i float64) float64) models.TimeSeries {
	if period < 0 {
		period = 0
	}

	series := make(models.TimeSeries, 0, period+1)
	for i := period; i >= 0; i-- {
		series = append(series, models.TimeSeriesPoint{
			Date:  now.AddDate(0, 0, -i).Format(DateLayout),
			Value: clamp(value(float64(i)), MinSeriesNDVI, MaxSeriesNDVI),
		})
	}
	return series
}

// JitterGrid spreads a field mean over the grid with uniform noise so the
// health map still shows spatial variation.
func JitterGrid(mean float64, rnd RandSource) models.GridMatrix {
	var grid models.GridMatrix
	for r := range grid {
		for c := range grid[r] {
			noise := (rnd()*2 - 1) * cellJitter
			grid[r][c] = clamp(mean+noise, 0, 1)
		}
	}
	return grid
}
