package ndvi

import (
	"agroscan/internal/models"
	"time"
)

// Forecast defaults
const (
	DefaultForecastWindow  = 5
	DefaultForecastHorizon = 7
)

// Trend labels
const (
	TrendDecliningFast = "declining fast"
	TrendDeclining     = "declining"
	TrendImprovingFast = "improving fast"
	TrendImproving     = "improving"
	TrendStable        = "stable"
)

// trendSpan is how many points back the trend is measured over
const trendSpan = 7

// LinearFit is an ordinary least squares fit of value against index
type LinearFit struct {
	Slope     float64
	Intercept float64
}

// FitLine fits values against x = 0..n-1. It needs at least two points.
func FitLine(values []float64) (LinearFit, bool) {
	n := float64(len(values))
	if len(values) < 2 {
		return LinearFit{}, false
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return LinearFit{}, false
	}

	slope := (n*sumXY - sumX*sumY) / denom
	return LinearFit{
		Slope:     slope,
		Intercept: (sumY - slope*sumX) / n,
	}, true
}

// ProjectValues extrapolates the last window points of values over horizon
// steps. Projections are clamped to [MinSeriesNDVI, MaxSeriesNDVI]. With
// fewer than two points the last value (or 0.5 for an empty series) is
// carried forward.
func ProjectValues(values []float64, window, horizon int) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	if window > 0 && len(values) > window {
		values = values[len(values)-window:]
	}

	out := make([]float64, horizon)
	fit, ok := FitLine(values)
	if !ok {
		constant := 0.5
		if len(values) > 0 {
			constant = values[len(values)-1]
		}
		for h := range out {
			out[h] = constant
		}
		return out
	}

	last := float64(len(values) - 1)
	for h := 1; h <= horizon; h++ {
		out[h-1] = clamp(fit.Intercept+fit.Slope*(last+float64(h)), MinSeriesNDVI, MaxSeriesNDVI)
	}
	return out
}

// Forecast projects a series horizon days past start, labelling each point
// with its calendar day.
func Forecast(series models.TimeSeries, window, horizon int, start time.Time) models.TimeSeries {
	values := ProjectValues(series.Values(), window, horizon)

	forecast := make(models.TimeSeries, len(values))
	for h, v := range values {
		forecast[h] = models.TimeSeriesPoint{
			Date:  start.AddDate(0, 0, h+1).Format(DateLayout),
			Value: v,
		}
	}
	return forecast
}

// ClassifyTrend compares the newest value with the one six points earlier
func ClassifyTrend(series models.TimeSeries) string {
	if len(series) < trendSpan {
		return TrendStable
	}

	delta := series[len(series)-1].Value - series[len(series)-trendSpan].Value
	switch {
	case delta < -0.08:
		return TrendDecliningFast
	case delta < -0.02:
		return TrendDeclining
	case delta > 0.08:
		return TrendImprovingFast
	case delta > 0.02:
		return TrendImproving
	default:
		return TrendStable
	}
}
