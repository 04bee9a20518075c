package ndvi

import (
	"agroscan/internal/models"
	"math"
)

// AnomalyZScore is how far from the series mean, in standard deviations, a
// point must sit to be reported
const AnomalyZScore = 2.0

// minAnomalySamples is the shortest series worth scoring
const minAnomalySamples = 5

// Anomaly severities
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// DetectAnomalies scores every point of the series against the series mean
// and returns the outliers, oldest first.
func DetectAnomalies(series models.TimeSeries) []models.SeriesAnomaly {
	anomalies := make([]models.SeriesAnomaly, 0)
	if len(series) < minAnomalySamples {
		return anomalies
	}

	values := series.Values()
	mean := calculateMean(values)
	stdDev := calculateStdDev(values, mean)
	if stdDev == 0 {
		return anomalies
	}

	for _, p := range series {
		zScore := CalculateZScore(p.Value, mean, stdDev)
		if !IsOutlier(zScore) {
			continue
		}
		anomalies = append(anomalies, models.SeriesAnomaly{
			Date:     p.Date,
			Value:    p.Value,
			ZScore:   round(zScore, 2),
			Severity: severityFromZScore(zScore),
		})
	}

	return anomalies
}

// CalculateZScore calculates the Z-score for a value given mean and standard deviation
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// IsOutlier checks if a Z-score lies beyond AnomalyZScore
func IsOutlier(zScore float64) bool {
	return math.Abs(zScore) > AnomalyZScore
}

func severityFromZScore(zScore float64) string {
	abs := math.Abs(zScore)
	switch {
	case abs > 3.0:
		return SeverityHigh
	case abs > 2.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
