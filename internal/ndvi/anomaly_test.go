package ndvi

import (
	"agroscan/internal/models"
	"math"
	"testing"
)

func TestCalculateZScore(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		mean   float64
		stdDev float64
		want   float64
	}{
		{"value above mean", 0.9, 0.5, 0.2, 2.0},
		{"value below mean", 0.3, 0.5, 0.2, -1.0},
		{"value equals mean", 0.5, 0.5, 0.2, 0.0},
		{"zero standard deviation", 0.5, 0.5, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateZScore(tt.value, tt.mean, tt.stdDev)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateZScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOutlier(t *testing.T) {
	tests := []struct {
		zScore float64
		want   bool
	}{
		{2.5, true},
		{-2.5, true},
		{2.0, false},
		{-1.9, false},
		{0, false},
	}

	for _, tt := range tests {
		if got := IsOutlier(tt.zScore); got != tt.want {
			t.Errorf("IsOutlier(%v) = %v, want %v", tt.zScore, got, tt.want)
		}
	}
}

func TestSeverityFromZScore(t *testing.T) {
	tests := []struct {
		zScore float64
		want   string
	}{
		{3.5, SeverityHigh},
		{-3.1, SeverityHigh},
		{2.7, SeverityMedium},
		{-2.6, SeverityMedium},
		{2.1, SeverityLow},
	}

	for _, tt := range tests {
		if got := severityFromZScore(tt.zScore); got != tt.want {
			t.Errorf("severityFromZScore(%v) = %v, want %v", tt.zScore, got, tt.want)
		}
	}
}

func TestCalculateStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		mean   float64
		want   float64
	}{
		{"standard case", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2.138},
		{"all same values", []float64{5, 5, 5}, 5, 0},
		{"single value", []float64{42}, 42, 0},
		{"empty slice", []float64{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateStdDev(tt.values, tt.mean)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("calculateStdDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectAnomalies(t *testing.T) {
	flat := func(n int, v float64) models.TimeSeries {
		s := make(models.TimeSeries, n)
		for i := range s {
			s[i] = models.TimeSeriesPoint{Date: "01/01", Value: v}
		}
		return s
	}

	spiked := flat(20, 0.6)
	spiked[12] = models.TimeSeriesPoint{Date: "13/01", Value: 0.15}

	tests := []struct {
		name      string
		series    models.TimeSeries
		wantDates []string
	}{
		{"too short", models.TimeSeries{{Value: 0.1}, {Value: 0.9}}, nil},
		{"flat", flat(20, 0.5), nil},
		{"single drop", spiked, []string{"13/01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAnomalies(tt.series)
			if got == nil {
				t.Fatal("DetectAnomalies() returned nil, want empty slice")
			}
			if len(got) != len(tt.wantDates) {
				t.Fatalf("DetectAnomalies() = %+v, want dates %v", got, tt.wantDates)
			}
			for i, a := range got {
				if a.Date != tt.wantDates[i] {
					t.Errorf("anomaly %d date = %s, want %s", i, a.Date, tt.wantDates[i])
				}
				if a.ZScore >= 0 || a.Severity != SeverityHigh {
					t.Errorf("anomaly %d = %+v, want a high negative outlier", i, a)
				}
			}
		})
	}
}
