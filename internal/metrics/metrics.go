package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis metrics
var (
	// AnalysesTotal tracks completed analyses by provenance
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroscan_analyses_total",
			Help: "Total number of completed NDVI analyses",
		},
		[]string{"data_source"},
	)

	// AnalysisDuration tracks how long an analysis takes end to end
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agroscan_analysis_duration_seconds",
			Help:    "Duration of NDVI analyses in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// StressPercent tracks the distribution of stressed field share
	StressPercent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agroscan_stress_percent",
			Help:    "Share of the health grid below the stress threshold",
			Buckets: []float64{0, 12, 23, 34, 45, 56, 67, 78, 89, 100},
		},
	)
)

// Imagery metrics
var (
	// ImageryRequestsTotal tracks calls to the imagery provider
	ImageryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroscan_imagery_requests_total",
			Help: "Total number of imagery provider requests",
		},
		[]string{"capability", "status"},
	)

	// ImageryRequestDuration tracks imagery provider latency
	ImageryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agroscan_imagery_request_duration_seconds",
			Help:    "Duration of imagery provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"capability"},
	)

	// TokenRefreshesTotal tracks OAuth token acquisitions
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agroscan_token_refreshes_total",
			Help: "Total number of imagery access token acquisitions",
		},
		[]string{"status"},
	)
)

var (
	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agroscan_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agroscan_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppInfo.Set(1)
	AppStartTime.SetToCurrentTime()
}

// RecordAnalysis records a finished analysis
func RecordAnalysis(dataSource string, stressPercent float64, duration time.Duration) {
	AnalysesTotal.WithLabelValues(dataSource).Inc()
	AnalysisDuration.Observe(duration.Seconds())
	StressPercent.Observe(stressPercent)
}

// RecordImageryRequest records one call to the imagery provider
func RecordImageryRequest(capability string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ImageryRequestsTotal.WithLabelValues(capability, status).Inc()
	ImageryRequestDuration.WithLabelValues(capability).Observe(duration.Seconds())
}

// RecordTokenRefresh records an access token acquisition
func RecordTokenRefresh(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TokenRefreshesTotal.WithLabelValues(status).Inc()
}
