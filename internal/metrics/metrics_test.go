package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("synthetic"))

	RecordAnalysis("synthetic", 100.0/3, 15*time.Millisecond)

	after := testutil.ToFloat64(AnalysesTotal.WithLabelValues("synthetic"))
	if after-before != 1 {
		t.Errorf("AnalysesTotal{synthetic} increased by %v, want 1", after-before)
	}
}

func TestRecordImageryRequest(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := ImageryRequestsTotal.WithLabelValues("raster", tt.status)
			before := testutil.ToFloat64(counter)

			RecordImageryRequest("raster", time.Second, tt.err)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("ImageryRequestsTotal{raster,%s} increased by %v, want 1", tt.status, got)
			}
		})
	}
}

func TestRecordTokenRefresh(t *testing.T) {
	counter := TokenRefreshesTotal.WithLabelValues("error")
	before := testutil.ToFloat64(counter)

	RecordTokenRefresh(errors.New("unauthorized"))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("TokenRefreshesTotal{error} increased by %v, want 1", got)
	}
}

func TestAppInfo(t *testing.T) {
	if got := testutil.ToFloat64(AppInfo); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}
