package server

import (
	"agroscan/internal/models"
	"agroscan/internal/ndvi"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
	got    models.AnalysisRequest
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

func do(t *testing.T, s *Server, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w.Result()
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	s := NewServer(&fakeAnalyzer{}, nil, "1.2.3")

	resp := do(t, s, http.MethodGet, "/api/health", "")

	if resp.StatusCode != http.StatusOK {
		t.Errorf("handleHealth() status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("handleHealth() content-type = %v, want application/json", contentType)
	}

	var response map[string]string
	decodeBody(t, resp, &response)

	if response["status"] != "ok" {
		t.Errorf("handleHealth() status in body = %v, want ok", response["status"])
	}
	if response["version"] != "1.2.3" {
		t.Errorf("handleHealth() version = %v, want 1.2.3", response["version"])
	}
	if _, err := time.Parse(time.RFC3339, response["time"]); err != nil {
		t.Errorf("handleHealth() time = %q, want RFC3339: %v", response["time"], err)
	}
}

func TestHandleAnalyze(t *testing.T) {
	fake := &fakeAnalyzer{result: &models.AnalysisResult{
		Summary:    models.Summary{AvgNDVI: 0.61, Health: ndvi.OverallGood},
		DataSource: models.DataSourceReal,
	}}
	s := NewServer(fake, nil, "test")

	resp := do(t, s, http.MethodPost, "/api/analyze", `{"polygon":[[0,0],[1,0],[1,1],[0,1]],"period":14,"crop":"maize"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("handleAnalyze() status = %v, want %v", resp.StatusCode, http.StatusOK)
	}
	if fake.got.Period != 14 || fake.got.Crop != "maize" || len(fake.got.Polygon) != 4 {
		t.Errorf("analyzer got %+v", fake.got)
	}

	var result models.AnalysisResult
	decodeBody(t, resp, &result)
	if result.Summary.AvgNDVI != 0.61 || result.DataSource != models.DataSourceReal {
		t.Errorf("handleAnalyze() body = %+v", result)
	}
}

func TestHandleAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
		wantDetail bool
		wantCalls  int
	}{
		{
			name:       "malformed json",
			body:       "invalid json",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "wrong polygon type",
			body:       `{"polygon":"here"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "invalid input",
			body:       `{"polygon":[]}`,
			err:        fmt.Errorf("%w: polygon is empty", ndvi.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantError:  "polygon is empty",
			wantCalls:  1,
		},
		{
			name:       "internal failure",
			body:       `{"polygon":[[0,0],[1,0],[1,1]]}`,
			err:        fmt.Errorf("%w: boom", ndvi.ErrInternal),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
			wantDetail: true,
			wantCalls:  1,
		},
		{
			name:       "unexpected error",
			body:       `{"polygon":[[0,0],[1,0],[1,1]]}`,
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
			wantDetail: true,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnalyzer{err: tt.err}
			s := NewServer(fake, nil, "test")

			resp := do(t, s, http.MethodPost, "/api/analyze", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("handleAnalyze() status = %v, want %v", resp.StatusCode, tt.wantStatus)
			}

			var body map[string]string
			decodeBody(t, resp, &body)
			if !strings.Contains(body["error"], tt.wantError) {
				t.Errorf("error = %q, want it to contain %q", body["error"], tt.wantError)
			}
			if (body["detail"] != "") != tt.wantDetail {
				t.Errorf("detail = %q, wantDetail %v", body["detail"], tt.wantDetail)
			}
			if fake.calls != tt.wantCalls {
				t.Errorf("analyzer called %d times, want %d", fake.calls, tt.wantCalls)
			}
		})
	}
}

func TestHandleAnalyze_InvalidMethod(t *testing.T) {
	s := NewServer(&fakeAnalyzer{}, nil, "test")

	resp := do(t, s, http.MethodGet, "/api/analyze", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/analyze status = %v, want %v", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestHandleAnalyze_EndToEnd(t *testing.T) {
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	analyzer := ndvi.NewAnalyzer(
		ndvi.WithClock(func() time.Time { return now }),
		ndvi.WithRandSource(func() ndvi.RandSource { return ndvi.NewRandSource(3) }),
	)
	s := NewServer(analyzer, nil, "test")

	resp := do(t, s, http.MethodPost, "/api/analyze", `{"polygon":[[0,0],[1,0],[1,1],[0,1]],"period":30}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var result models.AnalysisResult
	decodeBody(t, resp, &result)

	if result.DataSource != models.DataSourceSynthetic {
		t.Errorf("data_source = %s, want synthetic", result.DataSource)
	}
	if len(result.TimeSeries) != 31 || len(result.Forecast) != 7 || len(result.HealthGrid) != 9 {
		t.Errorf("shape = %d series, %d forecast, %d cells, want 31/7/9", len(result.TimeSeries), len(result.Forecast), len(result.HealthGrid))
	}

	empty := do(t, s, http.MethodPost, "/api/analyze", `{"polygon":[]}`)
	defer empty.Body.Close()
	if empty.StatusCode != http.StatusBadRequest {
		t.Errorf("empty polygon status = %v, want %v", empty.StatusCode, http.StatusBadRequest)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(&fakeAnalyzer{}, nil, "test")

	resp := do(t, s, http.MethodGet, "/metrics", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "agroscan_app_info") {
		t.Error("GET /metrics does not expose agroscan_app_info")
	}
}

func TestCORS(t *testing.T) {
	s := NewServer(&fakeAnalyzer{}, []string{"https://fields.example.com"}, "test")

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "https://fields.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://fields.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://fields.example.com")
	}
}
