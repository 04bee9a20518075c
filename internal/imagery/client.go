package imagery

import (
	"agroscan/internal/metrics"
	"agroscan/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://services.sentinel-hub.com"

// Capability labels reported in metrics
const (
	CapabilitySeries = "series"
	CapabilityRaster = "raster"
)

const (
	statisticsPath = "/api/v1/statistics"
	processPath    = "/api/v1/process"
	crsWGS84       = "http://www.opengis.net/def/crs/EPSG/0/4326"
	collection     = "sentinel-2-l2a"
	timeLayout     = "2006-01-02T15:04:05Z"
)

// TokenSource hands out bearer tokens for the imagery provider
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config holds the tunables of the imagery client
type Config struct {
	BaseURL          string
	Width            int
	Height           int
	MaxCloudCoverage int
	Timeout          time.Duration
}

// Client talks to the Sentinel Hub Statistical and Process APIs
type Client struct {
	baseURL  string
	width    int
	height   int
	maxCloud int
	tokens   TokenSource
	client   *http.Client
}

// NewClient creates a new imagery client
func NewClient(cfg Config, tokens TokenSource) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Width <= 0 {
		cfg.Width = 64
	}
	if cfg.Height <= 0 {
		cfg.Height = 64
	}
	// 0 asks for cloud-free scenes only
	if cfg.MaxCloudCoverage < 0 {
		cfg.MaxCloudCoverage = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		width:    cfg.Width,
		height:   cfg.Height,
		maxCloud: cfg.MaxCloudCoverage,
		tokens:   tokens,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type bounds struct {
	BBox       [4]float64 `json:"bbox"`
	Properties struct {
		CRS string `json:"crs"`
	} `json:"properties"`
}

type dataFilter struct {
	TimeRange        *timeRange `json:"timeRange,omitempty"`
	MaxCloudCoverage int        `json:"maxCloudCoverage"`
}

type dataSource struct {
	Type       string     `json:"type"`
	DataFilter dataFilter `json:"dataFilter"`
}

type input struct {
	Bounds bounds       `json:"bounds"`
	Data   []dataSource `json:"data"`
}

type timeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (c *Client) input(bbox models.BoundingBox, tr *timeRange) input {
	var b bounds
	b.BBox = [4]float64{bbox.MinLng, bbox.MinLat, bbox.MaxLng, bbox.MaxLat}
	b.Properties.CRS = crsWGS84

	return input{
		Bounds: b,
		Data: []dataSource{{
			Type:       collection,
			DataFilter: dataFilter{TimeRange: tr, MaxCloudCoverage: c.maxCloud},
		}},
	}
}

func newTimeRange(from, to time.Time) timeRange {
	return timeRange{From: from.UTC().Format(timeLayout), To: to.UTC().Format(timeLayout)}
}

// post sends a JSON payload with a bearer token and returns the body of a
// 2xx response. Any other status is an error carrying the response body.
func (c *Client) post(ctx context.Context, capability, path, accept string, payload interface{}) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordImageryRequest(capability, time.Since(start), err)
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
