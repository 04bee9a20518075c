package models

import (
	"encoding/json"
	"math"
	"time"
)

// DataSource tags where an analysis got its numbers from
type DataSource string

const (
	DataSourceReal      DataSource = "real"
	DataSourceSynthetic DataSource = "synthetic"
)

// GridSize is the number of blocks per axis of the health grid
const GridSize = 3

// Polygon is an ordered list of [lng, lat] pairs in WGS84 degrees
type Polygon [][]float64

// BoundingBox is an axis-aligned box in geographic coordinates
type BoundingBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// Center returns the midpoint of the box
func (b BoundingBox) Center() Center {
	return Center{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLng + b.MaxLng) / 2,
	}
}

// Center is a lat/lon point as rendered in the summary
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Raster is a single-band NDVI image. Values are row-major and row 0 is the
// southern edge. NaN or anything outside [-1, 1] is no-data.
type Raster struct {
	Width  int
	Height int
	Values []float64
}

// At returns the pixel at column x, row y
func (r *Raster) At(x, y int) float64 {
	return r.Values[y*r.Width+x]
}

// IsValidNDVI reports whether v is a usable NDVI reading
func IsValidNDVI(v float64) bool {
	return !math.IsNaN(v) && v >= -1 && v <= 1
}

// WellFormed reports whether the raster has a positive size and exactly
// Width*Height values
func (r *Raster) WellFormed() bool {
	return r != nil && r.Width > 0 && r.Height > 0 && len(r.Values) == r.Width*r.Height
}

// ValidCount returns how many pixels inside the Width x Height area carry data
func (r *Raster) ValidCount() int {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	values := r.Values
	if n := r.Width * r.Height; len(values) > n {
		values = values[:n]
	}
	count := 0
	for _, v := range values {
		if IsValidNDVI(v) {
			count++
		}
	}
	return count
}

// GridMatrix holds block means indexed [latBlock][lngBlock]
type GridMatrix [GridSize][GridSize]float64

// Observation is one daily NDVI reading from the imagery provider
type Observation struct {
	Date time.Time
	NDVI float64
}

// TimeSeriesPoint is a labelled NDVI value, label formatted DD/MM
type TimeSeriesPoint struct {
	Date  string
	Value float64
}

// TimeSeries is ordered oldest to newest. It serialises as parallel
// dates/values arrays.
type TimeSeries []TimeSeriesPoint

type timeSeriesJSON struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

func (ts TimeSeries) MarshalJSON() ([]byte, error) {
	out := timeSeriesJSON{
		Dates:  make([]string, len(ts)),
		Values: make([]float64, len(ts)),
	}
	for i, p := range ts {
		out.Dates[i] = p.Date
		out.Values[i] = p.Value
	}
	return json.Marshal(out)
}

func (ts *TimeSeries) UnmarshalJSON(data []byte) error {
	var in timeSeriesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	n := len(in.Dates)
	if len(in.Values) < n {
		n = len(in.Values)
	}
	out := make(TimeSeries, n)
	for i := 0; i < n; i++ {
		out[i] = TimeSeriesPoint{Date: in.Dates[i], Value: in.Values[i]}
	}
	*ts = out
	return nil
}

// Values returns the bare NDVI values of the series
func (ts TimeSeries) Values() []float64 {
	values := make([]float64, len(ts))
	for i, p := range ts {
		values[i] = p.Value
	}
	return values
}

// SeriesAnomaly is a time-series point far from the series mean
type SeriesAnomaly struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"`
}

// Feature is a GeoJSON feature describing one grid cell
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties CellProperties `json:"properties"`
}

// Geometry is a GeoJSON polygon geometry
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// CellProperties is the per-cell payload of the health grid
type CellProperties struct {
	NDVI   float64 `json:"ndvi"`
	Health string  `json:"health"`
	Color  string  `json:"color"`
}

// AnalysisRequest is the input of one analysis
type AnalysisRequest struct {
	Polygon Polygon `json:"polygon"`
	Period  int     `json:"period"`
	Crop    string  `json:"crop,omitempty"`
}

// Summary holds the headline numbers of an analysis
type Summary struct {
	AvgNDVI       float64 `json:"avg_ndvi"`
	Health        string  `json:"health"`
	StressPercent float64 `json:"stress_percent"`
	Center        Center  `json:"center"`
	AreaHa        float64 `json:"area_ha"`
	Trend         string  `json:"trend"`
}

// AnalysisResult is the full vegetation-health report for a polygon
type AnalysisResult struct {
	Summary        Summary         `json:"summary"`
	Recommendation string          `json:"recommendation"`
	HealthGrid     []Feature       `json:"health_grid"`
	StressZones    []Feature       `json:"stress_zones"`
	TimeSeries     TimeSeries      `json:"time_series"`
	Forecast       TimeSeries      `json:"forecast"`
	Anomalies      []SeriesAnomaly `json:"anomalies"`
	DataSource     DataSource      `json:"data_source"`
	BBox           BoundingBox     `json:"bbox"`
	Crop           string          `json:"crop,omitempty"`
}
