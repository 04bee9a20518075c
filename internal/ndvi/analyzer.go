package ndvi

import (
	"agroscan/internal/geo"
	"agroscan/internal/metrics"
	"agroscan/internal/models"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"
)

var (
	// ErrInvalidInput marks requests rejected before any computation
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal marks unexpected failures inside the analysis pipeline
	ErrInternal = errors.New("internal error")
)

// Request limits
const (
	DefaultPeriod = 30
	MaxPeriod     = 365
	minVertices   = 3
)

// SeriesFetcher returns daily NDVI statistics for a box and date range
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, bbox models.BoundingBox, from, to time.Time) ([]models.Observation, error)
}

// RasterFetcher returns a single-band NDVI raster for a box and date range
type RasterFetcher interface {
	FetchRaster(ctx context.Context, bbox models.BoundingBox, from, to time.Time) (*models.Raster, error)
}

// Analyzer turns a polygon into a vegetation-health report
type Analyzer struct {
	series          SeriesFetcher
	raster          RasterFetcher
	forecastWindow  int
	forecastHorizon int
	now             func() time.Time
	newRand         func() RandSource
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithSeriesSource enables acquisition of daily statistics
func WithSeriesSource(s SeriesFetcher) Option {
	return func(a *Analyzer) { a.series = s }
}

// WithRasterSource enables acquisition of a raw raster. It wins over the
// series source when both are set.
func WithRasterSource(r RasterFetcher) Option {
	return func(a *Analyzer) { a.raster = r }
}

// WithForecast overrides the regression window and the projection horizon
func WithForecast(window, horizon int) Option {
	return func(a *Analyzer) {
		if window > 0 {
			a.forecastWindow = window
		}
		if horizon > 0 {
			a.forecastHorizon = horizon
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithRandSource replaces the per-request random source factory
func WithRandSource(newRand func() RandSource) Option {
	return func(a *Analyzer) { a.newRand = newRand }
}

// NewAnalyzer creates a new analyzer. Without a series or raster source
// every analysis is synthetic.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		forecastWindow:  DefaultForecastWindow,
		forecastHorizon: DefaultForecastHorizon,
		now:             time.Now,
		newRand: func() RandSource {
			return NewRandSource(time.Now().UnixNano())
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// acquisition is what the imagery step hands to the rest of the pipeline
type acquisition struct {
	grid   models.GridMatrix
	series models.TimeSeries
	source models.DataSource
}

// Analyze validates the request, acquires imagery once and assembles the
// report. Acquisition problems fall back to synthetic data and never fail
// the call; only invalid input and internal failures return an error.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (result *models.AnalysisResult, err error) {
	period, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: analysis pipeline panicked: %v", ErrInternal, r)
		}
	}()

	now := a.now()
	rnd := a.newRand()

	bbox := geo.BoundingBoxOf(req.Polygon)
	acq := a.acquire(ctx, bbox, period, now, rnd)

	grid, avg := BuildGrid(bbox, acq.grid)
	zones, stressPercent := DetectStressZones(grid)
	forecast := Forecast(acq.series, a.forecastWindow, a.forecastHorizon, now)
	center := bbox.Center()

	result = &models.AnalysisResult{
		Summary: models.Summary{
			AvgNDVI:       round(avg, 3),
			Health:        ClassifyOverall(avg),
			StressPercent: stressPercent,
			Center: models.Center{
				Lat: round(center.Lat, 5),
				Lon: round(center.Lon, 5),
			},
			AreaHa: round(geo.AreaHectares(req.Polygon), 2),
			Trend:  ClassifyTrend(acq.series),
		},
		Recommendation: Recommend(avg, stressPercent),
		HealthGrid:     grid,
		StressZones:    zones,
		TimeSeries:     acq.series,
		Forecast:       forecast,
		Anomalies:      DetectAnomalies(acq.series),
		DataSource:     acq.source,
		BBox:           bbox,
		Crop:           req.Crop,
	}

	metrics.RecordAnalysis(string(acq.source), stressPercent, time.Since(start))
	log.Printf("Analysis done: source=%s avg_ndvi=%.3f stress=%.1f%% points=%d", acq.source, avg, stressPercent, len(acq.series))

	return result, nil
}

// acquire makes exactly one imagery attempt and degrades to synthetic data
// on any failure or unusable payload.
func (a *Analyzer) acquire(ctx context.Context, bbox models.BoundingBox, period int, now time.Time, rnd RandSource) acquisition {
	from := now.AddDate(0, 0, -period)

	switch {
	case a.raster != nil:
		raster, err := a.raster.FetchRaster(ctx, bbox, from, now)
		if acq, ok := fromRaster(raster, err, period, now, rnd); ok {
			return acq
		}
	case a.series != nil:
		observations, err := a.series.FetchSeries(ctx, bbox, from, now)
		if acq, ok := fromSeries(observations, err, period, now, rnd); ok {
			return acq
		}
	}

	series := SynthesizeSeries(period, now, rnd)
	return acquisition{
		grid:   JitterGrid(calculateMean(series.Values()), rnd),
		series: series,
		source: models.DataSourceSynthetic,
	}
}

func fromRaster(raster *models.Raster, err error, period int, now time.Time, rnd RandSource) (acquisition, bool) {
	if err != nil {
		log.Printf("Warning: raster acquisition failed, using synthetic data: %v", err)
		return acquisition{}, false
	}
	if !raster.WellFormed() {
		log.Printf("Warning: raster payload is malformed, using synthetic data")
		return acquisition{}, false
	}
	if raster.ValidCount() == 0 {
		log.Printf("Warning: raster has no valid pixels, using synthetic data")
		return acquisition{}, false
	}

	grid := Aggregate(raster)
	mean := gridMean(grid)

	return acquisition{
		grid:   grid,
		series: SynthesizeAnchoredSeries(mean, period, now, rnd),
		source: models.DataSourceReal,
	}, true
}

func fromSeries(observations []models.Observation, err error, period int, now time.Time, rnd RandSource) (acquisition, bool) {
	if err != nil {
		log.Printf("Warning: series acquisition failed, using synthetic data: %v", err)
		return acquisition{}, false
	}

	series := toTimeSeries(observations, period, now.Location())
	switch len(series) {
	case 0:
		log.Printf("Warning: series has no valid observations, using synthetic data")
		return acquisition{}, false
	case 1:
		// a single point is only a scalar mean
		mean := series[0].Value
		return acquisition{
			grid:   JitterGrid(mean, rnd),
			series: SynthesizeAnchoredSeries(mean, period, now, rnd),
			source: models.DataSourceReal,
		}, true
	}

	return acquisition{
		grid:   JitterGrid(calculateMean(series.Values()), rnd),
		series: series,
		source: models.DataSourceReal,
	}, true
}

// toTimeSeries drops unusable observations, orders the rest oldest first and
// keeps the newest period+1 of them.
func toTimeSeries(observations []models.Observation, period int, loc *time.Location) models.TimeSeries {
	valid := make([]models.Observation, 0, len(observations))
	for _, o := range observations {
		if models.IsValidNDVI(o.NDVI) {
			valid = append(valid, o)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Date.Before(valid[j].Date) })

	if len(valid) > period+1 {
		valid = valid[len(valid)-(period+1):]
	}

	series := make(models.TimeSeries, len(valid))
	for i, o := range valid {
		series[i] = models.TimeSeriesPoint{
			Date:  o.Date.In(loc).Format(DateLayout),
			Value: clamp(o.NDVI, MinSeriesNDVI, MaxSeriesNDVI),
		}
	}
	return series
}

func gridMean(grid models.GridMatrix) float64 {
	values := make([]float64, 0, models.GridSize*models.GridSize)
	for _, row := range grid {
		values = append(values, row[:]...)
	}
	return calculateMean(values)
}

// validateRequest checks the polygon and resolves the period
func validateRequest(req models.AnalysisRequest) (int, error) {
	if len(req.Polygon) == 0 {
		return 0, fmt.Errorf("%w: polygon is empty", ErrInvalidInput)
	}
	if len(req.Polygon) < minVertices {
		return 0, fmt.Errorf("%w: polygon needs at least %d points, got %d", ErrInvalidInput, minVertices, len(req.Polygon))
	}

	for i, p := range req.Polygon {
		if len(p) < 2 {
			return 0, fmt.Errorf("%w: point %d must start with [lng, lat]", ErrInvalidInput, i)
		}
		lng, lat := p[0], p[1]
		if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
			return 0, fmt.Errorf("%w: point %d is not a finite coordinate", ErrInvalidInput, i)
		}
		if lng < -180 || lng > 180 {
			return 0, fmt.Errorf("%w: point %d longitude must be between -180 and 180", ErrInvalidInput, i)
		}
		if lat < -90 || lat > 90 {
			return 0, fmt.Errorf("%w: point %d latitude must be between -90 and 90", ErrInvalidInput, i)
		}
	}

	if !geo.HasExtent(geo.BoundingBoxOf(req.Polygon)) {
		return 0, fmt.Errorf("%w: polygon has zero width or height", ErrInvalidInput)
	}

	period := req.Period
	if period == 0 {
		period = DefaultPeriod
	}
	if period < 1 || period > MaxPeriod {
		return 0, fmt.Errorf("%w: period must be between 1 and %d days", ErrInvalidInput, MaxPeriod)
	}

	return period, nil
}
