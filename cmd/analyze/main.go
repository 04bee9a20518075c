package main

import (
	"agroscan/internal/app"
	"agroscan/internal/config"
	"agroscan/internal/models"
	"agroscan/internal/ndvi"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// maxWorkers bounds how many polygon files are analyzed at once
const maxWorkers = 8

// FileResult holds the outcome for one polygon file
type FileResult struct {
	File           string                 `json:"file"`
	Result         *models.AnalysisResult `json:"result,omitempty"`
	Error          string                 `json:"error,omitempty"`
	ProcessingTime time.Duration          `json:"-"`
}

func main() {
	configPath := flag.String("config", "./config.yaml", "path to the YAML config file")
	polygonFlag := flag.String("polygon", "", "polygon JSON file; comma separated for several")
	period := flag.Int("period", ndvi.DefaultPeriod, "look-back window in days")
	crop := flag.String("crop", "", "optional crop label")
	offline := flag.Bool("offline", false, "skip imagery and use synthetic data")
	flag.Parse()

	files := splitFiles(*polygonFlag, flag.Args())
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze -polygon field.json [-period 30] [-crop wheat] [-offline]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Warning: %v, using offline defaults", err)
		*offline = true
		cfg = defaultConfig()
	}

	a := app.New(context.Background(), cfg, *offline)
	defer a.Close()

	results := analyzeAll(context.Background(), a.Analyzer, files, *period, *crop)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if err := printResults(os.Stdout, results); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func defaultConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			ForecastWindow:  ndvi.DefaultForecastWindow,
			ForecastHorizon: ndvi.DefaultForecastHorizon,
		},
		Imagery: config.ImageryConfig{Mode: config.ModeOffline},
	}
}

func splitFiles(flagValue string, args []string) []string {
	var files []string
	for _, f := range strings.Split(flagValue, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return append(files, args...)
}

type job struct {
	index int
	file  string
}

// analyzeAll runs every file through a small worker pool and returns the
// results in input order.
func analyzeAll(ctx context.Context, analyzer *ndvi.Analyzer, files []string, period int, crop string) []FileResult {
	startTime := time.Now()

	numWorkers := maxWorkers
	if len(files) < numWorkers {
		numWorkers = len(files)
	}

	jobs := make(chan job, len(files))
	results := make([]FileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(ctx, analyzer, jobs, results, period, crop, &wg)
	}

	for i, f := range files {
		jobs <- job{index: i, file: f}
	}
	close(jobs)
	wg.Wait()

	for i, r := range results {
		if r.Error != "" {
			log.Printf("[%d/%d] %s: %s (%.1fs)", i+1, len(files), r.File, r.Error, r.ProcessingTime.Seconds())
			continue
		}
		log.Printf("[%d/%d] %s: %s, avg %.3f, stress %.0f%% (%.1fs)",
			i+1, len(files), r.File, r.Result.DataSource, r.Result.Summary.AvgNDVI, r.Result.Summary.StressPercent, r.ProcessingTime.Seconds())
	}
	log.Printf("Analyzed %d files in %.1fs with %d workers", len(files), time.Since(startTime).Seconds(), numWorkers)

	return results
}

// worker analyzes files from the jobs channel; each writes only its own slot
func worker(ctx context.Context, analyzer *ndvi.Analyzer, jobs <-chan job, results []FileResult, period int, crop string, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		startTime := time.Now()
		r := FileResult{File: j.file}

		polygon, err := loadPolygon(j.file)
		if err == nil {
			r.Result, err = analyzer.Analyze(ctx, models.AnalysisRequest{Polygon: polygon, Period: period, Crop: crop})
		}
		if err != nil {
			r.Error = err.Error()
		}

		r.ProcessingTime = time.Since(startTime)
		results[j.index] = r
	}
}

func printResults(w io.Writer, results []FileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if len(results) == 1 {
		if results[0].Error != "" {
			return enc.Encode(map[string]string{"error": results[0].Error})
		}
		return enc.Encode(results[0].Result)
	}
	return enc.Encode(results)
}

// loadPolygon reads a ring from a file holding an analysis request, a bare
// [[lng, lat], ...] array, a GeoJSON Polygon geometry or a Feature wrapping
// one. Only the outer ring of a GeoJSON polygon is used.
func loadPolygon(path string) (models.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var bare models.Polygon
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}

	var doc struct {
		Polygon     models.Polygon `json:"polygon"`
		Type        string         `json:"type"`
		Coordinates [][][]float64  `json:"coordinates"`
		Geometry    *struct {
			Type        string        `json:"type"`
			Coordinates [][][]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch {
	case doc.Polygon != nil:
		return doc.Polygon, nil
	case doc.Type == "Polygon" && len(doc.Coordinates) > 0:
		return doc.Coordinates[0], nil
	case doc.Type == "Feature" && doc.Geometry != nil && doc.Geometry.Type == "Polygon" && len(doc.Geometry.Coordinates) > 0:
		return doc.Geometry.Coordinates[0], nil
	}

	return nil, fmt.Errorf("%s: no polygon found", path)
}
