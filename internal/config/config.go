package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Imagery acquisition modes
const (
	ModeRaster  = "raster"
	ModeSeries  = "series"
	ModeOffline = "offline"
)

// maxImageSize is the largest raster edge the Process API accepts
const maxImageSize = 2500

var (
	instance *Config
	once     sync.Once
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AnalysisConfig struct {
	ForecastWindow  int `yaml:"forecast_window"`
	ForecastHorizon int `yaml:"forecast_horizon"`
}

type ImageryConfig struct {
	Mode             string `yaml:"mode"`
	BaseURL          string `yaml:"base_url"`
	TokenURL         string `yaml:"token_url"`
	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	MaxCloudCoverage int    `yaml:"max_cloud_coverage"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	ShareToken       bool   `yaml:"share_token"`
}

// Timeout returns the per-request imagery timeout
func (c ImageryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Imagery  ImageryConfig  `yaml:"imagery"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = defaults()

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
			return
		}

		if parseErr := yaml.Unmarshal(data, instance); parseErr != nil {
			err = fmt.Errorf("failed to parse config: %w", parseErr)
			return
		}

		if validateErr := instance.validate(); validateErr != nil {
			err = validateErr
			return
		}
	})

	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Analysis: AnalysisConfig{
			ForecastWindow:  5,
			ForecastHorizon: 7,
		},
		Imagery: ImageryConfig{
			Mode:             ModeRaster,
			Width:            64,
			Height:           64,
			MaxCloudCoverage: 30,
			TimeoutSeconds:   30,
		},
	}
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Analysis.ForecastWindow < 2 {
		return fmt.Errorf("analysis.forecast_window must be at least 2")
	}
	if c.Analysis.ForecastHorizon < 1 {
		return fmt.Errorf("analysis.forecast_horizon must be at least 1")
	}

	switch c.Imagery.Mode {
	case ModeRaster, ModeSeries, ModeOffline:
	default:
		return fmt.Errorf("imagery.mode must be one of %s, %s, %s, got %q", ModeRaster, ModeSeries, ModeOffline, c.Imagery.Mode)
	}
	if c.Imagery.Width < 1 || c.Imagery.Width > maxImageSize || c.Imagery.Height < 1 || c.Imagery.Height > maxImageSize {
		return fmt.Errorf("imagery.width and imagery.height must be between 1 and %d", maxImageSize)
	}
	if c.Imagery.MaxCloudCoverage < 0 || c.Imagery.MaxCloudCoverage > 100 {
		return fmt.Errorf("imagery.max_cloud_coverage must be between 0 and 100")
	}
	if c.Imagery.TimeoutSeconds < 1 {
		return fmt.Errorf("imagery.timeout_seconds must be positive")
	}
	return nil
}
