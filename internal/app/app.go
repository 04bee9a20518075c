package app

import (
	"agroscan/internal/config"
	"agroscan/internal/imagery"
	"agroscan/internal/ndvi"
	"context"
	"log"

	"github.com/go-redis/redis/v8"
)

// App bundles the analyzer with the connections it keeps open
type App struct {
	Analyzer *ndvi.Analyzer
	Mode     string
	redis    *redis.Client
}

// New wires the analyzer for the configured imagery mode. Missing
// credentials degrade to offline mode; an unreachable Redis only disables
// token sharing.
func New(ctx context.Context, cfg *config.Config, offline bool) *App {
	creds := config.GetImageryCredentials()
	a := &App{Mode: effectiveMode(cfg.Imagery.Mode, offline, creds)}

	opts := []ndvi.Option{
		ndvi.WithForecast(cfg.Analysis.ForecastWindow, cfg.Analysis.ForecastHorizon),
	}

	if a.Mode != config.ModeOffline {
		var store imagery.TokenStore
		if cfg.Imagery.ShareToken {
			store = a.connectTokenStore(ctx)
		}

		tokens := imagery.NewTokenCache(creds.ClientID, creds.ClientSecret, cfg.Imagery.TokenURL, store)
		client := imagery.NewClient(imagery.Config{
			BaseURL:          cfg.Imagery.BaseURL,
			Width:            cfg.Imagery.Width,
			Height:           cfg.Imagery.Height,
			MaxCloudCoverage: cfg.Imagery.MaxCloudCoverage,
			Timeout:          cfg.Imagery.Timeout(),
		}, tokens)

		switch a.Mode {
		case config.ModeRaster:
			opts = append(opts, ndvi.WithRasterSource(client))
		case config.ModeSeries:
			opts = append(opts, ndvi.WithSeriesSource(client))
		}
	}

	a.Analyzer = ndvi.NewAnalyzer(opts...)
	log.Printf("Analyzer ready: imagery mode=%s", a.Mode)
	return a
}

// Close releases the Redis connection if one was opened
func (a *App) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
}

func (a *App) connectTokenStore(ctx context.Context) imagery.TokenStore {
	redisCfg := config.GetRedisConfig()
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable at %s, token will not be shared: %v", redisCfg.Addr, err)
		client.Close()
		return nil
	}

	a.redis = client
	return imagery.NewRedisTokenStore(client, redisCfg.TokenKey)
}

func effectiveMode(mode string, offline bool, creds config.ImageryCredentials) string {
	if offline || mode == config.ModeOffline {
		return config.ModeOffline
	}
	if !creds.Complete() {
		log.Printf("Warning: SH_CLIENT_ID or SH_CLIENT_SECRET not set, running offline")
		return config.ModeOffline
	}
	return mode
}
