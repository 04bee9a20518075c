package main

import (
	"agroscan/internal/app"
	"agroscan/internal/config"
	"agroscan/internal/server"
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "./config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a := app.New(context.Background(), cfg, false)
	defer a.Close()

	httpServer := server.NewServer(a.Analyzer, cfg.Server.AllowedOrigins, version)
	if err := httpServer.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
