package main

import (
	"flag"
	"log"
	"os"

	"PairPulse/internal/di"
	"PairPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbols=%v pair=%s/%s",
		cfg.Environment, cfg.Binance.Symbols, cfg.Analytics.PairA, cfg.Analytics.PairB)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
