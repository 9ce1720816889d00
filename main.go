package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/QuoteSync/quotesync/internal/config"
	"github.com/QuoteSync/quotesync/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
