package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"autoposter/agents/poster/assets"
	"autoposter/shared/config"
)

func main() {
	query := flag.String("query", "motivation", "Search term to use")
	count := flag.Int("count", 5, "Number of clips to download")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Assets.PexelsAPIKey == "" {
		log.Fatal("PEXELS_API_KEY missing - set it in config.yaml or the environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fetcher := assets.NewPexelsFetcher(cfg.Assets.PexelsAPIKey, cfg.Paths.VideosDir)
	downloaded, err := fetcher.Fetch(ctx, *query, *count)
	if err != nil {
		log.Fatalf("Failed to fetch videos: %v", err)
	}

	log.Printf("Downloaded %d videos to %s", len(downloaded), cfg.Paths.VideosDir)
}
