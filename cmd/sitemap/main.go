package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/database"
	"github.com/kitmoji/api/internal/sitemap"
	"github.com/kitmoji/api/internal/store"
)

// Writes the sitemap to disk for static hosting setups where the
// frontend serves /sitemap.xml itself instead of proxying the API.
func main() {
	outPath := flag.String("out", "sitemap.xml", "Output file path")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	emojiStore := store.New(db, cfg.Curated)

	body := sitemap.Build(context.Background(), emojiStore, cfg.BaseURL, time.Now())
	if err := os.WriteFile(*outPath, body, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outPath, err)
	}

	log.Printf("Wrote %d bytes to %s", len(body), *outPath)
}
