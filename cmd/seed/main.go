package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/database"
	"github.com/kitmoji/api/internal/emojidata"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/store"
)

func main() {
	filePath := flag.String("file", "data/emoji-test.txt", "Path to Unicode emoji-test.txt")
	keywordsPath := flag.String("keywords", "data/emoji-keywords.json", "Path to keyword dictionary JSON")
	batchSize := flag.Int("batch", 500, "Batch size for inserts")
	statusesStr := flag.String("statuses", "", "Comma-separated status filter (default: fully-qualified,component)")
	flag.Parse()

	var statuses []string
	for _, s := range strings.Split(*statusesStr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	records, err := emojidata.ParseTestDataFile(*filePath, emojidata.ParseOptions{Statuses: statuses})
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *filePath, err)
	}
	log.Printf("Parsed %d emoji records from %s", len(records), *filePath)

	// Keyword enrichment is best-effort; the dataset is usable with
	// name-only keywords.
	dict, err := emojidata.NewKeywordDict(*keywordsPath)
	if err != nil {
		log.Printf("Warning: Failed to load keyword dictionary: %v", err)
	} else {
		log.Printf("Loaded keyword dictionary with %d entries", dict.Len())
	}

	enriched := 0
	for i := range records {
		if dict != nil {
			if kw := dict.Lookup(records[i].Emoji); kw != "" {
				records[i].Keywords = kw
				enriched++
				continue
			}
		}
		if records[i].Keywords == "" {
			records[i].Keywords = records[i].Name
		}
	}
	log.Printf("Enriched %d records with dictionary keywords", enriched)

	emojiStore := store.New(db, cfg.Curated)
	ctx := context.Background()

	inserted, skipped := seedBatches(ctx, emojiStore, records, *batchSize)
	log.Printf("Seeding complete. Inserted: %d, Skipped (already present): %d", inserted, skipped)

	marked, err := emojiStore.MarkVariationBases(ctx)
	if err != nil {
		log.Fatalf("Failed to mark variation bases: %v", err)
	}
	log.Printf("Marked %d base emojis as having skin-tone variations", marked)
}

func seedBatches(ctx context.Context, s *store.Store, records []model.Emoji, batchSize int) (inserted, skipped int64) {
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}

		n, err := s.SeedBatch(ctx, records[i:end])
		if err != nil {
			log.Fatalf("Failed to insert batch at offset %d: %v", i, err)
		}
		inserted += n
		skipped += int64(end-i) - n

		if (i/batchSize+1)%10 == 0 {
			log.Printf("Progress: %d/%d records processed", end, len(records))
		}
	}
	return inserted, skipped
}
