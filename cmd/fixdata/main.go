package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/database"
	"github.com/kitmoji/api/internal/emojidata"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/store"
)

// Heart emojis ship under "Smileys & Emotion" in some dataset builds
// but belong to "Symbols" per the Unicode grouping the site presents.
var heartEmojis = []string{
	"red heart",
	"orange heart",
	"yellow heart",
	"green heart",
	"blue heart",
	"purple heart",
	"black heart",
	"white heart",
	"brown heart",
	"broken heart",
}

type flagEntry struct {
	Emoji    string `json:"emoji"`
	Name     string `json:"name"`
	Keywords string `json:"keywords"`
	Unicode  string `json:"unicode"`
}

func main() {
	flagsPath := flag.String("flags", "data/flags.json", "Path to flag emoji dataset")
	skipFlags := flag.Bool("skip-flags", false, "Skip the flag backfill step")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	emojiStore := store.New(db, cfg.Curated)
	ctx := context.Background()

	// All steps are idempotent; rerunning after a partial failure is safe.
	moved, err := emojiStore.ReassignCategory(ctx, heartEmojis, "Symbols")
	if err != nil {
		log.Fatalf("Failed to move heart emojis to Symbols: %v", err)
	}
	log.Printf("Moved %d heart emojis to Symbols", moved)

	if !*skipFlags {
		added, err := backfillFlags(ctx, emojiStore, *flagsPath)
		if err != nil {
			log.Fatalf("Failed to backfill flags: %v", err)
		}
		log.Printf("Added %d flag emojis", added)
	}

	fixed, err := emojiStore.FixEmojiColumns(ctx)
	if err != nil {
		log.Fatalf("Failed to fix emoji columns: %v", err)
	}
	log.Printf("Re-rendered %d emoji columns", fixed)
}

// backfillFlags inserts country and special flags missing from the
// original dataset build. Existing rows are left untouched.
func backfillFlags(ctx context.Context, s *store.Store, path string) (int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var entries []flagEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, err
	}

	records := make([]model.Emoji, 0, len(entries))
	for _, e := range entries {
		rec := emojidata.NewRecord(e.Unicode, e.Name, e.Keywords, "Flags", "", "", model.StatusFullyQualified)
		if e.Emoji != "" {
			rec.Emoji = e.Emoji
		}
		records = append(records, rec)
	}

	return s.SeedBatch(ctx, records)
}
