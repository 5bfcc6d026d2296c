package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kitmoji/api/internal/config"
	"github.com/kitmoji/api/internal/emojidata"
	"github.com/kitmoji/api/internal/model"
	"github.com/kitmoji/api/internal/slug"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Issue struct {
	Name    string
	ID      int64
	Type    string
	Details string
}

func main() {
	workers := flag.Int("workers", 10, "Number of parallel workers")
	outputFile := flag.String("output", "audit_results.json", "Output file for results")
	flag.Parse()

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var total int64
	db.Model(&model.Emoji{}).Count(&total)

	fmt.Printf("Auditing %d emojis with %d workers...\n", total, *workers)

	// Known unicode sequences, for base-variant referential checks.
	known := make(map[string]bool)
	var unicodes []string
	db.Model(&model.Emoji{}).Pluck("unicode", &unicodes)
	for _, u := range unicodes {
		known[u] = true
	}

	emojiChan := make(chan model.Emoji, *workers*10)
	issueChan := make(chan Issue, 1000)

	var processed int64
	var issueCount int64
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emoji := range emojiChan {
				issues := auditEmoji(emoji, known)
				for _, issue := range issues {
					issueChan <- issue
					atomic.AddInt64(&issueCount, 1)
				}
				p := atomic.AddInt64(&processed, 1)
				if p%1000 == 0 {
					fmt.Printf("Progress: %d/%d (%.1f%%), Issues found: %d\n",
						p, total, float64(p)/float64(total)*100, atomic.LoadInt64(&issueCount))
				}
			}
		}()
	}

	var issues []Issue
	var issuesMu sync.Mutex
	done := make(chan bool)
	go func() {
		for issue := range issueChan {
			issuesMu.Lock()
			issues = append(issues, issue)
			issuesMu.Unlock()
		}
		done <- true
	}()

	startTime := time.Now()
	batchSize := 500
	offset := 0
	for {
		var emojis []model.Emoji
		result := db.Order("id ASC").Offset(offset).Limit(batchSize).Find(&emojis)
		if result.Error != nil {
			log.Printf("Database error: %v", result.Error)
			break
		}
		if len(emojis) == 0 {
			break
		}

		for _, emoji := range emojis {
			emojiChan <- emoji
		}
		offset += batchSize
	}

	close(emojiChan)
	wg.Wait()
	close(issueChan)
	<-done

	elapsed := time.Since(startTime)
	fmt.Printf("\n=== Audit Complete ===\n")
	fmt.Printf("Total emojis: %d\n", total)
	fmt.Printf("Issues found: %d (%.2f%%)\n", len(issues), float64(len(issues))/float64(total)*100)
	fmt.Printf("Time elapsed: %v\n", elapsed)

	issuesByType := make(map[string][]Issue)
	for _, issue := range issues {
		issuesByType[issue.Type] = append(issuesByType[issue.Type], issue)
	}

	fmt.Printf("\n=== Issues by Type ===\n")
	for typ, typeIssues := range issuesByType {
		fmt.Printf("%s: %d\n", typ, len(typeIssues))
	}

	output := map[string]interface{}{
		"summary": map[string]interface{}{
			"total":      total,
			"issues":     len(issues),
			"percentage": float64(len(issues)) / float64(total) * 100,
			"elapsed":    elapsed.String(),
		},
		"issuesByType": issuesByType,
		"issues":       issues,
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	if err := os.WriteFile(*outputFile, jsonData, 0644); err != nil {
		log.Printf("Failed to write output file: %v", err)
	} else {
		fmt.Printf("\nResults saved to %s\n", *outputFile)
	}
}

func auditEmoji(emoji model.Emoji, known map[string]bool) []Issue {
	var issues []Issue

	// Check 1: Placeholder or empty emoji character
	if emoji.Emoji == "" || emoji.Emoji == "❓" {
		issues = append(issues, Issue{
			Name:    emoji.Name,
			ID:      emoji.ID,
			Type:    "MISSING_CHARACTER",
			Details: fmt.Sprintf("Emoji column is %q, rendered from unicode it would be %q", emoji.Emoji, emojidata.RenderFull(emoji.Unicode)),
		})
	}

	// Check 2: Name that produces no usable slug (unreachable detail page)
	if slug.Make(emoji.Name) == "" {
		issues = append(issues, Issue{
			Name:    emoji.Name,
			ID:      emoji.ID,
			Type:    "UNSLUGGABLE_NAME",
			Details: "Name produces an empty slug",
		})
	}

	// Check 3: Slug does not round-trip back to the name
	if s := slug.Make(emoji.Name); s != "" {
		found := false
		for _, candidate := range slug.Candidates(s) {
			if strings.EqualFold(candidate, emoji.Name) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, Issue{
				Name:    emoji.Name,
				ID:      emoji.ID,
				Type:    "SLUG_NO_ROUNDTRIP",
				Details: fmt.Sprintf("Slug '%s' only resolves through the substring fallback", s),
			})
		}
	}

	// Check 4: Type column disagrees with the codepoint pattern
	if derived := emojidata.DeriveType(emoji.Unicode); emoji.EmojiType != "" && emoji.EmojiType != derived {
		issues = append(issues, Issue{
			Name:    emoji.Name,
			ID:      emoji.ID,
			Type:    "TYPE_MISMATCH",
			Details: fmt.Sprintf("Stored type '%s' but codepoints derive '%s'", emoji.EmojiType, derived),
		})
	}

	// Check 5: Skin-tone variant whose base emoji is missing
	if emoji.SkinTone != "" && emoji.BaseUnicode != "" && !known[emoji.BaseUnicode] {
		issues = append(issues, Issue{
			Name:    emoji.Name,
			ID:      emoji.ID,
			Type:    "ORPHAN_VARIANT",
			Details: fmt.Sprintf("Base unicode '%s' not present in dataset", emoji.BaseUnicode),
		})
	}

	// Check 6: Empty keywords hurt search coverage
	if emoji.Keywords == "" {
		issues = append(issues, Issue{
			Name:    emoji.Name,
			ID:      emoji.ID,
			Type:    "EMPTY_KEYWORDS",
			Details: "No keywords; search falls back to name matching only",
		})
	}

	// Check 7: Unknown qualification status
	switch emoji.Status {
	case model.StatusFullyQualified, model.StatusMinimallyQualified, model.StatusComponent, "unqualified", "":
	default:
		issues = append(issues, Issue{
			Name:    emoji.Name,
			ID:      emoji.ID,
			Type:    "UNKNOWN_STATUS",
			Details: fmt.Sprintf("Unrecognized status '%s'", emoji.Status),
		})
	}

	return issues
}
