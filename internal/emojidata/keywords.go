package emojidata

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
)

// KeywordDict maps an emoji character to its free-text search keywords,
// loaded once from a JSON dictionary ({"😀": ["grinning", "smile"], ...}).
type KeywordDict struct {
	entries map[string][]string
	mu      sync.RWMutex
}

func NewKeywordDict(path string) (*KeywordDict, error) {
	d := &KeywordDict{entries: make(map[string][]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &d.entries); err != nil {
		return nil, err
	}

	log.Printf("Loaded %d keyword entries", len(d.entries))
	return d, nil
}

// Lookup returns the comma-joined keyword list for an emoji character,
// or "" when the dictionary has no entry.
func (d *KeywordDict) Lookup(emoji string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	kws, ok := d.entries[emoji]
	if !ok {
		return ""
	}
	return strings.Join(kws, ", ")
}

// Len returns the number of dictionary entries.
func (d *KeywordDict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
