// Package slug maps emoji display names to SEO-friendly URL slugs and
// back. Generation is lossy (colons and structural hyphens collapse), so
// resolution expands a slug into an ordered list of candidate names that
// the store tries in sequence.
package slug

import (
	"regexp"
	"strings"
)

var (
	separators   = regexp.MustCompile(`[:\s]+`)
	disallowed   = regexp.MustCompile(`[^a-z0-9-]`)
	multiHyphen  = regexp.MustCompile(`-+`)
	// Lazy base so "artist-medium-dark-skin-tone" parses as
	// artist + medium-dark, not artist-medium + dark.
	skinToneSlug = regexp.MustCompile(`^(.+?)-(light|medium-light|medium|medium-dark|dark)-skin-tone$`)
	modifierSlug = regexp.MustCompile(`^(.+?)-(light|medium-light|medium|medium-dark|dark)$`)
)

// compoundWords are name fragments that keep their internal hyphen inside
// an otherwise space-joined name, e.g. "smiling face with heart-eyes".
var compoundWords = []string{
	"heart-eyes", "one-piece", "up-down", "left-right", "e-mail", "t-shirt", "p-button",
}

// Make converts a display name to its canonical slug: lowercase, colons
// and spaces become hyphens, everything else non-alphanumeric is dropped.
// "waving hand: light skin tone" -> "waving-hand-light-skin-tone".
func Make(name string) string {
	s := strings.ToLower(name)
	s = separators.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Candidates expands a slug into display-name candidates, most specific
// first. The caller tries exact matches in order before falling back to a
// substring search.
func Candidates(s string) []string {
	var out []string
	add := func(v string) {
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}

	// Plain: hyphens back to spaces.
	add(strings.ReplaceAll(s, "-", " "))

	// "artist-dark-skin-tone" -> "artist: dark skin tone".
	if m := skinToneSlug.FindStringSubmatch(s); m != nil {
		base := strings.ReplaceAll(m[1], "-", " ")
		add(base + ": " + m[2] + " skin tone")
	}

	// "foo-medium-dark" -> "foo: medium-dark" spelled with spaces.
	if m := modifierSlug.FindStringSubmatch(s); m != nil {
		base := strings.ReplaceAll(m[1], "-", " ")
		add(base + ": " + strings.ReplaceAll(m[2], "-", " "))
	}

	// Reinsert hyphens for known compound fragments:
	// "smiling-face-with-heart-eyes" -> "smiling face with heart-eyes".
	words := strings.Split(s, "-")
	if len(words) > 1 {
		for _, compound := range compoundWords {
			parts := strings.Split(compound, "-")
			for i := 0; i+len(parts) <= len(words); i++ {
				if !matchesAt(words, parts, i) {
					continue
				}
				joined := make([]string, 0, len(words))
				joined = append(joined, words[:i]...)
				joined = append(joined, compound)
				joined = append(joined, words[i+len(parts):]...)
				add(strings.Join(joined, " "))
			}
		}
	}

	// "flag-united-arab-emirates" -> "flag: United Arab Emirates".
	if country, ok := strings.CutPrefix(s, "flag-"); ok && country != "" {
		add("flag: " + titleCase(strings.ReplaceAll(country, "-", " ")))
	}

	return out
}

func matchesAt(words, parts []string, i int) bool {
	for j, p := range parts {
		if words[i+j] != p {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
