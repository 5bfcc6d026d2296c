package emojidata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kitmoji/api/internal/model"
)

// flagPattern matches a two-regional-indicator sequence (country flags).
var flagPattern = regexp.MustCompile(`^1F1[A-F0-9]{2} 1F1[A-F0-9]{2}$`)

// skinTones maps the five modifier codepoints to their display names.
var skinTones = map[string]string{
	"1F3FB": "light",
	"1F3FC": "medium-light",
	"1F3FD": "medium",
	"1F3FE": "medium-dark",
	"1F3FF": "dark",
}

// Tokens splits a space-separated hex codepoint string into uppercase tokens.
func Tokens(unicode string) []string {
	fields := strings.Fields(unicode)
	for i := range fields {
		fields[i] = strings.ToUpper(fields[i])
	}
	return fields
}

// DeriveType classifies a codepoint sequence. Skin-tone modifiers take
// precedence over ZWJ joins so that "waving hand: light skin tone" style
// sequences classify as variants even when joined.
func DeriveType(unicode string) string {
	tokens := Tokens(unicode)

	for _, t := range tokens {
		if _, ok := skinTones[t]; ok {
			return model.TypeSkinToneVariant
		}
	}
	for _, t := range tokens {
		if t == "200D" {
			return model.TypeZWJSequence
		}
	}
	if flagPattern.MatchString(strings.Join(tokens, " ")) {
		return model.TypeFlag
	}
	if len(tokens) > 1 {
		return model.TypeMultiCodepoint
	}
	return model.TypeStandard
}

// DeriveSkinTone returns the tone name for the first skin-tone modifier in
// the sequence, or "" when none is present.
func DeriveSkinTone(unicode string) string {
	for _, t := range Tokens(unicode) {
		if tone, ok := skinTones[t]; ok {
			return tone
		}
	}
	return ""
}

// BaseUnicode strips skin-tone modifier tokens, linking a variant back to
// its base form.
func BaseUnicode(unicode string) string {
	tokens := Tokens(unicode)
	base := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := skinTones[t]; ok {
			continue
		}
		base = append(base, t)
	}
	return strings.Join(base, " ")
}

// Render converts a codepoint sequence to the literal character sequence.
// Variation selectors (FE0F) are skipped; unparseable input renders as "❓".
func Render(unicode string) string {
	var b strings.Builder
	for _, t := range Tokens(unicode) {
		if t == "" || t == "FE0F" {
			continue
		}
		code, err := strconv.ParseInt(t, 16, 32)
		if err != nil || code <= 0 {
			continue
		}
		b.WriteRune(rune(code))
	}
	if b.Len() == 0 {
		return "❓"
	}
	return b.String()
}

// RenderFull converts a codepoint sequence keeping variation selectors,
// matching how the characters appear in the emoji-test.txt source. Some
// sequences (flag variants, ZWJ flags) only display correctly with FE0F
// present.
func RenderFull(unicode string) string {
	var b strings.Builder
	for _, t := range Tokens(unicode) {
		code, err := strconv.ParseInt(t, 16, 32)
		if err != nil || code <= 0 {
			continue
		}
		b.WriteRune(rune(code))
	}
	if b.Len() == 0 {
		return "❓"
	}
	return b.String()
}

// NewRecord builds an Emoji with all derived fields populated from the
// codepoint sequence. This is the single derivation site shared by every
// ingestion path (seeding, maintenance fixes, admin create).
func NewRecord(unicode, name, keywords, category, subcategory, version, status string) model.Emoji {
	normalized := strings.Join(Tokens(unicode), " ")
	return model.Emoji{
		Emoji:          RenderFull(normalized),
		Name:           name,
		Keywords:       keywords,
		Category:       category,
		Subcategory:    subcategory,
		Unicode:        normalized,
		UnicodeVersion: version,
		Status:         status,
		EmojiType:      DeriveType(normalized),
		BaseUnicode:    BaseUnicode(normalized),
		SkinTone:       DeriveSkinTone(normalized),
	}
}
