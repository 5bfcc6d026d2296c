package emojidata

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/kitmoji/api/internal/model"
)

// ParseOptions controls which qualification levels survive parsing.
type ParseOptions struct {
	// Statuses keeps rows whose status is in the set. Empty means the
	// canonical filter: fully-qualified plus component.
	Statuses []string
}

var versionPattern = regexp.MustCompile(`E([0-9.]+)\s+`)

// ParseTestFile reads the Unicode emoji-test.txt format: "# group:" and
// "# subgroup:" headers carry the category context, data rows look like
//
//	1F600 ; fully-qualified # 😀 E1.0 grinning face
//
// Rows are deduplicated by codepoint sequence, first seen wins.
func ParseTestFile(r io.Reader, opts ParseOptions) ([]model.Emoji, error) {
	keep := make(map[string]bool)
	if len(opts.Statuses) == 0 {
		keep[model.StatusFullyQualified] = true
		keep[model.StatusComponent] = true
	} else {
		for _, s := range opts.Statuses {
			keep[s] = true
		}
	}

	var records []model.Emoji
	seen := make(map[string]bool)

	category := ""
	subcategory := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "# group:") {
			category = strings.TrimSpace(strings.TrimPrefix(line, "# group:"))
			continue
		}
		if strings.HasPrefix(line, "# subgroup:") {
			subcategory = strings.TrimSpace(strings.TrimPrefix(line, "# subgroup:"))
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		unicode, char, status, version, name, ok := parseDataLine(line)
		if !ok || !keep[status] {
			continue
		}

		normalized := strings.Join(Tokens(unicode), " ")
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		cat := category
		if cat == "" {
			cat = "Objects"
		}
		rec := NewRecord(normalized, name, "", cat, subcategory, version, status)
		if char != "" {
			// Prefer the literal character from the source file.
			rec.Emoji = char
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// ParseTestDataFile is ParseTestFile over a file path.
func ParseTestDataFile(path string, opts ParseOptions) ([]model.Emoji, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestFile(f, opts)
}

// parseDataLine splits "codepoints ; status # char Eversion name".
func parseDataLine(line string) (unicode, char, status, version, name string, ok bool) {
	hashIdx := strings.Index(line, "#")
	if hashIdx == -1 {
		return "", "", "", "", "", false
	}
	before := strings.TrimSpace(line[:hashIdx])
	after := strings.TrimSpace(line[hashIdx+1:])

	semiIdx := strings.Index(before, ";")
	if semiIdx == -1 {
		return "", "", "", "", "", false
	}
	unicode = strings.TrimSpace(before[:semiIdx])
	status = strings.TrimSpace(before[semiIdx+1:])
	if unicode == "" || status == "" || len(after) < 3 {
		return "", "", "", "", "", false
	}

	m := versionPattern.FindStringSubmatchIndex(after)
	if m == nil {
		return "", "", "", "", "", false
	}
	char = strings.TrimSpace(after[:m[0]])
	version = after[m[2]:m[3]]
	name = strings.TrimSpace(after[m[1]:])
	if name == "" {
		name = "unknown"
	}
	return unicode, char, status, version, name, true
}
