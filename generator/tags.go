package generator

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultTagSample is how many verified tags a document gets before the
// focus keyword is appended.
const DefaultTagSample = 7

//go:embed default_tags.json
var defaultTagsJSON []byte

// TagSelector samples document tags from a vetted list.
type TagSelector struct {
	tags []string
}

// ParseVerifiedTags reads a categorised tag file ({"category": ["tag", ...]})
// into one flat list, categories in name order.
func ParseVerifiedTags(data []byte) (*TagSelector, error) {
	var groups map[string][]string
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse verified tags: %w", err)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []string
	for _, name := range names {
		all = append(all, groups[name]...)
	}
	return &TagSelector{tags: dedupe(all)}, nil
}

// LoadVerifiedTags reads path, or the embedded list when path is empty.
func LoadVerifiedTags(path string) (*TagSelector, error) {
	if path == "" {
		return DefaultTagSelector()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read verified tags: %w", err)
	}
	return ParseVerifiedTags(data)
}

func DefaultTagSelector() (*TagSelector, error) {
	return ParseVerifiedTags(defaultTagsJSON)
}

// Len is the number of verified tags available.
func (s *TagSelector) Len() int { return len(s.tags) }

// Select samples up to n verified tags with shuffle, appends keyword and
// removes case-insensitive duplicates.
func (s *TagSelector) Select(keyword string, n int, shuffle Shuffler) []string {
	pool := append([]string(nil), s.tags...)
	if shuffle != nil {
		shuffle.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	if n >= 0 && n < len(pool) {
		pool = pool[:n]
	}
	if kw := strings.TrimSpace(keyword); kw != "" {
		pool = append(pool, kw)
	}
	return dedupe(pool)
}
