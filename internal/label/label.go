// Package label canonicalizes tier and product labels so that rows coming
// from independently rendered tables can be matched with each other.
package label

import (
	"strings"
	"unicode"
)

// Normalize removes whitespace and hyphens and lowercases the label, so that
// "22 K", "22-k" and "22k" all compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Row is a labelled price read from one table.
type Row struct {
	Label string
	Price int64
}

// Index looks prices up by normalized label.
type Index struct {
	prices map[string]int64
}

// NewIndex builds an index over rows. When two rows normalize to the same
// label the first one wins.
func NewIndex(rows []Row) *Index {
	idx := &Index{prices: make(map[string]int64, len(rows))}
	for _, r := range rows {
		key := Normalize(r.Label)
		if key == "" {
			continue
		}
		if _, exists := idx.prices[key]; exists {
			continue
		}
		idx.prices[key] = r.Price
	}
	return idx
}

// Lookup returns the price stored under the normalized form of label, or nil.
func (idx *Index) Lookup(label string) *int64 {
	if idx == nil {
		return nil
	}
	v, ok := idx.prices[Normalize(label)]
	if !ok {
		return nil
	}
	return &v
}

// Len returns the number of distinct labels in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.prices)
}
