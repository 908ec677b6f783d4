package palette

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Entry is one selectable row.
type Entry struct {
	ID       string // Command ID or repository path
	Label    string
	Detail   string // Category or path, also searched
	Shortcut string // Display form, may be empty
}

// Filter returns the entries whose label or detail contains query,
// case-insensitively. Label prefix matches come first, then entries whose
// label is closest to the query by edit distance. Ties keep input order.
func Filter(entries []Entry, query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Entry(nil), entries...)
	}

	type ranked struct {
		entry    Entry
		prefix   bool
		distance int
		index    int
	}
	var matches []ranked
	for i, e := range entries {
		label := strings.ToLower(e.Label)
		if !strings.Contains(label, q) && !strings.Contains(strings.ToLower(e.Detail), q) {
			continue
		}
		matches = append(matches, ranked{
			entry:    e,
			prefix:   strings.HasPrefix(label, q),
			distance: levenshtein.ComputeDistance(q, label),
			index:    i,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		return a.index < b.index
	})

	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}
