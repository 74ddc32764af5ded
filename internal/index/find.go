package index

import (
	"slices"
	"strings"
)

// Match is one Find result.
type Match struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Find returns the entries whose name or path contains every whitespace
// separated token of query, compared case-insensitively, sorted by name.
// A limit of zero or less returns all matches.
func (m Map) Find(query string, limit int) []Match {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Match{}
	}

	out := []Match{}
	for name, path := range m {
		blob := strings.ToLower(name + "\n" + path)
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, Match{Name: name, Path: path})
		}
	}

	slices.SortFunc(out, func(a, b Match) int { return strings.Compare(a.Name, b.Name) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tokenize(q string) []string {
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(p))
	}
	return out
}
