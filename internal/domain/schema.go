package domain

import "strings"

// columnMatcher resolves one logical field against a header list. Matchers
// are tried in order; the first header satisfying a matcher wins, so exact
// names take priority over substring fallbacks.
type columnMatcher struct {
	// Field is the logical name reported in SchemaError when unresolved.
	Field string
	// Match reports whether a normalized (lowercased, trimmed) header
	// belongs to this field.
	Match func(header string) bool
}

// exactMatcher matches a header exactly after normalization.
func exactMatcher(field, name string) columnMatcher {
	want := normalizeHeader(name)
	return columnMatcher{Field: field, Match: func(h string) bool { return h == want }}
}

// containsAll reports whether the header contains every keyword.
func containsAll(keywords ...string) func(string) bool {
	return func(h string) bool {
		for _, k := range keywords {
			if !strings.Contains(h, k) {
				return false
			}
		}
		return true
	}
}

// resolveColumns maps each matcher's logical field to a column index, trying
// matchers in priority order. Matchers sharing a Field act as fallbacks: the
// first one that resolves wins and later ones for the same field are skipped.
// Returns the resolved index per field and the list of fields left unresolved.
// Pure over the header list; knows nothing about file formats.
func resolveColumns(headers []string, matchers []columnMatcher) (map[string]int, []string) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	resolved := make(map[string]int, len(matchers))
	for _, m := range matchers {
		if _, ok := resolved[m.Field]; ok {
			continue
		}
		for i, h := range normalized {
			if m.Match(h) {
				resolved[m.Field] = i
				break
			}
		}
	}

	var missing []string
	seen := make(map[string]bool, len(matchers))
	for _, m := range matchers {
		if seen[m.Field] {
			continue
		}
		seen[m.Field] = true
		if _, ok := resolved[m.Field]; !ok {
			missing = append(missing, m.Field)
		}
	}
	return resolved, missing
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// cellValue returns the trimmed cell at idx, tolerating ragged rows.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
