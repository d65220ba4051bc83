package plan

import (
	"slices"
	"strings"

	"ratebridge/internal/mapping"
	"ratebridge/internal/match"
)

// AutoMapRemaining fills unmapped required targets from source columns no
// other target uses. Each column is handed out at most once. Per target, the
// first available column wins by, in order: exact name (100), containing
// the target name (80), containing a word of the target longer than two
// letters (61).
func AutoMapRemaining(m mapping.FieldMapping, sources, required []string) mapping.FieldMapping {
	used := make(map[string]bool)
	for _, src := range m.Sources() {
		used[src] = true
	}

	for _, target := range required {
		if _, ok := m.Get(target); ok {
			continue
		}

		available := slices.DeleteFunc(slices.Clone(sources), func(s string) bool { return used[s] })
		if len(available) == 0 {
			break
		}

		if a, ok := autoMatch(target, available); ok {
			m = m.With(target, a)
			used[a.Source] = true
		}
	}

	return m
}

func autoMatch(target string, available []string) (mapping.Assignment, bool) {
	key := match.Compact(target)

	for _, src := range available {
		if match.Compact(src) == key {
			return mapping.Assignment{Source: src, Confidence: ConfidenceExact, Reason: mapping.ReasonExact}, true
		}
	}

	for _, src := range available {
		if strings.Contains(match.Compact(src), key) {
			return mapping.Assignment{Source: src, Confidence: ConfidenceSynonym, Reason: mapping.ReasonSynonym}, true
		}
	}

	for _, src := range available {
		compact := match.Compact(src)
		for _, word := range match.TokenizeName(target) {
			if len(word) > 2 && strings.Contains(compact, word) {
				return mapping.Assignment{Source: src, Confidence: 61, Reason: mapping.ReasonFuzzy}, true
			}
		}
	}

	return mapping.Assignment{}, false
}
