package match

import (
	"math"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		// Identical strings
		{"", "", 0},
		{"a", "a", 0},
		{"miles", "miles", 0},

		// Empty vs non-empty
		{"", "abc", 3},
		{"abc", "", 3},

		// Single character operations
		{"a", "b", 1},    // substitution
		{"a", "ab", 1},   // insertion
		{"ab", "a", 1},   // deletion
		{"term", "terms", 1},

		// Multiple operations
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},

		// Case-sensitive
		{"ABC", "abc", 3},

		// Real-world header examples
		{"deductible", "deductable", 1},
		{"coverage", "cov", 5},
		{"ratecost", "ratecost", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := Levenshtein(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}

			// Verify symmetry
			resultReverse := Levenshtein(tt.b, tt.a)
			if result != resultReverse {
				t.Errorf("Levenshtein symmetry failed: (%q, %q) = %d, (%q, %q) = %d",
					tt.a, tt.b, result, tt.b, tt.a, resultReverse)
			}
		})
	}
}

func TestLevenshteinNormalized(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected float64
	}{
		{"", "", 1.0},
		{"miles", "miles", 1.0},
		{"abc", "xyz", 0.0},
		{"kitten", "sitting", 1.0 - 3.0/7.0},
		{"abc", "ab", 1.0 - 1.0/3.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			result := LevenshteinNormalized(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("LevenshteinNormalized(%q, %q) = %f, want %f", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestClosest(t *testing.T) {
	names := []string{"acme-north", "beta", "acme south"}

	tests := []struct {
		name     string
		query    string
		names    []string
		expected string
		found    bool
	}{
		{"one typo", "acme nort", names, "acme-north", true},
		{"separators ignored", "Acme_South", names, "acme south", true},
		{"nothing close", "zzz", names, "", false},
		{"tie keeps earlier", "ab", []string{"ac", "ad"}, "ac", true},
		{"no names", "acme", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Closest(tt.query, tt.names, 0.5)
			if got != tt.expected || ok != tt.found {
				t.Errorf("Closest(%q) = %q, %v, want %q, %v", tt.query, got, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestIndelDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"abc", "abd", 2},
		{"miles", "mileage", 4},
	}

	for _, tt := range tests {
		got := indelDistance([]rune(tt.a), []rune(tt.b))
		if got != tt.expected {
			t.Errorf("indelDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
