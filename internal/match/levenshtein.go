package match

// Levenshtein computes the Levenshtein distance (edit distance) between two strings.
// The distance is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to transform one string into the other.
// Strings are compared rune by rune.
//
// Time complexity: O(len(a) * len(b))
// Space complexity: O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	return levenshteinRunes([]rune(a), []rune(b))
}

func levenshteinRunes(a, b []rune) int {
	if string(a) == string(b) {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	// Ensure a is the shorter string for space optimization
	if len(a) > len(b) {
		a, b = b, a
	}

	// Use two rows instead of full matrix for space optimization
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			curr[i] = min3(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// LevenshteinNormalized computes a normalized similarity score between 0 and 1.
// 1.0 means identical strings, 0.0 means completely different.
// The score is: 1 - (distance / max(len(a), len(b))).
func LevenshteinNormalized(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}

	maxLen := max(len(ra), len(rb))

	return 1.0 - float64(levenshteinRunes(ra, rb))/float64(maxLen)
}

// Closest returns the name in names nearest to name by edit distance over
// compacted forms, considering only names whose normalized similarity is at
// least minSimilarity. Ties keep the earlier name.
func Closest(name string, names []string, minSimilarity float64) (string, bool) {
	key := Compact(name)
	best, bestDist := "", -1

	for _, n := range names {
		c := Compact(n)
		if LevenshteinNormalized(key, c) < minSimilarity {
			continue
		}

		if d := Levenshtein(key, c); bestDist < 0 || d < bestDist {
			best, bestDist = n, d
		}
	}

	return best, bestDist >= 0
}

// indelDistance is the edit distance when only insertions and deletions are
// allowed (a substitution costs two). It equals len(a)+len(b)-2*LCS(a, b).
func indelDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}

		prev, curr = curr, prev
	}

	return len(a) + len(b) - 2*prev[len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}

		return c
	}

	if b < c {
		return b
	}

	return c
}
