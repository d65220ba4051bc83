package match

import (
	"math"
	"slices"
	"strings"
)

// Scorer returns a 0-100 similarity score between a source name and one
// target name variant.
type Scorer func(source, target string) int

// Ratio is the edit-distance ratio: 100 * (1 - indel/(len(a)+len(b))),
// rounded to the nearest integer. Either string empty scores 0.
func Ratio(a, b string) int {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(a, b []rune) int {
	total := len(a) + len(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	d := indelDistance(a, b)

	return int(math.Round(100 * float64(total-d) / float64(total)))
}

// PartialRatio is the best-substring ratio: the shorter string is slid over
// every window of equal length in the longer one and the best Ratio wins.
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(short) == 0 {
		return 0
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		if s := ratioRunes(short, long[i:i+len(short)]); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}

	return best
}

// TokenSortRatio compares the two strings after splitting them into
// alphanumeric words, sorting the words, and re-joining them with spaces.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	tokens := processTokens(s)
	slices.Sort(tokens)

	return strings.Join(tokens, " ")
}

// DefaultScorer returns the maximum of Ratio, PartialRatio and
// TokenSortRatio over the normalized names.
func DefaultScorer(source, target string) int {
	s, t := NormalizeName(source), NormalizeName(target)

	return max(Ratio(s, t), PartialRatio(s, t), TokenSortRatio(s, t))
}

// BestScore scores source against every target variant with scorer and
// returns the highest score plus the variant that produced it. Ties keep the
// earlier variant. A nil scorer means DefaultScorer.
func BestScore(source string, variants []string, scorer Scorer) (int, string) {
	if scorer == nil {
		scorer = DefaultScorer
	}

	best, against := 0, ""
	for _, v := range variants {
		if s := scorer(source, v); s > best {
			best, against = s, v
		}
	}

	return best, against
}
