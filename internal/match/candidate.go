package match

import "sort"

// Candidate represents a potential source column for one target field.
type Candidate struct {
	// Source is the source column name.
	Source string
	// Index is the source column position (tie-breaker).
	Index int
	// Score is the best 0-100 similarity across target variants.
	Score int
	// Against is the target variant (name or synonym) that scored best.
	Against string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every source column against the target variants
// and returns candidates sorted by score descending, then column order.
// Sources scoring zero are dropped.
func RankCandidates(variants []string, sources []string, scorer Scorer) CandidateList {
	var candidates CandidateList

	for i, src := range sources {
		score, against := BestScore(src, variants, scorer)
		if score == 0 {
			continue
		}

		candidates = append(candidates, Candidate{
			Source:  src,
			Index:   i,
			Score:   score,
			Against: against,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by source column position for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Index < c[j].Index
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within threshold points.
func (c CandidateList) IsAmbiguous(threshold int) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// Names returns the candidate source names in rank order.
func (c CandidateList) Names() []string {
	out := make([]string, len(c))
	for i, cand := range c {
		out[i] = cand.Source
	}

	return out
}
