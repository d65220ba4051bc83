// Package match provides header-name normalization and the similarity
// metrics used to pair source columns with canonical fields.
//
// Key functions:
//   - NormalizeName / Compact: fold names for comparison
//   - Levenshtein: computes edit distance between strings
//   - Ratio, PartialRatio, TokenSortRatio: 0-100 similarity scores
//   - BestScore: the maximum of the three metrics across name variants
//   - RankCandidates: ranks source columns for one target field
package match
