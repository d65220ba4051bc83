package analyze

import (
	"log/slog"
	"sort"
	"strings"
)

var (
	sheetKeywords   = []string{"rate", "data", "cost", "deductible", "miles"}
	sheetExactNames = []string{"dealer cost rates", "rates", "data"}
	requiredTags    = []string{TagCoverage, TagMileage, TagTerm, TagDeductible, TagClass}
)

// SheetScore rates how likely a sheet holds the main rate data.
// Score components:
//   - row volume: rows/10, capped at 100
//   - 10 per tagged field
//   - 50 when the sheet name contains a rate-data keyword
//   - 100 when the sheet name is a well-known data sheet name
//   - 50 for sheets wider than 10 fields
//   - 20 per required tag present (coverage, mileage, term, deductible, class)
func SheetScore(name string, s *Structure) float64 {
	if s == nil {
		return 0
	}

	score := min(100, float64(s.RowCount)/10)

	tags := make(map[string]bool)

	for _, p := range s.Profiles {
		if p.Tag != "" {
			score += 10
			tags[p.Tag] = true
		}
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	if containsAny(lower, sheetKeywords...) {
		score += 50
	}

	for _, exact := range sheetExactNames {
		if lower == exact {
			score += 100
		}
	}

	if len(s.Fields) > 10 {
		score += 50
	}

	for _, tag := range requiredTags {
		if tags[tag] {
			score += 20
		}
	}

	return score
}

// SelectMainSheet returns the best scoring sheet. Sheets are visited in name
// order and ties keep the earlier name. It returns "" when no sheet scores
// above zero.
func SelectMainSheet(sheets map[string]*Structure, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}

	sort.Strings(names)

	best, bestScore := "", 0.0

	for _, name := range names {
		score := SheetScore(name, sheets[name])
		logger.Debug("sheet score", slog.String("sheet", name), slog.Float64("score", score))

		if score > bestScore {
			best, bestScore = name, score
		}
	}

	logger.Info("identified main sheet", slog.String("sheet", best), slog.Float64("score", bestScore))

	return best
}
