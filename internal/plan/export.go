package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"ratebridge/internal/mapping"
)

// ExportSuggestions generates a review file from a resolved plan.
// This allows users to review and approve auto-matched mappings.
func ExportSuggestions(p *Plan) *mapping.ReviewFile {
	return mapping.NewReviewFile(p.Schema, p.Mapping, p.CandidateNames())
}

// ExportSuggestionsYAML generates the review file as YAML bytes.
func ExportSuggestionsYAML(p *Plan) ([]byte, error) {
	return yaml.Marshal(ExportSuggestions(p))
}

// FormatReport formats a plan as human-readable text.
func FormatReport(p *Plan, threshold int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Mapped: %d, Unmapped: %d\n", p.Mapping.Len(), len(p.Unmapped))

	if p.Mapping.Len() > 0 {
		b.WriteString("\nMapped fields:\n")

		for _, t := range p.Mapping.Targets() {
			a, _ := p.Mapping.Get(t)

			mark := "✓"
			if a.Confidence < threshold {
				mark = "?"
			}

			fmt.Fprintf(&b, "  %s %s <- %s (%d%%, %s)\n", mark, t, a.Source, a.Confidence, a.Reason)
		}
	}

	if len(p.Unmapped) > 0 {
		b.WriteString("\nUnmapped target fields (need review):\n")

		for _, u := range p.Unmapped {
			fmt.Fprintf(&b, "  ✗ %s: %s\n", u.Target, u.Reason)

			for i, c := range u.Candidates {
				fmt.Fprintf(&b, "      %d. %s (%d%%)\n", i+1, c.Source, c.Score)
			}
		}
	}

	if p.NeedsReview(threshold) {
		fmt.Fprintf(&b, "\nMapping needs review: confidence below %d.\n", threshold)
	}

	return b.String()
}
