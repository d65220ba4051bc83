package plan

import (
	"ratebridge/internal/diagnostic"
	"ratebridge/internal/mapping"
	"ratebridge/internal/match"
)

// Plan is the output of resolution.
type Plan struct {
	// Schema is the canonical schema that was resolved.
	Schema mapping.Schema
	// Sources are the source columns considered, in column order.
	Sources []string
	// Mapping holds the resolved assignments, in schema order.
	Mapping mapping.FieldMapping
	// Unmapped lists targets no tier could resolve.
	Unmapped []UnmappedField
	// Diagnostics contains warnings about unmapped and low-confidence fields.
	Diagnostics diagnostic.Diagnostics
}

// UnmappedField is a target with no assignment.
type UnmappedField struct {
	Target     string
	Reason     string
	Candidates match.CandidateList
}

// NeedsReview reports whether any assignment falls below threshold.
func (p *Plan) NeedsReview(threshold int) bool {
	for _, t := range p.Mapping.Targets() {
		if a, _ := p.Mapping.Get(t); a.Confidence < threshold {
			return true
		}
	}

	return false
}

// Required returns the schema fields a person is asked to confirm: every
// target except the pivot fields, which the pivot detector resolves.
func (p *Plan) Required() []string {
	return p.Schema.Without(mapping.PivotFields...)
}

// CandidateNames returns the top candidate names of every unmapped target.
func (p *Plan) CandidateNames() map[string][]string {
	out := make(map[string][]string, len(p.Unmapped))
	for _, u := range p.Unmapped {
		if len(u.Candidates) > 0 {
			out[u.Target] = u.Candidates.Names()
		}
	}

	return out
}
