// Package mapping defines the canonical schema, the immutable field mapping
// produced by resolution, and the YAML review file used to pin mappings by
// hand.
//
// # Canonical schema
//
// The schema is derived from the destination template's columns, minus the
// pivot-tier columns (Deduct<N>, PlanDeduct), plus the essential identity
// fields every run needs (Coverage, Term, Miles, FromMiles, ToMiles, MinYear,
// MaxYears, Class, Deductible, RateCost).
//
// # Review file
//
// Suggestions are exported to, and manual decisions are read from, a YAML
// document:
//
//	version: "1"
//	source: rates.xlsx
//	signature: 3f9a...
//	fields:
//	  - target: Coverage
//	    source: Plan Name
//	    confidence: 80
//	    reason: synonym
//	  - target: Markup
//	    source: ""          # left unmapped
//	    candidates: [Mark Up, MarkupAmt]
//
// An entry with an empty source leaves the target unmapped. Entries edited
// by hand without a reason are read as manual with confidence 100.
package mapping
