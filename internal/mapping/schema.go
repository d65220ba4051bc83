package mapping

import (
	"slices"
	"strings"

	"ratebridge/internal/analyze"
	"ratebridge/internal/match"
)

// Canonical field names.
const (
	FieldCoverage   = "Coverage"
	FieldTerm       = "Term"
	FieldMiles      = "Miles"
	FieldFromMiles  = "FromMiles"
	FieldToMiles    = "ToMiles"
	FieldMinYear    = "MinYear"
	FieldMaxYears   = "MaxYears"
	FieldClass      = "Class"
	FieldDeductible = "Deductible"
	FieldRateCost   = "RateCost"
	FieldPlanDeduct = "PlanDeduct"
)

// IdentityFields are the fixed fields that lead every output row, in order.
var IdentityFields = []string{
	FieldCoverage, FieldTerm, FieldMiles, FieldFromMiles,
	FieldToMiles, FieldMinYear, FieldMaxYears, FieldClass,
}

// PivotFields are the tier/value pair consumed by pivoting.
var PivotFields = []string{FieldDeductible, FieldRateCost}

// EssentialFields are always part of a derived schema.
var EssentialFields = append(slices.Clone(IdentityFields), PivotFields...)

// defaultTemplateFields is the destination layout used when no template is
// available.
var defaultTemplateFields = []string{
	"CompanyCode", FieldTerm, FieldMiles, FieldFromMiles, FieldToMiles,
	FieldCoverage, "State", FieldClass, FieldPlanDeduct,
	"Deduct0", "Deduct50", "Deduct100", "Deduct200", "Deduct250", "Deduct500",
	"Markup", "New/Used", FieldMaxYears, "SurchargeCode", "PlanCode",
	"RateCardCode", "ClassListCode", FieldMinYear, "IncScCode", "IncScAmt",
}

// Schema is the ordered list of canonical target fields.
type Schema []string

// DefaultSchema is the schema derived from the built-in destination layout.
func DefaultSchema() Schema {
	return DeriveSchema(defaultTemplateFields)
}

// DeriveSchema builds the canonical schema from the destination template's
// columns: tier columns and PlanDeduct are dropped, blanks are skipped, and
// essential fields missing from the template are appended. An empty template
// field list yields DefaultSchema.
func DeriveSchema(templateFields []string) Schema {
	if len(templateFields) == 0 {
		return DefaultSchema()
	}

	var s Schema

	for _, f := range templateFields {
		name := strings.TrimSpace(f)
		if name == "" || IsTierField(name) || match.Compact(name) == match.Compact(FieldPlanDeduct) {
			continue
		}

		if !s.Contains(name) {
			s = append(s, name)
		}
	}

	for _, f := range EssentialFields {
		if !s.Contains(f) {
			s = append(s, f)
		}
	}

	return s
}

// IsTierField reports whether name is a pivoted tier column.
func IsTierField(name string) bool {
	_, ok := analyze.TierFromField(name)
	return ok
}

// IsPivotField reports whether name is the tier or value field.
func IsPivotField(name string) bool {
	return slices.Contains(PivotFields, name)
}

// Contains reports whether the schema holds name, ignoring case and
// separators.
func (s Schema) Contains(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Lookup returns the schema's spelling of name, ignoring case and separators.
func (s Schema) Lookup(name string) (string, bool) {
	key := match.Compact(name)
	for _, f := range s {
		if match.Compact(f) == key {
			return f, true
		}
	}

	return "", false
}

// Without returns the schema fields except the named ones.
func (s Schema) Without(names ...string) []string {
	out := make([]string, 0, len(s))
	for _, f := range s {
		if !slices.Contains(names, f) {
			out = append(out, f)
		}
	}

	return out
}
