package mapping

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"ratebridge/internal/match"
)

// Synonyms maps a compact target name to curated source-name fragments.
type Synonyms map[string][]string

// DefaultSynonyms returns the built-in synonym table.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		"coverage":   {"coverage", "cover", "cov", "protection", "plan"},
		"term":       {"term", "duration", "period", "months", "length"},
		"miles":      {"miles", "mileage", "distance", "odometer"},
		"frommiles":  {"frommiles", "from_miles", "startmiles", "minmiles", "lowmiles", "from mile"},
		"tomiles":    {"tomiles", "to_miles", "endmiles", "maxmiles", "highmiles", "to mile"},
		"minyear":    {"minyear", "min_year", "yearmin", "startyear", "fromyear", "vehicleyearmin"},
		"maxyears":   {"maxyears", "max_years", "yearmax", "endyear", "toyear", "vehicleyearmax", "year limit"},
		"class":      {"class", "vehicleclass", "category", "tier", "classification"},
		"ratecost":   {"ratecost", "rate", "cost", "price", "premium", "dealer", "dealercost"},
		"deductible": {"deductible", "deduct", "ded", "deductable", "deduction"},
	}
}

// Lookup returns the synonyms for target.
func (s Synonyms) Lookup(target string) []string {
	return s[match.Compact(target)]
}

// Variants returns the target name followed by its synonyms.
func (s Synonyms) Variants(target string) []string {
	return append([]string{target}, s.Lookup(target)...)
}

// Merge returns a copy of s where every list in overrides replaces the
// built-in list for that target. An empty list removes the target.
func (s Synonyms) Merge(overrides map[string][]string) Synonyms {
	out := maps.Clone(s)
	if out == nil {
		out = Synonyms{}
	}

	for target, list := range overrides {
		key := match.Compact(target)
		if len(list) == 0 {
			delete(out, key)

			continue
		}

		out[key] = slices.Clone(list)
	}

	return out
}

// LoadSynonyms reads a YAML document of target -> synonym list and merges it
// over the defaults. An empty path returns the defaults.
func LoadSynonyms(path string) (Synonyms, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file %s: %w", path, err)
	}

	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms YAML: %w", err)
	}

	return DefaultSynonyms().Merge(overrides), nil
}
