package plan

import (
	"fmt"
	"slices"
	"strings"

	"ratebridge/internal/analyze"
	"ratebridge/internal/mapping"
	"ratebridge/internal/match"
)

// Confidence levels assigned by the fixed tiers.
const (
	ConfidenceExact   = 100
	ConfidenceContent = 90
	ConfidenceSynonym = 80
)

// AmbiguityMargin is the score gap under which two fuzzy candidates are
// reported as ambiguous.
const AmbiguityMargin = 5

// Config holds configuration for the resolution process.
type Config struct {
	// FuzzyThreshold: fuzzy scores must be strictly above it.
	FuzzyThreshold int
	// ConfidenceThreshold is the auto-accept bar reported in diagnostics.
	ConfidenceThreshold int
	// MaxCandidates is the maximum number of candidates kept per unmapped target.
	MaxCandidates int
	// Synonyms is the curated synonym table. Nil means the defaults.
	Synonyms mapping.Synonyms
	// Scorer computes fuzzy similarity. Nil means match.DefaultScorer.
	Scorer match.Scorer
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold:      60,
		ConfidenceThreshold: 70,
		MaxCandidates:       5,
		Synonyms:            mapping.DefaultSynonyms(),
		Scorer:              match.DefaultScorer,
	}
}

// Resolver performs the resolution pipeline. It holds no state between calls.
type Resolver struct {
	config Config
}

// NewResolver creates a new Resolver.
func NewResolver(config Config) *Resolver {
	if config.Synonyms == nil {
		config.Synonyms = mapping.DefaultSynonyms()
	}

	if config.Scorer == nil {
		config.Scorer = match.DefaultScorer
	}

	return &Resolver{config: config}
}

// source is one candidate column.
type source struct {
	name    string
	lower   string
	compact string
	tag     string
	// reserved names the canonical field this column exactly matches, so
	// tiers 2-4 of other targets leave it alone.
	reserved string
}

// Resolve maps schema targets to the profiled fields of s. Columns that
// already hold one deductible tier are not candidates.
func (r *Resolver) Resolve(s *analyze.Structure, schema mapping.Schema) *Plan {
	skip := make(map[string]bool, len(s.TierFields))
	for _, tf := range s.TierFields {
		skip[tf.Field] = true
	}

	var sources []source

	for _, p := range s.Profiles {
		if !skip[p.Name] {
			sources = append(sources, newSource(p.Name, p.Tag))
		}
	}

	return r.resolve(sources, schema)
}

// ResolveNames maps schema targets to a bare list of field names. The content
// tier does not apply.
func (r *Resolver) ResolveNames(names []string, schema mapping.Schema) *Plan {
	sources := make([]source, 0, len(names))
	for _, n := range names {
		sources = append(sources, newSource(n, ""))
	}

	return r.resolve(sources, schema)
}

func newSource(name, tag string) source {
	return source{
		name:    name,
		lower:   match.NormalizeName(name),
		compact: match.Compact(name),
		tag:     tag,
	}
}

func (r *Resolver) resolve(sources []source, schema mapping.Schema) *Plan {
	p := &Plan{Schema: slices.Clone(schema)}

	reserved := append(slices.Clone([]string(schema)), mapping.FieldPlanDeduct)

	for i := range sources {
		p.Sources = append(p.Sources, sources[i].name)

		for _, f := range reserved {
			if sources[i].compact == match.Compact(f) {
				sources[i].reserved = f

				break
			}
		}
	}

	// Tier and value columns are settled first and serve no other target.
	pivots := make(map[string]mapping.Assignment, len(mapping.PivotFields))

	for _, target := range schema {
		if !mapping.IsPivotField(target) {
			continue
		}

		if a, ok := r.resolveTarget(target, sources); ok {
			pivots[target] = a
			claim(sources, a.Source, target)
		}
	}

	for _, target := range schema {
		a, ok := pivots[target]
		if !mapping.IsPivotField(target) {
			a, ok = r.resolveTarget(target, sources)
		}

		if ok {
			p.Mapping = p.Mapping.With(target, a)

			if a.Confidence < r.config.ConfidenceThreshold {
				p.Diagnostics.AddInfo("low_confidence",
					fmt.Sprintf("%s <- %s at %d (%s)", target, a.Source, a.Confidence, a.Reason), target)
			}

			if a.Reason == mapping.ReasonFuzzy {
				r.checkAmbiguous(p, target, sources)
			}

			continue
		}

		p.Unmapped = append(p.Unmapped, r.unmapped(target, sources))
	}

	for _, u := range p.Unmapped {
		p.Diagnostics.AddWarning("unmapped_field", u.Reason, u.Target, u.Candidates.Names()...)
	}

	return p
}

func (r *Resolver) resolveTarget(target string, sources []source) (mapping.Assignment, bool) {
	best, ok := r.resolveByName(target, sources)

	if !ok || best.Confidence < ConfidenceContent {
		if a, found := resolveByContent(target, sources); found {
			return a, true
		}
	}

	return best, ok
}

// resolveByName runs the exact, synonym and fuzzy tiers.
func (r *Resolver) resolveByName(target string, sources []source) (mapping.Assignment, bool) {
	key := match.Compact(target)

	for _, src := range sources {
		if src.compact == key {
			return mapping.Assignment{Source: src.name, Confidence: ConfidenceExact, Reason: mapping.ReasonExact}, true
		}
	}

	synonyms := r.config.Synonyms.Lookup(target)

	for _, src := range sources {
		if !src.available(target) {
			continue
		}

		if containsSynonym(src, synonyms) {
			return mapping.Assignment{Source: src.name, Confidence: ConfidenceSynonym, Reason: mapping.ReasonSynonym}, true
		}
	}

	if mapping.IsPivotField(target) {
		return mapping.Assignment{}, false
	}

	variants := r.config.Synonyms.Variants(target)
	best := mapping.Assignment{}

	for _, src := range sources {
		if !src.available(target) {
			continue
		}

		score, _ := match.BestScore(src.name, variants, r.config.Scorer)
		if score > r.config.FuzzyThreshold && score > best.Confidence {
			best = mapping.Assignment{Source: src.name, Confidence: score, Reason: mapping.ReasonFuzzy}
		}
	}

	return best, best.Source != ""
}

func resolveByContent(target string, sources []source) (mapping.Assignment, bool) {
	for _, src := range sources {
		if src.tag != "" && src.available(target) && strings.EqualFold(src.tag, target) {
			return mapping.Assignment{Source: src.name, Confidence: ConfidenceContent, Reason: mapping.ReasonContent}, true
		}
	}

	return mapping.Assignment{}, false
}

func claim(sources []source, name, target string) {
	for i := range sources {
		if sources[i].name == name && sources[i].reserved == "" {
			sources[i].reserved = target
		}
	}
}

func (s source) available(target string) bool {
	return s.reserved == "" || s.reserved == target
}

func containsSynonym(src source, synonyms []string) bool {
	for _, syn := range synonyms {
		if strings.Contains(src.lower, match.NormalizeName(syn)) || strings.Contains(src.compact, match.Compact(syn)) {
			return true
		}
	}

	return false
}

func (r *Resolver) rank(target string, sources []source) match.CandidateList {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.available(target) {
			names = append(names, s.name)
		}
	}

	return match.RankCandidates(r.config.Synonyms.Variants(target), names, r.config.Scorer)
}

// checkAmbiguous warns when a runner-up fuzzy candidate scores within
// AmbiguityMargin of the chosen one.
func (r *Resolver) checkAmbiguous(p *Plan, target string, sources []source) {
	ranked := r.rank(target, sources)
	if !ranked.IsAmbiguous(AmbiguityMargin) || ranked[1].Score <= r.config.FuzzyThreshold {
		return
	}

	best := ranked.Best()
	p.Diagnostics.AddWarning("ambiguous_match",
		fmt.Sprintf("%s scored %d, %s scored %d", best.Source, best.Score, ranked[1].Source, ranked[1].Score),
		target, ranked.Top(2).Names()...)
}

func (r *Resolver) unmapped(target string, sources []source) UnmappedField {
	u := UnmappedField{
		Target:     target,
		Candidates: r.rank(target, sources).Top(r.config.MaxCandidates),
	}

	switch {
	case mapping.IsPivotField(target):
		u.Reason = "left to the pivot-column detector"
	case len(u.Candidates) == 0:
		u.Reason = "no candidate source field"
	default:
		u.Reason = fmt.Sprintf("no candidate above fuzzy threshold %d", r.config.FuzzyThreshold)
	}

	return u
}
