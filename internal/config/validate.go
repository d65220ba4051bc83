package config

import (
	"fmt"
	"slices"
	"strings"

	"ratebridge/internal/integrate"
	"ratebridge/internal/mapping"
	"ratebridge/internal/pivot"
	"ratebridge/internal/plan"
)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Mapping.ConfidenceThreshold < 0 || c.Mapping.ConfidenceThreshold > 100 {
		errs = append(errs, fmt.Sprintf("RATEBRIDGE_CONFIDENCE_THRESHOLD (%d) must be 0-100",
			c.Mapping.ConfidenceThreshold))
	}

	if c.Mapping.FuzzyThreshold < 0 || c.Mapping.FuzzyThreshold >= 100 {
		errs = append(errs, fmt.Sprintf("RATEBRIDGE_FUZZY_THRESHOLD (%d) must be 0-99",
			c.Mapping.FuzzyThreshold))
	}

	if c.Mapping.MinResolvedFields < 0 {
		errs = append(errs, "RATEBRIDGE_MIN_RESOLVED_FIELDS must be non-negative")
	}

	if len(c.Pivot.StandardTiers) == 0 {
		errs = append(errs, "RATEBRIDGE_STANDARD_TIERS must list at least one tier")
	}

	if slices.ContainsFunc(c.Pivot.StandardTiers, func(n int) bool { return n < 0 }) {
		errs = append(errs, "RATEBRIDGE_STANDARD_TIERS must be non-negative")
	}

	if c.Pivot.DefaultTier < 0 {
		errs = append(errs, "RATEBRIDGE_DEFAULT_TIER must be non-negative")
	}

	if len(c.Pivot.Policy) == 0 {
		errs = append(errs, "RATEBRIDGE_PRIMARY_TIER_POLICY must list at least one rule")
	} else if _, err := pivot.ParseRules(c.Pivot.Policy); err != nil {
		errs = append(errs, fmt.Sprintf("RATEBRIDGE_PRIMARY_TIER_POLICY: %v", err))
	}

	if c.Pivot.ValueCeiling <= 0 {
		errs = append(errs, "RATEBRIDGE_VALUE_CEILING must be positive")
	}

	if c.Template.RowThreshold < 0 {
		errs = append(errs, "RATEBRIDGE_TEMPLATE_ROW_THRESHOLD must be non-negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ResolverConfig returns the field-mapper settings, with synonym overrides
// loaded from SynonymsFile when set.
func (c *Config) ResolverConfig() (plan.Config, error) {
	synonyms, err := mapping.LoadSynonyms(c.Mapping.SynonymsFile)
	if err != nil {
		return plan.Config{}, err
	}

	out := plan.DefaultConfig()
	out.FuzzyThreshold = c.Mapping.FuzzyThreshold
	out.ConfidenceThreshold = c.Mapping.ConfidenceThreshold
	out.Synonyms = synonyms

	return out, nil
}

// PivotConfig returns the pivot engine settings.
func (c *Config) PivotConfig() (pivot.Config, error) {
	rules, err := pivot.ParseRules(c.Pivot.Policy)
	if err != nil {
		return pivot.Config{}, err
	}

	out := pivot.DefaultConfig()
	out.StandardTiers = slices.Clone(c.Pivot.StandardTiers)
	out.ValueCeiling = c.Pivot.ValueCeiling
	out.Policy = pivot.Policy{
		Rules:          rules,
		DefaultTier:    c.Pivot.DefaultTier,
		LowTierClasses: slices.Clone(c.Pivot.LowTierClasses),
	}

	return out, nil
}

// MergeConfig returns the template integration settings.
func (c *Config) MergeConfig() integrate.Config {
	out := integrate.DefaultConfig()
	out.TemplateRowThreshold = c.Template.RowThreshold

	return out
}

// String returns a one-line summary of the config for logging.
func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("Config{")
	fmt.Fprintf(&b, "Mapping: {Confidence: %d, Fuzzy: %d, MinResolved: %d}, ",
		c.Mapping.ConfidenceThreshold, c.Mapping.FuzzyThreshold, c.Mapping.MinResolvedFields)
	fmt.Fprintf(&b, "Pivot: {DefaultTier: %d, LowTierClasses: %v, StandardTiers: %v, Policy: %v}, ",
		c.Pivot.DefaultTier, c.Pivot.LowTierClasses, c.Pivot.StandardTiers, c.Pivot.Policy)
	fmt.Fprintf(&b, "Store: {Path: %q, UseSaved: %v}, ", c.Store.Path, c.Store.UseSaved)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")

	return b.String()
}
