package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratebridge/internal/pivot"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 70, cfg.Mapping.ConfidenceThreshold)
	assert.Equal(t, 60, cfg.Mapping.FuzzyThreshold)
	assert.Equal(t, 100, cfg.Pivot.DefaultTier)
	assert.Equal(t, []string{"C", "D"}, cfg.Pivot.LowTierClasses)
	assert.Equal(t, []int{0, 50, 100, 200, 250, 500}, cfg.Pivot.StandardTiers)
	assert.Equal(t, []string{"default", "low-tier-class", "tier:100", "lowest"}, cfg.Pivot.Policy)
	assert.InDelta(t, 10000.0, cfg.Pivot.ValueCeiling, 1e-9)
	assert.Equal(t, 5, cfg.Template.RowThreshold)
	assert.Equal(t, "Sheet1", cfg.Template.TemplateSheet)
	assert.Empty(t, cfg.Template.SourceSheet)
	assert.Equal(t, "mappings.yaml", cfg.Store.Path)
	assert.True(t, cfg.Store.UseSaved)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATEBRIDGE_DEFAULT_TIER", "50")
	t.Setenv("RATEBRIDGE_LOW_TIER_CLASSES", " A , B ,")
	t.Setenv("RATEBRIDGE_STANDARD_TIERS", "0, 100, 1000")
	t.Setenv("RATEBRIDGE_VALUE_CEILING", "2500.5")
	t.Setenv("RATEBRIDGE_USE_SAVED_MAPPINGS", "false")
	t.Setenv("RATEBRIDGE_PRIMARY_TIER_POLICY", "tier:250,lowest")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Pivot.DefaultTier)
	assert.Equal(t, []string{"A", "B"}, cfg.Pivot.LowTierClasses)
	assert.Equal(t, []int{0, 100, 1000}, cfg.Pivot.StandardTiers)
	assert.InDelta(t, 2500.5, cfg.Pivot.ValueCeiling, 1e-9)
	assert.False(t, cfg.Store.UseSaved)

	pc, err := cfg.PivotConfig()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 100, 1000}, pc.StandardTiers)
	assert.Equal(t, []pivot.Rule{{Kind: pivot.RuleTier, Tier: 250}, {Kind: pivot.RuleLowest}}, pc.Policy.Rules)
	assert.Equal(t, 50, pc.Policy.DefaultTier)
	assert.Equal(t, []string{"A", "B"}, pc.Policy.LowTierClasses)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		message string
	}{
		{"bad integer", "RATEBRIDGE_DEFAULT_TIER", "abc", "invalid integer"},
		{"bad tier list", "RATEBRIDGE_STANDARD_TIERS", "0,fifty", "invalid integer list element"},
		{"bad bool", "RATEBRIDGE_USE_SAVED_MAPPINGS", "maybe", "invalid boolean"},
		{"threshold range", "RATEBRIDGE_CONFIDENCE_THRESHOLD", "101", "must be 0-100"},
		{"fuzzy range", "RATEBRIDGE_FUZZY_THRESHOLD", "100", "must be 0-99"},
		{"unknown rule", "RATEBRIDGE_PRIMARY_TIER_POLICY", "default,highest", "unknown primary tier rule"},
		{"empty tier list", "RATEBRIDGE_STANDARD_TIERS", ",", "at least one tier"},
		{"log level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestResolverConfigSynonymsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Term:\n  - contract length\n"), 0o644))

	cfg := Default()
	cfg.Mapping.SynonymsFile = path
	cfg.Mapping.FuzzyThreshold = 75

	rc, err := cfg.ResolverConfig()
	require.NoError(t, err)
	assert.Equal(t, 75, rc.FuzzyThreshold)
	assert.Equal(t, []string{"contract length"}, rc.Synonyms.Lookup("Term"))
	assert.NotEmpty(t, rc.Synonyms.Lookup("Coverage"))

	cfg.Mapping.SynonymsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.ResolverConfig()
	assert.Error(t, err)
}

func TestMergeConfig(t *testing.T) {
	cfg := Default()
	cfg.Template.RowThreshold = 10

	mc := cfg.MergeConfig()
	assert.Equal(t, 10, mc.TemplateRowThreshold)
	assert.Contains(t, mc.KeyFields, "Coverage")
}
