package pivot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratebridge/internal/table"
)

func sampleTiers() map[int]table.Value {
	return map[int]table.Value{
		0:   table.Empty(),
		50:  table.Empty(),
		100: table.Number(45),
		200: table.Number(60),
	}
}

func TestPolicySelect(t *testing.T) {
	tests := []struct {
		name        string
		defaultTier int
		class       table.Value
		values      map[int]table.Value
		want        int
		ok          bool
	}{
		{"default tier present", 100, table.Empty(), sampleTiers(), 100, true},
		{"low tier class picks lowest", 50, table.String("C"), sampleTiers(), 100, true},
		{"low tier class is case-insensitive", 50, table.String(" d "), map[int]table.Value{
			200: table.Number(1), 500: table.Number(2),
		}, 200, true},
		{"falls back to 100", 50, table.String("A"), sampleTiers(), 100, true},
		{"lowest available", 50, table.String("A"), map[int]table.Value{
			200: table.Number(1), 500: table.Number(2),
		}, 200, true},
		{"nothing present", 100, table.String("C"), map[int]table.Value{0: table.Empty()}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			p.DefaultTier = tt.defaultTier

			got, ok := p.Select(tt.values, tt.class)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyCustomOrder(t *testing.T) {
	p := Policy{Rules: []Rule{{Kind: RuleTier, Tier: 200}, {Kind: RuleLowest}}}

	got, ok := p.Select(sampleTiers(), table.Empty())
	require.True(t, ok)
	assert.Equal(t, 200, got)

	p = Policy{Rules: []Rule{{Kind: RuleTier, Tier: 500}}}
	_, ok = p.Select(sampleTiers(), table.Empty())
	assert.False(t, ok)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]string{"default", " Low-Tier-Class ", "tier:100", "lowest"})
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)

	var names []string
	for _, r := range rules {
		names = append(names, r.String())
	}

	assert.Equal(t, []string{"default", "low-tier-class", "tier:100", "lowest"}, names)

	for _, bad := range []string{"tier:", "tier:-1", "tier:x", "highest", ""} {
		_, err := ParseRule(bad)
		assert.Error(t, err, bad)
	}
}

func TestRuleKindString(t *testing.T) {
	assert.Equal(t, "lowest", RuleLowest.String())
	assert.Equal(t, "RuleKind(0)", RuleKind(0).String())
}
