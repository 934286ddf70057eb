package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/normalize"
)

func testRules() []domain.Rule {
	return []domain.Rule{
		{
			Kind:       domain.SignalSuicidalIdeation,
			Severity:   domain.SeverityCritical,
			Confidence: 0.9,
			Patterns:   []string{"quero morrer", "re:\\bsuicid"},
		},
		{
			Kind:       domain.SignalPanic,
			Severity:   domain.SeverityModerate,
			Confidence: 0.7,
			Patterns:   []string{"ataque de pânico"},
		},
	}
}

func TestCompile(t *testing.T) {
	rs, err := Compile(testRules(), "test-1")
	require.NoError(t, err)
	assert.Equal(t, "test-1", rs.Version())
	assert.Equal(t, 2, rs.Len())

	rules := rs.Rules()
	assert.Equal(t, domain.SignalSuicidalIdeation, rules[0].Kind)
	assert.Equal(t, domain.SeverityCritical, rules[0].Severity)
	assert.Equal(t, domain.SignalPanic, rules[1].Kind)
}

func TestCompileRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name  string
		rules []domain.Rule
	}{
		{"empty catalog", nil},
		{
			"kind at two severities",
			[]domain.Rule{
				{Kind: domain.SignalPanic, Severity: domain.SeverityModerate, Confidence: 0.7, Patterns: []string{"panic attack"}},
				{Kind: domain.SignalPanic, Severity: domain.SeverityHigh, Confidence: 0.7, Patterns: []string{"panicking"}},
			},
		},
		{
			"confidence out of range",
			[]domain.Rule{
				{Kind: domain.SignalPanic, Severity: domain.SeverityModerate, Confidence: 1.2, Patterns: []string{"panic attack"}},
			},
		},
		{
			"invalid regex",
			[]domain.Rule{
				{Kind: domain.SignalPanic, Severity: domain.SeverityModerate, Confidence: 0.7, Patterns: []string{"re:(unclosed"}},
			},
		},
		{
			"blank literal pattern",
			[]domain.Rule{
				{Kind: domain.SignalPanic, Severity: domain.SeverityModerate, Confidence: 0.7, Patterns: []string{"   "}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.rules, "bad")
			assert.Error(t, err)
		})
	}
}

func TestFirstMatchPatternID(t *testing.T) {
	rs, err := Compile(testRules(), "test-1")
	require.NoError(t, err)

	rule := rs.Rules()[0]

	id, ok := rule.FirstMatch(normalize.Text("hoje eu quero morrer"))
	require.True(t, ok)
	assert.Equal(t, "SUICIDAL_IDEATION/0", id)

	id, ok = rule.FirstMatch(normalize.Text("thinking about suicide"))
	require.True(t, ok)
	assert.Equal(t, "SUICIDAL_IDEATION/1", id)

	_, ok = rule.FirstMatch(normalize.Text("tudo bem hoje"))
	assert.False(t, ok)
}

func TestLiteralPatternsMatchDiacriticVariants(t *testing.T) {
	rs, err := Compile(testRules(), "test-1")
	require.NoError(t, err)

	// The pattern is authored with diacritics; the message arrives without.
	rule := rs.Rules()[1]
	_, ok := rule.FirstMatch(normalize.Text("tive um ataque de panico ontem"))
	assert.True(t, ok)

	_, ok = rule.FirstMatch(normalize.Text("Tive um ATAQUE DE PÂNICO ontem"))
	assert.True(t, ok)
}

func TestDefaultCatalogCompiles(t *testing.T) {
	rs := Default()
	assert.Equal(t, DefaultVersion, rs.Version())
	assert.Equal(t, len(defaultRules), rs.Len())

	// Priority order: the most urgent kinds come first.
	rules := rs.Rules()
	assert.Equal(t, domain.SignalSuicidalIdeation, rules[0].Kind)
	for i := 1; i < len(rules); i++ {
		assert.True(t, rules[i].Severity <= rules[i-1].Severity,
			"catalog severity should be non-increasing, rule %d breaks it", i)
	}
}

func TestProviderSwap(t *testing.T) {
	first, err := Compile(testRules(), "v1")
	require.NoError(t, err)
	second, err := Compile(testRules(), "v2")
	require.NoError(t, err)

	provider := NewProvider(first)
	assert.Equal(t, "v1", provider.Current().Version())

	held := provider.Current()
	provider.Swap(second)

	assert.Equal(t, "v2", provider.Current().Version())
	assert.Equal(t, "v1", held.Version(), "in-flight requests keep the catalog they obtained")
}
