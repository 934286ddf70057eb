package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/ruleset"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	return New(ruleset.NewProvider(ruleset.Default()))
}

func TestDetect(t *testing.T) {
	det := newTestDetector(t)

	tests := []struct {
		name     string
		text     string
		kind     domain.SignalKind
		severity domain.Severity
	}{
		{"suicidal ideation pt", "não aguento, eu quero morrer", domain.SignalSuicidalIdeation, domain.SeverityCritical},
		{"suicidal ideation en", "sometimes I want to die", domain.SignalSuicidalIdeation, domain.SeverityCritical},
		{"suicidal regex stem", "tenho pensamentos suicidas", domain.SignalSuicidalIdeation, domain.SeverityCritical},
		{"self harm", "tive vontade de me cortar", domain.SignalSelfHarm, domain.SeverityHigh},
		{"hopelessness", "estou sem esperança", domain.SignalHopelessness, domain.SeverityHigh},
		{"panic with diacritics", "tive um ATAQUE DE PÂNICO agora", domain.SignalPanic, domain.SeverityModerate},
		{"agitation", "estou muito nervoso hoje", domain.SignalAgitation, domain.SeverityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := det.Detect(tt.text)
			require.NotNil(t, result)
			assert.Equal(t, tt.kind, result.Kind)
			assert.Equal(t, tt.severity, result.Severity)
			assert.NotEmpty(t, result.PatternID)
			assert.Greater(t, result.Confidence, 0.0)
		})
	}
}

func TestDetectNoMatch(t *testing.T) {
	det := newTestDetector(t)

	for _, text := range []string{
		"",
		"hoje o dia foi tranquilo",
		"consegui dormir bem e caminhar no parque",
	} {
		assert.Nil(t, det.Detect(text), "no signal expected in %q", text)
	}
}

func TestDetectReturnsHighestPriorityOnly(t *testing.T) {
	det := newTestDetector(t)

	// The message contains both a suicidal ideation phrase and an agitation
	// phrase. Exactly one result comes back and it is the more urgent one.
	result := det.Detect("estou muito nervoso e quero morrer")
	require.NotNil(t, result)
	assert.Equal(t, domain.SignalSuicidalIdeation, result.Kind)
	assert.Equal(t, domain.SeverityCritical, result.Severity)
}

func TestDetectPatternIDIsOpaque(t *testing.T) {
	det := newTestDetector(t)

	message := "não aguento mais, quero morrer"
	result := det.Detect(message)
	require.NotNil(t, result)

	// The pattern identifier references the catalog, never the message.
	assert.NotContains(t, result.PatternID, "morrer")
	assert.Regexp(t, `^[A-Z_]+/\d+$`, result.PatternID)
}

func TestVersionFollowsSwap(t *testing.T) {
	provider := ruleset.NewProvider(ruleset.Default())
	det := New(provider)
	assert.Equal(t, ruleset.DefaultVersion, det.Version())

	replacement, err := ruleset.Compile([]domain.Rule{{
		Kind:       domain.SignalPanic,
		Severity:   domain.SeverityModerate,
		Confidence: 0.5,
		Patterns:   []string{"panic attack"},
	}}, "v2")
	require.NoError(t, err)

	provider.Swap(replacement)
	assert.Equal(t, "v2", det.Version())
	assert.Nil(t, det.Detect("quero morrer"), "old catalog rules are gone after swap")
	assert.NotNil(t, det.Detect("panic attack"))
}
