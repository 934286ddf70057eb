package ruleset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risk-signal-engine/internal/domain"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCatalog(t, `
version: clinic-2026.01
rules:
  - kind: SUICIDAL_IDEATION
    severity: CRITICAL
    confidence: 0.95
    patterns:
      - "quero morrer"
      - "re:\\bsuicid"
  - kind: PANIC
    severity: MODERATE
    confidence: 0.6
    patterns:
      - "ataque de pânico"
`)

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "clinic-2026.01", rs.Version())
	assert.Equal(t, 2, rs.Len())

	rules := rs.Rules()
	assert.Equal(t, domain.SignalSuicidalIdeation, rules[0].Kind)
	assert.Equal(t, domain.SeverityCritical, rules[0].Severity)
	assert.InDelta(t, 0.95, rules[0].Confidence, 1e-9)
}

func TestLoadFileRejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing version", "rules:\n  - kind: PANIC\n    severity: MODERATE\n    confidence: 0.5\n    patterns: [\"panic\"]\n"},
		{"unknown severity name", "version: v1\nrules:\n  - kind: PANIC\n    severity: URGENT\n    confidence: 0.5\n    patterns: [\"panic\"]\n"},
		{"unknown kind", "version: v1\nrules:\n  - kind: WORRY\n    severity: MODERATE\n    confidence: 0.5\n    patterns: [\"worry\"]\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeCatalog(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
