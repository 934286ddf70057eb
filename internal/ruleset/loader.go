package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/risk-signal-engine/internal/domain"
)

// catalogFile is the on-disk YAML shape of an authored catalog. Severity is
// carried as its canonical name so catalog files stay readable for the
// clinicians who review them.
type catalogFile struct {
	Version string `yaml:"version"`
	Rules   []struct {
		Kind       string   `yaml:"kind"`
		Severity   string   `yaml:"severity"`
		Confidence float64  `yaml:"confidence"`
		Patterns   []string `yaml:"patterns"`
	} `yaml:"rules"`
}

// LoadFile reads and compiles a YAML catalog. Any malformed entry rejects
// the whole file; a half-loaded catalog must never serve traffic.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing ruleset file %s: %w", path, err)
	}
	if file.Version == "" {
		return nil, fmt.Errorf("ruleset file %s: version is required", path)
	}

	rules := make([]domain.Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		severity, err := domain.ParseSeverity(entry.Severity)
		if err != nil {
			return nil, fmt.Errorf("ruleset file %s: rule %d: %w", path, i, err)
		}
		rules = append(rules, domain.Rule{
			Kind:       domain.SignalKind(entry.Kind),
			Severity:   severity,
			Confidence: entry.Confidence,
			Patterns:   entry.Patterns,
		})
	}

	return Compile(rules, file.Version)
}
