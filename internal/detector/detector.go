// Package detector scans user-authored text against the signal catalog. It
// is a heuristic surface scanner, not an NLP classifier: it reports the
// single highest-priority concern present, or none.
package detector

import (
	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/normalize"
	"github.com/risk-signal-engine/internal/ruleset"
)

// Detector applies the current catalog to normalized text. It holds no
// mutable state of its own and is safe for concurrent use.
type Detector struct {
	provider *ruleset.Provider
}

// New creates a detector bound to a catalog provider.
func New(provider *ruleset.Provider) *Detector {
	return &Detector{provider: provider}
}

// Detect normalizes the text once and walks the catalog in priority order,
// returning on the first pattern hit. A caller is never handed more than one
// result for a message: ruleset order is the tie-break, and authors place
// the more urgent signal kinds earlier. Nil means no rule matched.
func (d *Detector) Detect(text string) *domain.DetectionResult {
	normText := normalize.Text(text)
	if normText == "" {
		return nil
	}

	for _, rule := range d.provider.Current().Rules() {
		if patternID, ok := rule.FirstMatch(normText); ok {
			return &domain.DetectionResult{
				Severity:   rule.Severity,
				Kind:       rule.Kind,
				Confidence: rule.Confidence,
				PatternID:  patternID,
			}
		}
	}
	return nil
}

// Version reports the catalog version in effect, recorded in event metadata
// so a fired rule can be audited later without reconstructing user text.
func (d *Detector) Version() string {
	return d.provider.Current().Version()
}
