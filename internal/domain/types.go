// Package domain contains the core business entities for risk signal
// detection and escalation: severity tiers, clinical signal kinds, detection
// results and the durable, content-free risk event record.
package domain

import (
	"encoding/json"
	"fmt"
)

// Severity is the ordered urgency tier of a risk signal.
// The order is total and is used both for tie-breaking and for threshold
// checks such as "CRITICAL triggers the crisis flow".
type Severity int

const (
	SeverityLow Severity = iota
	SeverityModerate
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "LOW",
	SeverityModerate: "MODERATE",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

// IsValid reports whether the severity is one of the four defined tiers.
// Only valid severities may enter the recording pipeline.
func (s Severity) IsValid() bool {
	_, ok := severityNames[s]
	return ok
}

// String returns the canonical upper-case name of the severity.
// Required for audit trails and for the persisted representation.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// AtLeast reports whether s is at or above the given tier.
func (s Severity) AtLeast(min Severity) bool {
	return s >= min
}

// ParseSeverity converts a stored or transported severity name back into
// its ordered form.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSeverity, name)
}

// MarshalJSON encodes the severity as its canonical name so external
// consumers never depend on the internal ordering values.
func (s Severity) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeverity, int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a canonical severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// LogFields returns structured logging fields for audit trails.
// No field derived from user text is ever included.
func (s Severity) LogFields() map[string]any {
	return map[string]any{
		"severity":      s.String(),
		"severity_rank": int(s),
		"is_valid":      s.IsValid(),
		"crisis_tier":   s == SeverityCritical,
		"high_critical": s.AtLeast(SeverityHigh),
	}
}

// SignalKind is the clinical category of a detected concern. The set is
// closed; a ruleset binds each kind to exactly one severity.
type SignalKind string

const (
	SignalSuicidalIdeation SignalKind = "SUICIDAL_IDEATION"
	SignalSelfHarm         SignalKind = "SELF_HARM"
	SignalHopelessness     SignalKind = "HOPELESSNESS"
	SignalPanic            SignalKind = "PANIC"
	SignalAgitation        SignalKind = "AGITATION"
)

// IsValid reports whether the signal kind belongs to the closed set.
func (k SignalKind) IsValid() bool {
	switch k {
	case SignalSuicidalIdeation, SignalSelfHarm, SignalHopelessness, SignalPanic, SignalAgitation:
		return true
	default:
		return false
	}
}

// String returns the string representation of the signal kind.
func (k SignalKind) String() string {
	return string(k)
}

// Source identifies how a risk event originated.
type Source string

const (
	// SourceAutomaticDetection marks events produced by the text scanner.
	SourceAutomaticDetection Source = "AUTOMATIC_DETECTION"
	// SourceManualSelfReport marks events produced by the user's explicit
	// "I am in crisis" control.
	SourceManualSelfReport Source = "MANUAL_SELF_REPORT"
)

// IsValid reports whether the source is one of the two defined origins.
func (s Source) IsValid() bool {
	switch s {
	case SourceAutomaticDetection, SourceManualSelfReport:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source.
func (s Source) String() string {
	return string(s)
}
