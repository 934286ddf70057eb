package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rule is a single authored entry of the signal catalog: a clinical signal
// kind bound to one severity, a static author-assigned confidence weight and
// an ordered list of patterns. Confidence is surfaced downstream for audit,
// never recomputed.
type Rule struct {
	Kind       SignalKind `json:"kind"`
	Severity   Severity   `json:"severity"`
	Confidence float64    `json:"confidence"`
	Patterns   []string   `json:"patterns"`
}

// Validate checks the authored rule data. Malformed rules are a
// configuration error caught at ruleset load time, never at request time.
func (r *Rule) Validate() error {
	if !r.Kind.IsValid() {
		return fmt.Errorf("rule validation: %w: %q", ErrInvalidSignalKind, r.Kind)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("rule validation: %w", ErrInvalidSeverity)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("rule validation: confidence %.3f outside [0,1] for %s", r.Confidence, r.Kind)
	}
	if len(r.Patterns) == 0 {
		return fmt.Errorf("rule validation: no patterns for %s", r.Kind)
	}
	return nil
}

// DetectionResult is the single highest-priority match produced by scanning
// one message. PatternID is an opaque reference into the ruleset, not the
// matched substring; it is the only match artifact allowed to leave the
// detector.
type DetectionResult struct {
	Severity   Severity   `json:"severity"`
	Kind       SignalKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	PatternID  string     `json:"pattern_id"`
}

// EventMetadata is the audit payload persisted with a risk event. It
// identifies which rule fired and under which catalog version, without ever
// reconstructing user text.
type EventMetadata struct {
	ClassifierVersion string `json:"classifier_version,omitempty"`
	PatternID         string `json:"pattern_id,omitempty"`
}

// RiskEvent is the durable, content-free record of a detected or
// self-reported risk occurrence. Events are append-only: created exactly
// once, read many times, never updated or deleted by normal operation.
type RiskEvent struct {
	ID         uuid.UUID     `json:"id"`
	SubjectID  string        `json:"subject_id"`
	Source     Source        `json:"source"`
	Severity   Severity      `json:"severity"`
	Kind       *SignalKind   `json:"kind,omitempty"`       // nil for manual self-reports
	Confidence *float64      `json:"confidence,omitempty"` // nil for manual self-reports
	Metadata   EventMetadata `json:"metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Validate ensures the event meets the recording invariants before it is
// handed to storage.
func (e *RiskEvent) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("risk event validation: id is required")
	}
	if e.SubjectID == "" {
		return fmt.Errorf("risk event validation: subject id is required")
	}
	if !e.Source.IsValid() {
		return fmt.Errorf("risk event validation: %w: %q", ErrInvalidSource, e.Source)
	}
	if !e.Severity.IsValid() {
		return fmt.Errorf("risk event validation: %w", ErrInvalidSeverity)
	}
	if e.Kind != nil && !e.Kind.IsValid() {
		return fmt.Errorf("risk event validation: %w: %q", ErrInvalidSignalKind, *e.Kind)
	}
	if e.Confidence != nil && (*e.Confidence < 0 || *e.Confidence > 1) {
		return fmt.Errorf("risk event validation: confidence %.3f outside [0,1]", *e.Confidence)
	}
	return nil
}

// LogFields returns structured logging fields for the event audit trail.
func (e *RiskEvent) LogFields() map[string]any {
	fields := map[string]any{
		"event_id":   e.ID.String(),
		"subject_id": e.SubjectID,
		"source":     e.Source.String(),
		"severity":   e.Severity.String(),
	}
	if e.Kind != nil {
		fields["signal_kind"] = e.Kind.String()
	}
	if e.Metadata.PatternID != "" {
		fields["pattern_id"] = e.Metadata.PatternID
	}
	return fields
}

// TierCounts is one bucket of event counts split by source, with the
// derived high/critical tier professional summaries collapse the two most
// urgent severities into.
type TierCounts struct {
	Total        int `json:"total"`
	Automatic    int `json:"automatic"`
	Manual       int `json:"manual"`
	HighCritical int `json:"high_critical"`
}

// Add folds one event into the counters.
func (c *TierCounts) Add(e *RiskEvent) {
	c.Total++
	switch e.Source {
	case SourceAutomaticDetection:
		c.Automatic++
	case SourceManualSelfReport:
		c.Manual++
	}
	if e.Severity.AtLeast(SeverityHigh) {
		c.HighCritical++
	}
}

// Totals carries the all-time counters of a subject's history, including a
// per-severity breakdown.
type Totals struct {
	TierCounts
	BySeverity map[string]int `json:"by_severity"`
}

// DailyCount is one entry of the contiguous per-day series. Days with zero
// events still appear with zero counts so charts render full timelines.
type DailyCount struct {
	Date string `json:"date"` // UTC calendar day, YYYY-MM-DD
	TierCounts
}

// AggregateWindow is the derived, per-subject rollup of risk events. It is
// recomputed from storage on every query and never cached.
type AggregateWindow struct {
	SubjectID     string       `json:"subject_id"`
	WindowDays    int          `json:"window_days"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Totals        Totals       `json:"totals"`
	LastSevenDays TierCounts   `json:"last_seven_days"`
	DailySeries   []DailyCount `json:"daily_series"`
}
