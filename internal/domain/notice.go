package domain

import "time"

// CrisisNotice is the content-free escalation signal fanned out to alert
// sinks when the crisis flow is triggered. It carries identifiers and
// tiers only, never text.
type CrisisNotice struct {
	SubjectID string    `json:"subject_id"`
	Source    Source    `json:"source"`
	Severity  Severity  `json:"severity"`
	At        time.Time `json:"at"`
}
