// Package presenter shapes aggregate windows into the externally consumed,
// content-free summaries.
package presenter

import (
	"time"

	"github.com/risk-signal-engine/internal/domain"
)

// TransparencyStatement accompanies every summary. It is a hard-coded,
// non-optional field: removing it is a policy violation, not a UI choice.
const TransparencyStatement = "This summary contains only event counts and trends. " +
	"Message content is never stored in, nor exposed through, this view."

// ProfessionalSummary is the supervising-professional view of a subject's
// aggregate window.
type ProfessionalSummary struct {
	SubjectID             string              `json:"subject_id"`
	WindowDays            int                 `json:"window_days"`
	GeneratedAt           time.Time           `json:"generated_at"`
	Totals                domain.Totals       `json:"totals"`
	LastSevenDays         domain.TierCounts   `json:"last_seven_days"`
	DailySeries           []domain.DailyCount `json:"daily_series"`
	TransparencyStatement string              `json:"transparency_statement"`
}

// Professional shapes the professional-facing summary.
func Professional(window *domain.AggregateWindow) *ProfessionalSummary {
	return &ProfessionalSummary{
		SubjectID:             window.SubjectID,
		WindowDays:            window.WindowDays,
		GeneratedAt:           window.GeneratedAt,
		Totals:                window.Totals,
		LastSevenDays:         window.LastSevenDays,
		DailySeries:           window.DailySeries,
		TransparencyStatement: TransparencyStatement,
	}
}

// DailyTotal is one patient-facing series entry: date and count only.
type DailyTotal struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
}

// PatientOverview is the reduced, patient-facing read of the same
// aggregate: counts only, no source split, no cross-subject data.
type PatientOverview struct {
	WindowDays            int          `json:"window_days"`
	GeneratedAt           time.Time    `json:"generated_at"`
	Total                 int          `json:"total"`
	HighCritical          int          `json:"high_critical"`
	DailyTotals           []DailyTotal `json:"daily_totals"`
	TransparencyStatement string       `json:"transparency_statement"`
}

// Patient shapes the patient-facing overview.
func Patient(window *domain.AggregateWindow) *PatientOverview {
	daily := make([]DailyTotal, len(window.DailySeries))
	for i, day := range window.DailySeries {
		daily[i] = DailyTotal{Date: day.Date, Total: day.Total}
	}

	return &PatientOverview{
		WindowDays:            window.WindowDays,
		GeneratedAt:           window.GeneratedAt,
		Total:                 window.Totals.Total,
		HighCritical:          window.Totals.HighCritical,
		DailyTotals:           daily,
		TransparencyStatement: TransparencyStatement,
	}
}
