// Package aggregator computes per-subject, time-windowed rollups of risk
// events. It reads the full history and recomputes on every query:
// professional safety decisions depend on current data, so freshness is
// explicitly preferred over caching.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/recorder"
)

const (
	// DefaultWindowDays is used when the caller does not specify a window.
	DefaultWindowDays = 30
	maxWindowDays     = 365
	rollupDays        = 7
)

// Aggregator derives aggregate windows from the event store.
type Aggregator struct {
	store recorder.Store
	log   *logrus.Logger
	now   func() time.Time
}

// New creates an aggregator over the given store.
func New(store recorder.Store, logger *logrus.Logger) *Aggregator {
	return &Aggregator{store: store, log: logger, now: time.Now}
}

// Summarize computes the subject's aggregate window: all-time totals by
// source and severity, the trailing-7-day rollup and a contiguous per-day
// series over the requested window. Days with zero events still appear with
// zero counts; a day's absence from the event set must not be conflated
// with missing data.
//
// A storage failure surfaces as ErrStorageUnavailable so the caller can
// distinguish an outage from an empty history.
func (a *Aggregator) Summarize(ctx context.Context, subjectID string, windowDays int) (*domain.AggregateWindow, error) {
	if windowDays == 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays < 1 || windowDays > maxWindowDays {
		return nil, fmt.Errorf("%w: %d days", domain.ErrInvalidWindow, windowDays)
	}

	now := a.now().UTC()
	today := now.Truncate(24 * time.Hour)
	windowStart := today.AddDate(0, 0, -(windowDays - 1))
	rollupStart := today.AddDate(0, 0, -(rollupDays - 1))

	all, err := a.store.ListBySubject(ctx, subjectID)
	if err != nil {
		a.log.WithError(err).WithField("subject_id", subjectID).Error("Failed to read risk event history")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	windowed, err := a.store.ListBySubjectSince(ctx, subjectID, windowStart)
	if err != nil {
		a.log.WithError(err).WithField("subject_id", subjectID).Error("Failed to read windowed risk events")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	window := &domain.AggregateWindow{
		SubjectID:   subjectID,
		WindowDays:  windowDays,
		GeneratedAt: now,
		Totals:      newTotals(),
		DailySeries: make([]domain.DailyCount, windowDays),
	}

	for i := range all {
		event := &all[i]
		window.Totals.Add(event)
		window.Totals.BySeverity[event.Severity.String()]++
		if !event.CreatedAt.Before(rollupStart) {
			window.LastSevenDays.Add(event)
		}
	}

	// Zero-filled contiguous series, oldest day first.
	buckets := make(map[string]*domain.DailyCount, windowDays)
	for i := 0; i < windowDays; i++ {
		day := windowStart.AddDate(0, 0, i)
		window.DailySeries[i] = domain.DailyCount{Date: day.Format(time.DateOnly)}
		buckets[window.DailySeries[i].Date] = &window.DailySeries[i]
	}
	for i := range windowed {
		event := &windowed[i]
		if bucket, ok := buckets[event.CreatedAt.UTC().Format(time.DateOnly)]; ok {
			bucket.Add(event)
		}
	}

	return window, nil
}

// newTotals pre-fills the severity breakdown so an empty history still
// renders every tier explicitly at zero.
func newTotals() domain.Totals {
	return domain.Totals{
		BySeverity: map[string]int{
			domain.SeverityLow.String():      0,
			domain.SeverityModerate.String(): 0,
			domain.SeverityHigh.String():     0,
			domain.SeverityCritical.String(): 0,
		},
	}
}
