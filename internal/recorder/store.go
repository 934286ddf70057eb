// Package recorder persists risk events. The store is append-only: events
// are inserted exactly once and never updated or deleted by normal
// operation, so concurrent writes for the same subject need no coordination.
//
// The invariant that matters most here: no persisted field ever carries the
// text that triggered the event. Only the opaque pattern identifier and the
// catalog version are stored for audit.
package recorder

import (
	"context"
	"time"

	"github.com/risk-signal-engine/internal/domain"
)

// Store is the durable risk event storage contract.
type Store interface {
	// Insert appends one event. It must fail rather than overwrite.
	Insert(ctx context.Context, event *domain.RiskEvent) error

	// ListBySubject returns a subject's full history, oldest first.
	ListBySubject(ctx context.Context, subjectID string) ([]domain.RiskEvent, error)

	// ListBySubjectSince returns the subject's events created at or after
	// the given instant, oldest first.
	ListBySubjectSince(ctx context.Context, subjectID string, since time.Time) ([]domain.RiskEvent, error)

	// CountBySubject returns the subject's all-time event count.
	CountBySubject(ctx context.Context, subjectID string) (int64, error)

	// Close releases storage resources.
	Close() error
}
