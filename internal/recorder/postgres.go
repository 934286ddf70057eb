package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/domain"
)

// PostgresStore persists risk events in the append-only risk_events table,
// indexed on (subject_id, created_at) for windowed scans.
type PostgresStore struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPostgresStore creates a Postgres-backed event store.
func NewPostgresStore(db *pgxpool.Pool, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: logger}
}

// Insert appends one event.
func (s *PostgresStore) Insert(ctx context.Context, event *domain.RiskEvent) error {
	query := `
		INSERT INTO risk_events (
			id, subject_id, source, severity, signal_kind, confidence,
			classifier_version, pattern_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	var kind *string
	if event.Kind != nil {
		k := string(*event.Kind)
		kind = &k
	}

	_, err := s.db.Exec(ctx, query,
		event.ID,
		event.SubjectID,
		event.Source.String(),
		event.Severity.String(),
		kind,
		event.Confidence,
		event.Metadata.ClassifierVersion,
		event.Metadata.PatternID,
		event.CreatedAt.UTC(),
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"subject_id": event.SubjectID,
			"error":      err,
		}).Error("Failed to insert risk event")
		return fmt.Errorf("inserting risk event: %w", err)
	}

	return nil
}

const postgresEventColumns = `
	id, subject_id, source, severity, signal_kind, confidence,
	classifier_version, pattern_id, created_at`

// ListBySubject returns the subject's full history, oldest first.
func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]domain.RiskEvent, error) {
	query := `
		SELECT` + postgresEventColumns + `
		FROM risk_events
		WHERE subject_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("listing risk events: %w", err)
	}
	defer rows.Close()

	return scanPostgresEvents(rows)
}

// ListBySubjectSince returns events created at or after the given instant.
func (s *PostgresStore) ListBySubjectSince(ctx context.Context, subjectID string, since time.Time) ([]domain.RiskEvent, error) {
	query := `
		SELECT` + postgresEventColumns + `
		FROM risk_events
		WHERE subject_id = $1 AND created_at >= $2
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, subjectID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing risk events since %s: %w", since.UTC().Format(time.RFC3339), err)
	}
	defer rows.Close()

	return scanPostgresEvents(rows)
}

// CountBySubject returns the subject's all-time event count.
func (s *PostgresStore) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM risk_events WHERE subject_id = $1", subjectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting risk events: %w", err)
	}
	return count, nil
}

// Close is a no-op; the pool is owned by the caller that built it.
func (s *PostgresStore) Close() error {
	return nil
}

func scanPostgresEvents(rows pgx.Rows) ([]domain.RiskEvent, error) {
	var events []domain.RiskEvent

	for rows.Next() {
		var (
			event      domain.RiskEvent
			id         uuid.UUID
			source     string
			severity   string
			kind       *string
			confidence *float64
			createdAt  time.Time
		)

		err := rows.Scan(
			&id, &event.SubjectID, &source, &severity, &kind, &confidence,
			&event.Metadata.ClassifierVersion, &event.Metadata.PatternID, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning risk event: %w", err)
		}

		event.ID = id
		event.Source = domain.Source(source)
		sev, err := domain.ParseSeverity(severity)
		if err != nil {
			return nil, fmt.Errorf("scanning risk event %s: %w", id, err)
		}
		event.Severity = sev
		if kind != nil {
			k := domain.SignalKind(*kind)
			event.Kind = &k
		}
		event.Confidence = confidence
		event.CreatedAt = createdAt.UTC()

		events = append(events, event)
	}

	return events, rows.Err()
}
