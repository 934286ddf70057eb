package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/risk-signal-engine/internal/domain"
)

// SQLiteStore implements Store on an embedded database for single-node
// deployments and tests.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (and if needed creates) the database file and schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema creates the append-only event table and its window-scan index.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS risk_events (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		source TEXT NOT NULL,
		severity TEXT NOT NULL,
		signal_kind TEXT,
		confidence REAL,
		classifier_version TEXT NOT NULL DEFAULT '',
		pattern_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_risk_events_subject_created
		ON risk_events(subject_id, created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent scans a row into a RiskEvent.
func scanEvent(s scanner) (*domain.RiskEvent, error) {
	var (
		event      domain.RiskEvent
		id         string
		source     string
		severity   string
		kind       sql.NullString
		confidence sql.NullFloat64
		createdAt  time.Time
	)

	err := s.Scan(
		&id, &event.SubjectID, &source, &severity, &kind, &confidence,
		&event.Metadata.ClassifierVersion, &event.Metadata.PatternID, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing event id %q: %w", id, err)
	}
	event.ID = parsedID

	event.Source = domain.Source(source)
	sev, err := domain.ParseSeverity(severity)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", id, err)
	}
	event.Severity = sev

	if kind.Valid {
		k := domain.SignalKind(kind.String)
		event.Kind = &k
	}
	if confidence.Valid {
		c := confidence.Float64
		event.Confidence = &c
	}
	event.CreatedAt = createdAt.UTC()

	return &event, nil
}

const sqliteEventColumns = `
	id, subject_id, source, severity, signal_kind, confidence,
	classifier_version, pattern_id, created_at`

// Insert appends one event.
func (s *SQLiteStore) Insert(ctx context.Context, event *domain.RiskEvent) error {
	var kind *string
	if event.Kind != nil {
		k := string(*event.Kind)
		kind = &k
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_events (
			id, subject_id, source, severity, signal_kind, confidence,
			classifier_version, pattern_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID.String(),
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
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// ListBySubject returns the subject's full history, oldest first.
func (s *SQLiteStore) ListBySubject(ctx context.Context, subjectID string) ([]domain.RiskEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+sqliteEventColumns+`
		FROM risk_events
		WHERE subject_id = ?
		ORDER BY created_at ASC
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListBySubjectSince returns events created at or after the given instant.
func (s *SQLiteStore) ListBySubjectSince(ctx context.Context, subjectID string, since time.Time) ([]domain.RiskEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+sqliteEventColumns+`
		FROM risk_events
		WHERE subject_id = ? AND created_at >= ?
		ORDER BY created_at ASC
	`, subjectID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// CountBySubject returns the subject's all-time event count.
func (s *SQLiteStore) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM risk_events WHERE subject_id = ?", subjectID,
	).Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func collectEvents(rows *sql.Rows) ([]domain.RiskEvent, error) {
	var events []domain.RiskEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}
