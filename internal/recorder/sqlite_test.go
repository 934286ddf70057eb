package recorder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risk-signal-engine/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func automaticEvent(subjectID string, severity domain.Severity, createdAt time.Time) *domain.RiskEvent {
	kind := domain.SignalSelfHarm
	confidence := 0.8
	return &domain.RiskEvent{
		ID:         uuid.New(),
		SubjectID:  subjectID,
		Source:     domain.SourceAutomaticDetection,
		Severity:   severity,
		Kind:       &kind,
		Confidence: &confidence,
		Metadata: domain.EventMetadata{
			ClassifierVersion: "test-v1",
			PatternID:         "SELF_HARM/0",
		},
		CreatedAt: createdAt,
	}
}

func manualEvent(subjectID string, createdAt time.Time) *domain.RiskEvent {
	return &domain.RiskEvent{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Source:    domain.SourceManualSelfReport,
		Severity:  domain.SeverityHigh,
		CreatedAt: createdAt,
	}
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "events.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
}

func TestSQLiteStore_InsertAndList(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	first := automaticEvent("subject-1", domain.SeverityHigh, now.Add(-time.Hour))
	second := manualEvent("subject-1", now)
	other := automaticEvent("subject-2", domain.SeverityModerate, now)

	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Insert(ctx, second))
	require.NoError(t, store.Insert(ctx, other))

	events, err := store.ListBySubject(ctx, "subject-1")
	require.NoError(t, err)
	require.Len(t, events, 2, "other subjects' events must not leak in")

	// Oldest first.
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)

	got := events[0]
	assert.Equal(t, domain.SourceAutomaticDetection, got.Source)
	assert.Equal(t, domain.SeverityHigh, got.Severity)
	require.NotNil(t, got.Kind)
	assert.Equal(t, domain.SignalSelfHarm, *got.Kind)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.8, *got.Confidence, 1e-9)
	assert.Equal(t, "test-v1", got.Metadata.ClassifierVersion)
	assert.Equal(t, "SELF_HARM/0", got.Metadata.PatternID)
	assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
}

func TestSQLiteStore_ManualEventNullColumns(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, manualEvent("subject-1", time.Now().UTC())))

	events, err := store.ListBySubject(ctx, "subject-1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Nil(t, events[0].Kind)
	assert.Nil(t, events[0].Confidence)
	assert.Equal(t, domain.SourceManualSelfReport, events[0].Source)
}

func TestSQLiteStore_ListBySubjectSince(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	old := automaticEvent("subject-1", domain.SeverityModerate, now.AddDate(0, 0, -10))
	recent := automaticEvent("subject-1", domain.SeverityHigh, now.AddDate(0, 0, -2))
	boundary := automaticEvent("subject-1", domain.SeverityLow, now.AddDate(0, 0, -7))

	require.NoError(t, store.Insert(ctx, old))
	require.NoError(t, store.Insert(ctx, recent))
	require.NoError(t, store.Insert(ctx, boundary))

	since := now.AddDate(0, 0, -7)
	events, err := store.ListBySubjectSince(ctx, "subject-1", since)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, boundary.ID, events[0].ID, "the boundary instant is included")
	assert.Equal(t, recent.ID, events[1].ID)
}

func TestSQLiteStore_CountBySubject(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	count, err := store.CountBySubject(ctx, "subject-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, manualEvent("subject-1", time.Now().UTC())))
	}

	count, err = store.CountBySubject(ctx, "subject-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
