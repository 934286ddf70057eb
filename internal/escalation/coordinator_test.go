package escalation

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risk-signal-engine/internal/detector"
	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/ruleset"
)

type capturingRecorder struct {
	events []*domain.RiskEvent
}

func (r *capturingRecorder) Enqueue(event *domain.RiskEvent) {
	r.events = append(r.events, event)
}

type capturingAlerter struct {
	notices []domain.CrisisNotice
}

func (a *capturingAlerter) Publish(notice domain.CrisisNotice) {
	a.notices = append(a.notices, notice)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestCoordinator(t *testing.T) (*Coordinator, *capturingRecorder, *capturingAlerter) {
	t.Helper()
	rec := &capturingRecorder{}
	alerter := &capturingAlerter{}
	det := detector.New(ruleset.NewProvider(ruleset.Default()))
	coord := New(det, rec, quietLogger(), alerter)
	coord.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return coord, rec, alerter
}

func TestHandleMessageCriticalTriggers(t *testing.T) {
	coord, rec, alerter := newTestCoordinator(t)

	trigger := coord.HandleMessage(context.Background(), "subject-1", "eu quero morrer")
	assert.True(t, trigger)

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "subject-1", event.SubjectID)
	assert.Equal(t, domain.SourceAutomaticDetection, event.Source)
	assert.Equal(t, domain.SeverityCritical, event.Severity)
	require.NotNil(t, event.Kind)
	assert.Equal(t, domain.SignalSuicidalIdeation, *event.Kind)
	require.NotNil(t, event.Confidence)
	assert.Equal(t, ruleset.DefaultVersion, event.Metadata.ClassifierVersion)
	assert.NotEmpty(t, event.Metadata.PatternID)

	require.Len(t, alerter.notices, 1)
	assert.Equal(t, "subject-1", alerter.notices[0].SubjectID)
	assert.Equal(t, domain.SeverityCritical, alerter.notices[0].Severity)
}

func TestHandleMessageHighRecordsWithoutTrigger(t *testing.T) {
	coord, rec, alerter := newTestCoordinator(t)

	trigger := coord.HandleMessage(context.Background(), "subject-1", "pensei em me cortar")
	assert.False(t, trigger, "HIGH automatic detections are recorded, not escalated")

	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.SeverityHigh, rec.events[0].Severity)
	assert.Empty(t, alerter.notices)
}

func TestHandleMessageModerateRecordsWithoutTrigger(t *testing.T) {
	coord, rec, alerter := newTestCoordinator(t)

	trigger := coord.HandleMessage(context.Background(), "subject-1", "estou muito nervoso")
	assert.False(t, trigger)
	assert.Len(t, rec.events, 1)
	assert.Empty(t, alerter.notices)
}

func TestHandleMessageNoSignal(t *testing.T) {
	coord, rec, alerter := newTestCoordinator(t)

	trigger := coord.HandleMessage(context.Background(), "subject-1", "hoje foi um bom dia")
	assert.False(t, trigger)
	assert.Empty(t, rec.events, "clean messages leave no record at all")
	assert.Empty(t, alerter.notices)
}

func TestHandleSelfReportAlwaysTriggers(t *testing.T) {
	coord, rec, alerter := newTestCoordinator(t)

	trigger := coord.HandleSelfReport(context.Background(), "subject-9")
	assert.True(t, trigger)

	require.Len(t, rec.events, 1)
	event := rec.events[0]
	assert.Equal(t, domain.SourceManualSelfReport, event.Source)
	assert.Equal(t, domain.SeverityHigh, event.Severity)
	assert.Nil(t, event.Kind, "self-reports carry no signal kind")
	assert.Nil(t, event.Confidence, "self-reports carry no confidence")

	require.Len(t, alerter.notices, 1)
	assert.Equal(t, domain.SourceManualSelfReport, alerter.notices[0].Source)
}

func TestRecordedEventCarriesNoMessageContent(t *testing.T) {
	coord, rec, _ := newTestCoordinator(t)

	message := "meu segredo: eu quero morrer amanha de manha"
	coord.HandleMessage(context.Background(), "subject-1", message)
	require.Len(t, rec.events, 1)
	event := rec.events[0]

	// Every persisted string field must be free of message text. The pattern
	// identifier points into the catalog; it never echoes the input.
	for _, field := range []string{
		event.SubjectID,
		event.Source.String(),
		event.Severity.String(),
		event.Metadata.ClassifierVersion,
		event.Metadata.PatternID,
	} {
		assert.NotContains(t, strings.ToLower(field), "segredo")
		assert.NotContains(t, strings.ToLower(field), "amanha")
	}
}

func TestFanOutReachesAllAlerters(t *testing.T) {
	rec := &capturingRecorder{}
	first := &capturingAlerter{}
	second := &capturingAlerter{}
	det := detector.New(ruleset.NewProvider(ruleset.Default()))
	coord := New(det, rec, quietLogger(), first, second)

	coord.HandleSelfReport(context.Background(), "subject-1")
	assert.Len(t, first.notices, 1)
	assert.Len(t, second.notices, 1)
}
