// Package escalation decides whether a detection result or a manual
// self-report interrupts the conversational flow, and dispatches the
// side effects: event recording and crisis alert fan-out.
package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/detector"
	"github.com/risk-signal-engine/internal/domain"
)

// Recorder accepts events without blocking the caller. Recording is
// fire-and-forget here: a write failure is the recorder's problem, never
// the response path's.
type Recorder interface {
	Enqueue(event *domain.RiskEvent)
}

// Alerter receives content-free crisis notices. Implementations must not
// block the caller.
type Alerter interface {
	Publish(notice domain.CrisisNotice)
}

// Coordinator owns the escalation rule:
//
//   - automatic detections trigger the crisis flow only at CRITICAL;
//   - manual self-reports always trigger, with no severity gate.
//
// HIGH automatic detections are recorded for clinical follow-up but do not
// hijack the user's session: heuristic detection at HIGH carries materially
// higher false-positive risk than an explicit user action.
type Coordinator struct {
	detector *detector.Detector
	recorder Recorder
	alerters []Alerter
	log      *logrus.Logger
	now      func() time.Time
}

// New creates a coordinator. Alerters are optional.
func New(det *detector.Detector, rec Recorder, logger *logrus.Logger, alerters ...Alerter) *Coordinator {
	return &Coordinator{
		detector: det,
		recorder: rec,
		alerters: alerters,
		log:      logger,
		now:      time.Now,
	}
}

// HandleMessage scans one conversational turn. It returns whether the
// caller must redirect the user to the crisis-support flow. Detection and
// escalation never fail outward.
func (c *Coordinator) HandleMessage(ctx context.Context, subjectID, text string) bool {
	result := c.detector.Detect(text)
	if result == nil {
		return false
	}

	confidence := result.Confidence
	kind := result.Kind
	event := &domain.RiskEvent{
		ID:         uuid.New(),
		SubjectID:  subjectID,
		Source:     domain.SourceAutomaticDetection,
		Severity:   result.Severity,
		Kind:       &kind,
		Confidence: &confidence,
		Metadata: domain.EventMetadata{
			ClassifierVersion: c.detector.Version(),
			PatternID:         result.PatternID,
		},
		CreatedAt: c.now().UTC(),
	}
	c.recorder.Enqueue(event)

	trigger := result.Severity == domain.SeverityCritical
	if trigger {
		c.fanOut(event)
	}

	c.log.WithFields(event.LogFields()).WithField("trigger_crisis", trigger).
		Info("Risk signal detected")

	return trigger
}

// HandleSelfReport records an explicit "I am in crisis" action. The user
// affirmatively signaled crisis, so it always escalates.
func (c *Coordinator) HandleSelfReport(ctx context.Context, subjectID string) bool {
	event := &domain.RiskEvent{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Source:    domain.SourceManualSelfReport,
		Severity:  domain.SeverityHigh,
		CreatedAt: c.now().UTC(),
	}
	c.recorder.Enqueue(event)
	c.fanOut(event)

	c.log.WithFields(event.LogFields()).Info("Manual self-report received")

	return true
}

func (c *Coordinator) fanOut(event *domain.RiskEvent) {
	notice := domain.CrisisNotice{
		SubjectID: event.SubjectID,
		Source:    event.Source,
		Severity:  event.Severity,
		At:        event.CreatedAt,
	}
	for _, a := range c.alerters {
		a.Publish(notice)
	}
}
