package recorder

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/risk-signal-engine/internal/domain"
)

const (
	defaultQueueSize   = 256
	storeWriteTimeout  = 5 * time.Second
	breakerOpenTimeout = 30 * time.Second
)

// Recorder accepts events from the response path and writes them to storage
// from a detached worker. Enqueueing never blocks and write failures never
// propagate: failing to log a risk event must never look like a failure to
// respond to a user in distress. A circuit breaker around the store keeps a
// storage outage from turning into a retry storm.
type Recorder struct {
	store   Store
	log     *logrus.Logger
	queue   chan *domain.RiskEvent
	breaker *gobreaker.CircuitBreaker
	done    chan struct{}
}

// New creates a recorder and starts its worker. queueSize <= 0 selects the
// default buffer.
func New(store Store, logger *logrus.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	r := &Recorder{
		store: store,
		log:   logger,
		queue: make(chan *domain.RiskEvent, queueSize),
		done:  make(chan struct{}),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "risk-event-store",
			Timeout: breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Risk event store breaker state changed")
			},
		}),
	}

	go r.run()
	return r
}

// Enqueue hands an event to the worker without waiting for the write. An
// invalid event or a full queue is logged and dropped.
func (r *Recorder) Enqueue(event *domain.RiskEvent) {
	if err := event.Validate(); err != nil {
		r.log.WithError(err).Error("Dropping invalid risk event")
		return
	}

	select {
	case r.queue <- event:
	default:
		r.log.WithFields(event.LogFields()).Error("Risk event queue full, dropping event")
	}
}

// run drains the queue until Close.
func (r *Recorder) run() {
	defer close(r.done)

	for event := range r.queue {
		r.write(event)
	}
}

// write performs one guarded store insert.
func (r *Recorder) write(event *domain.RiskEvent) {
	_, err := r.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
		defer cancel()
		return nil, r.store.Insert(ctx, event)
	})
	if err != nil {
		r.log.WithError(err).WithFields(event.LogFields()).Error("Failed to record risk event")
		return
	}

	r.log.WithFields(event.LogFields()).Info("Risk event recorded")
}

// Close stops accepting events and waits for queued writes to finish.
func (r *Recorder) Close() {
	close(r.queue)
	<-r.done
}
