// Package alerts fans escalation notices out to in-process subscribers,
// typically websocket streams held open by professional dashboards.
package alerts

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/domain"
)

const subscriberBuffer = 16

// Hub is a non-blocking publish/subscribe fan-out for crisis notices.
// Publishing never waits: a subscriber that cannot keep up misses notices
// rather than delaying the escalation path.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan domain.CrisisNotice]struct{}
	log  *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subs: make(map[chan domain.CrisisNotice]struct{}),
		log:  logger,
	}
}

// Subscribe registers a listener. The returned cancel function must be
// called when the listener goes away; it closes the channel.
func (h *Hub) Subscribe() (<-chan domain.CrisisNotice, func()) {
	ch := make(chan domain.CrisisNotice, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a notice to every subscriber that has buffer room.
func (h *Hub) Publish(notice domain.CrisisNotice) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- notice:
		default:
			h.log.WithField("subject_id", notice.SubjectID).
				Warn("Alert subscriber too slow, notice skipped")
		}
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
