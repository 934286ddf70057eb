// Package notify publishes content-free crisis notices to external sinks.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/domain"
)

const (
	publishTimeout  = 2 * time.Second
	noticeQueueSize = 64
)

// RedisPublisher forwards crisis notices to a Redis pub/sub channel so
// collaborating services (paging, on-call routing) can react without
// polling. Publishing is detached from the caller: notices are handed to a
// worker and the network round-trip happens off the escalation path, so a
// partitioned or hung Redis never delays the crisis response. Delivery is
// best-effort: a full queue or a publish failure is logged, never surfaced.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *logrus.Logger
	queue   chan domain.CrisisNotice
	done    chan struct{}
}

// NewRedisPublisher connects to the given Redis URL and starts the publish
// worker.
func NewRedisPublisher(url, channel string, logger *logrus.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	p := &RedisPublisher{
		client:  redis.NewClient(opts),
		channel: channel,
		log:     logger,
		queue:   make(chan domain.CrisisNotice, noticeQueueSize),
		done:    make(chan struct{}),
	}

	go p.run()
	return p, nil
}

// Publish hands one notice to the worker without waiting for delivery.
func (p *RedisPublisher) Publish(notice domain.CrisisNotice) {
	select {
	case p.queue <- notice:
	default:
		p.log.WithField("subject_id", notice.SubjectID).
			Warn("Crisis notice queue full, notice skipped")
	}
}

// run drains the queue until Close.
func (p *RedisPublisher) run() {
	defer close(p.done)

	for notice := range p.queue {
		p.send(notice)
	}
}

// send performs one publish. The payload carries identifiers and tiers only.
func (p *RedisPublisher) send(notice domain.CrisisNotice) {
	payload, err := json.Marshal(notice)
	if err != nil {
		p.log.WithError(err).Error("Failed to encode crisis notice")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.WithError(err).WithField("channel", p.channel).
			Warn("Failed to publish crisis notice")
	}
}

// Close stops the worker after queued notices are sent and releases the
// Redis connection.
func (p *RedisPublisher) Close() error {
	close(p.queue)
	<-p.done
	return p.client.Close()
}
