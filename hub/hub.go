// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/metrics"
)

const (
	// DefaultPollInterval bounds how long a new subscription waits to be
	// picked up when no notifications arrive.
	DefaultPollInterval = time.Second

	registrationBufferSize = 64
)

// Option configures a Hub.
type Option func(*Hub)

// WithPollInterval sets how long the hub waits for a notification before
// checking for new subscriptions again.
func WithPollInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pollInterval = d
		}
	}
}

// WithLogger sets the logger of the hub.
func WithLogger(logger log.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// Hub broadcasts every received Notification to all live subscriptions.
type Hub struct {
	notifications <-chan Notification
	registrations chan *Subscription
	done          chan struct{}
	mu            sync.Mutex
	stopped       bool
	pollInterval  time.Duration
	logger        log.Logger

	// subscribers is owned by the Run goroutine.
	subscribers []*Subscription
	count       atomic.Int64
}

// New creates a hub consuming notifications. Call Run to start it.
func New(notifications <-chan Notification, opts ...Option) *Hub {
	h := &Hub{
		notifications: notifications,
		registrations: make(chan *Subscription, registrationBufferSize),
		done:          make(chan struct{}),
		pollInterval:  DefaultPollInterval,
	}
	for _, o := range opts {
		o(h)
	}
	if h.logger == nil {
		h.logger = log.WithName("message_hub")
	}

	return h
}

// Subscribe hands sub to the hub. It is added to the subscriber list by the
// hub goroutine. If the hub has stopped, sub is closed instead.
func (h *Hub) Subscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		sub.close()
		return
	}
	select {
	case h.registrations <- sub:
	case <-h.done:
		sub.close()
	}
}

// Subscribers returns the number of live subscriptions as of the last
// change made by the hub goroutine.
func (h *Hub) Subscribers() int {
	return int(h.count.Load())
}

// Run serves registrations and notifications until ctx is done or the
// notification channel is closed. All subscriptions are closed on return.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Infow("Message hub started", "poll_interval", h.pollInterval)
	defer h.stop()

	for {
		h.drainRegistrations()

		timer := time.NewTimer(h.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case n, ok := <-h.notifications:
			timer.Stop()
			if !ok {
				h.logger.Infow("Notification channel closed")
				return
			}
			// subscriptions registered during the wait see this notification too
			h.drainRegistrations()
			h.broadcast(n)
		case <-timer.C:
		}
	}
}

func (h *Hub) drainRegistrations() {
	for {
		select {
		case sub := <-h.registrations:
			h.subscribers = append(h.subscribers, sub)
			h.updateCount()
			h.logger.Infow("Subscription received", "subscribers", len(h.subscribers))
		default:
			return
		}
	}
}

// broadcast delivers n to every subscriber, then prunes the ones whose
// receiving side is gone. A subscriber with a full buffer misses n but is
// kept. Removal runs from the highest index down so earlier removals never
// shift the indices still to be removed.
func (h *Hub) broadcast(n Notification) {
	metrics.Notifications.WithLabelValues(n.Kind.String()).Inc()
	h.logger.Infow("Notification received", "notification", n.String(), "subscribers", len(h.subscribers))

	var dead []int
	for i, sub := range h.subscribers {
		switch sub.send(n) {
		case delivered:
			metrics.Deliveries.WithLabelValues("delivered").Inc()
		case dropped:
			metrics.Deliveries.WithLabelValues("dropped").Inc()
			h.logger.Warnw("Subscriber buffer full, notification dropped", "index", i)
		case gone:
			metrics.Deliveries.WithLabelValues("failed").Inc()
			h.logger.Warnw("Failure sending to subscriber, subscription to be dropped", "index", i)
			dead = append(dead, i)
		}
	}

	for i := len(dead) - 1; i >= 0; i-- {
		idx := dead[i]
		h.subscribers[idx].close()
		h.subscribers = append(h.subscribers[:idx], h.subscribers[idx+1:]...)
	}
	if len(dead) > 0 {
		h.updateCount()
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.subscribers)))
	metrics.Subscribers.Set(float64(len(h.subscribers)))
}

func (h *Hub) stop() {
	close(h.done)
	// no registration can be queued once stopped is set
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()

	h.drainRegistrations()
	for _, sub := range h.subscribers {
		sub.close()
	}
	h.subscribers = nil
	h.updateCount()
	h.logger.Infow("Message hub stopped")
}
