// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package hub

import "sync"

// DefaultBufferSize is the number of notifications a subscription holds.
// Further notifications are dropped for it until the pusher catches up.
const DefaultBufferSize = 16

type sendResult int

const (
	delivered sendResult = iota
	// dropped means the buffer was full. The subscription stays.
	dropped
	// gone means the receiving side cancelled.
	gone
)

// Subscription is the delivery channel of one websocket connection.
// The hub is the only sender and the only one to close it.
type Subscription struct {
	ch   chan Notification
	done chan struct{}
	once sync.Once
}

// NewSubscription creates a subscription with DefaultBufferSize.
func NewSubscription() *Subscription {
	return NewSubscriptionSize(DefaultBufferSize)
}

// NewSubscriptionSize creates a subscription holding up to size notifications.
func NewSubscriptionSize(size int) *Subscription {
	if size < 1 {
		size = 1
	}

	return &Subscription{
		ch:   make(chan Notification, size),
		done: make(chan struct{}),
	}
}

// C returns the channel notifications arrive on. It is closed when the hub
// drops the subscription or stops.
func (s *Subscription) C() <-chan Notification {
	return s.ch
}

// Cancel marks the receiving side as gone. The next delivery fails and the
// hub prunes the subscription. Cancel is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() { close(s.done) })
}

// send delivers n without blocking.
func (s *Subscription) send(n Notification) sendResult {
	select {
	case <-s.done:
		return gone
	default:
	}

	select {
	case s.ch <- n:
		return delivered
	default:
		return dropped
	}
}

func (s *Subscription) close() {
	close(s.ch)
}
