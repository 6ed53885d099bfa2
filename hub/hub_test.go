// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangtaoking1/psionic/utils/retry"
)

const testPoll = 10 * time.Millisecond

func startHub(t *testing.T) (*Hub, chan<- Notification) {
	t.Helper()

	notifications := make(chan Notification)
	h := New(notifications, WithPollInterval(testPoll))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	return h, notifications
}

func waitSubscribers(t *testing.T, h *Hub, n int) {
	t.Helper()

	err := retry.WithTimeout(context.Background(), time.Millisecond, time.Second, func() error {
		if h.Subscribers() != n {
			return retry.ErrRetryable
		}
		return nil
	})
	require.NoError(t, err, "want %d subscribers, got %d", n, h.Subscribers())
}

func receive(t *testing.T, sub *Subscription) Notification {
	t.Helper()

	select {
	case n, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return n
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notification")
	}

	return Notification{}
}

func TestHub_BroadcastToAll(t *testing.T) {
	h, notifications := startHub(t)

	subs := make([]*Subscription, 5)
	for i := range subs {
		subs[i] = NewSubscription()
		h.Subscribe(subs[i])
	}
	waitSubscribers(t, h, len(subs))

	notifications <- Updated("/site/index.html")

	for _, sub := range subs {
		assert.Equal(t, Updated("/site/index.html"), receive(t, sub))
	}
	assert.Equal(t, 5, h.Subscribers())
}

func TestHub_PrunesCancelledSubscriber(t *testing.T) {
	h, notifications := startHub(t)

	subs := make([]*Subscription, 4)
	for i := range subs {
		subs[i] = NewSubscription()
		h.Subscribe(subs[i])
	}
	waitSubscribers(t, h, 4)

	subs[2].Cancel()
	notifications <- Created("/site/a.css")

	for i, sub := range subs {
		if i == 2 {
			continue
		}
		assert.Equal(t, Created("/site/a.css"), receive(t, sub))
	}
	waitSubscribers(t, h, 3)

	_, ok := <-subs[2].C()
	assert.False(t, ok, "pruned subscription must be closed")
}

func TestHub_OrderPerSubscriber(t *testing.T) {
	h, notifications := startHub(t)

	sub := NewSubscription()
	h.Subscribe(sub)
	waitSubscribers(t, h, 1)

	sent := []Notification{
		Created("/a"),
		Updated("/a"),
		Renamed("/a", "/b"),
		Removed("/b"),
	}
	for _, n := range sent {
		notifications <- n
	}
	for _, want := range sent {
		assert.Equal(t, want, receive(t, sub))
	}
}

func TestHub_SubscriberRegisteredDuringWait(t *testing.T) {
	notifications := make(chan Notification)
	h := New(notifications, WithPollInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	sub := NewSubscription()
	h.Subscribe(sub)
	notifications <- Updated("/x")

	assert.Equal(t, Updated("/x"), receive(t, sub))
}

func TestHub_StopClosesSubscriptions(t *testing.T) {
	notifications := make(chan Notification)
	h := New(notifications, WithPollInterval(testPoll))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	sub := NewSubscription()
	h.Subscribe(sub)
	waitSubscribers(t, h, 1)

	cancel()
	<-stopped

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())

	late := NewSubscription()
	h.Subscribe(late)
	_, ok = <-late.C()
	assert.False(t, ok)
}

func TestHub_ClosedNotificationChannel(t *testing.T) {
	notifications := make(chan Notification)
	h := New(notifications, WithPollInterval(testPoll))
	stopped := make(chan struct{})
	go func() {
		h.Run(context.Background())
		close(stopped)
	}()

	close(notifications)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestBroadcast_Property(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for k := 0; k < n; k++ {
			h := New(nil)
			subs := make([]*Subscription, n)
			for i := range subs {
				subs[i] = NewSubscription()
				h.subscribers = append(h.subscribers, subs[i])
			}

			h.broadcast(Updated("/f"))
			assert.Len(t, h.subscribers, n)
			for _, sub := range subs {
				assert.Len(t, sub.C(), 1)
			}

			subs[k].Cancel()
			h.broadcast(Removed("/f"))
			assert.Len(t, h.subscribers, n-1)
			assert.NotContains(t, h.subscribers, subs[k])
			for i, sub := range subs {
				if i != k {
					assert.Len(t, sub.C(), 2)
				}
			}
		}
	}
}

func TestBroadcast_RemovesSeveral(t *testing.T) {
	h := New(nil)
	subs := make([]*Subscription, 4)
	for i := range subs {
		subs[i] = NewSubscription()
		h.subscribers = append(h.subscribers, subs[i])
	}
	subs[1].Cancel()
	subs[3].Cancel()

	h.broadcast(Updated("/f"))

	assert.Equal(t, []*Subscription{subs[0], subs[2]}, h.subscribers)
	assert.Equal(t, 2, h.Subscribers())
}

func TestBroadcast_FullBufferDropsNotification(t *testing.T) {
	h := New(nil)
	slow := NewSubscriptionSize(1)
	fast := NewSubscriptionSize(4)
	h.subscribers = append(h.subscribers, slow, fast)

	h.broadcast(Updated("/1"))
	h.broadcast(Updated("/2"))

	require.Len(t, h.subscribers, 2)
	assert.Equal(t, Updated("/1"), <-slow.C())
	assert.Equal(t, Updated("/1"), <-fast.C())
	assert.Equal(t, Updated("/2"), <-fast.C())

	// caught up, so it receives again
	h.broadcast(Updated("/3"))
	assert.Equal(t, Updated("/3"), <-slow.C())
	assert.Equal(t, Updated("/3"), <-fast.C())
}

func TestBroadcast_CancelledIsPruned(t *testing.T) {
	h := New(nil)
	sub := NewSubscriptionSize(1)
	h.subscribers = append(h.subscribers, sub)
	sub.Cancel()

	h.broadcast(Updated("/1"))

	assert.Empty(t, h.subscribers)
	_, ok := <-sub.C()
	assert.False(t, ok)
}

func TestNotification_Message(t *testing.T) {
	tests := []struct {
		n    Notification
		want string
	}{
		{n: Created("/a"), want: "File created"},
		{n: Updated("/a"), want: "File updated"},
		{n: Removed("/a"), want: "File removed"},
		{n: Renamed("/a", "/b"), want: "File renamed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.n.Message())
		assert.Len(t, tt.n.Message(), 12)
	}
	assert.Equal(t, "renamed /a -> /b", Renamed("/a", "/b").String())
	assert.Equal(t, "updated /a", Updated("/a").String())
}

func TestOptions_Validate(t *testing.T) {
	assert.Empty(t, NewOptions().Validate())
	assert.Len(t, (&Options{}).Validate(), 1)
}
