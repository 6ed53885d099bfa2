// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		p, err := New(size)
		assert.Error(t, err)
		assert.Nil(t, p)
	}
}

func TestPool_RunsAllJobs(t *testing.T) {
	p, err := New(4)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 4, p.Cap())

	var wg sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(100), count.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 3
	p, err := New(size)
	require.NoError(t, err)

	release := make(chan struct{})
	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		}))
	}

	require.Eventually(t, func() bool { return p.Running() == size }, time.Second, 5*time.Millisecond)
	// blocked jobs occupy every worker, one more is held by the feeder
	require.Eventually(t, func() bool { return p.Pending() == 10-size-1 }, time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(size), peak.Load())
	require.Eventually(t, func() bool { return p.Running() == 0 }, time.Second, 5*time.Millisecond)
	p.Release()
}

func TestPool_FIFO(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	gate := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-gate }))

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	close(gate)
	wg.Wait()

	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, order)
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)

	gate := make(chan struct{})
	start := time.Now()
	for i := 0; i < 1000; i++ {
		require.NoError(t, p.Submit(func() { <-gate }))
	}
	assert.Less(t, time.Since(start), time.Second)

	close(gate)
	p.Release()
}

func TestPool_PanicKeepsCapacity(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func() { panic("boom") }))
	}

	done := make(chan struct{})
	require.NoError(t, p.Submit(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker lost after panic")
	}
	assert.Equal(t, 1, p.Cap())
}

func TestPool_Release(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)

	p.Release()
	p.Release()
	assert.ErrorIs(t, p.Submit(func() {}), ErrClosed)
	assert.Equal(t, 0, p.Pending())
}
