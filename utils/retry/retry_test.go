// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTimes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantRuns int
		wantErr  bool
	}{
		{name: "success", err: nil, wantRuns: 1},
		{name: "always failing", err: errors.New("boom"), wantRuns: 3, wantErr: true},
		{name: "permanent", err: errors.Wrap(ErrPermanent, "gone"), wantRuns: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs := 0
			err := Times(context.Background(), 3, time.Millisecond, func() error {
				runs++
				return tt.err
			})
			assert.Equal(t, tt.wantRuns, runs)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestTimes_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runs := 0
	err := Times(ctx, 5, time.Hour, func() error {
		runs++
		return errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runs)
}

func TestWithTimeout(t *testing.T) {
	runs := 0
	err := WithTimeout(context.Background(), time.Millisecond, time.Second, func() error {
		runs++
		if runs < 3 {
			return errors.WithMessage(ErrRetryable, "not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, runs)
}

func TestWithTimeout_Expires(t *testing.T) {
	err := WithTimeout(context.Background(), time.Millisecond, 20*time.Millisecond, func() error {
		return ErrRetryable
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestWithTimeout_StopsOnOtherError(t *testing.T) {
	boom := errors.New("boom")
	runs := 0
	err := WithTimeout(context.Background(), time.Millisecond, time.Second, func() error {
		runs++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, runs)
}
