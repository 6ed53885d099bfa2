// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package retry repeats an operation until it succeeds or gives up.
package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrRetryable marks an error that WithTimeout should retry.
	ErrRetryable = errors.New("retryable")
	// ErrPermanent marks an error that stops Times at once.
	ErrPermanent = errors.New("permanent")
	// ErrTimeout is returned when WithTimeout runs out of time.
	ErrTimeout = errors.New("retry timeout")
)

// Times calls f up to limit times, waiting interval between attempts. It
// returns the last error, or the first error wrapping ErrPermanent.
func Times(ctx context.Context, limit int, interval time.Duration, f func() error) error {
	var err error
	for i := 0; i < limit; i++ {
		if err = f(); err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) || i == limit-1 {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return err
}

// WithTimeout calls f every interval until it returns nil or an error that
// does not wrap ErrRetryable. A zero timeout never expires.
func WithTimeout(ctx context.Context, interval, timeout time.Duration, f func() error) error {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-expired:
			return ErrTimeout
		case <-tick.C:
			err := f()
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrRetryable) {
				return err
			}
		}
	}
}
