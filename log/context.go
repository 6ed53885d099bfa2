// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package log

import (
	"context"
)

type key int

const (
	logContextKey key = iota
)

// WithContext returns a copy of context in which a logger carrying the
// given key-values is set.
func WithContext(ctx context.Context, keysAndValues ...interface{}) context.Context {
	return FromContext(ctx).WithValues(keysAndValues...).WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the process logger.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(logContextKey).(Logger); ok {
			return logger
		}
	}

	return L()
}
