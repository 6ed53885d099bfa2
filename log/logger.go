// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package log

import (
	"context"

	"go.uber.org/zap"
)

// Logger represents the ability to log messages at every level.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Debugf(format string, v ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Infof(format string, v ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Warnf(format string, v ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Errorf(format string, v ...interface{})

	// WithValues adds some key-value pairs of context to a logger.
	WithValues(keysAndValues ...interface{}) Logger

	// WithName adds a new element to the logger's name.
	// Successive calls with WithName continue to append
	// suffixes to the logger's name.
	WithName(name string) Logger

	// WithContext returns a copy of context in which the log value is set.
	WithContext(ctx context.Context) context.Context

	// Flush calls the underlying Core's Sync method, flushing any buffered
	// log entries. Errors from Sync are dropped.
	Flush()
}

type zapLogger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

func wrap(l *zap.Logger) *zapLogger {
	return &zapLogger{zapLogger: l, sugar: l.Sugar()}
}

func (l *zapLogger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

func (l *zapLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *zapLogger) Infof(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *zapLogger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *zapLogger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

func (l *zapLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *zapLogger) Errorf(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *zapLogger) WithValues(keysAndValues ...interface{}) Logger {
	return wrap(l.sugar.With(keysAndValues...).Desugar())
}

func (l *zapLogger) WithName(name string) Logger {
	return wrap(l.zapLogger.Named(name))
}

func (l *zapLogger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, logContextKey, l)
}

func (l *zapLogger) Flush() {
	_ = l.zapLogger.Sync()
}
