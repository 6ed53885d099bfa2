// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package log is a zap-backed structured logger. Components take a named
// child of the process logger, e.g. log.WithName("message_hub"), and add
// per-connection values with WithValues.
package log

import (
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var std atomic.Pointer[zapLogger]

func init() {
	std.Store(newZapLogger(NewOptions()))
}

// Init replaces the process logger. Loggers derived before the call keep
// writing to the old one.
func Init(opts *Options) {
	std.Store(newZapLogger(opts))
}

// New builds a logger independent of the process logger.
func New(opts *Options) Logger {
	return newZapLogger(opts)
}

func newZapLogger(opts *Options) *zapLogger {
	if opts == nil {
		opts = NewOptions()
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	format := strings.ToLower(opts.Format)

	cfg := &zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		DisableCaller:     opts.DisableCaller,
		DisableStacktrace: opts.DisableStacktrace,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         format,
		EncoderConfig:    encoderConfig(format, opts.EnableColor),
		OutputPaths:      opts.OutputPaths,
		ErrorOutputPaths: opts.ErrorOutputPaths,
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.PanicLevel), zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	if opts.Name != "" {
		l = l.Named(opts.Name)
	}
	zap.RedirectStdLog(l)

	return wrap(l)
}

func encoderConfig(format string, color bool) zapcore.EncoderConfig {
	encodeLevel := zapcore.CapitalLevelEncoder
	// colors only make sense on a console
	if format == consoleFormat && color {
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration: millisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func millisDurationEncoder(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendFloat64(float64(d) / float64(time.Millisecond))
}

// L returns the process logger.
func L() Logger { return std.Load() }

// WithName returns a child of the process logger named after a component.
func WithName(name string) Logger { return std.Load().WithName(name) }

// WithValues returns a child of the process logger carrying keysAndValues.
func WithValues(keysAndValues ...interface{}) Logger { return std.Load().WithValues(keysAndValues...) }

// Flush flushes buffered entries of the process logger. Call it before exit.
func Flush() { std.Load().Flush() }

// Debug logs msg with key-value pairs at debug level.
func Debug(msg string, keysAndValues ...interface{}) { std.Load().sugar.Debugw(msg, keysAndValues...) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, v ...interface{}) { std.Load().sugar.Debugf(format, v...) }

// Info logs msg with key-value pairs at info level.
func Info(msg string, keysAndValues ...interface{}) { std.Load().sugar.Infow(msg, keysAndValues...) }

// Infof logs a formatted message at info level.
func Infof(format string, v ...interface{}) { std.Load().sugar.Infof(format, v...) }

// Warn logs msg with key-value pairs at warn level.
func Warn(msg string, keysAndValues ...interface{}) { std.Load().sugar.Warnw(msg, keysAndValues...) }

// Error logs msg with key-value pairs at error level.
func Error(msg string, keysAndValues ...interface{}) { std.Load().sugar.Errorw(msg, keysAndValues...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, v ...interface{}) { std.Load().sugar.Errorf(format, v...) }
