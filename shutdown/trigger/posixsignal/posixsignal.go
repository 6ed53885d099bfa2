// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package posixsignal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/shutdown"
)

// Name defines shutdown manager name.
const Name = "PosixSignalTrigger"

// Option configures the trigger.
type Option func(*trigger)

// WithExitFunc replaces os.Exit, called with code 0 after the callbacks.
func WithExitFunc(exit func(int)) Option {
	return func(t *trigger) {
		t.exit = exit
	}
}

// WithSignals sets the signals listened for.
func WithSignals(sig ...os.Signal) Option {
	return func(t *trigger) {
		t.signals = sig
	}
}

// trigger implements the shutdown Trigger interface. Initialize with New.
type trigger struct {
	signals []os.Signal
	exit    func(int)
}

// GetName returns name of this trigger.
func (t *trigger) GetName() string {
	return Name
}

// Start starts listening for posix signals.
func (t *trigger) Start(executor shutdown.Executor) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, t.signals...)

	go func() {
		// Block until a signal is received.
		sig := <-c
		signal.Stop(c)
		log.Info("Signal received", "signal", sig.String())

		// Trigger the shutdown execution.
		executor.Execute(t)
	}()

	return nil
}

// After exits the process once the callbacks are done.
func (t *trigger) After() {
	log.Flush()
	t.exit(0)
}

// New initializes the PosixSignalTrigger. Without WithSignals it listens
// for SIGINT and SIGTERM.
func New(opts ...Option) shutdown.Trigger {
	t := &trigger{
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		exit:    os.Exit,
	}
	for _, o := range opts {
		o(t)
	}

	return t
}
