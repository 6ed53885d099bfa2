// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package shutdown runs exit callbacks when a trigger, such as a posix
// signal, fires.
package shutdown

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/log"
)

// DefaultTimeout bounds how long callbacks may run before the trigger's
// After step.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is reported to the error handler when callbacks overrun the
// timeout.
var ErrTimeout = errors.New("shutdown callbacks timed out")

// Callback is run when shutdown is triggered, with the trigger's name.
type Callback interface {
	OnShutdown(trigger string) error
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(trigger string) error

// OnShutdown calls f.
func (f CallbackFunc) OnShutdown(trigger string) error { return f(trigger) }

// ErrorHandler receives callback errors.
type ErrorHandler interface {
	OnError(err error)
}

// ErrorFunc adapts a function to ErrorHandler.
type ErrorFunc func(err error)

// OnError calls f.
func (f ErrorFunc) OnError(err error) { f(err) }

// Executor is handed to triggers; a trigger calls Execute when it fires.
type Executor interface {
	Execute(Trigger)
}

// ExecuteFunc adapts a function to Executor.
type ExecuteFunc func(Trigger)

// Execute calls f.
func (f ExecuteFunc) Execute(t Trigger) { f(t) }

// Trigger starts shutdown, e.g. on a signal.
type Trigger interface {
	GetName() string
	// Start begins listening and calls the executor when triggered.
	Start(Executor) error
	// After runs once the callbacks are done, typically to exit.
	After()
}

// Controller connects triggers to callbacks. Callbacks run at most once,
// concurrently, bounded by the timeout.
type Controller struct {
	triggers     []Trigger
	callbacks    []Callback
	errorHandler ErrorHandler
	timeout      time.Duration
	once         sync.Once
}

// New returns a controller for triggers.
func New(triggers ...Trigger) *Controller {
	return &Controller{triggers: triggers, timeout: DefaultTimeout}
}

// SetTimeout sets how long callbacks may run. Zero or less waits for ever.
func (c *Controller) SetTimeout(d time.Duration) { c.timeout = d }

// AddCallback registers cb. Call it before Start.
func (c *Controller) AddCallback(cb Callback) { c.callbacks = append(c.callbacks, cb) }

// SetErrorHandler sets the receiver of callback errors.
func (c *Controller) SetErrorHandler(h ErrorHandler) { c.errorHandler = h }

// Start starts every trigger.
func (c *Controller) Start() error {
	for _, t := range c.triggers {
		if err := t.Start(ExecuteFunc(c.execute)); err != nil {
			return errors.WithMessagef(err, "start shutdown trigger %s", t.GetName())
		}
	}

	return nil
}

func (c *Controller) execute(t Trigger) {
	c.once.Do(func() {
		log.Info("Shutdown triggered", "trigger", t.GetName(), "callbacks", len(c.callbacks))
		c.runCallbacks(t.GetName())
		t.After()
	})
}

func (c *Controller) runCallbacks(name string) {
	var wg sync.WaitGroup
	for _, cb := range c.callbacks {
		wg.Add(1)
		go func(cb Callback) {
			defer wg.Done()
			c.handleError(cb.OnShutdown(name))
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	if c.timeout <= 0 {
		<-done
		return
	}
	select {
	case <-done:
	case <-time.After(c.timeout):
		c.handleError(errors.Wrapf(ErrTimeout, "trigger %s", name))
	}
}

func (c *Controller) handleError(err error) {
	if err != nil && c.errorHandler != nil {
		c.errorHandler.OnError(err)
	}
}
