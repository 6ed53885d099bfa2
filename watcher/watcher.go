// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package watcher turns filesystem events under a directory into hub
// notifications.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/utils/retry"
)

const (
	addRetryLimit    = 3
	addRetryInterval = 20 * time.Millisecond
)

type pending struct {
	n     hub.Notification
	gen   uint64
	timer *time.Timer
}

type flushReq struct {
	path string
	gen  uint64
}

// Watcher emits one notification per changed path once the path has been
// quiet for the debounce period.
type Watcher struct {
	base    string
	options *Options
	out     chan<- hub.Notification
	logger  log.Logger

	fsw     *fsnotify.Watcher
	flushCh chan flushReq
	done    chan struct{}

	// owned by the Run goroutine
	pending    map[string]*pending
	gen        uint64
	lastRename string
	renamedAt  time.Time
}

// New watches base and sends notifications to out. Call Run to start
// processing events.
func New(base string, out chan<- hub.Notification, options *Options) (*Watcher, error) {
	if options == nil {
		options = NewOptions()
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %q", base)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}

	w := &Watcher{
		base:    abs,
		options: options,
		out:     out,
		logger:  log.WithName("watcher"),
		fsw:     fsw,
		flushCh: make(chan flushReq, 16),
		done:    make(chan struct{}),
		pending: make(map[string]*pending),
	}
	if err := w.watchTree(abs); err != nil {
		_ = fsw.Close()

		return nil, err
	}

	return w, nil
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	return w.fsw.WatchList()
}

// Run processes events until ctx is done or the underlying watcher is
// closed. Errors from the OS backend are logged, never returned.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Infow("File watcher started", "base_path", w.base, "recursive", w.options.Recursive,
		"debounce", w.options.Debounce)
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorw("Watcher error", "error", err)
		case req := <-w.flushCh:
			if !w.flush(ctx, req) {
				return nil
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := event.Name
	switch {
	case event.Has(fsnotify.Create):
		if w.options.Recursive && isDir(name) {
			if err := w.watchTree(name); err != nil {
				w.logger.Warnw("Failed to watch new directory", "path", name, "error", err)
			}
		}
		if old, ok := w.pairRename(); ok {
			w.schedule(name, hub.Renamed(old, name))

			return
		}
		w.schedule(name, hub.Created(name))
	case event.Has(fsnotify.Write):
		// a pending create already covers the write
		if p, ok := w.pending[name]; ok && p.n.Kind == hub.KindCreated {
			w.schedule(name, p.n)

			return
		}
		w.schedule(name, hub.Updated(name))
	case event.Has(fsnotify.Remove):
		w.schedule(name, hub.Removed(name))
	case event.Has(fsnotify.Rename):
		w.lastRename = name
		w.renamedAt = time.Now()
		w.schedule(name, hub.Removed(name))
	default:
		// chmod only
	}
}

// pairRename returns the path of a rename seen within the debounce period,
// dropping its pending removal.
func (w *Watcher) pairRename() (string, bool) {
	old := w.lastRename
	if old == "" || time.Since(w.renamedAt) > w.options.Debounce {
		return "", false
	}
	w.lastRename = ""

	if p, ok := w.pending[old]; ok && p.n.Kind == hub.KindRemoved {
		p.timer.Stop()
		delete(w.pending, old)
	}

	return old, true
}

func (w *Watcher) schedule(path string, n hub.Notification) {
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}

	w.gen++
	req := flushReq{path: path, gen: w.gen}
	w.pending[path] = &pending{
		n:   n,
		gen: w.gen,
		timer: time.AfterFunc(w.options.Debounce, func() {
			select {
			case w.flushCh <- req:
			case <-w.done:
			}
		}),
	}
}

// flush emits the pending notification of req.path. It reports false if
// ctx ended while sending.
func (w *Watcher) flush(ctx context.Context, req flushReq) bool {
	p, ok := w.pending[req.path]
	if !ok || p.gen != req.gen {
		return true
	}
	delete(w.pending, req.path)

	w.logger.Debugw("Change detected", "notification", p.n.String())
	select {
	case w.out <- p.n:
		return true
	case <-ctx.Done():
		return false
	}
}

// watchTree adds dir, and its subdirectories when recursive.
func (w *Watcher) watchTree(dir string) error {
	if !w.options.Recursive {
		return w.add(dir)
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// vanished while walking
			if errors.Is(err, fs.ErrNotExist) && path != dir {
				return nil
			}

			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.base && isHidden(d.Name()) {
			return filepath.SkipDir
		}

		return w.add(path)
	})
}

func (w *Watcher) add(dir string) error {
	err := retry.Times(context.Background(), addRetryLimit, addRetryInterval, func() error {
		err := w.fsw.Add(dir)
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrap(retry.ErrPermanent, err.Error())
		}

		return err
	})
	if err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	w.logger.Debugw("Directory watched", "path", dir)

	return nil
}

func (w *Watcher) stop() {
	close(w.done)
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = nil
	if err := w.fsw.Close(); err != nil {
		w.logger.Warnw("Failed to close watcher", "error", err)
	}
	w.logger.Infow("File watcher stopped")
}

func isDir(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.IsDir()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
