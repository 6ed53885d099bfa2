// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wangtaoking1/psionic/app"
	"github.com/wangtaoking1/psionic/diag"
	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/server"
	"github.com/wangtaoking1/psionic/shutdown"
	"github.com/wangtaoking1/psionic/shutdown/trigger/posixsignal"
	"github.com/wangtaoking1/psionic/site"
	"github.com/wangtaoking1/psionic/watcher"
)

func run(opts *Options) app.RunFunc {
	return func(ctx context.Context) error {
		log.Init(opts.Log)
		defer log.Flush()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		gs := shutdown.New(posixsignal.New())
		gs.SetErrorHandler(shutdown.ErrorFunc(func(err error) {
			log.Errorf("Shutdown error: %v", err)
		}))
		gs.AddCallback(shutdown.CallbackFunc(func(trigger string) error {
			cancel()
			log.Flush()

			return nil
		}))
		if err := gs.Start(); err != nil {
			return err
		}

		return serve(ctx, opts)
	}
}

// serve starts the watcher, the hub, the dev server and, if enabled, the
// diagnostics server, and blocks until ctx is done or one of them fails.
func serve(ctx context.Context, opts *Options) error {
	st, err := site.New(opts.Site)
	if err != nil {
		return err
	}

	notifications := make(chan hub.Notification)
	h := hub.New(notifications, hub.WithPollInterval(opts.Hub.PollInterval))

	srv, err := server.New(opts.Server, st, h)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		srv.Pool().Release()

		return err
	}

	w, err := watcher.New(st.BasePath(), notifications, opts.Watcher)
	if err != nil {
		srv.Pool().Release()
		_ = srv.Close()

		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		h.Run(ctx)

		return nil
	})
	eg.Go(func() error {
		return w.Run(ctx)
	})
	eg.Go(func() error {
		return srv.Serve(ctx)
	})
	if opts.Diag.Enabled {
		d := diag.New(opts.Diag, func() diag.Status {
			p := srv.Pool()

			return diag.Status{
				Subscribers:  h.Subscribers(),
				PoolRunning:  p.Running(),
				PoolPending:  p.Pending(),
				PoolCapacity: p.Cap(),
				BasePath:     st.BasePath(),
			}
		})
		eg.Go(func() error {
			return d.Run(ctx)
		})
	}

	log.Infof("Serving %s on http://%s", st.BasePath(), srv.Addr().String())

	return eg.Wait()
}
