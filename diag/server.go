// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package diag serves health, status, metrics and profiling endpoints of
// the dev server on a separate port.
package diag

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/wangtaoking1/psionic/diag/middleware"
	"github.com/wangtaoking1/psionic/log"
)

const shutdownTimeout = 10 * time.Second

// Status is the runtime state reported on /status.
type Status struct {
	Subscribers  int    `json:"subscribers"`
	PoolRunning  int    `json:"pool_running"`
	PoolPending  int    `json:"pool_pending"`
	PoolCapacity int    `json:"pool_capacity"`
	BasePath     string `json:"base_path"`
}

// StatusFunc returns the current status.
type StatusFunc func() Status

// Server is the diagnostics http server.
type Server struct {
	*gin.Engine

	options *Options
	status  StatusFunc
	logger  log.Logger

	httpServer *http.Server
}

// New returns a new diagnostics server.
func New(options *Options, status StatusFunc) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		Engine:  gin.New(),
		options: options,
		status:  status,
		logger:  log.WithName("diag"),
	}

	s.setupGlobalMiddlewares()
	s.setupGlobalRouters()

	return s
}

func (s *Server) setupGlobalMiddlewares() {
	installed := make([]string, 0, len(s.options.Middlewares))
	for _, m := range s.options.Middlewares {
		mw := middleware.Get(m)
		if mw == nil {
			s.logger.Warnw("Unknown middleware skipped", "middleware", m)

			continue
		}
		installed = append(installed, m)
		s.Use(mw)
	}
	if len(installed) != 0 {
		s.logger.Infof("Installed middlewares: %s", strings.Join(installed, ","))
	}
}

func (s *Server) setupGlobalRouters() {
	s.addHealthzRouter()
	s.addStatusRouter()

	if s.options.Metrics {
		prometheus := ginprometheus.NewPrometheus("gin")
		prometheus.Use(s.Engine)
	}

	if s.options.Profiling {
		pprof.Register(s.Engine)
	}
}

func (s *Server) addStatusRouter() {
	s.GET(statusPath, func(c *gin.Context) {
		if s.status == nil {
			c.JSON(http.StatusOK, Status{})

			return
		}
		c.JSON(http.StatusOK, s.status())
	})
}

// Run serves until ctx is done.
//
//nolint:gosec
func (s *Server) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	s.httpServer = &http.Server{
		Addr:    s.options.Address(),
		Handler: s,
	}
	eg.Go(func() error {
		s.logger.Infow("Diagnostics server listening", "address", s.options.Address())

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Infow("Diagnostics server stopped", "address", s.options.Address())

		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.Close()

		return nil
	})
	eg.Go(func() error {
		return s.healthCheck(ctx)
	})

	return eg.Wait()
}

// Close shuts the server down, giving in-flight requests up to
// shutdownTimeout.
func (s *Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnf("Failed to shutdown diagnostics server: %s", err.Error())
		}
	}
}
