// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package server accepts connections and serves the site and the reload
// websocket over a hand-rolled HTTP/1.1 codec.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/metrics"
	"github.com/wangtaoking1/psionic/pool"
	"github.com/wangtaoking1/psionic/site"
)

const acceptRetryDelay = 50 * time.Millisecond

// Subscriber registers websocket subscriptions. *hub.Hub implements it.
type Subscriber interface {
	Subscribe(sub *hub.Subscription)
}

// Server is the dev server.
type Server struct {
	options    *Options
	site       *site.Site
	subscriber Subscriber
	pool       *pool.Pool
	logger     log.Logger

	mu       sync.Mutex
	listener net.Listener
	// accepted connections waiting for a worker
	queued map[net.Conn]struct{}
}

// New returns a server with its worker pool started. Call Listen and Serve,
// or Run, to accept connections.
func New(options *Options, st *site.Site, subscriber Subscriber) (*Server, error) {
	logger := log.WithName("server")

	p, err := pool.New(options.Workers, pool.WithLogger(log.WithName("pool")))
	if err != nil {
		return nil, err
	}

	return &Server{
		options:    options,
		site:       st,
		subscriber: subscriber,
		pool:       p,
		logger:     logger,
		queued:     make(map[net.Conn]struct{}),
	}, nil
}

// Listen binds the listen address. Failures are returned as *BindError.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", s.options.Address())
	if err != nil {
		return &BindError{Address: s.options.Address(), Err: err}
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.logger.Infof("Start to listening on: %s", l.Addr().String())

	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

// Close closes the listener. Serve returns once it notices.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	return s.listener.Close()
}

// Pool returns the worker pool serving connections.
func (s *Server) Pool() *pool.Pool {
	return s.pool
}

// Serve accepts connections until ctx is done and hands each one to the
// worker pool. Accept errors are logged and do not stop the loop.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return ErrNotListening
	}

	stop := context.AfterFunc(ctx, func() {
		_ = l.Close()
	})
	defer stop()
	defer s.closeQueued()
	defer s.pool.Release()

	for {
		rwc, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Infof("Server on %s stopped", l.Addr().String())

				return nil
			}
			metrics.Connections.WithLabelValues(outcomeAcceptError).Inc()
			s.logger.Errorw("Failed to accept connection", "error", err)
			time.Sleep(acceptRetryDelay)

			continue
		}

		c := s.newConn(rwc)
		s.enqueue(rwc)
		err = s.pool.Submit(func() {
			if !s.dequeue(rwc) {
				return
			}
			if ctx.Err() != nil {
				_ = rwc.Close()
				return
			}
			c.serve(ctx)
		})
		if err != nil {
			c.logger.Errorw("Failed to submit connection", "error", err)
			s.dequeue(rwc)
			_ = rwc.Close()
		}
	}
}

func (s *Server) enqueue(rwc net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queued[rwc] = struct{}{}
}

// dequeue reports whether rwc was still queued, i.e. not yet closed by
// closeQueued.
func (s *Server) dequeue(rwc net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.queued[rwc]
	delete(s.queued, rwc)

	return ok
}

// closeQueued closes the connections no worker picked up before the pool
// was released.
func (s *Server) closeQueued() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for rwc := range s.queued {
		_ = rwc.Close()
	}
	if n := len(s.queued); n > 0 {
		s.logger.Infow("Closed queued connections", "count", n)
	}
	s.queued = make(map[net.Conn]struct{})
}

// Run listens if needed and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if s.Addr() == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	return s.Serve(ctx)
}

func (s *Server) newConn(rwc net.Conn) *conn {
	return &conn{
		server: s,
		rwc:    rwc,
		logger: s.logger.WithValues("conn_id", uuid.New().String(), "remote", rwc.RemoteAddr().String()),
	}
}
