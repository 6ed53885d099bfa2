// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/httpmsg"
	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/metrics"
	"github.com/wangtaoking1/psionic/site"
	"github.com/wangtaoking1/psionic/websocket"
)

// connection outcomes, used as metric labels
const (
	outcomeServed      = "served"
	outcomeNotFound    = "not_found"
	outcomeBadRequest  = "bad_request"
	outcomeNotAllowed  = "method_not_allowed"
	outcomeError       = "error"
	outcomeReadError   = "read_error"
	outcomeUpgraded    = "upgraded"
	outcomeAcceptError = "accept_error"
)

const textPlain = "text/plain"

// conn is one accepted connection, owned by the worker serving it.
type conn struct {
	server *Server
	rwc    net.Conn
	logger log.Logger
}

// serve runs the connection through parse, then either a static response
// or the websocket upgrade. Static connections are closed on return.
func (c *conn) serve(ctx context.Context) {
	upgraded := false
	defer func() {
		if !upgraded {
			_ = c.rwc.Close()
		}
	}()

	if d := c.server.options.ReadTimeout; d > 0 {
		_ = c.rwc.SetReadDeadline(time.Now().Add(d))
	}
	req, err := httpmsg.ReadRequest(c.rwc)
	if err != nil {
		if httpmsg.IsParseError(err) {
			c.logger.Warnw("Failed to parse request", "error", err)
			c.respond(outcomeBadRequest, httpmsg.NewResponse(httpmsg.StatusBadRequest, textPlain, nil, []byte("Bad Request")))

			return
		}
		metrics.Connections.WithLabelValues(outcomeReadError).Inc()
		c.logger.Errorw("Failed to read request", "error", err)

		return
	}
	c.logger.Debugw("Request received", "verb", req.Header.Verb.String(), "route", req.Header.Route)

	if req.Header.Route == site.NotifyRoute {
		upgraded = c.upgrade(ctx, req)

		return
	}
	c.serveStatic(req)
}

func (c *conn) serveStatic(req *httpmsg.Request) {
	verb := req.Header.Verb
	if verb != httpmsg.VerbGet && verb != httpmsg.VerbHead {
		c.respond(outcomeNotAllowed, httpmsg.NewResponse(httpmsg.StatusMethodNotAllowed, textPlain,
			map[string]string{"Allow": "GET, HEAD"}, []byte("Method Not Allowed")))

		return
	}

	var (
		f   *site.File
		err error
	)
	if site.IsIndexRoute(req.Header.Route) {
		f, err = c.server.site.Index(c.host(req))
	} else {
		f, err = c.server.site.Lookup(req.Header.Route)
	}
	switch {
	case errors.Is(err, site.ErrNotFound):
		c.logger.Infow("File not found", "route", req.Header.Route)
		c.respond(outcomeNotFound, httpmsg.NewResponse(httpmsg.StatusNotFound, textPlain, nil, []byte("Not Found")))

		return
	case err != nil:
		c.logger.Errorw("Failed to read file", "route", req.Header.Route, "error", err)
		c.respond(outcomeError, httpmsg.NewResponse(httpmsg.StatusInternalError, textPlain, nil, []byte("Internal Error")))

		return
	}

	resp := httpmsg.NewResponse(httpmsg.StatusOK, f.ContentType, nil, f.Body)
	if verb == httpmsg.VerbHead {
		resp.Body = nil
	}
	c.respond(outcomeServed, resp)
}

// upgrade answers the handshake and turns the connection into a pusher for
// one hub subscription. It reports whether the connection was handed over.
func (c *conn) upgrade(ctx context.Context, req *httpmsg.Request) bool {
	if req.Header.Verb != httpmsg.VerbGet {
		c.respond(outcomeNotAllowed, httpmsg.NewResponse(httpmsg.StatusMethodNotAllowed, textPlain,
			map[string]string{"Allow": "GET"}, []byte("Method Not Allowed")))

		return false
	}

	key, ok := req.Header.Get("Sec-WebSocket-Key")
	if !ok || strings.TrimSpace(key) == "" {
		c.logger.Warnw("Failed to upgrade connection", "error", ErrMissingKey)
		c.respond(outcomeBadRequest, httpmsg.NewResponse(httpmsg.StatusBadRequest, textPlain, nil, []byte(ErrMissingKey.Error())))

		return false
	}

	resp := httpmsg.NewResponse(httpmsg.StatusSwitchingProtocols, textPlain, websocket.UpgradeHeaders(strings.TrimSpace(key)), nil)
	if _, err := resp.WriteTo(c.rwc); err != nil {
		metrics.Connections.WithLabelValues(outcomeError).Inc()
		c.logger.Warnw("Failed to write upgrade response", "error", errors.Wrap(err, "write response"))

		return false
	}
	// pushers only write
	_ = c.rwc.SetReadDeadline(time.Time{})
	metrics.Connections.WithLabelValues(outcomeUpgraded).Inc()
	c.logger.Infow("Update notification requested")

	// registered once for the lifetime of the connection
	sub := hub.NewSubscription()
	c.server.subscriber.Subscribe(sub)
	websocket.NewPeer(c.rwc, sub, c.logger.WithName("websocket")).Run(ctx)

	return true
}

func (c *conn) respond(outcome string, resp *httpmsg.Response) {
	metrics.Connections.WithLabelValues(outcome).Inc()
	if _, err := resp.WriteTo(c.rwc); err != nil {
		c.logger.Warnw("Failed to write response", "status", resp.Header.Status.Code(), "error", errors.Wrap(err, "write response"))

		return
	}
	c.logger.Debugw("Response sent", "status", resp.Header.Status.Code())
}

// host is the address the reload script connects back to.
func (c *conn) host(req *httpmsg.Request) string {
	if host, ok := req.Header.Get("Host"); ok && host != "" {
		return host
	}

	return c.rwc.LocalAddr().String()
}
