// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangtaoking1/psionic/httpmsg"
	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/site"
	"github.com/wangtaoking1/psionic/utils/retry"
)

const indexDoc = "<html><body><h1>psionic</h1></body></html>"

type testEnv struct {
	server        *Server
	hub           *hub.Hub
	notifications chan hub.Notification
	addr          string
	cancel        context.CancelFunc
}

func newTestEnv(t *testing.T, customize ...func(*Options)) *testEnv {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0o644))
	st, err := site.New(&site.Options{BasePath: dir, Index: "index.html"})
	require.NoError(t, err)

	notifications := make(chan hub.Notification)
	h := hub.New(notifications, hub.WithPollInterval(10*time.Millisecond))

	opts := &Options{BindAddress: "127.0.0.1", BindPort: 0, Workers: 4, ReadTimeout: 5 * time.Second}
	for _, f := range customize {
		f(opts)
	}
	s, err := New(opts, st, h)
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	serveDone := make(chan error, 1)
	go func() {
		h.Run(ctx)
		close(hubDone)
	}()
	go func() { serveDone <- s.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-hubDone
		assert.NoError(t, <-serveDone)
	})

	return &testEnv{
		server:        s,
		hub:           h,
		notifications: notifications,
		addr:          s.Addr().String(),
		cancel:        cancel,
	}
}

func (e *testEnv) dial(t *testing.T) net.Conn {
	t.Helper()

	c, err := net.Dial("tcp", e.addr)
	require.NoError(t, err)
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func (e *testEnv) roundTrip(t *testing.T, raw string) *httpmsg.Response {
	t.Helper()

	c := e.dial(t)
	_, err := io.WriteString(c, raw)
	require.NoError(t, err)

	resp, err := httpmsg.ReadResponse(c)
	require.NoError(t, err)

	return resp
}

func (e *testEnv) waitSubscribers(t *testing.T, n int) {
	t.Helper()

	err := retry.WithTimeout(context.Background(), 5*time.Millisecond, 2*time.Second, func() error {
		if e.hub.Subscribers() != n {
			return retry.ErrRetryable
		}
		return nil
	})
	require.NoError(t, err)
}

func request(verb, route string, headers ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\nHost: localhost\r\n", verb, route)
	for _, h := range headers {
		b.WriteString(h + "\r\n")
	}
	b.WriteString("\r\n")

	return b.String()
}

func header(t *testing.T, resp *httpmsg.Response, key string) string {
	t.Helper()

	v, ok := resp.Header.Get(key)
	require.True(t, ok, "missing header %s", key)

	return v
}

func TestServer_StaticFile(t *testing.T) {
	env := newTestEnv(t)

	resp := env.roundTrip(t, request("GET", "/style.css"))
	assert.Equal(t, httpmsg.StatusOK, resp.Header.Status)
	assert.Equal(t, "text/css", header(t, resp, "Content-Type"))
	assert.Equal(t, "Psionic 0.0.1", header(t, resp, "Server"))
	assert.Equal(t, "Closed", header(t, resp, "Connection"))
	assert.Equal(t, "body{}", string(resp.Body))
}

func TestServer_Index(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []string{"/", "/index", "/index.html"} {
		resp := env.roundTrip(t, request("GET", route))
		assert.Equal(t, httpmsg.StatusOK, resp.Header.Status, route)
		assert.Equal(t, "text/html", header(t, resp, "Content-Type"))
		assert.Equal(t,
			"<html><body><h1>psionic</h1>"+site.Script("localhost")+"</body></html>",
			string(resp.Body))
	}
}

func TestServer_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.roundTrip(t, request("GET", "/missing.js"))
	assert.Equal(t, httpmsg.StatusNotFound, resp.Header.Status)
	assert.Equal(t, "text/plain", header(t, resp, "Content-Type"))
	assert.Equal(t, "Not Found", string(resp.Body))
}

func TestServer_BadRequest(t *testing.T) {
	env := newTestEnv(t)

	tests := []string{
		"FOO / HTTP/1.1\r\n\r\n",
		"GET /\r\n\r\n",
		"GET / HTTP/1.1\r\nHost: x\r\n",
	}
	for _, raw := range tests {
		resp := env.roundTrip(t, raw)
		assert.Equal(t, httpmsg.StatusBadRequest, resp.Header.Status, raw)
		assert.Equal(t, "Bad Request", string(resp.Body))
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	resp := env.roundTrip(t, request("DELETE", "/style.css"))
	assert.Equal(t, httpmsg.StatusMethodNotAllowed, resp.Header.Status)
	assert.Equal(t, "GET, HEAD", header(t, resp, "Allow"))

	resp = env.roundTrip(t, request("POST", "/ws/notify", "Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ=="))
	assert.Equal(t, httpmsg.StatusMethodNotAllowed, resp.Header.Status)
}

func TestServer_Head(t *testing.T) {
	env := newTestEnv(t)

	c := env.dial(t)
	_, err := io.WriteString(c, request("HEAD", "/style.css"))
	require.NoError(t, err)

	// the server closes after the head, so read everything
	raw, err := io.ReadAll(c)
	require.NoError(t, err)
	header, _, err := httpmsg.ParseResponseHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, httpmsg.StatusOK, header.Status)
	assert.Equal(t, 6, header.ContentLength)
	assert.True(t, strings.HasSuffix(string(raw), "\r\n\r\n"))
}

func TestServer_UpgradeWithoutKey(t *testing.T) {
	env := newTestEnv(t)

	resp := env.roundTrip(t, request("GET", "/ws/notify", "Upgrade: websocket", "Connection: Upgrade"))
	assert.Equal(t, httpmsg.StatusBadRequest, resp.Header.Status)
	assert.Equal(t, ErrMissingKey.Error(), string(resp.Body))
	assert.Equal(t, 0, env.hub.Subscribers())
}

func TestServer_UpgradeRawFrame(t *testing.T) {
	env := newTestEnv(t)

	c := env.dial(t)
	_, err := io.WriteString(c, request("GET", "/ws/notify",
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==",
		"Sec-WebSocket-Version: 13",
	))
	require.NoError(t, err)

	resp, err := httpmsg.ReadResponse(c)
	require.NoError(t, err)
	assert.Equal(t, httpmsg.StatusSwitchingProtocols, resp.Header.Status)
	assert.Equal(t, "websocket", header(t, resp, "Upgrade"))
	assert.Equal(t, "Upgrade", header(t, resp, "Connection"))
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", header(t, resp, "Sec-WebSocket-Accept"))
	assert.Equal(t, "13", header(t, resp, "Sec-WebSocket-Version"))

	env.waitSubscribers(t, 1)
	env.notifications <- hub.Updated("/site/index.html")

	frame := make([]byte, 14)
	_, err = io.ReadFull(c, frame)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x81, 0x0C}, "File updated"...), frame)
}

func TestServer_NotifyRouteIsExact(t *testing.T) {
	env := newTestEnv(t)

	resp := env.roundTrip(t, request("GET", "/ws/notify?x=1",
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==",
	))
	assert.Equal(t, httpmsg.StatusNotFound, resp.Header.Status)
	assert.Equal(t, 0, env.hub.Subscribers())
}

func TestServer_ReadTimeout(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.ReadTimeout = 100 * time.Millisecond })

	c := env.dial(t)
	// declares more body than it sends
	_, err := io.WriteString(c, "GET /style.css HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc")
	require.NoError(t, err)

	start := time.Now()
	raw, err := io.ReadAll(c)
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestServer_ClosesQueuedOnShutdown(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Workers = 1 })

	ws, resp, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws/notify", env.addr), nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = resp.Body.Close()
	env.waitSubscribers(t, 1)

	// the only worker is held by the pusher, so this one waits
	c := env.dial(t)
	require.Eventually(t, func() bool {
		env.server.mu.Lock()
		defer env.server.mu.Unlock()

		return len(env.server.queued) == 1
	}, 2*time.Second, 5*time.Millisecond)

	env.cancel()

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	raw, err := io.ReadAll(c)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestServer_WebsocketClient(t *testing.T) {
	env := newTestEnv(t)

	ws, resp, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws/notify", env.addr), nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = resp.Body.Close()

	env.waitSubscribers(t, 1)

	sent := []hub.Notification{
		hub.Created("/site/a.css"),
		hub.Updated("/site/index.html"),
		hub.Renamed("/site/a.css", "/site/b.css"),
		hub.Removed("/site/b.css"),
	}
	for _, n := range sent {
		env.notifications <- n
	}

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for _, n := range sent {
		mt, msg, err := ws.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, mt)
		assert.Equal(t, n.Message(), string(msg))
	}
}

func TestServer_SeveralClients(t *testing.T) {
	env := newTestEnv(t)

	clients := make([]*websocket.Conn, 3)
	for i := range clients {
		ws, resp, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws/notify", env.addr), nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		clients[i] = ws
		defer ws.Close()
	}
	env.waitSubscribers(t, 3)

	// static requests are still served by the remaining worker
	resp := env.roundTrip(t, request("GET", "/style.css"))
	assert.Equal(t, httpmsg.StatusOK, resp.Header.Status)

	env.notifications <- hub.Created("/site/new.html")
	for _, ws := range clients {
		_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := ws.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "File created", string(msg))
	}
}

func TestServer_BindError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	st, err := site.New(site.NewOptions())
	require.NoError(t, err)
	s, err := New(&Options{BindAddress: "127.0.0.1", BindPort: port, Workers: 1}, st, hub.New(nil))
	require.NoError(t, err)
	defer s.Pool().Release()

	err = s.Listen()
	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, l.Addr().String(), bindErr.Address)
	assert.Nil(t, s.Addr())

	assert.Equal(t, ErrNotListening, s.Serve(context.Background()))
	assert.True(t, errors.As(s.Run(context.Background()), &bindErr))
}

func TestNew_InvalidWorkers(t *testing.T) {
	st, err := site.New(site.NewOptions())
	require.NoError(t, err)

	_, err = New(&Options{BindAddress: "127.0.0.1", Workers: 0}, st, hub.New(nil))
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts := NewOptions()
	assert.Empty(t, opts.Validate())
	assert.Equal(t, "127.0.0.1:8080", opts.Address())

	opts.BindPort = 70000
	opts.Workers = 0
	opts.ReadTimeout = -time.Second
	assert.Len(t, opts.Validate(), 3)
}
