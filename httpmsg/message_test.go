// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upperKeys(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[strings.ToUpper(k)] = v
	}

	return out
}

func TestNewResponse_StandardHeaders(t *testing.T) {
	resp := NewResponse(StatusOK, "text/css", nil, []byte("body{}"))

	assert.Equal(t, map[string]string{
		"Server":         "Psionic 0.0.1",
		"Content-Length": "6",
		"Connection":     "Closed",
		"Content-Type":   "text/css",
	}, resp.Header.Headers)
	assert.Equal(t, 6, resp.Header.ContentLength)
	assert.Equal(t, "HTTP/1.1", resp.Header.Version)
}

func TestNewResponse_ExtraOverrides(t *testing.T) {
	resp := NewResponse(StatusSwitchingProtocols, "text/plain", map[string]string{
		"connection":           "Upgrade",
		"Upgrade":              "websocket",
		"Sec-WebSocket-Accept": "key",
	}, nil)

	assert.Equal(t, "Upgrade", resp.Header.Headers["connection"])
	_, ok := resp.Header.Headers["Connection"]
	assert.False(t, ok)
	assert.Equal(t, "websocket", resp.Header.Headers["Upgrade"])
	assert.Nil(t, resp.Body)
	assert.Equal(t, "0", resp.Header.Headers["Content-Length"])
}

func TestResponse_Bytes(t *testing.T) {
	resp := NewResponse(StatusNotFound, "text/plain", nil, []byte("Not Found"))

	want := "HTTP/1.1 404 Not Found\r\n" +
		"Connection: Closed\r\n" +
		"Content-Length: 9\r\n" +
		"Content-Type: text/plain\r\n" +
		"Server: Psionic 0.0.1\r\n" +
		"\r\n" +
		"Not Found"
	assert.Equal(t, want, string(resp.Bytes()))
}

func TestRequest_Bytes(t *testing.T) {
	req := NewRequest("/index.html", VerbGet, "text/html", map[string]string{"Host": "x"}, nil)

	want := "GET /index.html HTTP/1.1\r\n" +
		"Connection: Closed\r\n" +
		"Content-Length: 0\r\n" +
		"Content-Type: text/html\r\n" +
		"Host: x\r\n" +
		"Server: Psionic 0.0.1\r\n" +
		"\r\n"
	assert.Equal(t, want, string(req.Bytes()))
}

func TestRequest_WriteTo(t *testing.T) {
	req := NewRequest("/", VerbPost, "text/plain", nil, []byte("hello"))

	var buf bytes.Buffer
	n, err := req.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\r\n\r\nhello")))
}

func TestRequestHeader_RoundTrip(t *testing.T) {
	routes := []string{"/", "/index.html", "/css/style.css", "/ws/notify"}
	versions := []string{"HTTP/1.0", "HTTP/1.1"}

	for v := VerbGet; v <= VerbPatch; v++ {
		for _, route := range routes {
			for _, version := range versions {
				req := NewRequest(route, v, "text/plain", map[string]string{"Host": "localhost:8080"}, nil)
				req.Header.Version = version

				got, offset, err := ParseRequestHeader(req.Bytes())
				require.NoError(t, err)
				assert.Equal(t, len(req.Bytes()), offset)
				assert.Equal(t, v, got.Verb)
				assert.Equal(t, route, got.Route)
				assert.Equal(t, version, got.Version)
				assert.Equal(t, req.Header.ContentLength, got.ContentLength)
				assert.Equal(t, upperKeys(req.Header.Headers), got.Headers)
			}
		}
	}
}

func TestRequest_BodyRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 12, 255, 1024, 3800} {
		body := bytes.Repeat([]byte{0xff, 0x00, 'a'}, n/3+1)[:n]
		req := NewRequest("/upload", VerbPost, "application/octet-stream", nil, body)

		got, err := ReadRequest(bytes.NewReader(req.Bytes()))
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, n, got.Header.ContentLength)
		if n == 0 {
			assert.Nil(t, got.Body)
		} else {
			assert.Equal(t, body, got.Body)
		}
	}
}

func TestResponse_RoundTrip(t *testing.T) {
	for _, status := range []Status{StatusSwitchingProtocols, StatusOK, StatusBadRequest, StatusNotFound, StatusInternalError} {
		resp := NewResponse(status, "text/plain", map[string]string{"X-Test": "1"}, []byte(status.Reason()))

		got, err := ReadResponse(bytes.NewReader(resp.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, status, got.Header.Status)
		assert.Equal(t, "HTTP/1.1", got.Header.Version)
		assert.Equal(t, upperKeys(resp.Header.Headers), got.Header.Headers)
		assert.Equal(t, []byte(status.Reason()), got.Body)
	}
}

func TestHeader_Get(t *testing.T) {
	h, _, err := ParseRequestHeader([]byte("GET / HTTP/1.1\r\nSec-WebSocket-Key: abc\r\n\r\n"))
	require.NoError(t, err)

	v, ok := h.Get("Sec-WebSocket-Key")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = h.Get("Upgrade")
	assert.False(t, ok)

	resp := NewResponse(StatusOK, "text/plain", nil, nil)
	v, ok = resp.Header.Get("content-type")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", v)
}
