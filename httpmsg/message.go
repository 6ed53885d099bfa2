// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// Version is the protocol version written by the constructors.
	Version = "HTTP/1.1"
	// ServerName is the value of the Server header on every message built here.
	ServerName = "Psionic 0.0.1"

	HeaderServer        = "Server"
	HeaderContentLength = "Content-Length"
	HeaderConnection    = "Connection"
	HeaderContentType   = "Content-Type"
)

// RequestHeader is the start line and header section of a request.
type RequestHeader struct {
	Route         string
	Verb          Verb
	Version       string
	ContentLength int
	Headers       map[string]string
}

// Request is a request header plus an optional body. Body is nil when
// ContentLength is 0.
type Request struct {
	Header RequestHeader
	Body   []byte
}

// ResponseHeader is the status line and header section of a response.
type ResponseHeader struct {
	Version       string
	Status        Status
	ContentLength int
	Headers       map[string]string
}

// Response is a response header plus an optional body.
type Response struct {
	Header ResponseHeader
	Body   []byte
}

// NewRequest builds a request carrying the standard headers. Extra headers
// replace standard ones with the same key, compared without case.
func NewRequest(route string, verb Verb, contentType string, extra map[string]string, body []byte) *Request {
	return &Request{
		Header: RequestHeader{
			Route:         route,
			Verb:          verb,
			Version:       Version,
			ContentLength: len(body),
			Headers:       standardHeaders(contentType, len(body), extra),
		},
		Body: nilIfEmpty(body),
	}
}

// NewResponse builds a response carrying the standard headers. Extra headers
// replace standard ones with the same key, compared without case.
func NewResponse(status Status, contentType string, extra map[string]string, body []byte) *Response {
	return &Response{
		Header: ResponseHeader{
			Version:       Version,
			Status:        status,
			ContentLength: len(body),
			Headers:       standardHeaders(contentType, len(body), extra),
		},
		Body: nilIfEmpty(body),
	}
}

func standardHeaders(contentType string, contentLength int, extra map[string]string) map[string]string {
	headers := map[string]string{
		HeaderServer:        ServerName,
		HeaderContentLength: strconv.Itoa(contentLength),
		HeaderConnection:    "Closed",
		HeaderContentType:   contentType,
	}
	for k, v := range extra {
		for existing := range headers {
			if strings.EqualFold(existing, k) {
				delete(headers, existing)
			}
		}
		headers[k] = v
	}

	return headers
}

func nilIfEmpty(body []byte) []byte {
	if len(body) == 0 {
		return nil
	}

	return body
}

// Bytes renders the request line and headers, ending with the blank line.
func (h *RequestHeader) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(h.Verb.String())
	buf.WriteByte(' ')
	buf.WriteString(h.Route)
	buf.WriteByte(' ')
	buf.WriteString(h.Version)
	buf.WriteString("\r\n")
	writeHeaders(&buf, h.Headers)

	return buf.Bytes()
}

// Bytes renders the status line and headers, ending with the blank line.
func (h *ResponseHeader) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(h.Version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(h.Status.Code()))
	buf.WriteByte(' ')
	buf.WriteString(h.Status.Reason())
	buf.WriteString("\r\n")
	writeHeaders(&buf, h.Headers)

	return buf.Bytes()
}

func writeHeaders(buf *bytes.Buffer, headers map[string]string) {
	keys := maps.Keys(headers)
	slices.Sort(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(headers[k])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
}

// Bytes renders the whole request. The body is appended verbatim.
func (r *Request) Bytes() []byte {
	return append(r.Header.Bytes(), r.Body...)
}

// Bytes renders the whole response. The body is appended verbatim.
func (r *Response) Bytes() []byte {
	return append(r.Header.Bytes(), r.Body...)
}

// WriteTo writes the serialized request to w in a single write.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// WriteTo writes the serialized response to w in a single write.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// Get returns the value of a header. The lookup ignores case.
func (h *RequestHeader) Get(key string) (string, bool) {
	return lookup(h.Headers, key)
}

// Get returns the value of a header. The lookup ignores case.
func (h *ResponseHeader) Get(key string) (string, bool) {
	return lookup(h.Headers, key)
}

func lookup(headers map[string]string, key string) (string, bool) {
	if v, ok := headers[strings.ToUpper(key)]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}

	return "", false
}
