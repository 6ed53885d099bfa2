// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const contentLengthKey = "CONTENT-LENGTH"

// headerEnd returns the offset just past the first CR LF CR LF in buf,
// or -1 if there is none.
func headerEnd(buf []byte) int {
	for i := 3; i < len(buf); i++ {
		if buf[i] == '\n' && buf[i-1] == '\r' && buf[i-2] == '\n' && buf[i-3] == '\r' {
			return i + 1
		}
	}

	return -1
}

// splitHeader locates the header section and decodes it as text, replacing
// invalid UTF-8. It returns the start line, the header lines and the body offset.
func splitHeader(buf []byte) (string, []string, int, error) {
	end := headerEnd(buf)
	if end < 0 {
		return "", nil, 0, ErrHeaderTooLarge
	}

	text := strings.ToValidUTF8(string(buf[:end-4]), "\uFFFD")
	lines := strings.Split(text, "\r\n")

	return lines[0], lines[1:], end, nil
}

// parseFields decodes "Key: Value" lines. Keys are upper-cased; lines
// without a colon are skipped. The second result is the Content-Length
// value, or 0 when absent or malformed.
func parseFields(lines []string) (map[string]string, int) {
	headers := make(map[string]string, len(lines))
	contentLength := 0
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k = strings.ToUpper(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == contentLengthKey {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				contentLength = n
			}
		}
		headers[k] = v
	}

	return headers, contentLength
}

// ParseRequestHeader decodes the request header at the start of buf and
// returns it with the offset of the first body byte.
func ParseRequestHeader(buf []byte) (*RequestHeader, int, error) {
	startLine, lines, offset, err := splitHeader(buf)
	if err != nil {
		return nil, 0, err
	}

	parts := strings.Split(startLine, " ")
	verb, err := ParseVerb(parts[0])
	if err != nil {
		return nil, 0, err
	}
	if len(parts) != 3 {
		return nil, 0, errors.Wrapf(ErrMalformedStartLine, "%q", startLine)
	}

	headers, contentLength := parseFields(lines)

	return &RequestHeader{
		Route:         parts[1],
		Verb:          verb,
		Version:       parts[2],
		ContentLength: contentLength,
		Headers:       headers,
	}, offset, nil
}

// ParseResponseHeader decodes the response header at the start of buf and
// returns it with the offset of the first body byte.
func ParseResponseHeader(buf []byte) (*ResponseHeader, int, error) {
	startLine, lines, offset, err := splitHeader(buf)
	if err != nil {
		return nil, 0, err
	}

	parts := strings.SplitN(startLine, " ", 3)
	if len(parts) < 2 {
		return nil, 0, errors.Wrapf(ErrMalformedStartLine, "%q", startLine)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, 0, errors.Wrapf(ErrMalformedStartLine, "status code %q", parts[1])
	}
	status, err := ParseStatus(code)
	if err != nil {
		return nil, 0, err
	}

	headers, contentLength := parseFields(lines)

	return &ResponseHeader{
		Version:       parts[0],
		Status:        status,
		ContentLength: contentLength,
		Headers:       headers,
	}, offset, nil
}
