// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"io"

	"github.com/pkg/errors"
)

// BufferSize is the size of the single read a message must fit in.
const BufferSize = 4096

// ReadRequest reads one request from r with a single BufferSize read.
// A body that would extend past the buffer fails with ErrBodyTooLarge.
func ReadRequest(r io.Reader) (*Request, error) {
	buf, n, err := readBuffer(r)
	if err != nil {
		return nil, err
	}

	header, offset, err := ParseRequestHeader(buf[:n])
	if err != nil {
		return nil, err
	}

	body, err := readBody(r, buf, n, offset, header.ContentLength)
	if err != nil {
		return nil, err
	}

	return &Request{Header: *header, Body: body}, nil
}

// ReadResponse reads one response from r. When the first read stops at the
// end of the header section, the body is read separately.
func ReadResponse(r io.Reader) (*Response, error) {
	buf, n, err := readBuffer(r)
	if err != nil {
		return nil, err
	}

	header, offset, err := ParseResponseHeader(buf[:n])
	if err != nil {
		return nil, err
	}

	body, err := readBody(r, buf, n, offset, header.ContentLength)
	if err != nil {
		return nil, err
	}

	return &Response{Header: *header, Body: body}, nil
}

func readBuffer(r io.Reader) ([]byte, int, error) {
	buf := make([]byte, BufferSize)
	n, err := r.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}

		return nil, 0, errors.Wrap(err, "read message")
	}

	return buf, n, nil
}

// readBody slices the body out of buf, holding n read bytes, reading the
// missing tail from r when the declared length fits the buffer but has not
// arrived yet.
func readBody(r io.Reader, buf []byte, n, offset, contentLength int) ([]byte, error) {
	if contentLength == 0 {
		return nil, nil
	}

	end := offset + contentLength
	if end > len(buf) {
		return nil, errors.Wrapf(ErrBodyTooLarge, "%d bytes at offset %d", contentLength, offset)
	}
	if end > n {
		if _, err := io.ReadFull(r, buf[n:end]); err != nil {
			return nil, errors.Wrap(err, "read body")
		}
	}

	body := make([]byte, contentLength)
	copy(body, buf[offset:end])

	return body, nil
}
