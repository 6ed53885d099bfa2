// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"github.com/pkg/errors"
)

var (
	// ErrHeaderTooLarge is returned when no empty line ends the header
	// section inside the read buffer.
	ErrHeaderTooLarge = errors.New("header larger than buffer")
	// ErrBodyTooLarge is returned when the declared body does not fit the
	// read buffer.
	ErrBodyTooLarge = errors.New("body larger than buffer")
	// ErrUnknownVerb is returned for a request line with an unrecognized method.
	ErrUnknownVerb = errors.New("unknown http verb")
	// ErrUnknownStatus is returned for an unsupported status code.
	ErrUnknownStatus = errors.New("unknown http status")
	// ErrMalformedStartLine is returned when the request or status line
	// does not have the expected fields.
	ErrMalformedStartLine = errors.New("malformed start line")
)

var parseErrors = []error{
	ErrHeaderTooLarge,
	ErrBodyTooLarge,
	ErrUnknownVerb,
	ErrUnknownStatus,
	ErrMalformedStartLine,
}

// IsParseError reports whether err was caused by malformed message bytes,
// as opposed to a failing connection.
func IsParseError(err error) bool {
	for _, target := range parseErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
