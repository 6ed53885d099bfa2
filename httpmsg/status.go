// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package httpmsg

import (
	"github.com/pkg/errors"
)

// Status is one of the response statuses the server emits.
// The value is the numeric status code.
type Status int

const (
	StatusSwitchingProtocols Status = 101
	StatusOK                 Status = 200
	StatusBadRequest         Status = 400
	StatusUnauthorized       Status = 401
	StatusNotFound           Status = 404
	StatusMethodNotAllowed   Status = 405
	StatusInternalError      Status = 500
)

var reasons = map[Status]string{
	StatusSwitchingProtocols: "Switching Protocols",
	StatusOK:                 "OK",
	StatusBadRequest:         "Bad Request",
	StatusUnauthorized:       "Unauthorized",
	StatusNotFound:           "Not Found",
	StatusMethodNotAllowed:   "Method Not Allowed",
	StatusInternalError:      "Internal Error",
}

// ParseStatus maps a numeric code to a Status.
func ParseStatus(code int) (Status, error) {
	s := Status(code)
	if _, ok := reasons[s]; !ok {
		return 0, errors.Wrapf(ErrUnknownStatus, "%d", code)
	}

	return s, nil
}

// Code returns the numeric status code.
func (s Status) Code() int {
	return int(s)
}

// Reason returns the reason phrase, or "" for an unsupported status.
func (s Status) Reason() string {
	return reasons[s]
}
