// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package server

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingKey is returned for an upgrade request without Sec-WebSocket-Key.
	ErrMissingKey = errors.New("missing Sec-WebSocket-Key header")
	// ErrNotListening is returned by Serve before Listen.
	ErrNotListening = errors.New("server is not listening")
)

// BindError is returned when the listen address cannot be bound.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Address, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
