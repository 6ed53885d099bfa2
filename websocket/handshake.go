// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package websocket

import (
	"crypto/sha1" //nolint:gosec
	"encoding/base64"
)

const (
	// GUID is appended to the client key before hashing.
	GUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	// Version is the only protocol version spoken.
	Version = "13"
)

// AcceptKey derives the Sec-WebSocket-Accept value for clientKey.
func AcceptKey(clientKey string) string {
	h := sha1.New() //nolint:gosec
	h.Write([]byte(clientKey + GUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// UpgradeHeaders returns the extra headers of a 101 response answering a
// handshake with clientKey.
func UpgradeHeaders(clientKey string) map[string]string {
	return map[string]string{
		"Upgrade":               "websocket",
		"Connection":            "Upgrade",
		"Sec-WebSocket-Accept":  AcceptKey(clientKey),
		"Sec-WebSocket-Version": Version,
	}
}
