// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package websocket implements the server side of the RFC 6455 opening
// handshake and the minimal unmasked text frames used to push reload
// notifications to browsers.
package websocket
