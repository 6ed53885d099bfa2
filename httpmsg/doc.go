// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package httpmsg converts between raw HTTP/1.1 bytes and request/response
// values.
//
// Messages are read with a single fixed-size read of BufferSize bytes. The
// header section must end inside that buffer, and so must any body. Chunked
// transfer encoding and pipelining are not supported.
//
// Parsed header keys are upper-cased. Serialized headers are written in
// sorted key order so the output is stable.
package httpmsg
