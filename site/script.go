// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package site

import (
	"encoding/json"
	"fmt"
)

// NotifyRoute is the websocket route browsers connect to for reloads.
const NotifyRoute = "/ws/notify"

const scriptTemplate = `<script>(function(){var ws=new WebSocket(%s);ws.onmessage=function(){window.location.reload();};})();</script>`

const closingBody = "</body>"

// Script returns the reload script for host. The url is written as a JSON
// string, which escapes quotes and "<" so host cannot end the literal or
// the script element.
func Script(host string) string {
	url, _ := json.Marshal("ws://" + host + NotifyRoute)

	return fmt.Sprintf(scriptTemplate, url)
}

// InjectScript inserts the reload script right before the last closing
// body tag of doc. Without one, the script is appended.
func InjectScript(doc []byte, host string) []byte {
	script := Script(host)
	idx := lastClosingBody(doc)
	if idx < 0 {
		idx = len(doc)
	}

	out := make([]byte, 0, len(doc)+len(script))
	out = append(out, doc[:idx]...)
	out = append(out, script...)
	out = append(out, doc[idx:]...)

	return out
}

// lastClosingBody returns the offset of the last "</body>" in doc, matched
// without ASCII case, or -1. Bytes are compared in place so offsets stay
// valid for any content, UTF-8 or not.
func lastClosingBody(doc []byte) int {
	for i := len(doc) - len(closingBody); i >= 0; i-- {
		if asciiEqualFold(doc[i:i+len(closingBody)], closingBody) {
			return i
		}
	}

	return -1
}

func asciiEqualFold(b []byte, s string) bool {
	for i := 0; i < len(s); i++ {
		if lower(b[i]) != lower(s[i]) {
			return false
		}
	}

	return true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}

	return c
}
