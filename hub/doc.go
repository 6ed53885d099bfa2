// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package hub fans file change notifications out to websocket subscribers.
//
// A Hub is a single actor: its subscriber list is only touched by the
// goroutine running Hub.Run. Producers send Notifications on the channel
// given to New; consumers register a Subscription with Hub.Subscribe and
// receive on Subscription.C.
//
// There is no unsubscribe message. A subscription leaves the hub when a
// delivery to it fails: its owner called Cancel, or its buffer was full.
// The hub then closes the subscription channel.
package hub
