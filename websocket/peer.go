// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package websocket

import (
	"context"
	"net"
	"time"

	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/log"
)

const writeTimeout = 10 * time.Second

// Peer pushes the notifications of one subscription to one upgraded
// connection.
type Peer struct {
	conn   net.Conn
	sub    *hub.Subscription
	logger log.Logger
}

// NewPeer creates a peer. The subscription must already be registered with
// the hub.
func NewPeer(conn net.Conn, sub *hub.Subscription, logger log.Logger) *Peer {
	if logger == nil {
		logger = log.WithName("websocket")
	}

	return &Peer{
		conn:   conn,
		sub:    sub,
		logger: logger,
	}
}

// Run writes one frame per notification until a write fails, the
// subscription is closed by the hub or ctx is done. The connection is
// closed on return.
func (p *Peer) Run(ctx context.Context) {
	defer func() {
		p.sub.Cancel()
		_ = p.conn.Close()
		p.logger.Infow("Websocket peer closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-p.sub.C():
			if !ok {
				return
			}
			if err := p.push(n); err != nil {
				p.logger.Warnw("Failed to push notification", "notification", n.String(), "error", err)
				return
			}
		}
	}
}

func (p *Peer) push(n hub.Notification) error {
	frame, err := TextFrame(n.Message())
	if err != nil {
		return err
	}

	_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err = p.conn.Write(frame); err != nil {
		return err
	}
	p.logger.Debugw("Notification pushed", "notification", n.String())

	return nil
}
