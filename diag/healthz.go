// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package diag

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/utils/retry"
)

const (
	healthzPath = "/healthz"
	statusPath  = "/status"

	healthCheckTimeout = 10 * time.Second
)

func (s *Server) addHealthzRouter() {
	s.GET(healthzPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// healthCheck pings the server until the router answers. It gives up
// quietly when ctx is done first.
func (s *Server) healthCheck(ctx context.Context) error {
	url := fmt.Sprintf("http://%s%s", s.options.healthzAddr(), healthzPath)

	err := retry.WithTimeout(ctx, 100*time.Millisecond, healthCheckTimeout, func() error {
		return s.ping(ctx, url)
	})
	if err == nil {
		s.logger.Debugw("The router has been deployed successfully.")

		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	return errors.WithMessage(err, "healthz check failed")
}

// ping requests the healthz router once.
func (s *Server) ping(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.logger.Debugw("Waiting for the router deploy", "error", err)

		return retry.ErrRetryable
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.WithMessagef(retry.ErrRetryable, "status %d", resp.StatusCode)
	}

	return nil
}
