// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package hub

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains configuration options for the message hub.
type Options struct {
	PollInterval time.Duration `json:"poll-interval" mapstructure:"poll-interval"`
}

// NewOptions return a new options for the message hub.
func NewOptions() *Options {
	return &Options{
		PollInterval: DefaultPollInterval,
	}
}

func (o *Options) Validate() []error {
	var errs []error
	if o.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("--hub.poll-interval %v must be positive", o.PollInterval))
	}

	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.PollInterval, "hub.poll-interval", o.PollInterval, ""+
		"How long the hub waits for a change before picking up new websocket subscriptions.")
}
