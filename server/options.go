// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package server

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Options contains configuration options for the dev server.
type Options struct {
	BindAddress string `json:"bind-address" mapstructure:"bind-address"`
	BindPort    int    `json:"bind-port"    mapstructure:"bind-port"`
	Workers     int    `json:"workers"      mapstructure:"workers"`
	// ReadTimeout bounds reading one request, body included. Zero disables it.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
}

// NewOptions return a new options for server.
func NewOptions() *Options {
	return &Options{
		BindAddress: "127.0.0.1",
		BindPort:    8080,
		Workers:     4,
		ReadTimeout: 10 * time.Second,
	}
}

func (o *Options) Validate() []error {
	var errs []error
	// 0 picks a free port
	if o.BindPort < 0 || o.BindPort > 65535 {
		errs = append(
			errs,
			fmt.Errorf("--server.bind-port %v must be between 0 and 65535", o.BindPort),
		)
	}
	if o.Workers < 1 {
		errs = append(errs, fmt.Errorf("--server.workers %v must be at least 1", o.Workers))
	}
	if o.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("--server.read-timeout %v must not be negative", o.ReadTimeout))
	}

	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "server.bind-address", o.BindAddress, ""+
		"The IP address on which to serve the --server.bind-port "+
		"(set to 0.0.0.0 for all IPv4 interfaces and :: for all IPv6 interfaces).")
	fs.IntVar(&o.BindPort, "server.bind-port", o.BindPort, ""+
		"The port on which to serve the site and the reload websocket.")
	fs.IntVar(&o.Workers, "server.workers", o.Workers, ""+
		"The number of connection workers. Every open browser tab keeps one worker busy "+
		"for as long as it is connected, so set this above the number of tabs you expect.")
	fs.DurationVar(&o.ReadTimeout, "server.read-timeout", o.ReadTimeout, ""+
		"How long a client may take to send a whole request before the connection is closed, 0 waits for ever.")
}

// Address join host IP address and host port number into an address string, like: 127.0.0.1:8080.
func (o *Options) Address() string {
	return net.JoinHostPort(o.BindAddress, strconv.Itoa(o.BindPort))
}
