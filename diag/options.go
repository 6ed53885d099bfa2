// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package diag

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/wangtaoking1/psionic/diag/middleware"
)

// Options contains configuration options for the diagnostics server.
type Options struct {
	Enabled     bool     `json:"enabled"      mapstructure:"enabled"`
	BindAddress string   `json:"bind-address" mapstructure:"bind-address"`
	BindPort    int      `json:"bind-port"    mapstructure:"bind-port"`
	Middlewares []string `json:"middlewares"  mapstructure:"middlewares"`
	Profiling   bool     `json:"profiling"    mapstructure:"profiling"`
	Metrics     bool     `json:"metrics"      mapstructure:"metrics"`
}

// NewOptions return a new options for the diagnostics server.
func NewOptions() *Options {
	return &Options{
		Enabled:     false,
		BindAddress: "127.0.0.1",
		BindPort:    8081,
		Middlewares: []string{"requestid"},
		Profiling:   false,
		Metrics:     true,
	}
}

// Validate checks the options only when the server is enabled.
func (o *Options) Validate() []error {
	if !o.Enabled {
		return nil
	}

	var errs []error
	if o.BindPort <= 0 || o.BindPort > 65535 {
		errs = append(
			errs,
			fmt.Errorf("--diag.bind-port %v must be between 1 and 65535", o.BindPort),
		)
	}
	if err := middleware.Check(o.Middlewares); err != nil {
		errs = append(errs, fmt.Errorf("--diag.middlewares: %w", err))
	}

	return errs
}

// AddFlags adds the diag.* flags to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "diag.enabled", o.Enabled, ""+
		"Enable the diagnostics server with /healthz and /status routers.")
	fs.StringVar(&o.BindAddress, "diag.bind-address", o.BindAddress, ""+
		"The IP address on which to serve the --diag.bind-port "+
		"(set to 0.0.0.0 for all IPv4 interfaces and :: for all IPv6 interfaces).")
	fs.IntVar(&o.BindPort, "diag.bind-port", o.BindPort, "The port on which to serve diagnostics.")
	fs.StringSliceVar(&o.Middlewares, "diag.middlewares", o.Middlewares, ""+
		fmt.Sprintf("List of middlewares installed on the diagnostics server, comma separated, from %v.", middleware.Names()))
	fs.BoolVar(&o.Profiling, "diag.profiling", o.Profiling, "Enable profiling. "+
		"If enabled, you can debug profiling on /debug/pprof/xxx path")
	fs.BoolVar(&o.Metrics, "diag.metrics", o.Metrics, "Enable prometheus metrics. "+
		"If enabled, you can download metrics on /metrics path")
}

// Address returns host:port, like 127.0.0.1:8081.
func (o *Options) Address() string {
	return net.JoinHostPort(o.BindAddress, strconv.Itoa(o.BindPort))
}

// healthzAddr is the address the health check dials, a wildcard bind
// address is reached through loopback.
func (o *Options) healthzAddr() string {
	if o.BindAddress == "0.0.0.0" || o.BindAddress == "::" || o.BindAddress == "" {
		return net.JoinHostPort("127.0.0.1", strconv.Itoa(o.BindPort))
	}

	return o.Address()
}
