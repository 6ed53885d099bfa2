// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package watcher

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options contains configuration options for the file watcher.
type Options struct {
	Debounce  time.Duration `json:"debounce"  mapstructure:"debounce"`
	Recursive bool          `json:"recursive" mapstructure:"recursive"`
}

// NewOptions return a new options for the file watcher.
func NewOptions() *Options {
	return &Options{
		Debounce:  time.Second,
		Recursive: true,
	}
}

func (o *Options) Validate() []error {
	var errs []error
	if o.Debounce < 0 {
		errs = append(errs, fmt.Errorf("--watcher.debounce %v must not be negative", o.Debounce))
	}

	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.Debounce, "watcher.debounce", o.Debounce, ""+
		"Quiet period per file before a change is reported. Changes within the period are merged.")
	fs.BoolVar(&o.Recursive, "watcher.recursive", o.Recursive, ""+
		"Watch subdirectories of the base path, including ones created later.")
}
