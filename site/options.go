// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package site

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Options contains the static site configuration.
type Options struct {
	BasePath string `json:"base-path" mapstructure:"base-path"`
	Index    string `json:"index"     mapstructure:"index"`
}

// NewOptions returns the default options: the working directory and
// index.html.
func NewOptions() *Options {
	return &Options{
		BasePath: ".",
		Index:    "index.html",
	}
}

func (o *Options) Validate() []error {
	var errs []error
	info, err := os.Stat(o.BasePath)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("--site.base-path %q: %v", o.BasePath, err))
	case !info.IsDir():
		errs = append(errs, fmt.Errorf("--site.base-path %q is not a directory", o.BasePath))
	}
	if o.Index == "" {
		errs = append(errs, fmt.Errorf("--site.index must not be empty"))
	}

	return errs
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BasePath, "site.base-path", o.BasePath, "The directory to serve and watch")
	fs.StringVar(&o.Index, "site.index", o.Index, "The index document served for / and for directories, relative to the base path")
}
