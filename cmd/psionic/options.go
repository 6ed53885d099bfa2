// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/wangtaoking1/psionic/diag"
	"github.com/wangtaoking1/psionic/flag"
	"github.com/wangtaoking1/psionic/hub"
	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/server"
	"github.com/wangtaoking1/psionic/site"
	"github.com/wangtaoking1/psionic/watcher"
)

// Options is the whole configuration of the dev server.
type Options struct {
	Server  *server.Options  `json:"server"  mapstructure:"server"`
	Site    *site.Options    `json:"site"    mapstructure:"site"`
	Watcher *watcher.Options `json:"watcher" mapstructure:"watcher"`
	Hub     *hub.Options     `json:"hub"     mapstructure:"hub"`
	Diag    *diag.Options    `json:"diag"    mapstructure:"diag"`
	Log     *log.Options     `json:"log"     mapstructure:"log"`
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		Server:  server.NewOptions(),
		Site:    site.NewOptions(),
		Watcher: watcher.NewOptions(),
		Hub:     hub.NewOptions(),
		Diag:    diag.NewOptions(),
		Log:     log.NewOptions(),
	}
}

func (o *Options) Flags() (fss flag.NamedFlagSets) {
	o.Server.AddFlags(fss.FlagSet("server"))
	o.Site.AddFlags(fss.FlagSet("site"))
	o.Watcher.AddFlags(fss.FlagSet("watcher"))
	o.Hub.AddFlags(fss.FlagSet("hub"))
	o.Diag.AddFlags(fss.FlagSet("diag"))
	o.Log.AddFlags(fss.FlagSet("log"))

	return fss
}

// Complete expands a leading "~" in the site base path, which shells leave
// alone when it comes from a config file or the environment.
func (o *Options) Complete() error {
	p := o.Site.BasePath
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, "expand --site.base-path")
	}
	o.Site.BasePath = filepath.Join(home, strings.TrimPrefix(p, "~"))

	return nil
}

func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.Server.Validate()...)
	errs = append(errs, o.Site.Validate()...)
	errs = append(errs, o.Watcher.Validate()...)
	errs = append(errs, o.Hub.Validate()...)
	errs = append(errs, o.Diag.Validate()...)
	errs = append(errs, o.Log.Validate()...)

	return errs
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}
