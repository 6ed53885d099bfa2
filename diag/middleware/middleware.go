// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package middleware holds the gin middlewares the diagnostics server can
// install by name.
package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var builtin = map[string]func() gin.HandlerFunc{
	"requestid": RequestID,
	"cors":      Cors,
	"logger":    Logger,
}

// Names returns the installable middleware names, sorted.
func Names() []string {
	names := maps.Keys(builtin)
	slices.Sort(names)

	return names
}

// Get returns a new instance of the named middleware, or nil.
func Get(name string) gin.HandlerFunc {
	if f, ok := builtin[name]; ok {
		return f()
	}

	return nil
}

// Check returns an error for the first name that is not installable.
func Check(names []string) error {
	for _, name := range names {
		if _, ok := builtin[name]; !ok {
			return fmt.Errorf("unknown middleware %q, must be one of %v", name, Names())
		}
	}

	return nil
}
