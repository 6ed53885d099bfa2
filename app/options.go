// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package app

import "github.com/wangtaoking1/psionic/flag"

// CmdOptions is an options struct the App fills from the command line. Its
// fields carry mapstructure tags matching the flag names so config files and
// env overrides land in the same place.
type CmdOptions interface {
	Flags() flag.NamedFlagSets
	Validate() []error
}

// Completer is implemented by options that derive fields after loading.
type Completer interface {
	Complete() error
}
