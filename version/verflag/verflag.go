// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package verflag defines the --version flag.
package verflag

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/wangtaoking1/psionic/version"
)

const versionFlagName = "version"

var versionFlag = false

// AddFlags registers the --version flag on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&versionFlag, versionFlagName, versionFlag, "Print version information and quit.")
}

// PrintAndExitIfRequested prints the version and exits if --version was set.
func PrintAndExitIfRequested() {
	if printIfRequested(os.Stdout) {
		os.Exit(0)
	}
}

func printIfRequested(w io.Writer) bool {
	if !versionFlag {
		return false
	}
	fmt.Fprintln(w, version.Get())

	return true
}
