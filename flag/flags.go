// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package flag groups pflag flag sets into named help sections and prints
// the effective flags at startup.
package flag

import (
	goflag "flag"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/pflag"
)

// WordSepNormalizeFunc changes all flags that contain "_" separators.
func WordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if strings.Contains(name, "_") {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	}

	return pflag.NormalizedName(name)
}

// InitFlags normalizes flag names and adds the standard library flags.
func InitFlags(flags *pflag.FlagSet) {
	flags.SetNormalizeFunc(WordSepNormalizeFunc)
	flags.AddGoFlagSet(goflag.CommandLine)
}

// PrintFlags writes a table of all flags and their effective values.
func PrintFlags(w io.Writer, flags *pflag.FlagSet) {
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow(color.CyanString("FLAG"), color.CyanString("VALUE"))
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name == "help" {
			return
		}
		table.AddRow("--"+flag.Name, fmt.Sprintf("%q", flag.Value.String()))
	})
	fmt.Fprintln(w, table)
}
