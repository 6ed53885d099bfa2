// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wangtaoking1/psionic/version"
)

// NewCommand returns a sub command without flags of its own.
func NewCommand(use, short string, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	addHelpFlag(use, cmd.Flags())

	return cmd
}

// VersionCommand prints the build information, as a table or with --json
// as JSON.
func VersionCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:          "version",
		Short:        "Print version information",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			if asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), info.ToJSON())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON.")
	addHelpFlag("version", cmd.Flags())

	return cmd
}
