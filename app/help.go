// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/moby/term"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wangtaoking1/psionic/flag"
	"github.com/wangtaoking1/psionic/utils"
)

// maxHelpWidth caps the wrap column of help output on wide terminals.
const maxHelpWidth = 120

var progressMessage = color.GreenString("==>")

func addHelpFlag(name string, fs *pflag.FlagSet) {
	fs.BoolP("help", "h", false, fmt.Sprintf("Help for %s.", name))
}

// setHelp prints the root flags grouped by section. Sub commands list their
// own flags.
func setHelp(cmd *cobra.Command, fss flag.NamedFlagSets) {
	cols := terminalWidth(cmd.OutOrStdout())
	usage := func(w io.Writer, c *cobra.Command) {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.UseLine())
		if c.HasAvailableSubCommands() {
			fmt.Fprintln(w, "\nCommands:")
			for _, sub := range c.Commands() {
				if sub.IsAvailableCommand() {
					fmt.Fprintf(w, "  %-10s %s\n", sub.Name(), sub.Short)
				}
			}
		}
		if c == cmd {
			flag.PrintSections(w, fss, cols)
			return
		}
		fmt.Fprintf(w, "\nFlags:\n%s", c.LocalFlags().FlagUsagesWrapped(cols))
	}

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		usage(c.OutOrStderr(), c)

		return nil
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		desc := c.Long
		if desc == "" {
			desc = c.Short
		}
		if desc != "" {
			fmt.Fprintf(c.OutOrStdout(), "%s\n\n", desc)
		}
		usage(c.OutOrStdout(), c)
	})
}

// terminalWidth returns the column count of w if it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	fd, isTerminal := term.GetFdInfo(w)
	if !isTerminal {
		return 0
	}
	ws, err := term.GetWinsize(fd)
	if err != nil {
		return 0
	}

	return utils.Min(int(ws.Width), maxHelpWidth)
}

func printWorkingDir(w io.Writer) {
	wd, _ := os.Getwd()
	fmt.Fprintf(w, "%v WorkingDir: %s\n", progressMessage, wd)
}
