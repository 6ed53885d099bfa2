// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package app builds a cobra root command around an options struct: flags
// grouped in sections, an optional config file, PSIONIC_* environment
// overrides, validation and a startup banner.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/wangtaoking1/psionic/flag"
	"github.com/wangtaoking1/psionic/log"
	"github.com/wangtaoking1/psionic/version"
	"github.com/wangtaoking1/psionic/version/verflag"
)

// RunFunc is called once the options are loaded and valid. ctx is the
// command context.
type RunFunc func(ctx context.Context) error

// App is a command line application.
type App struct {
	name      string
	short     string
	long      string
	options   CmdOptions
	run       RunFunc
	quiet     bool
	noVersion bool
	noConfig  bool
	args      cobra.PositionalArgs
	commands  []*cobra.Command
	cmd       *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions sets the options filled from flags, config file and env.
func WithOptions(opts CmdOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the function run by the root command.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.run = run }
}

// WithDescription sets the long help text.
func WithDescription(desc string) Option {
	return func(a *App) { a.long = desc }
}

// WithQuiet suppresses the startup banner.
func WithQuiet() Option {
	return func(a *App) { a.quiet = true }
}

// WithNoVersion drops the --version flag.
func WithNoVersion() Option {
	return func(a *App) { a.noVersion = true }
}

// WithNoConfig drops the --config flag and environment binding.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// WithNoArgs rejects non-flag arguments.
func WithNoArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
			}

			return nil
		}
	}
}

// WithCommands adds sub commands.
func WithCommands(cmds ...*cobra.Command) Option {
	return func(a *App) { a.commands = append(a.commands, cmds...) }
}

// NewApp builds the root command for name.
func NewApp(name, short string, opts ...Option) *App {
	a := &App{name: name, short: short}
	for _, o := range opts {
		o(a)
	}
	a.cmd = a.buildCommand()

	return a
}

// Command returns the root command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the root command and exits non-zero on error.
func (a *App) Run() {
	if err := a.cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func (a *App) buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.short,
		Long:          a.long,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          a.args,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true
	flag.InitFlags(cmd.Flags())
	cmd.AddCommand(a.commands...)
	if a.run != nil {
		cmd.RunE = a.execute
	}

	var fss flag.NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
		for _, fs := range fss.FlagSets {
			cmd.Flags().AddFlagSet(fs)
		}
	}

	global := fss.FlagSet("global")
	if !a.noVersion {
		verflag.AddFlags(global)
	}
	if !a.noConfig {
		addConfigFlag(global)
	}
	addHelpFlag(a.name, global)
	cmd.Flags().AddFlagSet(global)

	setHelp(cmd, fss)

	return cmd
}

func (a *App) execute(cmd *cobra.Command, _ []string) error {
	if !a.noVersion {
		verflag.PrintAndExitIfRequested()
	}
	if err := a.loadOptions(cmd); err != nil {
		return err
	}
	if !a.quiet {
		a.banner(cmd)
	}

	return a.run(cmd.Context())
}

// loadOptions merges config file and env into the options, then completes
// and validates them.
func (a *App) loadOptions(cmd *cobra.Command) error {
	if a.options == nil {
		return nil
	}
	if !a.noConfig {
		bindEnv(a.name)
		if err := loadConfig(a.name, cfgFile); err != nil {
			return err
		}
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if err := viper.Unmarshal(a.options); err != nil {
			return err
		}
	}
	if c, ok := a.options.(Completer); ok {
		if err := c.Complete(); err != nil {
			return err
		}
	}

	return multierr.Combine(a.options.Validate()...)
}

func (a *App) banner(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	printWorkingDir(out)
	flag.PrintFlags(out, cmd.Flags())

	log.Infof("%v Starting %s ...", progressMessage, a.short)
	if !a.noVersion {
		log.Infof("%v Version: `%s`", progressMessage, version.Get().ToJSON())
	}
	if !a.noConfig {
		log.Infof("%v Config file used: `%s`", progressMessage, viper.ConfigFileUsed())
	}
	if p, ok := a.options.(fmt.Stringer); ok {
		log.Infof("%v Config: `%s`", progressMessage, p.String())
	}
}
