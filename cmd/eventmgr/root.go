package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/eventmgr/internal/app"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFile    string
	watch      bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "eventmgr",
		Short: "In-process event bus with a Lua script host and a terminal demo",
		Long: `eventmgr runs an in-process publish/subscribe event bus.

Callbacks are registered per target and event name and triggered
synchronously or on a worker pool. Use "demo" for the interactive
keyboard demo or "run" to drive the bus from a Lua script.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to configuration file (.toml, .yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	pf.BoolVar(&flags.watch, "watch", false, "reload the configuration file when it changes")

	cmd.AddCommand(
		newDemoCmd(flags),
		newRunCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// options converts the flags into application options. fallback receives
// logs when no log file is given.
func (f *rootFlags) options(fallback io.Writer) (app.Options, func(), error) {
	opts := app.Options{
		ConfigPath:  f.configPath,
		LogLevel:    f.logLevel,
		LogOutput:   fallback,
		WatchConfig: f.watch,
	}
	if f.logFile == "" {
		return opts, func() {}, nil
	}

	file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return opts, nil, fmt.Errorf("open log file: %w", err)
	}
	opts.LogOutput = file
	return opts, func() { _ = file.Close() }, nil
}
