package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/eventmgr/internal/app"
	"github.com/dshills/eventmgr/internal/event"
	"github.com/dshills/eventmgr/internal/script"
)

type runFlags struct {
	timeout time.Duration
	stats   bool
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <script.lua>",
		Short: "Run a Lua script against the event bus",
		Long: `Run a Lua script with a "bus" table bound to a fresh event bus.

The command returns once the script, every queued Lua subscriber and every
asynchronous emit have finished.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, closeLog, err := flags.options(os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			a, err := app.New(opts)
			if err != nil {
				return err
			}

			return a.Run(cmd.Context(), func(ctx context.Context) error {
				host := script.NewHost(a.Bus,
					script.WithLogger(a.Logger),
					script.WithExecutionTimeout(rf.timeout),
				)
				defer host.Close()

				if err := host.RunFile(ctx, args[0]); err != nil {
					return err
				}

				settleCtx, cancel := context.WithTimeout(ctx, rf.timeout)
				defer cancel()
				if err := host.Settle(settleCtx); err != nil {
					return fmt.Errorf("settle: %w", err)
				}

				if rf.stats {
					return printStats(cmd.OutOrStdout(), a.Bus.Stats(), host)
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&rf.timeout, "timeout", script.DefaultTimeout, "limit for the script and for pending work afterwards")
	cmd.Flags().BoolVar(&rf.stats, "stats", false, "print bus statistics when done")
	return cmd
}

func printStats(w io.Writer, s event.Stats, host *script.Host) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		name  string
		value any
	}{
		{"emits", s.Emits},
		{"async emits", s.AsyncEmits},
		{"misses", s.Misses},
		{"invocations", s.Invocations},
		{"panics", s.Panics},
		{"reaped", s.Reaped},
		{"rejected", s.Rejected},
		{"subscriptions", s.Subscriptions},
		{"targets", s.Targets},
		{"lua invocations", host.Invoked()},
		{"lua failures", host.Failed()},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%v\n", r.name, r.value)
	}
	return tw.Flush()
}
