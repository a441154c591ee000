package main

import (
	"context"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/eventmgr/internal/app"
	"github.com/dshills/eventmgr/internal/demo"
)

func newDemoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Drive the event bus from the keyboard",
		Long: `Start the interactive terminal demo.

  o   register the global "e" handler four times
  k   register a one-shot "e" handler on the demo target
  e   emit global "e" asynchronously with a random value
  t   emit "e" synchronously on the demo target
  x   remove every subscription of the demo target
  c   clear events
  q   quit

Logs are discarded unless --log-file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, closeLog, err := flags.options(io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			a, err := app.New(opts)
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}

			return a.Run(cmd.Context(), func(ctx context.Context) error {
				if err := screen.Init(); err != nil {
					return err
				}
				defer screen.Fini()

				d := demo.New(a.Bus, a.Config.Demo.Target,
					demo.WithLogger(a.Logger),
					demo.WithClearIncludesGlobal(a.Config.Demo.ClearIncludesGlobal),
				)
				err := d.Run(ctx, screen)
				if ctx.Err() != nil {
					return nil
				}
				return err
			})
		},
	}
}
