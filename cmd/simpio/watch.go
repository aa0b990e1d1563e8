package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pborges/simpio/internal/watch"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "watch <input>",
		Short: "Rebuild the artifacts every time the input changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd, g, f, args[0])
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			w, err := watch.New(b.input, b.Build, watch.Options{Logger: b.log})
			if err != nil {
				return err
			}
			// A broken input is reported and then watched until it is fixed.
			if err := b.Build(cmd.Context()); err != nil {
				b.log.Error("build failed", zap.Error(err))
			}
			return w.Run(cmd.Context())
		},
	}
	f.register(cmd)
	return cmd
}
