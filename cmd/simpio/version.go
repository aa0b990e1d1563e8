package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pborges/simpio"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the simpio version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), simpio.Version())
		},
	}
}
