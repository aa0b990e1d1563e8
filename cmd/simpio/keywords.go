package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pborges/simpio/internal/template"
)

func newKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List the program and user processor keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "program keywords (.CONFIG KEYWORD args):")
			for _, op := range template.ProgramOps() {
				t := op.Template()
				fmt.Fprintf(out, "  %-22s %d\n", t.Keyword, t.Arity)
			}
			fmt.Fprintln(out, "user processor keywords:")
			for _, op := range template.DriverOps() {
				t := op.Template()
				fmt.Fprintf(out, "  %-22s %d\n", t.Keyword, t.Arity)
			}
			return nil
		},
	}
}
