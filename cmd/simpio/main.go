package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// ExitError carries a specific exit code out of run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "error:", exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	verbose    bool
	logFormat  string
	configPath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "simpio",
		Short: "simpio - generate pico-sdk projects from PIO directives",
		Long: `simpio reads a PIO assembly file annotated with .CONFIG directives and
user processor statements, and generates a pico-sdk project from it:

  CMakeLists.txt   build descriptor
  NAME.pio         the program text plus one c-sdk initializer per program
  NAME.c           the driver, with main and optionally core1_entry`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: console or json")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: simpio.yaml or simpio.hcl next to the input)")

	root.AddCommand(
		newBuildCmd(g),
		newWatchCmd(g),
		newKeywordsCmd(),
		newVersionCmd(),
	)
	return root
}
