package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pborges/simpio/internal/config"
	"github.com/pborges/simpio/internal/emit"
	"github.com/pborges/simpio/internal/logging"
	"github.com/pborges/simpio/internal/translate"
)

type buildFlags struct {
	output  string
	project string
	strict  bool
	quiet   bool
	dryRun  bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (default: the input's directory)")
	cmd.Flags().StringVar(&f.project, "project", "", "project name (default: the input's base name)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject unresolved markers and unknown keywords")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "do not echo the generated artifacts")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "translate and echo only, write nothing")
}

func newBuildCmd(g *globalFlags) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build <input>",
		Short: "Generate CMakeLists.txt, NAME.pio and NAME.c from an input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBuilder(cmd, g, f, args[0])
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck
			return b.Build(cmd.Context())
		},
	}
	f.register(cmd)
	return cmd
}

// builder holds everything one build of one input needs. It is reused
// across rebuilds by the watch command.
type builder struct {
	input   string
	outDir  string
	project string
	opts    translate.Options
	quiet   bool
	dryRun  bool
	stdout  io.Writer
	log     *zap.Logger
}

// newBuilder resolves the settings for input. Precedence is defaults, then
// the config file, then SIMPIO_* variables, then explicit flags.
func newBuilder(cmd *cobra.Command, g *globalFlags, f *buildFlags, input string) (*builder, error) {
	var cfg *config.Config
	var err error
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, err = config.Discover(filepath.Dir(input))
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = f.output
	}
	if flags.Changed("project") {
		cfg.Project = f.project
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		log.Debug("config loaded", zap.String("path", cfg.Path))
	}

	b := &builder{
		input:   input,
		outDir:  cfg.OutputDir,
		project: cfg.Project,
		quiet:   cfg.Quiet,
		dryRun:  f.dryRun,
		stdout:  cmd.OutOrStdout(),
		log:     log,
		opts: translate.Options{
			Strict: cfg.Strict,
			Serial: cfg.SerialMode(),
			Logger: log,
		},
	}
	if b.outDir == "" {
		b.outDir = filepath.Dir(input)
	}
	if b.project == "" {
		b.project = projectName(input)
	}
	return b, nil
}

func projectName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Build translates the input and writes the artifacts. Nothing is written
// unless the whole input translates.
func (b *builder) Build(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.ReadFile(b.input)
	if err != nil {
		return err
	}
	p, err := translate.Translate(src, b.opts)
	if err != nil {
		return err
	}
	a, err := emit.Render(b.project, p)
	if err != nil {
		return err
	}
	if !b.quiet {
		if err := emit.Echo(b.stdout, a); err != nil {
			return err
		}
	}
	if b.dryRun {
		b.log.Debug("dry run, nothing written", zap.String("project", b.project))
		return nil
	}
	for _, f := range a.Files() {
		if samePath(filepath.Join(b.outDir, f.Name), b.input) {
			return fmt.Errorf("refusing to overwrite input %s", b.input)
		}
	}
	if err := emit.Write(b.outDir, a); err != nil {
		return err
	}
	b.log.Info("artifacts written",
		zap.String("dir", b.outDir),
		zap.String("project", b.project),
		zap.Int("programs", len(p.Programs)),
		zap.Int("user_processors", len(p.Drivers)))
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}
