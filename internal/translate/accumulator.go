package translate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pborges/simpio/internal/directive"
	"github.com/pborges/simpio/internal/pico"
	"github.com/pborges/simpio/internal/template"
)

type State int

const (
	NoProgram State = iota
	InProgram
	InDriver
)

func (s State) String() string {
	switch s {
	case InProgram:
		return "program"
	case InDriver:
		return "driver"
	default:
		return "none"
	}
}

type Options struct {
	// Strict rejects unresolved template markers and unknown .CONFIG/DATA
	// keywords instead of passing them through.
	Strict bool
	// Serial is the transport used when the input never sets one.
	Serial pico.Serial
	Logger *zap.Logger
}

// Project is the accumulated result of one input.
type Project struct {
	Programs []*ProgramContext
	Drivers  []*DriverContext
	// Text holds pass-through and .program lines in input order.
	Text   []string
	Serial pico.Serial
}

// Driver returns the context for proc, if declared.
func (p *Project) Driver(proc pico.Processor) (*DriverContext, bool) {
	for _, d := range p.Drivers {
		if d.Processor == proc {
			return d, true
		}
	}
	return nil, false
}

// Accumulator consumes classified lines in order. The current program and
// driver are always the last ones created.
type Accumulator struct {
	opts     Options
	log      *zap.Logger
	project  Project
	state    State
	resolved bool
}

func NewAccumulator(opts Options) *Accumulator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Accumulator{
		opts:    opts,
		log:     log,
		project: Project{Serial: opts.Serial},
	}
}

func (a *Accumulator) State() State { return a.state }

func (a *Accumulator) currentProgram() *ProgramContext {
	if n := len(a.project.Programs); n > 0 {
		return a.project.Programs[n-1]
	}
	return nil
}

func (a *Accumulator) currentDriver() *DriverContext {
	if n := len(a.project.Drivers); n > 0 {
		return a.project.Drivers[n-1]
	}
	return nil
}

// Apply feeds one classified line into the accumulator.
func (a *Accumulator) Apply(line int, d directive.Directive) error {
	if a.resolved {
		return fmt.Errorf("line %d: %w: input already resolved", line, ErrMisplaced)
	}
	if err := a.apply(d); err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	return nil
}

func (a *Accumulator) apply(d directive.Directive) error {
	switch d := d.(type) {
	case directive.ProgramStart:
		prog := newProgram(d.Name, len(a.project.Programs))
		a.project.Programs = append(a.project.Programs, prog)
		a.project.Text = append(a.project.Text, d.Raw)
		a.state = InProgram
		a.log.Debug("program declared", zap.String("program", d.Name), zap.Int("index", prog.Index))

	case directive.ConfigBlock:
		prog := a.currentProgram()
		if prog == nil {
			return fmt.Errorf("%w: .CONFIG PIO", ErrNoProgram)
		}
		return prog.setBlock(d.Block)

	case directive.ConfigSlot:
		prog := a.currentProgram()
		if prog == nil {
			return fmt.Errorf("%w: .CONFIG SM", ErrNoProgram)
		}
		return prog.setSlot(d.Slot)

	case directive.ConfigSerial:
		a.project.Serial = d.Mode

	case directive.ConfigDriver:
		prog := a.currentProgram()
		if prog == nil {
			return fmt.Errorf("%w: .CONFIG USER_PROCESSOR %d", ErrNoProgram, d.Processor)
		}
		if _, dup := a.project.Driver(d.Processor); dup {
			return fmt.Errorf("%w: %d", ErrDuplicateProcessor, d.Processor)
		}
		a.project.Drivers = append(a.project.Drivers, newDriver(d.Processor, prog.ref()))
		a.state = InDriver
		a.log.Debug("user processor declared",
			zap.Stringer("processor", d.Processor),
			zap.String("program", prog.Name),
			zap.Stringer("block", prog.Block),
			zap.Int("sm", prog.Slot))

	case directive.ConfigVar:
		if a.state != InDriver {
			return fmt.Errorf("%w: .CONFIG USER_VAR outside a user processor", ErrMisplaced)
		}
		stmt, err := a.expand(template.UserVar.Template(), d.Args)
		if err != nil {
			return err
		}
		a.currentDriver().append(stmt)

	case directive.DriverInstruction:
		if a.state != InDriver {
			return fmt.Errorf("%w: %s outside a user processor", ErrMisplaced, d.Op)
		}
		stmt, err := a.expand(d.Op.Template(), d.Args)
		if err != nil {
			return err
		}
		a.currentDriver().append(stmt)

	case directive.ProgramInstruction:
		if a.state != InProgram {
			return fmt.Errorf("%w: %s outside a program configuration", ErrMisplaced, d.Op)
		}
		stmt, err := a.expand(d.Op.Template(), d.Args)
		if err != nil {
			return err
		}
		prog := a.currentProgram()
		prog.Init = append(prog.Init, stmt)

	case directive.PassThrough:
		if a.opts.Strict && d.Unknown != "" {
			return fmt.Errorf("%w: %s", ErrUnknownDirective, d.Unknown)
		}
		a.project.Text = append(a.project.Text, d.Raw)

	default:
		return fmt.Errorf("unhandled directive %T", d)
	}
	return nil
}

func (a *Accumulator) expand(tpl template.Template, args []string) (string, error) {
	stmt := template.Substitute(tpl.Text, args)
	if a.opts.Strict {
		if left := template.Unresolved(stmt); len(left) > 0 {
			return "", fmt.Errorf("%w: %s needs %d argument(s), missing %s",
				ErrUnresolved, tpl.Keyword, tpl.Arity, strings.Join(left, " "))
		}
	}
	return stmt, nil
}
