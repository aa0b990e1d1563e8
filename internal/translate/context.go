package translate

import (
	"fmt"

	"github.com/pborges/simpio/internal/pico"
)

// ProgramContext is one declared state-machine program and its generated
// initializer.
type ProgramContext struct {
	Name  string
	Index int
	Block pico.Block
	Slot  int
	Init  []string

	blockSet bool
	slotSet  bool
	closed   bool
}

func newProgram(name string, index int) *ProgramContext {
	return &ProgramContext{Name: name, Index: index, Block: pico.Block0}
}

func (p *ProgramContext) BlockSet() bool { return p.blockSet }
func (p *ProgramContext) SlotSet() bool  { return p.slotSet }

// InitFunc is the C name of the program's initializer.
func (p *ProgramContext) InitFunc() string { return p.Name + "_init" }

func (p *ProgramContext) setBlock(b pico.Block) error {
	if p.blockSet {
		return fmt.Errorf("%w: program %s already uses %s", ErrAlreadyConfigured, p.Name, p.Block)
	}
	p.Block = b
	p.blockSet = true
	p.Init = append(p.Init,
		"PIO pio = "+b.Instance()+";",
		"uint offset = pio_add_program(pio, &"+p.Name+"_program);",
		"pio_sm_config sm_config = "+p.Name+"_program_get_default_config(offset);",
	)
	return nil
}

func (p *ProgramContext) setSlot(slot int) error {
	if p.slotSet {
		return fmt.Errorf("%w: program %s already uses state machine %d", ErrAlreadyConfigured, p.Name, p.Slot)
	}
	p.Slot = slot
	p.slotSet = true
	p.Init = append(p.Init, fmt.Sprintf("uint sm = %d;\n    pio_sm_claim(pio, sm);", slot))
	return nil
}

// close appends the enable sequence. Only the first call has an effect.
func (p *ProgramContext) close() {
	if p.closed {
		return
	}
	p.closed = true
	p.Init = append(p.Init,
		"pio_sm_init(pio, sm, offset, &sm_config);",
		"pio_sm_set_enabled(pio, sm, true);",
	)
}

// ProgramRef is the view of a program a driver captured when it was
// declared. Later changes to the program do not reach it.
type ProgramRef struct {
	Name    string
	Block   pico.Block
	Slot    int
	SlotSet bool
}

func (p *ProgramContext) ref() ProgramRef {
	return ProgramRef{Name: p.Name, Block: p.Block, Slot: p.Slot, SlotSet: p.slotSet}
}

// Stmt is one statement node of a driver body.
type Stmt interface{ isStmt() }

// Text is a finished statement. The empty Text renders as nothing.
type Text string

func (Text) isStmt() {}

// LaunchSite marks where the core 1 launch goes once the number of driver
// contexts is known.
type LaunchSite struct{}

func (LaunchSite) isStmt() {}

// DriverContext is one processor entry point and its generated body.
type DriverContext struct {
	Processor pico.Processor
	Program   ProgramRef
	Body      []Stmt
}

func newDriver(proc pico.Processor, prog ProgramRef) *DriverContext {
	d := &DriverContext{Processor: proc, Program: prog}
	d.append(
		"char data[DATA_MAX];",
		"PIO pio = "+prog.Block.Instance()+";",
		fmt.Sprintf("uint sm = %d;", prog.Slot),
	)
	if proc == pico.Core0 {
		d.append(
			"stdio_init_all();",
			"sleep_ms(2000);",
			`printf("simpio: starting\n");`,
		)
		d.Body = append(d.Body, LaunchSite{})
	}
	d.append(prog.Name + "_init();")
	return d
}

func (d *DriverContext) append(stmts ...string) {
	for _, s := range stmts {
		d.Body = append(d.Body, Text(s))
	}
}

// Statements returns the body as text. An unresolved launch site is an
// error so a body is never rendered half-built.
func (d *DriverContext) Statements() ([]string, error) {
	out := make([]string, 0, len(d.Body))
	for _, s := range d.Body {
		switch s := s.(type) {
		case Text:
			out = append(out, string(s))
		case LaunchSite:
			return nil, fmt.Errorf("%s body: launch site not resolved", d.Processor)
		}
	}
	return out, nil
}
