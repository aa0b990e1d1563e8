package directive

import (
	"github.com/pborges/simpio/internal/pico"
	"github.com/pborges/simpio/internal/template"
)

// Directive is the classification of one input line.
type Directive interface{ isDirective() }

type ProgramStart struct {
	Name string
	Raw  string
}

func (ProgramStart) isDirective() {}

type ConfigBlock struct{ Block pico.Block }

func (ConfigBlock) isDirective() {}

type ConfigSlot struct{ Slot int }

func (ConfigSlot) isDirective() {}

type ConfigSerial struct{ Mode pico.Serial }

func (ConfigSerial) isDirective() {}

type ConfigDriver struct{ Processor pico.Processor }

func (ConfigDriver) isDirective() {}

type ConfigVar struct{ Args []string }

func (ConfigVar) isDirective() {}

type DriverInstruction struct {
	Op   template.DriverOp
	Args []string
}

func (DriverInstruction) isDirective() {}

type ProgramInstruction struct {
	Op   template.ProgramOp
	Args []string
}

func (ProgramInstruction) isDirective() {}

// PassThrough is copied verbatim into the program text. Unknown is set when
// the line looked like a directive keyword simpio does not know, e.g.
// ".CONFIG FOO" or "DATA FOO".
type PassThrough struct {
	Raw     string
	Unknown string
}

func (PassThrough) isDirective() {}
