// Package template holds the two fixed keyword tables of simpio and the
// positional substitution used to expand them.
//
// Program ops configure a state machine and expand into the program's
// initializer; driver ops expand into a processor's body. The template text
// is an external contract: downstream builds depend on it byte for byte.
package template

import (
	"regexp"
	"strconv"
	"strings"
)

// Template is a keyword's text with ordinal markers <1>, <2>, ...
type Template struct {
	Keyword string
	Text    string
	Arity   int
}

type ProgramOp int

const (
	JmpPin ProgramOp = iota
	SetPins
	InPins
	OutPins
	SideSetPins
	SideSetCount
	ShiftCtlOut
	ShiftCtlIn
	ExecCtrlStatusSel
	FifoMerge
	ClkDiv
	UserVar
	UserProcessor
	numProgramOps
)

const pinInit = " \n    for (uint itmp=<1>; itmp < <1> + <2>; itmp++) pio_gpio_init(pio, itmp); \n    pio_sm_set_consecutive_pindirs(pio, sm, <1>, <2>, true);"

var programTemplates = [numProgramOps]Template{
	JmpPin:            {Keyword: "JMP_PIN", Text: "sm_config_set_jmp_pin(&sm_config,<1>);", Arity: 1},
	SetPins:           {Keyword: "SET_PINS", Text: "sm_config_set_set_pins(&sm_config,<1>,<2>);" + pinInit, Arity: 2},
	InPins:            {Keyword: "IN_PINS", Text: "sm_config_set_in_pins(&sm_config,<1>);", Arity: 1},
	OutPins:           {Keyword: "OUT_PINS", Text: "sm_config_set_out_pins(&sm_config,<1>,<2>);" + pinInit, Arity: 2},
	SideSetPins:       {Keyword: "SIDE_SET_PINS", Text: "sm_config_set_sideset_pins(&sm_config,<1>);", Arity: 1},
	SideSetCount:      {Keyword: "SIDE_SET_COUNT", Text: "sm_config_set_sideset(&sm_config,<1>,<2>,<3>);", Arity: 3},
	ShiftCtlOut:       {Keyword: "SHIFTCTL_OUT", Text: "sm_config_set_out_shift(&sm_config,<1>,<2>,<3>);", Arity: 3},
	ShiftCtlIn:        {Keyword: "SHIFTCTL_IN", Text: "sm_config_set_in_shift(&sm_config,<1>,<2>,<3>);", Arity: 3},
	ExecCtrlStatusSel: {Keyword: "EXECCTRL_STATUS_SEL", Text: "sm_config_set_mov_status(&sm_config,<1>,<2>);", Arity: 2},
	FifoMerge:         {Keyword: "FIFO_MERGE", Text: "sm_config_set_fifo_join(&sm_config,<1>);", Arity: 1},
	ClkDiv:            {Keyword: "CLKDIV", Text: "sm_config_set_clkdiv_int_frac (&sm_config, <1>, 0);", Arity: 1},
	UserVar:           {Keyword: "USER_VAR", Text: "uint32_t <1> = 0;", Arity: 1},
	// Kept so old inputs using it as an instruction still classify.
	UserProcessor: {Keyword: "USER_PROCESSOR", Text: "\n", Arity: 0},
}

type DriverOp int

const (
	Write DriverOp = iota
	Read
	Print
	DataRead
	DataReadln
	DataWrite
	DataSet
	DataPrint
	DataClear
	Exit
	Pin
	numDriverOps
)

var driverTemplates = [numDriverOps]Template{
	Write:      {Keyword: "WRITE", Text: "pio_sm_put_blocking(pio, sm, <1>);", Arity: 1},
	Read:       {Keyword: "READ", Text: "<1> = pio_sm_get_blocking(pio, sm);", Arity: 1},
	Print:      {Keyword: "PRINT", Text: `printf("%d\n", <1>);`, Arity: 1},
	DataRead:   {Keyword: "DATA READ", Text: "data_read(pio, sm, data, <1>);", Arity: 1},
	DataReadln: {Keyword: "DATA READLN", Text: "data_readln(pio, sm, data, DATA_MAX);", Arity: 0},
	DataWrite:  {Keyword: "DATA WRITE", Text: "data_write(pio, sm, data);", Arity: 0},
	DataSet:    {Keyword: "DATA SET", Text: `snprintf(data, DATA_MAX, "%s", "<1>");`, Arity: 1},
	DataPrint:  {Keyword: "DATA PRINT", Text: `printf("%s\n", data);`, Arity: 0},
	DataClear:  {Keyword: "DATA CLEAR", Text: `data[0] = '\0';`, Arity: 0},
	Exit:       {Keyword: "EXIT", Text: "", Arity: 0},
	Pin:        {Keyword: "PIN", Text: "gpio_put(<1>, <2>);", Arity: 2},
}

var (
	programByKeyword = make(map[string]ProgramOp, numProgramOps)
	driverByKeyword  = make(map[string]DriverOp, numDriverOps)
)

func init() {
	for op, t := range programTemplates {
		programByKeyword[t.Keyword] = ProgramOp(op)
	}
	for op, t := range driverTemplates {
		driverByKeyword[t.Keyword] = DriverOp(op)
	}
}

// LookupProgram finds a program op by keyword, ignoring case and
// surrounding whitespace.
func LookupProgram(keyword string) (ProgramOp, bool) {
	op, ok := programByKeyword[strings.ToUpper(strings.TrimSpace(keyword))]
	return op, ok
}

// LookupDriver finds a driver op by keyword. Compound DATA keywords use a
// single space between the two words.
func LookupDriver(keyword string) (DriverOp, bool) {
	op, ok := driverByKeyword[strings.ToUpper(strings.TrimSpace(keyword))]
	return op, ok
}

func (op ProgramOp) Template() Template {
	if op < 0 || op >= numProgramOps {
		return Template{}
	}
	return programTemplates[op]
}

func (op ProgramOp) String() string { return op.Template().Keyword }

func (op ProgramOp) Expand(args []string) string { return Substitute(op.Template().Text, args) }

func (op DriverOp) Template() Template {
	if op < 0 || op >= numDriverOps {
		return Template{}
	}
	return driverTemplates[op]
}

func (op DriverOp) String() string { return op.Template().Keyword }

func (op DriverOp) Expand(args []string) string { return Substitute(op.Template().Text, args) }

// ProgramOps returns every program op in table order.
func ProgramOps() []ProgramOp {
	ops := make([]ProgramOp, numProgramOps)
	for i := range ops {
		ops[i] = ProgramOp(i)
	}
	return ops
}

// DriverOps returns every driver op in table order.
func DriverOps() []DriverOp {
	ops := make([]DriverOp, numDriverOps)
	for i := range ops {
		ops[i] = DriverOp(i)
	}
	return ops
}

// Substitute replaces marker <k> with args[k-1], one argument at a time in
// order. Markers without an argument are left as they are; arguments past
// the last marker are ignored.
func Substitute(text string, args []string) string {
	result := text
	for i, arg := range args {
		result = strings.ReplaceAll(result, "<"+strconv.Itoa(i+1)+">", arg)
	}
	return result
}

var markerRE = regexp.MustCompile(`<[0-9]+>`)

// Unresolved lists the distinct markers still present in text, in order of
// first appearance.
func Unresolved(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range markerRE.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
