// Package pico holds the small fixed enumerations of the RP2040 target:
// PIO blocks, stdio transports and processor cores.
package pico

import (
	"errors"
	"fmt"
	"strings"
)

type Block int

const (
	Block0 Block = iota
	Block1
)

type blockData struct {
	name     string
	instance string
}

var blocks = []blockData{
	Block0: {name: "block0", instance: "pio0"},
	Block1: {name: "block1", instance: "pio1"},
}

// ParseBlock maps a `.CONFIG PIO` argument to a block. Only "1" selects
// block1; everything else, including a missing argument, is block0.
func ParseBlock(tok string) Block {
	if tok == "1" {
		return Block1
	}
	return Block0
}

func (b Block) data() blockData {
	if b < 0 || int(b) >= len(blocks) {
		return blockData{}
	}
	return blocks[b]
}

func (b Block) String() string { return b.data().name }

// Instance is the pico-sdk PIO instance symbol for the block.
func (b Block) Instance() string { return b.data().instance }

type Serial int

const (
	SerialRS232 Serial = iota
	SerialUSB
)

// ParseSerial reports SerialUSB for "USB" in any case and SerialRS232 for
// anything else.
func ParseSerial(tok string) Serial {
	if strings.EqualFold(tok, "USB") {
		return SerialUSB
	}
	return SerialRS232
}

func (s Serial) String() string {
	if s == SerialUSB {
		return "usb"
	}
	return "rs232"
}

type Processor int

const (
	Core0 Processor = iota
	Core1
)

var ErrProcessorID = errors.New("invalid processor id")

type processorData struct {
	entry     string
	signature string
}

var processors = []processorData{
	Core0: {entry: "main", signature: "int main()"},
	Core1: {entry: "core1_entry", signature: "void core1_entry()"},
}

// NumProcessors is the number of cores a driver program can run on.
const NumProcessors = 2

func ParseProcessor(tok string) (Processor, error) {
	switch tok {
	case "0":
		return Core0, nil
	case "1":
		return Core1, nil
	default:
		return 0, fmt.Errorf("%w %q (max user processors is %d)", ErrProcessorID, tok, NumProcessors-1)
	}
}

func (p Processor) data() processorData {
	if p < 0 || int(p) >= len(processors) {
		return processorData{}
	}
	return processors[p]
}

func (p Processor) String() string { return fmt.Sprintf("core%d", int(p)) }

// EntryPoint is the C function name the core starts in.
func (p Processor) EntryPoint() string { return p.data().entry }

// Signature is the C function header for the core's body.
func (p Processor) Signature() string { return p.data().signature }
