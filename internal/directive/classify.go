// Package directive classifies simpio input lines. Classification is pure:
// it reads no state besides the line itself, so each line can be tested on
// its own.
package directive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pborges/simpio/internal/pico"
	"github.com/pborges/simpio/internal/template"
)

var ErrMalformed = errors.New("malformed directive")

// Classify returns the directive for one raw line. The first matching rule
// wins: DATA compounds, .PROGRAM, the .CONFIG family, driver keywords,
// program keywords, and finally pass-through.
func Classify(raw string, line int) (Directive, error) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return PassThrough{Raw: raw}, nil
	}

	if strings.EqualFold(words[0], "DATA") {
		return classifyData(raw, words), nil
	}

	head := strings.ToUpper(words[0])
	if head == ".PROGRAM" {
		if len(words) < 2 {
			return nil, fmt.Errorf("line %d: %w: .PROGRAM needs a name", line, ErrMalformed)
		}
		return ProgramStart{Name: words[1], Raw: raw}, nil
	}
	if head == ".CONFIG" && len(words) > 1 {
		d, err := classifyConfig(raw, words)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if d != nil {
			return d, nil
		}
	}

	if op, ok := template.LookupDriver(words[0]); ok {
		return DriverInstruction{Op: op, Args: words[1:]}, nil
	}
	if len(words) > 1 {
		if op, ok := template.LookupProgram(words[1]); ok {
			return ProgramInstruction{Op: op, Args: words[2:]}, nil
		}
	}
	if head == ".CONFIG" {
		unknown := head
		if len(words) > 1 {
			unknown += " " + strings.ToUpper(words[1])
		}
		return PassThrough{Raw: raw, Unknown: unknown}, nil
	}
	return PassThrough{Raw: raw}, nil
}

// classifyConfig handles the .CONFIG directives that change accumulator
// state. It returns nil when the second word is not one of them, so the
// line can still match a program keyword.
func classifyConfig(raw string, words []string) (Directive, error) {
	arg := ""
	if len(words) > 2 {
		arg = words[2]
	}
	switch strings.ToUpper(words[1]) {
	case "PIO":
		return ConfigBlock{Block: pico.ParseBlock(arg)}, nil
	case "SM":
		slot, err := strconv.Atoi(arg)
		if err != nil || slot < 0 {
			return nil, fmt.Errorf("%w: invalid state machine %q", ErrMalformed, arg)
		}
		return ConfigSlot{Slot: slot}, nil
	case "SERIAL":
		return ConfigSerial{Mode: pico.ParseSerial(arg)}, nil
	case "USER_PROCESSOR":
		p, err := pico.ParseProcessor(arg)
		if err != nil {
			return nil, err
		}
		return ConfigDriver{Processor: p}, nil
	case "USER_VAR":
		return ConfigVar{Args: words[2:]}, nil
	}
	return nil, nil
}

func classifyData(raw string, words []string) Directive {
	if len(words) < 2 {
		return PassThrough{Raw: raw}
	}
	keyword := "DATA " + strings.ToUpper(words[1])
	op, ok := template.LookupDriver(keyword)
	if !ok {
		// The compound counts as word 0, so word 1 of the merged line is
		// the third word of the raw line.
		if len(words) > 2 {
			if pop, ok := template.LookupProgram(words[2]); ok {
				return ProgramInstruction{Op: pop, Args: words[3:]}
			}
		}
		return PassThrough{Raw: raw, Unknown: keyword}
	}
	if op == template.DataSet {
		var args []string
		if payload := strings.TrimSpace(restAfter(raw, 2)); payload != "" {
			args = []string{payload}
		}
		return DriverInstruction{Op: op, Args: args}
	}
	return DriverInstruction{Op: op, Args: words[2:]}
}

// restAfter returns raw with its first n whitespace-separated words removed.
func restAfter(raw string, n int) string {
	s := raw
	for i := 0; i < n; i++ {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		s = s[end:]
	}
	return s
}
