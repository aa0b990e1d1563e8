// Package translate turns a simpio input into a Project: the ordered
// program and driver contexts plus the pass-through program text.
package translate

import (
	"strings"

	"github.com/pborges/simpio/internal/directive"
)

// Translate classifies and accumulates every line of src, then resolves the
// result. Any error aborts the whole translation; no partial project is
// returned.
func Translate(src []byte, opts Options) (*Project, error) {
	acc := NewAccumulator(opts)
	for i, raw := range splitLines(string(src)) {
		line := i + 1
		d, err := directive.Classify(raw, line)
		if err != nil {
			return nil, err
		}
		if err := acc.Apply(line, d); err != nil {
			return nil, err
		}
	}
	return acc.Resolve()
}

// splitLines splits on newlines and drops the empty remainder after a
// trailing newline. Carriage returns stay on the line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
