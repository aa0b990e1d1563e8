package testutil

import (
	"bufio"
	"fmt"
	"strings"
)

// InitBlock is one `% c-sdk` block parsed back out of generated program text.
type InitBlock struct {
	Func  string
	Lines []string
}

// ParseInitBlocks returns every c-sdk initializer block in pio text, in
// order. Body lines are returned without their indentation.
func ParseInitBlocks(pio string) ([]InitBlock, error) {
	var blocks []InitBlock
	var cur *InitBlock
	inSDK := false
	scanner := bufio.NewScanner(strings.NewReader(pio))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		switch {
		case text == "% c-sdk {":
			if inSDK {
				return nil, fmt.Errorf("line %d: nested c-sdk block", line)
			}
			inSDK = true
		case text == "%}":
			if !inSDK {
				return nil, fmt.Errorf("line %d: stray %%}", line)
			}
			inSDK = false
		case inSDK && strings.HasPrefix(text, "static inline void ") && strings.HasSuffix(text, "() {"):
			name := strings.TrimSuffix(strings.TrimPrefix(text, "static inline void "), "() {")
			blocks = append(blocks, InitBlock{Func: name})
			cur = &blocks[len(blocks)-1]
		case inSDK && text == "}":
			cur = nil
		case inSDK && cur != nil:
			cur.Lines = append(cur.Lines, strings.TrimSpace(text))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inSDK {
		return nil, fmt.Errorf("unterminated c-sdk block")
	}
	return blocks, nil
}

// FunctionBody returns the trimmed body lines of the C function whose
// header line is `signature {`. The body ends at the first unindented `}`.
func FunctionBody(src, signature string) ([]string, bool) {
	header := signature + " {"
	var body []string
	found := false
	for _, text := range strings.Split(src, "\n") {
		if !found {
			found = text == header
			continue
		}
		if text == "}" {
			return body, true
		}
		body = append(body, strings.TrimSpace(text))
	}
	return nil, false
}

// IndexOf returns the position of the first line equal to want, or -1.
func IndexOf(lines []string, want string) int {
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	return -1
}
