package launch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseError reports a syntax problem in a launch file, with a 1-based
// line and column pointing at the offending byte.
type ParseError struct {
	Line int
	Col  int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Col, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes launch.json data. The editor dialect is accepted:
// line and block comments plus trailing commas before ] or }.
func Parse(data []byte) (File, error) {
	clean, err := stripJSONC(data)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(clean, &f); err != nil {
		return File{}, locate(clean, err)
	}
	if f.Configurations == nil {
		f.Configurations = []Preset{}
	}
	return f, nil
}

// stripJSONC blanks comments and trailing commas with spaces so byte
// offsets in the result still line up with the input. Newlines inside
// comments are kept for line counting.
func stripJSONC(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	const (
		code = iota
		inString
		lineComment
		blockComment
	)
	state := code
	escaped := false
	commentStart := 0

	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '"':
				state = inString
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				commentStart = i
				out[i], out[i+1] = ' ', ' '
				i++
			}
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				state = code
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				state = code
				out[i], out[i+1] = ' ', ' '
				i++
			} else if c != '\n' {
				out[i] = ' '
			}
		}
	}
	if state == blockComment {
		line, col := lineCol(out, int64(commentStart))
		return nil, &ParseError{Line: line, Col: col, Err: errors.New("unterminated block comment")}
	}

	// Second pass: blank commas whose next non-whitespace byte closes a
	// container. Comments are already gone, so only strings need care.
	inStr, esc := false, false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case ',':
			j := i + 1
			for j < len(out) && (out[j] == ' ' || out[j] == '\t' || out[j] == '\n' || out[j] == '\r') {
				j++
			}
			if j < len(out) && (out[j] == '}' || out[j] == ']') {
				out[i] = ' '
			}
		}
	}
	return out, nil
}

// locate wraps decoder errors that carry an offset with line/column
// information. Offsets are valid for the stripped bytes, which line up
// with the original input.
func locate(data []byte, err error) error {
	var off int64 = -1
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syn):
		off = syn.Offset
	case errors.As(err, &typ):
		off = typ.Offset
	}
	if off < 0 {
		return err
	}
	line, col := lineCol(data, off)
	return &ParseError{Line: line, Col: col, Err: err}
}

func lineCol(data []byte, off int64) (line, col int) {
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:off] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
