package codec

import (
	"errors"
	"fmt"
)

// ErrEndOfInput is wrapped by SyntaxError when a reader runs out of input.
var ErrEndOfInput = errors.New("unexpected end of input")

// SyntaxError reports what a reader expected at a given offset.
type SyntaxError struct {
	Offset   int    `json:"offset"`
	Expected string `json:"expected"`
	Found    string `json:"found"`
	eof      bool
}

func (e *SyntaxError) Error() string {
	if e.eof {
		return fmt.Sprintf("offset %d: expected %s, found end of input", e.Offset, e.Expected)
	}
	return fmt.Sprintf("offset %d: expected %s, found %q", e.Offset, e.Expected, e.Found)
}

// Unwrap lets errors.Is match ErrEndOfInput.
func (e *SyntaxError) Unwrap() error {
	if e.eof {
		return ErrEndOfInput
	}
	return nil
}

// Errorf builds a SyntaxError at the current position. The format describes
// what was expected.
func (c *Cursor) Errorf(format string, args ...any) error {
	if c.Done() {
		return c.eof(format, args...)
	}
	return &SyntaxError{
		Offset:   c.pos,
		Expected: fmt.Sprintf(format, args...),
		Found:    c.PeekN(12),
	}
}

func (c *Cursor) eof(format string, args ...any) error {
	return &SyntaxError{
		Offset:   c.pos,
		Expected: fmt.Sprintf(format, args...),
		eof:      true,
	}
}
