package codec

import (
	"fmt"
	"strings"
)

// Parser reads one value from a cursor. A failed parser should leave the
// cursor where it started.
type Parser[T any] func(*Cursor) (T, error)

// Skipper advances the cursor past input that could not be parsed.
type Skipper func(*Cursor)

// Recovered records a group that was skipped after its grammar failed.
type Recovered struct {
	Offset  int    `json:"offset"`
	Skipped string `json:"skipped"`
	Err     error  `json:"-"`
	Message string `json:"message"`
}

func (r *Recovered) Error() string {
	return fmt.Sprintf("recovered at offset %d: %s (skipped %q)", r.Offset, r.Message, r.Skipped)
}

// Unwrap returns the error that triggered recovery.
func (r *Recovered) Unwrap() error {
	return r.Err
}

// Recover runs primary. On failure the cursor is rewound to where primary
// started, skip is applied, and the zero value is returned with a record of
// what was skipped. The skip always advances by at least one byte unless the
// input is exhausted, so loops built on Recover terminate.
func Recover[T any](c *Cursor, primary Parser[T], skip Skipper) (T, *Recovered) {
	start := c.Mark()
	v, err := primary(c)
	if err == nil {
		return v, nil
	}
	c.Reset(start)
	skip(c)
	if c.Pos() == start && !c.Done() {
		c.pos++
	}
	var zero T
	return zero, &Recovered{
		Offset:  start,
		Skipped: c.src[start:c.pos],
		Err:     err,
		Message: err.Error(),
	}
}

// SkipUntil advances to the first byte in stops without consuming it.
func SkipUntil(stops string) Skipper {
	return func(c *Cursor) {
		c.TakeUntil(stops)
	}
}

// SkipPast advances past the first occurrence of b, or to the end of input.
func SkipPast(b byte) Skipper {
	return func(c *Cursor) {
		i := strings.IndexByte(c.Rest(), b)
		if i < 0 {
			c.pos = len(c.src)
			return
		}
		c.pos += i + 1
	}
}

// SkipWord advances over the current run of non-whitespace bytes.
func SkipWord(c *Cursor) {
	c.Word()
}

// SkipRest consumes all remaining input.
func SkipRest(c *Cursor) {
	c.pos = len(c.src)
}
