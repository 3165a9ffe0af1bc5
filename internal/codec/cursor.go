// Package codec provides the fixed-width field readers shared by every report
// decoder: a text cursor, numerals with "not reported" sentinels, unit-tagged
// quantities and the group recovery combinator.
package codec

import (
	"strings"
)

// Cursor reads tokens from the front of a bulletin body.
type Cursor struct {
	src string
	pos int // Byte offset of the next unread character.
}

// NewCursor creates a cursor positioned at the start of src.
func NewCursor(src string) *Cursor {
	return &Cursor{src: src}
}

// Pos returns the byte offset of the next unread character.
func (c *Cursor) Pos() int {
	return c.pos
}

// Mark returns a position that can later be passed to Reset.
func (c *Cursor) Mark() int {
	return c.pos
}

// Reset rewinds (or forwards) the cursor to a position returned by Mark.
func (c *Cursor) Reset(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark > len(c.src) {
		mark = len(c.src)
	}
	c.pos = mark
}

// Rest returns the unread input.
func (c *Cursor) Rest() string {
	return c.src[c.pos:]
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.src) - c.pos
}

// Done reports whether all input has been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.src)
}

// Peek returns the next byte without consuming it, or 0 at end of input.
func (c *Cursor) Peek() byte {
	if c.Done() {
		return 0
	}
	return c.src[c.pos]
}

// PeekN returns up to n unread bytes without consuming them.
func (c *Cursor) PeekN(n int) string {
	if n > c.Len() {
		n = c.Len()
	}
	return c.src[c.pos : c.pos+n]
}

// HasPrefix reports whether the unread input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	return strings.HasPrefix(c.Rest(), s)
}

// Byte consumes one byte.
func (c *Cursor) Byte() (byte, error) {
	if c.Done() {
		return 0, c.eof("any character")
	}
	b := c.src[c.pos]
	c.pos++
	return b, nil
}

// Take consumes exactly n bytes.
func (c *Cursor) Take(n int) (string, error) {
	if n > c.Len() {
		return "", c.eof("%d characters", n)
	}
	s := c.src[c.pos : c.pos+n]
	c.pos += n
	return s, nil
}

// Tag consumes s if the unread input starts with it.
func (c *Cursor) Tag(s string) bool {
	if !c.HasPrefix(s) {
		return false
	}
	c.pos += len(s)
	return true
}

// Expect consumes s or fails without consuming anything.
func (c *Cursor) Expect(s string) error {
	if c.Tag(s) {
		return nil
	}
	return c.Errorf("%q", s)
}

// OneOf consumes the first of the given tags that matches and returns it.
// Callers must order tags so that no tag is a prefix of a later one.
func (c *Cursor) OneOf(tags ...string) (string, bool) {
	for _, t := range tags {
		if c.Tag(t) {
			return t, true
		}
	}
	return "", false
}

// TakeWhile consumes bytes while pred holds and returns them.
func (c *Cursor) TakeWhile(pred func(byte) bool) string {
	start := c.pos
	for c.pos < len(c.src) && pred(c.src[c.pos]) {
		c.pos++
	}
	return c.src[start:c.pos]
}

// TakeUntil consumes bytes up to (not including) the first byte in stops.
func (c *Cursor) TakeUntil(stops string) string {
	return c.TakeWhile(func(b byte) bool {
		return strings.IndexByte(stops, b) < 0
	})
}

// Word consumes a run of non-whitespace bytes.
func (c *Cursor) Word() string {
	return c.TakeWhile(func(b byte) bool { return !IsSpace(b) })
}

// SkipSpace consumes spaces and tabs but stops at line breaks.
func (c *Cursor) SkipSpace() int {
	return len(c.TakeWhile(IsBlank))
}

// SkipWhitespace consumes spaces, tabs and line breaks.
func (c *Cursor) SkipWhitespace() int {
	return len(c.TakeWhile(IsSpace))
}

// Space consumes at least one space or tab.
func (c *Cursor) Space() error {
	if c.SkipSpace() == 0 {
		return c.Errorf("space")
	}
	return nil
}

// Whitespace consumes at least one whitespace byte including line breaks.
func (c *Cursor) Whitespace() error {
	if c.SkipWhitespace() == 0 {
		return c.Errorf("whitespace")
	}
	return nil
}

// Line consumes the rest of the current line and its terminator.
func (c *Cursor) Line() string {
	line := c.TakeUntil("\n")
	c.Tag("\n")
	return strings.TrimRight(line, "\r")
}

// AtBoundary reports whether the cursor is at the end of a token.
func (c *Cursor) AtBoundary() bool {
	if c.Done() {
		return true
	}
	b := c.Peek()
	return IsSpace(b) || b == '='
}

// IsBlank reports whether b is a space or tab.
func IsBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

// IsSpace reports whether b is ASCII whitespace.
func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// IsDigit reports whether b is an ASCII digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IsUpper reports whether b is an ASCII upper-case letter.
func IsUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// IsAlnum reports whether b is an ASCII upper-case letter or digit.
func IsAlnum(b byte) bool {
	return IsUpper(b) || IsDigit(b)
}
