package codec

import (
	"strings"
)

// Digits reads exactly n ASCII digits as a decimal number.
func Digits(c *Cursor, n int) (int, error) {
	s := c.PeekN(n)
	if len(s) < n {
		return 0, c.eof("%d digits", n)
	}
	v := 0
	for i := 0; i < n; i++ {
		if !IsDigit(s[i]) {
			return 0, c.Errorf("%d digits", n)
		}
		v = v*10 + int(s[i]-'0')
	}
	c.pos += n
	return v, nil
}

// DigitsOrMissing reads n digits, or n slashes meaning "not reported".
// The bool result is false when the sentinel was read.
func DigitsOrMissing(c *Cursor, n int) (int, bool, error) {
	if c.Tag(strings.Repeat("/", n)) {
		return 0, false, nil
	}
	v, err := Digits(c, n)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// DigitRun reads between lo and hi digits, stopping at the first non-digit.
func DigitRun(c *Cursor, lo, hi int) (int, error) {
	mark := c.Mark()
	v := 0
	n := 0
	for n < hi && IsDigit(c.Peek()) {
		v = v*10 + int(c.Peek()-'0')
		c.pos++
		n++
	}
	if n < lo {
		c.Reset(mark)
		return 0, c.Errorf("%d to %d digits", lo, hi)
	}
	return v, nil
}

// Int reads an optionally '-' or '+' signed decimal integer of any width.
func Int(c *Cursor) (int, error) {
	mark := c.Mark()
	neg := false
	switch c.Peek() {
	case '-':
		neg = true
		c.pos++
	case '+':
		c.pos++
	}
	v, err := DigitRun(c, 1, 9)
	if err != nil {
		c.Reset(mark)
		return 0, c.Errorf("integer")
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Sign reads one of the given tokens and returns -1 for the negative token and
// 1 for the positive one. An empty positive token makes the sign optional.
func Sign(c *Cursor, negative, positive string) (int, error) {
	if c.Tag(negative) {
		return -1, nil
	}
	if positive == "" || c.Tag(positive) {
		return 1, nil
	}
	return 0, c.Errorf("%q or %q", negative, positive)
}

// SignedDigits reads a sign token followed by n digits, e.g. M05 or MS123.
func SignedDigits(c *Cursor, negative, positive string, n int) (int, error) {
	mark := c.Mark()
	sign, err := Sign(c, negative, positive)
	if err != nil {
		return 0, err
	}
	v, err := Digits(c, n)
	if err != nil {
		c.Reset(mark)
		return 0, err
	}
	return sign * v, nil
}

// Fraction is a ratio such as the 1/4 in "1 1/4SM".
type Fraction struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

// Float returns the fraction as a decimal value.
func (f Fraction) Float() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

// ReadFraction reads "n/d" with one or two digits on each side.
func ReadFraction(c *Cursor) (Fraction, error) {
	mark := c.Mark()
	num, err := DigitRun(c, 1, 2)
	if err != nil {
		return Fraction{}, err
	}
	if !c.Tag("/") {
		c.Reset(mark)
		return Fraction{}, c.Errorf("fraction")
	}
	den, err := DigitRun(c, 1, 2)
	if err != nil || den == 0 {
		c.Reset(mark)
		return Fraction{}, c.Errorf("fraction denominator")
	}
	return Fraction{Num: num, Den: den}, nil
}

// Letter reads one upper-case letter.
func Letter(c *Cursor) (byte, error) {
	b := c.Peek()
	if !IsUpper(b) {
		return 0, c.Errorf("letter")
	}
	c.pos++
	return b, nil
}
