package codec

import (
	"errors"
	"testing"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		n       int
		want    int
		wantErr bool
		pos     int
	}{
		{"exact", "123", 3, 123, false, 3},
		{"prefix", "0521/0624", 4, 521, false, 4},
		{"short", "12", 3, 0, true, 0},
		{"letter", "1A3", 3, 0, true, 0},
		{"slashes", "///", 3, 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.input)
			got, err := Digits(c, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Digits(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Digits(%q) = %d, want %d", tt.input, got, tt.want)
			}
			if c.Pos() != tt.pos {
				t.Errorf("Pos() = %d, want %d", c.Pos(), tt.pos)
			}
		})
	}
}

func TestDigitsOrMissing(t *testing.T) {
	c := NewCursor("///045")
	v, ok, err := DigitsOrMissing(c, 3)
	if err != nil || ok || v != 0 {
		t.Errorf("sentinel = (%d, %v, %v), want (0, false, nil)", v, ok, err)
	}
	v, ok, err = DigitsOrMissing(c, 3)
	if err != nil || !ok || v != 45 {
		t.Errorf("value = (%d, %v, %v), want (45, true, nil)", v, ok, err)
	}

	// A short sentinel is malformed, not absent.
	c = NewCursor("//1")
	if _, _, err := DigitsOrMissing(c, 3); err == nil {
		t.Error("expected error for partial sentinel")
	}
}

func TestEndOfInput(t *testing.T) {
	c := NewCursor("1")
	_, err := Digits(c, 2)
	if !errors.Is(err, ErrEndOfInput) {
		t.Errorf("error = %v, want ErrEndOfInput", err)
	}
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a *SyntaxError", err)
	}
	if se.Offset != 0 {
		t.Errorf("Offset = %d, want 0", se.Offset)
	}
}

func TestSignedDigits(t *testing.T) {
	tests := []struct {
		input string
		neg   string
		pos   string
		n     int
		want  int
	}{
		{"MS123", "MS", "PS", 3, -123},
		{"PS045", "MS", "PS", 3, 45},
		{"M05", "M", "", 2, -5},
		{"12", "M", "", 2, 12},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SignedDigits(NewCursor(tt.input), tt.neg, tt.pos, tt.n)
			if err != nil {
				t.Fatalf("SignedDigits(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SignedDigits(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}

	c := NewCursor("MSX12")
	if _, err := SignedDigits(c, "MS", "PS", 3); err == nil {
		t.Error("expected error for non-digit body")
	}
	if c.Pos() != 0 {
		t.Errorf("failed read moved cursor to %d", c.Pos())
	}
}

func TestReadFraction(t *testing.T) {
	f, err := ReadFraction(NewCursor("3/4SM"))
	if err != nil {
		t.Fatalf("ReadFraction error: %v", err)
	}
	if f.Float() != 0.75 {
		t.Errorf("Float() = %v, want 0.75", f.Float())
	}

	c := NewCursor("10SM")
	if _, err := ReadFraction(c); err == nil {
		t.Error("expected error without slash")
	}
	if c.Pos() != 0 {
		t.Errorf("failed read moved cursor to %d", c.Pos())
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"72", 72},
		{"-5 ", -5},
		{"+10", 10},
	}
	for _, tt := range tests {
		got, err := Int(NewCursor(tt.input))
		if err != nil {
			t.Errorf("Int(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
	if _, err := Int(NewCursor("N/A")); err == nil {
		t.Error("expected error for N/A")
	}
}

func TestCursorTokens(t *testing.T) {
	c := NewCursor("TAF AMD\nKIAD 052059Z")
	if !c.Tag("TAF") {
		t.Fatal("Tag(TAF) = false")
	}
	if n := c.SkipSpace(); n != 1 {
		t.Errorf("SkipSpace() = %d, want 1", n)
	}
	if w := c.Word(); w != "AMD" {
		t.Errorf("Word() = %q, want AMD", w)
	}
	if c.SkipSpace() != 0 {
		t.Error("SkipSpace crossed a line break")
	}
	if c.SkipWhitespace() != 1 {
		t.Error("SkipWhitespace did not consume the line break")
	}
	if got := c.Line(); got != "KIAD 052059Z" {
		t.Errorf("Line() = %q", got)
	}
	if !c.Done() {
		t.Error("Done() = false at end of input")
	}
}

func TestRecoverAdvances(t *testing.T) {
	fail := func(c *Cursor) (int, error) {
		c.Take(2)
		return 0, c.Errorf("nothing")
	}
	noSkip := func(*Cursor) {}

	c := NewCursor("abc")
	_, rec := Recover[int](c, fail, noSkip)
	if rec == nil {
		t.Fatal("expected a recovery record")
	}
	if c.Pos() != 1 {
		t.Errorf("Pos() = %d, want 1 after a non-advancing skip", c.Pos())
	}
	if rec.Skipped != "a" {
		t.Errorf("Skipped = %q, want %q", rec.Skipped, "a")
	}

	// Repeated recovery must consume all input in a bounded number of steps.
	steps := 0
	for !c.Done() {
		Recover[int](c, fail, noSkip)
		steps++
		if steps > 10 {
			t.Fatal("recovery loop did not terminate")
		}
	}
}

func TestRecoverSkipPast(t *testing.T) {
	c := NewCursor("BAD GROUP= NEXT")
	fail := func(c *Cursor) (string, error) { return "", c.Errorf("group") }
	_, rec := Recover[string](c, fail, SkipPast('='))
	if rec == nil {
		t.Fatal("expected a recovery record")
	}
	if rec.Skipped != "BAD GROUP=" {
		t.Errorf("Skipped = %q", rec.Skipped)
	}
	if c.Rest() != " NEXT" {
		t.Errorf("Rest() = %q", c.Rest())
	}

	ok := func(c *Cursor) (string, error) { return c.Word(), nil }
	c.SkipSpace()
	v, rec := Recover[string](c, ok, SkipRest)
	if rec != nil || v != "NEXT" {
		t.Errorf("Recover = (%q, %v), want (NEXT, nil)", v, rec)
	}
}

func TestLengthMetres(t *testing.T) {
	tests := []struct {
		l    Length
		want float64
	}{
		{Length{Value: 6, Unit: StatuteMiles}, 9656.064},
		{Length{Value: 1000, Unit: Feet}, 304.8},
		{Length{Value: 15, Unit: Decimeters}, 1.5},
		{Length{Value: 9999, Unit: Meters}, 9999},
	}
	for _, tt := range tests {
		got := tt.l.Metres()
		if diff := got - tt.want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("%v.Metres() = %v, want %v", tt.l, got, tt.want)
		}
	}
}
