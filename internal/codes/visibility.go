package codes

import (
	"emwin_parser/internal/codec"
)

// ParseVisibility reads a prevailing visibility token: P6SM, M1/4SM, 1 1/2SM,
// 3/4SM, 10SM or a bare four digit metric value. The cursor must be at the
// start of the token.
func ParseVisibility(c *codec.Cursor) (codec.Length, error) {
	mark := c.Mark()
	l, err := parseVisibility(c)
	if err != nil {
		c.Reset(mark)
		return codec.Length{}, err
	}
	if !c.AtBoundary() && !c.HasPrefix("NDV") {
		c.Reset(mark)
		return codec.Length{}, c.Errorf("end of visibility")
	}
	c.Tag("NDV")
	return l, nil
}

func parseVisibility(c *codec.Cursor) (codec.Length, error) {
	miles := func(v float64) codec.Length {
		return codec.Length{Value: v, Unit: codec.StatuteMiles}
	}

	if c.Tag("P6SM") {
		return miles(6), nil
	}
	// Less than the reportable minimum.
	if c.Tag("M") {
		if _, err := codec.ReadFraction(c); err != nil {
			return codec.Length{}, err
		}
		if err := c.Expect("SM"); err != nil {
			return codec.Length{}, err
		}
		return miles(0), nil
	}

	if f, err := codec.ReadFraction(c); err == nil {
		if err := c.Expect("SM"); err != nil {
			return codec.Length{}, err
		}
		return miles(f.Float()), nil
	}

	start := c.Mark()
	whole, err := codec.DigitRun(c, 1, 4)
	if err != nil {
		return codec.Length{}, c.Errorf("visibility")
	}
	if c.Tag("SM") {
		return miles(float64(whole)), nil
	}

	// "1 1/2SM"
	afterWhole := c.Mark()
	if c.SkipSpace() > 0 {
		if f, err := codec.ReadFraction(c); err == nil && c.Tag("SM") {
			return miles(float64(whole) + f.Float()), nil
		}
		c.Reset(afterWhole)
	}

	if afterWhole-start != 4 {
		return codec.Length{}, c.Errorf("four digit visibility")
	}
	return codec.Length{Value: float64(whole), Unit: codec.Meters}, nil
}

// MinimumVisibility is the VNVNVNVNDv group of a METAR.
type MinimumVisibility struct {
	Visibility codec.Length `json:"visibility"`
	Direction  Compass      `json:"direction"`
}

// ParseMinimumVisibility reads four digits followed by a compass point.
func ParseMinimumVisibility(c *codec.Cursor) (MinimumVisibility, error) {
	mark := c.Mark()
	v, err := codec.Digits(c, 4)
	if err != nil {
		return MinimumVisibility{}, err
	}
	dir, err := ParseCompass(c)
	if err != nil {
		c.Reset(mark)
		return MinimumVisibility{}, err
	}
	return MinimumVisibility{
		Visibility: codec.Length{Value: float64(v), Unit: codec.Meters},
		Direction:  dir,
	}, nil
}
