package codes

import (
	"emwin_parser/internal/codec"
)

// Compass is one of the eight compass points.
type Compass int

const (
	North Compass = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var compassNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (d Compass) String() string {
	if d < 0 || int(d) >= len(compassNames) {
		return "?"
	}
	return compassNames[d]
}

// MarshalText encodes the compass point abbreviation.
func (d Compass) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Degrees returns the bearing of the compass point.
func (d Compass) Degrees() codec.Degrees {
	return codec.Degrees(float64(d) * 45)
}

// ParseCompass reads a one or two letter compass point.
func ParseCompass(c *codec.Cursor) (Compass, error) {
	// Two-letter points first so NE is not read as N.
	for _, d := range []Compass{NorthEast, SouthEast, SouthWest, NorthWest, North, East, South, West} {
		if c.Tag(compassNames[d]) {
			return d, nil
		}
	}
	return 0, c.Errorf("compass point")
}

// ParseLatitude reads DDMM followed by N or S and returns signed degrees.
func ParseLatitude(c *codec.Cursor) (float64, error) {
	return degreesMinutes(c, 2, 'N', 'S', 90)
}

// ParseLongitude reads DDDMM followed by E or W and returns signed degrees.
func ParseLongitude(c *codec.Cursor) (float64, error) {
	return degreesMinutes(c, 3, 'E', 'W', 180)
}

func degreesMinutes(c *codec.Cursor, width int, pos, neg byte, limit int) (float64, error) {
	mark := c.Mark()
	deg, err := codec.Digits(c, width)
	if err != nil {
		return 0, err
	}
	mins, err := codec.Digits(c, 2)
	if err != nil {
		c.Reset(mark)
		return 0, err
	}
	if deg > limit || mins >= 60 {
		c.Reset(mark)
		return 0, c.Errorf("degrees and minutes")
	}
	v := float64(deg) + float64(mins)/60
	switch c.Peek() {
	case pos:
	case neg:
		v = -v
	default:
		c.Reset(mark)
		return 0, c.Errorf("hemisphere %c or %c", pos, neg)
	}
	c.Byte()
	return v, nil
}
