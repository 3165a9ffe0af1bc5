package codes

import (
	"emwin_parser/internal/codec"
)

// SeaState is code table 3700.
type SeaState int

const (
	Glassy SeaState = iota
	Rippled
	Wavelets
	Slight
	ModerateSea
	Rough
	VeryRough
	High
	VeryHigh
	Phenomenal
)

var seaStateNames = [...]string{
	"glassy", "rippled", "wavelets", "slight", "moderate",
	"rough", "very_rough", "high", "very_high", "phenomenal",
}

func (s SeaState) String() string {
	if s < 0 || int(s) >= len(seaStateNames) {
		return "unknown"
	}
	return seaStateNames[s]
}

// MarshalText encodes the sea state name.
func (s SeaState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeaState reads one code 3700 digit.
func ParseSeaState(c *codec.Cursor) (SeaState, error) {
	b := c.Peek()
	if !codec.IsDigit(b) {
		return 0, c.Errorf("state of the sea (code table 3700)")
	}
	c.Byte()
	return SeaState(b - '0'), nil
}

// SeaSurface is the WTsTs/SS' or WTsTs/HHsHsHs group of a METAR.
type SeaSurface struct {
	Temperature *codec.Celsius `json:"temperature,omitempty"`
	State       *SeaState      `json:"state,omitempty"`
	WaveHeight  *codec.Length  `json:"wave_height,omitempty"`
}

// ParseSeaSurface reads W followed by the sea temperature and either S and a
// sea state or H and a wave height in decimetres.
func ParseSeaSurface(c *codec.Cursor) (SeaSurface, error) {
	mark := c.Mark()
	ss, err := parseSeaSurface(c)
	if err != nil {
		c.Reset(mark)
		return SeaSurface{}, err
	}
	return ss, nil
}

func parseSeaSurface(c *codec.Cursor) (SeaSurface, error) {
	var ss SeaSurface
	if err := c.Expect("W"); err != nil {
		return ss, err
	}
	if !c.Tag("//") {
		t, err := ParseTemperature(c, 2)
		if err != nil {
			return ss, err
		}
		ss.Temperature = &t
	}
	if err := c.Expect("/"); err != nil {
		return ss, err
	}
	switch {
	case c.Tag("S"):
		if c.Tag("/") {
			break
		}
		st, err := ParseSeaState(c)
		if err != nil {
			return ss, err
		}
		ss.State = &st
	case c.Tag("H"):
		h, ok, err := codec.DigitsOrMissing(c, 3)
		if err != nil {
			return ss, err
		}
		if ok {
			ss.WaveHeight = &codec.Length{Value: float64(h), Unit: codec.Decimeters}
		}
	default:
		return ss, c.Errorf("S or H")
	}
	if !c.AtBoundary() {
		return ss, c.Errorf("end of sea surface group")
	}
	return ss, nil
}

// ParseTemperature reads n digits of whole degrees Celsius with an optional
// leading M for minus.
func ParseTemperature(c *codec.Cursor, n int) (codec.Celsius, error) {
	v, err := codec.SignedDigits(c, "M", "", n)
	if err != nil {
		return 0, err
	}
	return codec.Celsius(v), nil
}

// TemperaturePair is the T'T'/T'dT'd group.
type TemperaturePair struct {
	Air      *codec.Celsius `json:"air,omitempty"`
	Dewpoint *codec.Celsius `json:"dewpoint,omitempty"`
}

// ParseTemperaturePair reads 18/12, M05/M08 or 22/// style groups.
func ParseTemperaturePair(c *codec.Cursor) (TemperaturePair, error) {
	mark := c.Mark()
	var tp TemperaturePair
	read := func() (*codec.Celsius, error) {
		if c.Tag("//") {
			return nil, nil
		}
		t, err := ParseTemperature(c, 2)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	var err error
	if tp.Air, err = read(); err != nil {
		c.Reset(mark)
		return TemperaturePair{}, err
	}
	if !c.Tag("/") {
		c.Reset(mark)
		return TemperaturePair{}, c.Errorf("/")
	}
	if tp.Dewpoint, err = read(); err != nil {
		c.Reset(mark)
		return TemperaturePair{}, err
	}
	if !c.AtBoundary() {
		c.Reset(mark)
		return TemperaturePair{}, c.Errorf("end of temperature group")
	}
	return tp, nil
}
