// Package codes holds the code tables and token grammars shared by the
// aviation and surface report decoders.
package codes

import (
	"emwin_parser/internal/codec"
)

// Wind is a dddff(Gfmfm)KT|MPS wind group. Direction is nil when the wind
// is variable or the direction is not reported (///), and Speed is nil when
// the speed is not reported (//).
type Wind struct {
	Direction *codec.Degrees  `json:"direction,omitempty"`
	Variable  bool            `json:"variable,omitempty"`
	Speed     *codec.Velocity `json:"speed,omitempty"`
	Gust      *codec.Velocity `json:"gust,omitempty"`
}

// Calm reports whether the group is 00000, which is distinct from a wind
// that was not reported.
func (w Wind) Calm() bool {
	return w.Direction != nil && *w.Direction == 0 && w.Speed != nil && w.Speed.Value == 0
}

// ParseDirection reads a three-digit direction. VRB reads as variable and
// /// as not reported; both return a nil direction.
func ParseDirection(c *codec.Cursor) (*codec.Degrees, bool, error) {
	if c.Tag("VRB") {
		return nil, true, nil
	}
	d, ok, err := codec.DigitsOrMissing(c, 3)
	if err != nil || !ok {
		return nil, false, err
	}
	deg := codec.Degrees(d)
	return &deg, false, nil
}

// ParseWind reads a wind group such as 18015G24KT or VRB03MPS.
func ParseWind(c *codec.Cursor) (Wind, error) {
	mark := c.Mark()
	w, err := parseWind(c)
	if err != nil {
		c.Reset(mark)
		return Wind{}, err
	}
	return w, nil
}

func parseWind(c *codec.Cursor) (Wind, error) {
	var w Wind
	dir, variable, err := ParseDirection(c)
	if err != nil {
		return w, err
	}
	w.Direction = dir
	w.Variable = variable

	speed, ok, err := windSpeed(c)
	if err != nil {
		return w, err
	}

	var gust *int
	if c.Tag("G") {
		g, gok, err := windSpeed(c)
		if err != nil {
			return w, err
		}
		if gok {
			gust = &g
		}
	}

	unit, err := codec.ReadSpeedUnit(c)
	if err != nil {
		return w, err
	}
	if ok {
		w.Speed = &codec.Velocity{Value: float64(speed), Unit: unit}
	}
	if gust != nil {
		w.Gust = &codec.Velocity{Value: float64(*gust), Unit: unit}
	}
	return w, nil
}

// windSpeed reads two or three digits (P99 style speeds of 100+ use three).
// It reports false for // meaning not reported.
func windSpeed(c *codec.Cursor) (int, bool, error) {
	if c.Tag("//") {
		return 0, false, nil
	}
	var v int
	var err error
	if c.Tag("P") {
		v, err = codec.Digits(c, 2)
	} else {
		v, err = codec.DigitRun(c, 2, 3)
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// VariableWind is the dddVddd extreme directions group.
type VariableWind struct {
	From codec.Degrees `json:"from"`
	To   codec.Degrees `json:"to"`
}

// ParseVariableWind reads dddVddd.
func ParseVariableWind(c *codec.Cursor) (VariableWind, error) {
	mark := c.Mark()
	from, err := codec.Digits(c, 3)
	if err != nil {
		return VariableWind{}, err
	}
	if !c.Tag("V") {
		c.Reset(mark)
		return VariableWind{}, c.Errorf("dddVddd")
	}
	to, err := codec.Digits(c, 3)
	if err != nil {
		c.Reset(mark)
		return VariableWind{}, err
	}
	return VariableWind{From: codec.Degrees(from), To: codec.Degrees(to)}, nil
}
