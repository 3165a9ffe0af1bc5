package codes

import (
	"emwin_parser/internal/codec"
)

// CloudAmount is the NsNsNs cover of a layer.
type CloudAmount int

const (
	// VerticalVisibility marks a VV group where the sky is obscured and the
	// height is the vertical visibility.
	VerticalVisibility CloudAmount = iota
	Few
	Scattered
	Broken
	Overcast
)

func (a CloudAmount) String() string {
	switch a {
	case Few:
		return "FEW"
	case Scattered:
		return "SCT"
	case Broken:
		return "BKN"
	case Overcast:
		return "OVC"
	default:
		return "VV"
	}
}

// MarshalText encodes the three letter code.
func (a CloudAmount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Convective is the CB/TCU annotation of a cloud layer.
type Convective int

const (
	NotConvective Convective = iota
	Cumulonimbus
	ToweringCumulus
	ConvectiveNotObserved
)

func (cv Convective) String() string {
	switch cv {
	case Cumulonimbus:
		return "CB"
	case ToweringCumulus:
		return "TCU"
	case ConvectiveNotObserved:
		return "///"
	default:
		return ""
	}
}

// MarshalText encodes the annotation.
func (cv Convective) MarshalText() ([]byte, error) {
	return []byte(cv.String()), nil
}

// CloudReport is one cloud layer.
type CloudReport struct {
	Amount     CloudAmount   `json:"amount"`
	Height     *codec.Length `json:"height,omitempty"`
	Convective Convective    `json:"convective,omitempty"`
}

// ParseHeight1690 reads a three digit height in units of 30 m (code table 1690).
// /// reads as not reported.
func ParseHeight1690(c *codec.Cursor) (*codec.Length, error) {
	v, ok, err := codec.DigitsOrMissing(c, 3)
	if err != nil || !ok {
		return nil, err
	}
	return &codec.Length{Value: float64(v) * 30, Unit: codec.Meters}, nil
}

// clearSkyCodes end a cloud list without reporting any layer.
var clearSkyCodes = []string{"NSC", "SKC", "CLR", "NCD"}

// ParseClearSky reads one of the no-cloud codes.
func ParseClearSky(c *codec.Cursor) (string, bool) {
	mark := c.Mark()
	code, ok := c.OneOf(clearSkyCodes...)
	if !ok {
		return "", false
	}
	if !c.AtBoundary() {
		c.Reset(mark)
		return "", false
	}
	return code, true
}

// ParseCloud reads one cloud layer such as BKN030CB or VV002.
func ParseCloud(c *codec.Cursor) (CloudReport, error) {
	mark := c.Mark()
	var r CloudReport

	switch {
	case c.Tag("VV"):
		r.Amount = VerticalVisibility
	case c.Tag("FEW"):
		r.Amount = Few
	case c.Tag("SCT"):
		r.Amount = Scattered
	case c.Tag("BKN"):
		r.Amount = Broken
	case c.Tag("OVC"):
		r.Amount = Overcast
	default:
		return r, c.Errorf("cloud amount")
	}

	h, err := ParseHeight1690(c)
	if err != nil {
		c.Reset(mark)
		return CloudReport{}, err
	}
	r.Height = h

	switch {
	case c.Tag("TCU"):
		r.Convective = ToweringCumulus
	case c.Tag("CB"):
		r.Convective = Cumulonimbus
	case c.Tag("///"):
		r.Convective = ConvectiveNotObserved
	}

	if !c.AtBoundary() {
		c.Reset(mark)
		return CloudReport{}, c.Errorf("end of cloud group")
	}
	return r, nil
}
