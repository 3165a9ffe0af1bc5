package wmo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArea is returned for an A1A2 pair outside the country/area alphabet.
	ErrInvalidArea = errors.New("invalid area code")
	// ErrInvalidGeographicArea is returned for an A1 letter outside table C3.
	ErrInvalidGeographicArea = errors.New("invalid geographical area designator")
	// ErrInvalidReferenceTime is returned for an A2 letter outside the time table.
	ErrInvalidReferenceTime = errors.New("invalid reference time designator")
	// ErrInvalidLevel is returned for an ii pair that is not two digits.
	ErrInvalidLevel = errors.New("invalid level designator")
)

// AreaCode is the A1A2 country or area designator (table C1).
type AreaCode struct {
	a1, a2 byte
}

// ParseAreaCode validates a two letter area code.
func ParseAreaCode(a1, a2 byte) (AreaCode, error) {
	if !isUpper(a1) || !isUpper(a2) {
		return AreaCode{}, fmt.Errorf("%w: %c%c", ErrInvalidArea, a1, a2)
	}
	return AreaCode{a1, a2}, nil
}

func (a AreaCode) String() string {
	return string([]byte{a.a1, a.a2})
}

// MarshalText encodes the two letters.
func (a AreaCode) MarshalText() ([]byte, error) {
	return []byte{a.a1, a.a2}, nil
}

// Hemisphere is the latitude belt of a geographical area.
type Hemisphere int

const (
	NorthernHemisphere Hemisphere = iota
	TropicalBelt
	SouthernHemisphere
)

func (h Hemisphere) String() string {
	switch h {
	case TropicalBelt:
		return "tropical_belt"
	case SouthernHemisphere:
		return "southern_hemisphere"
	default:
		return "northern_hemisphere"
	}
}

// LongitudeBand is the longitude range of a geographical area.
type LongitudeBand int

const (
	AllLongitudes LongitudeBand = iota
	ZeroToNinetyWest
	NinetyWestTo180
	OneEightyToNinetyEast
	NinetyEastToZero
	FortyFiveWestTo180
)

func (b LongitudeBand) String() string {
	switch b {
	case ZeroToNinetyWest:
		return "0-90W"
	case NinetyWestTo180:
		return "90W-180"
	case OneEightyToNinetyEast:
		return "180-90E"
	case NinetyEastToZero:
		return "90E-0"
	case FortyFiveWestTo180:
		return "45W-180"
	default:
		return "all"
	}
}

// GeographicArea is the single letter A1 area designator (table C3).
type GeographicArea struct {
	letter     byte
	Hemisphere Hemisphere    `json:"hemisphere"`
	Band       LongitudeBand `json:"band"`
	// Global covers both hemispheres.
	Global bool `json:"global,omitempty"`
}

var bands = [...]LongitudeBand{ZeroToNinetyWest, NinetyWestTo180, OneEightyToNinetyEast, NinetyEastToZero}

// ParseGeographicArea decodes one of the sixteen table C3 letters.
func ParseGeographicArea(c byte) (GeographicArea, error) {
	g := GeographicArea{letter: c}
	switch {
	case c >= 'A' && c <= 'D':
		g.Hemisphere, g.Band = NorthernHemisphere, bands[c-'A']
	case c >= 'E' && c <= 'H':
		g.Hemisphere, g.Band = TropicalBelt, bands[c-'E']
	case c >= 'I' && c <= 'L':
		g.Hemisphere, g.Band = SouthernHemisphere, bands[c-'I']
	case c == 'N':
		g.Hemisphere = NorthernHemisphere
	case c == 'S':
		g.Hemisphere = SouthernHemisphere
	case c == 'T':
		g.Hemisphere, g.Band = NorthernHemisphere, FortyFiveWestTo180
	case c == 'X':
		g.Global = true
	default:
		return GeographicArea{}, fmt.Errorf("%w: %c", ErrInvalidGeographicArea, c)
	}
	return g, nil
}

// Letter returns the table C3 letter.
func (g GeographicArea) Letter() byte {
	return g.letter
}

func (g GeographicArea) String() string {
	if g.Global {
		return "global"
	}
	return fmt.Sprintf("%s %s", g.Hemisphere, g.Band)
}

// ReferenceTime is a forecast reference time offset in hours.
type ReferenceTime struct {
	hours int
}

// ReferenceTimeFromHours builds a reference time from an hour count.
func ReferenceTimeFromHours(h int) ReferenceTime {
	return ReferenceTime{hours: h}
}

// ReferenceTimeFromDays builds a reference time from a day count.
func ReferenceTimeFromDays(d int) ReferenceTime {
	return ReferenceTime{hours: d * 24}
}

// Hours returns the offset in hours.
func (t ReferenceTime) Hours() int {
	return t.hours
}

func (t ReferenceTime) String() string {
	return fmt.Sprintf("T+%dh", t.hours)
}

// MarshalText encodes the offset in hours.
func (t ReferenceTime) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", t.hours)), nil
}

// gridTimes is table C4 as used when T1 is D, G, H, J, O, P or T.
var gridTimes = map[byte]int{
	'A': 0, 'B': 6, 'C': 12, 'D': 18, 'E': 24, 'F': 30, 'G': 36, 'H': 42,
	'I': 48, 'J': 60, 'K': 72, 'L': 84, 'M': 96, 'N': 108, 'O': 120,
	'P': 132, 'Q': 144, 'R': 156, 'S': 168, 'T': 180, 'U': 192, 'V': 204,
	'W': 216, 'X': 228, 'Y': 240,
}

// ParseGridReferenceTime decodes A2 for the D, G, H, J, O, P and T families.
func ParseGridReferenceTime(c byte) (ReferenceTime, error) {
	h, ok := gridTimes[c]
	if !ok {
		return ReferenceTime{}, fmt.Errorf("%w: %c", ErrInvalidReferenceTime, c)
	}
	return ReferenceTimeFromHours(h), nil
}

// ParseRegionalReferenceTime decodes A2 for the Q, X and Y families, which
// step in three hour increments from A (analysis) to Y (72 hours).
func ParseRegionalReferenceTime(c byte) (ReferenceTime, error) {
	if c < 'A' || c > 'Y' {
		return ReferenceTime{}, fmt.Errorf("%w: %c", ErrInvalidReferenceTime, c)
	}
	return ReferenceTimeFromHours(int(c-'A') * 3), nil
}

// AirLevel is the ii level of an upper-air chart.
type AirLevel struct {
	code int
}

// SeaLevel is the ii depth of an oceanographic product.
type SeaLevel struct {
	code int
}

func parseLevel(a, b byte) (int, error) {
	if !isDigit(a) || !isDigit(b) {
		return 0, fmt.Errorf("%w: %c%c", ErrInvalidLevel, a, b)
	}
	return int(a-'0')*10 + int(b-'0'), nil
}

// ParseAirLevel validates a two digit air level designator.
func ParseAirLevel(a, b byte) (AirLevel, error) {
	v, err := parseLevel(a, b)
	return AirLevel{code: v}, err
}

// ParseSeaLevel validates a two digit sea level designator.
func ParseSeaLevel(a, b byte) (SeaLevel, error) {
	v, err := parseLevel(a, b)
	return SeaLevel{code: v}, err
}

// Code returns the two digit designator value.
func (l AirLevel) Code() int { return l.code }

// Code returns the two digit designator value.
func (l SeaLevel) Code() int { return l.code }

func (l AirLevel) String() string { return fmt.Sprintf("%02d", l.code) }

func (l SeaLevel) String() string { return fmt.Sprintf("%02d", l.code) }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
