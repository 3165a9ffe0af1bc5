package codec

import "fmt"

// LengthUnit is the unit a length was reported in.
type LengthUnit int

const (
	Meters LengthUnit = iota
	StatuteMiles
	Feet
	Decimeters
	Millimeters
	Centimeters
)

func (u LengthUnit) String() string {
	switch u {
	case StatuteMiles:
		return "mi"
	case Feet:
		return "ft"
	case Decimeters:
		return "dm"
	case Millimeters:
		return "mm"
	case Centimeters:
		return "cm"
	default:
		return "m"
	}
}

// MarshalText encodes the unit symbol.
func (u LengthUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Length is a distance tagged with the unit it was reported in.
type Length struct {
	Value float64    `json:"value"`
	Unit  LengthUnit `json:"unit"`
}

func (l Length) String() string {
	return fmt.Sprintf("%g%s", l.Value, l.Unit)
}

// Metres converts the length to metres.
func (l Length) Metres() float64 {
	switch l.Unit {
	case StatuteMiles:
		return l.Value * 1609.344
	case Feet:
		return l.Value * 0.3048
	case Decimeters:
		return l.Value / 10
	case Millimeters:
		return l.Value / 1000
	case Centimeters:
		return l.Value / 100
	default:
		return l.Value
	}
}

// SpeedUnit is the unit a velocity was reported in.
type SpeedUnit int

const (
	Knots SpeedUnit = iota
	MetresPerSecond
)

func (u SpeedUnit) String() string {
	if u == MetresPerSecond {
		return "mps"
	}
	return "kt"
}

// MarshalText encodes the unit symbol.
func (u SpeedUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Velocity is a speed tagged with its unit.
type Velocity struct {
	Value float64   `json:"value"`
	Unit  SpeedUnit `json:"unit"`
}

func (v Velocity) String() string {
	return fmt.Sprintf("%g%s", v.Value, v.Unit)
}

// ReadSpeedUnit reads KT or MPS.
func ReadSpeedUnit(c *Cursor) (SpeedUnit, error) {
	switch {
	case c.Tag("KT"):
		return Knots, nil
	case c.Tag("MPS"):
		return MetresPerSecond, nil
	}
	return 0, c.Errorf("KT or MPS")
}

// Celsius is a temperature in degrees Celsius.
type Celsius float64

// Degrees is a compass angle in degrees true.
type Degrees float64
