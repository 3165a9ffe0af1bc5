// Package amdar decodes aircraft meteorological reports (FM 42 AMDAR).
package amdar

import (
	"emwin_parser/internal/codec"
	"emwin_parser/internal/codes"
)

// Phase is the flight phase at the time of observation.
type Phase int

const (
	// PhaseUnknown is reported as ///.
	PhaseUnknown Phase = iota
	// LevelRoutine is LVR: level flight, routine observation.
	LevelRoutine
	// LevelMaxWind is LVW: level flight, highest wind encountered.
	LevelMaxWind
	Ascent
	Descent
	Unsteady
)

var phaseCodes = map[string]Phase{
	"///": PhaseUnknown,
	"LVR": LevelRoutine,
	"LVW": LevelMaxWind,
	"ASC": Ascent,
	"DES": Descent,
	"UNS": Unsteady,
}

func (p Phase) String() string {
	switch p {
	case LevelRoutine:
		return "level_routine"
	case LevelMaxWind:
		return "level_max_wind"
	case Ascent:
		return "ascent"
	case Descent:
		return "descent"
	case Unsteady:
		return "unsteady"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Turbulence is the TBB group.
type Turbulence int

const (
	TurbulenceNotReported Turbulence = iota
	TurbulenceNone
	TurbulenceLight
	TurbulenceModerate
	TurbulenceSevere
)

func (t Turbulence) String() string {
	switch t {
	case TurbulenceNone:
		return "none"
	case TurbulenceLight:
		return "light"
	case TurbulenceModerate:
		return "moderate"
	case TurbulenceSevere:
		return "severe"
	default:
		return "not_reported"
	}
}

func (t Turbulence) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Navigation is the navigation system digit of the S group.
type Navigation int

const (
	NavigationNotReported Navigation = iota
	Inertial
	OMEGA
)

func (n Navigation) String() string {
	switch n {
	case Inertial:
		return "inertial"
	case OMEGA:
		return "omega"
	default:
		return "not_reported"
	}
}

func (n Navigation) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// Transmission is the transmission system digit of the S group. The
// "with" variants record whether the secondary system is operative.
type Transmission int

const (
	TransmissionNotReported Transmission = iota
	ASDAR
	ASDARWithACARSInoperative
	ASDARWithACARS
	ACARS
	ACARSWithASDARInoperative
	ACARSWithASDAR
)

func (t Transmission) String() string {
	switch t {
	case ASDAR:
		return "asdar"
	case ASDARWithACARSInoperative:
		return "asdar_acars_inoperative"
	case ASDARWithACARS:
		return "asdar_acars"
	case ACARS:
		return "acars"
	case ACARSWithASDARInoperative:
		return "acars_asdar_inoperative"
	case ACARSWithASDAR:
		return "acars_asdar"
	default:
		return "not_reported"
	}
}

func (t Transmission) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Precision is the temperature precision digit of the S group.
type Precision int

const (
	PrecisionNotReported Precision = iota
	// PrecisionHigh is +/- 1.0 C.
	PrecisionHigh
	// PrecisionLow is +/- 2.0 C.
	PrecisionLow
)

func (p Precision) String() string {
	switch p {
	case PrecisionHigh:
		return "high"
	case PrecisionLow:
		return "low"
	default:
		return "not_reported"
	}
}

func (p Precision) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Humidity holds whichever of relative humidity or dew point the aircraft
// reported. Exactly one field is set.
type Humidity struct {
	// RelativeHumidity is a percentage.
	RelativeHumidity *int          `json:"relative_humidity,omitempty"`
	DewPoint         *codec.Celsius `json:"dew_point,omitempty"`
}

// Item is one aircraft observation.
type Item struct {
	Phase     Phase         `json:"phase"`
	Aircraft  string        `json:"aircraft"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Time      codes.DayTime `json:"time"`
	// PressureAltitude is relative to the 1013.2 hPa datum; negative below it.
	PressureAltitude codec.Length   `json:"pressure_altitude"`
	Temperature      codec.Celsius  `json:"temperature"`
	Humidity         *Humidity      `json:"humidity,omitempty"`
	WindDirection    codec.Degrees  `json:"wind_direction"`
	WindSpeed        codec.Velocity `json:"wind_speed"`
	Turbulence       Turbulence     `json:"turbulence"`
	Navigation       Navigation     `json:"navigation"`
	Transmission     Transmission   `json:"transmission"`
	Precision        Precision      `json:"precision"`
}

// Observations is the decoded body of an AMDAR bulletin.
type Observations struct {
	// Issued is the DDHH of the AMDAR line.
	Issued codes.DayTime `json:"issued"`
	Items  []Item        `json:"items"`
}

// Decode parses an AMDAR body. The AMDAR YYGG line is mandatory and a failure
// there is returned as an error. Each observation that does not parse is
// skipped up to its terminating '=' and reported.
func Decode(body string) (Observations, []*codec.Recovered, error) {
	var obs Observations
	c := codec.NewCursor(body)

	c.SkipWhitespace()
	if err := c.Expect("AMDAR"); err != nil {
		return obs, nil, err
	}
	if err := c.Space(); err != nil {
		return obs, nil, err
	}
	issued, err := codes.ParseDayHour(c)
	if err != nil {
		return obs, nil, err
	}
	obs.Issued = issued

	var recovered []*codec.Recovered
	for {
		c.SkipWhitespace()
		if c.Done() || c.HasPrefix("NNNN") || c.HasPrefix("$$") {
			break
		}
		item, rec := codec.Recover(c, parseItem, codec.SkipPast('='))
		if rec != nil {
			recovered = append(recovered, rec)
			continue
		}
		obs.Items = append(obs.Items, item)
	}
	return obs, recovered, nil
}

func parseItem(c *codec.Cursor) (Item, error) {
	var it Item

	ph, err := c.Take(3)
	if err != nil {
		return it, err
	}
	phase, ok := phaseCodes[ph]
	if !ok {
		return it, c.Errorf("flight phase")
	}
	it.Phase = phase

	if err := c.Space(); err != nil {
		return it, err
	}
	it.Aircraft = c.Word()
	if it.Aircraft == "" {
		return it, c.Errorf("aircraft identifier")
	}

	if err := c.Space(); err != nil {
		return it, err
	}
	if it.Latitude, err = codes.ParseLatitude(c); err != nil {
		return it, err
	}
	if err := c.Space(); err != nil {
		return it, err
	}
	if it.Longitude, err = codes.ParseLongitude(c); err != nil {
		return it, err
	}

	if err := c.Space(); err != nil {
		return it, err
	}
	if it.Time, err = codes.ParseDayTime(c); err != nil {
		return it, err
	}

	if err := c.Space(); err != nil {
		return it, err
	}
	if it.PressureAltitude, err = parseAltitude(c); err != nil {
		return it, err
	}

	if err := c.Space(); err != nil {
		return it, err
	}
	if it.Temperature, err = parseTenths(c); err != nil {
		return it, err
	}

	codes.Try(c, func(c *codec.Cursor) bool {
		h, ok := parseHumidity(c)
		it.Humidity = h
		return ok
	})

	if err := c.Space(); err != nil {
		return it, err
	}
	dir, err := codec.Digits(c, 3)
	if err != nil {
		return it, err
	}
	if err := c.Expect("/"); err != nil {
		return it, err
	}
	speed, err := codec.Digits(c, 3)
	if err != nil {
		return it, err
	}
	it.WindDirection = codec.Degrees(dir)
	it.WindSpeed = codec.Velocity{Value: float64(speed), Unit: codec.Knots}

	if err := c.Space(); err != nil {
		return it, err
	}
	if it.Turbulence, err = parseTurbulence(c); err != nil {
		return it, err
	}

	if err := c.Space(); err != nil {
		return it, err
	}
	if err := parseSystem(c, &it); err != nil {
		return it, err
	}

	// Anything between the system group and the terminator is ignored.
	c.TakeUntil("=\n")
	if c.Done() || c.Tag("=") {
		return it, nil
	}
	return it, c.Errorf("=")
}

// parseAltitude reads F or A and three digits in hundreds of feet.
func parseAltitude(c *codec.Cursor) (codec.Length, error) {
	v, err := codec.SignedDigits(c, "A", "F", 3)
	if err != nil {
		return codec.Length{}, err
	}
	return codec.Length{Value: float64(v) * 100, Unit: codec.Feet}, nil
}

// parseTenths reads PS or MS and three digits in tenths of a degree.
func parseTenths(c *codec.Cursor) (codec.Celsius, error) {
	v, err := codec.SignedDigits(c, "MS", "PS", 3)
	if err != nil {
		return 0, err
	}
	return codec.Celsius(float64(v) / 10), nil
}

// parseHumidity reads a dew point in the temperature format, or a three digit
// relative humidity.
func parseHumidity(c *codec.Cursor) (*Humidity, bool) {
	mark := c.Mark()
	if t, err := parseTenths(c); err == nil && c.AtBoundary() {
		return &Humidity{DewPoint: &t}, true
	}
	c.Reset(mark)
	if rh, err := codec.Digits(c, 3); err == nil && c.AtBoundary() {
		return &Humidity{RelativeHumidity: &rh}, true
	}
	c.Reset(mark)
	return nil, false
}

func parseTurbulence(c *codec.Cursor) (Turbulence, error) {
	if err := c.Expect("TB"); err != nil {
		return 0, err
	}
	b, err := c.Byte()
	if err != nil {
		return 0, err
	}
	switch b {
	case '/':
		return TurbulenceNotReported, nil
	case '0':
		return TurbulenceNone, nil
	case '1':
		return TurbulenceLight, nil
	case '2':
		return TurbulenceModerate, nil
	case '3':
		return TurbulenceSevere, nil
	}
	return 0, c.Errorf("turbulence 0-3 or /")
}

// parseSystem reads the S group: navigation, transmission and precision.
func parseSystem(c *codec.Cursor, it *Item) error {
	if err := c.Expect("S"); err != nil {
		return err
	}
	s, err := c.Take(3)
	if err != nil {
		return err
	}

	switch s[0] {
	case '/':
	case '0':
		it.Navigation = Inertial
	case '1':
		it.Navigation = OMEGA
	default:
		return c.Errorf("navigation system 0, 1 or /")
	}

	switch s[1] {
	case '/':
	case '0':
		it.Transmission = ASDAR
	case '1':
		it.Transmission = ASDARWithACARSInoperative
	case '2':
		it.Transmission = ASDARWithACARS
	case '3':
		it.Transmission = ACARS
	case '4':
		it.Transmission = ACARSWithASDARInoperative
	case '5':
		it.Transmission = ACARSWithASDAR
	default:
		return c.Errorf("transmission system 0-5 or /")
	}

	switch s[2] {
	case '/':
	case '0':
		it.Precision = PrecisionHigh
	case '1':
		it.Precision = PrecisionLow
	default:
		return c.Errorf("temperature precision 0, 1 or /")
	}
	return nil
}
