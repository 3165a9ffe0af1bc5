package wmo

import "fmt"

// UpperAirType is T2 when T1 is U.
type UpperAirType int

const (
	UpperAirAircraftICAO UpperAirType = iota
	UpperAirAircraftAMDAR
	UpperAirAircraftRECCO
	UpperAirAircraftCODAR
	UpperAirTempD
	UpperAirTempCD
	UpperAirWindB
	UpperAirWindC
	UpperAirWindAB
	UpperAirTempB
	UpperAirTempC
	UpperAirTempAB
	UpperAirRocketsonde
	UpperAirWindA
	UpperAirWindD
	UpperAirTempA
	UpperAirMisc
	UpperAirWindCD
	UpperAirTempABCD
)

var upperAirTypes = newLetterTable(
	entry('A', UpperAirAircraftICAO, "aircraft_report_icao"),
	entry('D', UpperAirAircraftAMDAR, "aircraft_report_amdar"),
	entry('E', UpperAirTempD, "upper_level_pthw_d"),
	entry('F', UpperAirTempCD, "upper_level_pthw_cd"),
	entry('G', UpperAirWindB, "upper_wind_b"),
	entry('H', UpperAirWindC, "upper_wind_c"),
	entry('I', UpperAirWindAB, "upper_wind_ab"),
	entry('K', UpperAirTempB, "upper_level_pthw_b"),
	entry('L', UpperAirTempC, "upper_level_pthw_c"),
	entry('M', UpperAirTempAB, "upper_level_pthw_ab"),
	entry('N', UpperAirRocketsonde, "rocketsonde_report"),
	entry('P', UpperAirWindA, "upper_wind_a"),
	entry('Q', UpperAirWindD, "upper_wind_d"),
	entry('R', UpperAirAircraftRECCO, "aircraft_report_recco"),
	entry('S', UpperAirTempA, "upper_level_pthw_a"),
	entry('T', UpperAirAircraftCODAR, "aircraft_report_codar"),
	entry('X', UpperAirMisc, "miscellaneous"),
	entry('Y', UpperAirWindCD, "upper_wind_cd"),
	entry('Z', UpperAirTempABCD, "upper_level_pthw_abcd"),
)

func (t UpperAirType) String() string { return upperAirTypes.name(t) }

// MarshalText encodes the subtype name.
func (t UpperAirType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// AircraftCodeForm is the code form of an aircraft report.
type AircraftCodeForm int

const (
	CodeFormICAO AircraftCodeForm = iota
	CodeFormAMDAR
	CodeFormRECCO
	CodeFormCODAR
)

func (f AircraftCodeForm) String() string {
	switch f {
	case CodeFormAMDAR:
		return "AMDAR"
	case CodeFormRECCO:
		return "RECCO"
	case CodeFormCODAR:
		return "CODAR"
	default:
		return "ICAO"
	}
}

// AircraftReport returns the code form when the subtype is an aircraft report.
func (t UpperAirType) AircraftReport() (AircraftCodeForm, bool) {
	switch t {
	case UpperAirAircraftICAO:
		return CodeFormICAO, true
	case UpperAirAircraftAMDAR:
		return CodeFormAMDAR, true
	case UpperAirAircraftRECCO:
		return CodeFormRECCO, true
	case UpperAirAircraftCODAR:
		return CodeFormCODAR, true
	}
	return 0, false
}

// UpperAir is a U designator.
type UpperAir struct {
	Type       UpperAirType `json:"type"`
	Area       AreaCode     `json:"area"`
	Enumerator int          `json:"enumerator"`
}

func (UpperAir) T1() byte { return byte(FamilyUpperAir) }

func (u UpperAir) T2() byte { return upperAirTypes.letter(u.Type) }

func (u UpperAir) String() string {
	return fmt.Sprintf("upper_air/%s %s %02d", u.Type, u.Area, u.Enumerator)
}

func decodeUpperAir(c code) (Designator, error) {
	t, ok := upperAirTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return UpperAir{Type: t, Area: area, Enumerator: ii}, nil
}
