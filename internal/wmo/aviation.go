package wmo

import "fmt"

// AviationXMLType is T2 when T1 is L.
type AviationXMLType int

const (
	AviationMETAR AviationXMLType = iota
	AviationTAFShort
	AviationTropicalCycloneAdvisory
	AviationSpaceWeatherAdvisory
	AviationSPECI
	AviationSIGMET
	AviationTAF
	AviationVolcanicAshAdvisory
	AviationVolcanicAshSIGMET
	AviationAIRMET
	AviationTropicalCycloneSIGMET
)

var aviationXMLTypes = newLetterTable(
	entry('A', AviationMETAR, "metar"),
	entry('C', AviationTAFShort, "taf_vt_lt_12h"),
	entry('K', AviationTropicalCycloneAdvisory, "tropical_cyclone_advisory"),
	entry('N', AviationSpaceWeatherAdvisory, "space_weather_advisory"),
	entry('P', AviationSPECI, "speci"),
	entry('S', AviationSIGMET, "sigmet"),
	entry('T', AviationTAF, "taf_vt_ge_12h"),
	entry('U', AviationVolcanicAshAdvisory, "volcanic_ash_advisory"),
	entry('V', AviationVolcanicAshSIGMET, "volcanic_ash_sigmet"),
	entry('W', AviationAIRMET, "airmet"),
	entry('Y', AviationTropicalCycloneSIGMET, "tropical_cyclone_sigmet"),
)

func (t AviationXMLType) String() string { return aviationXMLTypes.name(t) }

// MarshalText encodes the subtype name.
func (t AviationXMLType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// IsTAF reports whether the subtype carries an aerodrome forecast.
func (t AviationXMLType) IsTAF() bool {
	return t == AviationTAFShort || t == AviationTAF
}

// AviationXML is an L designator (IWXXM aviation products).
type AviationXML struct {
	Type       AviationXMLType `json:"type"`
	Area       AreaCode        `json:"area"`
	Enumerator int             `json:"enumerator"`
}

func (AviationXML) T1() byte { return byte(FamilyAviationXML) }

func (a AviationXML) T2() byte { return aviationXMLTypes.letter(a.Type) }

func (a AviationXML) String() string {
	return fmt.Sprintf("aviation_xml/%s %s %02d", a.Type, a.Area, a.Enumerator)
}

func decodeAviationXML(c code) (Designator, error) {
	t, ok := aviationXMLTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return AviationXML{Type: t, Area: area, Enumerator: ii}, nil
}

// WarningType is T2 when T1 is W.
type WarningType int

const (
	WarningAIRMET WarningType = iota
	WarningTropicalCycloneSIGMET
	WarningTsunami
	WarningTornado
	WarningHydrologicalRiverFlood
	WarningMarineCoastalFlood
	WarningOther
	WarningHumanitarian
	WarningSIGMET
	WarningTyphoonHurricane
	WarningSevereThunderstorm
	WarningVolcanicAshSIGMET
	WarningWeatherSummary
)

var warningTypes = newLetterTable(
	entry('A', WarningAIRMET, "airmet"),
	entry('C', WarningTropicalCycloneSIGMET, "tropical_cyclone_sigmet"),
	entry('E', WarningTsunami, "tsunami"),
	entry('F', WarningTornado, "tornado"),
	entry('G', WarningHydrologicalRiverFlood, "hydrological_river_flood"),
	entry('H', WarningMarineCoastalFlood, "marine_coastal_flood"),
	entry('O', WarningOther, "other"),
	entry('R', WarningHumanitarian, "humanitarian_activities"),
	entry('S', WarningSIGMET, "sigmet"),
	entry('T', WarningTyphoonHurricane, "tropical_cyclone"),
	entry('U', WarningSevereThunderstorm, "severe_thunderstorm"),
	entry('V', WarningVolcanicAshSIGMET, "volcanic_ash_sigmet"),
	entry('W', WarningWeatherSummary, "warnings_and_weather_summary"),
)

func (t WarningType) String() string { return warningTypes.name(t) }

// MarshalText encodes the subtype name.
func (t WarningType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Warning is a W designator.
type Warning struct {
	Type       WarningType `json:"type"`
	Area       AreaCode    `json:"area"`
	Enumerator int         `json:"enumerator"`
}

func (Warning) T1() byte { return byte(FamilyWarning) }

func (w Warning) T2() byte { return warningTypes.letter(w.Type) }

func (w Warning) String() string {
	return fmt.Sprintf("warning/%s %s %02d", w.Type, w.Area, w.Enumerator)
}

func decodeWarning(c code) (Designator, error) {
	t, ok := warningTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return Warning{Type: t, Area: area, Enumerator: ii}, nil
}
