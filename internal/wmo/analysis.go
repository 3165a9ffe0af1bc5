package wmo

import "fmt"

// AnalysisType is T2 when T1 is A.
type AnalysisType int

const (
	AnalysisCyclone AnalysisType = iota
	AnalysisHydrological
	AnalysisThickness
	AnalysisIce
	AnalysisOzone
	AnalysisRadar
	AnalysisSurface
	AnalysisUpperAir
	AnalysisWeatherSummary
	AnalysisMisc
)

var analysisTypes = newLetterTable(
	entry('C', AnalysisCyclone, "cyclone"),
	entry('G', AnalysisHydrological, "hydrological"),
	entry('H', AnalysisThickness, "thickness"),
	entry('I', AnalysisIce, "ice"),
	entry('O', AnalysisOzone, "ozone_layer"),
	entry('R', AnalysisRadar, "radar"),
	entry('S', AnalysisSurface, "surface"),
	entry('U', AnalysisUpperAir, "upper_air"),
	entry('W', AnalysisWeatherSummary, "weather_summary"),
	entry('X', AnalysisMisc, "miscellaneous"),
)

func (t AnalysisType) String() string { return analysisTypes.name(t) }

// MarshalText encodes the subtype name.
func (t AnalysisType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Analysis is an A designator.
type Analysis struct {
	Type       AnalysisType `json:"type"`
	Area       AreaCode     `json:"area"`
	Enumerator int          `json:"enumerator"`
}

func (Analysis) T1() byte { return byte(FamilyAnalysis) }

func (a Analysis) T2() byte { return analysisTypes.letter(a.Type) }

func (a Analysis) String() string {
	return fmt.Sprintf("analysis/%s %s %02d", a.Type, a.Area, a.Enumerator)
}

func decodeAnalysis(c code) (Designator, error) {
	t, ok := analysisTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return Analysis{Type: t, Area: area, Enumerator: ii}, nil
}

// ClimaticType is T2 when T1 is C.
type ClimaticType int

const (
	ClimaticAnomaly ClimaticType = iota
	ClimaticUpperAirMonthlyMean
	ClimaticShipMonthlyMean
	ClimaticOceanMonthlyMean
	ClimaticSurfaceMonthlyMean
)

var climaticTypes = newLetterTable(
	entry('A', ClimaticAnomaly, "climatic_anomalies"),
	entry('E', ClimaticUpperAirMonthlyMean, "upper_air_monthly_means"),
	entry('H', ClimaticShipMonthlyMean, "climat_ship_monthly_means"),
	entry('O', ClimaticOceanMonthlyMean, "ocean_monthly_means"),
	entry('S', ClimaticSurfaceMonthlyMean, "climat_monthly_means"),
)

func (t ClimaticType) String() string { return climaticTypes.name(t) }

// MarshalText encodes the subtype name.
func (t ClimaticType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Climatic is a C designator.
type Climatic struct {
	Type       ClimaticType `json:"type"`
	Area       AreaCode     `json:"area"`
	Enumerator int          `json:"enumerator"`
}

func (Climatic) T1() byte { return byte(FamilyClimatic) }

func (c Climatic) T2() byte { return climaticTypes.letter(c.Type) }

func (c Climatic) String() string {
	return fmt.Sprintf("climatic/%s %s %02d", c.Type, c.Area, c.Enumerator)
}

func decodeClimatic(c code) (Designator, error) {
	t, ok := climaticTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return Climatic{Type: t, Area: area, Enumerator: ii}, nil
}
