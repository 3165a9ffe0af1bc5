package wmo

import "fmt"

// ForecastType is T2 when T1 is F.
type ForecastType int

const (
	ForecastAviationGAMET ForecastType = iota
	ForecastUpperWindsTemperatures
	ForecastAerodromeShort
	ForecastRadiologicalTrajectoryDose
	ForecastExtended
	ForecastShipping
	ForecastHydrological
	ForecastUpperAirThickness
	ForecastIceberg
	ForecastRadioWarningService
	ForecastTropicalCycloneAdvisory
	ForecastLocal
	ForecastTemperatureExtreme
	ForecastSpaceWeatherAdvisory
	ForecastGuidance
	ForecastPublic
	ForecastOtherShipping
	ForecastAviationRoute
	ForecastSurface
	ForecastAerodrome
	ForecastUpperAir
	ForecastVolcanicAshAdvisory
	ForecastWinterSports
	ForecastMisc
	ForecastShippingArea
)

var forecastTypes = newLetterTable(
	entry('A', ForecastAviationGAMET, "aviation_area_gamet"),
	entry('B', ForecastUpperWindsTemperatures, "upper_winds_temperatures"),
	entry('C', ForecastAerodromeShort, "aerodrome_vt_lt_12h"),
	entry('D', ForecastRadiologicalTrajectoryDose, "radiological_trajectory_dose"),
	entry('E', ForecastExtended, "extended"),
	entry('F', ForecastShipping, "shipping"),
	entry('G', ForecastHydrological, "hydrological"),
	entry('H', ForecastUpperAirThickness, "upper_air_thickness"),
	entry('I', ForecastIceberg, "iceberg"),
	entry('J', ForecastRadioWarningService, "radio_warning_service"),
	entry('K', ForecastTropicalCycloneAdvisory, "tropical_cyclone_advisory"),
	entry('L', ForecastLocal, "local_area"),
	entry('M', ForecastTemperatureExtreme, "temperature_extremes"),
	entry('N', ForecastSpaceWeatherAdvisory, "space_weather_advisory"),
	entry('O', ForecastGuidance, "guidance"),
	entry('P', ForecastPublic, "public"),
	entry('Q', ForecastOtherShipping, "other_shipping"),
	entry('R', ForecastAviationRoute, "aviation_route"),
	entry('S', ForecastSurface, "surface"),
	entry('T', ForecastAerodrome, "aerodrome_vt_ge_12h"),
	entry('U', ForecastUpperAir, "upper_air"),
	entry('V', ForecastVolcanicAshAdvisory, "volcanic_ash_advisory"),
	entry('W', ForecastWinterSports, "winter_sports"),
	entry('X', ForecastMisc, "miscellaneous"),
	entry('Z', ForecastShippingArea, "shipping_area"),
)

func (t ForecastType) String() string { return forecastTypes.name(t) }

// MarshalText encodes the subtype name.
func (t ForecastType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// IsAerodrome reports whether the subtype is a TAF (FC or FT).
func (t ForecastType) IsAerodrome() bool {
	return t == ForecastAerodromeShort || t == ForecastAerodrome
}

// Forecast is an F designator.
type Forecast struct {
	Type       ForecastType `json:"type"`
	Area       AreaCode     `json:"area"`
	Enumerator int          `json:"enumerator"`
}

func (Forecast) T1() byte { return byte(FamilyForecast) }

func (f Forecast) T2() byte { return forecastTypes.letter(f.Type) }

func (f Forecast) String() string {
	return fmt.Sprintf("forecast/%s %s %02d", f.Type, f.Area, f.Enumerator)
}

func decodeForecast(c code) (Designator, error) {
	t, ok := forecastTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return Forecast{Type: t, Area: area, Enumerator: ii}, nil
}
