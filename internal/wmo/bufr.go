package wmo

import "fmt"

// BUFRCategory is T2 when T1 is J.
type BUFRCategory int

const (
	BUFRRadar BUFRCategory = iota
	BUFROceanographic
	BUFRPictorial
	BUFRSurface
	BUFRText
	BUFRUpperAir
	BUFROther
)

var bufrCategories = newLetterTable(
	entry('N', BUFRRadar, "radar"),
	entry('O', BUFROceanographic, "oceanographic"),
	entry('P', BUFRPictorial, "pictorial"),
	entry('S', BUFRSurface, "surface"),
	entry('T', BUFRText, "text"),
	entry('U', BUFRUpperAir, "upper_air"),
	entry('X', BUFROther, "other"),
)

func (t BUFRCategory) String() string { return bufrCategories.name(t) }

// MarshalText encodes the category name.
func (t BUFRCategory) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// BUFRSubtype is the A1 letter of a J designator. Categories O, S, T and U
// define it in table B6; for N, P and X it is carried through uninterpreted.
type BUFRSubtype int

const (
	BUFRSubtypeUndefined BUFRSubtype = iota

	BUFRSeaIce
	BUFRSeaSurfaceAndBelow
	BUFRSeaSurfaceTemperature
	BUFRWaves
	BUFROceanOther

	BUFRSurfaceArea
	BUFRRadiological
	BUFRSurfaceObservation
	BUFRMaritime
	BUFRAmendment
	BUFRHydrologic
	BUFRAmendmentTAF
	BUFRAerodromeTAF
	BUFRSurfaceOther

	BUFRTsunami
	BUFRHurricaneTyphoonStorm
	BUFRSevereWeatherSIGMET
	BUFRTornado
	BUFRTextOther

	BUFRSingleLevel
	BUFRSigwxEmbeddedCB
	BUFRSigwxClearAirTurbulence
	BUFRSigwxFront
	BUFRSigwxOther
	BUFRSigwxTurbulence
	BUFRSoundings
	BUFRSigwxIcingTropopause
	BUFRSigwxTropicalStormSandstormVolcano
	BUFRSigwxHighLevelWinds
	BUFRUpperAirOther
)

var bufrSubtypes = map[BUFRCategory]letterTable[BUFRSubtype]{
	BUFROceanographic: newLetterTable(
		entry('I', BUFRSeaIce, "sea_ice"),
		entry('S', BUFRSeaSurfaceAndBelow, "sea_surface_and_below_soundings"),
		entry('T', BUFRSeaSurfaceTemperature, "sea_surface_temperature"),
		entry('W', BUFRWaves, "sea_surface_waves"),
		entry('X', BUFROceanOther, "other_sea_environmental"),
	),
	BUFRSurface: newLetterTable(
		entry('A', BUFRSurfaceArea, "surface_area_forecast"),
		entry('D', BUFRRadiological, "radiological_forecast"),
		entry('M', BUFRSurfaceObservation, "surface_forecast"),
		entry('O', BUFRMaritime, "maritime_forecast"),
		entry('P', BUFRAmendment, "forecast_amendment"),
		entry('R', BUFRHydrologic, "hydrologic_forecast"),
		entry('S', BUFRAmendmentTAF, "forecast_amendment_taf"),
		entry('T', BUFRAerodromeTAF, "aerodrome_forecast_taf"),
		entry('X', BUFRSurfaceOther, "other_surface_data"),
	),
	BUFRText: newLetterTable(
		entry('E', BUFRTsunami, "tsunami"),
		entry('H', BUFRHurricaneTyphoonStorm, "hurricane_typhoon_tropical_storm"),
		entry('S', BUFRSevereWeatherSIGMET, "severe_weather_sigmet"),
		entry('T', BUFRTornado, "tornado_warning"),
		entry('X', BUFRTextOther, "other_warning"),
	),
	BUFRUpperAir: newLetterTable(
		entry('A', BUFRSingleLevel, "single_level"),
		entry('B', BUFRSigwxEmbeddedCB, "sigwx_embedded_cumulonimbus"),
		entry('C', BUFRSigwxClearAirTurbulence, "sigwx_clear_air_turbulence"),
		entry('F', BUFRSigwxFront, "sigwx_front"),
		entry('N', BUFRSigwxOther, "sigwx_other_parameters"),
		entry('O', BUFRSigwxTurbulence, "sigwx_turbulence"),
		entry('S', BUFRSoundings, "soundings"),
		entry('T', BUFRSigwxIcingTropopause, "sigwx_icing_tropopause"),
		entry('V', BUFRSigwxTropicalStormSandstormVolcano, "sigwx_tropical_storm_sandstorm_volcano"),
		entry('W', BUFRSigwxHighLevelWinds, "sigwx_high_level_winds"),
		entry('X', BUFRUpperAirOther, "other_upper_air"),
	),
}

// ForecastBUFR is a J designator: forecast data in BUFR.
type ForecastBUFR struct {
	Category BUFRCategory `json:"category"`
	// Subtype is BUFRSubtypeUndefined for the N, P and X categories.
	Subtype       BUFRSubtype   `json:"-"`
	SubtypeName   string        `json:"subtype,omitempty"`
	A1            byte          `json:"-"`
	ReferenceTime ReferenceTime `json:"reference_time"`
	Enumerator    int           `json:"enumerator"`
}

func (ForecastBUFR) T1() byte { return byte(FamilyForecastBUFR) }

func (j ForecastBUFR) T2() byte { return bufrCategories.letter(j.Category) }

func (j ForecastBUFR) String() string {
	sub := j.SubtypeName
	if sub == "" {
		sub = string(j.A1)
	}
	return fmt.Sprintf("forecast_bufr/%s/%s %s %02d", j.Category, sub, j.ReferenceTime, j.Enumerator)
}

func decodeForecastBUFR(c code) (Designator, error) {
	cat, ok := bufrCategories.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	j := ForecastBUFR{Category: cat, A1: c.a1}
	if table, defined := bufrSubtypes[cat]; defined {
		sub, ok := table.lookup(c.a1)
		if !ok {
			return nil, c.fail(KindUnrecognizedA1, 2, nil)
		}
		j.Subtype, j.SubtypeName = sub, table.name(sub)
	} else if !isUpper(c.a1) {
		return nil, c.fail(KindUnrecognizedA1, 2, nil)
	}
	rt, err := c.gridTime()
	if err != nil {
		return nil, err
	}
	ii, err := c.enumerator()
	if err != nil {
		return nil, err
	}
	j.ReferenceTime, j.Enumerator = rt, ii
	return j, nil
}
