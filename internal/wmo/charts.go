package wmo

import "fmt"

// OceanographicType is T2 when T1 is O.
type OceanographicType int

const (
	OceanDepth OceanographicType = iota
	OceanIceConcentration
	OceanIceThickness
	OceanIceDrift
	OceanIceGrowth
	OceanIceConvergenceDivergence
	OceanTemperatureAnomaly
	OceanDepthAnomaly
	OceanSalinity
	OceanTemperature
	OceanCurrentComponent
	OceanTemperatureWarming
	OceanMixed
)

var oceanographicTypes = newLetterTable(
	entry('D', OceanDepth, "depth"),
	entry('E', OceanIceConcentration, "ice_concentration"),
	entry('F', OceanIceThickness, "ice_thickness"),
	entry('G', OceanIceDrift, "ice_drift"),
	entry('H', OceanIceGrowth, "ice_growth"),
	entry('I', OceanIceConvergenceDivergence, "ice_convergence_divergence"),
	entry('Q', OceanTemperatureAnomaly, "temperature_anomaly"),
	entry('R', OceanDepthAnomaly, "depth_anomaly"),
	entry('S', OceanSalinity, "salinity"),
	entry('T', OceanTemperature, "temperature"),
	entry('U', OceanCurrentComponent, "current_component"),
	entry('V', OceanCurrentComponent, "current_component"),
	entry('W', OceanTemperatureWarming, "temperature_warming"),
	entry('X', OceanMixed, "mixed_data"),
)

func (t OceanographicType) String() string { return oceanographicTypes.name(t) }

// MarshalText encodes the subtype name.
func (t OceanographicType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Oceanographic is an O designator. The ii pair is a depth level rather than
// an enumerator.
type Oceanographic struct {
	Type          OceanographicType `json:"type"`
	Area          GeographicArea    `json:"area"`
	ReferenceTime ReferenceTime     `json:"reference_time"`
	Level         SeaLevel          `json:"level"`
	// t2 keeps the letter for the U/V current components.
	t2 byte
}

func (Oceanographic) T1() byte { return byte(FamilyOceanographic) }

func (o Oceanographic) T2() byte {
	if o.t2 != 0 {
		return o.t2
	}
	return oceanographicTypes.letter(o.Type)
}

func (o Oceanographic) String() string {
	return fmt.Sprintf("oceanographic/%s %s %s level %s", o.Type, o.Area, o.ReferenceTime, o.Level)
}

func decodeOceanographic(c code) (Designator, error) {
	t, ok := oceanographicTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, err := c.geographicArea()
	if err != nil {
		return nil, err
	}
	rt, err := c.gridTime()
	if err != nil {
		return nil, err
	}
	level, err := c.seaLevel()
	if err != nil {
		return nil, err
	}
	return Oceanographic{Type: t, Area: area, ReferenceTime: rt, Level: level, t2: c.t2}, nil
}

// PictorialType is T2 when T1 is P or Q.
type PictorialType int

const (
	PictorialRadarData PictorialType = iota
	PictorialCloud
	PictorialClearAirTurbulence
	PictorialThickness
	PictorialPrecipitation
	PictorialAerologicalDiagrams
	PictorialSignificantWeather
	PictorialHeight
	PictorialIceFlow
	PictorialWaveHeight
	PictorialSwellHeight
	PictorialPlainLanguage
	PictorialNationalUse
	PictorialRadiation
	PictorialVerticalVelocity
	PictorialPressure
	PictorialWetBulbPotentialTemperature
	PictorialRelativeHumidity
	PictorialSnowCover
	PictorialTemperature
	PictorialEastwardWind
	PictorialNorthwardWind
	PictorialWind
	PictorialLiftedIndex
	PictorialObservationalPlottedChart
)

var pictorialTypes = newLetterTable(
	entry('A', PictorialRadarData, "radar_data"),
	entry('B', PictorialCloud, "cloud"),
	entry('C', PictorialClearAirTurbulence, "clear_air_turbulence"),
	entry('D', PictorialThickness, "thickness"),
	entry('E', PictorialPrecipitation, "precipitation"),
	entry('F', PictorialAerologicalDiagrams, "aerological_diagrams"),
	entry('G', PictorialSignificantWeather, "significant_weather"),
	entry('H', PictorialHeight, "height"),
	entry('I', PictorialIceFlow, "ice_flow"),
	entry('J', PictorialWaveHeight, "wave_height"),
	entry('K', PictorialSwellHeight, "swell_height"),
	entry('L', PictorialPlainLanguage, "plain_language"),
	entry('M', PictorialNationalUse, "national_use"),
	entry('N', PictorialRadiation, "radiation"),
	entry('O', PictorialVerticalVelocity, "vertical_velocity"),
	entry('P', PictorialPressure, "pressure"),
	entry('Q', PictorialWetBulbPotentialTemperature, "wet_bulb_potential_temperature"),
	entry('R', PictorialRelativeHumidity, "relative_humidity"),
	entry('S', PictorialSnowCover, "snow_cover"),
	entry('T', PictorialTemperature, "temperature"),
	entry('U', PictorialEastwardWind, "eastward_wind"),
	entry('V', PictorialNorthwardWind, "northward_wind"),
	entry('W', PictorialWind, "wind"),
	entry('X', PictorialLiftedIndex, "lifted_index"),
	entry('Y', PictorialObservationalPlottedChart, "observational_plotted_chart"),
)

func (t PictorialType) String() string { return pictorialTypes.name(t) }

// MarshalText encodes the subtype name.
func (t PictorialType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Pictorial is a P designator.
type Pictorial struct {
	Type          PictorialType  `json:"type"`
	Area          GeographicArea `json:"area"`
	ReferenceTime ReferenceTime  `json:"reference_time"`
	Level         AirLevel       `json:"level"`
}

func (Pictorial) T1() byte { return byte(FamilyPictorial) }

func (p Pictorial) T2() byte { return pictorialTypes.letter(p.Type) }

func (p Pictorial) String() string {
	return fmt.Sprintf("pictorial/%s %s %s level %s", p.Type, p.Area, p.ReferenceTime, p.Level)
}

// RegionalPictorial is a Q designator. It differs from P only in the reference
// time table.
type RegionalPictorial struct {
	Type          PictorialType  `json:"type"`
	Area          GeographicArea `json:"area"`
	ReferenceTime ReferenceTime  `json:"reference_time"`
	Level         AirLevel       `json:"level"`
}

func (RegionalPictorial) T1() byte { return byte(FamilyRegionalPictorial) }

func (q RegionalPictorial) T2() byte { return pictorialTypes.letter(q.Type) }

func (q RegionalPictorial) String() string {
	return fmt.Sprintf("regional_pictorial/%s %s %s level %s", q.Type, q.Area, q.ReferenceTime, q.Level)
}

func decodePictorialTail(c code, refTime func() (ReferenceTime, error)) (PictorialType, GeographicArea, ReferenceTime, AirLevel, error) {
	var (
		area  GeographicArea
		rt    ReferenceTime
		level AirLevel
	)
	t, ok := pictorialTypes.lookup(c.t2)
	if !ok {
		return t, area, rt, level, c.badT2()
	}
	area, err := c.geographicArea()
	if err != nil {
		return t, area, rt, level, err
	}
	if rt, err = refTime(); err != nil {
		return t, area, rt, level, err
	}
	level, err = c.airLevel()
	return t, area, rt, level, err
}

func decodePictorial(c code) (Designator, error) {
	t, area, rt, level, err := decodePictorialTail(c, c.gridTime)
	if err != nil {
		return nil, err
	}
	return Pictorial{Type: t, Area: area, ReferenceTime: rt, Level: level}, nil
}

func decodeRegionalPictorial(c code) (Designator, error) {
	t, area, rt, level, err := decodePictorialTail(c, c.regionalTime)
	if err != nil {
		return nil, err
	}
	return RegionalPictorial{Type: t, Area: area, ReferenceTime: rt, Level: level}, nil
}
