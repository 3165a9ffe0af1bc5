package wmo

import "fmt"

// ImageryType is T2 when T1 is E.
type ImageryType int

const (
	ImageryCloudTopTemperature ImageryType = iota
	ImageryFog
	ImageryInfrared
	ImagerySurfaceTemperature
)

var imageryTypes = newLetterTable(
	entry('C', ImageryCloudTopTemperature, "cloud_top_temperature"),
	entry('F', ImageryFog, "fog"),
	entry('I', ImageryInfrared, "infrared"),
	entry('S', ImagerySurfaceTemperature, "surface_temperature"),
)

func (t ImageryType) String() string { return imageryTypes.name(t) }

// MarshalText encodes the subtype name.
func (t ImageryType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// SatelliteImagery is an E designator.
type SatelliteImagery struct {
	Type       ImageryType `json:"type"`
	Area       AreaCode    `json:"area"`
	Enumerator int         `json:"enumerator"`
}

func (SatelliteImagery) T1() byte { return byte(FamilySatelliteImagery) }

func (s SatelliteImagery) T2() byte { return imageryTypes.letter(s.Type) }

func (s SatelliteImagery) String() string {
	return fmt.Sprintf("satellite_imagery/%s %s %02d", s.Type, s.Area, s.Enumerator)
}

func decodeSatelliteImagery(c code) (Designator, error) {
	t, ok := imageryTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return SatelliteImagery{Type: t, Area: area, Enumerator: ii}, nil
}

// SatelliteType is T2 when T1 is T.
type SatelliteType int

const (
	SatelliteOrbitParameters SatelliteType = iota
	SatelliteCloudInterpretations
	SatelliteRemoteSoundings
	SatelliteClearRadiance
	SatelliteSeaSurfaceTemperatures
	SatelliteWindsCloudsTemperatures
	SatelliteMisc
)

var satelliteTypes = newLetterTable(
	entry('B', SatelliteOrbitParameters, "satellite_orbit_parameters"),
	entry('C', SatelliteCloudInterpretations, "satellite_cloud_interpretations"),
	entry('H', SatelliteRemoteSoundings, "satellite_remote_upper_air_soundings"),
	entry('R', SatelliteClearRadiance, "clear_radiance_observations"),
	entry('T', SatelliteSeaSurfaceTemperatures, "sea_surface_temperatures"),
	entry('W', SatelliteWindsCloudsTemperatures, "winds_and_cloud_temperatures"),
	entry('X', SatelliteMisc, "miscellaneous"),
)

func (t SatelliteType) String() string { return satelliteTypes.name(t) }

// MarshalText encodes the subtype name.
func (t SatelliteType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Satellite is a T designator. A1 is a geographical area and A2 a grid
// reference time.
type Satellite struct {
	Type          SatelliteType  `json:"type"`
	Area          GeographicArea `json:"area"`
	ReferenceTime ReferenceTime  `json:"reference_time"`
	Enumerator    int            `json:"enumerator"`
}

func (Satellite) T1() byte { return byte(FamilySatellite) }

func (s Satellite) T2() byte { return satelliteTypes.letter(s.Type) }

func (s Satellite) String() string {
	return fmt.Sprintf("satellite/%s %s %s %02d", s.Type, s.Area, s.ReferenceTime, s.Enumerator)
}

func decodeSatellite(c code) (Designator, error) {
	t, ok := satelliteTypes.lookup(c.t2)
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
	ii, err := c.enumerator()
	if err != nil {
		return nil, err
	}
	return Satellite{Type: t, Area: area, ReferenceTime: rt, Enumerator: ii}, nil
}
