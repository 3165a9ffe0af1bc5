package wmo

import "fmt"

// SurfaceType is T2 when T1 is S.
type SurfaceType int

const (
	SurfaceAviationRoutine SurfaceType = iota
	SurfaceRadarA
	SurfaceRadarB
	SurfaceRadarAB
	SurfaceSeismic
	SurfaceAtmospherics
	SurfaceRadiological
	SurfaceDCPStation
	SurfaceIntermediateSynoptic
	SurfaceMainSynoptic
	SurfaceNonstandardSynoptic
	SurfaceOceanographic
	SurfaceSpecialAviation
	SurfaceHydrologicalRiver
	SurfaceDriftingBuoy
	SurfaceSeaIce
	SurfaceSnowDepth
	SurfaceLakeIce
	SurfaceWaveInformation
	SurfaceMisc
	SurfaceSeismicWaveform
	SurfaceSeaLevelTsunami
)

var surfaceTypes = newLetterTable(
	entry('A', SurfaceAviationRoutine, "aviation_routine_report"),
	entry('B', SurfaceRadarA, "radar_report_a"),
	entry('C', SurfaceRadarB, "radar_report_b"),
	entry('D', SurfaceRadarAB, "radar_report_ab"),
	entry('E', SurfaceSeismic, "seismic"),
	entry('F', SurfaceAtmospherics, "atmospherics"),
	entry('G', SurfaceRadiological, "radiological_data"),
	entry('H', SurfaceDCPStation, "dcp_station"),
	entry('I', SurfaceIntermediateSynoptic, "intermediate_synoptic_hour"),
	entry('M', SurfaceMainSynoptic, "main_synoptic_hour"),
	entry('N', SurfaceNonstandardSynoptic, "nonstandard_synoptic_hour"),
	entry('O', SurfaceOceanographic, "oceanographic_data"),
	entry('P', SurfaceSpecialAviation, "special_aviation_report"),
	entry('R', SurfaceHydrologicalRiver, "hydrological_river_report"),
	entry('S', SurfaceDriftingBuoy, "drifting_buoy_report"),
	entry('T', SurfaceSeaIce, "sea_ice"),
	entry('U', SurfaceSnowDepth, "snow_depth"),
	entry('V', SurfaceLakeIce, "lake_ice"),
	entry('W', SurfaceWaveInformation, "wave_information"),
	entry('X', SurfaceMisc, "miscellaneous"),
	entry('Y', SurfaceSeismicWaveform, "seismic_waveform_data"),
	entry('Z', SurfaceSeaLevelTsunami, "sea_level_deep_ocean_tsunami"),
)

func (t SurfaceType) String() string { return surfaceTypes.name(t) }

// MarshalText encodes the subtype name.
func (t SurfaceType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Surface is an S designator.
type Surface struct {
	Type       SurfaceType `json:"type"`
	Area       AreaCode    `json:"area"`
	Enumerator int         `json:"enumerator"`
}

func (Surface) T1() byte { return byte(FamilySurface) }

func (s Surface) T2() byte { return surfaceTypes.letter(s.Type) }

func (s Surface) String() string {
	return fmt.Sprintf("surface/%s %s %02d", s.Type, s.Area, s.Enumerator)
}

func decodeSurface(c code) (Designator, error) {
	t, ok := surfaceTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return Surface{Type: t, Area: area, Enumerator: ii}, nil
}
