package goes

import (
	"fmt"
	"strings"

	"emwin_parser/internal/codec"
)

// Product is the processing level and product acronym of a data short name.
type Product int

const (
	// Radiances is the only level 1b product.
	Radiances Product = iota
	CloudTopHeight
	CloudTopTemperature
	ClearSkyMasks
	CloudTopPhaseProduct
	AerosolDetection
	CloudMoistureImagery
	MultibandCloudMoistureImagery
	CloudOpticalDepth
	CloudParticleSizeDistribution
	CloudTopPressure
	DerivedMotionWinds
	DerivedMotionWindsBand8
	DerivedStabilityIndices
	DownwardShortwaveSurface
	FireHotCharacterization
	SnowCover
	LandSurfaceTemperature
	LegacyVerticalMoistureProfile
	LegacyVerticalTemperatureProfile
	RainfallRate
	ReflectedShortwave
	SeaSurfaceTemperature
	TotalPrecipitableWater
)

// level2 lists the L2 acronyms. Where one acronym is a prefix of another the
// longer one comes first.
var level2 = []struct {
	acronym string
	product Product
	name    string
}{
	{"ACHA", CloudTopHeight, "cloud_top_height"},
	{"ACHT", CloudTopTemperature, "cloud_top_temperature"},
	{"ACM", ClearSkyMasks, "clear_sky_masks"},
	{"ACTP", CloudTopPhaseProduct, "cloud_top_phase"},
	{"ADP", AerosolDetection, "aerosol_detection"},
	{"CMIP", CloudMoistureImagery, "cloud_moisture_imagery"},
	{"MCMIP", MultibandCloudMoistureImagery, "multiband_cloud_moisture_imagery"},
	{"COD", CloudOpticalDepth, "cloud_optical_depth"},
	{"CPS", CloudParticleSizeDistribution, "cloud_particle_size"},
	{"CTP", CloudTopPressure, "cloud_top_pressure"},
	{"DMWV", DerivedMotionWindsBand8, "derived_motion_winds_band8"},
	{"DMW", DerivedMotionWinds, "derived_motion_winds"},
	{"DSI", DerivedStabilityIndices, "derived_stability_indices"},
	{"DSR", DownwardShortwaveSurface, "downward_shortwave_surface"},
	{"FDC", FireHotCharacterization, "fire_hot_characterization"},
	{"FSC", SnowCover, "snow_cover"},
	{"LST", LandSurfaceTemperature, "land_surface_temperature"},
	{"LVMP", LegacyVerticalMoistureProfile, "legacy_vertical_moisture_profile"},
	{"LVTP", LegacyVerticalTemperatureProfile, "legacy_vertical_temperature_profile"},
	{"RRQPE", RainfallRate, "rainfall_rate"},
	{"RSR", ReflectedShortwave, "reflected_shortwave"},
	{"SST", SeaSurfaceTemperature, "sea_surface_temperature"},
	{"TPW", TotalPrecipitableWater, "total_precipitable_water"},
}

func (p Product) String() string {
	if p == Radiances {
		return "radiances"
	}
	for _, v := range level2 {
		if v.product == p {
			return v.name
		}
	}
	return "unknown"
}

func (p Product) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Level returns "L1b" or "L2".
func (p Product) Level() string {
	if p == Radiances {
		return "L1b"
	}
	return "L2"
}

// hasChannel reports whether the product names a band after the mode.
func (p Product) hasChannel() bool {
	return p == Radiances || p == CloudMoistureImagery || p == DerivedMotionWinds
}

// Channel is an ABI band 1-16, or one of the full colour composites.
type Channel int

const (
	NoChannel Channel = iota
	Blue
	Red
	Veggie
	Cirrus
	SnowIce
	CloudParticleSize
	ShortwaveWindow
	UpperLevelWaterVapor
	MidLevelWaterVapor
	LowerLevelWaterVapor
	CloudTopPhase
	Ozone
	CleanIR
	IR
	DirtyIR
	CO2
	// FullColor and FullColorCountries are the FC composites without and
	// with country lines.
	FullColor
	FullColorCountries
)

var channelNames = [...]string{
	"", "blue", "red", "veggie", "cirrus", "snow_ice", "cloud_particle_size",
	"shortwave_window", "upper_level_water_vapor", "mid_level_water_vapor",
	"lower_level_water_vapor", "cloud_top_phase", "ozone", "clean_ir", "ir",
	"dirty_ir", "co2", "full_color", "full_color_lines",
}

func (ch Channel) String() string {
	if ch < 0 || int(ch) >= len(channelNames) {
		return "unknown"
	}
	return channelNames[ch]
}

func (ch Channel) MarshalText() ([]byte, error) { return []byte(ch.String()), nil }

// Band returns the ABI band number, or 0 for the composites.
func (ch Channel) Band() int {
	if ch >= Blue && ch <= CO2 {
		return int(ch)
	}
	return 0
}

// parseShortName reads ABI-L1b-RadF-M6C13 or ABI-L2-CMIPM1-M6C02 style names.
func parseShortName(c *codec.Cursor, countryLines bool) (ShortName, error) {
	var dsn ShortName
	if err := c.Expect("ABI"); err != nil {
		return dsn, err
	}
	dsn.Instrument = "ABI"

	switch {
	case c.Tag("-L1b-Rad"):
		dsn.Product = Radiances
	case c.Tag("-L2-"):
		found := false
		for _, v := range level2 {
			if c.Tag(v.acronym) {
				dsn.Product, found = v.product, true
				break
			}
		}
		if !found {
			return dsn, c.Errorf("L2 product acronym")
		}
	default:
		return dsn, c.Errorf("-L1b-Rad or -L2-")
	}

	s, ok := c.OneOf("F", "C", "M1", "M2")
	if !ok {
		return dsn, c.Errorf("ABI sector")
	}
	dsn.Sector = map[string]Sector{"F": FullDisk, "C": CONUS, "M1": Mesoscale1, "M2": Mesoscale2}[s]

	if err := c.Expect("-M"); err != nil {
		return dsn, err
	}
	m, ok := c.OneOf("3", "4", "6")
	if !ok {
		return dsn, c.Errorf("ABI mode 3, 4 or 6")
	}
	dsn.Mode = Mode(m[0] - '0')

	if !dsn.Product.hasChannel() {
		return dsn, nil
	}
	if err := c.Expect("C"); err != nil {
		return dsn, err
	}
	if c.Tag("FC") {
		dsn.Channel = FullColor
		if countryLines {
			dsn.Channel = FullColorCountries
		}
		return dsn, nil
	}
	band, err := codec.Digits(c, 2)
	if err != nil {
		return dsn, err
	}
	if band < 1 || band > 16 {
		return dsn, fmt.Errorf("channel %02d not in 01-16", band)
	}
	dsn.Channel = Channel(band)
	return dsn, nil
}

func (dsn ShortName) String() string {
	var b strings.Builder
	b.WriteString(dsn.Instrument)
	b.WriteString("-" + dsn.Product.Level() + "-")
	if dsn.Product == Radiances {
		b.WriteString("Rad")
	} else {
		for _, v := range level2 {
			if v.product == dsn.Product {
				b.WriteString(v.acronym)
			}
		}
	}
	b.WriteString([...]string{"F", "C", "M1", "M2"}[dsn.Sector])
	fmt.Fprintf(&b, "-M%d", dsn.Mode)
	switch {
	case dsn.Channel == FullColor || dsn.Channel == FullColorCountries:
		b.WriteString("CFC")
	case dsn.Channel != NoChannel:
		fmt.Fprintf(&b, "C%02d", dsn.Channel.Band())
	}
	return b.String()
}
