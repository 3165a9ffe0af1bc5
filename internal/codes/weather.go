package codes

import (
	"strings"

	"emwin_parser/internal/codec"
)

// Intensity is the qualifier in front of a significant weather group.
type Intensity int

const (
	Moderate Intensity = iota
	Light
	Heavy
	Vicinity
)

func (i Intensity) String() string {
	switch i {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	case Vicinity:
		return "vicinity"
	default:
		return "moderate"
	}
}

// MarshalText encodes the intensity name.
func (i Intensity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Descriptor qualifies the precipitation or phenomenon.
type Descriptor int

const (
	NoDescriptor Descriptor = iota
	Shallow
	Patches
	Partial
	LowDrifting
	Blowing
	Showers
	Thunderstorm
	Supercooled
)

var descriptorCodes = map[string]Descriptor{
	"MI": Shallow,
	"BC": Patches,
	"PR": Partial,
	"DR": LowDrifting,
	"BL": Blowing,
	"SH": Showers,
	"TS": Thunderstorm,
	"FZ": Supercooled,
}

func (d Descriptor) String() string {
	switch d {
	case Shallow:
		return "shallow"
	case Patches:
		return "patches"
	case Partial:
		return "partial"
	case LowDrifting:
		return "low_drifting"
	case Blowing:
		return "blowing"
	case Showers:
		return "showers"
	case Thunderstorm:
		return "thunderstorm"
	case Supercooled:
		return "supercooled"
	default:
		return ""
	}
}

// MarshalText encodes the descriptor name.
func (d Descriptor) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Precipitation is a set of precipitation types reported together.
type Precipitation struct {
	bits uint8
}

// PrecipitationType is one member of a Precipitation set.
type PrecipitationType uint8

const (
	Drizzle PrecipitationType = 1 << iota
	Rain
	Snow
	SnowGrains
	IcePellets
	Hail
	SmallHail
	UnknownPrecipitation
)

var precipitationCodes = []struct {
	code string
	typ  PrecipitationType
	name string
}{
	{"DZ", Drizzle, "drizzle"},
	{"RA", Rain, "rain"},
	{"SN", Snow, "snow"},
	{"SG", SnowGrains, "snow_grains"},
	{"PL", IcePellets, "ice_pellets"},
	{"GR", Hail, "hail"},
	{"GS", SmallHail, "small_hail"},
	{"UP", UnknownPrecipitation, "unknown"},
}

// NewPrecipitation builds a set from the given types.
func NewPrecipitation(types ...PrecipitationType) Precipitation {
	var p Precipitation
	for _, t := range types {
		p.bits |= uint8(t)
	}
	return p
}

// Has reports whether t is in the set.
func (p Precipitation) Has(t PrecipitationType) bool {
	return p.bits&uint8(t) != 0
}

// Union returns the set of types in either p or o.
func (p Precipitation) Union(o Precipitation) Precipitation {
	return Precipitation{bits: p.bits | o.bits}
}

// Empty reports whether no precipitation is present.
func (p Precipitation) Empty() bool {
	return p.bits == 0
}

// Types lists the set members in code table order.
func (p Precipitation) Types() []string {
	var out []string
	for _, pc := range precipitationCodes {
		if p.Has(pc.typ) {
			out = append(out, pc.name)
		}
	}
	return out
}

func (p Precipitation) String() string {
	var sb strings.Builder
	for _, pc := range precipitationCodes {
		if p.Has(pc.typ) {
			sb.WriteString(pc.code)
		}
	}
	return sb.String()
}

// MarshalText encodes the set as its concatenated two-letter codes.
func (p Precipitation) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePrecipitation reads two-letter precipitation codes until none match.
// An empty run yields the empty set.
func ParsePrecipitation(c *codec.Cursor) Precipitation {
	var p Precipitation
	for {
		matched := false
		for _, pc := range precipitationCodes {
			if c.Tag(pc.code) {
				p.bits |= uint8(pc.typ)
				matched = true
				break
			}
		}
		if !matched {
			return p
		}
	}
}

// Phenomenon is an obscuration or other weather phenomenon.
type Phenomenon int

const (
	NoPhenomenon Phenomenon = iota
	Mist
	Fog
	Smoke
	VolcanicAsh
	Dust
	Sand
	Haze
	DustSandWhirls
	Squalls
	FunnelCloud
	Sandstorm
	Duststorm
)

var phenomenonCodes = map[string]Phenomenon{
	"BR": Mist,
	"FG": Fog,
	"FU": Smoke,
	"VA": VolcanicAsh,
	"DU": Dust,
	"SA": Sand,
	"HZ": Haze,
	"PO": DustSandWhirls,
	"SQ": Squalls,
	"FC": FunnelCloud,
	"SS": Sandstorm,
	"DS": Duststorm,
}

func (p Phenomenon) String() string {
	switch p {
	case Mist:
		return "mist"
	case Fog:
		return "fog"
	case Smoke:
		return "smoke"
	case VolcanicAsh:
		return "volcanic_ash"
	case Dust:
		return "dust"
	case Sand:
		return "sand"
	case Haze:
		return "haze"
	case DustSandWhirls:
		return "dust_sand_whirls"
	case Squalls:
		return "squalls"
	case FunnelCloud:
		return "funnel_cloud"
	case Sandstorm:
		return "sandstorm"
	case Duststorm:
		return "duststorm"
	default:
		return ""
	}
}

// MarshalText encodes the phenomenon name.
func (p Phenomenon) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SignificantWeather is one w'w' group.
type SignificantWeather struct {
	Intensity     Intensity     `json:"intensity"`
	Descriptor    Descriptor    `json:"descriptor,omitempty"`
	Precipitation Precipitation `json:"precipitation"`
	Phenomenon    Phenomenon    `json:"phenomenon,omitempty"`
}

// ParseSignificantWeather reads one w'w' group such as +SNRA, VCSH or FZFG.
// The group must end at a token boundary so that keywords like PROB30 are not
// read as weather.
func ParseSignificantWeather(c *codec.Cursor) (SignificantWeather, error) {
	mark := c.Mark()
	var w SignificantWeather

	switch {
	case c.Tag("-"):
		w.Intensity = Light
	case c.Tag("+"):
		w.Intensity = Heavy
	case c.Tag("VC"):
		w.Intensity = Vicinity
	}
	body := c.Mark()

	if d, ok := descriptorCodes[c.PeekN(2)]; ok {
		w.Descriptor = d
		c.Take(2)
	}

	w.Precipitation = ParsePrecipitation(c)

	if p, ok := phenomenonCodes[c.PeekN(2)]; ok {
		w.Phenomenon = p
		c.Take(2)
	}

	if c.Pos() == body || !c.AtBoundary() {
		c.Reset(mark)
		return SignificantWeather{}, c.Errorf("significant weather")
	}
	return w, nil
}
