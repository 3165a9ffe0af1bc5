// Package rwr decodes NWS regional weather roundups (RWR).
//
// A roundup is a table: each line between a CITY column header and the $$
// section terminator is one station. Lines are decoded independently and a
// line that does not decode is reported without affecting the others.
package rwr

import (
	"regexp"
	"strconv"
	"strings"

	"emwin_parser/internal/codec"
	"emwin_parser/internal/wmo"
)

// Sky is the SKY/WX column.
type Sky int

const (
	SkyNotAvailable Sky = iota
	Sunny
	MostlySunny
	PartlySunny
	PartlyCloudy
	MostlyCloudy
	Cloudy
	Fair
	Clear
	Fog
	Haze
	Smoke
	Drizzle
	FreezingDrizzle
	LightRain
	Rain
	HeavyRain
	FreezingRain
	LightSnow
	Snow
	HeavySnow
	Flurries
	Sleet
	Thunderstorm
)

// skyCodes is the closed SKY/WX alphabet.
var skyCodes = []struct {
	code string
	sky  Sky
	name string
}{
	{"N/A", SkyNotAvailable, "not_available"},
	{"SUNNY", Sunny, "sunny"},
	{"MOSUNNY", MostlySunny, "mostly_sunny"},
	{"PTSUNNY", PartlySunny, "partly_sunny"},
	{"PTCLDY", PartlyCloudy, "partly_cloudy"},
	{"MOCLDY", MostlyCloudy, "mostly_cloudy"},
	{"CLOUDY", Cloudy, "cloudy"},
	{"FAIR", Fair, "fair"},
	{"CLEAR", Clear, "clear"},
	{"FOG", Fog, "fog"},
	{"HAZE", Haze, "haze"},
	{"SMOKE", Smoke, "smoke"},
	{"FRZ DRZL", FreezingDrizzle, "freezing_drizzle"},
	{"DRIZZLE", Drizzle, "drizzle"},
	{"LGT RAIN", LightRain, "light_rain"},
	{"HVY RAIN", HeavyRain, "heavy_rain"},
	{"FRZ RAIN", FreezingRain, "freezing_rain"},
	{"RAIN", Rain, "rain"},
	{"LGT SNOW", LightSnow, "light_snow"},
	{"HVY SNOW", HeavySnow, "heavy_snow"},
	{"SNOW", Snow, "snow"},
	{"FLURRIES", Flurries, "flurries"},
	{"SLEET", Sleet, "sleet"},
	{"TSTM", Thunderstorm, "thunderstorm"},
}

func (s Sky) String() string {
	for _, sc := range skyCodes {
		if sc.sky == s {
			return sc.name
		}
	}
	return "unknown"
}

func (s Sky) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// parseSky reads a sky keyword that ends at a token boundary.
func parseSky(c *codec.Cursor) (Sky, bool) {
	for _, sc := range skyCodes {
		mark := c.Mark()
		if c.Tag(sc.code) && c.AtBoundary() {
			return sc.sky, true
		}
		c.Reset(mark)
	}
	return 0, false
}

// Pressure is the PRES column: altimeter in inches of mercury and the
// tendency letter.
type Pressure struct {
	Inches   float64 `json:"inches"`
	Tendency string  `json:"tendency,omitempty"`
}

// Entry is one station line.
type Entry struct {
	City        string `json:"city"`
	Sky         Sky    `json:"sky"`
	Temperature int    `json:"temperature"`
	DewPoint    int    `json:"dew_point"`
	// RelativeHumidity is a percentage.
	RelativeHumidity int       `json:"relative_humidity"`
	Wind             string    `json:"wind,omitempty"`
	Pressure         *Pressure `json:"pressure,omitempty"`
	Remarks          string    `json:"remarks,omitempty"`
}

// Roundup is a decoded roundup body.
type Roundup struct {
	// Area is taken from an RWRxx line in the body when present.
	Area    *wmo.AreaCode `json:"area,omitempty"`
	Entries []Entry       `json:"entries"`
}

var (
	windToken     = regexp.MustCompile(`^(CALM|VRB\d{1,3}|[NSEW]{1,3}\d{1,3})(G\d{1,3})?$`)
	pressureToken = regexp.MustCompile(`^(\d{2}\.\d{2})([RFS]?)$`)
)

// Decode scans the body line by line. Only lines inside a CITY ... $$ section
// are decoded; blank lines there are ignored.
func Decode(body string) (Roundup, []*codec.Recovered) {
	var r Roundup
	var recovered []*codec.Recovered
	c := codec.NewCursor(body)
	inTable := false

	for !c.Done() {
		if !inTable {
			line := c.Line()
			switch {
			case strings.HasPrefix(line, "CITY"):
				inTable = true
			case r.Area == nil && len(line) == 5 && strings.HasPrefix(line, "RWR"):
				if a, err := wmo.ParseAreaCode(line[3], line[4]); err == nil {
					r.Area = &a
				}
			}
			continue
		}

		line := c.Rest()
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		switch {
		case strings.HasPrefix(line, "$$"):
			c.Line()
			inTable = false
			continue
		case len(strings.TrimSpace(line)) <= 1:
			c.Line()
			continue
		}

		e, rec := codec.Recover(c, parseEntry, codec.SkipPast('\n'))
		if rec != nil {
			recovered = append(recovered, rec)
			continue
		}
		r.Entries = append(r.Entries, e)
	}
	return r, recovered
}

// parseEntry reads one station line and its terminator.
func parseEntry(c *codec.Cursor) (Entry, error) {
	var e Entry

	// City names are free text, so the city ends at the first sky keyword
	// after at least one word.
	var city []string
	for {
		c.SkipSpace()
		if len(city) > 0 {
			if sky, ok := parseSky(c); ok {
				e.Sky = sky
				break
			}
		}
		w := c.Word()
		if w == "" {
			return e, c.Errorf("sky condition")
		}
		city = append(city, w)
	}
	e.City = strings.Join(city, " ")

	for _, f := range []*int{&e.Temperature, &e.DewPoint, &e.RelativeHumidity} {
		if err := c.Space(); err != nil {
			return e, err
		}
		v, err := codec.Int(c)
		if err != nil {
			return e, err
		}
		if !c.AtBoundary() {
			return e, c.Errorf("integer")
		}
		*f = v
	}

	rest := strings.Fields(strings.TrimRight(c.Line(), "\r"))
	if len(rest) > 0 && windToken.MatchString(rest[0]) {
		e.Wind = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		if m := pressureToken.FindStringSubmatch(rest[0]); m != nil {
			inches, _ := strconv.ParseFloat(m[1], 64)
			e.Pressure = &Pressure{Inches: inches, Tendency: m[2]}
			rest = rest[1:]
		}
	}
	e.Remarks = strings.Join(rest, " ")
	return e, nil
}
