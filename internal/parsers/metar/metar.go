// Package metar decodes aviation routine and special weather reports
// (FM 15 METAR and FM 16 SPECI).
package metar

import (
	"strings"

	"emwin_parser/internal/codec"
	"emwin_parser/internal/codes"
)

// PressureUnit is the unit of the altimeter setting.
type PressureUnit int

const (
	Hectopascals PressureUnit = iota
	InchesOfMercury
)

func (u PressureUnit) String() string {
	if u == InchesOfMercury {
		return "inHg"
	}
	return "hPa"
}

func (u PressureUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// Pressure is a QPPPP or APPPP altimeter setting.
type Pressure struct {
	Value float64      `json:"value"`
	Unit  PressureUnit `json:"unit"`
}

// WindShear is the WS group of the supplementary section.
type WindShear struct {
	// AllRunways is set for WS ALL RWY.
	AllRunways bool          `json:"all_runways,omitempty"`
	Runway     *codes.Runway `json:"runway,omitempty"`
}

// Item is one METAR or SPECI report.
type Item struct {
	Special   bool          `json:"special,omitempty"`
	Corrected bool          `json:"corrected,omitempty"`
	Auto      bool          `json:"auto,omitempty"`
	Station   string        `json:"station"`
	Observed  codes.DayTime `json:"observed"`
	Nil       bool          `json:"nil,omitempty"`

	Wind              *codes.Wind                `json:"wind,omitempty"`
	VariableWind      *codes.VariableWind        `json:"variable_wind,omitempty"`
	MinimumVisibility *codes.MinimumVisibility   `json:"minimum_visibility,omitempty"`
	RunwayVisualRange []codes.RunwayVisualRange  `json:"runway_visual_range,omitempty"`
	Conditions        codes.Conditions           `json:"conditions"`
	Temperature       *codes.TemperaturePair     `json:"temperature,omitempty"`
	Pressure          *Pressure                  `json:"pressure,omitempty"`
	RecentWeather     []codes.SignificantWeather `json:"recent_weather,omitempty"`
	WindShear         *WindShear                 `json:"wind_shear,omitempty"`
	Sea               []codes.SeaSurface         `json:"sea,omitempty"`
	RunwayState       []codes.RunwayState        `json:"runway_state,omitempty"`
	// Remarks holds the trend and RMK sections verbatim.
	Remarks string `json:"remarks,omitempty"`
}

// Decode parses every report in a METAR or SPECI bulletin. A report whose
// header does not parse is skipped to its '=' and reported; an unknown group
// after the cloud section is skipped on its own and reported.
func Decode(body string) ([]Item, []*codec.Recovered) {
	d := &decoder{}
	c := codec.NewCursor(body)
	var items []Item

	for {
		c.SkipWhitespace()
		if c.Done() || c.HasPrefix("$$") || c.HasPrefix("NNNN") {
			break
		}
		item, rec := codec.Recover(c, d.item, codec.SkipPast('='))
		if rec != nil {
			d.recovered = append(d.recovered, rec)
			continue
		}
		items = append(items, item)
	}
	return items, d.recovered
}

type decoder struct {
	// special carries a collective's leading SPECI over to the reports that
	// follow without their own keyword.
	special   bool
	recovered []*codec.Recovered
}

func (d *decoder) item(c *codec.Cursor) (Item, error) {
	var it Item

	switch {
	case c.Tag("METAR"):
		d.special = false
		c.SkipWhitespace()
	case c.Tag("SPECI"):
		d.special = true
		c.SkipWhitespace()
	}
	it.Special = d.special

	if c.Tag("COR") {
		it.Corrected = true
		if err := c.Space(); err != nil {
			return it, err
		}
	}

	station := c.TakeWhile(codec.IsAlnum)
	if len(station) != 4 || !codec.IsUpper(station[0]) {
		return it, c.Errorf("station identifier")
	}
	it.Station = station

	if err := c.Space(); err != nil {
		return it, err
	}
	observed, err := codes.ParseDayTimeZ(c)
	if err != nil {
		return it, err
	}
	it.Observed = observed

	if err := c.Space(); err != nil {
		return it, err
	}
	switch {
	case c.Tag("NIL"):
		it.Nil = true
		c.SkipWhitespace()
		if c.Done() || c.Tag("=") {
			return it, nil
		}
		return it, c.Errorf("=")
	case c.Tag("AUTO"):
		it.Auto = true
		c.SkipSpace()
	case c.Tag("COR"):
		it.Corrected = true
		c.SkipSpace()
	}

	wind, err := codes.ParseWind(c)
	if err != nil {
		return it, err
	}
	it.Wind = &wind

	codes.Try(c, func(c *codec.Cursor) bool {
		vw, err := codes.ParseVariableWind(c)
		if err != nil || !c.AtBoundary() {
			return false
		}
		it.VariableWind = &vw
		return true
	})

	var vis *codec.Length
	codes.Try(c, func(c *codec.Cursor) bool {
		v, err := codes.ParseVisibility(c)
		if err != nil {
			return false
		}
		vis = &v
		return true
	})
	if vis != nil {
		codes.Try(c, func(c *codec.Cursor) bool {
			mv, err := codes.ParseMinimumVisibility(c)
			if err != nil || !c.AtBoundary() {
				return false
			}
			it.MinimumVisibility = &mv
			return true
		})
		for codes.Try(c, func(c *codec.Cursor) bool {
			rvr, err := codes.ParseRunwayVisualRange(c)
			if err != nil {
				return false
			}
			it.RunwayVisualRange = append(it.RunwayVisualRange, rvr)
			return true
		}) {
		}
	}
	it.Conditions = codes.ParseConditions(c)
	if vis != nil {
		it.Conditions.Visibility = vis
	}

	for codes.Try(c, func(c *codec.Cursor) bool { return supplementary(c, &it) }) {
	}

	for {
		c.SkipWhitespace()
		if c.Done() || c.Tag("=") {
			return it, nil
		}
		if startsRemarks(c) {
			it.Remarks = strings.Join(strings.Fields(c.TakeUntil("=")), " ")
			continue
		}
		_, rec := codec.Recover(c, func(c *codec.Cursor) (struct{}, error) {
			if supplementary(c, &it) {
				return struct{}{}, nil
			}
			return struct{}{}, c.Errorf("METAR group")
		}, codec.SkipWord)
		if rec != nil {
			d.recovered = append(d.recovered, rec)
		}
	}
}

var remarkIntroducers = []string{"RMK", "NOSIG", "BECMG", "TEMPO"}

func startsRemarks(c *codec.Cursor) bool {
	for _, s := range remarkIntroducers {
		if c.HasPrefix(s) {
			return true
		}
	}
	return false
}

// supplementary reads one group that may follow the cloud section. The
// cursor must be at the start of the group; it is left unchanged on failure.
func supplementary(c *codec.Cursor, it *Item) bool {
	mark := c.Mark()

	if tp, err := codes.ParseTemperaturePair(c); err == nil {
		it.Temperature = &tp
		return true
	}
	if p, ok := parsePressure(c); ok {
		it.Pressure = &p
		return true
	}
	if c.Tag("RE") {
		if w, err := codes.ParseSignificantWeather(c); err == nil {
			it.RecentWeather = append(it.RecentWeather, w)
			return true
		}
		c.Reset(mark)
	}
	if ws, ok := parseWindShear(c); ok {
		it.WindShear = &ws
		return true
	}
	if s, err := codes.ParseSeaSurface(c); err == nil {
		it.Sea = append(it.Sea, s)
		return true
	}
	if st, err := codes.ParseRunwayState(c); err == nil {
		it.RunwayState = append(it.RunwayState, st)
		return true
	}
	c.Reset(mark)
	return false
}

func parsePressure(c *codec.Cursor) (Pressure, bool) {
	mark := c.Mark()
	var p Pressure
	switch {
	case c.Tag("Q"):
		p.Unit = Hectopascals
	case c.Tag("A"):
		p.Unit = InchesOfMercury
	default:
		return p, false
	}
	v, err := codec.Digits(c, 4)
	if err != nil || !c.AtBoundary() {
		c.Reset(mark)
		return Pressure{}, false
	}
	p.Value = float64(v)
	if p.Unit == InchesOfMercury {
		p.Value /= 100
	}
	return p, true
}

// parseWindShear reads WS ALL RWY or WS Rnn[LCR].
func parseWindShear(c *codec.Cursor) (WindShear, bool) {
	mark := c.Mark()
	if !c.Tag("WS") || c.SkipSpace() == 0 {
		c.Reset(mark)
		return WindShear{}, false
	}
	if c.Tag("ALL RWY") && c.AtBoundary() {
		return WindShear{AllRunways: true}, true
	}
	rw, err := codes.ParseRunway(c)
	if err != nil || !c.AtBoundary() {
		c.Reset(mark)
		return WindShear{}, false
	}
	return WindShear{Runway: &rw}, true
}
