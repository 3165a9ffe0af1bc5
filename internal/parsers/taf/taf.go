// Package taf decodes aerodrome forecasts (FM 51 TAF).
package taf

import (
	"emwin_parser/internal/codec"
	"emwin_parser/internal/codes"
)

// Kind distinguishes routine forecasts from amendments and corrections.
type Kind int

const (
	Routine Kind = iota
	Amendment
	Correction
)

func (k Kind) String() string {
	switch k {
	case Amendment:
		return "amendment"
	case Correction:
		return "correction"
	default:
		return "routine"
	}
}

// MarshalText encodes the kind name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// GroupKind is the change indicator that opens a group.
type GroupKind int

const (
	// From is an FMYYGGgg group: conditions from a point in time.
	From GroupKind = iota
	// Becoming is a BECMG group: a change during the window.
	Becoming
	// Temporary is a TEMPO group.
	Temporary
	// Probable is a PROBnn group without TEMPO.
	Probable
	// ProbableTemporary is PROBnn TEMPO.
	ProbableTemporary
)

func (k GroupKind) String() string {
	switch k {
	case Becoming:
		return "becoming"
	case Temporary:
		return "temporary"
	case Probable:
		return "probable"
	case ProbableTemporary:
		return "probable_temporary"
	default:
		return "from"
	}
}

// MarshalText encodes the group kind name.
func (k GroupKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// WindShear is a WShhh/dddffKT low-level wind shear group.
type WindShear struct {
	// Height is the top of the shear layer.
	Height codec.Length `json:"height"`
	Wind   codes.Wind   `json:"wind"`
}

// Temperature is a TX or TN forecast temperature group.
type Temperature struct {
	Maximum bool          `json:"maximum"`
	Value   codec.Celsius `json:"value"`
	At      codes.DayTime `json:"at"`
}

// Group is one change group within an item. Groups keep document order.
type Group struct {
	Kind GroupKind `json:"kind"`
	// Probability is the PROB percentage; zero when not given.
	Probability  int              `json:"probability,omitempty"`
	From         codes.DayTime    `json:"from"`
	To           *codes.DayTime   `json:"to,omitempty"`
	Wind         *codes.Wind      `json:"wind,omitempty"`
	Conditions   codes.Conditions `json:"conditions"`
	WindShear    *WindShear       `json:"wind_shear,omitempty"`
	Temperatures []Temperature    `json:"temperatures,omitempty"`
}

// Item is one station's forecast.
type Item struct {
	Kind    Kind          `json:"kind"`
	Station string        `json:"station"`
	Issued  codes.DayTime `json:"issued"`
	// Nil is set for a TAF NIL, which carries nothing else.
	Nil       bool          `json:"nil,omitempty"`
	Valid     *codes.Period `json:"valid,omitempty"`
	Cancelled bool          `json:"cancelled,omitempty"`

	Wind         *codes.Wind      `json:"wind,omitempty"`
	Conditions   codes.Conditions `json:"conditions"`
	WindShear    *WindShear       `json:"wind_shear,omitempty"`
	Temperatures []Temperature    `json:"temperatures,omitempty"`
	Groups       []Group          `json:"groups,omitempty"`
	Remarks      string           `json:"remarks,omitempty"`
}

// Decode parses every forecast in a TAF bulletin body. An item whose header
// does not parse is skipped up to its terminating '=' and reported; a group
// that does not parse is skipped to the end of its line and reported. Decode
// never fails as a whole.
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
	recovered []*codec.Recovered
}

func (d *decoder) item(c *codec.Cursor) (Item, error) {
	var it Item

	if c.Tag("TAF") {
		mark := c.Mark()
		c.SkipWhitespace()
		switch {
		case c.Tag("AMD"):
			it.Kind = Amendment
		case c.Tag("COR"):
			it.Kind = Correction
		default:
			c.Reset(mark)
		}
	}

	c.SkipWhitespace()
	station := c.TakeWhile(codec.IsAlnum)
	if len(station) != 4 || !codec.IsUpper(station[0]) {
		return it, c.Errorf("station identifier")
	}
	it.Station = station

	if err := c.Space(); err != nil {
		return it, err
	}
	issued, err := codes.ParseDayTimeZ(c)
	if err != nil {
		return it, err
	}
	it.Issued = issued

	c.SkipWhitespace()
	if c.Tag("NIL") {
		it.Nil = true
		return it, d.end(c)
	}
	valid, err := codes.ParsePeriod(c)
	if err != nil {
		return it, err
	}
	it.Valid = &valid

	c.SkipWhitespace()
	if c.Tag("CNL") {
		it.Cancelled = true
		return it, d.end(c)
	}
	wind, err := codes.ParseWind(c)
	if err != nil {
		return it, err
	}
	it.Wind = &wind

	it.Conditions = codes.ParseConditions(c)
	it.WindShear = parseWindShear(c)
	it.Temperatures = parseTemperatures(c)

	for {
		c.SkipWhitespace()
		if c.Done() {
			return it, nil
		}
		if c.Tag("=") {
			return it, nil
		}
		if c.HasPrefix("RMK") || c.HasPrefix("AMD ") {
			it.Remarks = c.TakeUntil("=")
			continue
		}
		g, rec := codec.Recover(c, parseGroup, codec.SkipUntil("\n="))
		if rec != nil {
			d.recovered = append(d.recovered, rec)
			continue
		}
		it.Groups = append(it.Groups, g)
	}
}

// end expects the item terminator after NIL or CNL.
func (d *decoder) end(c *codec.Cursor) error {
	c.SkipWhitespace()
	if c.Done() || c.Tag("=") {
		return nil
	}
	return c.Errorf("=")
}

func parseGroup(c *codec.Cursor) (Group, error) {
	var g Group

	switch {
	case c.Tag("BECMG"):
		g.Kind = Becoming
		if err := windowAfterSpace(c, &g); err != nil {
			return g, err
		}
	case c.Tag("TEMPO"):
		g.Kind = Temporary
		if err := windowAfterSpace(c, &g); err != nil {
			return g, err
		}
	case c.Tag("FM"):
		g.Kind = From
		from, err := codes.ParseDayTime(c)
		if err != nil {
			return g, err
		}
		g.From = from
	case c.Tag("PROB"):
		p, err := codec.Digits(c, 2)
		if err != nil {
			return g, err
		}
		g.Probability = p
		g.Kind = Probable
		mark := c.Mark()
		c.SkipSpace()
		if c.Tag("TEMPO") {
			g.Kind = ProbableTemporary
		} else {
			c.Reset(mark)
		}
		if err := windowAfterSpace(c, &g); err != nil {
			return g, err
		}
	default:
		return g, c.Errorf("change group")
	}

	codes.Try(c, func(c *codec.Cursor) bool {
		w, err := codes.ParseWind(c)
		if err != nil {
			return false
		}
		g.Wind = &w
		return true
	})
	g.Conditions = codes.ParseConditions(c)
	g.WindShear = parseWindShear(c)
	g.Temperatures = parseTemperatures(c)

	// The group must end at a line break, the item end or the next group.
	mark := c.Mark()
	defer c.Reset(mark)
	c.SkipSpace()
	if c.Done() || c.Peek() == '=' || c.Peek() == '\n' || c.Peek() == '\r' {
		return g, nil
	}
	if startsGroup(c) {
		return g, nil
	}
	return g, c.Errorf("end of group")
}

func windowAfterSpace(c *codec.Cursor, g *Group) error {
	if err := c.Space(); err != nil {
		return err
	}
	p, err := codes.ParsePeriod(c)
	if err != nil {
		return err
	}
	g.From = p.From
	g.To = &p.To
	return nil
}

var groupIntroducers = []string{"FM", "BECMG", "TEMPO", "PROB", "RMK", "AMD "}

func startsGroup(c *codec.Cursor) bool {
	for _, s := range groupIntroducers {
		if c.HasPrefix(s) {
			return true
		}
	}
	return false
}

func parseWindShear(c *codec.Cursor) *WindShear {
	var ws *WindShear
	codes.Try(c, func(c *codec.Cursor) bool {
		if !c.Tag("WS") {
			return false
		}
		h, err := codec.Digits(c, 3)
		if err != nil || !c.Tag("/") {
			return false
		}
		w, err := codes.ParseWind(c)
		if err != nil {
			return false
		}
		ws = &WindShear{
			Height: codec.Length{Value: float64(h) * 100, Unit: codec.Feet},
			Wind:   w,
		}
		return true
	})
	return ws
}

func parseTemperatures(c *codec.Cursor) []Temperature {
	var temps []Temperature
	for codes.Try(c, func(c *codec.Cursor) bool {
		var t Temperature
		switch {
		case c.Tag("TX"):
			t.Maximum = true
		case c.Tag("TN"):
		default:
			return false
		}
		v, err := codes.ParseTemperature(c, 2)
		if err != nil || !c.Tag("/") {
			return false
		}
		at, err := codes.ParseDayHour(c)
		if err != nil || !c.Tag("Z") {
			return false
		}
		t.Value, t.At = v, at
		temps = append(temps, t)
		return true
	}) {
	}
	return temps
}
