package taf

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

// Report is a decoded TAF bulletin.
type Report struct {
	ID      uuid.UUID   `json:"bulletin_id"`
	Heading wmo.Heading `json:"heading"`
	Items   []Item      `json:"items"`
}

func (r *Report) Type() string          { return "taf" }
func (r *Report) BulletinID() uuid.UUID { return r.ID }

// Stations returns the aerodromes forecast, in bulletin order.
func (r *Report) Stations() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Station)
	}
	return out
}

// Parser decodes FC/FT forecasts and LC/LT aviation bulletins with a text body.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string { return "taf" }
func (p *Parser) Families() []wmo.Family {
	return []wmo.Family{wmo.FamilyForecast, wmo.FamilyAviationXML}
}
func (p *Parser) Priority() int { return 10 }

// Applies accepts aerodrome forecasts of either validity.
func (p *Parser) Applies(d wmo.Designator) bool {
	switch d := d.(type) {
	case wmo.Forecast:
		return d.Type.IsAerodrome()
	case wmo.AviationXML:
		return d.Type.IsTAF()
	}
	return false
}

// itemStart matches the CCCC YYGGggZ opening of a TAF item without the keyword.
var itemStart = regexp.MustCompile(`\b[A-Z][A-Z0-9]{3} \d{6}Z`)

// QuickCheck rejects XML bodies and anything without a TAF item opening.
func (p *Parser) QuickCheck(body string) bool {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "<") {
		return false
	}
	return strings.Contains(trimmed, "TAF") || itemStart.MatchString(trimmed)
}

// Screens holds for LC/LT headings, which mostly carry IWXXM XML rather
// than the text form.
func (p *Parser) Screens(d wmo.Designator) bool {
	_, ok := d.(wmo.AviationXML)
	return ok
}

func (p *Parser) Parse(b *bulletin.Bulletin) (registry.Report, []*codec.Recovered, error) {
	items, recovered := Decode(b.Body)
	if len(items) == 0 {
		return nil, recovered, registry.EmptyError(recovered)
	}
	return &Report{ID: b.ID, Heading: b.Heading, Items: items}, recovered, nil
}
