package rwr

import (
	"strings"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

// Report is a decoded roundup bulletin.
type Report struct {
	ID      uuid.UUID   `json:"bulletin_id"`
	Heading wmo.Heading `json:"heading"`
	Roundup
}

func (r *Report) Type() string          { return "rwr" }
func (r *Report) BulletinID() uuid.UUID { return r.ID }

// Stations returns the city names of the roundup.
func (r *Report) Stations() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.City)
	}
	return out
}

// Parser handles AS surface analyses carrying a roundup table.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string           { return "rwr" }
func (p *Parser) Families() []wmo.Family { return []wmo.Family{wmo.FamilyAnalysis} }
func (p *Parser) Priority() int          { return 10 }

func (p *Parser) Applies(d wmo.Designator) bool {
	a, ok := d.(wmo.Analysis)
	return ok && a.Type == wmo.AnalysisSurface
}

// QuickCheck looks for the CITY column header and either the RWR product
// line or the roundup title. The PIL line is usually split off into the
// heading, so the title is often the only marker left in the body.
func (p *Parser) QuickCheck(body string) bool {
	if !strings.Contains(body, "CITY") {
		return false
	}
	return strings.Contains(body, "RWR") || strings.Contains(body, "ROUNDUP")
}

// Screens holds for every AS designator: most surface analyses are not
// roundups, and a body without the table is one of those.
func (p *Parser) Screens(wmo.Designator) bool { return true }

func (p *Parser) Parse(b *bulletin.Bulletin) (registry.Report, []*codec.Recovered, error) {
	r, recovered := Decode(b.Body)
	if len(r.Entries) == 0 {
		return nil, recovered, registry.EmptyError(recovered)
	}
	if r.Area == nil && len(b.Heading.PIL) == 5 && strings.HasPrefix(b.Heading.PIL, "RWR") {
		if a, err := wmo.ParseAreaCode(b.Heading.PIL[3], b.Heading.PIL[4]); err == nil {
			r.Area = &a
		}
	}
	return &Report{ID: b.ID, Heading: b.Heading, Roundup: r}, recovered, nil
}
