package metar

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

// Report is a decoded METAR or SPECI bulletin.
type Report struct {
	ID      uuid.UUID   `json:"bulletin_id"`
	Heading wmo.Heading `json:"heading"`
	Items   []Item      `json:"items"`
}

func (r *Report) Type() string          { return "metar" }
func (r *Report) BulletinID() uuid.UUID { return r.ID }

func (r *Report) Stations() []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Station)
	}
	return out
}

// Parser handles SA and SP bulletins.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string           { return "metar" }
func (p *Parser) Families() []wmo.Family { return []wmo.Family{wmo.FamilySurface} }
func (p *Parser) Priority() int          { return 20 }

func (p *Parser) Applies(d wmo.Designator) bool {
	s, ok := d.(wmo.Surface)
	return ok && (s.Type == wmo.SurfaceAviationRoutine || s.Type == wmo.SurfaceSpecialAviation)
}

var reportStart = regexp.MustCompile(`\b[A-Z][A-Z0-9]{3} \d{6}Z`)

func (p *Parser) QuickCheck(body string) bool {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "<") {
		return false
	}
	return strings.Contains(trimmed, "METAR") || strings.Contains(trimmed, "SPECI") ||
		reportStart.MatchString(trimmed)
}

func (p *Parser) Parse(b *bulletin.Bulletin) (registry.Report, []*codec.Recovered, error) {
	items, recovered := Decode(b.Body)
	if len(items) == 0 {
		return nil, recovered, registry.EmptyError(recovered)
	}
	return &Report{ID: b.ID, Heading: b.Heading, Items: items}, recovered, nil
}
