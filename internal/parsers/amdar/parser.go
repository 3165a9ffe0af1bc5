package amdar

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

// Report is a decoded AMDAR bulletin.
type Report struct {
	ID      uuid.UUID   `json:"bulletin_id"`
	Heading wmo.Heading `json:"heading"`
	Observations
}

func (r *Report) Type() string          { return "amdar" }
func (r *Report) BulletinID() uuid.UUID { return r.ID }

// Stations returns the distinct aircraft identifiers.
func (r *Report) Stations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range r.Items {
		if !seen[it.Aircraft] {
			seen[it.Aircraft] = true
			out = append(out, it.Aircraft)
		}
	}
	return out
}

// Parser handles UD bulletins.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string           { return "amdar" }
func (p *Parser) Families() []wmo.Family { return []wmo.Family{wmo.FamilyUpperAir} }
func (p *Parser) Priority() int          { return 10 }

func (p *Parser) Applies(d wmo.Designator) bool {
	u, ok := d.(wmo.UpperAir)
	if !ok {
		return false
	}
	form, ok := u.Type.AircraftReport()
	return ok && form == wmo.CodeFormAMDAR
}

func (p *Parser) QuickCheck(body string) bool {
	return strings.Contains(body, "AMDAR")
}

func (p *Parser) Parse(b *bulletin.Bulletin) (registry.Report, []*codec.Recovered, error) {
	obs, recovered, err := Decode(b.Body)
	if err != nil {
		return nil, recovered, fmt.Errorf("amdar header: %w", err)
	}
	if len(obs.Items) == 0 {
		return nil, recovered, registry.EmptyError(recovered)
	}
	return &Report{ID: b.ID, Heading: b.Heading, Observations: obs}, recovered, nil
}
