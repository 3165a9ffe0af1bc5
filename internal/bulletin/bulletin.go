// Package bulletin provides the Bulletin type handed from ingestion to the
// report decoders.
package bulletin

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"emwin_parser/internal/wmo"
)

// Bulletin is one meteorological text product split into heading and body.
type Bulletin struct {
	// ID is assigned by the caller and keys every stored report.
	ID uuid.UUID `json:"id"`
	// Source is where the bulletin came from, usually a file path.
	Source   string    `json:"source,omitempty"`
	Received time.Time `json:"received"`
	// Reference anchors day-of-month times in the body to a month.
	Reference time.Time   `json:"reference"`
	Heading   wmo.Heading `json:"heading"`
	// Designator is the classification used for dispatch. It comes from the
	// heading unless the filename supplied one.
	Designator wmo.Designator `json:"-"`
	Body       string         `json:"body"`
}

// Options control how raw text becomes a Bulletin.
type Options struct {
	ID        uuid.UUID
	Source    string
	Received  time.Time
	Reference time.Time
	// Designator overrides the heading classification, e.g. from an EMWIN
	// filename.
	Designator wmo.Designator
}

// Parse normalises raw and splits it into heading and body. A heading whose
// designator does not classify still yields a Bulletin; the *wmo.DesignatorError
// is returned alongside it unless opts carries a designator.
func Parse(raw []byte, opts Options) (*Bulletin, error) {
	text := Normalise(raw)
	h, body, err := wmo.SplitBulletin(text)
	var derr *wmo.DesignatorError
	if err != nil && !errors.As(err, &derr) {
		return nil, fmt.Errorf("bulletin %s: %w", opts.Source, err)
	}

	b := &Bulletin{
		ID:         opts.ID,
		Source:     opts.Source,
		Received:   opts.Received,
		Reference:  opts.Reference,
		Heading:    h,
		Designator: h.Designator,
		Body:       body,
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Received.IsZero() {
		b.Received = time.Now().UTC()
	}
	if b.Reference.IsZero() {
		b.Reference = b.Received
	}
	if opts.Designator != nil {
		b.Designator = opts.Designator
		return b, nil
	}
	if derr != nil {
		return b, derr
	}
	return b, nil
}

// Normalise returns raw as UTF-8 text with line endings reduced to \n and the
// start/end of transmission control characters removed. Input that is not
// valid UTF-8 is decoded as ISO 8859-1, which is what legacy feeds emit.
func Normalise(raw []byte) string {
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			text = strings.ToValidUTF8(string(raw), "?")
		} else {
			text = string(decoded)
		}
	}
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\x01', '\x03', '\x1e':
			return -1
		}
		return r
	}, text)
	text = strings.ReplaceAll(text, "\r\r\n", "\n")
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// Type returns the family name of the dispatch designator, or "unclassified".
func (b *Bulletin) Type() string {
	if b.Designator == nil {
		return "unclassified"
	}
	return wmo.FamilyOf(b.Designator).String()
}
