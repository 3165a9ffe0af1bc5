package bulletin

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"emwin_parser/internal/wmo"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain", []byte("TAF KIAD=\n"), "TAF KIAD=\n"},
		{"awips line endings", []byte("\x01\r\r\n000 \r\r\nTAF=\r\r\n\x03"), "\n000 \nTAF=\n"},
		{"crlf", []byte("A\r\nB\r\n"), "A\nB\n"},
		{"latin1", []byte{'S', 'A', 'O', ' ', 0xC9, 'T', 'E'}, "SAO ÉTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalise(tt.input); got != tt.want {
				t.Errorf("Normalise = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	raw := []byte("\x01\r\r\n123 \r\r\nFTUS80 KWBC 151720\r\r\nTAFLWX\r\r\nTAF KIAD 151720Z 1518/1624 18010KT P6SM SKC=\r\r\n\x03")
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	ref := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)

	b, err := Parse(raw, Options{ID: id, Source: "test.txt", Reference: ref})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if b.ID != id {
		t.Errorf("ID = %s, want %s", b.ID, id)
	}
	if b.Heading.Origin != "KWBC" || b.Heading.PIL != "TAFLWX" {
		t.Errorf("Heading = %+v", b.Heading)
	}
	if _, ok := b.Designator.(wmo.Forecast); !ok {
		t.Errorf("Designator = %T, want wmo.Forecast", b.Designator)
	}
	if b.Body != "TAF KIAD 151720Z 1518/1624 18010KT P6SM SKC=\n" {
		t.Errorf("Body = %q", b.Body)
	}
	if !b.Reference.Equal(ref) {
		t.Errorf("Reference = %v, want %v", b.Reference, ref)
	}
	if b.Type() != "forecast" {
		t.Errorf("Type = %q, want forecast", b.Type())
	}
}

func TestParseAssignsID(t *testing.T) {
	b, err := Parse([]byte("SAUS70 KWBC 151700\nMETAR KIAD 151652Z 18010KT=\n"), Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Error("expected generated ID")
	}
	if b.Received.IsZero() || !b.Reference.Equal(b.Received) {
		t.Errorf("Received = %v, Reference = %v", b.Received, b.Reference)
	}
}

func TestParseUnsupportedDesignator(t *testing.T) {
	b, err := Parse([]byte("BMBB01 KWBC 151700\nhello\n"), Options{})
	if !errors.Is(err, wmo.ErrUnsupportedFamily) {
		t.Fatalf("error = %v, want ErrUnsupportedFamily", err)
	}
	if b == nil || b.Body != "hello\n" {
		t.Fatalf("bulletin = %+v, want body kept", b)
	}
	if b.Type() != "unclassified" {
		t.Errorf("Type = %q, want unclassified", b.Type())
	}

	override := wmo.MustClassify("FTUS80")
	b, err = Parse([]byte("BMBB01 KWBC 151700\nhello\n"), Options{Designator: override})
	if err != nil {
		t.Fatalf("Parse with designator returned error: %v", err)
	}
	if b.Designator != override {
		t.Errorf("Designator = %v, want %v", b.Designator, override)
	}
}

func TestParseNoHeading(t *testing.T) {
	if _, err := Parse([]byte("\n\n"), Options{Source: "empty.txt"}); !errors.Is(err, wmo.ErrInvalidHeading) {
		t.Errorf("error = %v, want ErrInvalidHeading", err)
	}
}
