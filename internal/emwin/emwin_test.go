package emwin

import (
	"errors"
	"testing"
	"time"

	"emwin_parser/internal/wmo"
)

func TestParse(t *testing.T) {
	fn, err := Parse("/srv/emwin/A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if fn.Heading.TTAAii != "FTUS80" || fn.Heading.Origin != "KLWX" {
		t.Errorf("heading = %s", fn.Heading)
	}
	if fn.Heading.Day != 15 || fn.Heading.Hour != 11 || fn.Heading.Minute != 20 {
		t.Errorf("heading time = %02d%02d%02d, want 151120", fn.Heading.Day, fn.Heading.Hour, fn.Heading.Minute)
	}
	if fn.Heading.PIL != "TAFLWX" {
		t.Errorf("PIL = %q, want TAFLWX", fn.Heading.PIL)
	}
	if fn.Relay != "KWIN" || fn.Sequence != 142396 || fn.Priority != 2 {
		t.Errorf("relay, sequence, priority = %s, %d, %d", fn.Relay, fn.Sequence, fn.Priority)
	}

	created := time.Date(2022, time.October, 15, 11, 20, 12, 0, time.UTC)
	if !fn.Created.Equal(created) {
		t.Errorf("Created = %v, want %v", fn.Created, created)
	}
	if ref := fn.Reference(); !ref.Equal(created) {
		t.Errorf("Reference = %v, want %v", ref, created)
	}

	f, ok := fn.Designator().(wmo.Forecast)
	if !ok || !f.Type.IsAerodrome() {
		t.Errorf("Designator = %v, want an aerodrome forecast", fn.Designator())
	}
}

func TestParseIndicator(t *testing.T) {
	fn, err := Parse("A_SAUS70KWBC151200CCA_C_KWIN_20221015120301_142400-3-METAR1.TXT")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if fn.Heading.Indicator.Kind != wmo.IndicatorCorrected || fn.Heading.Indicator.Sequence != "A" {
		t.Errorf("Indicator = %+v, want CCA", fn.Heading.Indicator)
	}
}

func TestParseDesignatorError(t *testing.T) {
	fn, err := Parse("A_ZZUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT")
	var derr *wmo.DesignatorError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *wmo.DesignatorError", err)
	}
	if fn.Heading.TTAAii != "ZZUS80" || fn.Designator() != nil {
		t.Errorf("FileName = %+v", fn)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{
		"",
		"readme.txt",
		"A_FTUS80KLWX151120_C_KWIN_2022101511201_142396-2-TAFLWX.TXT",
		"A_FTUS80KLWX151120_C_KWIN_20221015112012-TAFLWX.TXT",
		"A_FTUS80KLWX321120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT",
		"A_FTUS80KLWX151120_C_KWIN_20221315112012_142396-2-TAFLWX.TXT",
	}
	for _, name := range tests {
		if _, err := Parse(name); !errors.Is(err, ErrInvalidFileName) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidFileName", name, err)
		}
	}
}

func TestIsText(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/in/A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT", true},
		{"/in/a_ftus80klwx151120_c_kwin_20221015112012_142396-2-taflwx.txt", true},
		{"/in/OR_ABI-L2-CMIPM1-M6C02_G18_s20223200122250_e20223200122308_c20223200122372.jpg", false},
		{"/in/A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.ZIS", false},
	}
	for _, tt := range tests {
		if got := IsText(tt.path); got != tt.want {
			t.Errorf("IsText(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
