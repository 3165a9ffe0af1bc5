package wmo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidHeading is returned when a line is not a TTAAii CCCC YYGGgg [BBB]
// abbreviated heading.
var ErrInvalidHeading = errors.New("invalid abbreviated heading")

// IndicatorKind is the meaning of the optional BBB group.
type IndicatorKind int

const (
	IndicatorNone IndicatorKind = iota
	IndicatorDelayed
	IndicatorCorrected
	IndicatorAmended
	IndicatorSegmented
)

func (k IndicatorKind) String() string {
	switch k {
	case IndicatorDelayed:
		return "delayed"
	case IndicatorCorrected:
		return "corrected"
	case IndicatorAmended:
		return "amended"
	case IndicatorSegmented:
		return "segmented"
	default:
		return "none"
	}
}

// MarshalText encodes the indicator kind name.
func (k IndicatorKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Indicator is a decoded BBB group. Sequence is the trailing letter for RRx,
// CCx and AAx, or the two letter segment code for Pxx.
type Indicator struct {
	Kind     IndicatorKind `json:"kind"`
	Sequence string        `json:"sequence,omitempty"`
}

var bbbPattern = regexp.MustCompile(`^(RR|CC|AA)([A-Z])$|^P([A-Z]{2})$`)

// ParseIndicator decodes a BBB group.
func ParseIndicator(s string) (Indicator, error) {
	m := bbbPattern.FindStringSubmatch(s)
	if m == nil {
		return Indicator{}, fmt.Errorf("%w: BBB %q", ErrInvalidHeading, s)
	}
	if m[3] != "" {
		return Indicator{Kind: IndicatorSegmented, Sequence: m[3]}, nil
	}
	kind := map[string]IndicatorKind{
		"RR": IndicatorDelayed,
		"CC": IndicatorCorrected,
		"AA": IndicatorAmended,
	}[m[1]]
	return Indicator{Kind: kind, Sequence: m[2]}, nil
}

func (i Indicator) String() string {
	switch i.Kind {
	case IndicatorDelayed:
		return "RR" + i.Sequence
	case IndicatorCorrected:
		return "CC" + i.Sequence
	case IndicatorAmended:
		return "AA" + i.Sequence
	case IndicatorSegmented:
		return "P" + i.Sequence
	}
	return ""
}

// Heading is a WMO abbreviated heading with the optional AFOS PIL line that
// follows it in AWIPS products.
type Heading struct {
	// TTAAii is the raw designator text.
	TTAAii     string     `json:"ttaaii"`
	Designator Designator `json:"-"`
	Origin     string     `json:"origin"`
	Day        int        `json:"day"`
	Hour       int        `json:"hour"`
	Minute     int        `json:"minute"`
	Indicator  Indicator  `json:"indicator"`
	PIL        string     `json:"pil,omitempty"`
}

var headingPattern = regexp.MustCompile(`^([A-Z]{4}[0-9A-Z]{2})\s+([A-Z]{4})\s+([0-9]{6})(?:\s+([A-Z]{3}))?\s*$`)

// ParseHeading decodes a TTAAii CCCC YYGGgg [BBB] line. When the line is well
// formed but its designator does not classify, the returned Heading is still
// populated and the error is the *DesignatorError from Classify.
func ParseHeading(line string) (Heading, error) {
	line = strings.TrimRight(line, "\r")
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return Heading{}, fmt.Errorf("%w: %q", ErrInvalidHeading, line)
	}
	h := Heading{TTAAii: m[1], Origin: m[2]}
	h.Day, _ = strconv.Atoi(m[3][0:2])
	h.Hour, _ = strconv.Atoi(m[3][2:4])
	h.Minute, _ = strconv.Atoi(m[3][4:6])
	if h.Day < 1 || h.Day > 31 || h.Hour > 23 || h.Minute > 59 {
		return Heading{}, fmt.Errorf("%w: time %s", ErrInvalidHeading, m[3])
	}
	if m[4] != "" {
		ind, err := ParseIndicator(m[4])
		if err != nil {
			return Heading{}, err
		}
		h.Indicator = ind
	}
	d, err := Classify(h.TTAAii)
	h.Designator = d
	return h, err
}

func (h Heading) String() string {
	s := fmt.Sprintf("%s %s %02d%02d%02d", h.TTAAii, h.Origin, h.Day, h.Hour, h.Minute)
	if h.Indicator.Kind != IndicatorNone {
		s += " " + h.Indicator.String()
	}
	return s
}

var pilPattern = regexp.MustCompile(`^[A-Z]{3}[A-Z0-9]{1,3}$`)

// Report keywords that can open a body on their own line and would otherwise
// pass for a PIL.
var bodyKeywords = map[string]bool{
	"METAR": true,
	"SPECI": true,
	"AMDAR": true,
}

// ParsePIL reports whether line is an AFOS product identifier such as TAFLWX.
func ParsePIL(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !pilPattern.MatchString(line) || bodyKeywords[line] {
		return "", false
	}
	return line, true
}

// SplitBulletin separates a bulletin into its heading and body. Leading blank
// lines and a numeric transmission sequence line are skipped, and a PIL line
// directly under the heading is stored on the heading rather than left in
// the body. A designator that does not classify is reported as in
// ParseHeading, with the heading and body still returned.
func SplitBulletin(text string) (Heading, string, error) {
	rest := text
	for {
		line, next, ok := cutLine(rest)
		if !ok && line == "" {
			return Heading{}, "", fmt.Errorf("%w: no heading line", ErrInvalidHeading)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isSequenceLine(trimmed) {
			rest = next
			continue
		}
		h, err := ParseHeading(trimmed)
		var derr *DesignatorError
		if err != nil && !errors.As(err, &derr) {
			return Heading{}, "", err
		}
		body := next
		if pline, after, _ := cutLine(body); pline != "" {
			if pil, ok := ParsePIL(pline); ok {
				h.PIL = pil
				body = after
			}
		}
		return h, body, err
	}
}

func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimRight(line, "\r"), rest, found
}

func isSequenceLine(s string) bool {
	if len(s) > 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
