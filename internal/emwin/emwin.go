// Package emwin decodes the file names EMWIN receivers give text products,
// e.g. A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT.
package emwin

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"emwin_parser/internal/wmo"
)

// ErrInvalidFileName is wrapped by Parse when the name is not in EMWIN form.
var ErrInvalidFileName = errors.New("invalid EMWIN file name")

// FileName is a decoded EMWIN product file name.
type FileName struct {
	// Heading carries the TTAAii CCCC YYGGgg [BBB] fields embedded in the name
	// and the AWIPS identifier as its PIL.
	Heading wmo.Heading `json:"heading"`
	// Relay is the CCCC after _C_, the centre that put the file on the broadcast.
	Relay    string    `json:"relay"`
	Created  time.Time `json:"created"`
	Sequence int       `json:"sequence"`
	Priority int       `json:"priority"`
}

var namePattern = regexp.MustCompile(
	`^A_([A-Z]{4}[0-9A-Z]{2})([A-Z]{4})([0-9]{6})([A-Z]{3})?_C_([A-Z]{4})_([0-9]{14})_([0-9]+)-([0-9])-([A-Z0-9]+)$`)

// Parse decodes the base name of path. The extension is ignored. A name that
// is well formed but whose designator does not classify returns the decoded
// FileName together with the *wmo.DesignatorError.
func Parse(path string) (FileName, error) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := namePattern.FindStringSubmatch(strings.ToUpper(stem))
	if m == nil {
		return FileName{}, fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}

	line := m[1] + " " + m[2] + " " + m[3]
	if m[4] != "" {
		line += " " + m[4]
	}
	h, err := wmo.ParseHeading(line)
	var derr *wmo.DesignatorError
	if err != nil && !errors.As(err, &derr) {
		return FileName{}, fmt.Errorf("%w: %q: %w", ErrInvalidFileName, name, err)
	}
	h.PIL = m[9]

	created, perr := time.Parse("20060102150405", m[6])
	if perr != nil {
		return FileName{}, fmt.Errorf("%w: %q: creation time: %w", ErrInvalidFileName, name, perr)
	}
	seq, _ := strconv.Atoi(m[7])
	pri, _ := strconv.Atoi(m[8])

	fn := FileName{
		Heading:  h,
		Relay:    m[5],
		Created:  created.UTC(),
		Sequence: seq,
		Priority: pri,
	}
	if derr != nil {
		return fn, derr
	}
	return fn, nil
}

// Designator returns the classification of the embedded heading, or nil.
func (f FileName) Designator() wmo.Designator {
	return f.Heading.Designator
}

// Reference returns the creation time in UTC. Day-of-month times in the
// product body are resolved against it, which places them in the creation
// month unless they lie more than 15 days away from it.
func (f FileName) Reference() time.Time {
	return f.Created.UTC()
}

// IsText reports whether path looks like an EMWIN text product rather than
// an image or other payload.
func IsText(path string) bool {
	ext := strings.ToUpper(filepath.Ext(path))
	return ext == ".TXT" && strings.HasPrefix(strings.ToUpper(filepath.Base(path)), "A_")
}
