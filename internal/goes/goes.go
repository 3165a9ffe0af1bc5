// Package goes decodes GOES-R series ABI image file names such as
// OR_ABI-L2-CMIPM1-M6C02_G18_s20223200122250_e20223200122308_c20223200122372.jpg.
package goes

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"emwin_parser/internal/codec"
)

// ErrInvalidFileName is wrapped by every Parse failure.
var ErrInvalidFileName = errors.New("invalid GOES-R file name")

// Environment is the two letter system environment prefix.
type Environment int

const (
	OperationalRealTime Environment = iota
	OperationalTest
	TestRealTime
	TestData
	TestPlayback
	TestSimulated
)

var environments = []struct {
	code string
	env  Environment
	name string
}{
	{"OR", OperationalRealTime, "operational_realtime"},
	{"OT", OperationalTest, "operational_test"},
	{"IR", TestRealTime, "test_realtime"},
	{"IT", TestData, "test_data"},
	{"IP", TestPlayback, "test_playback"},
	{"IS", TestSimulated, "test_simulated"},
}

func (e Environment) String() string {
	for _, v := range environments {
		if v.env == e {
			return v.name
		}
	}
	return "unknown"
}

func (e Environment) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Satellite is one of the GOES-R series spacecraft.
type Satellite int

const (
	GOES16 Satellite = 16 + iota
	GOES17
	GOES18
	GOES19
)

func (s Satellite) String() string { return fmt.Sprintf("GOES%d", int(s)) }

func (s Satellite) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Sector is the ABI scan sector.
type Sector int

const (
	FullDisk Sector = iota
	CONUS
	Mesoscale1
	Mesoscale2
)

func (s Sector) String() string {
	return [...]string{"full_disk", "conus", "mesoscale1", "mesoscale2"}[s]
}

func (s Sector) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Mode is the ABI scan mode number (3, 4 or 6).
type Mode int

// FileName is a decoded GOES-R product file name.
type FileName struct {
	Environment Environment `json:"environment"`
	ShortName   ShortName   `json:"short_name"`
	Satellite   Satellite   `json:"satellite"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Created     time.Time   `json:"created"`
}

// ShortName is the data short name (DSN) part of the file name.
type ShortName struct {
	Instrument string  `json:"instrument"`
	Product    Product `json:"product"`
	// Channel is set for radiances, cloud and moisture imagery and derived
	// motion winds.
	Channel Channel `json:"channel,omitempty"`
	Sector  Sector  `json:"sector"`
	Mode    Mode    `json:"mode"`
}

// Parse decodes the base name of path. The parent directory decides how a
// full colour (FC) channel is read: images under CUSTOMLUT are drawn without
// country lines.
func Parse(path string) (FileName, error) {
	name := filepath.Base(path)
	countryLines := filepath.Base(filepath.Dir(path)) != "CUSTOMLUT"

	fn, err := parse(codec.NewCursor(name), countryLines)
	if err != nil {
		return FileName{}, fmt.Errorf("%w %q: %w", ErrInvalidFileName, name, err)
	}
	return fn, nil
}

func parse(c *codec.Cursor, countryLines bool) (FileName, error) {
	var fn FileName

	env, err := c.Take(2)
	if err != nil {
		return fn, err
	}
	found := false
	for _, v := range environments {
		if v.code == env {
			fn.Environment, found = v.env, true
		}
	}
	if !found {
		return fn, fmt.Errorf("system environment %q", env)
	}

	if err := c.Expect("_"); err != nil {
		return fn, err
	}
	if fn.ShortName, err = parseShortName(c, countryLines); err != nil {
		return fn, err
	}

	if err := c.Expect("_G"); err != nil {
		return fn, err
	}
	sat, err := codec.Digits(c, 2)
	if err != nil {
		return fn, err
	}
	if sat < int(GOES16) || sat > int(GOES19) {
		return fn, fmt.Errorf("satellite G%02d", sat)
	}
	fn.Satellite = Satellite(sat)

	for _, f := range []struct {
		tag string
		t   *time.Time
	}{
		{"_s", &fn.Start},
		{"_e", &fn.End},
		{"_c", &fn.Created},
	} {
		if err := c.Expect(f.tag); err != nil {
			return fn, err
		}
		if *f.t, err = timestamp(c); err != nil {
			return fn, err
		}
	}
	return fn, nil
}

// timestamp reads YYYYJJJHHMMSSt, where JJJ is the day of the year and t is
// tenths of a second.
func timestamp(c *codec.Cursor) (time.Time, error) {
	widths := []int{4, 3, 2, 2, 2, 1}
	v := make([]int, len(widths))
	for i, w := range widths {
		n, err := codec.Digits(c, w)
		if err != nil {
			return time.Time{}, err
		}
		v[i] = n
	}
	year, yday, hour, minute, second, tenths := v[0], v[1], v[2], v[3], v[4], v[5]

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if yday < 1 || yday > first.AddDate(1, 0, -1).YearDay() || hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, c.Errorf("valid day of year and time")
	}
	return first.AddDate(0, 0, yday-1).Add(
		time.Duration(hour)*time.Hour +
			time.Duration(minute)*time.Minute +
			time.Duration(second)*time.Second +
			time.Duration(tenths)*100*time.Millisecond), nil
}
