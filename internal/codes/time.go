package codes

import (
	"fmt"
	"time"

	"emwin_parser/internal/codec"
)

// DayTime is a time within an unstated month, as reported in YYGGgg groups.
type DayTime struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t DayTime) String() string {
	return fmt.Sprintf("%02d%02d%02dZ", t.Day, t.Hour, t.Minute)
}

// Duration returns the offset from the start of the month.
func (t DayTime) Duration() time.Duration {
	return time.Duration(t.Day)*24*time.Hour +
		time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute
}

// Resolve places the day-of-month time in the month of ref. When the day is
// more than 15 days after ref it is taken to be in the previous month, and
// when it is more than 15 days before ref in the following month, so that
// reports straddling a month boundary land in the right month.
func (t DayTime) Resolve(ref time.Time) time.Time {
	ref = ref.UTC()
	at := func(year int, month time.Month) time.Time {
		// Day 0 of a month is not valid; hour 24 rolls over.
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Add(t.Duration() - 24*time.Hour)
	}
	candidate := at(ref.Year(), ref.Month())
	switch diff := candidate.Sub(ref); {
	case diff > 15*24*time.Hour:
		candidate = at(ref.Year(), ref.Month()-1)
	case diff < -15*24*time.Hour:
		candidate = at(ref.Year(), ref.Month()+1)
	}
	return candidate
}

func (t DayTime) valid() bool {
	return t.Day >= 1 && t.Day <= 31 && t.Hour <= 24 && t.Minute <= 59
}

// ParseDayTime reads DDHHMM.
func ParseDayTime(c *codec.Cursor) (DayTime, error) {
	mark := c.Mark()
	var t DayTime
	for _, f := range []*int{&t.Day, &t.Hour, &t.Minute} {
		v, err := codec.Digits(c, 2)
		if err != nil {
			c.Reset(mark)
			return DayTime{}, err
		}
		*f = v
	}
	if !t.valid() {
		c.Reset(mark)
		return DayTime{}, c.Errorf("day, hour and minute")
	}
	return t, nil
}

// ParseDayTimeZ reads DDHHMMZ.
func ParseDayTimeZ(c *codec.Cursor) (DayTime, error) {
	mark := c.Mark()
	t, err := ParseDayTime(c)
	if err != nil {
		return t, err
	}
	if !c.Tag("Z") {
		c.Reset(mark)
		return DayTime{}, c.Errorf("Z")
	}
	return t, nil
}

// ParseDayHour reads DDHH.
func ParseDayHour(c *codec.Cursor) (DayTime, error) {
	mark := c.Mark()
	day, err := codec.Digits(c, 2)
	if err != nil {
		return DayTime{}, err
	}
	hour, err := codec.Digits(c, 2)
	if err != nil {
		c.Reset(mark)
		return DayTime{}, err
	}
	t := DayTime{Day: day, Hour: hour}
	if !t.valid() {
		c.Reset(mark)
		return DayTime{}, c.Errorf("day and hour")
	}
	return t, nil
}

// Period is a DDHH/DDHH validity window.
type Period struct {
	From DayTime `json:"from"`
	To   DayTime `json:"to"`
}

// ParsePeriod reads DDHH/DDHH.
func ParsePeriod(c *codec.Cursor) (Period, error) {
	mark := c.Mark()
	from, err := ParseDayHour(c)
	if err != nil {
		return Period{}, err
	}
	if !c.Tag("/") {
		c.Reset(mark)
		return Period{}, c.Errorf("/")
	}
	to, err := ParseDayHour(c)
	if err != nil {
		c.Reset(mark)
		return Period{}, err
	}
	return Period{From: from, To: to}, nil
}
