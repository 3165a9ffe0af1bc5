package codes

import (
	"emwin_parser/internal/codec"
)

// Conditions is the visibility, weather and cloud part of a forecast or
// observation group.
type Conditions struct {
	// CAVOK: visibility 10 km or more, no significant weather or cloud.
	CAVOK bool `json:"cavok,omitempty"`
	// NSW: end of significant weather.
	NoSignificantWeather bool                 `json:"nsw,omitempty"`
	Visibility           *codec.Length        `json:"visibility,omitempty"`
	Weather              []SignificantWeather `json:"weather,omitempty"`
	Clouds               []CloudReport        `json:"clouds,omitempty"`
	ClearSky             string               `json:"clear_sky,omitempty"`
}

// tokenSpace skips the whitespace before the next token. Long groups wrap
// onto indented continuation lines, so line breaks are crossed too. It returns
// false, leaving the cursor unchanged, when no token follows before the end of
// the item.
func tokenSpace(c *codec.Cursor) bool {
	mark := c.Mark()
	if c.SkipWhitespace() == 0 || c.Done() || c.Peek() == '=' {
		c.Reset(mark)
		return false
	}
	return true
}

// ParseConditions reads the optional visibility, weather and cloud groups
// that follow a wind group. Each sub-list is optional and ends at the first
// token that does not match. The cursor is expected to be just after the
// previous token; leading blanks are consumed only when a group matches.
func ParseConditions(c *codec.Cursor) Conditions {
	var cond Conditions

	if Try(c, func(c *codec.Cursor) bool { return c.Tag("CAVOK") && c.AtBoundary() }) {
		cond.CAVOK = true
		return cond
	}

	Try(c, func(c *codec.Cursor) bool {
		v, err := ParseVisibility(c)
		if err != nil {
			return false
		}
		cond.Visibility = &v
		return true
	})

	for Try(c, func(c *codec.Cursor) bool {
		w, err := ParseSignificantWeather(c)
		if err != nil {
			return false
		}
		cond.Weather = append(cond.Weather, w)
		return true
	}) {
	}

	if Try(c, func(c *codec.Cursor) bool { return c.Tag("NSW") && c.AtBoundary() }) {
		cond.NoSignificantWeather = true
	}

	if Try(c, func(c *codec.Cursor) bool {
		code, ok := ParseClearSky(c)
		cond.ClearSky = code
		return ok
	}) {
		return cond
	}

	for Try(c, func(c *codec.Cursor) bool {
		r, err := ParseCloud(c)
		if err != nil {
			return false
		}
		cond.Clouds = append(cond.Clouds, r)
		return true
	}) {
	}

	return cond
}

// Try runs fn on the next token after the separating whitespace and rewinds
// the cursor if fn does not match. Nothing is consumed when no token follows
// before the end of the item.
func Try(c *codec.Cursor, fn func(*codec.Cursor) bool) bool {
	mark := c.Mark()
	if !tokenSpace(c) {
		return false
	}
	if !fn(c) {
		c.Reset(mark)
		return false
	}
	return true
}
