package wmo

import "fmt"

// NoticeType is T2 when T1 is N.
type NoticeType int

const (
	NoticeHydrological NoticeType = iota
	NoticeMarine
	NoticeNuclearEmergencyResponse
	NoticeMETNOWIFMA
	NoticeProductGenerationDelay
	NoticeTestMessage
	NoticeWarningRelatedOrCancellation
)

var noticeTypes = newLetterTable(
	entry('G', NoticeHydrological, "hydrological"),
	entry('H', NoticeMarine, "marine"),
	entry('N', NoticeNuclearEmergencyResponse, "nuclear_emergency_response"),
	entry('O', NoticeMETNOWIFMA, "metno_wifma"),
	entry('P', NoticeProductGenerationDelay, "product_generation_delay"),
	entry('T', NoticeTestMessage, "test_message"),
	entry('W', NoticeWarningRelatedOrCancellation, "warning_related_or_cancellation"),
)

func (t NoticeType) String() string { return noticeTypes.name(t) }

// MarshalText encodes the subtype name.
func (t NoticeType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Notice is an N designator.
type Notice struct {
	Type       NoticeType `json:"type"`
	Area       AreaCode   `json:"area"`
	Enumerator int        `json:"enumerator"`
}

func (Notice) T1() byte { return byte(FamilyNotice) }

func (n Notice) T2() byte { return noticeTypes.letter(n.Type) }

func (n Notice) String() string {
	return fmt.Sprintf("notice/%s %s %02d", n.Type, n.Area, n.Enumerator)
}

func decodeNotice(c code) (Designator, error) {
	t, ok := noticeTypes.lookup(c.t2)
	if !ok {
		return nil, c.badT2()
	}
	area, ii, err := c.areaAndEnumerator()
	if err != nil {
		return nil, err
	}
	return Notice{Type: t, Area: area, Enumerator: ii}, nil
}

// CAP is an X designator carrying a Common Alerting Protocol message. The
// category letter is left to national definition, so any upper-case letter
// is accepted.
type CAP struct {
	Category      byte           `json:"-"`
	Area          GeographicArea `json:"area"`
	ReferenceTime ReferenceTime  `json:"reference_time"`
	Enumerator    int            `json:"enumerator"`
}

func (CAP) T1() byte { return byte(FamilyCAP) }

func (x CAP) T2() byte { return x.Category }

func (x CAP) String() string {
	return fmt.Sprintf("cap/%c %s %s %02d", x.Category, x.Area, x.ReferenceTime, x.Enumerator)
}

func decodeCAP(c code) (Designator, error) {
	if !isUpper(c.t2) {
		return nil, c.badT2()
	}
	area, err := c.geographicArea()
	if err != nil {
		return nil, err
	}
	rt, err := c.regionalTime()
	if err != nil {
		return nil, err
	}
	ii, err := c.enumerator()
	if err != nil {
		return nil, err
	}
	return CAP{Category: c.t2, Area: area, ReferenceTime: rt, Enumerator: ii}, nil
}
