// Package wmo decodes WMO abbreviated headings: the T1T2A1A2ii data type
// designator (WMO No. 386 Attachment II-5), its area, time and level values,
// and the TTAAii CCCC YYGGgg BBB heading line that carries it.
package wmo

// Designator is a decoded T1T2A1A2ii data type designator. Each T1 family is
// a distinct type; use a type switch to reach the family fields.
type Designator interface {
	// T1 returns the family letter.
	T1() byte
	// T2 returns the letter of the decoded subtype.
	T2() byte
	String() string
}

// Family is the T1 letter of a designator.
type Family byte

const (
	FamilyAnalysis          Family = 'A'
	FamilyAddressedMessage  Family = 'B'
	FamilyClimatic          Family = 'C'
	FamilyGridD             Family = 'D'
	FamilySatelliteImagery  Family = 'E'
	FamilyForecast          Family = 'F'
	FamilyGridG             Family = 'G'
	FamilyGridH             Family = 'H'
	FamilyObservationalBUFR Family = 'I'
	FamilyForecastBUFR      Family = 'J'
	FamilyCREX              Family = 'K'
	FamilyAviationXML       Family = 'L'
	FamilyNotice            Family = 'N'
	FamilyOceanographic     Family = 'O'
	FamilyPictorial         Family = 'P'
	FamilyRegionalPictorial Family = 'Q'
	FamilySurface           Family = 'S'
	FamilySatellite         Family = 'T'
	FamilyUpperAir          Family = 'U'
	FamilyNational          Family = 'V'
	FamilyWarning           Family = 'W'
	FamilyCAP               Family = 'X'
	FamilyGridY             Family = 'Y'
)

var familyNames = map[Family]string{
	FamilyAnalysis:          "analysis",
	FamilyAddressedMessage:  "addressed_message",
	FamilyClimatic:          "climatic_data",
	FamilyGridD:             "grid_point",
	FamilySatelliteImagery:  "satellite_imagery",
	FamilyForecast:          "forecast",
	FamilyGridG:             "grid_point",
	FamilyGridH:             "grid_point",
	FamilyObservationalBUFR: "observational_bufr",
	FamilyForecastBUFR:      "forecast_bufr",
	FamilyCREX:              "crex",
	FamilyAviationXML:       "aviation_xml",
	FamilyNotice:            "notice",
	FamilyOceanographic:     "oceanographic",
	FamilyPictorial:         "pictorial",
	FamilyRegionalPictorial: "regional_pictorial",
	FamilySurface:           "surface",
	FamilySatellite:         "satellite",
	FamilyUpperAir:          "upper_air",
	FamilyNational:          "national",
	FamilyWarning:           "warning",
	FamilyCAP:               "cap",
	FamilyGridY:             "grid_point",
}

func (f Family) String() string {
	if n, ok := familyNames[f]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the family name.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// FamilyOf returns the family of a decoded designator.
func FamilyOf(d Designator) Family {
	return Family(d.T1())
}

// code holds the six raw characters of a designator.
type code struct {
	t1, t2, a1, a2, i1, i2 byte
}

func (c code) String() string {
	return string([]byte{c.t1, c.t2, c.a1, c.a2, c.i1, c.i2})
}

type decodeFunc func(code) (Designator, error)

var decoders map[byte]decodeFunc

func init() {
	decoders = map[byte]decodeFunc{
		'A': decodeAnalysis,
		'C': decodeClimatic,
		'E': decodeSatelliteImagery,
		'F': decodeForecast,
		'J': decodeForecastBUFR,
		'L': decodeAviationXML,
		'N': decodeNotice,
		'O': decodeOceanographic,
		'P': decodePictorial,
		'Q': decodeRegionalPictorial,
		'S': decodeSurface,
		'T': decodeSatellite,
		'U': decodeUpperAir,
		'W': decodeWarning,
		'X': decodeCAP,
	}
	for _, t1 := range []byte("BDGHIKVY") {
		decoders[t1] = unsupported
	}
}

// Classify decodes the first six characters of s as a T1T2A1A2ii designator.
// Classification is all or nothing: the first character outside its alphabet
// aborts with a *DesignatorError naming the position.
func Classify(s string) (Designator, error) {
	if len(s) < 6 {
		return nil, &DesignatorError{Kind: KindLength, Code: s}
	}
	c := code{s[0], s[1], s[2], s[3], s[4], s[5]}
	decode, ok := decoders[c.t1]
	if !ok {
		return nil, c.fail(KindUnrecognizedT1, 0, nil)
	}
	return decode(c)
}

// MustClassify is like Classify but panics on error. For tests and tables.
func MustClassify(s string) Designator {
	d, err := Classify(s)
	if err != nil {
		panic(err)
	}
	return d
}

func unsupported(c code) (Designator, error) {
	return nil, c.fail(KindUnsupportedFamily, 0, ErrUnsupportedFamily)
}

// area decodes A1A2 as a country or area code.
func (c code) area() (AreaCode, error) {
	a, err := ParseAreaCode(c.a1, c.a2)
	if err != nil {
		return a, c.fail(KindInvalidArea, 2, err)
	}
	return a, nil
}

// geographicArea decodes A1 with table C3.
func (c code) geographicArea() (GeographicArea, error) {
	g, err := ParseGeographicArea(c.a1)
	if err != nil {
		return g, c.fail(KindInvalidGeographicArea, 2, err)
	}
	return g, nil
}

func (c code) gridTime() (ReferenceTime, error) {
	t, err := ParseGridReferenceTime(c.a2)
	if err != nil {
		return t, c.fail(KindInvalidReferenceTime, 3, err)
	}
	return t, nil
}

func (c code) regionalTime() (ReferenceTime, error) {
	t, err := ParseRegionalReferenceTime(c.a2)
	if err != nil {
		return t, c.fail(KindInvalidReferenceTime, 3, err)
	}
	return t, nil
}

// enumerator decodes ii as a two digit bulletin number.
func (c code) enumerator() (int, error) {
	if !isDigit(c.i1) || !isDigit(c.i2) {
		return 0, c.fail(KindInvalidEnumerator, 4, nil)
	}
	return int(c.i1-'0')*10 + int(c.i2-'0'), nil
}

func (c code) airLevel() (AirLevel, error) {
	l, err := ParseAirLevel(c.i1, c.i2)
	if err != nil {
		return l, c.fail(KindInvalidLevel, 4, err)
	}
	return l, nil
}

func (c code) seaLevel() (SeaLevel, error) {
	l, err := ParseSeaLevel(c.i1, c.i2)
	if err != nil {
		return l, c.fail(KindInvalidLevel, 4, err)
	}
	return l, nil
}

// areaAndEnumerator decodes the A1A2ii tail shared by the alphanumeric families.
func (c code) areaAndEnumerator() (AreaCode, int, error) {
	a, err := c.area()
	if err != nil {
		return a, 0, err
	}
	ii, err := c.enumerator()
	return a, ii, err
}

func (c code) badT2() error {
	return c.fail(KindUnrecognizedT2, 1, nil)
}

func (c code) fail(kind ErrorKind, pos int, err error) *DesignatorError {
	return &DesignatorError{Kind: kind, Code: c.String(), Pos: pos, Err: err}
}
