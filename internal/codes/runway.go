package codes

import (
	"fmt"

	"emwin_parser/internal/codec"
)

// Runway designator such as 27L.
type Runway struct {
	Number int    `json:"number"`
	Side   string `json:"side,omitempty"`
}

func (r Runway) String() string {
	return fmt.Sprintf("%02d%s", r.Number, r.Side)
}

// ParseRunway reads R followed by the runway number and an optional L/C/R.
func ParseRunway(c *codec.Cursor) (Runway, error) {
	mark := c.Mark()
	if !c.Tag("R") {
		return Runway{}, c.Errorf("runway")
	}
	n, err := codec.Digits(c, 2)
	if err != nil {
		c.Reset(mark)
		return Runway{}, err
	}
	r := Runway{Number: n}
	if s, ok := c.OneOf("L", "C", "R"); ok {
		r.Side = s
	}
	return r, nil
}

// Tendency is the RVR trend indicator.
type Tendency int

const (
	NoTendency Tendency = iota
	Upward
	Downward
	NoChange
)

func (t Tendency) String() string {
	switch t {
	case Upward:
		return "up"
	case Downward:
		return "down"
	case NoChange:
		return "no_change"
	default:
		return ""
	}
}

// MarshalText encodes the tendency.
func (t Tendency) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// RunwayVisualRange is an RdRdR/VRVRVRVRi group.
type RunwayVisualRange struct {
	Runway   Runway       `json:"runway"`
	Range    codec.Length `json:"range"`
	Above    bool         `json:"above,omitempty"`
	Below    bool         `json:"below,omitempty"`
	Tendency Tendency     `json:"tendency,omitempty"`
}

// ParseRunwayVisualRange reads R27L/1200U, R09/P2000 or R18/M0050N.
func ParseRunwayVisualRange(c *codec.Cursor) (RunwayVisualRange, error) {
	mark := c.Mark()
	rvr, err := parseRunwayVisualRange(c)
	if err != nil {
		c.Reset(mark)
		return RunwayVisualRange{}, err
	}
	return rvr, nil
}

func parseRunwayVisualRange(c *codec.Cursor) (RunwayVisualRange, error) {
	var rvr RunwayVisualRange
	rw, err := ParseRunway(c)
	if err != nil {
		return rvr, err
	}
	rvr.Runway = rw
	if err := c.Expect("/"); err != nil {
		return rvr, err
	}
	switch {
	case c.Tag("P"):
		rvr.Above = true
	case c.Tag("M"):
		rvr.Below = true
	}
	v, err := codec.Digits(c, 4)
	if err != nil {
		return rvr, err
	}
	rvr.Range = codec.Length{Value: float64(v), Unit: codec.Meters}
	if c.Tag("FT") {
		rvr.Range.Unit = codec.Feet
	}
	switch {
	case c.Tag("U"):
		rvr.Tendency = Upward
	case c.Tag("D"):
		rvr.Tendency = Downward
	case c.Tag("N"):
		rvr.Tendency = NoChange
	}
	if !c.AtBoundary() {
		return rvr, c.Errorf("end of runway visual range")
	}
	return rvr, nil
}

// RunwayDeposit is code table 0919.
type RunwayDeposit int

const (
	DepositNotReported RunwayDeposit = iota - 1
	DepositClear
	DepositDamp
	DepositWet
	DepositRimeFrost
	DepositDrySnow
	DepositWetSnow
	DepositSlush
	DepositIce
	DepositCompactedSnow
	DepositFrozenRuts
)

var depositNames = [...]string{
	"clear", "damp", "wet", "rime_frost", "dry_snow", "wet_snow",
	"slush", "ice", "compacted_snow", "frozen_ruts",
}

func (d RunwayDeposit) String() string {
	if d < 0 || int(d) >= len(depositNames) {
		return "not_reported"
	}
	return depositNames[d]
}

// MarshalText encodes the deposit name.
func (d RunwayDeposit) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseRunwayDeposit reads one code 0919 digit, or / for not reported.
func ParseRunwayDeposit(c *codec.Cursor) (RunwayDeposit, error) {
	b := c.Peek()
	switch {
	case b == '/':
		c.Byte()
		return DepositNotReported, nil
	case codec.IsDigit(b):
		c.Byte()
		return RunwayDeposit(b - '0'), nil
	}
	return 0, c.Errorf("runway deposit (code table 0919)")
}

// Contamination is code table 0519, the percentage of runway covered.
type Contamination struct {
	Reported bool `json:"reported"`
	// Upper bound of the covered fraction in percent.
	MaxPercent int `json:"max_percent,omitempty"`
}

// ParseContamination reads one code 0519 digit.
func ParseContamination(c *codec.Cursor) (Contamination, error) {
	b := c.Peek()
	var ct Contamination
	switch b {
	case '/':
	case '1':
		ct = Contamination{Reported: true, MaxPercent: 10}
	case '2':
		ct = Contamination{Reported: true, MaxPercent: 25}
	case '5':
		ct = Contamination{Reported: true, MaxPercent: 50}
	case '9':
		ct = Contamination{Reported: true, MaxPercent: 100}
	default:
		return ct, c.Errorf("runway contamination (code table 0519)")
	}
	c.Byte()
	return ct, nil
}

// DepositDepth is code table 1079.
type DepositDepth struct {
	Reported bool `json:"reported"`
	// Inoperative means the runway is closed for snow clearance.
	Inoperative bool          `json:"inoperative,omitempty"`
	Depth       *codec.Length `json:"depth,omitempty"`
}

// ParseDepositDepth reads two code 1079 digits.
func ParseDepositDepth(c *codec.Cursor) (DepositDepth, error) {
	mark := c.Mark()
	v, ok, err := codec.DigitsOrMissing(c, 2)
	if err != nil {
		return DepositDepth{}, err
	}
	if !ok {
		return DepositDepth{}, nil
	}
	switch {
	case v <= 90:
		return DepositDepth{Reported: true, Depth: &codec.Length{Value: float64(v), Unit: codec.Millimeters}}, nil
	case v >= 92 && v <= 98:
		cm := float64(v-90) * 5
		return DepositDepth{Reported: true, Depth: &codec.Length{Value: cm, Unit: codec.Centimeters}}, nil
	case v == 99:
		return DepositDepth{Reported: true, Inoperative: true}, nil
	}
	c.Reset(mark)
	return DepositDepth{}, c.Errorf("deposit depth (code table 1079)")
}

// BrakingAction is code table 0366.
type BrakingAction struct {
	Reported bool `json:"reported"`
	// Friction coefficient, set for codes 01-90.
	Coefficient *float64 `json:"coefficient,omitempty"`
	// Estimate is one of poor, medium_poor, medium, medium_good, good.
	Estimate   string `json:"estimate,omitempty"`
	Unreliable bool   `json:"unreliable,omitempty"`
}

var brakingEstimates = map[int]string{
	91: "poor",
	92: "medium_poor",
	93: "medium",
	94: "medium_good",
	95: "good",
}

// ParseBrakingAction reads two code 0366 digits.
func ParseBrakingAction(c *codec.Cursor) (BrakingAction, error) {
	mark := c.Mark()
	v, ok, err := codec.DigitsOrMissing(c, 2)
	if err != nil {
		return BrakingAction{}, err
	}
	if !ok {
		return BrakingAction{}, nil
	}
	switch {
	case v >= 1 && v <= 90:
		coef := float64(v) / 100
		return BrakingAction{Reported: true, Coefficient: &coef}, nil
	case brakingEstimates[v] != "":
		return BrakingAction{Reported: true, Estimate: brakingEstimates[v]}, nil
	case v == 99:
		return BrakingAction{Reported: true, Unreliable: true}, nil
	}
	c.Reset(mark)
	return BrakingAction{}, c.Errorf("braking action (code table 0366)")
}

// RunwayState is an RDRDR/ERCReReRBRBR group.
type RunwayState struct {
	Runway        Runway        `json:"runway"`
	Deposit       RunwayDeposit `json:"deposit"`
	Contamination Contamination `json:"contamination"`
	Depth         DepositDepth  `json:"depth"`
	Braking       BrakingAction `json:"braking"`
}

// ParseRunwayState reads a runway state group such as R24/451293.
func ParseRunwayState(c *codec.Cursor) (RunwayState, error) {
	mark := c.Mark()
	st, err := parseRunwayState(c)
	if err != nil {
		c.Reset(mark)
		return RunwayState{}, err
	}
	return st, nil
}

func parseRunwayState(c *codec.Cursor) (RunwayState, error) {
	var st RunwayState
	var err error
	if st.Runway, err = ParseRunway(c); err != nil {
		return st, err
	}
	if err = c.Expect("/"); err != nil {
		return st, err
	}
	if st.Deposit, err = ParseRunwayDeposit(c); err != nil {
		return st, err
	}
	if st.Contamination, err = ParseContamination(c); err != nil {
		return st, err
	}
	if st.Depth, err = ParseDepositDepth(c); err != nil {
		return st, err
	}
	if st.Braking, err = ParseBrakingAction(c); err != nil {
		return st, err
	}
	if !c.AtBoundary() {
		return st, c.Errorf("end of runway state")
	}
	return st, nil
}
