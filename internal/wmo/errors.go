package wmo

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFamily is wrapped by a DesignatorError for T1 letters that are
// recognised but whose designator layout is not decoded.
var ErrUnsupportedFamily = errors.New("unsupported designator family")

// ErrorKind classifies a designator failure.
type ErrorKind int

const (
	KindLength ErrorKind = iota
	KindUnrecognizedT1
	KindUnrecognizedT2
	KindUnrecognizedA1
	KindUnrecognizedA2
	KindInvalidArea
	KindInvalidGeographicArea
	KindInvalidReferenceTime
	KindInvalidEnumerator
	KindInvalidLevel
	KindUnsupportedFamily
)

func (k ErrorKind) String() string {
	switch k {
	case KindLength:
		return "length"
	case KindUnrecognizedT1:
		return "unrecognized_t1"
	case KindUnrecognizedT2:
		return "unrecognized_t2"
	case KindUnrecognizedA1:
		return "unrecognized_a1"
	case KindUnrecognizedA2:
		return "unrecognized_a2"
	case KindInvalidArea:
		return "invalid_area"
	case KindInvalidGeographicArea:
		return "invalid_geographic_area"
	case KindInvalidReferenceTime:
		return "invalid_reference_time"
	case KindInvalidEnumerator:
		return "invalid_enumerator"
	case KindInvalidLevel:
		return "invalid_level"
	case KindUnsupportedFamily:
		return "unsupported_family"
	default:
		return "unknown"
	}
}

// DesignatorError reports why a designator could not be classified.
type DesignatorError struct {
	Kind ErrorKind
	// Code is the input examined, at most six characters.
	Code string
	// Pos is the index of the offending character within Code.
	Pos int
	Err error
}

// T1 returns the family letter examined, or 0 when the input was empty.
func (e *DesignatorError) T1() byte {
	if len(e.Code) == 0 {
		return 0
	}
	return e.Code[0]
}

// T2 returns the subtype letter examined, or 0 when the input was too short.
func (e *DesignatorError) T2() byte {
	if len(e.Code) < 2 {
		return 0
	}
	return e.Code[1]
}

func (e *DesignatorError) Error() string {
	switch e.Kind {
	case KindLength:
		return fmt.Sprintf("designator %q: need 6 characters, have %d", e.Code, len(e.Code))
	case KindUnrecognizedT1:
		return fmt.Sprintf("designator %q: unrecognized T1 %c", e.Code, e.T1())
	case KindUnrecognizedT2:
		return fmt.Sprintf("designator %q: unrecognized T2 %c%c", e.Code, e.T1(), e.T2())
	}
	prefix := e.Code
	if e.Pos+1 <= len(e.Code) {
		prefix = e.Code[:e.Pos+1]
	}
	if e.Err != nil {
		return fmt.Sprintf("designator %q: %s at %q: %v", e.Code, e.Kind, prefix, e.Err)
	}
	return fmt.Sprintf("designator %q: %s at %q", e.Code, e.Kind, prefix)
}

func (e *DesignatorError) Unwrap() error {
	return e.Err
}
