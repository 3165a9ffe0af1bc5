package registry

import (
	"emwin_parser/internal/bulletin"
)

// TraceResult contains trace information from a decoder's attempt at a bulletin.
type TraceResult struct {
	ParserName string      `json:"parser"`
	Applies    bool        `json:"applies"`              // Whether the designator is in the decoder's set.
	QuickCheck *QuickCheck `json:"quick_check,omitempty"` // QuickCheck result (nil if not reached).
	Matched    bool        `json:"matched"`              // Whether the decoder produced a report.
	Recovered  int         `json:"recovered,omitempty"`  // Groups skipped by recovery.
	Err        string      `json:"error,omitempty"`
}

// QuickCheck contains the result of a decoder's quick check.
type QuickCheck struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Trace runs every candidate decoder against b and reports how far each got.
// Unlike Dispatch it does not stop at the first match, so it is meant for the
// debug command rather than ingestion.
func (r *Registry) Trace(b *bulletin.Bulletin) []TraceResult {
	if b.Designator == nil {
		return nil
	}

	r.mu.RLock()
	parsers := r.candidates(b.Designator)
	r.mu.RUnlock()

	traces := make([]TraceResult, 0, len(parsers))
	for _, p := range parsers {
		tr := TraceResult{ParserName: p.Name(), Applies: p.Applies(b.Designator)}
		if !tr.Applies {
			traces = append(traces, tr)
			continue
		}

		qc := &QuickCheck{Passed: p.QuickCheck(b.Body)}
		tr.QuickCheck = qc
		if !qc.Passed {
			qc.Reason = "body does not look like " + p.Name()
			if screens(p, b.Designator) {
				traces = append(traces, tr)
				continue
			}
		}

		_, recovered, err := p.Parse(b)
		tr.Recovered = len(recovered)
		if err != nil {
			tr.Err = err.Error()
		} else {
			tr.Matched = true
		}
		traces = append(traces, tr)
	}
	return traces
}
