// Package registry provides a report decoder registry for dispatching
// classified bulletins to the decoder that handles them.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/wmo"
)

// ErrUnsupported is returned by Dispatch when the bulletin classified but no
// decoder handles its designator. It is a valid outcome, not a decode failure.
var ErrUnsupported = errors.New("unsupported product")

// ErrEmpty is returned by decoders when a body yields no report at all.
var ErrEmpty = errors.New("no reports decoded")

// Report is the common interface for all decoded reports.
type Report interface {
	Type() string          // e.g., "taf", "amdar", "rwr"
	BulletinID() uuid.UUID // The ID of the bulletin it was decoded from
}

// Located is implemented by reports that name the stations, aircraft or
// cities they cover.
type Located interface {
	Stations() []string
}

// Stations returns the stations of r, or nil when r does not name any.
func Stations(r Report) []string {
	if l, ok := r.(Located); ok {
		return l.Stations()
	}
	return nil
}

// Parser is implemented by each report decoder.
type Parser interface {
	// Name returns the decoder's unique identifier.
	Name() string

	// Families returns which T1 families this decoder handles.
	// Empty slice means "all families".
	Families() []wmo.Family

	// Applies reports whether the decoder handles the designator. This is
	// the finite T1/T2 applicability set.
	Applies(d wmo.Designator) bool

	// QuickCheck performs a fast string check on the body. Returns false
	// when the body definitely is not in this decoder's format. It orders
	// applicable decoders; it does not by itself make a product unsupported.
	QuickCheck(body string) bool

	// Priority determines order when multiple decoders handle a family.
	// Lower number = checked first.
	Priority() int

	// Parse decodes the body. Groups skipped by recovery are returned
	// alongside the report; a non-nil error means the bulletin failed.
	Parse(b *bulletin.Bulletin) (Report, []*codec.Recovered, error)
}

// Screener is implemented by decoders whose applicability covers products
// in formats they do not read, such as the surface analyses (AS) of which the
// weather roundup is only one. When Screens reports true for a designator, a
// failed QuickCheck makes the bulletin unsupported instead of malformed.
type Screener interface {
	Screens(d wmo.Designator) bool
}

func screens(p Parser, d wmo.Designator) bool {
	s, ok := p.(Screener)
	return ok && s.Screens(d)
}

// Result is the outcome of a successful dispatch.
type Result struct {
	Parser    string             `json:"parser"`
	Report    Report             `json:"report"`
	Recovered []*codec.Recovered `json:"recovered,omitempty"`
}

// DecodeError wraps a decoder failure with the decoder name.
type DecodeError struct {
	Parser    string
	Err       error
	Recovered []*codec.Recovered
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Parser, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Registry holds all registered decoders organised for efficient dispatch.
type Registry struct {
	mu sync.RWMutex

	// byFamily maps T1 families to decoder slices, sorted by Priority (ascending)
	byFamily map[wmo.Family][]Parser

	// global holds decoders that check every family
	global []Parser

	// sorted tracks whether decoders have been sorted
	sorted bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byFamily: make(map[wmo.Family][]Parser),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a decoder to the default registry.
// Called during init() in each decoder package.
func Register(p Parser) {
	defaultRegistry.Register(p)
}

// Register adds a decoder to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	families := p.Families()
	if len(families) == 0 {
		r.global = append(r.global, p)
	} else {
		for _, f := range families {
			r.byFamily[f] = append(r.byFamily[f], p)
		}
	}
	r.sorted = false
}

// Sort sorts all decoder slices by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}

	for f := range r.byFamily {
		parsers := r.byFamily[f]
		sort.SliceStable(parsers, func(i, j int) bool {
			return parsers[i].Priority() < parsers[j].Priority()
		})
	}

	sort.SliceStable(r.global, func(i, j int) bool {
		return r.global[i].Priority() < r.global[j].Priority()
	})

	r.sorted = true
}

// candidates returns the decoders to try for d, family-specific first.
// Caller must hold the read lock.
func (r *Registry) candidates(d wmo.Designator) []Parser {
	byFamily := r.byFamily[wmo.FamilyOf(d)]
	out := make([]Parser, 0, len(byFamily)+len(r.global))
	out = append(out, byFamily...)
	return append(out, r.global...)
}

// Select returns the decoder that would handle b, or nil. Among the decoders
// that apply to the designator the first whose QuickCheck passes wins. When
// none passes, the first applicable decoder that does not screen the
// designator is returned, so a malformed body still reaches its decoder.
func (r *Registry) Select(b *bulletin.Bulletin) Parser {
	if b.Designator == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var fallback Parser
	for _, p := range r.candidates(b.Designator) {
		if !p.Applies(b.Designator) {
			continue
		}
		if p.QuickCheck(b.Body) {
			return p
		}
		if fallback == nil && !screens(p, b.Designator) {
			fallback = p
		}
	}
	return fallback
}

// Dispatch selects the one decoder whose applicability matches the bulletin's
// designator and runs it. It returns ErrUnsupported when no decoder matches,
// including when the bulletin has no designator, and a *DecodeError when the
// selected decoder fails, whether or not the body passed its QuickCheck.
// Note: Sort() should be called before Dispatch() so priorities are honoured.
func (r *Registry) Dispatch(b *bulletin.Bulletin) (*Result, error) {
	p := r.Select(b)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, designatorText(b))
	}

	report, recovered, err := p.Parse(b)
	if err != nil {
		return nil, &DecodeError{Parser: p.Name(), Err: err, Recovered: recovered}
	}
	return &Result{Parser: p.Name(), Report: report, Recovered: recovered}, nil
}

// EmptyError builds the error a decoder returns when nothing decoded. The
// first recovered error, if any, is named as the cause.
func EmptyError(recovered []*codec.Recovered) error {
	if len(recovered) == 0 {
		return ErrEmpty
	}
	return fmt.Errorf("%w: %d skipped, first: %v", ErrEmpty, len(recovered), recovered[0].Err)
}

func designatorText(b *bulletin.Bulletin) string {
	if b.Designator == nil {
		return "unclassified " + b.Heading.TTAAii
	}
	return b.Designator.String()
}

// RegisteredFamilies returns all families that have decoders registered.
func (r *Registry) RegisteredFamilies() []wmo.Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	families := make([]wmo.Family, 0, len(r.byFamily))
	for f := range r.byFamily {
		families = append(families, f)
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// ParserCount returns the total number of unique registered decoders.
// Decoders registered for multiple families are only counted once.
func (r *Registry) ParserCount() int {
	return len(r.AllParsers())
}

// AllParsers returns all registered decoders, each once, in name order.
func (r *Registry) AllParsers() []Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Use a map to deduplicate decoders (some are registered for several families).
	seen := make(map[string]bool)
	var result []Parser

	add := func(p Parser) {
		if !seen[p.Name()] {
			seen[p.Name()] = true
			result = append(result, p)
		}
	}
	for _, p := range r.global {
		add(p)
	}
	for _, parsers := range r.byFamily {
		for _, p := range parsers {
			add(p)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}
