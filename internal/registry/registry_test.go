package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/wmo"
)

type fakeReport struct{ id uuid.UUID }

func (r *fakeReport) Type() string          { return "fake" }
func (r *fakeReport) BulletinID() uuid.UUID { return r.id }

type fakeParser struct {
	name     string
	families []wmo.Family
	applies  func(wmo.Designator) bool
	keyword  string
	priority int
	screens  bool
	err      error
	calls    int
}

func (p *fakeParser) Name() string             { return p.name }
func (p *fakeParser) Families() []wmo.Family   { return p.families }
func (p *fakeParser) Priority() int            { return p.priority }
func (p *fakeParser) QuickCheck(body string) bool {
	return strings.Contains(body, p.keyword)
}
func (p *fakeParser) Screens(wmo.Designator) bool { return p.screens }
func (p *fakeParser) Applies(d wmo.Designator) bool {
	if p.applies == nil {
		return true
	}
	return p.applies(d)
}
func (p *fakeParser) Parse(b *bulletin.Bulletin) (Report, []*codec.Recovered, error) {
	p.calls++
	if p.err != nil {
		return nil, nil, p.err
	}
	return &fakeReport{id: b.ID}, []*codec.Recovered{{Message: "skipped"}}, nil
}

func newBulletin(code, body string) *bulletin.Bulletin {
	return &bulletin.Bulletin{
		ID:         uuid.New(),
		Designator: wmo.MustClassify(code),
		Body:       body,
	}
}

func isForecastAerodrome(d wmo.Designator) bool {
	f, ok := d.(wmo.Forecast)
	return ok && f.Type.IsAerodrome()
}

func TestDispatchSelectsApplicable(t *testing.T) {
	r := New()
	taf := &fakeParser{name: "taf", families: []wmo.Family{wmo.FamilyForecast}, applies: isForecastAerodrome, keyword: "TAF", priority: 10}
	r.Register(taf)
	r.Sort()

	b := newBulletin("FTUS80", "TAF KIAD")
	res, err := r.Dispatch(b)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if res.Parser != "taf" {
		t.Errorf("Parser = %q, want taf", res.Parser)
	}
	if res.Report.BulletinID() != b.ID {
		t.Errorf("BulletinID = %s, want %s", res.Report.BulletinID(), b.ID)
	}
	if len(res.Recovered) != 1 {
		t.Errorf("Recovered = %d, want 1", len(res.Recovered))
	}
}

func TestDispatchUnsupported(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "taf", families: []wmo.Family{wmo.FamilyForecast}, applies: isForecastAerodrome, keyword: "TAF"})

	tests := []struct {
		name string
		b    *bulletin.Bulletin
	}{
		{"other family", newBulletin("SAUS70", "TAF KIAD")},
		{"other subtype", newBulletin("FPUS51", "TAF KIAD")},
		{"no designator", &bulletin.Bulletin{Body: "TAF"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(tt.b)
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("error = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestDispatchDecodeError(t *testing.T) {
	r := New()
	cause := errors.New("bad header")
	r.Register(&fakeParser{name: "taf", families: []wmo.Family{wmo.FamilyForecast}, keyword: "TAF", err: cause})

	_, err := r.Dispatch(newBulletin("FTUS80", "TAF"))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if derr.Parser != "taf" || !errors.Is(err, cause) {
		t.Errorf("DecodeError = %v", derr)
	}
	if errors.Is(err, ErrUnsupported) {
		t.Error("decode failure must not be ErrUnsupported")
	}
}

func TestDispatchMalformedBodyIsDecodeError(t *testing.T) {
	r := New()
	cause := errors.New("bad header")
	taf := &fakeParser{name: "taf", families: []wmo.Family{wmo.FamilyForecast}, applies: isForecastAerodrome, keyword: "TAF", err: cause}
	r.Register(taf)
	r.Sort()

	_, err := r.Dispatch(newBulletin("FTUS80", "TFA KIAD"))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if derr.Parser != "taf" || !errors.Is(err, cause) {
		t.Errorf("DecodeError = %v", derr)
	}
	if taf.calls != 1 {
		t.Errorf("taf parser called %d times, want 1", taf.calls)
	}
}

func TestDispatchQuickCheckOrders(t *testing.T) {
	r := New()
	first := &fakeParser{name: "first", families: []wmo.Family{wmo.FamilySurface}, keyword: "SPECI", priority: 5}
	second := &fakeParser{name: "second", families: []wmo.Family{wmo.FamilySurface}, keyword: "METAR", priority: 10}
	r.Register(first)
	r.Register(second)
	r.Sort()

	res, err := r.Dispatch(newBulletin("SAUS70", "METAR KIAD"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if res.Parser != "second" {
		t.Errorf("Parser = %q, want second", res.Parser)
	}

	res, err = r.Dispatch(newBulletin("SAUS70", "KIAD 151156Z"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if res.Parser != "first" {
		t.Errorf("Parser = %q, want first when no quick check passes", res.Parser)
	}
}

func TestDispatchScreenedIsUnsupported(t *testing.T) {
	r := New()
	rwr := &fakeParser{name: "rwr", families: []wmo.Family{wmo.FamilyAnalysis}, keyword: "CITY", screens: true}
	r.Register(rwr)
	r.Sort()

	_, err := r.Dispatch(newBulletin("ASUS01", "SURFACE ANALYSIS"))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
	if rwr.calls != 0 {
		t.Errorf("rwr parser called %d times, want 0", rwr.calls)
	}
	if r.Select(newBulletin("ASUS01", "CITY")) != rwr {
		t.Error("Select skipped a screened decoder whose quick check passed")
	}
}

func TestPriorityOrder(t *testing.T) {
	r := New()
	slow := &fakeParser{name: "slow", families: []wmo.Family{wmo.FamilySurface}, priority: 50}
	fast := &fakeParser{name: "fast", families: []wmo.Family{wmo.FamilySurface}, priority: 5}
	r.Register(slow)
	r.Register(fast)
	r.Sort()

	res, err := r.Dispatch(newBulletin("SAUS70", "METAR"))
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if res.Parser != "fast" {
		t.Errorf("Parser = %q, want fast", res.Parser)
	}
	if slow.calls != 0 {
		t.Errorf("slow parser called %d times, want 0", slow.calls)
	}
}

func TestGlobalParser(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "any", keyword: "X"})

	if _, err := r.Dispatch(newBulletin("WWUS40", "X")); err != nil {
		t.Errorf("Dispatch returned error: %v", err)
	}
}

func TestParserCount(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "taf", families: []wmo.Family{wmo.FamilyForecast, wmo.FamilyAviationXML}})
	r.Register(&fakeParser{name: "metar", families: []wmo.Family{wmo.FamilySurface}})

	if got := r.ParserCount(); got != 2 {
		t.Errorf("ParserCount = %d, want 2", got)
	}
	fams := r.RegisteredFamilies()
	if len(fams) != 3 || fams[0] != wmo.FamilyForecast {
		t.Errorf("RegisteredFamilies = %v", fams)
	}
	all := r.AllParsers()
	if len(all) != 2 || all[0].Name() != "metar" {
		t.Errorf("AllParsers order = %v", all)
	}
}

func TestTrace(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "taf", families: []wmo.Family{wmo.FamilyForecast}, applies: isForecastAerodrome, keyword: "TAF"})
	r.Register(&fakeParser{name: "bad", families: []wmo.Family{wmo.FamilyForecast}, keyword: "TAF", err: errors.New("boom")})
	r.Register(&fakeParser{name: "other", families: []wmo.Family{wmo.FamilyForecast}, keyword: "NOPE"})
	r.Sort()

	traces := r.Trace(newBulletin("FTUS80", "TAF KIAD"))
	if len(traces) != 3 {
		t.Fatalf("Trace returned %d results, want 3", len(traces))
	}
	byName := map[string]TraceResult{}
	for _, tr := range traces {
		byName[tr.ParserName] = tr
	}
	if !byName["taf"].Matched || byName["taf"].Recovered != 1 {
		t.Errorf("taf trace = %+v", byName["taf"])
	}
	if byName["bad"].Matched || byName["bad"].Err != "boom" {
		t.Errorf("bad trace = %+v", byName["bad"])
	}
	if qc := byName["other"].QuickCheck; qc == nil || qc.Passed {
		t.Errorf("other quick check = %+v", qc)
	}
	if !byName["other"].Matched {
		t.Errorf("other trace = %+v, want a decode despite the failed quick check", byName["other"])
	}
}

func TestTraceStopsAtScreen(t *testing.T) {
	r := New()
	screened := &fakeParser{name: "rwr", families: []wmo.Family{wmo.FamilyAnalysis}, keyword: "CITY", screens: true}
	r.Register(screened)

	traces := r.Trace(newBulletin("ASUS01", "SURFACE ANALYSIS"))
	if len(traces) != 1 {
		t.Fatalf("Trace returned %d results, want 1", len(traces))
	}
	if traces[0].Matched || screened.calls != 0 {
		t.Errorf("trace = %+v, calls = %d", traces[0], screened.calls)
	}
}

type locatedReport struct{ fakeReport }

func (r *locatedReport) Stations() []string { return []string{"KIAD", "KDCA"} }

func TestStations(t *testing.T) {
	if got := Stations(&fakeReport{}); got != nil {
		t.Errorf("Stations(fake) = %v, want nil", got)
	}
	got := Stations(&locatedReport{})
	if len(got) != 2 || got[0] != "KIAD" {
		t.Errorf("Stations = %v, want [KIAD KDCA]", got)
	}
}
