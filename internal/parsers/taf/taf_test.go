package taf

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/codes"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

const kiad = `TAF
KIAD 052059Z 0521/0624 18015G24KT P6SM FEW050 BKN250
  FM052200 16010G18KT P6SM SCT050 BKN250
  FM060300 17008G16KT P6SM SCT030 BKN100
  FM060900 18006KT P6SM VCSH SCT015 BKN030 WS020/20030KT
  FM061400 18008G16KT P6SM VCSH SCT015 BKNERROR030
  FM062000 19010G17KT P6SM SCT025 BKN050=
`

func TestDecodeKIAD(t *testing.T) {
	items, recovered := Decode(kiad)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if len(recovered) != 1 {
		t.Fatalf("recovered = %d, want 1: %v", len(recovered), recovered)
	}
	if !strings.HasPrefix(recovered[0].Skipped, "FM061400") {
		t.Errorf("skipped = %q, want the FM061400 line", recovered[0].Skipped)
	}

	it := items[0]
	if it.Kind != Routine || it.Station != "KIAD" {
		t.Errorf("Kind, Station = %v, %s", it.Kind, it.Station)
	}
	if it.Issued != (codes.DayTime{Day: 5, Hour: 20, Minute: 59}) {
		t.Errorf("Issued = %v", it.Issued)
	}
	wantValid := codes.Period{From: codes.DayTime{Day: 5, Hour: 21}, To: codes.DayTime{Day: 6, Hour: 24}}
	if it.Valid == nil || *it.Valid != wantValid {
		t.Errorf("Valid = %v, want %v", it.Valid, wantValid)
	}
	if it.Wind == nil || it.Wind.Direction == nil || *it.Wind.Direction != 180 || it.Wind.Speed == nil || it.Wind.Speed.Value != 15 || it.Wind.Gust == nil || it.Wind.Gust.Value != 24 {
		t.Errorf("Wind = %+v", it.Wind)
	}
	if v := it.Conditions.Visibility; v == nil || v.Value != 6 || v.Unit != codec.StatuteMiles {
		t.Errorf("Visibility = %v", v)
	}
	if len(it.Conditions.Clouds) != 2 {
		t.Errorf("Clouds = %d, want 2", len(it.Conditions.Clouds))
	}

	if len(it.Groups) != 4 {
		t.Fatalf("groups = %d, want 4", len(it.Groups))
	}
	wantFrom := []codes.DayTime{
		{Day: 5, Hour: 22},
		{Day: 6, Hour: 3},
		{Day: 6, Hour: 9},
		{Day: 6, Hour: 20},
	}
	for i, g := range it.Groups {
		if g.Kind != From {
			t.Errorf("group %d kind = %v, want from", i, g.Kind)
		}
		if g.From != wantFrom[i] {
			t.Errorf("group %d from = %v, want %v", i, g.From, wantFrom[i])
		}
	}

	g := it.Groups[2]
	if len(g.Conditions.Weather) != 1 || g.Conditions.Weather[0].Intensity != codes.Vicinity {
		t.Errorf("group 2 weather = %+v", g.Conditions.Weather)
	}
	if g.WindShear == nil || g.WindShear.Height.Value != 2000 || g.WindShear.Wind.Speed == nil || g.WindShear.Wind.Speed.Value != 30 {
		t.Errorf("group 2 wind shear = %+v", g.WindShear)
	}
}

func TestMalformedGroupBetweenGoodGroups(t *testing.T) {
	body := "TAF KBOS 151130Z 1512/1618 27010KT P6SM SCT040\n" +
		" BECMG 1514/1516 30012KT\n" +
		" 1901LALALA garbage here\n" +
		" TEMPO 1518/1522 3SM -SHRA BKN020=\n"

	items, recovered := Decode(body)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if len(items[0].Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(items[0].Groups))
	}
	if len(recovered) != 1 {
		t.Fatalf("recovered = %d, want 1", len(recovered))
	}
	if items[0].Groups[0].Kind != Becoming || items[0].Groups[1].Kind != Temporary {
		t.Errorf("kinds = %v, %v", items[0].Groups[0].Kind, items[0].Groups[1].Kind)
	}
	tempo := items[0].Groups[1]
	if tempo.To == nil || *tempo.To != (codes.DayTime{Day: 15, Hour: 22}) {
		t.Errorf("tempo to = %v", tempo.To)
	}
	if v := tempo.Conditions.Visibility; v == nil || v.Value != 3 {
		t.Errorf("tempo visibility = %v", v)
	}
	if len(tempo.Conditions.Weather) != 1 || tempo.Conditions.Weather[0].Intensity != codes.Light {
		t.Errorf("tempo weather = %+v", tempo.Conditions.Weather)
	}
}

func TestDecodeItemRecovery(t *testing.T) {
	body := "TAF AMD\n" +
		"EGLL 151100Z 1512/1618 24012KT 9999 SCT030\n" +
		"  PROB30 TEMPO 1514/1518 24020G32KT 4000 SHRA BKN012CB\n" +
		"  PROB40 1600/1606 0800 FG=\n" +
		"XX 1511Z garbage=\n" +
		"EGKK 151100Z NIL=\n" +
		"EGSS 151100Z 1512/1618 CNL=\n" +
		"LFPG 151100Z 1512/1618 VRB03KT CAVOK TX18/1514Z TNM02/1606Z=\n" +
		"NNNN\n"

	items, recovered := Decode(body)
	if len(items) != 4 {
		t.Fatalf("items = %d, want 4", len(items))
	}
	if len(recovered) != 1 || !strings.HasPrefix(recovered[0].Skipped, "XX 1511Z") {
		t.Fatalf("recovered = %v", recovered)
	}

	egll := items[0]
	if egll.Kind != Amendment {
		t.Errorf("EGLL kind = %v, want amendment", egll.Kind)
	}
	if v := egll.Conditions.Visibility; v == nil || v.Value != 9999 || v.Unit != codec.Meters {
		t.Errorf("EGLL visibility = %v", v)
	}
	if len(egll.Groups) != 2 {
		t.Fatalf("EGLL groups = %d, want 2", len(egll.Groups))
	}
	if g := egll.Groups[0]; g.Kind != ProbableTemporary || g.Probability != 30 {
		t.Errorf("group 0 = %v %d", g.Kind, g.Probability)
	}
	if g := egll.Groups[0]; len(g.Conditions.Clouds) != 1 || g.Conditions.Clouds[0].Convective != codes.Cumulonimbus {
		t.Errorf("group 0 clouds = %+v", g.Conditions.Clouds)
	}
	if g := egll.Groups[1]; g.Kind != Probable || g.Probability != 40 || g.Wind != nil {
		t.Errorf("group 1 = %+v", g)
	}

	if !items[1].Nil || items[1].Station != "EGKK" {
		t.Errorf("NIL item = %+v", items[1])
	}
	if !items[2].Cancelled || items[2].Wind != nil {
		t.Errorf("CNL item = %+v", items[2])
	}

	lfpg := items[3]
	if !lfpg.Wind.Variable || !lfpg.Conditions.CAVOK {
		t.Errorf("LFPG wind/cavok = %+v %+v", lfpg.Wind, lfpg.Conditions)
	}
	want := []Temperature{
		{Maximum: true, Value: 18, At: codes.DayTime{Day: 15, Hour: 14}},
		{Maximum: false, Value: -2, At: codes.DayTime{Day: 16, Hour: 6}},
	}
	if !reflect.DeepEqual(lfpg.Temperatures, want) {
		t.Errorf("temperatures = %+v, want %+v", lfpg.Temperatures, want)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	a, ra := Decode(kiad)
	b, rb := Decode(kiad)
	if !reflect.DeepEqual(a, b) {
		t.Error("two decodes of the same body differ")
	}
	if len(ra) != len(rb) {
		t.Errorf("recovered %d vs %d", len(ra), len(rb))
	}
}

func TestParserApplies(t *testing.T) {
	p := &Parser{}
	tests := []struct {
		code string
		want bool
	}{
		{"FTUS80", true},
		{"FCUS20", true},
		{"LTUS42", true},
		{"FPUS51", false},
		{"SAUS70", false},
		{"LAUS01", false},
	}
	for _, tt := range tests {
		if got := p.Applies(wmo.MustClassify(tt.code)); got != tt.want {
			t.Errorf("Applies(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
	if p.QuickCheck("<taf:TAF/>") {
		t.Error("QuickCheck accepted an XML body")
	}
	if !p.QuickCheck("KIAD 052059Z 0521/0624 18015KT") {
		t.Error("QuickCheck rejected an item without the keyword")
	}
}

func TestParserParse(t *testing.T) {
	b := &bulletin.Bulletin{ID: uuid.New(), Designator: wmo.MustClassify("FTUS80"), Body: kiad}
	rep, recovered, err := (&Parser{}).Parse(b)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rep.Type() != "taf" || rep.BulletinID() != b.ID {
		t.Errorf("report = %s %s", rep.Type(), rep.BulletinID())
	}
	if len(recovered) != 1 {
		t.Errorf("recovered = %d, want 1", len(recovered))
	}

	_, _, err = (&Parser{}).Parse(&bulletin.Bulletin{Body: "TAF garbage="})
	if !errors.Is(err, registry.ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
}

func TestDispatchScreensXML(t *testing.T) {
	r := registry.New()
	r.Register(&Parser{})
	r.Sort()

	xml := &bulletin.Bulletin{ID: uuid.New(), Designator: wmo.MustClassify("LTUS42"), Body: "<taf:TAF/>"}
	if _, err := r.Dispatch(xml); !errors.Is(err, registry.ErrUnsupported) {
		t.Errorf("XML body: error = %v, want ErrUnsupported", err)
	}

	// A text forecast heading is never screened: a body that does not look
	// like a TAF is a failed decode.
	text := &bulletin.Bulletin{ID: uuid.New(), Designator: wmo.MustClassify("FTUS80"), Body: "FORECAST NOT AVAILABLE"}
	_, err := r.Dispatch(text)
	var derr *registry.DecodeError
	if !errors.As(err, &derr) || derr.Parser != "taf" {
		t.Errorf("text body: error = %v, want a taf DecodeError", err)
	}
}
