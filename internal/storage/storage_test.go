package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/codec"
	"emwin_parser/internal/codes"
	"emwin_parser/internal/parsers/taf"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

const tafBody = `TAF
KIAD 151720Z 1518/1624 18010KT P6SM SKC=
KBWI 151720Z 1518/1624 20008KT P6SM FEW250=
`

// decodedTAF runs the TAF decoder over tafBody and wraps it in a record.
func decodedTAF(t *testing.T) Record {
	t.Helper()

	b := &bulletin.Bulletin{
		ID:         uuid.New(),
		Source:     "A_FTUS80KWBC151720_C_KWIN_20240315172012_1-2-TAFLWX.TXT",
		Received:   time.Date(2024, 3, 15, 17, 21, 0, 0, time.UTC),
		Reference:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Heading:    wmo.Heading{TTAAii: "FTUS80", Origin: "KWBC", Day: 15, Hour: 17, Minute: 20},
		Designator: wmo.MustClassify("FTUS80"),
		Body:       tafBody,
	}
	rep, recovered, err := (&taf.Parser{}).Parse(b)
	require.NoError(t, err)

	rec, err := NewRecord(b, &registry.Result{Parser: "taf", Report: rep, Recovered: recovered})
	require.NoError(t, err)
	return rec
}

func TestNewRecord(t *testing.T) {
	rec := decodedTAF(t)

	assert.Equal(t, "taf", rec.ReportType)
	assert.Equal(t, "forecast", rec.Family)
	assert.Equal(t, "FTUS80", rec.TTAAii)
	assert.Equal(t, "KWBC", rec.Origin)
	assert.Equal(t, []string{"KIAD", "KBWI"}, rec.Stations)
	assert.Equal(t, tafBody, rec.RawText)
	assert.Zero(t, rec.Recovered)
	assert.NotNil(t, rec.Report())

	var decoded struct {
		Items []struct {
			Station string `json:"station"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(rec.ReportJSON), &decoded))
	require.Len(t, decoded.Items, 2)
	assert.Equal(t, "KBWI", decoded.Items[1].Station)
}

func TestNewRecordUnclassified(t *testing.T) {
	b := &bulletin.Bulletin{ID: uuid.New(), Body: tafBody}
	rep := &taf.Report{ID: b.ID}

	rec, err := NewRecord(b, &registry.Result{Parser: "taf", Report: rep})
	require.NoError(t, err)
	assert.Equal(t, "unclassified", rec.Family)
}

type memorySink struct {
	reports []Record
	images  []ImageRecord
	err     error
	closed  bool
}

func (m *memorySink) StoreReport(_ context.Context, r Record) error {
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, r)
	return nil
}

func (m *memorySink) StoreImage(_ context.Context, r ImageRecord) error {
	if m.err != nil {
		return m.err
	}
	m.images = append(m.images, r)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return m.err
}

func TestFanout(t *testing.T) {
	ctx := context.Background()
	good := &memorySink{}
	bad := &memorySink{err: errors.New("connection refused")}
	other := &memorySink{}
	f := Fanout{good, bad, other}

	err := f.StoreReport(ctx, Record{ReportType: "taf"})
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 1)
	assert.Len(t, good.reports, 1, "sinks before the failure still receive the record")
	assert.Len(t, other.reports, 1, "sinks after the failure still receive the record")

	require.Error(t, f.StoreImage(ctx, ImageRecord{ID: uuid.New()}))
	assert.Len(t, good.images, 1)

	require.Error(t, f.Close())
	assert.True(t, good.closed)
	assert.True(t, other.closed)
}

func TestFanoutEmpty(t *testing.T) {
	var f Fanout
	assert.NoError(t, f.StoreReport(context.Background(), Record{}))
	assert.NoError(t, f.Close())
}

func TestOpenSQLiteOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SQLite.Path = t.TempDir() + "/emwin.db"

	sinks, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = sinks.Close() }()

	require.Len(t, sinks, 1)
	_, ok := sinks[0].(*SQLiteDB)
	assert.True(t, ok)
}

func TestWindColumns(t *testing.T) {
	dir, speed, unit := windColumns(nil)
	assert.Nil(t, dir)
	assert.Nil(t, speed)
	assert.Empty(t, unit)

	missing, err := codes.ParseWind(codec.NewCursor("/////KT"))
	require.NoError(t, err)
	dir, speed, unit = windColumns(&missing)
	assert.Nil(t, dir, "unreported direction is NULL")
	assert.Nil(t, speed, "unreported speed is NULL")
	assert.Empty(t, unit)

	calm, err := codes.ParseWind(codec.NewCursor("00000KT"))
	require.NoError(t, err)
	dir, speed, unit = windColumns(&calm)
	require.NotNil(t, dir)
	require.NotNil(t, speed)
	assert.Zero(t, *dir)
	assert.Zero(t, *speed)
	assert.Equal(t, codec.Knots.String(), unit)
}
