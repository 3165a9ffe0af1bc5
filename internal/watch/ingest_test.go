package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emwin_parser/internal/config"
	"emwin_parser/internal/ledger"
	"emwin_parser/internal/observability"
	_ "emwin_parser/internal/parsers"
	"emwin_parser/internal/parsers/taf"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/storage"
)

const (
	tafName = "A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT"
	tafText = "FTUS80 KLWX 151120\nTAFLWX\nTAF KIAD 151120Z 1512/1618 18010KT P6SM SKC=\n"

	warnName = "A_WWUS81KLWX151120_C_KWIN_20221015112015_142397-2-SPSLWX.TXT"
	warnText = "WWUS81 KLWX 151120\nSPSLWX\nSPECIAL WEATHER STATEMENT\n"

	badTAFName = "A_FTUS80KLWX151125_C_KWIN_20221015112512_142398-2-TAFLWX.TXT"
	badTAFText = "FTUS80 KLWX 151125\nTAFLWX\nTAF garbage=\n"

	lateTAFName = "A_FTUS80KLWX201120_C_KWIN_20221020112012_142399-2-TAFLWX.TXT"
	lateTAFText = "FTUS80 KLWX 201120\nTAFLWX\nTAF KIAD 201120Z 2012/2118 18010KT P6SM SKC=\n"

	imageName = "OR_ABI-L2-CMIPM1-M6C02_G18_s20223200122250_e20223200122308_c20223200122372.jpg"
)

// memorySink collects records; it is shared by concurrent workers.
type memorySink struct {
	mu      sync.Mutex
	reports []storage.Record
	images  []storage.ImageRecord
}

func (m *memorySink) StoreReport(_ context.Context, r storage.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *memorySink) StoreImage(_ context.Context, r storage.ImageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, r)
	return nil
}

func (m *memorySink) Close() error { return nil }

func (m *memorySink) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports), len(m.images)
}

type fixture struct {
	in      string
	fail    string
	unknown string
	sink    *memorySink
	ledger  *ledger.Ledger
	metrics *observability.Metrics
	clock   *clockwork.FakeClock
	ing     *Ingester
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		in:      filepath.Join(root, "in"),
		fail:    filepath.Join(root, "fail"),
		unknown: filepath.Join(root, "unknown"),
		sink:    &memorySink{},
		clock:   clockwork.NewFakeClockAt(time.Date(2022, 10, 15, 11, 21, 0, 0, time.UTC)),
	}
	require.NoError(t, os.MkdirAll(f.in, 0o755))

	l, err := ledger.Open(filepath.Join(root, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	f.ledger = l

	f.metrics, _ = observability.NewMetricsForTesting()
	f.ing = NewIngester(IngesterOptions{
		Registry: registry.Default(),
		Sink:     f.sink,
		Ledger:   l,
		Actions: Actions{
			Unrecognized: config.FileAction{On: config.ActionMove, Path: f.unknown},
			Failure:      config.FileAction{On: config.ActionMove, Path: f.fail},
			Done:         config.FileAction{On: config.ActionDelete},
		},
		Metrics: f.metrics,
		Logger:  discardLogger(),
		Clock:   f.clock,
	})
	return f
}

func (f *fixture) write(t *testing.T, name, text string) string {
	t.Helper()
	p := filepath.Join(f.in, name)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
	return p
}

func TestProcessDecodes(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, tafName, tafText)

	require.NoError(t, f.ing.Process(context.Background(), path))

	require.Len(t, f.sink.reports, 1)
	rec := f.sink.reports[0]
	assert.Equal(t, "taf", rec.ReportType)
	assert.Equal(t, "KLWX", rec.Origin)
	assert.Equal(t, []string{"KIAD"}, rec.Stations)
	assert.Equal(t, path, rec.Source)
	assert.Equal(t, time.Date(2022, 10, 15, 11, 20, 12, 0, time.UTC), rec.Reference, "day-of-month times resolve against the file's creation time")
	assert.NoFileExists(t, path, "done action deletes the file")

	entry, found, err := f.ledger.Get(path)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ledger.Decoded, entry.Outcome)
	assert.Equal(t, rec.BulletinID, entry.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BulletinsDecoded.WithLabelValues("taf")))
}

func TestProcessResolvesLateMonthTimes(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, lateTAFName, lateTAFText)

	require.NoError(t, f.ing.Process(context.Background(), path))

	require.Len(t, f.sink.reports, 1)
	rec := f.sink.reports[0]
	report, ok := rec.Report().(*taf.Report)
	require.True(t, ok)
	require.NotEmpty(t, report.Items)

	it := report.Items[0]
	assert.Equal(t, time.Date(2022, 10, 20, 11, 20, 0, 0, time.UTC), it.Issued.Resolve(rec.Reference))
	require.NotNil(t, it.Valid)
	assert.Equal(t, time.Date(2022, 10, 20, 12, 0, 0, 0, time.UTC), it.Valid.From.Resolve(rec.Reference))
	assert.Equal(t, time.Date(2022, 10, 21, 18, 0, 0, 0, time.UTC), it.Valid.To.Resolve(rec.Reference))
}

func TestProcessSkipsLedgered(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, tafName, tafText)
	require.NoError(t, f.ing.Process(context.Background(), path))

	// The receiver delivers the same file again.
	f.write(t, tafName, tafText)
	require.NoError(t, f.ing.Process(context.Background(), path))

	reports, _ := f.sink.counts()
	assert.Equal(t, 1, reports)
	assert.FileExists(t, path, "skipped files are left alone")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FilesSkipped))
}

func TestProcessUnsupported(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, warnName, warnText)

	require.NoError(t, f.ing.Process(context.Background(), path))

	reports, _ := f.sink.counts()
	assert.Zero(t, reports)
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(f.unknown, warnName), "products without a decoder take the unrecognized action")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Unsupported))

	entry, _, err := f.ledger.Get(path)
	require.NoError(t, err)
	assert.Equal(t, ledger.Unsupported, entry.Outcome)
}

func TestProcessFailure(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, badTAFName, badTAFText)

	err := f.ing.Process(context.Background(), path)
	require.ErrorIs(t, err, registry.ErrEmpty)

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(f.fail, badTAFName))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DecodeFailures.WithLabelValues("decode")))

	entry, _, err := f.ledger.Get(path)
	require.NoError(t, err)
	assert.Equal(t, ledger.Failed, entry.Outcome)
}

func TestProcessUnrecognized(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "readme.md", "hello")

	require.NoError(t, f.ing.Process(context.Background(), path))
	assert.FileExists(t, filepath.Join(f.unknown, "readme.md"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FilesSeen.WithLabelValues("unrecognized")))
}

func TestProcessImage(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, imageName, "\xff\xd8")

	require.NoError(t, f.ing.Process(context.Background(), path))

	_, images := f.sink.counts()
	require.Equal(t, 1, images)
	assert.Equal(t, path, f.sink.images[0].Path)
	assert.FileExists(t, path, "images are left in place")
}

func TestProcessIgnoresPartialUploads(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, tafName+".tmp", tafText)

	require.NoError(t, f.ing.Process(context.Background(), path))
	assert.FileExists(t, path)
	seen, err := f.ledger.Seen(path)
	require.NoError(t, err)
	assert.False(t, seen)
}
