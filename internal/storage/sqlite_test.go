package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emwin_parser/internal/goes"
)

func openTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteStoreAndQuery(t *testing.T) {
	ctx := context.Background()
	db := openTestSQLite(t)
	rec := decodedTAF(t)

	require.NoError(t, db.StoreReport(ctx, rec))
	// A replayed bulletin is ignored.
	require.NoError(t, db.StoreReport(ctx, rec))

	all, err := db.Query(ctx, QueryParams{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, rec.BulletinID, got.BulletinID)
	assert.Equal(t, "taf", got.ReportType)
	assert.Equal(t, []string{"KIAD", "KBWI"}, got.Stations)
	assert.True(t, rec.Received.Equal(got.Received))
	assert.Equal(t, rec.ReportJSON, got.ReportJSON)

	byStation, err := db.Query(ctx, QueryParams{Station: "KBWI"})
	require.NoError(t, err)
	assert.Len(t, byStation, 1)

	// KBW must not match KBWI.
	partial, err := db.Query(ctx, QueryParams{Station: "KBW"})
	require.NoError(t, err)
	assert.Empty(t, partial)

	fts, err := db.Query(ctx, QueryParams{FullText: "KIAD"})
	require.NoError(t, err)
	assert.Len(t, fts, 1)

	none, err := db.Query(ctx, QueryParams{ReportType: "metar"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteGetReport(t *testing.T) {
	ctx := context.Background()
	db := openTestSQLite(t)
	rec := decodedTAF(t)
	require.NoError(t, db.StoreReport(ctx, rec))

	got, err := db.GetReport(ctx, rec.BulletinID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "FTUS80", got.TTAAii)

	missing, err := db.GetReport(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStatsAndDistinct(t *testing.T) {
	ctx := context.Background()
	db := openTestSQLite(t)

	first := decodedTAF(t)
	second := decodedTAF(t)
	second.Recovered = 2
	second.Origin = "KOKX"
	require.NoError(t, db.StoreReport(ctx, first))
	require.NoError(t, db.StoreReport(ctx, second))

	img, err := goes.Parse("/goes/OR_ABI-L1b-RadF-M6C13_G16_s20210481330321_e20210481339399_c20210481339454.nc")
	require.NoError(t, err)
	require.NoError(t, db.StoreImage(ctx, ImageRecord{ID: uuid.New(), Path: "/goes/x.nc", FileName: img}))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 1, stats.WithRecovered)
	assert.Equal(t, 1, stats.Images)
	assert.Equal(t, 2, stats.ByReportType["taf"])
	assert.Equal(t, 1, stats.ByOrigin["KOKX"])

	origins, err := db.Distinct(ctx, "origin")
	require.NoError(t, err)
	assert.Equal(t, []string{"KOKX", "KWBC"}, origins)

	_, err = db.Distinct(ctx, "raw_text; DROP TABLE reports")
	assert.Error(t, err)
}

func TestSQLiteQueryOrdering(t *testing.T) {
	ctx := context.Background()
	db := openTestSQLite(t)

	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := decodedTAF(t)
		rec.Received = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, db.StoreReport(ctx, rec))
	}

	got, err := db.Query(ctx, QueryParams{OrderBy: "received", OrderDesc: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Received.After(got[1].Received))
}
