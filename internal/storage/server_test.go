package storage

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envInt(name string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return v
	}
	return def
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// setupTestPostgres returns nil unless POSTGRES_HOST names a reachable server.
func setupTestPostgres(t *testing.T) *PostgresDB {
	t.Helper()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pg, err := OpenPostgres(ctx, PostgresConfig{
		Host:     host,
		Port:     envInt("POSTGRES_PORT", 5432),
		User:     envOr("POSTGRES_USER", "emwin"),
		Password: envOr("POSTGRES_PASSWORD", "emwin"),
		Database: envOr("POSTGRES_DB", "emwin"),
	})
	if err != nil {
		return nil
	}
	if err := pg.CreateSchema(ctx); err != nil {
		_ = pg.Close()
		return nil
	}
	t.Cleanup(func() { _ = pg.Close() })
	return pg
}

// setupTestClickHouse returns nil unless CLICKHOUSE_HOST names a reachable server.
func setupTestClickHouse(t *testing.T) *ClickHouseDB {
	t.Helper()

	host := os.Getenv("CLICKHOUSE_HOST")
	if host == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ch, err := OpenClickHouse(ctx, ClickHouseConfig{
		Host:     host,
		Port:     envInt("CLICKHOUSE_PORT", 9000),
		User:     envOr("CLICKHOUSE_USER", "default"),
		Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		Database: envOr("CLICKHOUSE_DB", "default"),
	})
	if err != nil {
		return nil
	}
	if err := ch.CreateSchema(ctx); err != nil {
		_ = ch.Close()
		return nil
	}
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestPostgresStationLatest(t *testing.T) {
	pg := setupTestPostgres(t)
	if pg == nil {
		t.Skip("No PostgreSQL connection available")
	}
	ctx := context.Background()

	older := decodedTAF(t)
	newer := decodedTAF(t)
	newer.Received = older.Received.Add(time.Hour)

	require.NoError(t, pg.StoreReport(ctx, newer))
	require.NoError(t, pg.StoreReport(ctx, older))
	// Replays do not count twice.
	require.NoError(t, pg.StoreReport(ctx, older))

	latest, err := pg.Latest(ctx, "KIAD", "taf")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.BulletinID, latest.BulletinID)
	assert.Contains(t, latest.ReportJSON, "KBWI")

	got, err := pg.GetReport(ctx, older.BulletinID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.ElementsMatch(t, []string{"KIAD", "KBWI"}, got.Stations)

	missing, err := pg.GetReport(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClickHouseStoreReport(t *testing.T) {
	ch := setupTestClickHouse(t)
	if ch == nil {
		t.Skip("No ClickHouse connection available")
	}
	ctx := context.Background()

	rec := decodedTAF(t)
	require.NoError(t, ch.StoreReport(ctx, rec))

	got, err := ch.Query(ctx, CHQueryParams{Station: "KBWI", Since: rec.Received.Add(-time.Minute)})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	var items uint64
	require.NoError(t, ch.Conn().QueryRow(ctx,
		"SELECT count() FROM taf_items WHERE bulletin_id = ?", rec.BulletinID).Scan(&items))
	assert.Equal(t, uint64(2), items)

	counts, err := ch.CountByType(ctx)
	require.NoError(t, err)
	assert.NotZero(t, counts["taf"])
}
