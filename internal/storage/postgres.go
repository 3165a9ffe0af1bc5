package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// PostgresDB keeps reports as JSONB and tracks the latest report for each
// station and report type.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() error {
	d.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		bulletin_id     UUID PRIMARY KEY,
		source          TEXT,
		received        TIMESTAMPTZ NOT NULL,
		ttaaii          TEXT NOT NULL,
		origin          TEXT NOT NULL,
		family          TEXT NOT NULL,
		report_type     TEXT NOT NULL,
		parser          TEXT NOT NULL,
		stations        TEXT[] NOT NULL DEFAULT '{}',
		raw_text        TEXT NOT NULL,
		report          JSONB NOT NULL,
		recovered       INTEGER NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_reports_type_received ON reports(report_type, received);
	CREATE INDEX IF NOT EXISTS idx_reports_stations ON reports USING GIN (stations);

	-- Latest report per station and report type.
	CREATE TABLE IF NOT EXISTS station_latest (
		station         TEXT NOT NULL,
		report_type     TEXT NOT NULL,
		bulletin_id     UUID NOT NULL REFERENCES reports(bulletin_id) ON DELETE CASCADE,
		received        TIMESTAMPTZ NOT NULL,
		report_count    INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (station, report_type)
	);

	CREATE TABLE IF NOT EXISTS goes_images (
		id              UUID PRIMARY KEY,
		path            TEXT NOT NULL,
		environment     TEXT NOT NULL,
		product         TEXT NOT NULL,
		sector          TEXT NOT NULL,
		mode            SMALLINT NOT NULL,
		channel         SMALLINT NOT NULL,
		satellite       SMALLINT NOT NULL,
		start_time      TIMESTAMPTZ NOT NULL,
		end_time        TIMESTAMPTZ NOT NULL,
		created         TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_goes_images_start ON goes_images(satellite, start_time);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// StoreReport inserts r and moves station_latest forward for each of its
// stations. Replays of a stored bulletin change nothing.
func (d *PostgresDB) StoreReport(ctx context.Context, r Record) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO reports (bulletin_id, source, received, ttaaii, origin, family, report_type, parser, stations, raw_text, report, recovered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (bulletin_id) DO NOTHING
	`, r.BulletinID, r.Source, r.Received, r.TTAAii, r.Origin, r.Family, r.ReportType, r.Parser,
		nonNil(r.Stations), r.RawText, r.ReportJSON, r.Recovered)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	batch := &pgx.Batch{}
	for _, station := range r.Stations {
		batch.Queue(`
			INSERT INTO station_latest (station, report_type, bulletin_id, received)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (station, report_type) DO UPDATE SET
				bulletin_id = CASE WHEN EXCLUDED.received >= station_latest.received
					THEN EXCLUDED.bulletin_id ELSE station_latest.bulletin_id END,
				received = GREATEST(EXCLUDED.received, station_latest.received),
				report_count = station_latest.report_count + 1
		`, station, r.ReportType, r.BulletinID, r.Received)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("update station_latest: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// StoreImage inserts a GOES image row, keeping the first one stored.
func (d *PostgresDB) StoreImage(ctx context.Context, r ImageRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO goes_images (id, path, environment, product, sector, mode, channel, satellite, start_time, end_time, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, r.ID, r.Path, r.Environment.String(), r.ShortName.Product.String(), r.ShortName.Sector.String(),
		int16(r.ShortName.Mode), int16(r.ShortName.Channel), int16(r.Satellite), r.Start, r.End, r.Created)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// PGReport is a report row read back from PostgreSQL.
type PGReport struct {
	BulletinID uuid.UUID
	Received   time.Time
	TTAAii     string
	Origin     string
	ReportType string
	Stations   []string
	RawText    string
	ReportJSON string
	Recovered  int
}

const pgReportColumns = `bulletin_id, received, ttaaii, origin, report_type, stations, raw_text, report::text, recovered`

func scanPGReport(row pgx.Row) (*PGReport, error) {
	var r PGReport
	err := row.Scan(&r.BulletinID, &r.Received, &r.TTAAii, &r.Origin, &r.ReportType,
		&r.Stations, &r.RawText, &r.ReportJSON, &r.Recovered)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReport retrieves a report by bulletin ID.
func (d *PostgresDB) GetReport(ctx context.Context, id uuid.UUID) (*PGReport, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+pgReportColumns+` FROM reports WHERE bulletin_id = $1`, id)
	return scanPGReport(row)
}

// Latest returns the most recent report of reportType covering station.
func (d *PostgresDB) Latest(ctx context.Context, station, reportType string) (*PGReport, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+prefixColumns("r.", pgReportColumns)+`
		FROM station_latest l
		JOIN reports r ON r.bulletin_id = l.bulletin_id
		WHERE l.station = $1 AND l.report_type = $2
	`, station, reportType)
	return scanPGReport(row)
}
