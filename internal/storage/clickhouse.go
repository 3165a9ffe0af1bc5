package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"emwin_parser/internal/codes"
	"emwin_parser/internal/parsers/amdar"
	"emwin_parser/internal/parsers/metar"
	"emwin_parser/internal/parsers/taf"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ClickHouseDB is the analytical store. Besides the raw reports table it
// flattens TAF, AMDAR and METAR items into one row each.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			bulletin_id     UUID,
			received        DateTime64(3),
			source          String,
			ttaaii          LowCardinality(String),
			origin          LowCardinality(String),
			family          LowCardinality(String),
			report_type     LowCardinality(String),
			parser          LowCardinality(String),
			stations        Array(String),
			raw_text        String,
			report_json     String,
			recovered       UInt16,
			created_at      DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(received)
		ORDER BY (report_type, origin, received)
		SETTINGS index_granularity = 8192`,

		`CREATE TABLE IF NOT EXISTS taf_items (
			bulletin_id     UUID,
			station         LowCardinality(String),
			kind            LowCardinality(String),
			issued          DateTime,
			valid_from      Nullable(DateTime),
			valid_to        Nullable(DateTime),
			is_nil          Bool,
			cancelled       Bool,
			wind_direction  Nullable(Float32),
			wind_speed      Nullable(Float32),
			wind_unit       LowCardinality(String),
			visibility_m    Nullable(Float64),
			cavok           Bool,
			group_count     UInt16
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(issued)
		ORDER BY (station, issued)`,

		`CREATE TABLE IF NOT EXISTS amdar_observations (
			bulletin_id       UUID,
			aircraft          LowCardinality(String),
			phase             LowCardinality(String),
			observed          DateTime,
			latitude          Float64,
			longitude         Float64,
			pressure_altitude Float64,
			temperature       Float32,
			wind_direction    Float32,
			wind_speed        Float32,
			wind_unit         LowCardinality(String),
			turbulence        LowCardinality(String)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(observed)
		ORDER BY (aircraft, observed)`,

		`CREATE TABLE IF NOT EXISTS metar_observations (
			bulletin_id     UUID,
			station         LowCardinality(String),
			special         Bool,
			observed        DateTime,
			is_nil          Bool,
			wind_direction  Nullable(Float32),
			wind_speed      Nullable(Float32),
			wind_unit       LowCardinality(String),
			visibility_m    Nullable(Float64),
			temperature     Nullable(Float32),
			dewpoint        Nullable(Float32),
			pressure        Nullable(Float64),
			pressure_unit   LowCardinality(String)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(observed)
		ORDER BY (station, observed)`,

		`CREATE TABLE IF NOT EXISTS goes_images (
			id              UUID,
			path            String,
			environment     LowCardinality(String),
			product         LowCardinality(String),
			sector          LowCardinality(String),
			mode            UInt8,
			channel         UInt8,
			satellite       UInt8,
			start_time      DateTime64(1),
			end_time        DateTime64(1),
			created         DateTime64(1)
		)
		ENGINE = ReplacingMergeTree()
		PARTITION BY toYYYYMM(start_time)
		ORDER BY (satellite, product, sector, start_time, id)`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	// Bloom filter for token search on bulletin text; fails harmlessly if present.
	_ = d.conn.Exec(ctx, `ALTER TABLE reports ADD INDEX IF NOT EXISTS idx_raw_text_bloom raw_text TYPE tokenbf_v1(32768, 3, 0) GRANULARITY 1`)

	return nil
}

// StoreReport inserts the report row and the typed item rows for r.
func (d *ClickHouseDB) StoreReport(ctx context.Context, r Record) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO reports (bulletin_id, received, source, ttaaii, origin, family, report_type, parser, stations, raw_text, report_json, recovered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.BulletinID, r.Received, r.Source, r.TTAAii, r.Origin, r.Family, r.ReportType, r.Parser,
		nonNil(r.Stations), r.RawText, r.ReportJSON, uint16(r.Recovered))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	ref := r.Reference
	if ref.IsZero() {
		ref = r.Received
	}

	switch rep := r.Report().(type) {
	case *taf.Report:
		return d.insertTAF(ctx, rep, ref)
	case *amdar.Report:
		return d.insertAMDAR(ctx, rep, ref)
	case *metar.Report:
		return d.insertMETAR(ctx, rep, ref)
	}
	return nil
}

func (d *ClickHouseDB) insertTAF(ctx context.Context, rep *taf.Report, ref time.Time) error {
	if len(rep.Items) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO taf_items`)
	if err != nil {
		return fmt.Errorf("prepare taf batch: %w", err)
	}
	for _, it := range rep.Items {
		var from, to *time.Time
		if it.Valid != nil {
			f, t := it.Valid.From.Resolve(ref), it.Valid.To.Resolve(ref)
			from, to = &f, &t
		}
		dir, speed, unit := windColumns(it.Wind)
		err := batch.Append(rep.ID, it.Station, it.Kind.String(), it.Issued.Resolve(ref), from, to,
			it.Nil, it.Cancelled, dir, speed, unit, visibilityMetres(it.Conditions),
			it.Conditions.CAVOK, uint16(len(it.Groups)))
		if err != nil {
			return fmt.Errorf("append taf item: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send taf batch: %w", err)
	}
	return nil
}

func (d *ClickHouseDB) insertAMDAR(ctx context.Context, rep *amdar.Report, ref time.Time) error {
	if len(rep.Items) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO amdar_observations`)
	if err != nil {
		return fmt.Errorf("prepare amdar batch: %w", err)
	}
	for _, it := range rep.Items {
		err := batch.Append(rep.ID, it.Aircraft, it.Phase.String(), it.Time.Resolve(ref),
			it.Latitude, it.Longitude, it.PressureAltitude.Metres(), float32(it.Temperature),
			float32(it.WindDirection), float32(it.WindSpeed.Value), it.WindSpeed.Unit.String(),
			it.Turbulence.String())
		if err != nil {
			return fmt.Errorf("append amdar observation: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send amdar batch: %w", err)
	}
	return nil
}

func (d *ClickHouseDB) insertMETAR(ctx context.Context, rep *metar.Report, ref time.Time) error {
	if len(rep.Items) == 0 {
		return nil
	}
	batch, err := d.conn.PrepareBatch(ctx, `INSERT INTO metar_observations`)
	if err != nil {
		return fmt.Errorf("prepare metar batch: %w", err)
	}
	for _, it := range rep.Items {
		dir, speed, unit := windColumns(it.Wind)
		var air, dew *float32
		if it.Temperature != nil {
			air, dew = celsiusColumn(it.Temperature.Air), celsiusColumn(it.Temperature.Dewpoint)
		}
		var pressure *float64
		var pressureUnit string
		if it.Pressure != nil {
			pressure, pressureUnit = &it.Pressure.Value, it.Pressure.Unit.String()
		}
		err := batch.Append(rep.ID, it.Station, it.Special, it.Observed.Resolve(ref), it.Nil,
			dir, speed, unit, visibilityMetres(it.Conditions), air, dew, pressure, pressureUnit)
		if err != nil {
			return fmt.Errorf("append metar observation: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send metar batch: %w", err)
	}
	return nil
}

func windColumns(w *codes.Wind) (dir, speed *float32, unit string) {
	if w == nil {
		return nil, nil, ""
	}
	if w.Direction != nil {
		dv := float32(*w.Direction)
		dir = &dv
	}
	if w.Speed != nil {
		sv := float32(w.Speed.Value)
		speed, unit = &sv, w.Speed.Unit.String()
	}
	return dir, speed, unit
}

func visibilityMetres(c codes.Conditions) *float64 {
	if c.Visibility == nil {
		return nil
	}
	m := c.Visibility.Metres()
	return &m
}

func celsiusColumn[T ~float64](v *T) *float32 {
	if v == nil {
		return nil
	}
	f := float32(*v)
	return &f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StoreImage inserts a GOES image row. Repeats collapse on merge.
func (d *ClickHouseDB) StoreImage(ctx context.Context, r ImageRecord) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO goes_images (id, path, environment, product, sector, mode, channel, satellite, start_time, end_time, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Path, r.Environment.String(), r.ShortName.Product.String(), r.ShortName.Sector.String(),
		uint8(r.ShortName.Mode), uint8(r.ShortName.Channel), uint8(r.Satellite), r.Start, r.End, r.Created)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// CHQueryParams contains filtering options for querying reports.
type CHQueryParams struct {
	ReportType string
	Origin     string
	Station    string
	FullText   string // Token match on raw_text.
	Since      time.Time
	Limit      int
}

// CHReport is a report row read back from ClickHouse.
type CHReport struct {
	BulletinID string
	Received   time.Time
	TTAAii     string
	Origin     string
	ReportType string
	Stations   []string
	RawText    string
	ReportJSON string
	Recovered  uint16
}

// Query retrieves reports matching the given parameters, newest first.
func (d *ClickHouseDB) Query(ctx context.Context, p CHQueryParams) ([]CHReport, error) {
	var conditions []string
	var args []any

	if p.ReportType != "" {
		conditions = append(conditions, "report_type = ?")
		args = append(args, p.ReportType)
	}
	if p.Origin != "" {
		conditions = append(conditions, "origin = ?")
		args = append(args, p.Origin)
	}
	if p.Station != "" {
		conditions = append(conditions, "has(stations, ?)")
		args = append(args, p.Station)
	}
	if p.FullText != "" {
		conditions = append(conditions, "hasToken(raw_text, ?)")
		args = append(args, p.FullText)
	}
	if !p.Since.IsZero() {
		conditions = append(conditions, "received >= ?")
		args = append(args, p.Since)
	}

	query := `SELECT toString(bulletin_id), received, ttaaii, origin, report_type, stations, raw_text, report_json, recovered FROM reports`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" ORDER BY received DESC LIMIT %d", limit)

	rows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []CHReport
	for rows.Next() {
		var r CHReport
		if err := rows.Scan(&r.BulletinID, &r.Received, &r.TTAAii, &r.Origin, &r.ReportType,
			&r.Stations, &r.RawText, &r.ReportJSON, &r.Recovered); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return reports, nil
}

// CountByType returns report counts grouped by report type.
func (d *ClickHouseDB) CountByType(ctx context.Context) (map[string]uint64, error) {
	rows, err := d.conn.Query(ctx, "SELECT report_type, count() FROM reports GROUP BY report_type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var typ string
		var count uint64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		counts[typ] = count
	}
	return counts, rows.Err()
}
