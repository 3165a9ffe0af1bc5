package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// StoredReport is a report row read back from SQLite.
type StoredReport struct {
	ID         int64
	BulletinID uuid.UUID
	Source     string
	Received   time.Time
	TTAAii     string
	Origin     string
	Family     string
	ReportType string
	Parser     string
	Stations   []string
	RawText    string
	ReportJSON string
	Recovered  int
}

// SQLiteDB is the local report archive.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets the API read while the watcher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bulletin_id TEXT NOT NULL UNIQUE,
		source TEXT,
		received TEXT NOT NULL,
		ttaaii TEXT NOT NULL,
		origin TEXT NOT NULL,
		family TEXT NOT NULL,
		report_type TEXT NOT NULL,
		parser TEXT NOT NULL,
		stations TEXT,
		raw_text TEXT NOT NULL,
		report_json TEXT NOT NULL,
		recovered INTEGER DEFAULT 0,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_reports_type ON reports(report_type);
	CREATE INDEX IF NOT EXISTS idx_reports_origin ON reports(origin);
	CREATE INDEX IF NOT EXISTS idx_reports_received ON reports(received);

	CREATE VIRTUAL TABLE IF NOT EXISTS reports_fts USING fts5(
		raw_text,
		content='reports',
		content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS reports_ai AFTER INSERT ON reports BEGIN
		INSERT INTO reports_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS reports_ad AFTER DELETE ON reports BEGIN
		INSERT INTO reports_fts(reports_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
	END;

	CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		environment TEXT NOT NULL,
		product TEXT NOT NULL,
		sector TEXT NOT NULL,
		mode INTEGER NOT NULL,
		channel INTEGER NOT NULL,
		satellite INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_images_start ON images(start_time);
	`

	_, err := db.Exec(schema)
	return err
}

// StoreReport inserts r. A bulletin already stored is left as it is.
func (d *SQLiteDB) StoreReport(ctx context.Context, r Record) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO reports (bulletin_id, source, received, ttaaii, origin, family, report_type, parser, stations, raw_text, report_json, recovered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bulletin_id) DO NOTHING
	`, r.BulletinID.String(), r.Source, r.Received.UTC().Format(time.RFC3339), r.TTAAii, r.Origin, r.Family,
		r.ReportType, r.Parser, strings.Join(r.Stations, ","), r.RawText, r.ReportJSON, r.Recovered)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// StoreImage inserts or replaces the image row for r.ID.
func (d *SQLiteDB) StoreImage(ctx context.Context, r ImageRecord) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO images (id, path, environment, product, sector, mode, channel, satellite, start_time, end_time, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID.String(), r.Path, r.Environment.String(), r.ShortName.Product.String(), r.ShortName.Sector.String(),
		int(r.ShortName.Mode), int(r.ShortName.Channel), int(r.Satellite),
		r.Start.UTC().Format(time.RFC3339Nano), r.End.UTC().Format(time.RFC3339Nano), r.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// QueryParams contains filtering options for querying reports.
type QueryParams struct {
	ReportType string // Exact match.
	Origin     string // Exact match.
	Station    string // Station list contains this identifier.
	FullText   string // FTS5 search on raw_text.
	Limit      int    // Max results (default 100).
	Offset     int
	OrderBy    string // received, report_type, origin or recovered.
	OrderDesc  bool
}

const reportColumns = `id, bulletin_id, source, received, ttaaii, origin, family, report_type, parser, stations, raw_text, report_json, recovered`

// Query retrieves reports matching the given parameters.
func (d *SQLiteDB) Query(ctx context.Context, p QueryParams) ([]StoredReport, error) {
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
		conditions = append(conditions, "(',' || stations || ',') LIKE ?")
		args = append(args, "%,"+p.Station+",%")
	}

	var query string
	if p.FullText != "" {
		query = `SELECT ` + prefixColumns("r.", reportColumns) + `
				FROM reports r
				JOIN reports_fts fts ON r.id = fts.rowid
				WHERE reports_fts MATCH ?`
		args = append([]any{p.FullText}, args...)
		if len(conditions) > 0 {
			query += " AND " + strings.Join(conditions, " AND ")
		}
	} else {
		query = `SELECT ` + reportColumns + ` FROM reports`
		if len(conditions) > 0 {
			query += " WHERE " + strings.Join(conditions, " AND ")
		}
	}

	orderField := "id"
	switch p.OrderBy {
	case "received", "report_type", "origin", "recovered":
		orderField = p.OrderBy
	}
	direction := "ASC"
	if p.OrderDesc {
		direction = "DESC"
	}
	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT %d OFFSET %d", orderField, direction, limit, p.Offset)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []StoredReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetReport returns the report stored for a bulletin, or nil when there is none.
func (d *SQLiteDB) GetReport(ctx context.Context, id uuid.UUID) (*StoredReport, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE bulletin_id = ?`, id.String())
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (StoredReport, error) {
	var r StoredReport
	var bulletinID, received string
	var source, stations sql.NullString
	err := s.Scan(&r.ID, &bulletinID, &source, &received, &r.TTAAii, &r.Origin, &r.Family,
		&r.ReportType, &r.Parser, &stations, &r.RawText, &r.ReportJSON, &r.Recovered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan row: %w", err)
	}
	r.BulletinID, _ = uuid.Parse(bulletinID)
	r.Received, _ = time.Parse(time.RFC3339, received)
	r.Source = source.String
	if stations.String != "" {
		r.Stations = strings.Split(stations.String, ",")
	}
	return r, nil
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + p
	}
	return strings.Join(parts, ", ")
}

// Stats returns aggregate statistics about stored reports.
type Stats struct {
	TotalReports  int
	ByReportType  map[string]int
	ByOrigin      map[string]int
	WithRecovered int
	Images        int
}

// GetStats returns statistics about the stored reports.
func (d *SQLiteDB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByReportType: make(map[string]int),
		ByOrigin:     make(map[string]int),
	}

	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&stats.TotalReports); err != nil {
		return nil, err
	}
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE recovered > 0").Scan(&stats.WithRecovered); err != nil {
		return nil, err
	}
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM images").Scan(&stats.Images); err != nil {
		return nil, err
	}

	groups := []struct {
		query string
		into  map[string]int
	}{
		{"SELECT report_type, COUNT(*) FROM reports GROUP BY report_type", stats.ByReportType},
		{"SELECT origin, COUNT(*) FROM reports GROUP BY origin ORDER BY COUNT(*) DESC LIMIT 20", stats.ByOrigin},
	}
	for _, g := range groups {
		if err := d.countInto(ctx, g.query, g.into); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (d *SQLiteDB) countInto(ctx context.Context, query string, into map[string]int) error {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

// Distinct returns distinct values for a given column.
func (d *SQLiteDB) Distinct(ctx context.Context, column string) ([]string, error) {
	// Column names cannot be bound, so only known ones are accepted.
	validColumns := map[string]bool{
		"report_type": true,
		"family":      true,
		"origin":      true,
		"ttaaii":      true,
		"parser":      true,
	}
	if !validColumns[column] {
		return nil, fmt.Errorf("invalid column: %s", column)
	}

	query := fmt.Sprintf("SELECT DISTINCT %s FROM reports WHERE %s IS NOT NULL AND %s != '' ORDER BY %s", column, column, column, column)
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
