package storage

import (
	"context"
	"fmt"
)

// Config selects and configures the report stores. A store with an empty
// address or path is not opened.
type Config struct {
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Postgres   PostgresConfig   `yaml:"postgres"`
}

// SQLiteConfig holds the path of the local report database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns a configuration with default local development settings.
// Only the SQLite store is enabled.
func DefaultConfig() Config {
	return Config{
		SQLite: SQLiteConfig{Path: "emwin.db"},
		ClickHouse: ClickHouseConfig{
			Port:     9000,
			Database: "emwin",
			User:     "default",
		},
		Postgres: PostgresConfig{
			Port:     5432,
			Database: "emwin",
			User:     "emwin",
			Password: "emwin",
		},
	}
}

// Open opens every configured store and creates its schema. The result
// writes to all of them.
func Open(ctx context.Context, cfg Config) (Fanout, error) {
	var sinks Fanout
	fail := func(err error) (Fanout, error) {
		_ = sinks.Close()
		return nil, err
	}

	if cfg.SQLite.Path != "" {
		db, err := OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return fail(fmt.Errorf("sqlite: %w", err))
		}
		sinks = append(sinks, db)
	}

	if cfg.ClickHouse.Host != "" {
		ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			return fail(fmt.Errorf("clickhouse: %w", err))
		}
		sinks = append(sinks, ch)
		if err := ch.CreateSchema(ctx); err != nil {
			return fail(fmt.Errorf("clickhouse schema: %w", err))
		}
	}

	if cfg.Postgres.Host != "" {
		pg, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		sinks = append(sinks, pg)
		if err := pg.CreateSchema(ctx); err != nil {
			return fail(fmt.Errorf("postgres schema: %w", err))
		}
	}

	return sinks, nil
}
