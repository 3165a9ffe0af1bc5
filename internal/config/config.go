// Package config loads the daemon configuration from a YAML file with
// EMWIN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"emwin_parser/internal/publish"
	"emwin_parser/internal/storage"
)

// Config holds all daemon settings.
type Config struct {
	// EmwinDir receives EMWIN text products.
	EmwinDir string `yaml:"emwin-dir"`
	// GoesDir receives GOES-R image files. Empty disables image handling.
	GoesDir    string `yaml:"goes-dir"`
	Workers    int    `yaml:"workers"`
	LedgerPath string `yaml:"ledger"`

	// Unrecognized applies to files whose names do not decode and to products
	// no decoder handles.
	Unrecognized FileAction `yaml:"unrecognized"`
	// Failure applies to files that decoded by name but failed to process.
	Failure FileAction `yaml:"failure"`
	// Done applies to files that were processed.
	Done FileAction `yaml:"done"`

	Storage storage.Config      `yaml:"storage"`
	NATS    publish.NATSConfig  `yaml:"nats"`
	Kafka   publish.KafkaConfig `yaml:"kafka"`

	HTTPAddr  string `yaml:"http-addr"`
	LogLevel  string `yaml:"log-level"`
	LogFormat string `yaml:"log-format"`
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home := homeDir()
	return Config{
		EmwinDir:     filepath.Join(home, "emwin"),
		GoesDir:      filepath.Join(home, "goes"),
		Workers:      4,
		LedgerPath:   filepath.Join(home, "emwind", "ledger.db"),
		Unrecognized: FileAction{On: ActionDelete},
		Failure:      FileAction{On: ActionMove, Path: filepath.Join(home, "emwind", "fail")},
		Done:         FileAction{On: ActionDelete},
		Storage:      storage.DefaultConfig(),
		NATS:         publish.NATSConfig{Prefix: "emwin"},
		Kafka:        publish.KafkaConfig{Topic: "emwin-reports"},
		HTTPAddr:     ":8080",
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// DefaultPath returns emwind/config.yaml under the user configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = homeDir()
	}
	return filepath.Join(dir, "emwind", "config.yaml")
}

// Load reads the configuration at path and applies environment overrides.
// A missing file is created with the defaults; if that fails the defaults
// are still used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if werr := Write(path, cfg); werr != nil {
			slog.Warn("failed to write default configuration, using defaults", "path", path, "error", werr)
		}
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write stores cfg as YAML at path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"EMWIN_DIR", &c.EmwinDir},
		{"EMWIN_GOES_DIR", &c.GoesDir},
		{"EMWIN_LEDGER", &c.LedgerPath},
		{"EMWIN_HTTP_ADDR", &c.HTTPAddr},
		{"EMWIN_LOG_LEVEL", &c.LogLevel},
		{"EMWIN_LOG_FORMAT", &c.LogFormat},
		{"EMWIN_SQLITE_PATH", &c.Storage.SQLite.Path},
		{"EMWIN_POSTGRES_HOST", &c.Storage.Postgres.Host},
		{"EMWIN_POSTGRES_PASSWORD", &c.Storage.Postgres.Password},
		{"EMWIN_CLICKHOUSE_HOST", &c.Storage.ClickHouse.Host},
		{"EMWIN_CLICKHOUSE_PASSWORD", &c.Storage.ClickHouse.Password},
		{"EMWIN_NATS_URL", &c.NATS.URL},
		{"EMWIN_KAFKA_TOPIC", &c.Kafka.Topic},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.name); ok {
			*s.dst = v
		}
	}

	if v := os.Getenv("EMWIN_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = parseList(v)
	}
	if v := os.Getenv("EMWIN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EMWIN_WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	return nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.EmwinDir == "" && c.GoesDir == "" {
		return errors.New("at least one of emwin-dir and goes-dir is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	for name, a := range map[string]FileAction{"unrecognized": c.Unrecognized, "failure": c.Failure, "done": c.Done} {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka brokers are set but the topic is empty")
	}
	return nil
}
