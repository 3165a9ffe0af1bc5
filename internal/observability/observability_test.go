package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("recovered group", "skipped", "BKNERROR030")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "recovered group", entry["msg"])
	assert.Equal(t, "BKNERROR030", entry["skipped"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "debug", "TEXT").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestMetricsForTesting(t *testing.T) {
	m, reg := NewMetricsForTesting()
	m.BulletinsDecoded.WithLabelValues("taf").Inc()
	m.BulletinsDecoded.WithLabelValues("taf").Inc()
	m.Unsupported.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BulletinsDecoded.WithLabelValues("taf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unsupported))

	// A second set must not collide with the first.
	_, reg2 := NewMetricsForTesting()
	assert.NotSame(t, reg, reg2)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
