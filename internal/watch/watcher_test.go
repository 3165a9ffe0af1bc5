package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSettler(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newSettler(time.Second)

	s.touch("/in/b", clock.Now())
	s.touch("/in/a", clock.Now())
	assert.Empty(t, s.due(clock.Now()))

	clock.Advance(500 * time.Millisecond)
	s.touch("/in/b", clock.Now())

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"/in/a"}, s.due(clock.Now()))

	clock.Advance(time.Second)
	assert.Equal(t, []string{"/in/b"}, s.due(clock.Now()))
	assert.Empty(t, s.due(clock.Now()))
}

func TestIgnored(t *testing.T) {
	tests := map[string]bool{
		tafName:          false,
		tafName + ".tmp": true,
		"x.PART":         true,
		".hidden.TXT":    true,
	}
	for name, want := range tests {
		assert.Equal(t, want, ignored(name), name)
	}
}

func TestWatcherRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	// A file already waiting when the watcher starts.
	backlog := f.write(t, tafName, tafText)

	nested := filepath.Join(f.in, "img", "CUSTOMLUT")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	w := NewWatcher(f.ing, WatcherOptions{
		Dirs:    []string{f.in, ""},
		Workers: 2,
		Settle:  20 * time.Millisecond,
		Metrics: f.metrics,
		Logger:  discardLogger(),
		Clock:   clockwork.NewRealClock(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(backlog)
		return os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond, "backlog file is processed")

	// New files in the root and in a subdirectory.
	f.write(t, warnName, warnText)
	require.NoError(t, os.WriteFile(filepath.Join(nested, imageName), []byte("\xff\xd8"), 0o644))

	assert.Eventually(t, func() bool {
		reports, images := f.sink.counts()
		_, err := os.Stat(filepath.Join(f.in, warnName))
		return reports == 1 && images == 1 && os.IsNotExist(err)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Equal(t, 0.0, gaugeValue(f))
}

func gaugeValue(f *fixture) float64 {
	return testutil.ToFloat64(f.metrics.WatcherRunning)
}
