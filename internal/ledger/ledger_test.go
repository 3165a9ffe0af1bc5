package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndSeen(t *testing.T) {
	l := openTestLedger(t)
	path := "/in/A_FTUS80KLWX151120_C_KWIN_20221015112012_142396-2-TAFLWX.TXT"

	seen, err := l.Seen(path)
	require.NoError(t, err)
	assert.False(t, seen)

	entry := Entry{
		ID:          uuid.New(),
		Outcome:     Decoded,
		ProcessedAt: time.Date(2022, 10, 15, 11, 21, 0, 0, time.UTC),
		Detail:      "taf",
	}
	require.NoError(t, l.Record(path, entry))

	seen, err = l.Seen(path)
	require.NoError(t, err)
	assert.True(t, seen)

	got, found, err := l.Get(path)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, Decoded, got.Outcome)
	assert.True(t, entry.ProcessedAt.Equal(got.ProcessedAt))

	require.NoError(t, l.Forget(path))
	_, found, err = l.Get(path)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record("/in/a.txt", Entry{Outcome: Failed}))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	seen, err := l.Seen("/in/a.txt")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestCountsAndPrune(t *testing.T) {
	l := openTestLedger(t)
	old := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record("/in/1", Entry{Outcome: Decoded, ProcessedAt: old}))
	require.NoError(t, l.Record("/in/2", Entry{Outcome: Decoded, ProcessedAt: recent}))
	require.NoError(t, l.Record("/in/3", Entry{Outcome: Unsupported, ProcessedAt: old}))

	counts, err := l.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[Outcome]int{Decoded: 2, Unsupported: 1}, counts)

	removed, err := l.Prune(time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	counts, err = l.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[Outcome]int{Decoded: 1}, counts)
}
