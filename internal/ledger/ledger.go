// Package ledger records which input files have been processed so that a
// restarted watcher does not ingest them again.
//
// Buckets:
//
//	files  processed files keyed by absolute path
//	_meta  schema version and creation time
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const schemaVersion = 1

var (
	bucketFiles    = []byte("files")
	bucketInternal = []byte("_meta")
)

// Outcome is what happened to a processed file.
type Outcome string

const (
	Decoded      Outcome = "decoded"
	Unsupported  Outcome = "unsupported"
	Unrecognized Outcome = "unrecognized"
	Failed       Outcome = "failed"
	Image        Outcome = "image"
)

// Entry is the ledger record for one file.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Outcome     Outcome   `json:"outcome"`
	ProcessedAt time.Time `json:"processed_at"`
	// Detail holds the report type for decoded files or the error text for
	// failed ones.
	Detail string `json:"detail,omitempty"`
}

// Ledger wraps a bbolt database.
type Ledger struct {
	db *bolt.DB
}

// Open opens (or creates) the ledger at path. Parent directories are created.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	return l.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketFiles, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// Seen reports whether path has been recorded.
func (l *Ledger) Seen(path string) (bool, error) {
	var seen bool
	err := l.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(bucketFiles).Get([]byte(path)) != nil
		return nil
	})
	return seen, err
}

// Get returns the entry for path and whether one exists.
func (l *Ledger) Get(path string) (Entry, bool, error) {
	var e Entry
	var found bool
	err := l.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFiles).Get([]byte(path))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &e)
	})
	return e, found, err
}

// Record stores e for path, replacing any earlier entry.
func (l *Ledger) Record(path string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding ledger entry: %w", err)
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFiles).Put([]byte(path), data)
	})
}

// Forget removes path so it will be processed again.
func (l *Ledger) Forget(path string) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFiles).Delete([]byte(path))
	})
}

// Counts returns the number of entries per outcome.
func (l *Ledger) Counts() (map[Outcome]int, error) {
	counts := make(map[Outcome]int)
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFiles).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			counts[e.Outcome]++
			return nil
		})
	})
	return counts, err
}

// Prune removes entries processed before cutoff and returns how many went.
func (l *Ledger) Prune(cutoff time.Time) (int, error) {
	var removed int
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			if e.ProcessedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}
