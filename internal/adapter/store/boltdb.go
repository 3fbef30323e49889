package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"pfind/internal/domain"
	"pfind/internal/port"
)

var _ port.SnapshotStore = (*BoltStore)(nil)

var (
	bucketSnapshots = []byte("snapshots")
	bucketHistory   = []byte("history")
)

// BoltStore persists scan snapshots and query history for the CLI layer.
// The search core never sees it; on startup the CLI can serve the stored
// pool while a fresh scan replaces it.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the snapshot database.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSnapshots, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func snapshotKey(projectPath string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(projectPath)))
}

// PutSnapshot stores a completed scan result, replacing any previous
// snapshot for the same project root.
func (s *BoltStore) PutSnapshot(result *domain.ProjectScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put(snapshotKey(result.ProjectPath), data)
	})
}

// GetSnapshot loads the stored scan for a project root.
func (s *BoltStore) GetSnapshot(projectPath string) (*domain.ProjectScanResult, error) {
	var result domain.ProjectScanResult
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshots).Get(snapshotKey(projectPath))
		if data == nil {
			return fmt.Errorf("no snapshot for %s", projectPath)
		}
		return json.Unmarshal(data, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSnapshot removes a stored scan.
func (s *BoltStore) DeleteSnapshot(projectPath string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Delete(snapshotKey(projectPath))
	})
}

// ListSnapshots returns the project roots with a stored scan.
func (s *BoltStore) ListSnapshots() ([]string, error) {
	var paths []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// RecordQuery appends a query to the project's history.
func (s *BoltStore) RecordQuery(projectPath, query string) error {
	entry := port.HistoryEntry{Query: query, At: time.Now().Unix()}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		project, err := tx.Bucket(bucketHistory).CreateBucketIfNotExists(snapshotKey(projectPath))
		if err != nil {
			return err
		}
		seq, err := project.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return project.Put(key, data)
	})
}

// QueryHistory returns the most recent queries for a project, newest
// first, up to limit.
func (s *BoltStore) QueryHistory(projectPath string, limit int) ([]port.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []port.HistoryEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		project := tx.Bucket(bucketHistory).Bucket(snapshotKey(projectPath))
		if project == nil {
			return nil
		}
		c := project.Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var entry port.HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
