// Package journal persists the append-only audit trail of mutating engine
// actions in a local BoltDB file. Writes are cheap and never on the critical
// path: the engine records after commit and tolerates journal failures.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/crowdvault/backend/domain"
)

// Store wraps BoltDB for the audit journal. Keys order entries by time, so a
// cursor walk is a chronological read.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "journal"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Append writes one record. Missing id and timestamp are filled in.
func (s *Store) Append(record domain.ActionRecord) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.At.IsZero() {
		record.At = time.Now().UTC()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	key := buildKey(record)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]domain.ActionRecord, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var records []domain.ActionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var record domain.ActionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// ByCampaign returns up to limit records for one campaign, newest first.
func (s *Store) ByCampaign(campaignID string, limit int) ([]domain.ActionRecord, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var records []domain.ActionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var record domain.ActionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			if record.CampaignID == campaignID {
				records = append(records, record)
			}
		}
		return nil
	})
	return records, err
}

// Size returns the number of journal entries.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes entries older than the provided timestamp.
func (s *Store) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var record domain.ActionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			if record.At.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func buildKey(record domain.ActionRecord) string {
	return fmt.Sprintf("%020d_%s", record.At.UnixNano(), record.ID)
}
