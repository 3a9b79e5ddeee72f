// Package history archives run reports in an embedded bbolt database so
// `autosync status --history` can show recent runs.
package history

import (
	"fmt"
	"time"

	"github.com/inovacc/autosync/internal/encoding"
	"github.com/inovacc/autosync/internal/model"
	"go.etcd.io/bbolt"
)

const bucketRuns = "runs" // key: startedAt(RFC3339Nano) + run id -> RunReport JSON

// Store is a bbolt-backed archive of run reports.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init history db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append archives one run report. Keys sort chronologically, so recent
// runs are the last entries in the bucket.
func (s *Store) Append(report model.RunReport) error {
	data, err := encoding.ToJSON(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	key := report.StartedAt.UTC().Format(time.RFC3339Nano) + "/" + report.ID

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put([]byte(key), data)
	})
}

// Recent returns up to n reports, newest first.
func (s *Store) Recent(n int) ([]model.RunReport, error) {
	if n <= 0 {
		return nil, nil
	}

	var reports []model.RunReport

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketRuns)).Cursor()

		for k, v := c.Last(); k != nil && len(reports) < n; k, v = c.Prev() {
			report, err := encoding.ParseJSON[model.RunReport](v)
			if err != nil {
				return fmt.Errorf("corrupt history entry %s: %w", k, err)
			}

			reports = append(reports, *report)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}
