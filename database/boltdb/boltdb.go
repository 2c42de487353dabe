// Package boltdb stores the submission ledger in a BoltDB file.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/database"
	"github.com/ljmet/condorsub/util/fsutil"
)

// JobsBucket maps "label/index" -> JSON database.Record
var JobsBucket = []byte("jobs")

// RunsBucket maps run ID -> start time (RFC 3339)
var RunsBucket = []byte("runs")

// BoltDB is a database.Ledger backed by a BoltDB file.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB opens, creating if needed, the ledger at conf.Path.
func NewBoltDB(conf config.Ledger) (*BoltDB, error) {
	err := fsutil.EnsurePath(conf.Path)
	if err != nil {
		return nil, err
	}
	db, err := bolt.Open(conf.Path, 0600, &bolt.Options{
		Timeout: time.Second * 5,
	})
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", conf.Path, err)
	}
	return &BoltDB{db: db}, nil
}

// Init creates the required BoltDB buckets.
func (b *BoltDB) Init() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{JobsBucket, RunsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database file.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func recordKey(dataset string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", dataset, index))
}

// PutRecord stores r, replacing any record for the same dataset and index.
func (b *BoltDB) PutRecord(ctx context.Context, r *database.Record) error {
	v, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(JobsBucket).Put(recordKey(r.Dataset, r.Index), v)
	})
}

// GetRecord returns the record for the given job.
func (b *BoltDB) GetRecord(ctx context.Context, dataset string, index int) (*database.Record, error) {
	r := &database.Record{}
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(JobsBucket).Get(recordKey(dataset, index))
		if v == nil {
			return fmt.Errorf("%w: %s job %d", database.ErrNotFound, dataset, index)
		}
		return json.Unmarshal(v, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecords returns the records matching f, ordered by dataset and index.
func (b *BoltDB) ListRecords(ctx context.Context, f database.Filter) ([]*database.Record, error) {
	var out []*database.Record
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(JobsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			r := &database.Record{}
			if err := json.Unmarshal(v, r); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			if f.Match(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// StartRun records the start of a run.
func (b *BoltDB) StartRun(ctx context.Context, runID string, start time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(RunsBucket).Put([]byte(runID), []byte(start.UTC().Format(time.RFC3339Nano)))
	})
}

// ListRuns returns every recorded run, oldest first.
func (b *BoltDB) ListRuns(ctx context.Context) ([]database.Run, error) {
	var runs []database.Run
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(RunsBucket).ForEach(func(k, v []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				return fmt.Errorf("decoding run %s: %w", k, err)
			}
			runs = append(runs, database.Run{ID: string(k), Start: t})
			return nil
		})
	})
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Start.Before(runs[j].Start)
	})
	return runs, err
}
