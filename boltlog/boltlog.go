// Package boltlog implements connect4.EventLog on top of a bbolt database
// file. Each stream is a nested bucket keyed by big-endian sequence number,
// so bucket iteration order is event order
package boltlog

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kode4food/connect4"
)

// Log is a bbolt-backed connect4.EventLog
type Log struct {
	db *bbolt.DB
}

const streamsBucket = "streams"

var _ connect4.EventLog = (*Log)(nil)

// Open opens or creates the database file at path
func Open(path string) (*Log, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	l := &Log{db: db}
	if err := l.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the underlying database
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Log) AppendEvents(
	ctx context.Context, stream string, expect connect4.Expectation,
	evs []*connect4.Event,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return l.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(streamsBucket))
		if root == nil {
			return fmt.Errorf("streams bucket is missing")
		}

		version := streamVersion(root.Bucket([]byte(stream)))
		if !expect.Check(version) {
			return connect4.NewPreconditionError(stream, expect, version)
		}
		if len(evs) == 0 {
			return nil
		}

		b, err := root.CreateBucketIfNotExists([]byte(stream))
		if err != nil {
			return fmt.Errorf("create stream bucket: %w", err)
		}
		for i, ev := range evs {
			stored := *ev
			stored.Sequence = version + int64(i)
			payload, err := json.Marshal(&stored)
			if err != nil {
				return fmt.Errorf("marshal event: %w", err)
			}
			if err := b.Put(sequenceKey(stored.Sequence), payload); err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *Log) GetEvents(
	ctx context.Context, stream string, fromSeq int64,
) ([]*connect4.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fromSeq < 0 {
		fromSeq = 0
	}

	var res []*connect4.Event
	err := l.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(streamsBucket))
		if root == nil {
			return fmt.Errorf("streams bucket is missing")
		}
		b := root.Bucket([]byte(stream))
		if b == nil {
			return connect4.ErrStreamNotFound
		}

		res = []*connect4.Event{}
		c := b.Cursor()
		for k, v := c.Seek(sequenceKey(fromSeq)); k != nil; k, v = c.Next() {
			ev := &connect4.Event{}
			if err := json.Unmarshal(v, ev); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			ev.Sequence = int64(binary.BigEndian.Uint64(k))
			res = append(res, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListStreams returns the names of every stream in the database
func (l *Log) ListStreams(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var res []string
	err := l.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(streamsBucket))
		if root == nil {
			return fmt.Errorf("streams bucket is missing")
		}
		return root.ForEachBucket(func(k []byte) error {
			res = append(res, string(k))
			return nil
		})
	})
	return res, err
}

func (l *Log) ensureBuckets() error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(streamsBucket))
		if err != nil {
			return fmt.Errorf("create streams bucket: %w", err)
		}
		return nil
	})
}

// streamVersion returns the number of events in a stream bucket, which is
// one past the last sequence key
func streamVersion(b *bbolt.Bucket) int64 {
	if b == nil {
		return 0
	}
	k, _ := b.Cursor().Last()
	if k == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(k)) + 1
}

func sequenceKey(seq int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(seq))
	return key
}
