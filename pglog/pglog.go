// Package pglog implements connect4.EventLog with PostgreSQL over a
// jackc/pgx/v5 connection pool
package pglog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kode4food/connect4"
)

// Log is a pgx connection pool that implements connect4.EventLog
type Log struct {
	pool *pgxpool.Pool
}

const (
	PingTimeout = 5 * time.Second

	uniqueViolation = "23505"

	schema = `
		CREATE TABLE IF NOT EXISTS connect4_events (
			stream      TEXT        NOT NULL,
			sequence    BIGINT      NOT NULL,
			type        TEXT        NOT NULL,
			data        JSONB       NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (stream, sequence)
		)
	`
)

var _ connect4.EventLog = (*Log)(nil)

// Open connects to the database, verifies the connection, and creates the
// events table if it does not exist
func Open(ctx context.Context, dsn string, maxConns int32) (*Log, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool with config: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Log{pool: pool}, nil
}

// Close releases every pooled connection
func (l *Log) Close() error {
	l.pool.Close()
	return nil
}

func (l *Log) AppendEvents(
	ctx context.Context, stream string, expect connect4.Expectation,
	evs []*connect4.Event,
) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Writers of the same stream queue up here until the first commits
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, stream,
	); err != nil {
		return fmt.Errorf("locking stream: %w", err)
	}

	var version int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM connect4_events WHERE stream = $1
	`, stream).Scan(&version); err != nil {
		return fmt.Errorf("reading stream version: %w", err)
	}
	if !expect.Check(version) {
		return connect4.NewPreconditionError(stream, expect, version)
	}

	for i, ev := range evs {
		_, err := tx.Exec(ctx, `
			INSERT INTO connect4_events (stream, sequence, type, data, recorded_at)
			VALUES ($1, $2, $3, $4, $5)
		`, stream, version+int64(i), string(ev.Type), string(ev.Data), ev.Timestamp)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return connect4.NewPreconditionError(stream, expect, version)
			}
			return fmt.Errorf("inserting event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (l *Log) GetEvents(
	ctx context.Context, stream string, fromSeq int64,
) ([]*connect4.Event, error) {
	if fromSeq < 0 {
		fromSeq = 0
	}

	rows, err := l.pool.Query(ctx, `
		SELECT sequence, type, data, recorded_at
		FROM connect4_events
		WHERE stream = $1 AND sequence >= $2
		ORDER BY sequence ASC
	`, stream, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}

	res, err := pgx.CollectRows(rows,
		func(row pgx.CollectableRow) (*connect4.Event, error) {
			var (
				ev   = &connect4.Event{Stream: stream}
				typ  string
				data []byte
			)
			if err := row.Scan(&ev.Sequence, &typ, &data, &ev.Timestamp); err != nil {
				return nil, err
			}
			ev.Type = connect4.EventType(typ)
			ev.Data = data
			return ev, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("scanning events: %w", err)
	}
	if len(res) > 0 {
		return res, nil
	}

	var exists bool
	if err := l.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM connect4_events WHERE stream = $1)
	`, stream).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking stream: %w", err)
	}
	if !exists {
		return nil, connect4.ErrStreamNotFound
	}
	return []*connect4.Event{}, nil
}

// ListStreams returns the names of every stream in the table
func (l *Log) ListStreams(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT DISTINCT stream FROM connect4_events ORDER BY stream
	`)
	if err != nil {
		return nil, fmt.Errorf("querying streams: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
