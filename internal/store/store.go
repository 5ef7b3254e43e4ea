// Package store implements the retired-record sink: an append-only table
// of dogs that have retired, backed by a Postgres-compatible database, and
// the leaderboard query over it.
package store

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wricardo/loot-road-game/internal/model"
)

// Record is one leaderboard row.
type Record struct {
	Name       string
	Score      int
	PlayTimeMs int64
}

// Store wraps a pgx connection pool sized to the host's hardware
// concurrency, per SPEC_FULL.md §5's sizing guidance for the retired-record
// sink.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the retired-record database at dsn and ensures its
// schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	cfg.MaxConns = int32(runtime.NumCPU())

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS retired_players (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			score INTEGER NOT NULL,
			play_time_ms BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// Insert appends one retired dog's record. Satisfies session.RecordSink.
func (s *Store) Insert(ctx context.Context, rec model.RetiredRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO retired_players (id, name, score, play_time_ms) VALUES ($1, $2, $3, $4)`,
		uuid.New(), rec.Name, rec.Score, rec.PlayTimeMs,
	)
	if err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

// Leaderboard returns up to limit records starting at offset, ordered by
// descending score, then ascending play time, then ascending name.
func (s *Store) Leaderboard(ctx context.Context, offset, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, score, play_time_ms FROM retired_players
		 ORDER BY score DESC, play_time_ms ASC, name ASC
		 OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: leaderboard query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.Score, &r.PlayTimeMs); err != nil {
			return nil, fmt.Errorf("store: scan leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: leaderboard rows: %w", err)
	}
	return out, nil
}
