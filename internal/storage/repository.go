package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sergo9723/footbal-plan-bot/internal/state"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const createResultsSQL = `CREATE TABLE IF NOT EXISTS signal_results (
    bet_id      TEXT PRIMARY KEY,
    placed_at   TEXT NOT NULL,
    fixture_id  BIGINT NOT NULL,
    league      TEXT NOT NULL,
    country     TEXT NOT NULL,
    home        TEXT NOT NULL,
    away        TEXT NOT NULL,
    minute      INT NOT NULL,
    score       TEXT NOT NULL,
    bet_type    TEXT NOT NULL,
    line        NUMERIC(4,1) NOT NULL,
    notes       TEXT NOT NULL,
    result      TEXT NOT NULL,
    settled_at  TIMESTAMPTZ NOT NULL
)`

const insertResultSQL = `INSERT INTO signal_results (
    bet_id, placed_at, fixture_id, league, country,
    home, away, minute, score, bet_type, line, notes, result, settled_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (bet_id) DO NOTHING`

// ResultStore is the mirror dependency seen by the settlement loop.
type ResultStore interface {
	InsertResult(ctx context.Context, rec state.ResultRecord, settledAt time.Time) error
}

// Store wraps the pgx pool with the results schema.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore builds a Store around an initialised pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the results table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return ErrNotConfigured
	}
	if _, err := s.pool.Exec(ctx, createResultsSQL); err != nil {
		return fmt.Errorf("ensure signal_results schema: %w", err)
	}
	return nil
}

// InsertResult mirrors one settled bet. Re-inserting the same bet id is a
// no-op, which keeps settlement retries idempotent on this side.
func (s *Store) InsertResult(ctx context.Context, rec state.ResultRecord, settledAt time.Time) error {
	if s.pool == nil {
		return ErrNotConfigured
	}

	_, err := s.pool.Exec(ctx, insertResultSQL,
		rec.BetID,
		rec.Time,
		rec.FixtureID,
		rec.League,
		rec.Country,
		rec.Home,
		rec.Away,
		rec.Minute,
		rec.Score,
		string(rec.BetType),
		rec.Line,
		rec.Notes,
		string(rec.Result),
		settledAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert signal result: %w", err)
	}
	return nil
}

var _ ResultStore = (*Store)(nil)
