package regression

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS query_runs (
	id          BIGSERIAL PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	documents   INTEGER NOT NULL,
	results     JSONB NOT NULL
)`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists runs in PostgreSQL.
type Store struct {
	client *postgres.Client
	logger *slog.Logger
}

func NewStore(client *postgres.Client) *Store {
	return &Store{
		client: client,
		logger: slog.Default().With("component", "regression-store"),
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating query_runs: %w", err)
	}
	return nil
}

// Record saves cur and returns its diff against the previous run. The read
// and the insert share one transaction holding a table lock, so concurrent
// recorders each diff against the run committed just before theirs.
func (s *Store) Record(ctx context.Context, cur *Run) ([]QueryDiff, error) {
	var prev *Run
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE query_runs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("locking query_runs: %w", err)
		}
		var err error
		if prev, err = latest(ctx, tx); err != nil {
			return err
		}
		return save(ctx, tx, cur)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("query run recorded", "run_id", cur.ID, "queries", len(cur.Queries), "has_previous", prev != nil)
	return Diff(prev, cur), nil
}

// save inserts run and sets its ID.
func save(ctx context.Context, q querier, run *Run) error {
	payload, err := json.Marshal(run.Queries)
	if err != nil {
		return fmt.Errorf("encoding run: %w", err)
	}
	err = q.QueryRowContext(ctx,
		`INSERT INTO query_runs (started_at, documents, results) VALUES ($1, $2, $3) RETURNING id`,
		run.StartedAt, run.Documents, payload,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// latest returns the most recent run, or nil when none was recorded.
func latest(ctx context.Context, q querier) (*Run, error) {
	var (
		run     Run
		payload []byte
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, started_at, documents, results FROM query_runs ORDER BY id DESC LIMIT 1`,
	).Scan(&run.ID, &run.StartedAt, &run.Documents, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting latest run: %w", err)
	}
	if err := json.Unmarshal(payload, &run.Queries); err != nil {
		return nil, fmt.Errorf("decoding run %d: %w", run.ID, err)
	}
	return &run, nil
}
