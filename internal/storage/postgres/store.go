package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dexRelay/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS swaps (
	id UUID PRIMARY KEY,
	chain_id BIGINT NOT NULL,
	token_in TEXT NOT NULL,
	token_out TEXT NOT NULL,
	amount_in NUMERIC NOT NULL,
	allowed_slippage TEXT NOT NULL DEFAULT '',
	recipient TEXT NOT NULL DEFAULT '',
	tx_hash TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (chain_id, tx_hash)
);
CREATE INDEX IF NOT EXISTS swaps_chain_submitted_idx ON swaps (chain_id, submitted_at DESC);
`

const listSwapsSQL = `
	SELECT id::text, chain_id, token_in, token_out, amount_in::text, allowed_slippage, recipient, tx_hash, submitted_at
	FROM swaps
	WHERE ($1::bigint = 0 OR chain_id = $1::bigint)
	ORDER BY submitted_at DESC
	LIMIT $2
`

const defaultListLimit = 20

// Store provides Postgres persistence for the swap journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the swaps table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutSwap inserts a swap record. A record already stored for the same chain
// and transaction hash is left untouched.
func (s *Store) PutSwap(ctx context.Context, record model.SwapRecord) error {
	submittedAt, err := time.Parse(time.RFC3339Nano, record.SubmittedAt)
	if err != nil {
		return fmt.Errorf("parse submitted_at: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO swaps (
			id, chain_id, token_in, token_out, amount_in, allowed_slippage, recipient, tx_hash, submitted_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
		ON CONFLICT (chain_id, tx_hash) DO NOTHING
	`,
		record.ID,
		int64(record.ChainID),
		record.TokenIn,
		record.TokenOut,
		record.AmountIn,
		record.AllowedSlippage,
		record.Recipient,
		record.TxHash,
		submittedAt,
	)
	return err
}

// ListSwaps returns the most recent swaps, newest first. chainID 0 lists
// every chain.
func (s *Store) ListSwaps(ctx context.Context, chainID uint64, limit int) ([]model.SwapRecord, error) {
	query, args := listSwapsQuery(chainID, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SwapRecord, error) {
		var (
			record      model.SwapRecord
			chain       int64
			submittedAt time.Time
		)
		if err := row.Scan(
			&record.ID,
			&chain,
			&record.TokenIn,
			&record.TokenOut,
			&record.AmountIn,
			&record.AllowedSlippage,
			&record.Recipient,
			&record.TxHash,
			&submittedAt,
		); err != nil {
			return model.SwapRecord{}, err
		}
		record.ChainID = uint64(chain)
		record.SubmittedAt = submittedAt.UTC().Format(time.RFC3339Nano)
		return record, nil
	})
}

func listSwapsQuery(chainID uint64, limit int) (string, []interface{}) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return listSwapsSQL, []interface{}{int64(chainID), limit}
}
