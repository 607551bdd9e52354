package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swapCore/internal/model"
)

// Store provides Postgres persistence for swap receipts and pool snapshots.
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

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS swap_receipts (
			idempotency_key text PRIMARY KEY,
			pair            text NOT NULL,
			direction       text NOT NULL,
			trader          text NOT NULL,
			amount_in       numeric NOT NULL,
			amount_out      numeric NOT NULL,
			fee_charged     numeric NOT NULL,
			new_reserve_a   numeric NOT NULL,
			new_reserve_b   numeric NOT NULL,
			settlement_ref  text NOT NULL,
			committed_at    timestamptz NOT NULL,
			created_at      timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS pools (
			pair       text PRIMARY KEY,
			asset_a    text NOT NULL,
			asset_b    text NOT NULL,
			reserve_a  numeric NOT NULL,
			reserve_b  numeric NOT NULL,
			fee_bps    integer NOT NULL,
			strategy   text NOT NULL,
			status     text NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
	`)
	return err
}

// PutReceipt stores one committed swap. Replays on the same idempotency key
// are ignored so the sink stays safe to call from retried requests.
func (s *Store) PutReceipt(ctx context.Context, receipt model.SwapReceipt) error {
	return s.InsertReceipts(ctx, []model.SwapReceipt{receipt})
}

// InsertReceipts stores a batch of committed swaps.
func (s *Store) InsertReceipts(ctx context.Context, receipts []model.SwapReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, receipt := range receipts {
		batch.Queue(`
			INSERT INTO swap_receipts (
				idempotency_key, pair, direction, trader, amount_in, amount_out,
				fee_charged, new_reserve_a, new_reserve_b, settlement_ref, committed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (idempotency_key) DO NOTHING
		`,
			receipt.IdempotencyKey,
			receipt.Pair,
			string(receipt.Direction),
			receipt.Trader,
			receipt.AmountIn.String(),
			receipt.AmountOut.String(),
			receipt.FeeCharged.String(),
			receipt.NewReserveA.String(),
			receipt.NewReserveB.String(),
			receipt.SettlementRef,
			receipt.CommittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range receipts {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPools stores current pool snapshots.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolInfo) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, info := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pair, asset_a, asset_b, reserve_a, reserve_b, fee_bps, strategy, status, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (pair)
			DO UPDATE SET
				reserve_a = EXCLUDED.reserve_a,
				reserve_b = EXCLUDED.reserve_b,
				fee_bps = EXCLUDED.fee_bps,
				strategy = EXCLUDED.strategy,
				status = EXCLUDED.status,
				updated_at = now()
		`,
			info.Pair,
			info.AssetA,
			info.AssetB,
			info.ReserveA.String(),
			info.ReserveB.String(),
			int32(info.FeeBps),
			info.Strategy,
			info.Status,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
