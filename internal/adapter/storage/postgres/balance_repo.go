package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Get fetches a balance without locking. Returns nil, nil when the account
// has no balance row yet.
func (r *BalanceRepo) Get(ctx context.Context, accountID string) (*domain.BalanceRecord, error) {
	query := `SELECT account_id, asset_code, asset_scale, balance_atomic::text, balance_human, updated_at
		FROM balances WHERE account_id = $1`

	b, err := scanBalance(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetForUpdate lazily creates the zero balance row, seeded with the supplied
// asset, and returns it under a row lock.
// This MUST be called within a transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, accountID string, assetCode *string, assetScale *int) (*domain.BalanceRecord, error) {
	insert := `INSERT INTO balances (account_id, asset_code, asset_scale, balance_atomic, balance_human, updated_at)
		VALUES ($1, $2, $3, 0, '0', NOW())
		ON CONFLICT (account_id) DO NOTHING`
	if _, err := tx.Exec(ctx, insert, accountID, assetCode, assetScale); err != nil {
		return nil, fmt.Errorf("ensure balance row: %w", err)
	}

	query := `SELECT account_id, asset_code, asset_scale, balance_atomic::text, balance_human, updated_at
		FROM balances WHERE account_id = $1 FOR UPDATE`

	b, err := scanBalance(tx.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Update writes a balance within a transaction.
func (r *BalanceRepo) Update(ctx context.Context, tx pgx.Tx, b *domain.BalanceRecord) error {
	query := `UPDATE balances
		SET asset_code = $2, asset_scale = $3, balance_atomic = $4::numeric, balance_human = $5, updated_at = $6
		WHERE account_id = $1`

	tag, err := tx.Exec(ctx, query,
		b.AccountID, b.AssetCode, b.AssetScale, numericText(b.BalanceAtomic), b.BalanceHuman, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("balance not found: %s", b.AccountID)
	}
	return nil
}

func scanBalance(row pgx.Row) (*domain.BalanceRecord, error) {
	var (
		b      domain.BalanceRecord
		atomic *string
	)
	if err := row.Scan(&b.AccountID, &b.AssetCode, &b.AssetScale, &atomic, &b.BalanceHuman, &b.UpdatedAt); err != nil {
		return nil, err
	}
	v, err := parseNumeric(atomic)
	if err != nil {
		return nil, err
	}
	b.BalanceAtomic = v
	return &b, nil
}
