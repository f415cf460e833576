package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountDirectory over the shared accounts table.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT id, parent_id, account_type, wallet_address_url, key_id, private_key_enc
		FROM accounts WHERE id = $1`

	a := &domain.Account{}
	var accountType string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.ParentID, &accountType, &a.WalletAddressURL, &a.KeyID, &a.PrivateKeyEnc,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	a.Type = domain.AccountType(accountType)
	return a, nil
}

// ListWithWallet returns up to limit accounts with credentials, ordered by
// id and starting after afterID.
func (r *AccountRepo) ListWithWallet(ctx context.Context, afterID string, limit int) ([]domain.Account, error) {
	query := `SELECT id, parent_id, account_type, wallet_address_url, key_id, private_key_enc
		FROM accounts
		WHERE wallet_address_url <> '' AND key_id <> '' AND private_key_enc <> '' AND id > $1
		ORDER BY id LIMIT $2`

	rows, err := r.pool.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts with wallet: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var a domain.Account
		var accountType string
		if err := rows.Scan(&a.ID, &a.ParentID, &accountType, &a.WalletAddressURL, &a.KeyID, &a.PrivateKeyEnc); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = domain.AccountType(accountType)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
