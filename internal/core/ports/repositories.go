package ports

import (
	"context"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository persists transaction records.
type TransactionRepository interface {
	// UpsertBatch merges all records inside tx and returns the ids of the
	// accounts that own them, sorted.
	UpsertBatch(ctx context.Context, tx pgx.Tx, records []*domain.TransactionRecord) ([]string, error)
	// ListUnapplied locks and returns the account's records whose signed
	// amount is not yet fully reflected in its balance.
	ListUnapplied(ctx context.Context, tx pgx.Tx, accountID string) ([]domain.TransactionRecord, error)
	// MarkApplied records that the full signed amount of each id is now in
	// the balance.
	MarkApplied(ctx context.Context, tx pgx.Tx, ids []string) error
	GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error)
	ListByAccount(ctx context.Context, params TransactionListParams) ([]domain.TransactionRecord, error)
}

// TransactionListParams filters an account's records, newest first.
type TransactionListParams struct {
	AccountID string
	Direction *domain.Direction
	Limit     int
}

// BalanceRepository persists balance records.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type BalanceRepository interface {
	Get(ctx context.Context, accountID string) (*domain.BalanceRecord, error)
	// GetForUpdate creates the zero row when missing and returns it locked.
	GetForUpdate(ctx context.Context, tx pgx.Tx, accountID string, assetCode *string, assetScale *int) (*domain.BalanceRecord, error)
	Update(ctx context.Context, tx pgx.Tx, balance *domain.BalanceRecord) error
}

// GrantStateRepository persists grant flow state.
type GrantStateRepository interface {
	Create(ctx context.Context, grant *domain.GrantState) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GrantState, error)
	// Transition applies t only if the stored stage still equals t.From and
	// the grant is not terminal. It reports whether the row changed.
	Transition(ctx context.Context, t domain.GrantTransition) (bool, error)
	// ListStalled returns pending grants sitting in stage since before
	// cutoff, oldest first.
	ListStalled(ctx context.Context, stage domain.GrantStage, cutoff time.Time, limit int) ([]domain.GrantState, error)
}

// AccountDirectory resolves accounts. This service never writes to it.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// ListWithWallet pages through accounts that have network credentials.
	ListWithWallet(ctx context.Context, afterID string, limit int) ([]domain.Account, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
