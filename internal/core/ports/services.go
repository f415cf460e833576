package ports

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID string
}

// IdempotencyCache is the Redis-layer replay cache for transfer requests.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReplayGuard remembers one-shot tokens such as interaction references.
type ReplayGuard interface {
	// Claim records key and reports whether it was unseen.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock held by another owner")

// Locker provides short-lived distributed mutual exclusion.
type Locker interface {
	// TryLock acquires key without waiting. It returns ErrLockHeld when the
	// lock is taken. The returned func releases it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService owns balance arithmetic and ledger reads.
type LedgerService interface {
	ApplyDelta(ctx context.Context, accountID string, delta *big.Int, assetCode *string, assetScale *int) (*domain.BalanceRecord, error)
	// Settle applies whatever the account's records still owe its balance.
	Settle(ctx context.Context, accountID string) (*SettleResult, error)
	GetBalance(ctx context.Context, accountID string) (*domain.BalanceRecord, error)
	GetTransactions(ctx context.Context, params TransactionListParams) ([]domain.TransactionRecord, error)
}

// RecordStore writes transaction records and feeds their deltas to the ledger.
type RecordStore interface {
	Persist(ctx context.Context, accountID string, items []domain.RemotePayment, direction domain.Direction) (*PersistResult, error)
	RecordLocalTransfer(ctx context.Context, req LocalTransferRequest) (*LocalTransferResult, error)
}

// SettleResult is the outcome of one Settle. Balance is nil when the
// account has no balance row and nothing was applied.
type SettleResult struct {
	Balance *domain.BalanceRecord
	Delta   *big.Int
	Applied []string
	// Skipped records carry an asset the balance is not kept in.
	Skipped []string
}

// PersistResult summarizes one persisted batch.
type PersistResult struct {
	RecordIDs []string
	Delta     *big.Int
	Balance   *domain.BalanceRecord
}

// LocalTransferRequest moves value between two accounts without the network.
type LocalTransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        string
	AssetCode     string
	AssetScale    int
	Description   string
	Reference     string
	// IdempotencyKey, when set, makes a retried request replay the first result.
	IdempotencyKey string
}

// LocalTransferResult holds both record ids and both resulting balances.
type LocalTransferResult struct {
	CorrelationID    string                `json:"correlation_id"`
	OutgoingRecordID string                `json:"outgoing_record_id"`
	IncomingRecordID string                `json:"incoming_record_id"`
	AmountAtomic     *big.Int              `json:"amount_atomic"`
	FromBalance      *domain.BalanceRecord `json:"from_balance"`
	ToBalance        *domain.BalanceRecord `json:"to_balance"`
}

// GrantOrchestrator drives interactive Open Payments transfers.
type GrantOrchestrator interface {
	CreateGrantFlow(ctx context.Context, req GrantFlowRequest) (*domain.GrantState, error)
	CompletePendingTransaction(ctx context.Context, grantID uuid.UUID, interactRef string) (*domain.GrantState, error)
	FinishInteraction(ctx context.Context, grantID uuid.UUID, interactRef, hash string) (*domain.GrantState, error)
	// RejectInteraction fails a grant the account holder declined.
	RejectInteraction(ctx context.Context, grantID uuid.UUID, reason string) (*domain.GrantState, error)
	GetGrantState(ctx context.Context, grantID uuid.UUID) (*domain.GrantState, error)
}

// GrantRecoverer resolves grant flows that stopped between continuation and
// payment creation.
type GrantRecoverer interface {
	RecoverStalled(ctx context.Context) (int, error)
}

// GrantFlowRequest starts a network transfer.
type GrantFlowRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        string
	Description   string
}

// SyncService reconciles an account against the payment network.
type SyncService interface {
	SyncAccount(ctx context.Context, accountID string) (*domain.SyncResult, error)
}
