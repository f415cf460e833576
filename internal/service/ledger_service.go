package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/money"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
	maxRetryDelay           = time.Second
)

// Postgres error codes that mean "try the whole transaction again".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	balanceRepo ports.BalanceRepository
	txRepo      ports.TransactionRepository
	transactor  ports.DBTransactor
	maxRetries  int
	baseDelay   time.Duration
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	balanceRepo ports.BalanceRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	cfg config.LedgerConfig,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &LedgerServiceImpl{
		balanceRepo: balanceRepo,
		txRepo:      txRepo,
		transactor:  transactor,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   cfg.RetryBaseDelay,
		log:         log,
	}
}

// ApplyDelta adds delta to the account balance as one isolated
// read-modify-write. Serialization failures and deadlocks are retried with
// exponential backoff; exhaustion yields LedgerUpdateFailed. A delta in an
// asset other than the one on record is rejected with AssetMismatch.
func (s *LedgerServiceImpl) ApplyDelta(ctx context.Context, accountID string, delta *big.Int, assetCode *string, assetScale *int) (*domain.BalanceRecord, error) {
	if delta == nil {
		delta = new(big.Int)
	}

	var balance *domain.BalanceRecord
	err := s.withRetry(ctx, accountID, func() error {
		var err error
		balance, err = s.applyOnce(ctx, accountID, delta, assetCode, assetScale)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *LedgerServiceImpl) applyOnce(ctx context.Context, accountID string, delta *big.Int, assetCode *string, assetScale *int) (*domain.BalanceRecord, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, accountID, assetCode, assetScale)
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}
	if err := fillAsset(balance, assetCode, assetScale); err != nil {
		return nil, err
	}

	s.addToBalance(balance, delta)
	if err := s.balanceRepo.Update(ctx, dbTx, balance); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return balance, nil
}

// Settle folds every record the balance has not fully absorbed into one
// adjustment. Records remember the amount already applied, so a settle that
// failed after its records were written is repaired by the next one.
// Records in a foreign asset stay unapplied and are reported as skipped.
func (s *LedgerServiceImpl) Settle(ctx context.Context, accountID string) (*ports.SettleResult, error) {
	var result *ports.SettleResult
	err := s.withRetry(ctx, accountID, func() error {
		var err error
		result, err = s.settleOnce(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(result.Skipped) > 0 {
		s.log.Warn().
			Str("account_id", accountID).
			Strs("record_ids", result.Skipped).
			Msg("records in a foreign asset left out of the balance")
	}
	if len(result.Applied) > 0 {
		s.log.Debug().
			Str("account_id", accountID).
			Int("records", len(result.Applied)).
			Str("delta", result.Delta.String()).
			Msg("records settled into balance")
	}
	return result, nil
}

func (s *LedgerServiceImpl) settleOnce(ctx context.Context, accountID string) (*ports.SettleResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	result := &ports.SettleResult{Delta: new(big.Int), Applied: []string{}}

	pending, err := s.txRepo.ListUnapplied(ctx, dbTx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lock unapplied records: %w", err)
	}
	if len(pending) == 0 {
		if result.Balance, err = s.balanceRepo.Get(ctx, accountID); err != nil {
			return nil, fmt.Errorf("get balance: %w", err)
		}
		return result, nil
	}

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, accountID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}
	for i := range pending {
		rec := &pending[i]
		if fillAsset(balance, rec.AssetCode, rec.AssetScale) != nil {
			result.Skipped = append(result.Skipped, rec.ID)
			continue
		}
		result.Delta.Add(result.Delta, rec.Unapplied())
		result.Applied = append(result.Applied, rec.ID)
	}

	if len(result.Applied) > 0 {
		if err := s.txRepo.MarkApplied(ctx, dbTx, result.Applied); err != nil {
			return nil, fmt.Errorf("mark records applied: %w", err)
		}
		s.addToBalance(balance, result.Delta)
		if err := s.balanceRepo.Update(ctx, dbTx, balance); err != nil {
			return nil, fmt.Errorf("update balance: %w", err)
		}
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	result.Balance = balance
	return result, nil
}

func (s *LedgerServiceImpl) addToBalance(balance *domain.BalanceRecord, delta *big.Int) {
	balance.BalanceAtomic = money.Sum(balance.BalanceAtomic, delta)
	balance.BalanceHuman = money.ToHuman(balance.BalanceAtomic, balance.Scale(0))
	balance.UpdatedAt = time.Now().UTC()
}

// withRetry runs op until it succeeds, fails for a reason other than a
// write conflict, or runs out of attempts.
func (s *LedgerServiceImpl) withRetry(ctx context.Context, accountID string, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.LedgerRetriesTotal.Inc()
			if err := s.wait(ctx, attempt); err != nil {
				return apperror.ErrLedgerUpdateFailed(err)
			}
		}

		err := op()
		if err == nil {
			metrics.LedgerUpdatesTotal.WithLabelValues("ok").Inc()
			return nil
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			metrics.LedgerUpdatesTotal.WithLabelValues("rejected").Inc()
			return err
		}
		if !isRetryable(err) {
			metrics.LedgerUpdatesTotal.WithLabelValues("error").Inc()
			return apperror.ErrDatabaseError(err)
		}

		lastErr = err
		s.log.Debug().Err(err).
			Str("account_id", accountID).
			Int("attempt", attempt+1).
			Msg("balance update conflicted, retrying")
	}

	metrics.LedgerUpdatesTotal.WithLabelValues("exhausted").Inc()
	s.log.Error().Err(lastErr).
		Str("account_id", accountID).
		Msg("balance update retries exhausted")
	return apperror.ErrLedgerUpdateFailed(lastErr)
}

// fillAsset sets unset asset metadata on balance. An asset that differs
// from the one on record is an AssetMismatch and leaves balance untouched.
func fillAsset(balance *domain.BalanceRecord, assetCode *string, assetScale *int) error {
	if !balance.AcceptsAsset(assetCode, assetScale) {
		return apperror.ErrAssetMismatch(balance.AccountID)
	}
	if assetCode != nil && balance.AssetCode == nil {
		code := *assetCode
		balance.AssetCode = &code
	}
	if assetScale != nil && balance.AssetScale == nil {
		scale := *assetScale
		balance.AssetScale = &scale
	}
	return nil
}

func (s *LedgerServiceImpl) wait(ctx context.Context, attempt int) error {
	if s.baseDelay <= 0 {
		return ctx.Err()
	}
	d := s.baseDelay << (attempt - 1)
	if d <= 0 || d > maxRetryDelay {
		d = maxRetryDelay
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// GetBalance returns the account balance, or a zero balance when the
// account has no activity yet.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, accountID string) (*domain.BalanceRecord, error) {
	balance, err := s.balanceRepo.Get(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if balance == nil {
		return domain.ZeroBalance(accountID), nil
	}
	return balance, nil
}

// GetTransactions lists an account's records newest first.
func (s *LedgerServiceImpl) GetTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.TransactionRecord, error) {
	if params.Direction != nil && !params.Direction.Valid() {
		return nil, apperror.Validation("direction must be incoming or outgoing")
	}
	switch {
	case params.Limit <= 0:
		params.Limit = defaultTransactionLimit
	case params.Limit > maxTransactionLimit:
		params.Limit = maxTransactionLimit
	}

	records, err := s.txRepo.ListByAccount(ctx, params)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if records == nil {
		records = []domain.TransactionRecord{}
	}
	return records, nil
}
