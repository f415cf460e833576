package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// RecordStoreImpl implements ports.RecordStore.
type RecordStoreImpl struct {
	txRepo     ports.TransactionRepository
	ledger     ports.LedgerService
	transactor ports.DBTransactor
	idempCache ports.IdempotencyCache
	log        zerolog.Logger
}

// NewRecordStore creates a new RecordStoreImpl. idempCache may be nil, in
// which case idempotency keys are ignored.
func NewRecordStore(
	txRepo ports.TransactionRepository,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	idempCache ports.IdempotencyCache,
	log zerolog.Logger,
) *RecordStoreImpl {
	return &RecordStoreImpl{
		txRepo:     txRepo,
		ledger:     ledger,
		transactor: transactor,
		idempCache: idempCache,
		log:        log,
	}
}

// RecordID derives the storage id for a remote payment. Ids that are safe to
// use as keys are kept verbatim; URLs are hashed.
func RecordID(direction domain.Direction, remoteID string) string {
	switch {
	case remoteID == "":
		return string(direction) + "_" + uuid.NewString()
	case strings.Contains(remoteID, "/"):
		sum := sha256.Sum256([]byte(remoteID))
		return string(direction) + "_" + hex.EncodeToString(sum[:])
	default:
		return remoteID
	}
}

// Persist upserts remote payments observed for accountID as one batch, then
// settles the owning balances. Re-persisting unchanged payments moves
// nothing, and a balance left behind by an earlier failed settle catches up.
func (s *RecordStoreImpl) Persist(ctx context.Context, accountID string, items []domain.RemotePayment, direction domain.Direction) (*ports.PersistResult, error) {
	if !direction.Valid() {
		return nil, apperror.Validation("direction must be incoming or outgoing")
	}
	result := &ports.PersistResult{RecordIDs: []string{}, Delta: new(big.Int)}
	if len(items) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	byID := make(map[string]*domain.TransactionRecord, len(items))
	order := make([]string, 0, len(items))
	for i := range items {
		rec := s.toRecord(accountID, &items[i], direction, now)
		if _, seen := byID[rec.ID]; !seen {
			order = append(order, rec.ID)
		}
		byID[rec.ID] = rec
	}
	records := make([]*domain.TransactionRecord, 0, len(order))
	for _, id := range order {
		records = append(records, byID[id])
	}

	if err := s.checkAssets(ctx, accountID, records); err != nil {
		return nil, err
	}
	owners, err := s.writeBatch(ctx, records)
	if err != nil {
		return nil, err
	}
	metrics.RecordsPersistedTotal.WithLabelValues(string(direction)).Add(float64(len(records)))

	result.RecordIDs = order
	for _, acct := range owners {
		settled, err := s.ledger.Settle(ctx, acct)
		if err != nil {
			return nil, err
		}
		if acct == accountID {
			result.Delta = settled.Delta
			result.Balance = settled.Balance
		}
	}

	s.log.Info().
		Str("account_id", accountID).
		Str("direction", string(direction)).
		Int("records", len(records)).
		Str("delta", result.Delta.String()).
		Msg("transaction records persisted")

	return result, nil
}

// checkAssets rejects a batch whose amounts do not all share the asset of
// the account balance, or of the first priced record when the balance has
// none yet.
func (s *RecordStoreImpl) checkAssets(ctx context.Context, accountID string, records []*domain.TransactionRecord) error {
	balance, err := s.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return err
	}
	expected := *balance
	for _, rec := range records {
		if rec.AmountAtomic == nil {
			continue
		}
		if err := fillAsset(&expected, rec.AssetCode, rec.AssetScale); err != nil {
			s.log.Warn().
				Str("account_id", accountID).
				Str("record_id", rec.ID).
				Msg("payment asset differs from the balance asset, batch rejected")
			return err
		}
	}
	return nil
}

func (s *RecordStoreImpl) toRecord(accountID string, p *domain.RemotePayment, direction domain.Direction, now time.Time) *domain.TransactionRecord {
	rec := &domain.TransactionRecord{
		ID:        RecordID(direction, p.ID),
		AccountID: accountID,
		Direction: direction,
		Status:    p.ResolveStatus(direction),
		Raw:       p.Raw,
		UpdatedAt: now,
	}
	if p.ID != "" {
		remoteID := p.ID
		rec.RemoteID = &remoteID
	}
	if len(rec.Raw) == 0 {
		if raw, err := json.Marshal(p); err == nil {
			rec.Raw = raw
		}
	}

	amount, err := p.Resolve(direction)
	if err != nil {
		ev := s.log.Warn().Err(err).Str("account_id", accountID).Str("remote_id", p.ID)
		if errors.Is(err, domain.ErrNoAmount) {
			ev.Msg("payment carries no amount, stored without one")
		} else {
			ev.Msg("malformed payment amount, stored without one")
		}
		return rec
	}
	rec.AmountAtomic = amount.Atomic
	if amount.AssetCode != "" {
		code := amount.AssetCode
		rec.AssetCode = &code
	}
	scale := amount.AssetScale
	rec.AssetScale = &scale
	return rec
}

func (s *RecordStoreImpl) writeBatch(ctx context.Context, records []*domain.TransactionRecord) ([]string, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	owners, err := s.txRepo.UpsertBatch(ctx, dbTx, records)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("upsert records: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return owners, nil
}

// RecordLocalTransfer moves value between two accounts inside the ledger.
// Both records are written as one batch; the two balances are settled
// afterwards and independently. If a settle fails the records stay
// unapplied until the account is settled again.
func (s *RecordStoreImpl) RecordLocalTransfer(ctx context.Context, req ports.LocalTransferRequest) (*ports.LocalTransferResult, error) {
	if req.FromAccountID == "" || req.ToAccountID == "" {
		return nil, apperror.Validation("both accounts are required")
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, apperror.Validation("cannot transfer to the same account")
	}
	atomic, err := money.ToAtomic(req.Amount, req.AssetScale)
	if err != nil {
		return nil, apperror.ErrInvalidAmountCause(err)
	}
	if atomic.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	idempKey := ""
	if s.idempCache != nil && req.IdempotencyKey != "" {
		idempKey = req.FromAccountID + ":" + req.IdempotencyKey
		if cached := s.cachedTransfer(ctx, idempKey); cached != nil {
			return cached, nil
		}
	}

	var code *string
	if req.AssetCode != "" {
		code = &req.AssetCode
	}
	for _, acct := range []string{req.FromAccountID, req.ToAccountID} {
		balance, err := s.ledger.GetBalance(ctx, acct)
		if err != nil {
			return nil, err
		}
		if !balance.AcceptsAsset(code, &req.AssetScale) {
			return nil, apperror.ErrAssetMismatch(acct)
		}
	}

	correlationID := "local_" + uuid.NewString()
	now := time.Now().UTC()
	raw, err := json.Marshal(map[string]any{
		"from":        req.FromAccountID,
		"to":          req.ToAccountID,
		"amount":      req.Amount,
		"assetCode":   req.AssetCode,
		"assetScale":  req.AssetScale,
		"description": req.Description,
		"reference":   req.Reference,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal transfer: %w", err))
	}

	newRecord := func(id, accountID string, direction domain.Direction) *domain.TransactionRecord {
		code, scale, corr := req.AssetCode, req.AssetScale, correlationID
		rec := &domain.TransactionRecord{
			ID:            id,
			AccountID:     accountID,
			Direction:     direction,
			CorrelationID: &corr,
			Status:        domain.TransactionStatusCompleted,
			AmountAtomic:  new(big.Int).Set(atomic),
			AssetScale:    &scale,
			Raw:           raw,
			UpdatedAt:     now,
		}
		if code != "" {
			rec.AssetCode = &code
		}
		return rec
	}
	out := newRecord(correlationID+"_out", req.FromAccountID, domain.DirectionOutgoing)
	in := newRecord(correlationID+"_in", req.ToAccountID, domain.DirectionIncoming)

	if _, err := s.writeBatch(ctx, []*domain.TransactionRecord{out, in}); err != nil {
		return nil, err
	}
	metrics.RecordsPersistedTotal.WithLabelValues("local").Add(2)

	result := &ports.LocalTransferResult{
		CorrelationID:    correlationID,
		OutgoingRecordID: out.ID,
		IncomingRecordID: in.ID,
		AmountAtomic:     atomic,
	}

	if result.FromBalance, err = s.settleTransferSide(ctx, req.FromAccountID, out.ID, correlationID); err != nil {
		return nil, err
	}
	if result.ToBalance, err = s.settleTransferSide(ctx, req.ToAccountID, in.ID, correlationID); err != nil {
		return nil, err
	}

	if idempKey != "" {
		if body, err := json.Marshal(result); err == nil {
			if err := s.idempCache.Set(ctx, idempKey, body, idempotencyTTL); err != nil {
				s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
			}
		}
	}

	s.log.Info().
		Str("correlation_id", correlationID).
		Str("from", req.FromAccountID).
		Str("to", req.ToAccountID).
		Str("amount", atomic.String()).
		Msg("local transfer recorded")

	return result, nil
}

func (s *RecordStoreImpl) settleTransferSide(ctx context.Context, accountID, recordID, correlationID string) (*domain.BalanceRecord, error) {
	settled, err := s.ledger.Settle(ctx, accountID)
	if err != nil {
		s.log.Error().Err(err).
			Str("correlation_id", correlationID).
			Str("account_id", accountID).
			Msg("balance not settled, records kept for reconciliation")
		return nil, err
	}
	for _, id := range settled.Skipped {
		if id == recordID {
			return nil, apperror.ErrAssetMismatch(accountID)
		}
	}
	return settled.Balance, nil
}

func (s *RecordStoreImpl) cachedTransfer(ctx context.Context, key string) *ports.LocalTransferResult {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, processing request")
		return nil
	}
	if cached == nil {
		return nil
	}
	var result ports.LocalTransferResult
	if err := json.Unmarshal(cached, &result); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable idempotency entry")
		return nil
	}
	return &result
}
