package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Transaction records ---

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct{ s *Store }

// NewTransactionRepo creates a TransactionRepo over s.
func NewTransactionRepo(s *Store) *TransactionRepo { return &TransactionRepo{s: s} }

// UpsertBatch stages merged records in tx and returns the owners touched.
func (r *TransactionRepo) UpsertBatch(ctx context.Context, tx pgx.Tx, records []*domain.TransactionRecord) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	touched := make(map[string]struct{}, 2)
	for _, rec := range records {
		next := *rec
		next.AmountAtomic = cloneInt(rec.AmountAtomic)
		next.AppliedAtomic = nil

		merged := &next
		if stored := t.record(next.ID); stored != nil {
			merged = stored.Merge(&next)
			merged.AccountID, merged.Direction = stored.AccountID, stored.Direction
		}
		if merged.Raw == nil {
			merged.Raw = []byte(`{}`)
		}
		t.records[next.ID] = merged
		touched[merged.AccountID] = struct{}{}
	}

	owners := make([]string, 0, len(touched))
	for acct := range touched {
		owners = append(owners, acct)
	}
	sort.Strings(owners)
	return owners, nil
}

// ListUnapplied returns copies of the account's records, committed or staged
// in tx, whose signed amount is not fully applied. Ordered by id.
func (r *TransactionRepo) ListUnapplied(ctx context.Context, tx pgx.Tx, accountID string) ([]domain.TransactionRecord, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{})
	for id := range t.records {
		ids[id] = struct{}{}
	}
	r.s.mu.RLock()
	for id := range r.s.records {
		ids[id] = struct{}{}
	}
	r.s.mu.RUnlock()

	out := make([]domain.TransactionRecord, 0)
	for id := range ids {
		rec := t.record(id)
		if rec.AccountID != accountID || rec.AmountAtomic == nil || rec.Unapplied().Sign() == 0 {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MarkApplied stages each record with its full signed amount applied.
func (r *TransactionRepo) MarkApplied(ctx context.Context, tx pgx.Tx, ids []string) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		rec := t.record(id)
		if rec == nil || rec.AmountAtomic == nil {
			continue
		}
		cp := cloneRecord(rec)
		cp.AppliedAtomic = rec.SignedAmount()
		t.records[id] = &cp
	}
	return nil
}

// GetByID returns a copy of the committed record, or nil.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.TransactionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.records[id]
	if !ok {
		return nil, nil
	}
	cp := cloneRecord(rec)
	return &cp, nil
}

// ListByAccount returns committed records, newest first.
func (r *TransactionRepo) ListByAccount(ctx context.Context, params ports.TransactionListParams) ([]domain.TransactionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.TransactionRecord, 0)
	for _, rec := range r.s.records {
		if rec.AccountID != params.AccountID {
			continue
		}
		if params.Direction != nil && rec.Direction != *params.Direction {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

// --- Balances ---

// BalanceRepo implements ports.BalanceRepository.
type BalanceRepo struct{ s *Store }

// NewBalanceRepo creates a BalanceRepo over s.
func NewBalanceRepo(s *Store) *BalanceRepo { return &BalanceRepo{s: s} }

// Get returns the committed balance or nil.
func (r *BalanceRepo) Get(ctx context.Context, accountID string) (*domain.BalanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.balances[accountID]
	if !ok {
		return nil, nil
	}
	return cloneBalance(b), nil
}

// GetForUpdate stages a zero row when missing and returns the current one.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, accountID string, assetCode *string, assetScale *int) (*domain.BalanceRecord, error) {
	t, err := txFrom(tx)
	if err != nil {
		return nil, err
	}
	b := t.balance(accountID)
	if b == nil {
		b = domain.ZeroBalance(accountID)
		b.AssetCode, b.AssetScale = assetCode, assetScale
		b.UpdatedAt = time.Now().UTC()
		t.balances[accountID] = b
	}
	return cloneBalance(b), nil
}

// Update stages b in tx.
func (r *BalanceRepo) Update(ctx context.Context, tx pgx.Tx, b *domain.BalanceRecord) error {
	t, err := txFrom(tx)
	if err != nil {
		return err
	}
	if t.balance(b.AccountID) == nil {
		return fmt.Errorf("balance not found: %s", b.AccountID)
	}
	t.balances[b.AccountID] = cloneBalance(b)
	return nil
}

// --- Grant states ---

// GrantRepo implements ports.GrantStateRepository.
type GrantRepo struct{ s *Store }

// NewGrantRepo creates a GrantRepo over s.
func NewGrantRepo(s *Store) *GrantRepo { return &GrantRepo{s: s} }

// Create inserts g; ids must be unique.
func (r *GrantRepo) Create(ctx context.Context, g *domain.GrantState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.grants[g.ID]; ok {
		return fmt.Errorf("grant state already exists: %s", g.ID)
	}
	cp := *g
	r.s.grants[g.ID] = &cp
	return nil
}

// GetByID returns a copy of the grant state, or nil.
func (r *GrantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GrantState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.grants[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

// Transition is the compare-and-set on stage for pending grants.
func (r *GrantRepo) Transition(ctx context.Context, t domain.GrantTransition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.grants[t.ID]
	if !ok || g.Stage != t.From || g.Status != domain.GrantStatusPending {
		return false, nil
	}
	t.Apply(g, time.Now().UTC())
	return true, nil
}

// ListStalled returns pending grants in stage last updated before cutoff,
// oldest first.
func (r *GrantRepo) ListStalled(ctx context.Context, stage domain.GrantStage, cutoff time.Time, limit int) ([]domain.GrantState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.GrantState, 0)
	for _, g := range r.s.grants {
		if g.Status == domain.GrantStatusPending && g.Stage == stage && g.UpdatedAt.Before(cutoff) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Accounts ---

// AccountDirectory implements ports.AccountDirectory.
type AccountDirectory struct{ s *Store }

// NewAccountDirectory creates an AccountDirectory over s.
func NewAccountDirectory(s *Store) *AccountDirectory { return &AccountDirectory{s: s} }

// GetByID returns a copy of the account, or nil.
func (d *AccountDirectory) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	a, ok := d.s.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// ListWithWallet pages accounts with credentials in id order.
func (d *AccountDirectory) ListWithWallet(ctx context.Context, afterID string, limit int) ([]domain.Account, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	out := make([]domain.Account, 0)
	for _, a := range d.s.accounts {
		if a.HasWallet() && a.ID > afterID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
