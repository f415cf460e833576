// Package memory is an in-process storage adapter with the same contracts as
// the Postgres repositories. Transactions are serialized, which stands in for
// row locks, and their writes are staged until Commit.
package memory

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNoTx is returned when a tx-scoped method is called without a memory Tx.
var ErrNoTx = errors.New("memory: not inside a memory transaction")

// Store holds every table of the adapter.
type Store struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	accounts map[string]*domain.Account
	records  map[string]*domain.TransactionRecord
	balances map[string]*domain.BalanceRecord
	grants   map[uuid.UUID]*domain.GrantState

	failMu      sync.Mutex
	commitFails []error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		records:  make(map[string]*domain.TransactionRecord),
		balances: make(map[string]*domain.BalanceRecord),
		grants:   make(map[uuid.UUID]*domain.GrantState),
	}
}

// PutAccount registers a directory account.
func (s *Store) PutAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := a
	s.accounts[a.ID] = &cp
}

// FailCommits makes the next len(errs) commits fail with the given errors,
// in order. A failed commit discards the staged writes.
func (s *Store) FailCommits(errs ...error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.commitFails = append(s.commitFails, errs...)
}

func (s *Store) nextCommitFailure() error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if len(s.commitFails) == 0 {
		return nil
	}
	err := s.commitFails[0]
	s.commitFails = s.commitFails[1:]
	return err
}

// Begin starts a transaction. It blocks while another transaction is open.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	if err := ctx.Err(); err != nil {
		s.txMu.Unlock()
		return nil, err
	}
	return &Tx{
		store:    s,
		records:  make(map[string]*domain.TransactionRecord),
		balances: make(map[string]*domain.BalanceRecord),
	}, nil
}

// Tx is a staged unit of work. Only Commit, Rollback and Begin are
// implemented; the remaining pgx.Tx methods are not used by the repositories.
type Tx struct {
	pgx.Tx

	store    *Store
	done     bool
	records  map[string]*domain.TransactionRecord
	balances map[string]*domain.BalanceRecord
}

// Begin returns the same transaction; savepoints are not modeled.
func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

// Commit publishes the staged writes and releases the store.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	defer t.store.txMu.Unlock()

	if err := t.store.nextCommitFailure(); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for id, rec := range t.records {
		t.store.records[id] = rec
	}
	for id, b := range t.balances {
		t.store.balances[id] = b
	}
	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func txFrom(tx pgx.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil || t.done {
		return nil, ErrNoTx
	}
	return t, nil
}

func (t *Tx) record(id string) *domain.TransactionRecord {
	if r, ok := t.records[id]; ok {
		return r
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.records[id]
}

func (t *Tx) balance(accountID string) *domain.BalanceRecord {
	if b, ok := t.balances[accountID]; ok {
		return b
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.balances[accountID]
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func cloneRecord(r *domain.TransactionRecord) domain.TransactionRecord {
	cp := *r
	cp.AmountAtomic = cloneInt(r.AmountAtomic)
	cp.AppliedAtomic = cloneInt(r.AppliedAtomic)
	return cp
}

func cloneBalance(b *domain.BalanceRecord) *domain.BalanceRecord {
	cp := *b
	cp.BalanceAtomic = cloneInt(b.BalanceAtomic)
	return &cp
}
