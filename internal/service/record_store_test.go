package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/storage/memory"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports/mocks"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordStoreFixture struct {
	store   *memory.Store
	ledger  *LedgerServiceImpl
	records *RecordStoreImpl
	txRepo  *memory.TransactionRepo
}

func newRecordStoreFixture(t *testing.T, cache ports.IdempotencyCache) *recordStoreFixture {
	t.Helper()
	store, ledger := newMemoryLedger(t)
	txRepo := memory.NewTransactionRepo(store)
	return &recordStoreFixture{
		store:   store,
		ledger:  ledger,
		records: NewRecordStore(txRepo, ledger, store, cache, zerolog.Nop()),
		txRepo:  txRepo,
	}
}

func remotePayment(t *testing.T, payload string) domain.RemotePayment {
	t.Helper()
	var p domain.RemotePayment
	require.NoError(t, json.Unmarshal([]byte(payload), &p))
	return p
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "abc-123", RecordID(domain.DirectionIncoming, "abc-123"))

	hashed := RecordID(domain.DirectionOutgoing, "https://rs.example/outgoing-payments/1")
	assert.True(t, strings.HasPrefix(hashed, "outgoing_"))
	assert.Len(t, hashed, len("outgoing_")+64)
	assert.Equal(t, hashed, RecordID(domain.DirectionOutgoing, "https://rs.example/outgoing-payments/1"))

	a, b := RecordID(domain.DirectionIncoming, ""), RecordID(domain.DirectionIncoming, "")
	assert.True(t, strings.HasPrefix(a, "incoming_"))
	assert.NotEqual(t, a, b)
}

func TestRecordStore_Persist_AppliesDelta(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"https://rs/incoming-payments/1","completed":true,"receivedAmount":{"value":"700","assetCode":"USD","assetScale":2}}`),
		remotePayment(t, `{"id":"https://rs/incoming-payments/2","incomingAmount":{"value":"300","assetCode":"USD","assetScale":2}}`),
	}

	res, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	require.NoError(t, err)
	assert.Len(t, res.RecordIDs, 2)
	assert.Equal(t, "1000", res.Delta.String())
	require.NotNil(t, res.Balance)
	assert.Equal(t, "10.00", res.Balance.BalanceHuman)

	rec, err := f.txRepo.GetByID(context.Background(), res.RecordIDs[1])
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, rec.Status)
	assert.Equal(t, "https://rs/incoming-payments/2", *rec.RemoteID)
}

func TestRecordStore_Persist_ResyncIsIdempotent(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"op-1","debitAmount":{"value":"250","assetCode":"USD","assetScale":2}}`),
	}

	_, err := f.records.Persist(context.Background(), "mom", items, domain.DirectionOutgoing)
	require.NoError(t, err)
	res, err := f.records.Persist(context.Background(), "mom", items, domain.DirectionOutgoing)
	require.NoError(t, err)
	assert.Equal(t, "0", res.Delta.String())

	b, err := f.ledger.GetBalance(context.Background(), "mom")
	require.NoError(t, err)
	assert.Equal(t, "-250", b.BalanceAtomic.String())
}

func TestRecordStore_Persist_DuplicateIDsCollapse(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-1","incomingAmount":{"value":"100","assetCode":"USD","assetScale":2}}`),
		remotePayment(t, `{"id":"ip-1","incomingAmount":{"value":"150","assetCode":"USD","assetScale":2},"completed":true}`),
	}

	res, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	require.NoError(t, err)
	assert.Equal(t, []string{"ip-1"}, res.RecordIDs)
	assert.Equal(t, "150", res.Delta.String())

	list, err := f.ledger.GetTransactions(context.Background(), ports.TransactionListParams{AccountID: "kid"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.TransactionStatusCompleted, list[0].Status)
}

func TestRecordStore_Persist_MissingAmountStoredWithoutDelta(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-9","completed":false}`),
		remotePayment(t, `{"id":"ip-10","incomingAmount":{"value":"12.5","assetCode":"USD","assetScale":2}}`),
	}

	res, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	require.NoError(t, err)
	assert.Len(t, res.RecordIDs, 2)
	assert.Equal(t, "0", res.Delta.String())
	assert.Nil(t, res.Balance)

	rec, err := f.txRepo.GetByID(context.Background(), "ip-10")
	require.NoError(t, err)
	assert.Nil(t, rec.AmountAtomic)
}

func TestRecordStore_Persist_CommitFailureWritesNothing(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	f.store.FailCommits(errors.New("connection reset"))
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-1","incomingAmount":{"value":"100","assetCode":"USD","assetScale":2}}`),
		remotePayment(t, `{"id":"ip-2","incomingAmount":{"value":"100","assetCode":"USD","assetScale":2}}`),
	}

	_, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	assert.Error(t, err)

	rec, err := f.txRepo.GetByID(context.Background(), "ip-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
	b, _ := f.ledger.GetBalance(context.Background(), "kid")
	assert.Equal(t, "0", b.BalanceAtomic.String())
}

func TestRecordStore_Persist_RejectsForeignScale(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	first := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-1","completed":true,"receivedAmount":{"value":"100","assetCode":"USD","assetScale":2}}`),
	}
	_, err := f.records.Persist(context.Background(), "kid", first, domain.DirectionIncoming)
	require.NoError(t, err)

	second := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-2","completed":true,"receivedAmount":{"value":"1000000000","assetCode":"USD","assetScale":9}}`),
	}
	_, err = f.records.Persist(context.Background(), "kid", second, domain.DirectionIncoming)
	assert.True(t, apperror.HasCode(err, apperror.CodeAssetMismatch))

	rec, err := f.txRepo.GetByID(context.Background(), "ip-2")
	require.NoError(t, err)
	assert.Nil(t, rec, "rejected batches are not written")
	b, err := f.ledger.GetBalance(context.Background(), "kid")
	require.NoError(t, err)
	assert.Equal(t, "100", b.BalanceAtomic.String())
	assert.Equal(t, 2, *b.AssetScale)
}

func TestRecordStore_Persist_RejectsMixedBatchOnFreshAccount(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-1","incomingAmount":{"value":"100","assetCode":"USD","assetScale":2}}`),
		remotePayment(t, `{"id":"ip-2","incomingAmount":{"value":"100","assetCode":"EUR","assetScale":2}}`),
	}

	_, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	assert.True(t, apperror.HasCode(err, apperror.CodeAssetMismatch))

	list, err := f.ledger.GetTransactions(context.Background(), ports.TransactionListParams{AccountID: "kid"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordStore_Persist_RepairsBalanceAfterFailedSettle(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	// the records commit goes through, every balance commit conflicts
	fails := []error{nil}
	for i := 0; i <= testLedgerConfig.MaxRetries; i++ {
		fails = append(fails, &pgconn.PgError{Code: "40001"})
	}
	f.store.FailCommits(fails...)
	items := []domain.RemotePayment{
		remotePayment(t, `{"id":"ip-1","completed":true,"receivedAmount":{"value":"1234","assetCode":"USD","assetScale":2}}`),
	}

	_, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	assert.True(t, apperror.HasCode(err, apperror.CodeLedgerUpdateFailed))
	rec, err := f.txRepo.GetByID(context.Background(), "ip-1")
	require.NoError(t, err)
	require.NotNil(t, rec, "records stay committed")

	res, err := f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	require.NoError(t, err)
	assert.Equal(t, "1234", res.Delta.String())
	assert.Equal(t, "12.34", res.Balance.BalanceHuman)

	res, err = f.records.Persist(context.Background(), "kid", items, domain.DirectionIncoming)
	require.NoError(t, err)
	assert.Equal(t, "0", res.Delta.String(), "applied once")
}

func TestRecordStore_Persist_Empty(t *testing.T) {
	f := newRecordStoreFixture(t, nil)

	res, err := f.records.Persist(context.Background(), "kid", nil, domain.DirectionIncoming)
	require.NoError(t, err)
	assert.Empty(t, res.RecordIDs)
	assert.Equal(t, "0", res.Delta.String())

	_, err = f.records.Persist(context.Background(), "kid", nil, domain.Direction("up"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRecordStore_RecordLocalTransfer(t *testing.T) {
	f := newRecordStoreFixture(t, nil)

	res, err := f.records.RecordLocalTransfer(context.Background(), ports.LocalTransferRequest{
		FromAccountID: "mom", ToAccountID: "kid", Amount: "12.34", AssetCode: "USD", AssetScale: 2,
		Description: "allowance",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234", res.AmountAtomic.String())
	assert.Equal(t, res.CorrelationID+"_out", res.OutgoingRecordID)
	assert.Equal(t, res.CorrelationID+"_in", res.IncomingRecordID)
	assert.Equal(t, "-1234", res.FromBalance.BalanceAtomic.String())
	assert.Equal(t, "1234", res.ToBalance.BalanceAtomic.String())
	assert.Equal(t, "12.34", res.ToBalance.BalanceHuman)

	out, err := f.txRepo.GetByID(context.Background(), res.OutgoingRecordID)
	require.NoError(t, err)
	assert.Equal(t, "mom", out.AccountID)
	assert.Equal(t, domain.DirectionOutgoing, out.Direction)
	assert.Equal(t, res.CorrelationID, *out.CorrelationID)
}

func TestRecordStore_RecordLocalTransfer_RepairsFailedSide(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	// records commit, the sender settles, every receiver commit conflicts
	fails := []error{nil, nil}
	for i := 0; i <= testLedgerConfig.MaxRetries; i++ {
		fails = append(fails, &pgconn.PgError{Code: "40001"})
	}
	f.store.FailCommits(fails...)

	_, err := f.records.RecordLocalTransfer(context.Background(), ports.LocalTransferRequest{
		FromAccountID: "mom", ToAccountID: "kid", Amount: "5.00", AssetCode: "USD", AssetScale: 2,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeLedgerUpdateFailed))

	mom, _ := f.ledger.GetBalance(context.Background(), "mom")
	assert.Equal(t, "-500", mom.BalanceAtomic.String())
	kid, _ := f.ledger.GetBalance(context.Background(), "kid")
	assert.Equal(t, "0", kid.BalanceAtomic.String())

	res, err := f.ledger.Settle(context.Background(), "kid")
	require.NoError(t, err)
	assert.Equal(t, "500", res.Delta.String())
	assert.Equal(t, "5.00", res.Balance.BalanceHuman)
}

func TestRecordStore_RecordLocalTransfer_AssetMismatch(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	_, err := f.records.RecordLocalTransfer(context.Background(), ports.LocalTransferRequest{
		FromAccountID: "mom", ToAccountID: "kid", Amount: "1.00", AssetCode: "USD", AssetScale: 2,
	})
	require.NoError(t, err)

	_, err = f.records.RecordLocalTransfer(context.Background(), ports.LocalTransferRequest{
		FromAccountID: "mom", ToAccountID: "kid", Amount: "1", AssetCode: "USD", AssetScale: 9,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeAssetMismatch))

	list, err := f.ledger.GetTransactions(context.Background(), ports.TransactionListParams{AccountID: "kid"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	kid, _ := f.ledger.GetBalance(context.Background(), "kid")
	assert.Equal(t, "100", kid.BalanceAtomic.String())
}

func TestRecordStore_RecordLocalTransfer_InvalidAmount(t *testing.T) {
	for _, amount := range []string{"0.00", "-5", "abc", "0.001"} {
		t.Run(amount, func(t *testing.T) {
			f := newRecordStoreFixture(t, nil)

			_, err := f.records.RecordLocalTransfer(context.Background(), ports.LocalTransferRequest{
				FromAccountID: "mom", ToAccountID: "kid", Amount: amount, AssetCode: "USD", AssetScale: 2,
			})
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))

			list, err := f.ledger.GetTransactions(context.Background(), ports.TransactionListParams{AccountID: "mom"})
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestRecordStore_RecordLocalTransfer_SameAccount(t *testing.T) {
	f := newRecordStoreFixture(t, nil)
	_, err := f.records.RecordLocalTransfer(context.Background(), ports.LocalTransferRequest{
		FromAccountID: "kid", ToAccountID: "kid", Amount: "1", AssetScale: 2,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRecordStore_RecordLocalTransfer_Replay(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockIdempotencyCache(ctrl)
	f := newRecordStoreFixture(t, cache)

	req := ports.LocalTransferRequest{
		FromAccountID: "mom", ToAccountID: "kid", Amount: "1.00", AssetCode: "USD", AssetScale: 2,
		IdempotencyKey: "req-1",
	}

	var stored []byte
	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), "mom:req-1").Return(nil, nil),
		cache.EXPECT().Set(gomock.Any(), "mom:req-1", gomock.Any(), 24*time.Hour).
			DoAndReturn(func(_ context.Context, _ string, v []byte, _ time.Duration) error {
				stored = v
				return nil
			}),
		cache.EXPECT().Get(gomock.Any(), "mom:req-1").DoAndReturn(func(context.Context, string) ([]byte, error) {
			return stored, nil
		}),
	)

	first, err := f.records.RecordLocalTransfer(context.Background(), req)
	require.NoError(t, err)
	second, err := f.records.RecordLocalTransfer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.CorrelationID, second.CorrelationID)

	b, err := f.ledger.GetBalance(context.Background(), "kid")
	require.NoError(t, err)
	assert.Equal(t, "100", b.BalanceAtomic.String(), "replay moves nothing")
}
