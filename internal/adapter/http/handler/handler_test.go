package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/middleware"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports/mocks"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var (
	momAccount = &domain.Account{ID: "mom", Type: domain.AccountTypeGuardian}
	kidAccount = &domain.Account{ID: "kid", Type: domain.AccountTypeDependent, ParentID: strPtr("mom")}
)

// newContext builds a test context authenticated as actor. An empty actor
// leaves the request unauthenticated.
func newContext(method, path string, body any, actor string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if actor != "" {
		c.Set(middleware.CtxAccountID, actor)
	}
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func expectAccounts(accounts *mocks.MockAccountDirectory, known ...*domain.Account) {
	accounts.EXPECT().GetByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, id string) (*domain.Account, error) {
			for _, a := range known {
				if a.ID == id {
					cp := *a
					return &cp, nil
				}
			}
			return nil, nil
		}).AnyTimes()
}

// --- Account Handler Tests ---

func TestGetBalance_GuardianReadsDependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(accounts, ledger, mocks.NewMockSyncService(ctrl))

	expectAccounts(accounts, momAccount, kidAccount)
	ledger.EXPECT().GetBalance(gomock.Any(), "kid").Return(&domain.BalanceRecord{
		AccountID:     "kid",
		AssetCode:     strPtr("USD"),
		AssetScale:    intPtr(2),
		BalanceAtomic: big.NewInt(1050),
		BalanceHuman:  "10.50",
		UpdatedAt:     time.Now(),
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/accounts/kid/balance", nil, "mom", gin.Param{Key: "id", Value: "kid"})
	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "1050", data["balance_atomic"])
	assert.Equal(t, "10.50", data["balance_human"])
	assert.Equal(t, "USD", data["asset_code"])
	assert.NotEmpty(t, data["updated_at"])
}

func TestGetBalance_AccessRules(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		account string
		status  int
		code    string
	}{
		{"dependent cannot read guardian", "kid", "mom", http.StatusForbidden, apperror.CodeForbidden},
		{"stranger cannot read dependent", "stranger", "kid", http.StatusForbidden, apperror.CodeForbidden},
		{"unknown account", "mom", "ghost", http.StatusNotFound, apperror.CodeNotFound},
		{"unauthenticated", "", "kid", http.StatusUnauthorized, "AUTH_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			accounts := mocks.NewMockAccountDirectory(ctrl)
			h := NewAccountHandler(accounts, mocks.NewMockLedgerService(ctrl), mocks.NewMockSyncService(ctrl))
			expectAccounts(accounts, momAccount, kidAccount)

			c, w := newContext(http.MethodGet, "/", nil, tt.actor, gin.Param{Key: "id", Value: tt.account})
			h.GetBalance(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestGetBalance_DirectoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	h := NewAccountHandler(accounts, mocks.NewMockLedgerService(ctrl), mocks.NewMockSyncService(ctrl))

	accounts.EXPECT().GetByID(gomock.Any(), "kid").Return(nil, errors.New("connection refused"))

	c, w := newContext(http.MethodGet, "/", nil, "mom", gin.Param{Key: "id", Value: "kid"})
	h.GetBalance(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SYS_001", errorCode(t, w))
}

func TestListTransactions_PassesFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewAccountHandler(accounts, ledger, mocks.NewMockSyncService(ctrl))
	expectAccounts(accounts, kidAccount)

	ledger.EXPECT().GetTransactions(gomock.Any(), gomock.Cond(func(x any) bool {
		p, ok := x.(ports.TransactionListParams)
		return ok && p.AccountID == "kid" && p.Direction != nil && *p.Direction == domain.DirectionIncoming && p.Limit == 5
	})).Return([]domain.TransactionRecord{
		{
			ID:           "incoming_1",
			AccountID:    "kid",
			Direction:    domain.DirectionIncoming,
			Status:       domain.TransactionStatusCompleted,
			AmountAtomic: big.NewInt(250),
			AssetCode:    strPtr("USD"),
			AssetScale:   intPtr(2),
			UpdatedAt:    time.Now(),
		},
		{
			ID:        "incoming_2",
			AccountID: "kid",
			Direction: domain.DirectionIncoming,
			Status:    domain.TransactionStatusPending,
			UpdatedAt: time.Now(),
		},
	}, nil)

	c, w := newContext(http.MethodGet, "/?direction=incoming&limit=5", nil, "kid", gin.Param{Key: "id", Value: "kid"})
	h.ListTransactions(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(2), data["count"])
	items := data["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "250", first["amount_atomic"])
	assert.Equal(t, "2.50", first["amount_human"])
	second := items[1].(map[string]any)
	assert.NotContains(t, second, "amount_atomic")
	assert.Equal(t, "Pending", second["status"])
}

func TestListTransactions_BadLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	h := NewAccountHandler(accounts, mocks.NewMockLedgerService(ctrl), mocks.NewMockSyncService(ctrl))
	expectAccounts(accounts, kidAccount)

	for _, limit := range []string{"abc", "-1"} {
		c, w := newContext(http.MethodGet, "/?limit="+limit, nil, "kid", gin.Param{Key: "id", Value: "kid"})
		h.ListTransactions(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		assert.Equal(t, apperror.CodeValidation, errorCode(t, w), limit)
	}
}

func TestSync_ReportsPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	syncSvc := mocks.NewMockSyncService(ctrl)
	h := NewAccountHandler(accounts, mocks.NewMockLedgerService(ctrl), syncSvc)
	expectAccounts(accounts, momAccount, kidAccount)

	syncSvc.EXPECT().SyncAccount(gomock.Any(), "kid").Return(&domain.SyncResult{
		AccountID: "kid",
		Incoming: &domain.PaymentSummary{
			Items:       []domain.RemotePayment{{ID: "ip-1"}, {ID: "ip-2"}},
			TotalAtomic: big.NewInt(1000),
			TotalHuman:  "10.00",
			AssetCode:   "USD",
			AssetScale:  2,
			Persisted:   2,
		},
		Errors:   []domain.SyncError{{Kind: domain.SyncErrorOutgoing, Error: "grant request failed"}},
		Balance:  &domain.BalanceRecord{AccountID: "kid", BalanceAtomic: big.NewInt(1000), BalanceHuman: "10.00"},
		SyncedAt: time.Now(),
	}, nil)

	c, w := newContext(http.MethodPost, "/", nil, "mom", gin.Param{Key: "id", Value: "kid"})
	h.Sync(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	incoming := data["incoming"].(map[string]any)
	assert.Equal(t, float64(2), incoming["count"])
	assert.Equal(t, "1000", incoming["total_atomic"])
	assert.Nil(t, data["outgoing"])
	errs := data["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "outgoing", errs[0].(map[string]any)["kind"])
}

func TestSync_WalletNotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	syncSvc := mocks.NewMockSyncService(ctrl)
	h := NewAccountHandler(accounts, mocks.NewMockLedgerService(ctrl), syncSvc)
	expectAccounts(accounts, kidAccount)

	syncSvc.EXPECT().SyncAccount(gomock.Any(), "kid").Return(nil, apperror.ErrWalletNotConfigured("kid"))

	c, w := newContext(http.MethodPost, "/", nil, "kid", gin.Param{Key: "id", Value: "kid"})
	h.Sync(c)

	assert.Equal(t, apperror.CodeWalletNotConfigured, errorCode(t, w))
}

// --- Transfer Handler Tests ---

func localTransferBody() map[string]any {
	return map[string]any{
		"from_account_id": "mom",
		"to_account_id":   "kid",
		"amount":          "10.50",
		"asset_code":      "USD",
		"asset_scale":     2,
		"description":     "allowance",
	}
}

func TestLocalTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	records := mocks.NewMockRecordStore(ctrl)
	h := NewTransferHandler(accounts, records, mocks.NewMockGrantOrchestrator(ctrl))
	expectAccounts(accounts, momAccount, kidAccount)

	records.EXPECT().RecordLocalTransfer(gomock.Any(), ports.LocalTransferRequest{
		FromAccountID:  "mom",
		ToAccountID:    "kid",
		Amount:         "10.50",
		AssetCode:      "USD",
		AssetScale:     2,
		Description:    "allowance",
		IdempotencyKey: "key-1",
	}).Return(&ports.LocalTransferResult{
		CorrelationID:    "local_1",
		OutgoingRecordID: "local_1_out",
		IncomingRecordID: "local_1_in",
		AmountAtomic:     big.NewInt(1050),
		FromBalance:      &domain.BalanceRecord{AccountID: "mom", BalanceAtomic: big.NewInt(-1050), BalanceHuman: "-10.50"},
		ToBalance:        &domain.BalanceRecord{AccountID: "kid", BalanceAtomic: big.NewInt(1050), BalanceHuman: "10.50"},
	}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/transfers/local", localTransferBody(), "mom")
	c.Request.Header.Set(HeaderIdempotencyKey, "key-1")
	h.LocalTransfer(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "local_1", data["correlation_id"])
	assert.Equal(t, "1050", data["amount_atomic"])
	assert.Equal(t, "-1050", data["from_balance"].(map[string]any)["balance_atomic"])
}

func TestLocalTransfer_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTransferHandler(mocks.NewMockAccountDirectory(ctrl), mocks.NewMockRecordStore(ctrl), mocks.NewMockGrantOrchestrator(ctrl))

	tests := map[string]func(map[string]any){
		"missing scale":  func(b map[string]any) { delete(b, "asset_scale") },
		"bad amount":     func(b map[string]any) { b["amount"] = "ten" },
		"bad account id": func(b map[string]any) { b["to_account_id"] = "kid; drop" },
		"long code":      func(b map[string]any) { b["asset_code"] = "USDT" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			body := localTransferBody()
			mutate(body)
			c, w := newContext(http.MethodPost, "/", body, "mom")
			h.LocalTransfer(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apperror.CodeValidation, errorCode(t, w))
		})
	}
}

func TestLocalTransfer_ActorMustControlBothAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), mocks.NewMockGrantOrchestrator(ctrl))
	expectAccounts(accounts, momAccount, kidAccount)

	// The dependent controls its own account but not its guardian's.
	body := localTransferBody()
	body["from_account_id"] = "kid"
	body["to_account_id"] = "mom"
	c, w := newContext(http.MethodPost, "/", body, "kid")
	h.LocalTransfer(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLocalTransfer_IdempotencyKeyTooLong(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), mocks.NewMockGrantOrchestrator(ctrl))
	expectAccounts(accounts, momAccount, kidAccount)

	c, w := newContext(http.MethodPost, "/", localTransferBody(), "mom")
	c.Request.Header.Set(HeaderIdempotencyKey, strings.Repeat("k", 129))
	h.LocalTransfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func pendingState(sender string) *domain.GrantState {
	return &domain.GrantState{
		ID:                uuid.New(),
		SenderAccountID:   sender,
		ReceiverAccountID: "mom",
		Amount:            "5.00",
		AmountAtomic:      big.NewInt(500),
		AssetCode:         "USD",
		AssetScale:        2,
		Status:            domain.GrantStatusPending,
		Stage:             domain.GrantStageAwaitingInteraction,
		RedirectURL:       strPtr("https://auth.example/interact/abc"),
		ContinueToken:     strPtr("secret-token"),
		CreatedAt:         time.Now(),
	}
}

func TestCreateGrant_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), grants)
	// Only the sender is checked; the receiver need not belong to the actor.
	expectAccounts(accounts, momAccount, kidAccount)

	state := pendingState("kid")
	grants.EXPECT().CreateGrantFlow(gomock.Any(), ports.GrantFlowRequest{
		FromAccountID: "kid",
		ToAccountID:   "mom",
		Amount:        "5.00",
	}).Return(state, nil)

	c, w := newContext(http.MethodPost, "/", map[string]any{
		"from_account_id": "kid",
		"to_account_id":   "mom",
		"amount":          "5.00",
	}, "kid")
	h.CreateGrant(c)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, state.ID.String(), data["id"])
	assert.Equal(t, "awaiting_interaction", data["stage"])
	assert.Equal(t, "https://auth.example/interact/abc", data["redirect_url"])
	assert.NotContains(t, w.Body.String(), "secret-token")
}

func TestGetGrant_OtherFamilyIsHidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), grants)
	expectAccounts(accounts, momAccount, kidAccount)

	state := pendingState("kid")
	grants.EXPECT().GetGrantState(gomock.Any(), state.ID).Return(state, nil)

	c, w := newContext(http.MethodGet, "/", nil, "stranger", gin.Param{Key: "id", Value: state.ID.String()})
	h.GetGrant(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, errorCode(t, w))
}

func TestGetGrant_FinalizedHidesRedirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), grants)
	expectAccounts(accounts, momAccount, kidAccount)

	state := pendingState("kid")
	done := time.Now()
	state.Status = domain.GrantStatusCompleted
	state.Stage = domain.GrantStageFinalized
	state.OutgoingPaymentID = strPtr("https://rs.example/outgoing-payments/1")
	state.CompletedAt = &done
	grants.EXPECT().GetGrantState(gomock.Any(), state.ID).Return(state, nil)

	c, w := newContext(http.MethodGet, "/", nil, "mom", gin.Param{Key: "id", Value: state.ID.String()})
	h.GetGrant(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.NotContains(t, data, "redirect_url")
	assert.Equal(t, "completed", data["status"])
	assert.NotEmpty(t, data["completed_at"])
}

func TestGetGrant_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewTransferHandler(mocks.NewMockAccountDirectory(ctrl), mocks.NewMockRecordStore(ctrl), mocks.NewMockGrantOrchestrator(ctrl))

	c, w := newContext(http.MethodGet, "/", nil, "mom", gin.Param{Key: "id", Value: "not-a-uuid"})
	h.GetGrant(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteGrant_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), grants)
	expectAccounts(accounts, momAccount, kidAccount)

	state := pendingState("kid")
	completed := *state
	completed.Status = domain.GrantStatusCompleted
	completed.Stage = domain.GrantStageFinalized

	grants.EXPECT().GetGrantState(gomock.Any(), state.ID).Return(state, nil)
	grants.EXPECT().CompletePendingTransaction(gomock.Any(), state.ID, "").Return(&completed, nil)

	c, w := newContext(http.MethodPost, "/", nil, "kid", gin.Param{Key: "id", Value: state.ID.String()})
	h.CompleteGrant(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "finalized", decodeData(t, w)["stage"])
}

func TestCompleteGrant_NotApproved(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountDirectory(ctrl)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(accounts, mocks.NewMockRecordStore(ctrl), grants)
	expectAccounts(accounts, momAccount, kidAccount)

	state := pendingState("kid")
	grants.EXPECT().GetGrantState(gomock.Any(), state.ID).Return(state, nil)
	grants.EXPECT().CompletePendingTransaction(gomock.Any(), state.ID, "").
		Return(nil, apperror.ErrGrantNotApproved(errors.New("still pending")))

	c, w := newContext(http.MethodPost, "/", nil, "mom", gin.Param{Key: "id", Value: state.ID.String()})
	h.CompleteGrant(c)

	assert.Equal(t, apperror.CodeGrantNotApproved, errorCode(t, w))
}

func TestFinishGrant_PassesInteraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(mocks.NewMockAccountDirectory(ctrl), mocks.NewMockRecordStore(ctrl), grants)

	state := pendingState("kid")
	state.Stage = domain.GrantStageFinalized
	state.Status = domain.GrantStatusCompleted
	grants.EXPECT().FinishInteraction(gomock.Any(), state.ID, "ref-1", "abc=").Return(state, nil)

	// No actor: the finish redirect arrives from the sender's browser.
	c, w := newContext(http.MethodGet, "/?interact_ref=ref-1&hash=abc%3D", nil, "", gin.Param{Key: "id", Value: state.ID.String()})
	h.FinishGrant(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFinishGrant_InvalidInteraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(mocks.NewMockAccountDirectory(ctrl), mocks.NewMockRecordStore(ctrl), grants)

	id := uuid.New()
	grants.EXPECT().FinishInteraction(gomock.Any(), id, "ref-1", "forged").Return(nil, apperror.ErrInvalidInteraction())

	c, w := newContext(http.MethodGet, "/?interact_ref=ref-1&hash=forged", nil, "", gin.Param{Key: "id", Value: id.String()})
	h.FinishGrant(c)

	assert.Equal(t, apperror.CodeInvalidInteraction, errorCode(t, w))
}

func TestFinishGrant_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	grants := mocks.NewMockGrantOrchestrator(ctrl)
	h := NewTransferHandler(mocks.NewMockAccountDirectory(ctrl), mocks.NewMockRecordStore(ctrl), grants)

	state := pendingState("kid")
	state.Stage = domain.GrantStageFailed
	state.Status = domain.GrantStatusFailed
	grants.EXPECT().RejectInteraction(gomock.Any(), state.ID, "grant rejected by account holder").Return(state, nil)

	c, w := newContext(http.MethodGet, "/?result=grant_rejected", nil, "", gin.Param{Key: "id", Value: state.ID.String()})
	h.FinishGrant(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	rdb := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Name().Return("postgresql").AnyTimes()
	rdb.EXPECT().Name().Return("redis").AnyTimes()

	pg.EXPECT().Ping(gomock.Any()).Return(nil).Times(2)
	rdb.EXPECT().Ping(gomock.Any()).Return(nil)
	rdb.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	router := gin.New()
	router.GET("/health", HealthCheck(pg, rdb))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
	assert.Contains(t, w.Body.String(), "connection refused")
}
