package domain

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestDirection_Sign(t *testing.T) {
	assert.Equal(t, 1, DirectionIncoming.Sign())
	assert.Equal(t, -1, DirectionOutgoing.Sign())
	assert.True(t, DirectionIncoming.Valid())
	assert.False(t, Direction("sideways").Valid())
}

func TestTransactionRecord_SignedAmount(t *testing.T) {
	in := &TransactionRecord{Direction: DirectionIncoming, AmountAtomic: big.NewInt(1234)}
	out := &TransactionRecord{Direction: DirectionOutgoing, AmountAtomic: big.NewInt(1234)}
	none := &TransactionRecord{Direction: DirectionOutgoing}

	assert.Equal(t, int64(1234), in.SignedAmount().Int64())
	assert.Equal(t, int64(-1234), out.SignedAmount().Int64())
	assert.Equal(t, int64(0), none.SignedAmount().Int64())
	assert.Equal(t, int64(1234), out.AmountAtomic.Int64(), "stored amount must not be negated in place")
}

func TestTransactionRecord_Unapplied(t *testing.T) {
	out := &TransactionRecord{Direction: DirectionOutgoing, AmountAtomic: big.NewInt(900)}
	assert.Equal(t, int64(-900), out.Unapplied().Int64())

	out.AppliedAtomic = big.NewInt(-400)
	assert.Equal(t, int64(-500), out.Unapplied().Int64())

	out.AppliedAtomic = big.NewInt(-900)
	assert.Equal(t, int64(0), out.Unapplied().Sign())
}

func TestTransactionRecord_Merge(t *testing.T) {
	stored := &TransactionRecord{
		ID:           "pay-1",
		Direction:    DirectionIncoming,
		Status:       TransactionStatusPending,
		AmountAtomic: big.NewInt(500),
		AssetCode:    strPtr("USD"),
		AssetScale:   intPtr(2),
		Raw:          json.RawMessage(`{"id":"pay-1","completed":false,"metadata":{"a":1}}`),

		AppliedAtomic: big.NewInt(500),
	}
	later := time.Now()
	next := &TransactionRecord{
		ID:        "pay-1",
		Direction: DirectionIncoming,
		Status:    TransactionStatusCompleted,
		Raw:       json.RawMessage(`{"completed":true}`),
		UpdatedAt: later,
	}

	merged := stored.Merge(next)

	assert.Equal(t, TransactionStatusCompleted, merged.Status)
	assert.Equal(t, int64(500), merged.AmountAtomic.Int64(), "nil amount keeps stored value")
	assert.Equal(t, "USD", *merged.AssetCode)
	assert.Equal(t, later, merged.UpdatedAt)
	assert.Equal(t, int64(500), merged.AppliedAtomic.Int64(), "applied amount belongs to the stored row")
	assert.JSONEq(t, `{"id":"pay-1","completed":true,"metadata":{"a":1}}`, string(merged.Raw))
}

func TestMergeRaw_NonObject(t *testing.T) {
	assert.JSONEq(t, `[1]`, string(MergeRaw(json.RawMessage(`{"a":1}`), json.RawMessage(`[1]`))))
	assert.JSONEq(t, `{"a":1}`, string(MergeRaw(json.RawMessage(`{"a":1}`), nil)))
}

func TestRemotePayment_ResolvePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantValue int64
		wantCode  string
	}{
		{
			name:      "incoming amount wins",
			payload:   `{"id":"a","incomingAmount":{"value":"100","assetCode":"USD","assetScale":2},"receivedAmount":{"value":"40","assetCode":"USD","assetScale":2}}`,
			wantValue: 100, wantCode: "USD",
		},
		{
			name:      "debit amount on outgoing",
			payload:   `{"id":"b","debitAmount":{"value":"250","assetCode":"EUR","assetScale":2},"sentAmount":{"value":"10","assetCode":"EUR","assetScale":2}}`,
			wantValue: 250, wantCode: "EUR",
		},
		{
			name:      "received amount when incoming amount absent",
			payload:   `{"id":"c","receivedAmount":{"value":"75","assetCode":"MXN","assetScale":2}}`,
			wantValue: 75, wantCode: "MXN",
		},
		{
			name:      "generic amount with aliases",
			payload:   `{"id":"d","amount":{"amount":12,"currency":"USD","assetScale":2}}`,
			wantValue: 12, wantCode: "USD",
		},
		{
			name:      "snake case incoming amount",
			payload:   `{"id":"e","incoming_amount":{"value":"9","assetCode":"USD","assetScale":0}}`,
			wantValue: 9, wantCode: "USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p RemotePayment
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &p))
			amt, err := p.Resolve(DirectionIncoming)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, amt.Atomic.Int64())
			assert.Equal(t, tt.wantCode, amt.AssetCode)
			assert.JSONEq(t, tt.payload, string(p.Raw))
		})
	}
}

func TestRemotePayment_ResolveErrors(t *testing.T) {
	var p RemotePayment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x"}`), &p))
	_, err := p.Resolve(DirectionIncoming)
	assert.ErrorIs(t, err, ErrNoAmount)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"y","amount":{"value":"1.5","assetCode":"USD","assetScale":2}}`), &p))
	_, err = p.Resolve(DirectionIncoming)
	assert.Error(t, err)
}

func TestRemotePayment_ResolveStatus(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name      string
		p         RemotePayment
		direction Direction
		want      TransactionStatus
	}{
		{"explicit status", RemotePayment{Status: "FAILED"}, DirectionOutgoing, TransactionStatusFailed},
		{"failed flag", RemotePayment{Failed: &yes}, DirectionOutgoing, TransactionStatusFailed},
		{"completed flag", RemotePayment{Completed: &yes}, DirectionIncoming, TransactionStatusCompleted},
		{"open incoming", RemotePayment{Completed: &no}, DirectionIncoming, TransactionStatusPending},
		{"outgoing default", RemotePayment{Failed: &no}, DirectionOutgoing, TransactionStatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.ResolveStatus(tt.direction))
		})
	}
}

func TestRemotePayment_MarshalKeepsRaw(t *testing.T) {
	payload := `{"id":"https://rs.example/incoming-payments/1","vendorField":"kept"}`
	var p RemotePayment
	require.NoError(t, json.Unmarshal([]byte(payload), &p))
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))
}

func TestGrant_States(t *testing.T) {
	var finalized, pending, bare Grant
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":{"value":"tok","manage":"https://auth/token/1"}}`), &finalized))
	require.NoError(t, json.Unmarshal([]byte(`{"interact":{"redirect":"https://auth/interact/1"},"continue":{"access_token":{"value":"ct"},"uri":"https://auth/continue/1","wait":5}}`), &pending))
	require.NoError(t, json.Unmarshal([]byte(`{}`), &bare))

	assert.True(t, finalized.IsFinalized())
	assert.False(t, finalized.IsPending())

	assert.False(t, pending.IsFinalized())
	assert.True(t, pending.IsPending())
	assert.True(t, pending.IsInteractive())
	assert.Equal(t, "ct", pending.Continue.AccessToken.Value)

	assert.False(t, bare.IsFinalized())
	assert.False(t, bare.IsPending())
}

func TestGrantTransition_Apply(t *testing.T) {
	g := &GrantState{ID: uuid.New(), Status: GrantStatusPending, Stage: GrantStageContinuing, ContinueToken: strPtr("old")}
	now := time.Now()
	GrantTransition{
		ID: g.ID, From: GrantStageContinuing, To: GrantStageFinalized, Status: GrantStatusCompleted,
		OutgoingPaymentID: strPtr("https://rs/outgoing-payments/1"), CompletedAt: &now,
	}.Apply(g, now)

	assert.Equal(t, GrantStatusCompleted, g.Status)
	assert.Equal(t, GrantStageFinalized, g.Stage)
	assert.Equal(t, "old", *g.ContinueToken)
	assert.Equal(t, "https://rs/outgoing-payments/1", *g.OutgoingPaymentID)
	assert.True(t, g.IsTerminal())
}

func TestAccount_CanBeActedOnBy(t *testing.T) {
	guardian := &Account{ID: "mom", Type: AccountTypeGuardian}
	kid := &Account{ID: "kid", ParentID: strPtr("mom"), Type: AccountTypeDependent}

	assert.True(t, kid.CanBeActedOnBy("kid"))
	assert.True(t, kid.CanBeActedOnBy("mom"))
	assert.False(t, kid.CanBeActedOnBy("stranger"))
	assert.False(t, guardian.CanBeActedOnBy("kid"))
	assert.False(t, kid.CanBeActedOnBy(""))
}

func TestAccount_HasWallet(t *testing.T) {
	assert.False(t, (&Account{ID: "a", WalletAddressURL: "https://w/a"}).HasWallet())
	assert.True(t, (&Account{ID: "a", WalletAddressURL: "https://w/a", KeyID: "k", PrivateKeyEnc: "enc"}).HasWallet())
}

func TestBalanceRecord_Scale(t *testing.T) {
	b := ZeroBalance("a")
	assert.Equal(t, 2, b.Scale(2))
	b.AssetScale = intPtr(9)
	assert.Equal(t, 9, b.Scale(2))
	assert.Equal(t, "0", b.BalanceAtomic.String())
}

func TestBalanceRecord_AcceptsAsset(t *testing.T) {
	b := ZeroBalance("a")
	assert.True(t, b.AcceptsAsset(strPtr("USD"), intPtr(2)), "unset asset accepts anything")

	b.AssetCode, b.AssetScale = strPtr("USD"), intPtr(2)
	assert.True(t, b.AcceptsAsset(strPtr("USD"), intPtr(2)))
	assert.True(t, b.AcceptsAsset(nil, nil))
	assert.False(t, b.AcceptsAsset(strPtr("USD"), intPtr(9)))
	assert.False(t, b.AcceptsAsset(strPtr("EUR"), intPtr(2)))
}

func TestSyncResult_Failed(t *testing.T) {
	r := &SyncResult{Errors: []SyncError{{Kind: SyncErrorIncoming, Error: "boom"}}}
	assert.True(t, r.Failed(SyncErrorIncoming))
	assert.False(t, r.Failed(SyncErrorOutgoing))
}
