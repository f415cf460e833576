package domain

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GrantStatus is the externally visible state of a pending transfer.
type GrantStatus string

const (
	GrantStatusPending   GrantStatus = "pending_grant"
	GrantStatusCompleted GrantStatus = "completed"
	GrantStatusFailed    GrantStatus = "failed"
)

// GrantStage is the orchestrator step a grant flow is in.
type GrantStage string

const (
	GrantStageRequesting          GrantStage = "requesting"
	GrantStageAwaitingInteraction GrantStage = "awaiting_interaction"
	GrantStageContinuing          GrantStage = "continuing"
	GrantStageFinalized           GrantStage = "finalized"
	GrantStageFailed              GrantStage = "failed"
)

// GrantState tracks one interactive transfer from sender to receiver.
// Terminal states are never modified and never deleted.
type GrantState struct {
	ID                uuid.UUID   `json:"id"`
	SenderAccountID   string      `json:"sender_account_id"`
	ReceiverAccountID string      `json:"receiver_account_id"`
	Amount            string      `json:"amount"`
	AmountAtomic      *big.Int    `json:"amount_atomic"`
	AssetCode         string      `json:"asset_code"`
	AssetScale        int         `json:"asset_scale"`
	Description       string      `json:"description,omitempty"`
	Status            GrantStatus `json:"status"`
	Stage             GrantStage  `json:"stage"`

	IncomingPaymentID *string  `json:"incoming_payment_id,omitempty"`
	QuoteID           *string  `json:"quote_id,omitempty"`
	DebitAmountAtomic *big.Int `json:"debit_amount_atomic,omitempty"`
	DebitAssetCode    *string  `json:"debit_asset_code,omitempty"`
	DebitAssetScale   *int     `json:"debit_asset_scale,omitempty"`

	ContinueURI       *string `json:"-"`
	ContinueToken     *string `json:"-"`
	RedirectURL       *string `json:"redirect_url,omitempty"`
	FinishNonce       *string `json:"-"`
	ClientNonce       *string `json:"-"`
	GrantEndpoint     *string `json:"-"`
	OutgoingPaymentID *string `json:"outgoing_payment_id,omitempty"`
	ErrorMessage      *string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the grant reached completed or failed.
func (g *GrantState) IsTerminal() bool {
	return g.Status == GrantStatusCompleted || g.Status == GrantStatusFailed
}

// GrantTransition is a compare-and-set update of a pending grant state.
// It only applies while the stored stage equals From.
type GrantTransition struct {
	ID     uuid.UUID
	From   GrantStage
	To     GrantStage
	Status GrantStatus

	IncomingPaymentID *string
	QuoteID           *string
	DebitAmountAtomic *big.Int
	DebitAssetCode    *string
	DebitAssetScale   *int
	ContinueURI       *string
	ContinueToken     *string
	RedirectURL       *string
	FinishNonce       *string
	GrantEndpoint     *string
	OutgoingPaymentID *string
	ErrorMessage      *string
	CompletedAt       *time.Time
}

// Apply copies the transition onto g, as the store would after a successful CAS.
func (t GrantTransition) Apply(g *GrantState, now time.Time) {
	g.Stage = t.To
	g.Status = t.Status
	setIf(&g.IncomingPaymentID, t.IncomingPaymentID)
	setIf(&g.QuoteID, t.QuoteID)
	if t.DebitAmountAtomic != nil {
		g.DebitAmountAtomic = t.DebitAmountAtomic
	}
	setIf(&g.DebitAssetCode, t.DebitAssetCode)
	if t.DebitAssetScale != nil {
		g.DebitAssetScale = t.DebitAssetScale
	}
	setIf(&g.ContinueURI, t.ContinueURI)
	setIf(&g.ContinueToken, t.ContinueToken)
	setIf(&g.RedirectURL, t.RedirectURL)
	setIf(&g.FinishNonce, t.FinishNonce)
	setIf(&g.GrantEndpoint, t.GrantEndpoint)
	setIf(&g.OutgoingPaymentID, t.OutgoingPaymentID)
	setIf(&g.ErrorMessage, t.ErrorMessage)
	if t.CompletedAt != nil {
		g.CompletedAt = t.CompletedAt
	}
	g.UpdatedAt = now
}

func setIf(dst **string, v *string) {
	if v != nil {
		*dst = v
	}
}
