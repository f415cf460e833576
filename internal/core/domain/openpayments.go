package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/pkg/money"
)

// Access types and actions used in grant requests.
const (
	AccessIncomingPayment = "incoming-payment"
	AccessOutgoingPayment = "outgoing-payment"
	AccessQuote           = "quote"

	ActionCreate   = "create"
	ActionRead     = "read"
	ActionReadAll  = "read-all"
	ActionList     = "list"
	ActionListAll  = "list-all"
	ActionComplete = "complete"
)

// WalletAddress is the public description of a wallet on the payment network.
type WalletAddress struct {
	ID             string `json:"id"`
	PublicName     string `json:"publicName,omitempty"`
	AssetCode      string `json:"assetCode"`
	AssetScale     int    `json:"assetScale"`
	AuthServer     string `json:"authServer"`
	ResourceServer string `json:"resourceServer"`
}

// PaymentAmount is an amount as carried on the wire: an integer string in
// atomic units plus asset metadata.
type PaymentAmount struct {
	Value      string `json:"value"`
	AssetCode  string `json:"assetCode"`
	AssetScale int    `json:"assetScale"`
}

// UnmarshalJSON accepts numeric values and the amount/currency aliases some
// providers send.
func (a *PaymentAmount) UnmarshalJSON(b []byte) error {
	var aux struct {
		Value      json.Number `json:"value"`
		Amount     json.Number `json:"amount"`
		AssetCode  string      `json:"assetCode"`
		Currency   string      `json:"currency"`
		AssetScale *int        `json:"assetScale"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.Value = aux.Value.String()
	if a.Value == "" {
		a.Value = aux.Amount.String()
	}
	a.AssetCode = aux.AssetCode
	if a.AssetCode == "" {
		a.AssetCode = aux.Currency
	}
	if aux.AssetScale != nil {
		a.AssetScale = *aux.AssetScale
	}
	return nil
}

// AccessLimits bounds an outgoing-payment grant.
type AccessLimits struct {
	DebitAmount   *PaymentAmount `json:"debitAmount,omitempty"`
	ReceiveAmount *PaymentAmount `json:"receiveAmount,omitempty"`
	Receiver      string         `json:"receiver,omitempty"`
}

// AccessItem is one entry of a grant's access list.
type AccessItem struct {
	Type       string        `json:"type"`
	Actions    []string      `json:"actions"`
	Identifier string        `json:"identifier,omitempty"`
	Limits     *AccessLimits `json:"limits,omitempty"`
}

// Grant is the auth server's answer to a grant request or continuation.
// A finalized grant carries an access token; a pending one carries
// interaction and continuation details instead.
type Grant struct {
	AccessToken *GrantAccessToken `json:"access_token,omitempty"`
	Interact    *GrantInteract    `json:"interact,omitempty"`
	Continue    *GrantContinue    `json:"continue,omitempty"`
}

type GrantAccessToken struct {
	Value     string       `json:"value"`
	Manage    string       `json:"manage,omitempty"`
	ExpiresIn int          `json:"expires_in,omitempty"`
	Access    []AccessItem `json:"access,omitempty"`
}

type GrantInteract struct {
	Redirect string `json:"redirect,omitempty"`
	Finish   string `json:"finish,omitempty"`
}

type GrantContinue struct {
	AccessToken struct {
		Value string `json:"value"`
	} `json:"access_token"`
	URI  string `json:"uri"`
	Wait int    `json:"wait,omitempty"`
}

// IsFinalized reports whether the grant carries a usable access token.
func (g *Grant) IsFinalized() bool {
	return g != nil && g.AccessToken != nil && g.AccessToken.Value != ""
}

// IsPending reports whether the grant still waits on the resource owner.
func (g *Grant) IsPending() bool {
	return g != nil && !g.IsFinalized() && g.Continue != nil && g.Continue.URI != "" && g.Continue.AccessToken.Value != ""
}

// IsInteractive reports whether the grant asks for a redirect interaction.
func (g *Grant) IsInteractive() bool {
	return g.IsPending() && g.Interact != nil && g.Interact.Redirect != ""
}

// Quote prices a payment from the sender's wallet into an incoming payment.
type Quote struct {
	ID            string        `json:"id"`
	WalletAddress string        `json:"walletAddress"`
	Receiver      string        `json:"receiver"`
	DebitAmount   PaymentAmount `json:"debitAmount"`
	ReceiveAmount PaymentAmount `json:"receiveAmount"`
	Method        string        `json:"method,omitempty"`
	ExpiresAt     *time.Time    `json:"expiresAt,omitempty"`
}

// Pagination is the cursor block of list responses.
type Pagination struct {
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// PaymentPage is one page of incoming or outgoing payments.
type PaymentPage struct {
	Pagination Pagination      `json:"pagination"`
	Result     []RemotePayment `json:"result"`
}

// RemotePayment is an incoming or outgoing payment as reported by the
// network. Its amount may arrive under several keys; Resolve picks one.
type RemotePayment struct {
	ID             string
	WalletAddress  string
	Completed      *bool
	Failed         *bool
	Status         string
	QuoteID        string
	IncomingAmount *PaymentAmount
	DebitAmount    *PaymentAmount
	ReceivedAmount *PaymentAmount
	SentAmount     *PaymentAmount
	Amount         *PaymentAmount
	Metadata       map[string]any
	CreatedAt      *time.Time
	// Raw is the payload exactly as received.
	Raw json.RawMessage
}

func (p *RemotePayment) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID               string         `json:"id"`
		WalletAddress    string         `json:"walletAddress"`
		Completed        *bool          `json:"completed"`
		Failed           *bool          `json:"failed"`
		Status           string         `json:"status"`
		State            string         `json:"state"`
		QuoteID          string         `json:"quoteId"`
		IncomingAmount   *PaymentAmount `json:"incomingAmount"`
		IncomingAmountSC *PaymentAmount `json:"incoming_amount"`
		DebitAmount      *PaymentAmount `json:"debitAmount"`
		DebitAmountSC    *PaymentAmount `json:"debit_amount"`
		ReceivedAmount   *PaymentAmount `json:"receivedAmount"`
		SentAmount       *PaymentAmount `json:"sentAmount"`
		Amount           *PaymentAmount `json:"amount"`
		Metadata         map[string]any `json:"metadata"`
		CreatedAt        *time.Time     `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = RemotePayment{
		ID:             aux.ID,
		WalletAddress:  aux.WalletAddress,
		Completed:      aux.Completed,
		Failed:         aux.Failed,
		Status:         firstNonEmpty(aux.Status, aux.State),
		QuoteID:        aux.QuoteID,
		IncomingAmount: firstAmount(aux.IncomingAmount, aux.IncomingAmountSC),
		DebitAmount:    firstAmount(aux.DebitAmount, aux.DebitAmountSC),
		ReceivedAmount: aux.ReceivedAmount,
		SentAmount:     aux.SentAmount,
		Amount:         aux.Amount,
		Metadata:       aux.Metadata,
		CreatedAt:      aux.CreatedAt,
		Raw:            append(json.RawMessage(nil), b...),
	}
	return nil
}

func (p RemotePayment) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(map[string]any{
		"id":             p.ID,
		"walletAddress":  p.WalletAddress,
		"incomingAmount": p.IncomingAmount,
		"debitAmount":    p.DebitAmount,
		"receivedAmount": p.ReceivedAmount,
		"completed":      p.Completed,
		"failed":         p.Failed,
	})
}

// ErrNoAmount marks a payload that carries no amount under any known key.
var ErrNoAmount = errors.New("payment carries no amount")

// Resolve picks the amount that moves the balance: incomingAmount, then
// debitAmount, then receivedAmount, then the generic amount.
func (p *RemotePayment) Resolve(direction Direction) (*CanonicalAmount, error) {
	src := firstAmount(p.IncomingAmount, p.DebitAmount, p.ReceivedAmount, p.Amount)
	if src == nil {
		return nil, ErrNoAmount
	}
	v, err := money.ParseAtomic(src.Value)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return &CanonicalAmount{
		Direction:  direction,
		Atomic:     v,
		AssetCode:  src.AssetCode,
		AssetScale: src.AssetScale,
	}, nil
}

// ResolveStatus maps the payload to a record status. An explicit status
// wins; otherwise failed and completed flags decide, and an incoming
// payment that is neither is still pending.
func (p *RemotePayment) ResolveStatus(direction Direction) TransactionStatus {
	switch strings.ToLower(p.Status) {
	case "completed", "complete", "succeeded", "success":
		return TransactionStatusCompleted
	case "failed", "expired", "rejected":
		return TransactionStatusFailed
	case "pending", "processing", "funding", "sending":
		return TransactionStatusPending
	}
	if p.Failed != nil && *p.Failed {
		return TransactionStatusFailed
	}
	if p.Completed != nil && *p.Completed {
		return TransactionStatusCompleted
	}
	if direction == DirectionIncoming {
		return TransactionStatusPending
	}
	return TransactionStatusCompleted
}

func firstAmount(as ...*PaymentAmount) *PaymentAmount {
	for _, a := range as {
		if a != nil && a.Value != "" {
			return a
		}
	}
	return nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
