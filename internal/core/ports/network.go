package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
)

// PaymentNetworkClient talks to Open Payments auth and resource servers on
// behalf of one set of credentials.
type PaymentNetworkClient interface {
	GetWalletAddress(ctx context.Context, url string) (*domain.WalletAddress, error)
	RequestGrant(ctx context.Context, authServerURL string, req GrantRequest) (*domain.Grant, error)
	// ContinueGrant resumes a pending grant. interactRef may be empty when
	// the caller polls instead of receiving the finish redirect.
	ContinueGrant(ctx context.Context, continueURI, continueToken, interactRef string) (*domain.Grant, error)
	CreateIncomingPayment(ctx context.Context, resourceServerURL, accessToken string, req IncomingPaymentRequest) (*domain.RemotePayment, error)
	ListIncomingPayments(ctx context.Context, resourceServerURL, accessToken string, q ListQuery) (*domain.PaymentPage, error)
	CreateQuote(ctx context.Context, resourceServerURL, accessToken string, req QuoteRequest) (*domain.Quote, error)
	CreateOutgoingPayment(ctx context.Context, resourceServerURL, accessToken string, req OutgoingPaymentRequest) (*domain.RemotePayment, error)
	ListOutgoingPayments(ctx context.Context, resourceServerURL, accessToken string, q ListQuery) (*domain.PaymentPage, error)
}

// ClientFactory hands out clients scoped to an account's credentials.
// Accounts with different keys never share a client.
type ClientFactory interface {
	ForAccount(ctx context.Context, account *domain.Account) (PaymentNetworkClient, error)
}

// GrantRequest is the GNAP grant request body.
type GrantRequest struct {
	AccessToken GrantAccess      `json:"access_token"`
	Client      string           `json:"client,omitempty"`
	Interact    *InteractRequest `json:"interact,omitempty"`
}

type GrantAccess struct {
	Access []domain.AccessItem `json:"access"`
}

type InteractRequest struct {
	Start  []string        `json:"start"`
	Finish *InteractFinish `json:"finish,omitempty"`
}

type InteractFinish struct {
	Method string `json:"method"`
	URI    string `json:"uri"`
	Nonce  string `json:"nonce"`
}

type IncomingPaymentRequest struct {
	WalletAddress  string                `json:"walletAddress"`
	IncomingAmount *domain.PaymentAmount `json:"incomingAmount,omitempty"`
	ExpiresAt      *time.Time            `json:"expiresAt,omitempty"`
	Metadata       map[string]any        `json:"metadata,omitempty"`
}

type QuoteRequest struct {
	WalletAddress string `json:"walletAddress"`
	Receiver      string `json:"receiver"`
	Method        string `json:"method"`
}

type OutgoingPaymentRequest struct {
	WalletAddress string         `json:"walletAddress"`
	QuoteID       string         `json:"quoteId"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ListQuery selects one page of a payment listing.
type ListQuery struct {
	WalletAddress string
	First         int
	Cursor        string
}

// RemoteError is a non-2xx answer from the payment network. Body is kept so
// callers can salvage a usable resource from a validation failure.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: payment network returned %d: %s", e.Op, e.StatusCode, truncate(e.Body, 256))
}

// DecodeBody unmarshals the error body into v.
func (e *RemoteError) DecodeBody(v any) error {
	return json.Unmarshal(e.Body, v)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
