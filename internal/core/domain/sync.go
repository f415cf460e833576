package domain

import (
	"math/big"
	"time"
)

// SyncErrorKind names the part of a sync that failed.
type SyncErrorKind string

const (
	SyncErrorIncoming SyncErrorKind = "incoming"
	SyncErrorOutgoing SyncErrorKind = "outgoing"
	SyncErrorBalance  SyncErrorKind = "balance"
)

// SyncError is a captured per-direction failure.
type SyncError struct {
	Kind  SyncErrorKind `json:"kind"`
	Error string        `json:"error"`
}

// PaymentSummary is the listing of one direction with its total.
type PaymentSummary struct {
	Items       []RemotePayment `json:"items"`
	TotalAtomic *big.Int        `json:"total_atomic"`
	TotalHuman  string          `json:"total"`
	AssetCode   string          `json:"asset_code,omitempty"`
	AssetScale  int             `json:"asset_scale"`
	Persisted   int             `json:"persisted"`
}

// SyncResult reports both directions independently. A nil summary means
// that direction could not be listed; the reason is in Errors. A listed
// direction whose records failed to persist keeps its summary and also
// reports an error.
type SyncResult struct {
	AccountID string          `json:"account_id"`
	Incoming  *PaymentSummary `json:"incoming"`
	Outgoing  *PaymentSummary `json:"outgoing"`
	Errors    []SyncError     `json:"errors"`
	Balance   *BalanceRecord  `json:"balance,omitempty"`
	SyncedAt  time.Time       `json:"synced_at"`
}

// Failed reports whether kind was recorded as an error.
func (r *SyncResult) Failed(kind SyncErrorKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
