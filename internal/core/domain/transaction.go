package domain

import (
	"encoding/json"
	"math/big"
	"time"
)

// Direction is the side of a payment relative to the owning account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Sign is +1 for incoming and -1 for outgoing.
func (d Direction) Sign() int {
	if d == DirectionOutgoing {
		return -1
	}
	return 1
}

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

// TransactionRecord is one observed payment event for an account.
// Records are upserted by ID and never deleted.
type TransactionRecord struct {
	ID            string            `json:"id"`
	AccountID     string            `json:"account_id"`
	Direction     Direction         `json:"direction"`
	RemoteID      *string           `json:"remote_id,omitempty"`
	CorrelationID *string           `json:"correlation_id,omitempty"`
	Status        TransactionStatus `json:"status"`
	AmountAtomic  *big.Int          `json:"amount_atomic,omitempty"`
	AssetCode     *string           `json:"asset_code,omitempty"`
	AssetScale    *int              `json:"asset_scale,omitempty"`
	Raw           json.RawMessage   `json:"raw,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// AppliedAtomic is the signed part of the amount already reflected in
	// the account balance. Nil means nothing has been applied.
	AppliedAtomic *big.Int `json:"-"`
}

// SignedAmount is the record's contribution to the account balance.
// Records without an amount contribute zero.
func (r *TransactionRecord) SignedAmount() *big.Int {
	if r.AmountAtomic == nil {
		return new(big.Int)
	}
	v := new(big.Int).Set(r.AmountAtomic)
	if r.Direction.Sign() < 0 {
		v.Neg(v)
	}
	return v
}

// Unapplied is the signed change this record still owes the balance.
func (r *TransactionRecord) Unapplied() *big.Int {
	v := r.SignedAmount()
	if r.AppliedAtomic != nil {
		v.Sub(v, r.AppliedAtomic)
	}
	return v
}

// Merge applies the upsert rule: non-nil fields of next overwrite, nil
// fields keep the stored value, and raw payloads are shallow-merged.
func (r *TransactionRecord) Merge(next *TransactionRecord) *TransactionRecord {
	out := *r
	if next.RemoteID != nil {
		out.RemoteID = next.RemoteID
	}
	if next.CorrelationID != nil {
		out.CorrelationID = next.CorrelationID
	}
	if next.Status != "" {
		out.Status = next.Status
	}
	if next.AmountAtomic != nil {
		out.AmountAtomic = next.AmountAtomic
	}
	if next.AssetCode != nil {
		out.AssetCode = next.AssetCode
	}
	if next.AssetScale != nil {
		out.AssetScale = next.AssetScale
	}
	out.Raw = MergeRaw(r.Raw, next.Raw)
	out.UpdatedAt = next.UpdatedAt
	return &out
}

// MergeRaw shallow-merges two JSON objects, keys of next winning. Non-object
// payloads are replaced wholesale.
func MergeRaw(prev, next json.RawMessage) json.RawMessage {
	if len(next) == 0 {
		return prev
	}
	if len(prev) == 0 {
		return next
	}
	var a, b map[string]json.RawMessage
	if json.Unmarshal(prev, &a) != nil || json.Unmarshal(next, &b) != nil {
		return next
	}
	for k, v := range b {
		a[k] = v
	}
	merged, err := json.Marshal(a)
	if err != nil {
		return next
	}
	return merged
}

// CanonicalAmount is a remote payment amount resolved into one shape.
type CanonicalAmount struct {
	Direction  Direction
	Atomic     *big.Int
	AssetCode  string
	AssetScale int
}
