package domain

import (
	"math/big"
	"time"
)

// BalanceRecord is the cached balance of one account. Its atomic value equals
// incoming minus outgoing over the account's transaction records.
type BalanceRecord struct {
	AccountID     string    `json:"account_id"`
	AssetCode     *string   `json:"asset_code,omitempty"`
	AssetScale    *int      `json:"asset_scale,omitempty"`
	BalanceAtomic *big.Int  `json:"balance_atomic"`
	BalanceHuman  string    `json:"balance_human"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ZeroBalance is the default for an account with no activity.
func ZeroBalance(accountID string) *BalanceRecord {
	return &BalanceRecord{
		AccountID:     accountID,
		BalanceAtomic: new(big.Int),
		BalanceHuman:  "0",
	}
}

// Scale returns the scale on record or fallback when none is set.
func (b *BalanceRecord) Scale(fallback int) int {
	if b.AssetScale != nil {
		return *b.AssetScale
	}
	return fallback
}

// AcceptsAsset reports whether an amount in the given asset may be added to
// the balance. Unset values on either side never conflict.
func (b *BalanceRecord) AcceptsAsset(code *string, scale *int) bool {
	if code != nil && b.AssetCode != nil && *code != *b.AssetCode {
		return false
	}
	if scale != nil && b.AssetScale != nil && *scale != *b.AssetScale {
		return false
	}
	return true
}
