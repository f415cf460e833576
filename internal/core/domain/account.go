package domain

// AccountType distinguishes guardians from dependents.
type AccountType string

const (
	AccountTypeGuardian  AccountType = "guardian"
	AccountTypeDependent AccountType = "dependent"
)

// Account is the directory view of a user as seen by the ledger.
// The directory owns it; this service only reads.
type Account struct {
	ID               string      `json:"id"`
	ParentID         *string     `json:"parent_id,omitempty"`
	Type             AccountType `json:"account_type"`
	WalletAddressURL string      `json:"wallet_address_url"`
	KeyID            string      `json:"key_id"`
	// PrivateKeyEnc holds the encrypted Ed25519 key, or a filesystem path
	// when it does not decrypt to a PEM block.
	PrivateKeyEnc string `json:"-"`
}

// HasWallet reports whether the account can talk to the payment network.
func (a *Account) HasWallet() bool {
	return a.WalletAddressURL != "" && a.KeyID != "" && a.PrivateKeyEnc != ""
}

// CanBeActedOnBy reports whether actorID may operate on this account:
// the account itself or its guardian.
func (a *Account) CanBeActedOnBy(actorID string) bool {
	if actorID == "" {
		return false
	}
	return a.ID == actorID || (a.ParentID != nil && *a.ParentID == actorID)
}
