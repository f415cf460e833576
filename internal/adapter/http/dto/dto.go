package dto

// LocalTransferRequest is the request body for an off-network transfer.
type LocalTransferRequest struct {
	FromAccountID string `json:"from_account_id" binding:"required,safe_id,max=100"`
	ToAccountID   string `json:"to_account_id" binding:"required,safe_id,max=100"`
	Amount        string `json:"amount" binding:"required,amount"`
	AssetCode     string `json:"asset_code" binding:"required,len=3"`
	AssetScale    *int   `json:"asset_scale" binding:"required,min=0,max=18"`
	Description   string `json:"description" binding:"max=255"`
	Reference     string `json:"reference" binding:"max=100"`
}

// GrantFlowRequest is the request body for starting an interactive transfer.
type GrantFlowRequest struct {
	FromAccountID string `json:"from_account_id" binding:"required,safe_id,max=100"`
	ToAccountID   string `json:"to_account_id" binding:"required,safe_id,max=100"`
	Amount        string `json:"amount" binding:"required,amount"`
	Description   string `json:"description" binding:"max=255"`
}

// BalanceResponse is the response body for a balance query. Atomic values
// are strings so clients never round them through a float.
type BalanceResponse struct {
	AccountID     string  `json:"account_id"`
	BalanceAtomic string  `json:"balance_atomic"`
	BalanceHuman  string  `json:"balance_human"`
	AssetCode     *string `json:"asset_code,omitempty"`
	AssetScale    *int    `json:"asset_scale,omitempty"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

// TransactionResponse is one ledger record.
type TransactionResponse struct {
	ID            string  `json:"id"`
	AccountID     string  `json:"account_id"`
	Direction     string  `json:"direction"`
	Status        string  `json:"status"`
	AmountAtomic  *string `json:"amount_atomic,omitempty"`
	AmountHuman   *string `json:"amount_human,omitempty"`
	AssetCode     *string `json:"asset_code,omitempty"`
	AssetScale    *int    `json:"asset_scale,omitempty"`
	RemoteID      *string `json:"remote_id,omitempty"`
	CorrelationID *string `json:"correlation_id,omitempty"`
	UpdatedAt     string  `json:"updated_at"`
}

// TransactionListResponse wraps a transaction listing.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Count int                   `json:"count"`
}

// LocalTransferResponse is the response body for a local transfer.
type LocalTransferResponse struct {
	CorrelationID    string          `json:"correlation_id"`
	OutgoingRecordID string          `json:"outgoing_record_id"`
	IncomingRecordID string          `json:"incoming_record_id"`
	AmountAtomic     string          `json:"amount_atomic"`
	FromBalance      BalanceResponse `json:"from_balance"`
	ToBalance        BalanceResponse `json:"to_balance"`
}

// GrantStateResponse is the client view of a grant flow.
type GrantStateResponse struct {
	ID                string  `json:"id"`
	SenderAccountID   string  `json:"sender_account_id"`
	ReceiverAccountID string  `json:"receiver_account_id"`
	Amount            string  `json:"amount"`
	AmountAtomic      string  `json:"amount_atomic"`
	AssetCode         string  `json:"asset_code"`
	AssetScale        int     `json:"asset_scale"`
	Status            string  `json:"status"`
	Stage             string  `json:"stage"`
	RedirectURL       *string `json:"redirect_url,omitempty"`
	DebitAmountAtomic *string `json:"debit_amount_atomic,omitempty"`
	OutgoingPaymentID *string `json:"outgoing_payment_id,omitempty"`
	ErrorMessage      *string `json:"error_message,omitempty"`
	CreatedAt         string  `json:"created_at"`
	CompletedAt       *string `json:"completed_at,omitempty"`
}

// PaymentSummaryResponse totals one direction of a sync.
type PaymentSummaryResponse struct {
	Count       int    `json:"count"`
	Persisted   int    `json:"persisted"`
	TotalAtomic string `json:"total_atomic"`
	TotalHuman  string `json:"total_human"`
	AssetCode   string `json:"asset_code,omitempty"`
	AssetScale  int    `json:"asset_scale"`
}

// SyncErrorResponse is one failed part of a sync.
type SyncErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// SyncResponse is the response body for an account sync.
type SyncResponse struct {
	AccountID string                  `json:"account_id"`
	Incoming  *PaymentSummaryResponse `json:"incoming"`
	Outgoing  *PaymentSummaryResponse `json:"outgoing"`
	Balance   *BalanceResponse        `json:"balance"`
	Errors    []SyncErrorResponse     `json:"errors"`
	SyncedAt  string                  `json:"synced_at"`
}
