package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

const (
	CodeInvalidAmount       = "LED_001"
	CodeLedgerUpdateFailed  = "LED_002"
	CodeAssetMismatch       = "LED_003"
	CodeWalletNotConfigured = "WAL_001"
	CodeGrantNotFinalized   = "GRT_001"
	CodeGrantNotApproved    = "GRT_002"
	CodeInvalidState        = "GRT_003"
	CodeInvalidInteraction  = "GRT_004"
	CodeRemoteNetwork       = "NET_001"
	CodeNotFound            = "SYS_004"
	CodeValidation          = "SYS_005"
	CodeForbidden           = "AUTH_002"
)

// ---- Ledger (LED) ----

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest)
}

// ErrInvalidAmountCause keeps the parse failure behind the InvalidAmount code.
func ErrInvalidAmountCause(err error) *AppError {
	return Wrap(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest, err)
}

func ErrLedgerUpdateFailed(err error) *AppError {
	return Wrap(CodeLedgerUpdateFailed, "Balance update could not be committed", http.StatusServiceUnavailable, err)
}

// ErrAssetMismatch rejects an amount whose asset differs from the one the
// account balance is kept in.
func ErrAssetMismatch(accountID string) *AppError {
	return New(CodeAssetMismatch,
		fmt.Sprintf("Amount asset does not match the balance asset of account %s", accountID),
		http.StatusUnprocessableEntity)
}

// ---- Wallet configuration (WAL) ----

func ErrWalletNotConfigured(accountID string) *AppError {
	return New(CodeWalletNotConfigured,
		fmt.Sprintf("Account %s has no wallet address or credentials", accountID),
		http.StatusUnprocessableEntity)
}

// ---- Grants (GRT) ----

func ErrGrantNotFinalized(grantType string) *AppError {
	return New(CodeGrantNotFinalized,
		fmt.Sprintf("Expected a finalized %s grant", grantType),
		http.StatusBadGateway)
}

func ErrGrantNotApproved(err error) *AppError {
	return Wrap(CodeGrantNotApproved, "Grant has not been approved", http.StatusConflict, err)
}

func ErrInvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusConflict)
}

func ErrInvalidInteraction() *AppError {
	return New(CodeInvalidInteraction, "Interaction hash mismatch", http.StatusBadRequest)
}

// ErrInteractionReplayed is an interact_ref that was already honoured.
func ErrInteractionReplayed() *AppError {
	return New(CodeInvalidInteraction, "Interaction already processed", http.StatusBadRequest)
}

// ---- Remote network (NET) ----

func ErrRemoteNetwork(err error) *AppError {
	return Wrap(CodeRemoteNetwork, "Payment network request failed", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Not allowed to act on this account", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
