package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_001", "Invalid amount", http.StatusBadRequest),
			expected: "[LED_001] Invalid amount",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, New("LED_001", "test", http.StatusBadRequest).Unwrap())
}

func TestLedgerAndGrantErrors(t *testing.T) {
	inner := fmt.Errorf("boom")
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount(), CodeInvalidAmount, 400},
		{"InvalidAmountCause", ErrInvalidAmountCause(inner), CodeInvalidAmount, 400},
		{"LedgerUpdateFailed", ErrLedgerUpdateFailed(inner), CodeLedgerUpdateFailed, 503},
		{"AssetMismatch", ErrAssetMismatch("kid-1"), CodeAssetMismatch, 422},
		{"WalletNotConfigured", ErrWalletNotConfigured("kid-1"), CodeWalletNotConfigured, 422},
		{"GrantNotFinalized", ErrGrantNotFinalized("quote"), CodeGrantNotFinalized, 502},
		{"GrantNotApproved", ErrGrantNotApproved(inner), CodeGrantNotApproved, 409},
		{"InvalidState", ErrInvalidState("already completed"), CodeInvalidState, 409},
		{"InvalidInteraction", ErrInvalidInteraction(), CodeInvalidInteraction, 400},
		{"InteractionReplayed", ErrInteractionReplayed(), CodeInvalidInteraction, 400},
		{"RemoteNetwork", ErrRemoteNetwork(inner), CodeRemoteNetwork, 502},
		{"NotFound", ErrNotFound("Grant"), CodeNotFound, 404},
		{"Validation", Validation("bad"), CodeValidation, 400},
		{"InvalidToken", ErrInvalidToken(), "AUTH_001", 401},
		{"Forbidden", ErrForbidden(), "AUTH_002", 403},
		{"RateLimit", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	lockErr := ErrLockTimeout(inner)
	assert.Equal(t, "SYS_002", lockErr.Code)
	assert.Equal(t, 503, lockErr.HTTPStatus)

	encErr := ErrEncryptionFailure(inner)
	assert.Equal(t, "SYS_003", encErr.Code)
}

func TestHasCode(t *testing.T) {
	base := ErrInvalidState("grant already completed")
	wrapped := fmt.Errorf("complete grant: %w", base)

	assert.True(t, HasCode(base, CodeInvalidState))
	assert.True(t, HasCode(wrapped, CodeInvalidState))
	assert.False(t, HasCode(wrapped, CodeGrantNotApproved))
	assert.False(t, HasCode(fmt.Errorf("plain"), CodeInvalidState))
	assert.False(t, HasCode(nil, CodeInvalidState))

	nested := ErrGrantNotApproved(ErrRemoteNetwork(fmt.Errorf("503")))
	assert.True(t, HasCode(nested, CodeGrantNotApproved))
	assert.True(t, HasCode(nested, CodeRemoteNetwork))
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Grant state")
	assert.Contains(t, err.Message, "Grant state")
}
