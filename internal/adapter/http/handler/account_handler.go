package handler

import (
	"strconv"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/dto"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves per-account ledger reads and reconciliation.
type AccountHandler struct {
	accounts ports.AccountDirectory
	ledger   ports.LedgerService
	sync     ports.SyncService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts ports.AccountDirectory, ledger ports.LedgerService, sync ports.SyncService) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger, sync: sync}
}

// Sync handles POST /api/v1/accounts/:id/sync.
func (h *AccountHandler) Sync(c *gin.Context) {
	account, err := authorize(c, h.accounts, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.sync.SyncAccount(c.Request.Context(), account.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSyncResponse(result))
}

// GetBalance handles GET /api/v1/accounts/:id/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	account, err := authorize(c, h.accounts, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), account.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBalanceResponse(balance))
}

// ListTransactions handles GET /api/v1/accounts/:id/transactions.
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	account, err := authorize(c, h.accounts, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	params := ports.TransactionListParams{AccountID: account.ID}
	if d := c.Query("direction"); d != "" {
		dir := domain.Direction(d)
		params.Direction = &dir
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			response.Error(c, apperror.Validation("limit must be a non-negative integer"))
			return
		}
		params.Limit = limit
	}

	records, err := h.ledger.GetTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(records))
	for i := range records {
		items = append(items, toTransactionResponse(&records[i]))
	}
	response.OK(c, dto.TransactionListResponse{Items: items, Count: len(items)})
}
