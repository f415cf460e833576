package handler

import (
	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/dto"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/middleware"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderIdempotencyKey makes a retried local transfer replay its first result.
const HeaderIdempotencyKey = "Idempotency-Key"

// grantRejectedResult is the finish redirect result sent when the account
// holder declines the grant.
const grantRejectedResult = "grant_rejected"

// TransferHandler serves local transfers and interactive grant flows.
type TransferHandler struct {
	accounts ports.AccountDirectory
	records  ports.RecordStore
	grants   ports.GrantOrchestrator
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(accounts ports.AccountDirectory, records ports.RecordStore, grants ports.GrantOrchestrator) *TransferHandler {
	return &TransferHandler{accounts: accounts, records: records, grants: grants}
}

// LocalTransfer handles POST /api/v1/transfers/local. The actor must be
// allowed to act on both accounts.
func (h *TransferHandler) LocalTransfer(c *gin.Context) {
	var req dto.LocalTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if _, err := authorize(c, h.accounts, req.FromAccountID); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := authorize(c, h.accounts, req.ToAccountID); err != nil {
		response.Error(c, err)
		return
	}

	idemKey := c.GetHeader(HeaderIdempotencyKey)
	if len(idemKey) > 128 {
		response.Error(c, apperror.Validation("Idempotency-Key must be at most 128 characters"))
		return
	}

	result, err := h.records.RecordLocalTransfer(c.Request.Context(), ports.LocalTransferRequest{
		FromAccountID:  req.FromAccountID,
		ToAccountID:    req.ToAccountID,
		Amount:         req.Amount,
		AssetCode:      req.AssetCode,
		AssetScale:     *req.AssetScale,
		Description:    req.Description,
		Reference:      req.Reference,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.LocalTransferResponse{
		CorrelationID:    result.CorrelationID,
		OutgoingRecordID: result.OutgoingRecordID,
		IncomingRecordID: result.IncomingRecordID,
		AmountAtomic:     atomicString(result.AmountAtomic),
		FromBalance:      toBalanceResponse(result.FromBalance),
		ToBalance:        toBalanceResponse(result.ToBalance),
	})
}

// CreateGrant handles POST /api/v1/transfers/grants. The receiver only
// needs to exist; the sender must be the actor or one of its dependents.
func (h *TransferHandler) CreateGrant(c *gin.Context) {
	var req dto.GrantFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if _, err := authorize(c, h.accounts, req.FromAccountID); err != nil {
		response.Error(c, err)
		return
	}

	state, err := h.grants.CreateGrantFlow(c.Request.Context(), ports.GrantFlowRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toGrantStateResponse(state))
}

// GetGrant handles GET /api/v1/transfers/grants/:id.
func (h *TransferHandler) GetGrant(c *gin.Context) {
	state, ok := h.loadOwnedGrant(c)
	if !ok {
		return
	}
	response.OK(c, toGrantStateResponse(state))
}

// CompleteGrant handles POST /api/v1/transfers/grants/:id/complete, for
// clients that poll instead of following the finish redirect.
func (h *TransferHandler) CompleteGrant(c *gin.Context) {
	state, ok := h.loadOwnedGrant(c)
	if !ok {
		return
	}

	state, err := h.grants.CompletePendingTransaction(c.Request.Context(), state.ID, "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toGrantStateResponse(state))
}

// FinishGrant handles GET /api/v1/transfers/grants/:id/finish, the
// redirect target of the auth server. It is not authenticated; the
// interaction hash and the one-time interact_ref stand in for it. A
// result=grant_rejected redirect fails the grant.
func (h *TransferHandler) FinishGrant(c *gin.Context) {
	grantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("Grant"))
		return
	}

	var state *domain.GrantState
	if c.Query("result") == grantRejectedResult {
		state, err = h.grants.RejectInteraction(c.Request.Context(), grantID, "grant rejected by account holder")
	} else {
		state, err = h.grants.FinishInteraction(c.Request.Context(), grantID, c.Query("interact_ref"), c.Query("hash"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toGrantStateResponse(state))
}

// loadOwnedGrant resolves the :id grant and checks that the actor may act
// on its sender. Errors are written to the response.
func (h *TransferHandler) loadOwnedGrant(c *gin.Context) (*domain.GrantState, bool) {
	grantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("Grant"))
		return nil, false
	}

	state, err := h.grants.GetGrantState(c.Request.Context(), grantID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	actor := c.GetString(middleware.CtxAccountID)
	if actor == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, false
	}
	if _, err := authorizeActor(c.Request.Context(), h.accounts, actor, state.SenderAccountID); err != nil {
		// Do not reveal grants that belong to other families.
		if apperror.HasCode(err, apperror.CodeForbidden) {
			err = apperror.ErrNotFound("Grant")
		}
		response.Error(c, err)
		return nil, false
	}
	return state, true
}
