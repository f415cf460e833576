package handler

import (
	"context"
	"math/big"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/dto"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/middleware"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/money"

	"github.com/gin-gonic/gin"
)

// authorize loads accountID and checks that the authenticated actor is the
// account itself or its guardian.
func authorize(c *gin.Context, accounts ports.AccountDirectory, accountID string) (*domain.Account, error) {
	actor := c.GetString(middleware.CtxAccountID)
	if actor == "" {
		return nil, apperror.ErrInvalidToken()
	}
	return authorizeActor(c.Request.Context(), accounts, actor, accountID)
}

func authorizeActor(ctx context.Context, accounts ports.AccountDirectory, actor, accountID string) (*domain.Account, error) {
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.CanBeActedOnBy(actor) {
		return nil, apperror.ErrForbidden()
	}
	return account, nil
}

const timeLayout = time.RFC3339

func atomicString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func toBalanceResponse(b *domain.BalanceRecord) dto.BalanceResponse {
	resp := dto.BalanceResponse{
		AccountID:     b.AccountID,
		BalanceAtomic: atomicString(b.BalanceAtomic),
		BalanceHuman:  b.BalanceHuman,
		AssetCode:     b.AssetCode,
		AssetScale:    b.AssetScale,
	}
	if !b.UpdatedAt.IsZero() {
		s := b.UpdatedAt.Format(timeLayout)
		resp.UpdatedAt = &s
	}
	return resp
}

func toTransactionResponse(r *domain.TransactionRecord) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:            r.ID,
		AccountID:     r.AccountID,
		Direction:     string(r.Direction),
		Status:        string(r.Status),
		AssetCode:     r.AssetCode,
		AssetScale:    r.AssetScale,
		RemoteID:      r.RemoteID,
		CorrelationID: r.CorrelationID,
		UpdatedAt:     r.UpdatedAt.Format(timeLayout),
	}
	if r.AmountAtomic != nil {
		a := r.AmountAtomic.String()
		resp.AmountAtomic = &a
		if r.AssetScale != nil {
			h := money.ToHuman(r.AmountAtomic, *r.AssetScale)
			resp.AmountHuman = &h
		}
	}
	return resp
}

func toGrantStateResponse(g *domain.GrantState) dto.GrantStateResponse {
	resp := dto.GrantStateResponse{
		ID:                g.ID.String(),
		SenderAccountID:   g.SenderAccountID,
		ReceiverAccountID: g.ReceiverAccountID,
		Amount:            g.Amount,
		AmountAtomic:      atomicString(g.AmountAtomic),
		AssetCode:         g.AssetCode,
		AssetScale:        g.AssetScale,
		Status:            string(g.Status),
		Stage:             string(g.Stage),
		OutgoingPaymentID: g.OutgoingPaymentID,
		ErrorMessage:      g.ErrorMessage,
		CreatedAt:         g.CreatedAt.Format(timeLayout),
	}
	// The redirect is only useful while the sender still has to approve.
	if g.Stage == domain.GrantStageAwaitingInteraction {
		resp.RedirectURL = g.RedirectURL
	}
	if g.DebitAmountAtomic != nil {
		d := g.DebitAmountAtomic.String()
		resp.DebitAmountAtomic = &d
	}
	if g.CompletedAt != nil {
		s := g.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &s
	}
	return resp
}

func toSummaryResponse(s *domain.PaymentSummary) *dto.PaymentSummaryResponse {
	if s == nil {
		return nil
	}
	return &dto.PaymentSummaryResponse{
		Count:       len(s.Items),
		Persisted:   s.Persisted,
		TotalAtomic: atomicString(s.TotalAtomic),
		TotalHuman:  s.TotalHuman,
		AssetCode:   s.AssetCode,
		AssetScale:  s.AssetScale,
	}
}

func toSyncResponse(r *domain.SyncResult) dto.SyncResponse {
	resp := dto.SyncResponse{
		AccountID: r.AccountID,
		Incoming:  toSummaryResponse(r.Incoming),
		Outgoing:  toSummaryResponse(r.Outgoing),
		Errors:    make([]dto.SyncErrorResponse, 0, len(r.Errors)),
		SyncedAt:  r.SyncedAt.Format(timeLayout),
	}
	if r.Balance != nil {
		b := toBalanceResponse(r.Balance)
		resp.Balance = &b
	}
	for _, e := range r.Errors {
		resp.Errors = append(resp.Errors, dto.SyncErrorResponse{Kind: string(e.Kind), Error: e.Error})
	}
	return resp
}
