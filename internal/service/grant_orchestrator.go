package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultLockTTL        = 30 * time.Second
	defaultIncomingExpiry = 10 * time.Minute
	defaultStallTimeout   = 5 * time.Minute
	interactionReplayTTL  = 24 * time.Hour
	quoteMethodILP        = "ilp"
	stalledBatchSize      = 20
)

var errAwaitingApproval = errors.New("grant still awaiting approval")

// GrantOrchestratorImpl implements ports.GrantOrchestrator.
type GrantOrchestratorImpl struct {
	accounts       ports.AccountDirectory
	clients        ports.ClientFactory
	grants         ports.GrantStateRepository
	records        ports.RecordStore
	locker         ports.Locker
	replay         ports.ReplayGuard
	incomingExpiry time.Duration
	lockTTL        time.Duration
	stallTimeout   time.Duration
	finishBaseURL  string
	log            zerolog.Logger
}

// NewGrantOrchestrator creates a new GrantOrchestratorImpl. finishBaseURL
// may be empty, in which case no finish redirect is requested and callers
// complete grants by polling.
func NewGrantOrchestrator(
	accounts ports.AccountDirectory,
	clients ports.ClientFactory,
	grants ports.GrantStateRepository,
	records ports.RecordStore,
	locker ports.Locker,
	replay ports.ReplayGuard,
	cfg config.GrantsConfig,
	finishBaseURL string,
	log zerolog.Logger,
) *GrantOrchestratorImpl {
	if cfg.IncomingPaymentExpiry <= 0 {
		cfg.IncomingPaymentExpiry = defaultIncomingExpiry
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = defaultStallTimeout
	}
	return &GrantOrchestratorImpl{
		accounts:       accounts,
		clients:        clients,
		grants:         grants,
		records:        records,
		locker:         locker,
		replay:         replay,
		incomingExpiry: cfg.IncomingPaymentExpiry,
		lockTTL:        cfg.LockTTL,
		stallTimeout:   cfg.StallTimeout,
		finishBaseURL:  strings.TrimRight(finishBaseURL, "/"),
		log:            log,
	}
}

// CreateGrantFlow prepares a network transfer up to the point where the
// sender has to approve it. Nothing is stored until the interactive grant
// has been issued.
func (o *GrantOrchestratorImpl) CreateGrantFlow(ctx context.Context, req ports.GrantFlowRequest) (*domain.GrantState, error) {
	sender, err := o.walletAccount(ctx, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	receiver, err := o.walletAccount(ctx, req.ToAccountID)
	if err != nil {
		return nil, err
	}

	senderClient, err := o.clients.ForAccount(ctx, sender)
	if err != nil {
		return nil, err
	}
	receiverClient, err := o.clients.ForAccount(ctx, receiver)
	if err != nil {
		return nil, err
	}

	senderWallet, err := senderClient.GetWalletAddress(ctx, sender.WalletAddressURL)
	if err != nil {
		return nil, apperror.ErrRemoteNetwork(fmt.Errorf("sender wallet address: %w", err))
	}
	receiverWallet, err := receiverClient.GetWalletAddress(ctx, receiver.WalletAddressURL)
	if err != nil {
		return nil, apperror.ErrRemoteNetwork(fmt.Errorf("receiver wallet address: %w", err))
	}

	amount, err := money.ToAtomic(req.Amount, receiverWallet.AssetScale)
	if err != nil {
		return nil, apperror.ErrInvalidAmountCause(err)
	}
	if amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	// Receiver side: incoming payment for the requested amount.
	incomingGrant, err := receiverClient.RequestGrant(ctx, receiverWallet.AuthServer, ports.GrantRequest{
		AccessToken: ports.GrantAccess{Access: []domain.AccessItem{{
			Type:    domain.AccessIncomingPayment,
			Actions: []string{domain.ActionRead, domain.ActionComplete, domain.ActionCreate},
		}}},
	})
	if err != nil {
		return nil, apperror.ErrRemoteNetwork(fmt.Errorf("incoming-payment grant: %w", err))
	}
	if !incomingGrant.IsFinalized() {
		return nil, apperror.ErrGrantNotFinalized(domain.AccessIncomingPayment)
	}

	expiresAt := time.Now().UTC().Add(o.incomingExpiry)
	incoming, err := o.createIncomingPayment(ctx, receiverClient, receiverWallet.ResourceServer, incomingGrant.AccessToken.Value, ports.IncomingPaymentRequest{
		WalletAddress: receiverWallet.ID,
		IncomingAmount: &domain.PaymentAmount{
			Value:      amount.String(),
			AssetCode:  receiverWallet.AssetCode,
			AssetScale: receiverWallet.AssetScale,
		},
		ExpiresAt: &expiresAt,
		Metadata:  map[string]any{"description": req.Description},
	})
	if err != nil {
		return nil, err
	}

	// Sender side: quote against the incoming payment.
	quoteGrant, err := senderClient.RequestGrant(ctx, senderWallet.AuthServer, ports.GrantRequest{
		AccessToken: ports.GrantAccess{Access: []domain.AccessItem{{
			Type:    domain.AccessQuote,
			Actions: []string{domain.ActionCreate, domain.ActionRead},
		}}},
	})
	if err != nil {
		return nil, apperror.ErrRemoteNetwork(fmt.Errorf("quote grant: %w", err))
	}
	if !quoteGrant.IsFinalized() {
		return nil, apperror.ErrGrantNotFinalized(domain.AccessQuote)
	}

	quote, err := senderClient.CreateQuote(ctx, senderWallet.ResourceServer, quoteGrant.AccessToken.Value, ports.QuoteRequest{
		WalletAddress: senderWallet.ID,
		Receiver:      incoming.ID,
		Method:        quoteMethodILP,
	})
	if err != nil {
		return nil, apperror.ErrRemoteNetwork(fmt.Errorf("create quote: %w", err))
	}

	// Interactive outgoing-payment grant, bounded by the quoted debit.
	id := uuid.New()
	debit := quote.DebitAmount
	interact := &ports.InteractRequest{Start: []string{"redirect"}}
	var clientNonce *string
	if o.finishBaseURL != "" {
		nonce := uuid.NewString()
		clientNonce = &nonce
		interact.Finish = &ports.InteractFinish{
			Method: "redirect",
			URI:    o.finishBaseURL + "/api/v1/transfers/grants/" + id.String() + "/finish",
			Nonce:  nonce,
		}
	}
	outgoingGrant, err := senderClient.RequestGrant(ctx, senderWallet.AuthServer, ports.GrantRequest{
		AccessToken: ports.GrantAccess{Access: []domain.AccessItem{{
			Type:       domain.AccessOutgoingPayment,
			Actions:    []string{domain.ActionRead, domain.ActionCreate},
			Identifier: senderWallet.ID,
			Limits:     &domain.AccessLimits{DebitAmount: &debit},
		}}},
		Interact: interact,
	})
	if err != nil {
		return nil, apperror.ErrRemoteNetwork(fmt.Errorf("outgoing-payment grant: %w", err))
	}
	if !outgoingGrant.IsInteractive() {
		return nil, apperror.ErrRemoteNetwork(errors.New("outgoing-payment grant did not request interaction"))
	}

	now := time.Now().UTC()
	state := &domain.GrantState{
		ID:                id,
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		Amount:            req.Amount,
		AmountAtomic:      amount,
		AssetCode:         receiverWallet.AssetCode,
		AssetScale:        receiverWallet.AssetScale,
		Description:       req.Description,
		Status:            domain.GrantStatusPending,
		Stage:             domain.GrantStageAwaitingInteraction,
		IncomingPaymentID: strPtr(incoming.ID),
		QuoteID:           strPtr(quote.ID),
		ContinueURI:       strPtr(outgoingGrant.Continue.URI),
		ContinueToken:     strPtr(outgoingGrant.Continue.AccessToken.Value),
		RedirectURL:       strPtr(outgoingGrant.Interact.Redirect),
		ClientNonce:       clientNonce,
		GrantEndpoint:     strPtr(senderWallet.AuthServer),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if outgoingGrant.Interact.Finish != "" {
		state.FinishNonce = strPtr(outgoingGrant.Interact.Finish)
	}
	if debitAtomic, err := money.ParseAtomic(debit.Value); err == nil {
		state.DebitAmountAtomic = debitAtomic
		state.DebitAssetCode = strPtr(debit.AssetCode)
		state.DebitAssetScale = &debit.AssetScale
	} else {
		o.log.Warn().Err(err).Str("quote_id", quote.ID).Msg("quote carries unreadable debit amount")
	}

	if err := o.grants.Create(ctx, state); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create grant state: %w", err))
	}
	metrics.GrantTransitionsTotal.WithLabelValues(string(state.Stage)).Inc()

	o.log.Info().
		Str("grant_id", id.String()).
		Str("from", sender.ID).
		Str("to", receiver.ID).
		Str("amount", amount.String()).
		Msg("grant flow awaiting interaction")

	return state, nil
}

// createIncomingPayment accepts a validation failure whose body still
// describes an incoming payment with an id.
func (o *GrantOrchestratorImpl) createIncomingPayment(ctx context.Context, client ports.PaymentNetworkClient, resourceServer, token string, req ports.IncomingPaymentRequest) (*domain.RemotePayment, error) {
	incoming, err := client.CreateIncomingPayment(ctx, resourceServer, token, req)
	if err == nil {
		return incoming, nil
	}

	var remote *ports.RemoteError
	if errors.As(err, &remote) && remote.StatusCode < 500 {
		var salvaged domain.RemotePayment
		if remote.DecodeBody(&salvaged) == nil && salvaged.ID != "" {
			o.log.Warn().
				Int("status", remote.StatusCode).
				Str("incoming_payment_id", salvaged.ID).
				Msg("accepting incoming payment from error response")
			return &salvaged, nil
		}
	}
	return nil, apperror.ErrRemoteNetwork(fmt.Errorf("create incoming payment: %w", err))
}

// CompletePendingTransaction continues an approved grant and executes the
// outgoing payment. A grant that is not pending is rejected without any
// remote call.
func (o *GrantOrchestratorImpl) CompletePendingTransaction(ctx context.Context, grantID uuid.UUID, interactRef string) (*domain.GrantState, error) {
	release, err := o.locker.TryLock(ctx, "grant:"+grantID.String(), o.lockTTL)
	if err != nil {
		if errors.Is(err, ports.ErrLockHeld) {
			return nil, apperror.ErrInvalidState("grant is already being completed")
		}
		return nil, apperror.ErrLockTimeout(err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			o.log.Warn().Err(err).Str("grant_id", grantID.String()).Msg("failed to release grant lock")
		}
	}()

	state, err := o.grants.GetByID(ctx, grantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if state == nil {
		return nil, apperror.ErrNotFound("Grant")
	}
	if state.Status != domain.GrantStatusPending || state.Stage != domain.GrantStageAwaitingInteraction {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("grant is %s (%s)", state.Status, state.Stage))
	}

	if err := o.transition(ctx, state, domain.GrantTransition{
		From:   domain.GrantStageAwaitingInteraction,
		To:     domain.GrantStageContinuing,
		Status: domain.GrantStatusPending,
	}); err != nil {
		return nil, err
	}

	sender, client, err := o.senderClient(ctx, state.SenderAccountID)
	if err != nil {
		// Nothing was sent yet, so the grant can be continued later.
		if rerr := o.transition(ctx, state, domain.GrantTransition{
			From:   domain.GrantStageContinuing,
			To:     domain.GrantStageAwaitingInteraction,
			Status: domain.GrantStatusPending,
		}); rerr != nil {
			o.log.Error().Err(rerr).Str("grant_id", grantID.String()).Msg("failed to reopen grant")
		}
		return nil, err
	}

	grant, err := client.ContinueGrant(ctx, deref(state.ContinueURI), deref(state.ContinueToken), interactRef)
	switch {
	case err != nil:
		return nil, o.fail(ctx, state, apperror.ErrGrantNotApproved(err))
	case grant.IsFinalized():
	case grant.IsPending():
		if terr := o.transition(ctx, state, domain.GrantTransition{
			From:          domain.GrantStageContinuing,
			To:            domain.GrantStageAwaitingInteraction,
			Status:        domain.GrantStatusPending,
			ContinueURI:   strPtr(grant.Continue.URI),
			ContinueToken: strPtr(grant.Continue.AccessToken.Value),
		}); terr != nil {
			return nil, terr
		}
		return nil, apperror.ErrGrantNotApproved(errAwaitingApproval)
	default:
		return nil, o.fail(ctx, state, apperror.ErrGrantNotApproved(errors.New("continuation returned no access token")))
	}

	wallet, err := client.GetWalletAddress(ctx, sender.WalletAddressURL)
	if err != nil {
		return nil, o.fail(ctx, state, apperror.ErrRemoteNetwork(fmt.Errorf("sender wallet address: %w", err)))
	}
	payment, err := client.CreateOutgoingPayment(ctx, wallet.ResourceServer, grant.AccessToken.Value, ports.OutgoingPaymentRequest{
		WalletAddress: wallet.ID,
		QuoteID:       deref(state.QuoteID),
		Metadata:      map[string]any{"description": state.Description},
	})
	if err != nil {
		return nil, o.fail(ctx, state, apperror.ErrRemoteNetwork(fmt.Errorf("create outgoing payment: %w", err)))
	}

	return o.finalize(ctx, state, sender.ID, payment)
}

// finalize records an executed outgoing payment and completes the grant.
// The payment is recorded first so that a failed transition still leaves
// the debit in the ledger; the grant is then picked up by RecoverStalled.
func (o *GrantOrchestratorImpl) finalize(ctx context.Context, state *domain.GrantState, senderID string, payment *domain.RemotePayment) (*domain.GrantState, error) {
	if _, err := o.records.Persist(ctx, senderID, []domain.RemotePayment{*payment}, domain.DirectionOutgoing); err != nil {
		o.log.Warn().Err(err).
			Str("grant_id", state.ID.String()).
			Str("outgoing_payment_id", payment.ID).
			Msg("outgoing payment not recorded, left to reconciliation")
	}

	completedAt := time.Now().UTC()
	if err := o.transition(ctx, state, domain.GrantTransition{
		From:              domain.GrantStageContinuing,
		To:                domain.GrantStageFinalized,
		Status:            domain.GrantStatusCompleted,
		OutgoingPaymentID: strPtr(payment.ID),
		CompletedAt:       &completedAt,
	}); err != nil {
		o.log.Error().Err(err).
			Str("grant_id", state.ID.String()).
			Str("outgoing_payment_id", payment.ID).
			Msg("outgoing payment sent but grant not finalized")
		return nil, err
	}

	o.log.Info().
		Str("grant_id", state.ID.String()).
		Str("outgoing_payment_id", payment.ID).
		Msg("grant flow completed")

	return state, nil
}

// RecoverStalled settles grants left in continuing for longer than the
// stall timeout, typically by a crash or a failed write between payment
// creation and finalization. The sender's outgoing payments are searched
// for the grant's quote: a match finalizes the grant, no match fails it.
// Grants whose lookup fails are left for the next run.
func (o *GrantOrchestratorImpl) RecoverStalled(ctx context.Context) (int, error) {
	stalled, err := o.grants.ListStalled(ctx, domain.GrantStageContinuing, time.Now().UTC().Add(-o.stallTimeout), stalledBatchSize)
	if err != nil {
		return 0, apperror.ErrDatabaseError(err)
	}

	recovered := 0
	for i := range stalled {
		if err := ctx.Err(); err != nil {
			return recovered, err
		}
		ok, err := o.recoverOne(ctx, stalled[i].ID)
		if err != nil {
			o.log.Warn().Err(err).Str("grant_id", stalled[i].ID.String()).Msg("stalled grant not recovered")
			continue
		}
		if ok {
			recovered++
		}
	}
	return recovered, nil
}

func (o *GrantOrchestratorImpl) recoverOne(ctx context.Context, grantID uuid.UUID) (bool, error) {
	release, err := o.locker.TryLock(ctx, "grant:"+grantID.String(), o.lockTTL)
	if err != nil {
		if errors.Is(err, ports.ErrLockHeld) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			o.log.Warn().Err(err).Str("grant_id", grantID.String()).Msg("failed to release grant lock")
		}
	}()

	state, err := o.grants.GetByID(ctx, grantID)
	if err != nil {
		return false, err
	}
	if state == nil || state.Status != domain.GrantStatusPending || state.Stage != domain.GrantStageContinuing {
		return false, nil
	}

	sender, client, err := o.senderClient(ctx, state.SenderAccountID)
	if err != nil {
		return false, err
	}
	wallet, err := client.GetWalletAddress(ctx, sender.WalletAddressURL)
	if err != nil {
		return false, fmt.Errorf("sender wallet address: %w", err)
	}
	payments, err := listRemotePayments(ctx, client, wallet, domain.DirectionOutgoing, defaultSyncPageSize, defaultSyncMaxPages, o.log)
	if err != nil {
		return false, err
	}

	quoteID := deref(state.QuoteID)
	for i := range payments {
		if quoteID != "" && payments[i].QuoteID == quoteID {
			o.log.Info().
				Str("grant_id", grantID.String()).
				Str("outgoing_payment_id", payments[i].ID).
				Msg("stalled grant matched its outgoing payment")
			if _, err := o.finalize(ctx, state, sender.ID, &payments[i]); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	_ = o.fail(ctx, state, errors.New("continuation interrupted before the outgoing payment was created"))
	return state.Stage == domain.GrantStageFailed, nil
}

// FinishInteraction handles the redirect back from the auth server. The
// interaction hash is checked when a finish nonce was negotiated, and each
// interact_ref is honoured once.
func (o *GrantOrchestratorImpl) FinishInteraction(ctx context.Context, grantID uuid.UUID, interactRef, hash string) (*domain.GrantState, error) {
	if interactRef == "" {
		return nil, apperror.Validation("interact_ref is required")
	}

	state, err := o.grants.GetByID(ctx, grantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if state == nil {
		return nil, apperror.ErrNotFound("Grant")
	}

	if state.ClientNonce != nil && state.FinishNonce != nil {
		want := InteractionHash(*state.ClientNonce, *state.FinishNonce, interactRef, deref(state.GrantEndpoint))
		if subtle.ConstantTimeCompare([]byte(want), []byte(hash)) != 1 {
			o.log.Warn().Str("grant_id", grantID.String()).Msg("interaction hash mismatch")
			return nil, apperror.ErrInvalidInteraction()
		}
	}

	if o.replay != nil {
		fresh, err := o.replay.Claim(ctx, grantID.String()+":"+interactRef, interactionReplayTTL)
		switch {
		case err != nil:
			o.log.Warn().Err(err).Str("grant_id", grantID.String()).Msg("replay guard unavailable")
		case !fresh:
			return nil, apperror.ErrInteractionReplayed()
		}
	}

	return o.CompletePendingTransaction(ctx, grantID, interactRef)
}

// RejectInteraction fails a grant the account holder declined at the auth
// server. Only a grant still awaiting interaction can be rejected.
func (o *GrantOrchestratorImpl) RejectInteraction(ctx context.Context, grantID uuid.UUID, reason string) (*domain.GrantState, error) {
	state, err := o.grants.GetByID(ctx, grantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if state == nil {
		return nil, apperror.ErrNotFound("Grant")
	}
	if state.Status != domain.GrantStatusPending || state.Stage != domain.GrantStageAwaitingInteraction {
		return nil, apperror.ErrInvalidState(fmt.Sprintf("grant is %s (%s)", state.Status, state.Stage))
	}

	if reason == "" {
		reason = "grant rejected by account holder"
	}
	if err := o.transition(ctx, state, domain.GrantTransition{
		From:         domain.GrantStageAwaitingInteraction,
		To:           domain.GrantStageFailed,
		Status:       domain.GrantStatusFailed,
		ErrorMessage: &reason,
	}); err != nil {
		return nil, err
	}

	o.log.Info().Str("grant_id", grantID.String()).Str("reason", reason).Msg("grant rejected")
	return state, nil
}

// InteractionHash is the GNAP interaction finish hash:
// base64(sha256(clientNonce \n finishNonce \n interactRef \n grantEndpoint)).
func InteractionHash(clientNonce, finishNonce, interactRef, grantEndpoint string) string {
	sum := sha256.Sum256([]byte(clientNonce + "\n" + finishNonce + "\n" + interactRef + "\n" + grantEndpoint))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// GetGrantState returns the stored grant state for polling.
func (o *GrantOrchestratorImpl) GetGrantState(ctx context.Context, grantID uuid.UUID) (*domain.GrantState, error) {
	state, err := o.grants.GetByID(ctx, grantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if state == nil {
		return nil, apperror.ErrNotFound("Grant")
	}
	return state, nil
}

func (o *GrantOrchestratorImpl) walletAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := o.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.HasWallet() {
		return nil, apperror.ErrWalletNotConfigured(account.ID)
	}
	return account, nil
}

func (o *GrantOrchestratorImpl) senderClient(ctx context.Context, accountID string) (*domain.Account, ports.PaymentNetworkClient, error) {
	account, err := o.walletAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	client, err := o.clients.ForAccount(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return account, client, nil
}

// transition applies t to state through the store's compare-and-set and
// mirrors it onto state. A lost race is InvalidState.
func (o *GrantOrchestratorImpl) transition(ctx context.Context, state *domain.GrantState, t domain.GrantTransition) error {
	t.ID = state.ID
	ok, err := o.grants.Transition(ctx, t)
	if err != nil {
		return apperror.ErrDatabaseError(err)
	}
	if !ok {
		return apperror.ErrInvalidState("grant changed concurrently")
	}
	t.Apply(state, time.Now().UTC())
	metrics.GrantTransitionsTotal.WithLabelValues(string(t.To)).Inc()
	return nil
}

// fail moves a continuing grant to failed, keeping cause's message, and
// returns cause.
func (o *GrantOrchestratorImpl) fail(ctx context.Context, state *domain.GrantState, cause error) error {
	msg := cause.Error()
	if err := o.transition(ctx, state, domain.GrantTransition{
		From:         domain.GrantStageContinuing,
		To:           domain.GrantStageFailed,
		Status:       domain.GrantStatusFailed,
		ErrorMessage: &msg,
	}); err != nil {
		o.log.Error().Err(err).Str("grant_id", state.ID.String()).Msg("failed to mark grant failed")
	}
	o.log.Warn().Err(cause).Str("grant_id", state.ID.String()).Msg("grant flow failed")
	return cause
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

