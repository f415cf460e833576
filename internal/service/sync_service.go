package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/domain"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/apperror"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/money"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSyncPageSize = 50
	defaultSyncMaxPages = 20
)

// SyncServiceImpl implements ports.SyncService.
type SyncServiceImpl struct {
	accounts ports.AccountDirectory
	clients  ports.ClientFactory
	records  ports.RecordStore
	ledger   ports.LedgerService
	pageSize int
	maxPages int
	log      zerolog.Logger
}

// NewSyncService creates a new SyncServiceImpl.
func NewSyncService(
	accounts ports.AccountDirectory,
	clients ports.ClientFactory,
	records ports.RecordStore,
	ledger ports.LedgerService,
	cfg config.SyncConfig,
	log zerolog.Logger,
) *SyncServiceImpl {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultSyncPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultSyncMaxPages
	}
	return &SyncServiceImpl{
		accounts: accounts,
		clients:  clients,
		records:  records,
		ledger:   ledger,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		log:      log,
	}
}

// directionSync is what one side of a sync produced.
type directionSync struct {
	summary *domain.PaymentSummary
	errs    []domain.SyncError
}

// SyncAccount pulls both payment directions from the network, records them
// and reports the resulting balance. Failures on one side are reported in
// the result and never abort the other side.
func (s *SyncServiceImpl) SyncAccount(ctx context.Context, accountID string) (*domain.SyncResult, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if !account.HasWallet() {
		return nil, apperror.ErrWalletNotConfigured(account.ID)
	}
	client, err := s.clients.ForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	result := &domain.SyncResult{AccountID: accountID, Errors: []domain.SyncError{}}

	wallet, err := client.GetWalletAddress(ctx, account.WalletAddressURL)
	if err != nil {
		msg := fmt.Sprintf("wallet address: %v", err)
		result.Errors = append(result.Errors,
			domain.SyncError{Kind: domain.SyncErrorIncoming, Error: msg},
			domain.SyncError{Kind: domain.SyncErrorOutgoing, Error: msg},
		)
	} else {
		var incoming, outgoing directionSync
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			incoming = s.syncDirection(gctx, client, account.ID, wallet, domain.DirectionIncoming)
			return nil
		})
		g.Go(func() error {
			outgoing = s.syncDirection(gctx, client, account.ID, wallet, domain.DirectionOutgoing)
			return nil
		})
		_ = g.Wait()

		result.Incoming, result.Outgoing = incoming.summary, outgoing.summary
		result.Errors = append(result.Errors, incoming.errs...)
		result.Errors = append(result.Errors, outgoing.errs...)
	}

	// settling here also catches up a balance whose earlier settle failed
	settled, err := s.ledger.Settle(ctx, accountID)
	switch {
	case err != nil:
		result.Errors = append(result.Errors, domain.SyncError{Kind: domain.SyncErrorBalance, Error: err.Error()})
	case settled.Balance == nil:
		result.Balance = domain.ZeroBalance(accountID)
	default:
		result.Balance = settled.Balance
	}
	result.SyncedAt = time.Now().UTC()

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "partial"
		s.log.Warn().Str("account_id", accountID).Interface("errors", result.Errors).Msg("sync finished with errors")
	} else {
		s.log.Info().Str("account_id", accountID).Msg("sync finished")
	}
	metrics.SyncRunsTotal.WithLabelValues(outcome).Inc()

	return result, nil
}

func (s *SyncServiceImpl) syncDirection(ctx context.Context, client ports.PaymentNetworkClient, accountID string, wallet *domain.WalletAddress, direction domain.Direction) directionSync {
	kind := domain.SyncErrorIncoming
	if direction == domain.DirectionOutgoing {
		kind = domain.SyncErrorOutgoing
	}

	items, err := s.list(ctx, client, wallet, direction)
	if err != nil {
		return directionSync{errs: []domain.SyncError{{Kind: kind, Error: err.Error()}}}
	}

	summary := summarize(items, direction)
	out := directionSync{summary: summary}

	persisted, err := s.records.Persist(ctx, accountID, items, direction)
	if err != nil {
		out.errs = append(out.errs, domain.SyncError{Kind: kind, Error: fmt.Sprintf("persist: %v", err)})
		return out
	}
	summary.Persisted = len(persisted.RecordIDs)
	return out
}

func (s *SyncServiceImpl) list(ctx context.Context, client ports.PaymentNetworkClient, wallet *domain.WalletAddress, direction domain.Direction) ([]domain.RemotePayment, error) {
	return listRemotePayments(ctx, client, wallet, direction, s.pageSize, s.maxPages, s.log)
}

// listRemotePayments obtains a non-interactive list grant and walks the pages.
func listRemotePayments(ctx context.Context, client ports.PaymentNetworkClient, wallet *domain.WalletAddress, direction domain.Direction, pageSize, maxPages int, log zerolog.Logger) ([]domain.RemotePayment, error) {
	access := domain.AccessItem{
		Type:    domain.AccessIncomingPayment,
		Actions: []string{domain.ActionList, domain.ActionRead, domain.ActionReadAll},
	}
	listPage := client.ListIncomingPayments
	if direction == domain.DirectionOutgoing {
		access = domain.AccessItem{
			Type:       domain.AccessOutgoingPayment,
			Actions:    []string{domain.ActionList, domain.ActionListAll, domain.ActionRead, domain.ActionReadAll},
			Identifier: wallet.ID,
		}
		listPage = client.ListOutgoingPayments
	}

	grant, err := client.RequestGrant(ctx, wallet.AuthServer, ports.GrantRequest{
		AccessToken: ports.GrantAccess{Access: []domain.AccessItem{access}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s grant: %w", access.Type, err)
	}
	if !grant.IsFinalized() {
		return nil, apperror.ErrGrantNotFinalized(access.Type)
	}

	items := make([]domain.RemotePayment, 0)
	cursor := ""
	for page := 0; page < maxPages; page++ {
		res, err := listPage(ctx, wallet.ResourceServer, grant.AccessToken.Value, ports.ListQuery{
			WalletAddress: wallet.ID,
			First:         pageSize,
			Cursor:        cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s payments: %w", direction, err)
		}
		items = append(items, res.Result...)
		if !res.Pagination.HasNextPage || res.Pagination.EndCursor == "" {
			return items, nil
		}
		cursor = res.Pagination.EndCursor
	}

	log.Warn().
		Str("wallet", wallet.ID).
		Str("direction", string(direction)).
		Int("max_pages", maxPages).
		Msg("payment listing truncated")
	return items, nil
}

// summarize totals the resolvable amounts and renders them with the asset
// of the first item that has one.
func summarize(items []domain.RemotePayment, direction domain.Direction) *domain.PaymentSummary {
	summary := &domain.PaymentSummary{Items: items, TotalAtomic: new(big.Int)}
	assetSet := false
	for i := range items {
		amount, err := items[i].Resolve(direction)
		if err != nil {
			continue
		}
		if !assetSet {
			summary.AssetCode, summary.AssetScale = amount.AssetCode, amount.AssetScale
			assetSet = true
		}
		summary.TotalAtomic.Add(summary.TotalAtomic, amount.Atomic)
	}
	summary.TotalHuman = money.ToHuman(summary.TotalAtomic, summary.AssetScale)
	return summary
}
