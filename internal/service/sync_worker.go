package service

import (
	"context"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const syncWorkerBatch = 100

// SyncWorker periodically reconciles every account that has network
// credentials, after recovering grant flows that stalled mid-continuation.
type SyncWorker struct {
	accounts    ports.AccountDirectory
	sync        ports.SyncService
	grants      ports.GrantRecoverer
	interval    time.Duration
	concurrency int
	log         zerolog.Logger
}

// NewSyncWorker creates a SyncWorker. An interval of zero disables Run.
// grants may be nil.
func NewSyncWorker(accounts ports.AccountDirectory, sync ports.SyncService, grants ports.GrantRecoverer, cfg config.SyncConfig, log zerolog.Logger) *SyncWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &SyncWorker{
		accounts:    accounts,
		sync:        sync,
		grants:      grants,
		interval:    cfg.Interval,
		concurrency: cfg.Concurrency,
		log:         log,
	}
}

// Enabled reports whether Run does anything.
func (w *SyncWorker) Enabled() bool {
	return w.interval > 0
}

// Run syncs all accounts every interval until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context) {
	if !w.Enabled() {
		return
	}
	w.log.Info().Dur("interval", w.interval).Int("concurrency", w.concurrency).Msg("sync worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("sync worker stopped")
			return
		case <-ticker.C:
			w.recoverGrants(ctx)
			n, err := w.RunOnce(ctx)
			if err != nil {
				w.log.Error().Err(err).Int("accounts", n).Msg("sync pass aborted")
				continue
			}
			w.log.Debug().Int("accounts", n).Msg("sync pass finished")
		}
	}
}

func (w *SyncWorker) recoverGrants(ctx context.Context) {
	if w.grants == nil {
		return
	}
	n, err := w.grants.RecoverStalled(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stalled grant recovery failed")
		return
	}
	if n > 0 {
		w.log.Info().Int("grants", n).Msg("stalled grants recovered")
	}
}

// RunOnce syncs every account with a wallet once and returns how many were
// attempted. Per-account failures are logged, not returned.
func (w *SyncWorker) RunOnce(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	attempted := 0
	after := ""
	for {
		batch, err := w.accounts.ListWithWallet(ctx, after, syncWorkerBatch)
		if err != nil {
			_ = g.Wait()
			return attempted, err
		}
		for _, account := range batch {
			id := account.ID
			attempted++
			g.Go(func() error {
				if _, err := w.sync.SyncAccount(gctx, id); err != nil {
					w.log.Warn().Err(err).Str("account_id", id).Msg("account sync failed")
				}
				return nil
			})
		}
		if len(batch) < syncWorkerBatch {
			break
		}
		after = batch[len(batch)-1].ID
	}
	return attempted, g.Wait()
}
