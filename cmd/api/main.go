package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/config"
	httpHandler "github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/handler"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/openpayments"
	pgStorage "github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/storage/postgres"
	redisStorage "github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/storage/redis"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/service"
	"github.com/isaoPastelin/Interledger-Hackathon/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml or ./config/config.yaml)")
	mintToken := flag.String("mint-token", "", "print a bearer token for the given account id and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if *mintToken != "" {
		token, expiresAt, err := tokenSvc.Generate(*mintToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to mint token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n# expires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
		return
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting KidBank ledger")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := pgStorage.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	grantRepo := pgStorage.NewGrantRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	locker := redisStorage.NewLocker(rdb)
	replayGuard := redisStorage.NewReplayGuard(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	clients := openpayments.NewFactory(cfg.OpenPayments, encSvc, logger.WithComponent(log, "openpayments"))

	ledgerSvc := service.NewLedgerService(balanceRepo, txRepo, transactor, cfg.Ledger, logger.WithComponent(log, "ledger"))
	recordStore := service.NewRecordStore(txRepo, ledgerSvc, transactor, idempotencyCache, logger.WithComponent(log, "records"))
	grantSvc := service.NewGrantOrchestrator(
		accountRepo,
		clients,
		grantRepo,
		recordStore,
		locker,
		replayGuard,
		cfg.Grants,
		cfg.OpenPayments.FinishBaseURL,
		logger.WithComponent(log, "grants"),
	)
	syncSvc := service.NewSyncService(accountRepo, clients, recordStore, ledgerSvc, cfg.Sync, logger.WithComponent(log, "sync"))

	// Background reconciliation
	worker := service.NewSyncWorker(accountRepo, syncSvc, grantSvc, cfg.Sync, logger.WithComponent(log, "sync_worker"))
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if worker.Enabled() {
			worker.Run(ctx)
		}
	}()

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Accounts:       accountRepo,
		Ledger:         ledgerSvc,
		Records:        recordStore,
		Grants:         grantSvc,
		Sync:           syncSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         logger.WithComponent(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Sync worker did not stop before shutdown deadline")
	}

	log.Info().Msg("Server exited")
}
