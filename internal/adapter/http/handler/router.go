package handler

import (
	"github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/http/middleware"
	redisStore "github.com/isaoPastelin/Interledger-Hackathon/internal/adapter/storage/redis"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Accounts       ports.AccountDirectory
	Ledger         ports.LedgerService
	Records        ports.RecordStore
	Grants         ports.GrantOrchestrator
	Sync           ports.SyncService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID(uuid.NewString))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	accountHandler := NewAccountHandler(deps.Accounts, deps.Ledger, deps.Sync)
	transferHandler := NewTransferHandler(deps.Accounts, deps.Records, deps.Grants)

	// --- Public routes (no auth) ---
	// The auth server redirects the sender's browser here after approval.
	v1.GET("/transfers/grants/:id/finish", rl("finish"), transferHandler.FinishGrant)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	accounts := v1.Group("/accounts/:id", jwtAuth)
	{
		accounts.POST("/sync", rl("sync"), accountHandler.Sync)
		accounts.GET("/balance", rl("reads"), accountHandler.GetBalance)
		accounts.GET("/transactions", rl("reads"), accountHandler.ListTransactions)
	}

	transfers := v1.Group("/transfers", jwtAuth)
	{
		transfers.POST("/local", rl("transfers"), transferHandler.LocalTransfer)
		transfers.POST("/grants", rl("grants"), transferHandler.CreateGrant)
		transfers.GET("/grants/:id", rl("reads"), transferHandler.GetGrant)
		transfers.POST("/grants/:id/complete", rl("grants"), transferHandler.CompleteGrant)
	}

	return r
}
