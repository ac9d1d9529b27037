package handler

import (
	"storefront-core/internal/adapter/http/middleware"
	redisStore "storefront-core/internal/adapter/storage/redis"
	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ApprovalSvc      ports.ApprovalService
	WalletSvc        ports.WalletService
	ReportingSvc     ports.ReportingService
	NotificationRepo ports.NotificationRepository
	TokenSvc         ports.TokenService
	RateLimitStore   *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers   []ports.HealthChecker
	AuditSvc         ports.AuditService // nil = audit logging disabled
	Logger           zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit
	r.Use(middleware.Metrics())

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
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

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Action request workflow ---
	actionHandler := NewActionHandler(deps.ApprovalSvc)
	actions := v1.Group("/actions", jwtAuth)
	{
		actions.POST("", rl("actions_submit"), actionHandler.Submit)
		actions.GET("/pending", adminOnly, rl("actions_resolve"), actionHandler.ListPending)
		actions.GET("/:id", actionHandler.Get)
		actions.POST("/:id/approve", adminOnly, rl("actions_resolve"), actionHandler.Approve)
		actions.POST("/:id/reject", adminOnly, rl("actions_resolve"), actionHandler.Reject)
	}

	// --- Wallets & ledger ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", rl("wallets"), walletHandler.GetBalance)
		wallets.GET("/history", rl("wallets"), walletHandler.GetHistory)
		wallets.POST("/credit", adminOnly, rl("wallets_credit"), walletHandler.Credit)
	}

	// --- Dashboard & notifications ---
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc, deps.NotificationRepo)
	dashboard := v1.Group("/dashboard", jwtAuth, adminOnly)
	{
		dashboard.GET("/stats", rl("dashboard"), dashboardHandler.GetStats)
	}

	notifications := v1.Group("/notifications", jwtAuth)
	{
		notifications.GET("", rl("dashboard"), dashboardHandler.ListNotifications)
	}

	return r
}
