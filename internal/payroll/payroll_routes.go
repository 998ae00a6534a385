package payroll

import (
	"barangay-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	JWTSecret []byte
	Logger    *zap.Logger
	Redis     *redis.Client
	// MutationRate limits generate/release per user (requests per second).
	MutationRate  rate.Limit
	MutationBurst int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	cfg RouteConfig,
) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	if cfg.MutationRate == 0 {
		cfg.MutationRate = rate.Limit(1)
	}
	if cfg.MutationBurst == 0 {
		cfg.MutationBurst = 3
	}

	payroll := r.Group("/payroll")
	payroll.Use(
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.ExtractUserID(),
		middleware.ContextLogger(logger),
	)
	{
		payroll.GET("/summary", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.Summary)
		payroll.GET("/summary/export", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.ExportSummary)
		payroll.GET("/entries", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.ListEntries)
		payroll.GET("/entries/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetEntry)

		// Authorization runs before the idempotency lock so a rejected call leaves no lock behind.
		mutating := func(action string, h gin.HandlerFunc) []gin.HandlerFunc {
			chain := []gin.HandlerFunc{
				middleware.RateLimitByUser(cfg.MutationRate, cfg.MutationBurst),
				middleware.RBACAuthorize(rbacService, "payroll", action),
			}
			if cfg.Redis != nil {
				chain = append(chain, middleware.Idempotency(cfg.Redis))
			}
			return append(chain, h)
		}

		payroll.POST("/generate", mutating("generate", handler.Generate)...)
		payroll.POST("/release", mutating("release", handler.Release)...)
	}
}
