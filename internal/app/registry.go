package app

import (
	"net/http"

	"barangay-payroll/internal/bootstrap"
	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/employeesalary"
	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/messaging/kafka"
	"barangay-payroll/internal/middleware"
	"barangay-payroll/internal/overload"
	"barangay-payroll/internal/payroll"
	"barangay-payroll/internal/rbac"
	"barangay-payroll/internal/rbac/infra"
	"barangay-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	salaryRepo := employeesalary.NewRepository(gormDB)
	deductionRepo := deduction.NewRepository(gormDB)
	loanRepo := loan.NewRepository(gormDB)
	overloadRepo := overload.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(); err != nil {
		return err
	}

	// --- Services ---
	payrollService := payroll.NewService(payroll.Dependencies{
		DB:           db,
		Repo:         payrollRepo,
		Directory:    employee.NewDirectory(employeeRepo, salaryRepo),
		Deductions:   deductionRepo,
		Loans:        loanRepo,
		Supplemental: overloadRepo,
		Outbox:       outboxRepo,
		Redis:        rdb,
		Audit:        bootstrap.NewStdoutAuditLogger(logger),
		Location:     cfg.Timezone,
	}, logger)

	// --- Handlers ---
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb)

	// --- Routes ---
	router.Use(middleware.RequestID())
	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	payroll.RegisterRoutes(api, payrollHandler, rbacService, payroll.RouteConfig{
		JWTSecret: cfg.JWT,
		Logger:    logger,
		Redis:     rdb,
	})

	return nil
}
