package app

import (
	"barangay-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resources owns the connections a process opened; Close releases them.
type Resources struct {
	GormDB *gorm.DB
	Redis  *redis.Client
}

func (r *Resources) Close() {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.GormDB != nil {
		if sqlDB, err := r.GormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// BuildApp connects infrastructure, migrates and mounts the payroll routes on router.
func BuildApp(router *gin.Engine, cfg Config) (*Resources, error) {
	logger := zap.L().Named("app")

	if err := cfg.RequireHTTP(); err != nil {
		return nil, err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")
	res := &Resources{GormDB: gormDB}

	if cfg.Redis != "" {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, 5)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.Redis = rdb
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, summary cache and idempotency keys disabled")
	}

	if cfg.AutoMigrate {
		if err := Migrate(gormDB, logger); err != nil {
			res.Close()
			return nil, err
		}
	}

	if err := registerModules(router, cfg, gormDB, res.Redis, logger); err != nil {
		res.Close()
		return nil, err
	}
	return res, nil
}
