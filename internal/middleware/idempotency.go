package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"barangay-payroll/internal/shared/apperror"
	"barangay-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyCacheKey = "idempotency_cache_key"
	IdempotencyLockKey  = "idempotency_lock_key"

	idempotencyLockTTL = 60 * time.Second
)

// Idempotency replays the stored result of a POST carrying an Idempotency-Key already seen
// for the same user and route, and rejects a duplicate that is still running.
// The handler stores its result under IdempotencyCacheKey and releases IdempotencyLockKey.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := c.GetString("user_id_validated")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cached any
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.Header("Idempotent-Replayed", "true")
				response.Success(c, http.StatusOK, cached, nil)
				c.Abort()
				return
			}
		}

		isNew, err := rdb.SetNX(c.Request.Context(), lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			response.Abort(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "Idempotency store unavailable", nil)
			return
		}
		if !isNew {
			response.Abort(c, http.StatusConflict, apperror.CodeRequestInProgress, "A request with this Idempotency-Key is still being processed", nil)
			return
		}

		c.Set(IdempotencyCacheKey, cacheKey)
		c.Set(IdempotencyLockKey, lockKey)

		c.Next()
	}
}
