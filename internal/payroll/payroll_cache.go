package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	summaryVersionKey = "payroll:summary:version"
	summaryTTL        = 30 * time.Minute
)

// GetSummaryKey is versioned: every generate or release bumps the version, which drops
// frozen summaries of every period at once (a release also archives older periods).
func GetSummaryKey(version string, period Period) string {
	return fmt.Sprintf("payroll:summary:%s:%s:%s", version, period.Start.Format(dateLayout), period.End.Format(dateLayout))
}

func (s *service) summaryVersion(ctx context.Context) string {
	v, err := s.rdb.Get(ctx, summaryVersionKey).Result()
	if err == redis.Nil {
		return "0"
	}
	if err != nil {
		s.logger.Warn("read summary cache version failed", zap.Error(err))
		return ""
	}
	return v
}

func (s *service) cachedSummary(ctx context.Context, key string) (SummaryResponse, bool) {
	cached, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return SummaryResponse{}, false
	}
	var resp SummaryResponse
	if err := json.Unmarshal([]byte(cached), &resp); err != nil {
		return SummaryResponse{}, false
	}
	return resp, true
}

func (s *service) storeSummary(ctx context.Context, key string, resp SummaryResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, summaryTTL).Err(); err != nil {
		s.logger.Warn("store summary cache failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *service) invalidateSummaries(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, summaryVersionKey).Err(); err != nil {
		s.logger.Error("invalidate summary cache failed", zap.Error(err))
	}
}
