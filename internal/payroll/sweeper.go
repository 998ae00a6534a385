package payroll

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper moves RELEASED entries to ARCHIVED so at most one released period is current.
type Sweeper struct {
	logger *zap.Logger
}

func NewSweeper(logger *zap.Logger) Sweeper {
	if logger == nil {
		logger = zap.L()
	}
	return Sweeper{logger: logger.Named("sweeper")}
}

// Sweep archives every RELEASED entry, or with before set only those ending before it.
// repo should be bound to the caller's transaction.
func (s Sweeper) Sweep(ctx context.Context, repo Repository, before *time.Time, at time.Time) (int64, error) {
	n, err := repo.ArchiveReleased(ctx, before, at)
	if err != nil {
		s.logger.Error("archive released payroll entries failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		fields := []zap.Field{zap.Int64("archived", n)}
		if before != nil {
			fields = append(fields, zap.String("ending_before", before.Format(dateLayout)))
		}
		s.logger.Info("released payroll entries archived", fields...)
	}
	return n, nil
}
