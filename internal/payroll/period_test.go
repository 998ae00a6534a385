package payroll_test

import (
	"testing"
	"time"

	"barangay-payroll/internal/payroll"
	payrollerrors "barangay-payroll/internal/payroll/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func manila(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("PHT", 8*60*60)
}

func TestResolvePeriod(t *testing.T) {
	loc := manila(t)

	t.Run("first half of month", func(t *testing.T) {
		p, err := payroll.ResolvePeriod(nil, nil, time.Date(2026, 3, 10, 9, 0, 0, 0, loc), loc)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01..2026-03-15", p.String())
	})

	t.Run("second half ends on last day of month", func(t *testing.T) {
		p, err := payroll.ResolvePeriod(nil, nil, time.Date(2026, 2, 20, 9, 0, 0, 0, loc), loc)
		require.NoError(t, err)
		assert.Equal(t, "2026-02-16..2026-02-28", p.String())
	})

	t.Run("now is placed on the local calendar day", func(t *testing.T) {
		// 2026-03-15 20:00 UTC is already 2026-03-16 in Manila.
		p, err := payroll.ResolvePeriod(nil, nil, time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC), loc)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-16..2026-03-31", p.String())
	})

	t.Run("explicit period", func(t *testing.T) {
		start, end := date(2026, 1, 1), date(2026, 1, 31)
		p, err := payroll.ResolvePeriod(&start, &end, time.Now(), loc)
		require.NoError(t, err)
		assert.Equal(t, start, p.Start)
		assert.Equal(t, end, p.End)
	})

	t.Run("only one bound", func(t *testing.T) {
		start := date(2026, 1, 1)
		_, err := payroll.ResolvePeriod(&start, nil, time.Now(), loc)
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidPeriod)
	})

	t.Run("start after end", func(t *testing.T) {
		start, end := date(2026, 1, 31), date(2026, 1, 1)
		_, err := payroll.ResolvePeriod(&start, &end, time.Now(), loc)
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidDateRange)
	})
}

func TestPeriod_WorkingDaysAndFactor(t *testing.T) {
	p, err := payroll.NewPeriod(date(2026, 3, 1), date(2026, 3, 15), time.UTC)
	require.NoError(t, err)

	// 2026-03-01 is a Sunday: weekends are 1, 7, 8, 14, 15.
	assert.Equal(t, 10, p.WorkingDays())
	assert.True(t, p.Factor().Equal(p.Snapshot().Factor))
	assert.Equal(t, "1", p.Factor().String())

	single, err := payroll.NewPeriod(date(2026, 3, 2), date(2026, 3, 2), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, single.WorkingDays())
	assert.Equal(t, "1", single.Factor().String())
}

func TestPeriod_Contains(t *testing.T) {
	loc := manila(t)
	p, err := payroll.NewPeriod(date(2026, 3, 1), date(2026, 3, 15), loc)
	require.NoError(t, err)

	assert.True(t, p.Contains(time.Date(2026, 3, 1, 0, 0, 0, 0, loc)))
	assert.True(t, p.Contains(time.Date(2026, 3, 15, 23, 59, 0, 0, loc)))
	assert.False(t, p.Contains(time.Date(2026, 2, 28, 23, 59, 0, 0, loc)))
	// 17:00 UTC on the 15th is 01:00 on the 16th in Manila.
	assert.False(t, p.Contains(time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)))

	assert.True(t, p.OnOrBeforeEnd(time.Date(2025, 12, 1, 8, 0, 0, 0, loc)))
	assert.False(t, p.OnOrBeforeEnd(time.Date(2026, 3, 16, 8, 0, 0, 0, loc)))
}
