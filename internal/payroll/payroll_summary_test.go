package payroll_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/payroll"
	payrollerrors "barangay-payroll/internal/payroll/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryVersionKey = "payroll:summary:version"

func march1to15(t *testing.T) payroll.Period {
	t.Helper()
	p, err := payroll.NewPeriod(date(2026, 3, 1), date(2026, 3, 15), pht)
	require.NoError(t, err)
	return p
}

// matchKeyOnly compares the command name and key, ignoring payload and expiry.
func matchKeyOnly(expected, actual []interface{}) error {
	if len(actual) < 2 || expected[0] != actual[0] || expected[1] != actual[1] {
		return errors.New("unexpected redis command")
	}
	return nil
}

func TestPayrollService_QuerySummary(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	req := payroll.SummaryRequest{PeriodStart: "2026-03-01", PeriodEnd: "2026-03-15"}

	t.Run("preview before generation has no side effects", func(t *testing.T) {
		deps := setupPayrollServiceTest(t, nil)
		defer deps.db.Close()

		deps.hire("Ana Reyes", 2000000)
		deps.hire("Ben Cruz", 1500000)
		deps.deductions.types = []deduction.DeductionType{deductionType("SSS", true, 50000)}

		resp, err := deps.service.QuerySummary(ctx, req)

		require.NoError(t, err)
		assert.False(t, resp.Frozen)
		require.Len(t, resp.Entries, 2)
		for _, e := range resp.Entries {
			assert.Empty(t, e.ID)
			assert.Equal(t, payroll.StatusPreview, e.Status)
		}
		assert.Equal(t, "Ana Reyes", resp.Entries[0].EmployeeName)
		assert.Equal(t, 2, resp.Totals.Employees)
		assert.Equal(t, int64(3500000), resp.Totals.BaseSalary)
		assert.Equal(t, int64(100000), resp.Totals.TotalDeductions)
		assert.Equal(t, int64(3400000), resp.Totals.NetPay)

		assert.Empty(t, deps.deductions.items)
		assert.Empty(t, deps.entries.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("frozen after generation", func(t *testing.T) {
		deps := setupPayrollServiceTest(t, nil)
		defer deps.db.Close()

		deps.hire("Ana Reyes", 2000000)
		expectTx(t, deps.sqlMock, true)
		_, err := deps.service.Generate(ctx, actorID, payroll.GenerateRequest{PeriodStart: "2026-03-01", PeriodEnd: "2026-03-15"})
		require.NoError(t, err)

		// Salary changes after generation do not move the frozen figures.
		*deps.directory.personnel[0].SalaryBasis = 2500000

		resp, err := deps.service.QuerySummary(ctx, req)

		require.NoError(t, err)
		assert.True(t, resp.Frozen)
		require.Len(t, resp.Entries, 1)
		assert.Equal(t, deps.entries.entries[0].ID.String(), resp.Entries[0].ID)
		assert.Equal(t, payroll.StatusPending, resp.Entries[0].Status)
		assert.Equal(t, int64(2000000), resp.Totals.NetPay)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips storage", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		deps := setupPayrollServiceTest(t, rdb)
		defer deps.db.Close()

		deps.entries.findByPeriodFn = func(ctx context.Context, period payroll.Period, statuses ...string) ([]payroll.PayrollEntry, error) {
			t.Fatal("storage must not be read on a cache hit")
			return nil, nil
		}

		cached := payroll.SummaryResponse{
			Period: payroll.PeriodResponse{Start: "2026-03-01", End: "2026-03-15", WorkingDays: 10},
			Frozen: true,
			Totals: payroll.SummaryTotals{Employees: 3, NetPay: 5000000},
		}
		data, _ := json.Marshal(cached)

		redisMock.ExpectGet(summaryVersionKey).SetVal("4")
		redisMock.ExpectGet(payroll.GetSummaryKey("4", march1to15(t))).SetVal(string(data))

		resp, err := deps.service.QuerySummary(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("frozen summary is cached under the current version", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		deps := setupPayrollServiceTest(t, rdb)
		defer deps.db.Close()

		deps.entries.entries = []payroll.PayrollEntry{{
			ID:           uuid.New(),
			EmployeeID:   uuid.New(),
			EmployeeName: "Ana Reyes",
			PeriodStart:  date(2026, 3, 1),
			PeriodEnd:    date(2026, 3, 15),
			BaseSalary:   2000000,
			NetPay:       2000000,
			Status:       payroll.StatusReleased,
		}}
		key := payroll.GetSummaryKey("0", march1to15(t))

		redisMock.ExpectGet(summaryVersionKey).RedisNil()
		redisMock.ExpectGet(key).RedisNil()
		redisMock.CustomMatch(matchKeyOnly).ExpectSet(key, "", 30*time.Minute).SetVal("OK")

		resp, err := deps.service.QuerySummary(ctx, req)

		require.NoError(t, err)
		assert.True(t, resp.Frozen)
		assert.Equal(t, int64(2000000), resp.Totals.NetPay)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("preview is never cached", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		deps := setupPayrollServiceTest(t, rdb)
		defer deps.db.Close()

		deps.hire("Ana Reyes", 2000000)
		key := payroll.GetSummaryKey("2", march1to15(t))

		redisMock.ExpectGet(summaryVersionKey).SetVal("2")
		redisMock.ExpectGet(key).RedisNil()

		resp, err := deps.service.QuerySummary(ctx, req)

		require.NoError(t, err)
		assert.False(t, resp.Frozen)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("generate and release bump the cache version", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		deps := setupPayrollServiceTest(t, rdb)
		defer deps.db.Close()

		deps.hire("Ana Reyes", 2000000)

		expectTx(t, deps.sqlMock, true)
		redisMock.ExpectIncr(summaryVersionKey).SetVal(1)
		_, err := deps.service.Generate(ctx, actorID, payroll.GenerateRequest{PeriodStart: "2026-03-01", PeriodEnd: "2026-03-15"})
		require.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		redisMock.ExpectIncr(summaryVersionKey).SetVal(2)
		_, err = deps.service.Release(ctx, actorID, payroll.ReleaseRequest{})
		require.NoError(t, err)

		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestPayrollService_ListAndGet(t *testing.T) {
	ctx := context.Background()

	deps := setupPayrollServiceTest(t, nil)
	defer deps.db.Close()

	pending := payroll.PayrollEntry{ID: uuid.New(), EmployeeName: "Ana", PeriodStart: date(2026, 3, 1), PeriodEnd: date(2026, 3, 15), Status: payroll.StatusPending}
	archived := payroll.PayrollEntry{ID: uuid.New(), EmployeeName: "Ana", PeriodStart: date(2026, 2, 16), PeriodEnd: date(2026, 2, 28), Status: payroll.StatusArchived}
	deps.entries.entries = []payroll.PayrollEntry{pending, archived}

	t.Run("list defaults to live entries", func(t *testing.T) {
		resp, err := deps.service.ListEntries(ctx, payroll.ListEntriesRequest{})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, pending.ID.String(), resp[0].ID)
	})

	t.Run("list by status is case insensitive", func(t *testing.T) {
		resp, err := deps.service.ListEntries(ctx, payroll.ListEntriesRequest{Status: "archived"})
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, archived.ID.String(), resp[0].ID)
	})

	t.Run("list rejects bad filters", func(t *testing.T) {
		_, err := deps.service.ListEntries(ctx, payroll.ListEntriesRequest{Status: "VOID"})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidStatusFilter)

		_, err = deps.service.ListEntries(ctx, payroll.ListEntriesRequest{PeriodStart: "2026-03-15", PeriodEnd: "2026-03-01"})
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidDateRange)
	})

	t.Run("get", func(t *testing.T) {
		resp, err := deps.service.GetEntry(ctx, pending.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "2026-03-15", resp.PeriodEnd)

		_, err = deps.service.GetEntry(ctx, uuid.NewString())
		assert.ErrorIs(t, err, payrollerrors.ErrEntryNotFound)

		_, err = deps.service.GetEntry(ctx, "abc")
		assert.ErrorIs(t, err, payrollerrors.ErrInvalidEntryID)
	})
}
