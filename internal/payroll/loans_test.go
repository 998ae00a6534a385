package payroll_test

import (
	"testing"
	"time"

	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/payroll"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeLoan(employeeID uuid.UUID, amount, balance int64, percent float64) loan.Loan {
	return loan.Loan{
		ID:                    uuid.New(),
		EmployeeID:            employeeID,
		Amount:                amount,
		Balance:               balance,
		MonthlyPaymentPercent: decimal.NewFromFloat(percent),
		Status:                loan.StatusActive,
	}
}

func TestInstallment(t *testing.T) {
	l := activeLoan(uuid.New(), 1000000, 1000000, 10)
	assert.Equal(t, int64(100000), payroll.Installment(l, decimal.NewFromInt(1)))

	odd := activeLoan(uuid.New(), 333333, 333333, 7.5)
	// 333333 x 7.5% = 24999.975
	assert.Equal(t, int64(25000), payroll.Installment(odd, decimal.NewFromInt(1)))
}

func TestPlanInstallments(t *testing.T) {
	emp := uuid.New()
	one := decimal.NewFromInt(1)

	t.Run("charge is capped at the balance", func(t *testing.T) {
		l := activeLoan(emp, 1000000, 40000, 10)

		plan := payroll.PlanInstallments([]loan.Loan{l}, one)

		require.Len(t, plan.Lines, 1)
		assert.Equal(t, int64(40000), plan.Lines[0].Installment)
		assert.Equal(t, int64(0), plan.Lines[0].BalanceAfter)
		assert.True(t, plan.Lines[0].Completes())
		assert.Equal(t, int64(40000), plan.Total)
	})

	t.Run("only active unarchived loans are charged", func(t *testing.T) {
		active := activeLoan(emp, 1000000, 1000000, 10)
		pending := activeLoan(emp, 500000, 500000, 10)
		pending.Status = loan.StatusPending
		archived := activeLoan(emp, 500000, 500000, 10)
		now := time.Now()
		archived.ArchivedAt = &now

		plan := payroll.PlanInstallments([]loan.Loan{active, pending, archived}, one)

		require.Len(t, plan.Lines, 1)
		assert.Equal(t, active.ID, plan.Lines[0].LoanID)
		assert.Equal(t, int64(1000000), plan.Lines[0].BalanceBefore)
		assert.Equal(t, int64(900000), plan.Lines[0].BalanceAfter)
		assert.False(t, plan.Lines[0].Completes())
	})

	t.Run("no loans", func(t *testing.T) {
		plan := payroll.PlanInstallments(nil, one)
		assert.NotNil(t, plan.Lines)
		assert.Zero(t, plan.Total)
	})
}
