package payroll

import (
	"barangay-payroll/internal/loan"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Installment is amount x monthly percent / 100 x factor, rounded to the centavo.
func Installment(l loan.Loan, factor decimal.Decimal) int64 {
	return decimal.NewFromInt(l.Amount).
		Mul(l.MonthlyPaymentPercent).
		Div(hundred).
		Mul(factor).
		Round(0).
		IntPart()
}

// LoanPlan is the installment schedule for one employee in one period.
type LoanPlan struct {
	Lines []LoanLine
	Total int64
}

// PlanInstallments charges every ACTIVE loan once. A line never takes the balance below zero.
func PlanInstallments(loans []loan.Loan, factor decimal.Decimal) LoanPlan {
	plan := LoanPlan{Lines: []LoanLine{}}
	for _, l := range loans {
		if l.Status != loan.StatusActive || l.ArchivedAt != nil {
			continue
		}

		charge := Installment(l, factor)
		if charge > l.Balance {
			charge = l.Balance
		}
		if charge < 0 {
			charge = 0
		}

		plan.Lines = append(plan.Lines, LoanLine{
			LoanID:        l.ID,
			Principal:     l.Amount,
			Percent:       l.MonthlyPaymentPercent,
			Installment:   charge,
			BalanceBefore: l.Balance,
			BalanceAfter:  l.Balance - charge,
		})
		plan.Total += charge
	}
	return plan
}

// Completes reports whether applying the line pays the loan off.
func (l LoanLine) Completes() bool {
	return l.BalanceAfter == 0
}
