package payroll

import (
	"errors"
	"strings"

	payrollerrors "barangay-payroll/internal/payroll/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueEntryPerPeriod = "uq_payroll_entry_employee_period"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrEntryNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == uniqueEntryPerPeriod {
			return payrollerrors.ErrGenerationConflict.With(err)
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueEntryPerPeriod) {
		return payrollerrors.ErrGenerationConflict.With(err)
	}

	return err
}
