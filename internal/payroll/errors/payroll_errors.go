package payrollerrors

import (
	"net/http"

	"barangay-payroll/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEntryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll entry id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"period_start and period_end must be given together",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"period_start must be before or equal period_end",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll status filter",
		http.StatusBadRequest,
	)
	ErrNoEligibleEmployees = apperror.New(
		apperror.CodeInvalidState,
		"no active employee with an assigned salary basis",
		http.StatusConflict,
	)
	ErrNoPendingEntries = apperror.New(
		apperror.CodeInvalidState,
		"no pending payroll entries to release",
		http.StatusConflict,
	)
	ErrPeriodAlreadyReleased = apperror.New(
		apperror.CodeInvalidState,
		"payroll for this period has already been released",
		http.StatusConflict,
	)
	ErrReleaseConflict = apperror.New(
		apperror.CodeConflict,
		"payroll entries were changed by another release, retry",
		http.StatusConflict,
	)
	ErrGenerationConflict = apperror.New(
		apperror.CodeConflict,
		"payroll for this period is being generated concurrently, retry",
		http.StatusConflict,
	)
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll entry not found",
		http.StatusNotFound,
	)
)
