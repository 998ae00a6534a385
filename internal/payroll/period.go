package payroll

import (
	"fmt"
	"time"

	payrollerrors "barangay-payroll/internal/payroll/errors"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Period is a closed interval of calendar dates. Start and End are midnight UTC of the
// civil date; loc is only used to place instants (now, applied_at) on a calendar day.
type Period struct {
	Start time.Time
	End   time.Time
	loc   *time.Location
}

// NewPeriod builds a period from two civil dates.
func NewPeriod(start, end time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, e := civilDate(start), civilDate(end)
	if s.After(e) {
		return Period{}, payrollerrors.ErrInvalidDateRange
	}
	return Period{Start: s, End: e, loc: loc}, nil
}

// ResolvePeriod returns the explicit period when both dates are given, otherwise the
// semi-monthly window (1st-15th or 16th-end of month) containing now in loc.
func ResolvePeriod(start, end *time.Time, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	if (start == nil) != (end == nil) {
		return Period{}, payrollerrors.ErrInvalidPeriod
	}
	if start != nil {
		return NewPeriod(*start, *end, loc)
	}

	local := now.In(loc)
	y, m, d := local.Date()
	if d <= 15 {
		return NewPeriod(
			time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
			time.Date(y, m, 15, 0, 0, 0, 0, time.UTC),
			loc,
		)
	}
	return NewPeriod(
		time.Date(y, m, 16, 0, 0, 0, 0, time.UTC),
		time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC),
		loc,
	)
}

// WorkingDays counts the dates in the period that are not Saturday or Sunday.
func (p Period) WorkingDays() int {
	days := 0
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

// Factor scales period-based amounts. Every period is paid as a full period, so it is 1;
// WorkingDays is kept for proportional scaling.
func (p Period) Factor() decimal.Decimal {
	return decimal.NewFromInt(1)
}

// Contains reports whether the instant t falls on a date inside the period.
func (p Period) Contains(t time.Time) bool {
	d := p.dateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// OnOrBeforeEnd reports whether t falls on or before the last date of the period.
func (p Period) OnOrBeforeEnd(t time.Time) bool {
	return !p.dateOf(t).After(p.End)
}

func (p Period) Location() *time.Location {
	if p.loc == nil {
		return time.UTC
	}
	return p.loc
}

func (p Period) Snapshot() PeriodSnapshot {
	return PeriodSnapshot{
		Start:       p.Start.Format(dateLayout),
		End:         p.End.Format(dateLayout),
		WorkingDays: p.WorkingDays(),
		Factor:      p.Factor(),
	}
}

func (p Period) String() string {
	return fmt.Sprintf("%s..%s", p.Start.Format(dateLayout), p.End.Format(dateLayout))
}

func (p Period) dateOf(t time.Time) time.Time {
	return civilDate(t.In(p.Location()))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
