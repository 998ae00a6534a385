package payroll

import (
	"sort"
	"time"

	"barangay-payroll/internal/deduction"

	"github.com/google/uuid"
)

// Catalog is the set of active deduction types. Instances of an inactive type are ignored,
// except that attendance instances are still tracked so release can archive them.
type Catalog struct {
	byID       map[uuid.UUID]deduction.DeductionType
	mandatory  []deduction.DeductionType
	attendance map[uuid.UUID]bool
}

func NewCatalog(types []deduction.DeductionType) Catalog {
	c := Catalog{
		byID:       make(map[uuid.UUID]deduction.DeductionType, len(types)),
		attendance: make(map[uuid.UUID]bool),
	}
	for _, t := range types {
		if t.IsAttendance() {
			c.attendance[t.ID] = true
		}
		if !t.IsActive {
			continue
		}
		c.byID[t.ID] = t
		if t.IsMandatory && !t.IsAttendance() {
			c.mandatory = append(c.mandatory, t)
		}
	}
	sort.Slice(c.mandatory, func(i, j int) bool {
		return c.mandatory[i].Name < c.mandatory[j].Name
	})
	return c
}

func (c Catalog) Lookup(id uuid.UUID) (deduction.DeductionType, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// IsAttendanceType reports whether typeID is an attendance type, active or not.
func (c Catalog) IsAttendanceType(typeID uuid.UUID) bool {
	return c.attendance[typeID]
}

func (c Catalog) Mandatory() []deduction.DeductionType {
	return c.mandatory
}

// ReconcileMandatory returns the instances missing for every mandatory type the employee
// has no unarchived instance of. It does not touch storage.
func ReconcileMandatory(
	catalog Catalog,
	employeeID uuid.UUID,
	existing []deduction.Deduction,
	baseSalary int64,
	at time.Time,
) []deduction.Deduction {
	have := make(map[uuid.UUID]bool, len(existing))
	for _, d := range existing {
		if d.EmployeeID == employeeID && d.ArchivedAt == nil {
			have[d.DeductionTypeID] = true
		}
	}

	var missing []deduction.Deduction
	for _, t := range catalog.Mandatory() {
		if have[t.ID] {
			continue
		}
		missing = append(missing, deduction.Deduction{
			ID:              uuid.New(),
			DeductionTypeID: t.ID,
			EmployeeID:      employeeID,
			Amount:          t.DefaultAmountFor(baseSalary),
			AppliedAt:       at,
		})
	}
	return missing
}

// DeductionSelection is the result of resolving one employee's deductions for a period.
type DeductionSelection struct {
	Lines []DeductionLine
	// Consumed holds the non-mandatory instances behind Lines.
	Consumed []uuid.UUID

	// Attendance lines are applied on or before the period end; AttendanceIDs covers every
	// unarchived attendance instance of the employee whatever its date.
	Attendance    []DeductionLine
	AttendanceIDs []uuid.UUID
}

func (s DeductionSelection) Sum() int64 {
	return sumLines(s.Lines)
}

func (s DeductionSelection) AttendanceSum() int64 {
	return sumLines(s.Attendance)
}

// SelectDeductions resolves which of the employee's unarchived instances apply to the period:
// every mandatory instance; non-mandatory instances applied inside the period, or when there
// are none, the latest instance of each non-mandatory type. autoApplied marks instances
// produced by ReconcileMandatory.
func SelectDeductions(
	period Period,
	catalog Catalog,
	instances []deduction.Deduction,
	autoApplied map[uuid.UUID]bool,
) DeductionSelection {
	var (
		sel      DeductionSelection
		mand     []DeductionLine
		inPeriod []DeductionLine
		latest   = map[uuid.UUID]DeductionLine{}
	)

	for _, d := range instances {
		if d.ArchivedAt != nil {
			continue
		}
		t, ok := catalog.Lookup(d.DeductionTypeID)
		if !ok {
			// Inactive attendance types are never charged but still get archived.
			if catalog.IsAttendanceType(d.DeductionTypeID) {
				sel.AttendanceIDs = append(sel.AttendanceIDs, d.ID)
			}
			continue
		}

		line := DeductionLine{
			DeductionID: d.ID,
			TypeID:      t.ID,
			TypeName:    t.Name,
			Mandatory:   t.IsMandatory,
			AutoApplied: autoApplied[d.ID],
			AppliedAt:   d.AppliedAt,
			Amount:      d.Amount,
		}

		switch {
		case t.IsAttendance():
			sel.AttendanceIDs = append(sel.AttendanceIDs, d.ID)
			if period.OnOrBeforeEnd(d.AppliedAt) {
				sel.Attendance = append(sel.Attendance, line)
			}
		case t.IsMandatory:
			mand = append(mand, line)
		default:
			if period.Contains(d.AppliedAt) {
				inPeriod = append(inPeriod, line)
			}
			if cur, seen := latest[t.ID]; !seen || newer(line, cur) {
				latest[t.ID] = line
			}
		}
	}

	adhoc := inPeriod
	if len(adhoc) == 0 {
		for _, line := range latest {
			adhoc = append(adhoc, line)
		}
	}

	sort.SliceStable(mand, func(i, j int) bool {
		if mand[i].TypeName != mand[j].TypeName {
			return mand[i].TypeName < mand[j].TypeName
		}
		return mand[i].AppliedAt.Before(mand[j].AppliedAt)
	})
	sortByApplied(adhoc)
	sortByApplied(sel.Attendance)

	sel.Lines = append(append(make([]DeductionLine, 0, len(mand)+len(adhoc)), mand...), adhoc...)
	for _, line := range adhoc {
		sel.Consumed = append(sel.Consumed, line.DeductionID)
	}
	return sel
}

func newer(a, b DeductionLine) bool {
	if !a.AppliedAt.Equal(b.AppliedAt) {
		return a.AppliedAt.After(b.AppliedAt)
	}
	return a.DeductionID.String() > b.DeductionID.String()
}

func sortByApplied(lines []DeductionLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].AppliedAt.Equal(lines[j].AppliedAt) {
			return lines[i].AppliedAt.Before(lines[j].AppliedAt)
		}
		if lines[i].TypeName != lines[j].TypeName {
			return lines[i].TypeName < lines[j].TypeName
		}
		return lines[i].DeductionID.String() < lines[j].DeductionID.String()
	})
}

func sumLines(lines []DeductionLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Amount
	}
	return total
}
