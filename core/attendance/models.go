package attendance

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type (
	Status string
	Source string
)

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusAbsent  Status = "absent"
	StatusOnLeave Status = "on_leave"

	SourceQR     Source = "qr"
	SourceManual Source = "manual"
	SourceSystem Source = "system"
)

var Statuses = []Status{StatusPresent, StatusLate, StatusHalfDay, StatusAbsent, StatusOnLeave}

// Scan actions
const (
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

type Attendance struct {
	ID         string     `json:"id" db:"id"`
	EmployeeID string     `json:"employee_id" db:"employee_id"`
	Date       core.Date  `json:"date" db:"date"`
	CheckIn    *time.Time `json:"check_in" db:"check_in"`   // UTC
	CheckOut   *time.Time `json:"check_out" db:"check_out"` // UTC
	Status     Status     `json:"status" db:"status"`
	Source     Source     `json:"source" db:"source"`
	Notes      string     `json:"notes" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	// read only, filled by list queries
	EmployeeName string  `json:"employee_name,omitempty" db:"employee_name"`
	EmployeeCode string  `json:"employee_code,omitempty" db:"employee_code"`
	DepartmentID *string `json:"department_id,omitempty" db:"department_id"`
}

// IsPlaceholder reports whether the row was written by the absent sweep and may be replaced by a check-in.
func (a Attendance) IsPlaceholder() bool {
	return a.Source == SourceSystem && a.CheckIn == nil && (a.Status == StatusAbsent || a.Status == StatusOnLeave)
}

// Worked returns the time between check-in and check-out, 0 if either is missing.
func (a Attendance) Worked() time.Duration {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn)
}

// ScanResult is the outcome of a QR scan.
type ScanResult struct {
	Action     string     `json:"action"`
	Employee   string     `json:"employee"`
	Attendance Attendance `json:"attendance"`
}

type Scan struct {
	Token string `json:"token" validate:"required"`
}

// NewAttendance is a manual attendance entry. Times are HH:MM on the entry date.
type NewAttendance struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	CheckIn    string `json:"check_in" validate:"omitempty,hhmm"`
	CheckOut   string `json:"check_out" validate:"omitempty,hhmm"`
	Status     string `json:"status" validate:"required,oneof=present late half_day absent on_leave"`
	Notes      string `json:"notes" validate:"max=1000"`
}

func (na *NewAttendance) Clean() {
	na.EmployeeID = core.CleanString(na.EmployeeID)
	na.Date = core.CleanString(na.Date)
	na.CheckIn = core.CleanString(na.CheckIn)
	na.CheckOut = core.CleanString(na.CheckOut)
	na.Status = core.CleanString(na.Status, true /* lower */)
	na.Notes = core.CleanString(na.Notes)
}

// UpdateAttendance replaces the times, status and notes of an entry.
type UpdateAttendance struct {
	CheckIn  string `json:"check_in" validate:"omitempty,hhmm"`
	CheckOut string `json:"check_out" validate:"omitempty,hhmm"`
	Status   string `json:"status" validate:"required,oneof=present late half_day absent on_leave"`
	Notes    string `json:"notes" validate:"max=1000"`
}

func (ua *UpdateAttendance) Clean() {
	ua.CheckIn = core.CleanString(ua.CheckIn)
	ua.CheckOut = core.CleanString(ua.CheckOut)
	ua.Status = core.CleanString(ua.Status, true /* lower */)
	ua.Notes = core.CleanString(ua.Notes)
}

type QueryFilter struct {
	EmployeeID   string          `query:"employee_id"`
	DepartmentID string          `query:"department_id"`
	Status       string          `query:"status"`
	Source       string          `query:"source"`
	DateFrom     core.Date       `query:"date_from"`
	DateTo       core.Date       `query:"date_to"`
	Visibility   core.Visibility `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.EmployeeID = core.CleanString(qf.EmployeeID)
	qf.DepartmentID = core.CleanString(qf.DepartmentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Source = core.CleanString(qf.Source, true /* lower */)
}

var OrderingFields = []string{"date", "check_in", "check_out", "status", "created_at"}

// Summary counts attendance rows per status over a date range.
type Summary struct {
	EmployeeID string         `json:"employee_id,omitempty"`
	DateFrom   core.Date      `json:"date_from"`
	DateTo     core.Date      `json:"date_to"`
	Counts     map[Status]int `json:"counts"`
	Total      int            `json:"total"`
}

// SweepResult reports what the absent sweep did for one day.
type SweepResult struct {
	Date    core.Date `json:"date"`
	Skipped string    `json:"skipped,omitempty"` // future, weekend or holiday
	Absent  int       `json:"absent"`
	OnLeave int       `json:"on_leave"`
}

// Table renders attendance rows for export, times in loc.
func Table(rows []Attendance, loc *time.Location) core.Table {
	tbl := core.Table{
		Name:   "attendance",
		Header: []string{"Date", "Employee Code", "Employee", "Status", "Check In", "Check Out", "Source", "Notes"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, a := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			a.Date.String(),
			a.EmployeeCode,
			a.EmployeeName,
			string(a.Status),
			core.FormatClock(a.CheckIn, loc),
			core.FormatClock(a.CheckOut, loc),
			string(a.Source),
			a.Notes,
		})
	}
	return tbl
}
