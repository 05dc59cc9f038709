package leave

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type (
	Type   string
	Status string
)

const (
	Annual    Type = "annual"
	Sick      Type = "sick"
	Casual    Type = "casual"
	Maternity Type = "maternity"
	Paternity Type = "paternity"
	Unpaid    Type = "unpaid"

	StatusPending            Status = "pending"
	StatusDepartmentApproved Status = "department_approved"
	StatusDepartmentRejected Status = "department_rejected"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusCancelled          Status = "cancelled"
)

var (
	Types = []Type{Annual, Sick, Casual, Maternity, Paternity, Unpaid}

	// OpenStatuses are the statuses that still hold days: in review or approved.
	OpenStatuses = []Status{StatusPending, StatusDepartmentApproved, StatusApproved}

	// InReviewStatuses await a decision.
	InReviewStatuses = []Status{StatusPending, StatusDepartmentApproved}
)

// Stage is a step of the approval workflow.
type Stage string

const (
	StageDepartment Stage = "department"
	StageFinal      Stage = "final"
)

// transitions maps a target status to the statuses it may be reached from.
var transitions = map[Status][]Status{
	StatusDepartmentApproved: {StatusPending},
	StatusDepartmentRejected: {StatusPending},
	StatusApproved:           {StatusDepartmentApproved},
	StatusRejected:           {StatusDepartmentApproved},
	StatusCancelled:          {StatusPending, StatusDepartmentApproved},
}

// CanTransition reports whether a request in status from may move to status to.
func CanTransition(from, to Status) bool {
	for _, st := range transitions[to] {
		if st == from {
			return true
		}
	}
	return false
}

type LeaveRequest struct {
	ID                   string     `json:"id" db:"id"`
	EmployeeID           string     `json:"employee_id" db:"employee_id"`
	LeaveType            Type       `json:"leave_type" db:"leave_type"`
	StartDate            core.Date  `json:"start_date" db:"start_date"`
	EndDate              core.Date  `json:"end_date" db:"end_date"`
	Days                 int        `json:"days" db:"days"`
	Reason               string     `json:"reason" db:"reason"`
	Status               Status     `json:"status" db:"status"`
	DepartmentReviewerID *string    `json:"department_reviewer_id" db:"department_reviewer_id"`
	DepartmentReviewedAt *time.Time `json:"department_reviewed_at" db:"department_reviewed_at"`
	DepartmentComment    string     `json:"department_comment" db:"department_comment"`
	ReviewerID           *string    `json:"reviewer_id" db:"reviewer_id"`
	ReviewedAt           *time.Time `json:"reviewed_at" db:"reviewed_at"`
	ReviewComment        string     `json:"review_comment" db:"review_comment"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`

	// read only, filled by list queries
	EmployeeName string  `json:"employee_name,omitempty" db:"employee_name"`
	EmployeeCode string  `json:"employee_code,omitempty" db:"employee_code"`
	DepartmentID *string `json:"department_id,omitempty" db:"department_id"`
}

// Covers reports whether date falls within the request.
func (lr LeaveRequest) Covers(date core.Date) bool {
	return date.Between(lr.StartDate, lr.EndDate)
}

type NewLeaveRequest struct {
	EmployeeID string `json:"employee_id" validate:"omitempty,uuid"`
	LeaveType  string `json:"leave_type" validate:"required,oneof=annual sick casual maternity paternity unpaid"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"max=2000"`
}

func (nl *NewLeaveRequest) Clean() {
	nl.EmployeeID = core.CleanString(nl.EmployeeID)
	nl.LeaveType = core.CleanString(nl.LeaveType, true /* lower */)
	nl.StartDate = core.CleanString(nl.StartDate)
	nl.EndDate = core.CleanString(nl.EndDate)
	nl.Reason = core.CleanString(nl.Reason)
}

// Decision approves or rejects a request at one stage.
type Decision struct {
	Action  string `json:"action" validate:"required,oneof=approve reject"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (d *Decision) Clean() {
	d.Action = core.CleanString(d.Action, true /* lower */)
	d.Comment = core.CleanString(d.Comment)
}

func (d Decision) Approved() bool { return d.Action == "approve" }

// Actor is the caller of a workflow operation.
type Actor struct {
	UserID     string
	EmployeeID string // "" if the user has no employee record
	Staff      bool
}

type QueryFilter struct {
	EmployeeID   string          `query:"employee_id"`
	DepartmentID string          `query:"department_id"`
	Status       string          `query:"status"`
	LeaveType    string          `query:"leave_type"`
	DateFrom     core.Date       `query:"date_from"`
	DateTo       core.Date       `query:"date_to"`
	Statuses     []Status        `query:"-"`
	Visibility   core.Visibility `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.EmployeeID = core.CleanString(qf.EmployeeID)
	qf.DepartmentID = core.CleanString(qf.DepartmentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.LeaveType = core.CleanString(qf.LeaveType, true /* lower */)
}

var OrderingFields = []string{"start_date", "end_date", "days", "status", "leave_type", "created_at"}

// DaysUsed is the number of leave days of a type held in a status.
type DaysUsed struct {
	LeaveType Type   `db:"leave_type"`
	Status    Status `db:"status"`
	Days      int    `db:"days"`
}

// Balance of a leave type for a year. Allowance is -1 for unlimited types.
type Balance struct {
	LeaveType Type `json:"leave_type"`
	Allowance int  `json:"allowance"`
	Used      int  `json:"used"`
	Pending   int  `json:"pending"`
	Remaining int  `json:"remaining"`
}

func Table(rows []LeaveRequest) core.Table {
	tbl := core.Table{
		Name:   "leave",
		Header: []string{"Employee Code", "Employee", "Type", "Start", "End", "Days", "Status", "Reason", "Department Comment", "Review Comment"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, lr := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			lr.EmployeeCode,
			lr.EmployeeName,
			string(lr.LeaveType),
			lr.StartDate.String(),
			lr.EndDate.String(),
			itoa(lr.Days),
			string(lr.Status),
			lr.Reason,
			lr.DepartmentComment,
			lr.ReviewComment,
		})
	}
	return tbl
}
