package employee

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type (
	Status         string
	EmploymentType string
	Gender         string
)

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"

	FullTime EmploymentType = "full_time"
	PartTime EmploymentType = "part_time"
	Contract EmploymentType = "contract"
	Intern   EmploymentType = "intern"

	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

type Employee struct {
	ID             string         `json:"id" db:"id"`
	EmployeeCode   string         `json:"employee_code" db:"employee_code"`
	FirstName      string         `json:"first_name" db:"first_name"`
	LastName       string         `json:"last_name" db:"last_name"`
	Email          string         `json:"email" db:"email"`
	Phone          string         `json:"phone" db:"phone"`
	Gender         Gender         `json:"gender" db:"gender"`
	DateOfBirth    core.Date      `json:"date_of_birth" db:"date_of_birth"`
	Address        string         `json:"address" db:"address"`
	DepartmentID   *string        `json:"department_id" db:"department_id"`
	DesignationID  *string        `json:"designation_id" db:"designation_id"`
	UserID         *string        `json:"user_id" db:"user_id"`
	EmploymentType EmploymentType `json:"employment_type" db:"employment_type"`
	Status         Status         `json:"status" db:"status"`
	DateOfJoining  core.Date      `json:"date_of_joining" db:"date_of_joining"`
	QRSecret       []byte         `json:"-" db:"qr_secret"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

// InDepartment reports whether the employee belongs to one of the given departments.
func (e Employee) InDepartment(ids ...string) bool {
	if e.DepartmentID == nil {
		return false
	}
	for _, id := range ids {
		if *e.DepartmentID == id {
			return true
		}
	}
	return false
}

// YearsOfService counts the full years between the joining date and asOf.
func (e Employee) YearsOfService(asOf core.Date) int {
	joined := e.DateOfJoining
	if joined.IsZero() || asOf.Before(joined) {
		return 0
	}
	years := asOf.Year() - joined.Year()
	if asOf.Month() < joined.Month() || (asOf.Month() == joined.Month() && asOf.Day() < joined.Day()) {
		years--
	}
	return years
}

// NewEmployee contains information needed to create or replace an Employee.
type NewEmployee struct {
	EmployeeCode   string `json:"employee_code" validate:"required,max=30,alphanum_"`
	FirstName      string `json:"first_name" validate:"required,max=80"`
	LastName       string `json:"last_name" validate:"required,max=80"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"omitempty,max=30"`
	Gender         string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address        string `json:"address" validate:"max=500"`
	DepartmentID   string `json:"department_id" validate:"omitempty,uuid"`
	DesignationID  string `json:"designation_id" validate:"omitempty,uuid"`
	UserID         string `json:"user_id" validate:"omitempty,uuid"`
	EmploymentType string `json:"employment_type" validate:"required,oneof=full_time part_time contract intern"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive terminated"`
	DateOfJoining  string `json:"date_of_joining" validate:"required,datetime=2006-01-02"`
}

func (ne *NewEmployee) Clean() {
	ne.EmployeeCode = core.CleanString(ne.EmployeeCode)
	ne.FirstName = core.CleanString(ne.FirstName)
	ne.LastName = core.CleanString(ne.LastName)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Phone = core.CleanString(ne.Phone)
	ne.Gender = core.CleanString(ne.Gender, true /* lower */)
	ne.DateOfBirth = core.CleanString(ne.DateOfBirth)
	ne.Address = core.CleanString(ne.Address)
	ne.DepartmentID = core.CleanString(ne.DepartmentID)
	ne.DesignationID = core.CleanString(ne.DesignationID)
	ne.UserID = core.CleanString(ne.UserID)
	ne.EmploymentType = core.CleanString(ne.EmploymentType, true /* lower */)
	ne.Status = core.CleanString(ne.Status, true /* lower */)
	ne.DateOfJoining = core.CleanString(ne.DateOfJoining)
	if ne.Status == "" {
		ne.Status = string(StatusActive)
	}
}

type QueryFilter struct {
	Search         string   `query:"search"`
	DepartmentID   string   `query:"department_id"`
	DesignationID  string   `query:"designation_id"`
	Status         string   `query:"status"`
	EmploymentType string   `query:"employment_type"`
	DepartmentIDs  []string `query:"-"` // restricts results to these departments
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.DepartmentID = core.CleanString(qf.DepartmentID)
	qf.DesignationID = core.CleanString(qf.DesignationID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.EmploymentType = core.CleanString(qf.EmploymentType, true /* lower */)
}

var OrderingFields = []string{"employee_code", "first_name", "last_name", "email", "date_of_joining", "status", "created_at"}

// Counts summarizes the workforce.
type Counts struct {
	Total  int `json:"total" db:"total"`
	Active int `json:"active" db:"active"`
}

func Table(rows []Employee) core.Table {
	tbl := core.Table{
		Name:   "employees",
		Header: []string{"Code", "First Name", "Last Name", "Email", "Phone", "Gender", "Employment Type", "Status", "Joined"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, e := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			e.EmployeeCode,
			e.FirstName,
			e.LastName,
			e.Email,
			e.Phone,
			string(e.Gender),
			string(e.EmploymentType),
			string(e.Status),
			e.DateOfJoining.String(),
		})
	}
	return tbl
}
