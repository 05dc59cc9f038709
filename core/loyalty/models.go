package loyalty

import (
	"time"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
)

type Award struct {
	ID             string    `json:"id" db:"id"`
	EmployeeID     string    `json:"employee_id" db:"employee_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	MilestoneYears int       `json:"milestone_years" db:"milestone_years"`
	AwardedOn      core.Date `json:"awarded_on" db:"awarded_on"`
	AwardedBy      *string   `json:"awarded_by" db:"awarded_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// read only, filled by list queries
	EmployeeName string `json:"employee_name,omitempty" db:"employee_name"`
}

type NewAward struct {
	EmployeeID     string `json:"employee_id" validate:"required,uuid"`
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=2000"`
	MilestoneYears int    `json:"milestone_years" validate:"required,min=1,max=60"`
	AwardedOn      string `json:"awarded_on" validate:"omitempty,datetime=2006-01-02"`
}

func (na *NewAward) Clean() {
	na.EmployeeID = core.CleanString(na.EmployeeID)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.AwardedOn = core.CleanString(na.AwardedOn)
}

type QueryFilter struct {
	EmployeeID     string          `query:"employee_id"`
	MilestoneYears int             `query:"milestone_years"`
	Visibility     core.Visibility `query:"-"`
}

var OrderingFields = []string{"awarded_on", "milestone_years", "created_at"}

// Milestone is a milestone already awarded to an employee.
type Milestone struct {
	EmployeeID     string `db:"employee_id"`
	MilestoneYears int    `db:"milestone_years"`
}

// Eligibility is an employee who reached a milestone not awarded yet.
type Eligibility struct {
	Employee       employee.Employee `json:"employee"`
	YearsOfService int               `json:"years_of_service"`
	MilestoneYears int               `json:"milestone_years"`
}
