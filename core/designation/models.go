package designation

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type Designation struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	DepartmentID *string   `json:"department_id" db:"department_id"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type NewDesignation struct {
	Title        string `json:"title" validate:"required,max=120"`
	DepartmentID string `json:"department_id" validate:"omitempty,uuid"`
	Description  string `json:"description" validate:"max=1000"`
}

func (nd *NewDesignation) Clean() {
	nd.Title = core.CleanString(nd.Title)
	nd.DepartmentID = core.CleanString(nd.DepartmentID)
	nd.Description = core.CleanString(nd.Description)
}

type QueryFilter struct {
	Search       string `query:"search"`
	DepartmentID string `query:"department_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.DepartmentID = core.CleanString(qf.DepartmentID)
}

var OrderingFields = []string{"title", "created_at"}
