package department

import (
	"strings"
	"time"

	"github.com/trezcool/hrms/core"
)

type Department struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	HeadID      *string   `json:"head_id" db:"head_id"` // employee
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewDepartment contains information needed to create or replace a Department.
type NewDepartment struct {
	Name        string `json:"name" validate:"required,max=120"`
	Code        string `json:"code" validate:"required,max=20,alphanum_"`
	Description string `json:"description" validate:"max=1000"`
	HeadID      string `json:"head_id" validate:"omitempty,uuid"`
}

func (nd *NewDepartment) Clean() {
	nd.Name = core.CleanString(nd.Name)
	nd.Code = strings.ToUpper(core.CleanString(nd.Code))
	nd.Description = core.CleanString(nd.Description)
	nd.HeadID = core.CleanString(nd.HeadID)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

var OrderingFields = []string{"name", "code", "created_at"}
