package document

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type Category string

const (
	CategoryContract    Category = "contract"
	CategoryIDCard      Category = "id_card"
	CategoryCertificate Category = "certificate"
	CategoryResume      Category = "resume"
	CategoryOther       Category = "other"
)

type Document struct {
	ID          string    `json:"id" db:"id"`
	EmployeeID  string    `json:"employee_id" db:"employee_id"`
	Title       string    `json:"title" db:"title"`
	Category    Category  `json:"category" db:"category"`
	FileName    string    `json:"file_name" db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	StoragePath string    `json:"-" db:"storage_path"`
	UploadedBy  *string   `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewDocument holds the form fields sent along an uploaded file.
type NewDocument struct {
	EmployeeID string `form:"employee_id" validate:"required,uuid"`
	Title      string `form:"title" validate:"required,max=200"`
	Category   string `form:"category" validate:"required,oneof=contract id_card certificate resume other"`
}

func (nd *NewDocument) Clean() {
	nd.EmployeeID = core.CleanString(nd.EmployeeID)
	nd.Title = core.CleanString(nd.Title)
	nd.Category = core.CleanString(nd.Category, true /* lower */)
	if nd.Category == "" {
		nd.Category = string(CategoryOther)
	}
}

type QueryFilter struct {
	EmployeeID string          `query:"employee_id"`
	Category   string          `query:"category"`
	Visibility core.Visibility `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.EmployeeID = core.CleanString(qf.EmployeeID)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}

var OrderingFields = []string{"title", "category", "size", "created_at"}
