package holiday

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type Holiday struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Date        core.Date `json:"date" db:"date"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type NewHoliday struct {
	Name        string `json:"name" validate:"required,max=120"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=500"`
}

func (nh *NewHoliday) Clean() {
	nh.Name = core.CleanString(nh.Name)
	nh.Date = core.CleanString(nh.Date)
	nh.Description = core.CleanString(nh.Description)
}

type QueryFilter struct {
	Year     int       `query:"year"`
	DateFrom core.Date `query:"date_from"`
	DateTo   core.Date `query:"date_to"`
}

var OrderingFields = []string{"date", "name", "created_at"}
