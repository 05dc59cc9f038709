package notification

import (
	"time"

	"github.com/trezcool/hrms/core"
)

type Kind string

const (
	KindLeave      Kind = "leave"
	KindAttendance Kind = "attendance"
	KindLoyalty    Kind = "loyalty"
	KindSystem     Kind = "system"
)

type Notification struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	Kind      Kind       `json:"kind" db:"kind"`
	Link      string     `json:"link" db:"link"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ReadAt    *time.Time `json:"read_at" db:"read_at"`
}

// NewNotification is a notification for one user, created by other services.
type NewNotification struct {
	UserID  string
	Title   string
	Message string
	Kind    Kind
	Link    string
}

// Broadcast sends a system notification to explicit users or to every user holding a role prefix.
type Broadcast struct {
	UserIDs []string `json:"user_ids" validate:"omitempty,dive,uuid"`
	Role    string   `json:"role" validate:"omitempty,max=30"`
	Title   string   `json:"title" validate:"required,max=200"`
	Message string   `json:"message" validate:"required,max=2000"`
	Link    string   `json:"link" validate:"max=500"`
}

func (b *Broadcast) Clean() {
	b.Role = core.CleanString(b.Role, true /* lower */)
	b.Title = core.CleanString(b.Title)
	b.Message = core.CleanString(b.Message)
	b.Link = core.CleanString(b.Link)
	for i := range b.UserIDs {
		b.UserIDs[i] = core.CleanString(b.UserIDs[i])
	}
}

type QueryFilter struct {
	Unread bool `query:"unread"`
}

var OrderingFields = []string{"created_at", "is_read"}
