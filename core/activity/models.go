package activity

import (
	"time"

	"github.com/trezcool/hrms/core"
)

// Actions
const (
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionLogin     = "login"
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionCancel    = "cancel"
	ActionScan      = "scan"
	ActionUpload    = "upload"
	ActionDownload  = "download"
	ActionExport    = "export"
	ActionSweep     = "sweep"
	ActionBroadcast = "broadcast"
	ActionRotateQR  = "rotate_qr"
)

type Entry struct {
	ID         string    `json:"id" db:"id"`
	UserID     *string   `json:"user_id" db:"user_id"`
	Username   string    `json:"username" db:"username"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Details    string    `json:"details" db:"details"`
	IPAddress  string    `json:"ip_address" db:"ip_address"`
	UserAgent  string    `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewEntry describes something a user did. UserAgent is the raw header.
type NewEntry struct {
	UserID     string
	Username   string
	Action     string
	EntityType string
	EntityID   string
	Details    string
	IPAddress  string
	UserAgent  string
}

type QueryFilter struct {
	UserID     string    `query:"user_id"`
	Action     string    `query:"action"`
	EntityType string    `query:"entity_type"`
	DateFrom   core.Date `query:"date_from"`
	DateTo     core.Date `query:"date_to"`
}

func (qf *QueryFilter) Clean() {
	qf.UserID = core.CleanString(qf.UserID)
	qf.Action = core.CleanString(qf.Action, true /* lower */)
	qf.EntityType = core.CleanString(qf.EntityType, true /* lower */)
}

var OrderingFields = []string{"created_at", "action", "entity_type", "username"}
