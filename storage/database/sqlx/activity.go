package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
)

const activityColumns = "id, user_id, username, action, entity_type, entity_id, details, ip_address, user_agent, created_at"

type activityRepository struct {
	exec sqlx.ExtContext
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(exec sqlx.ExtContext) *activityRepository {
	return &activityRepository{exec: exec}
}

func (repo activityRepository) CreateEntry(ctx context.Context, e activity.Entry) error {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO activity_logs (`+activityColumns+`)
		VALUES (:id, :user_id, :username, :action, :entity_type, :entity_id, :details, :ip_address, :user_agent, :created_at)`, e)
	return errors.Wrap(err, "inserting activity entry")
}

func (repo activityRepository) FilterEntries(ctx context.Context, filter activity.QueryFilter, opts core.ListOptions) ([]activity.Entry, error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		w.add("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		w.add("entity_type = ?", filter.EntityType)
	}
	if !filter.DateFrom.IsZero() {
		w.add("created_at >= ?", filter.DateFrom.Time)
	}
	if !filter.DateTo.IsZero() {
		w.add("created_at < ?", filter.DateTo.AddDays(1).Time)
	}
	var entries []activity.Entry
	err := selectList(ctx, repo.exec, &entries, "SELECT "+activityColumns+" FROM activity_logs", w, opts, "created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "filtering activity")
	}
	return entries, nil
}
