package dummydb

import (
	"context"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

var activityComparers = comparers[activity.Entry]{
	"created_at":  func(a, b activity.Entry) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
	"action":      func(a, b activity.Entry) int { return cmpStrings(a.Action, b.Action) },
	"entity_type": func(a, b activity.Entry) int { return cmpStrings(a.EntityType, b.EntityType) },
	"username":    func(a, b activity.Entry) int { return cmpStrings(a.Username, b.Username) },
}

func (repo *activityRepository) CreateEntry(_ context.Context, e activity.Entry) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.activity = append(repo.db.activity, e)
	return nil
}

func (repo *activityRepository) FilterEntries(_ context.Context, qf activity.QueryFilter, opts core.ListOptions) ([]activity.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := filter(repo.db.activity, func(e activity.Entry) bool {
		if qf.UserID != "" && core.StringValue(e.UserID) != qf.UserID {
			return false
		}
		if qf.Action != "" && e.Action != qf.Action {
			return false
		}
		if qf.EntityType != "" && e.EntityType != qf.EntityType {
			return false
		}
		return core.NewDate(e.CreatedAt).Between(qf.DateFrom, qf.DateTo)
	})
	return list(entries, opts, activityComparers, desc("created_at")), nil
}
