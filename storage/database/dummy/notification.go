package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

var notificationComparers = comparers[notification.Notification]{
	"created_at": func(a, b notification.Notification) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
	"is_read":    func(a, b notification.Notification) int { return cmpBools(a.IsRead, b.IsRead) },
}

func (repo *notificationRepository) CreateNotifications(_ context.Context, notes ...notification.Notification) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, note := range notes {
		repo.db.notifications[note.ID] = note
	}
	return nil
}

func (repo *notificationRepository) FilterNotifications(_ context.Context, userID string, qf notification.QueryFilter, opts core.ListOptions) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notes := filter(values(repo.db.notifications), func(n notification.Notification) bool {
		return n.UserID == userID && !(qf.Unread && n.IsRead)
	})
	return list(notes, opts, notificationComparers, desc("created_at")), nil
}

func (repo *notificationRepository) CountUnreadNotifications(_ context.Context, userID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, note := range repo.db.notifications {
		if note.UserID == userID && !note.IsRead {
			n++
		}
	}
	return n, nil
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, userID, id string, at time.Time) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	note, ok := repo.db.notifications[id]
	if !ok || note.UserID != userID {
		return notification.Notification{}, notification.ErrNotFound
	}
	if !note.IsRead {
		note.IsRead = true
		note.ReadAt = &at
		repo.db.notifications[id] = note
	}
	return note, nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(_ context.Context, userID string, at time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for id, note := range repo.db.notifications {
		if note.UserID == userID && !note.IsRead {
			note.IsRead = true
			note.ReadAt = &at
			repo.db.notifications[id] = note
			n++
		}
	}
	return n, nil
}

func (repo *notificationRepository) DeleteNotification(_ context.Context, userID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	note, ok := repo.db.notifications[id]
	if !ok || note.UserID != userID {
		return notification.ErrNotFound
	}
	delete(repo.db.notifications, id)
	return nil
}
