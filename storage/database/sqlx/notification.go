package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/notification"
)

const notificationColumns = "id, user_id, title, message, kind, link, is_read, created_at, read_at"

type notificationRepository struct {
	exec sqlx.ExtContext
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec sqlx.ExtContext) *notificationRepository {
	return &notificationRepository{exec: exec}
}

func (repo notificationRepository) CreateNotifications(ctx context.Context, notes ...notification.Notification) error {
	for _, note := range notes {
		_, err := sqlx.NamedExecContext(ctx, repo.exec,
			`INSERT INTO notifications (`+notificationColumns+`)
			VALUES (:id, :user_id, :title, :message, :kind, :link, :is_read, :created_at, :read_at)`, note)
		if err != nil {
			return errors.Wrap(err, "inserting notification")
		}
	}
	return nil
}

func (repo notificationRepository) FilterNotifications(ctx context.Context, userID string, filter notification.QueryFilter, opts core.ListOptions) ([]notification.Notification, error) {
	var w where
	w.add("user_id = ?", userID)
	if filter.Unread {
		w.add("NOT is_read")
	}
	var notes []notification.Notification
	err := selectList(ctx, repo.exec, &notes, "SELECT "+notificationColumns+" FROM notifications", w, opts, "created_at DESC")
	if err != nil {
		return nil, errors.Wrap(err, "filtering notifications")
	}
	return notes, nil
}

func (repo notificationRepository) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	n, err := count(ctx, repo.exec, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND NOT is_read`, userID)
	return n, errors.Wrap(err, "counting unread notifications")
}

func (repo notificationRepository) MarkNotificationRead(ctx context.Context, userID, id string, at time.Time) (notification.Notification, error) {
	var note notification.Notification
	err := sqlx.GetContext(ctx, repo.exec, &note,
		`UPDATE notifications SET is_read = true, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		id, userID, at,
	)
	if err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "marking notification read")
	}
	return note, nil
}

func (repo notificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string, at time.Time) (int, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = $2 WHERE user_id = $1 AND NOT is_read`, userID, at)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo notificationRepository) DeleteNotification(ctx context.Context, userID, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	return mustAffect(res, err, notification.ErrNotFound)
}
