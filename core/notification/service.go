package notification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
)

var (
	// errors
	ErrNotFound      = errors.New("notification not found")
	ErrNoRecipients  = errors.New("one of user_ids or role is required")
	ErrNoActiveUsers = errors.New("no active user matches the recipients")
)

type (
	Repository interface {
		CreateNotifications(ctx context.Context, notes ...Notification) error
		FilterNotifications(ctx context.Context, userID string, filter QueryFilter, opts core.ListOptions) ([]Notification, error)
		CountUnreadNotifications(ctx context.Context, userID string) (int, error)
		// MarkNotificationRead returns ErrNotFound unless the notification belongs to userID.
		MarkNotificationRead(ctx context.Context, userID, id string, at time.Time) (Notification, error)
		MarkAllNotificationsRead(ctx context.Context, userID string, at time.Time) (int, error)
		DeleteNotification(ctx context.Context, userID, id string) error
	}

	// RoleDirectory resolves role prefixes to active user IDs.
	RoleDirectory interface {
		UserIDsWithRole(ctx context.Context, prefixes ...string) ([]string, error)
	}

	Service struct {
		repo     Repository
		users    RoleDirectory
		validate *validator.Validate
	}
)

func NewService(repo Repository, users RoleDirectory, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, validate: validate}
}

// Notify stores one notification per distinct recipient. Notes without a user are dropped.
func (svc *Service) Notify(ctx context.Context, notes ...NewNotification) error {
	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(notes))
	toSave := make([]Notification, 0, len(notes))
	for _, n := range notes {
		if n.UserID == "" {
			continue
		}
		key := n.UserID + "\x00" + n.Title + "\x00" + n.Message
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		kind := n.Kind
		if kind == "" {
			kind = KindSystem
		}
		toSave = append(toSave, Notification{
			ID:        uuid.NewString(),
			UserID:    n.UserID,
			Title:     n.Title,
			Message:   n.Message,
			Kind:      kind,
			Link:      n.Link,
			CreatedAt: now,
		})
	}
	if len(toSave) == 0 {
		return nil
	}
	return svc.repo.CreateNotifications(ctx, toSave...)
}

func (svc *Service) List(ctx context.Context, userID string, filter QueryFilter, opts core.ListOptions) ([]Notification, error) {
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterNotifications(ctx, userID, filter, opts)
}

func (svc *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return svc.repo.CountUnreadNotifications(ctx, userID)
}

func (svc *Service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	return svc.repo.MarkNotificationRead(ctx, userID, id, time.Now().UTC())
}

func (svc *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return svc.repo.MarkAllNotificationsRead(ctx, userID, time.Now().UTC())
}

func (svc *Service) Delete(ctx context.Context, userID, id string) error {
	return svc.repo.DeleteNotification(ctx, userID, id)
}

// Broadcast notifies the explicit users and every active user holding the role prefix.
// It returns the number of notifications sent.
func (svc *Service) Broadcast(ctx context.Context, b Broadcast) (int, error) {
	b.Clean()
	if err := svc.validate.Struct(b); err != nil {
		return 0, err
	}
	if len(b.UserIDs) == 0 && b.Role == "" {
		return 0, core.NewValidationError(ErrNoRecipients, core.FieldError{Field: "user_ids", Error: ErrNoRecipients.Error()})
	}

	recipients := append([]string{}, b.UserIDs...)
	if b.Role != "" {
		ids, err := svc.users.UserIDsWithRole(ctx, b.Role)
		if err != nil {
			return 0, errors.Wrap(err, "getting users with role")
		}
		recipients = append(recipients, ids...)
	}

	notes := make([]NewNotification, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		notes = append(notes, NewNotification{UserID: id, Title: b.Title, Message: b.Message, Kind: KindSystem, Link: b.Link})
	}
	if len(notes) == 0 {
		return 0, core.NewValidationError(ErrNoActiveUsers, core.FieldError{Field: "role", Error: ErrNoActiveUsers.Error()})
	}
	if err := svc.Notify(ctx, notes...); err != nil {
		return 0, errors.Wrap(err, "saving notifications")
	}
	return len(notes), nil
}
