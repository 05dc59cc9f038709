package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

var userComparers = comparers[user.User]{
	"name":       func(a, b user.User) int { return cmpStrings(a.Name, b.Name) },
	"username":   func(a, b user.User) int { return cmpStrings(a.Username, b.Username) },
	"email":      func(a, b user.User) int { return cmpStrings(a.Email, b.Email) },
	"is_active":  func(a, b user.User) int { return cmpBools(a.IsActive, b.IsActive) },
	"created_at": func(a, b user.User) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
	"last_login": func(a, b user.User) int { return cmpTimePtrs(a.LastLogin, b.LastLogin) },
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.db.users {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.users {
		if usr.Username != "" && u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
		if usr.Email != "" && u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if email != "" && usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(_ context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if username != "" && (usr.Username == username || usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(_ context.Context, qf user.QueryFilter, opts core.ListOptions) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := filter(values(repo.db.users), func(u user.User) bool {
		// Name, Username or Email matching the search keyword
		if qf.Search != "" && !(contains(u.Name, qf.Search) || contains(u.Username, qf.Search) || contains(u.Email, qf.Search)) {
			return false
		}
		// any role starting with one of the requested roles
		if len(qf.Roles) > 0 && !u.RoleStartsWith(qf.Roles...) {
			return false
		}
		if qf.IsActive != nil && u.IsActive != *qf.IsActive {
			return false
		}
		if !qf.CreatedFrom.IsZero() && u.CreatedAt.Before(qf.CreatedFrom.Time) {
			return false
		}
		if !qf.CreatedTo.IsZero() && !u.CreatedAt.Before(qf.CreatedTo.AddDays(1).Time) {
			return false
		}
		return true
	})
	return list(users, opts, userComparers, asc("name")), nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.LastLogin = &at
	repo.db.users[id] = usr
	return nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
	}
	return nil
}

func (repo *userRepository) ActiveUserIDsWithRole(_ context.Context, prefixes ...string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := filter(values(repo.db.users), func(u user.User) bool {
		return u.IsActive && len(prefixes) > 0 && u.RoleStartsWith(prefixes...)
	})
	order(users, nil, comparers[user.User]{"id": func(a, b user.User) int { return cmpStrings(a.ID, b.ID) }}, asc("id"))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}
