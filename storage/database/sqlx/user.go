package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/user"
)

const userColumns = "id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login"

type userRepository struct {
	exec sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec sqlx.ExtContext) *userRepository {
	return &userRepository{exec: exec}
}

// userRow carries the roles array, which user.User does not map.
type userRow struct {
	user.User
	Roles pq.StringArray `db:"roles"`
}

func (r userRow) unwrap() user.User {
	usr := r.User
	usr.Roles = []string(r.Roles)
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	return usr
}

func unwrapUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.unwrap())
	}
	return users
}

func (repo userRepository) getOne(ctx context.Context, cond string, args ...interface{}) (user.User, error) {
	var row userRow
	query := sqlx.Rebind(sqlx.DOLLAR, "SELECT "+userColumns+" FROM users WHERE "+cond+" LIMIT 1")
	if err := sqlx.GetContext(ctx, repo.exec, &row, query, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return row.unwrap(), nil
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	var w where
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		w.add("NOT (id = ANY(?))", pq.Array(ids))
	}
	if username != "" {
		n, err := count(ctx, repo.exec, "SELECT COUNT(*) FROM users"+(&where{
			conds: append([]string{"username = ?"}, w.conds...),
			args:  append([]interface{}{username}, w.args...),
		}).String())
		if err != nil {
			return errors.Wrap(err, "checking username uniqueness")
		}
		if n > 0 {
			return user.ErrUsernameExists
		}
	}
	if email != "" {
		n, err := count(ctx, repo.exec, "SELECT COUNT(*) FROM users"+(&where{
			conds: append([]string{"email = ?"}, w.conds...),
			args:  append([]interface{}{email}, w.args...),
		}).String())
		if err != nil {
			return errors.Wrap(err, "checking email uniqueness")
		}
		if n > 0 {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles), usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		return user.User{}, repo.uniqueErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) uniqueErr(err error, msg string) error {
	switch constraint, _ := constraintError(err, uniqueViolation); constraint {
	case "users_username_key":
		return user.ErrUsernameExists
	case "users_email_key":
		return user.ErrEmailExists
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getOne(ctx, "id = ?", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getOne(ctx, "email = ?", email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.getOne(ctx, "username = ? OR email = ?", username, username)
}

func (repo userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, opts core.ListOptions) ([]user.User, error) {
	var w where
	if filter.Search != "" {
		val := likePattern(filter.Search)
		w.add("(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)", val, val, val)
	}
	if len(filter.Roles) > 0 {
		prefixes := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			prefixes = append(prefixes, likePrefix(role))
		}
		w.add("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role LIKE ANY(?))", pq.Array(prefixes))
	}
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		w.add("created_at >= ?", filter.CreatedFrom.Time)
	}
	if !filter.CreatedTo.IsZero() {
		w.add("created_at < ?", filter.CreatedTo.AddDays(1).Time)
	}

	var rows []userRow
	if err := selectList(ctx, repo.exec, &rows, "SELECT "+userColumns+" FROM users", w, opts, "name ASC"); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return unwrapUsers(rows), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE users SET name = $2, username = $3, email = $4, is_active = $5, roles = $6, password_hash = $7, updated_at = $8
		WHERE id = $1`,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles), usr.PasswordHash, usr.UpdatedAt,
	)
	if err := mustAffect(res, err, user.ErrNotFound); err != nil {
		if err == user.ErrNotFound {
			return user.User{}, err
		}
		return user.User{}, repo.uniqueErr(err, "updating user")
	}
	return usr, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := repo.exec.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return mustAffect(res, err, user.ErrNotFound)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting users")
}

func (repo userRepository) ActiveUserIDsWithRole(ctx context.Context, prefixes ...string) ([]string, error) {
	if len(prefixes) == 0 {
		return nil, nil
	}
	patterns := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		patterns = append(patterns, likePrefix(p))
	}
	var ids []string
	err := sqlx.SelectContext(ctx, repo.exec, &ids,
		`SELECT id FROM users
		WHERE is_active AND EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role LIKE ANY($1))
		ORDER BY id`,
		pq.Array(patterns),
	)
	return ids, errors.Wrap(err, "listing users by role")
}

func likePrefix(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s) + "%"
}
