package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/leave"
	"github.com/trezcool/hrms/core/setting"
	"github.com/trezcool/hrms/core/user"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = mockDB.Close()
	})
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestWhere(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("status = ?", "late")
	w.visibility(core.Visibility{EmployeeID: "e1", DepartmentIDs: []string{"d1"}}, "employee_id", "department_id")
	assert.Equal(t, " WHERE status = ? AND (employee_id = ? OR department_id = ANY(?))", w.String())
	assert.Len(t, w.args, 3)

	var none where
	none.visibility(core.Visibility{}, "employee_id", "department_id")
	assert.Equal(t, " WHERE false", none.String())

	var all where
	all.visibility(core.Visibility{All: true}, "employee_id", "department_id")
	assert.Equal(t, "", all.String())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `admin:%`, likePrefix("admin:"))
}

func TestUserRepository_GetUserByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login",
		}).AddRow("u1", "Jane", "jane", "jane@example.com", true, "{admin:,hr:manager}", []byte("hash"), now, now, nil))

	usr, err := repo.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "jane", usr.Username)
	assert.Equal(t, []string{"admin:", "hr:manager"}, usr.Roles)
	assert.Nil(t, usr.LastLogin)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetUserByID(context.Background(), "nope")
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepository_CreateUser_uniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "users_email_key"})

	_, err := repo.CreateUser(context.Background(), user.User{ID: "u1", Email: "jane@example.com", Roles: []string{}})
	assert.Equal(t, user.ErrEmailExists, err)
}

func TestSettingRepository_UpsertSettings(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSettingRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)")).
		WithArgs(setting.WorkStart, "07:30", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (key) DO UPDATE")).
		WithArgs(setting.LateGraceMinutes, "10", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertSettings(context.Background(),
		setting.Setting{Key: setting.WorkStart, Value: "07:30", UpdatedAt: now},
		setting.Setting{Key: setting.LateGraceMinutes, Value: "10", UpdatedAt: now},
	)
	assert.NoError(t, err)
}

func TestLeaveRepository_TransitionLeave(t *testing.T) {
	ctx := context.Background()
	lr := leave.LeaveRequest{ID: "l1", Status: leave.StatusApproved, UpdatedAt: time.Now().UTC()}

	t.Run("applied", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_requests SET status = $2")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := NewLeaveRepository(db).TransitionLeave(ctx, lr, leave.StatusDepartmentApproved)
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, got.Status)
	})

	t.Run("stale status", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_requests SET status = $2")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs("l1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("l1", "cancelled"))

		_, err := NewLeaveRepository(db).TransitionLeave(ctx, lr, leave.StatusDepartmentApproved)
		assert.Equal(t, leave.ErrInvalidTransition, err)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_requests SET status = $2")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WithArgs("l1").
			WillReturnError(sql.ErrNoRows)

		_, err := NewLeaveRepository(db).TransitionLeave(ctx, lr, leave.StatusDepartmentApproved)
		assert.Equal(t, leave.ErrNotFound, err)
	})
}

func TestAttendanceRepository_InsertMissingAttendance(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)
	date := core.MustParseDate("2024-03-04")
	rows := []attendance.Attendance{
		{ID: "a1", EmployeeID: "e1", Date: date, Status: attendance.StatusAbsent, Source: attendance.SourceSystem},
		{ID: "a2", EmployeeID: "e2", Date: date, Status: attendance.StatusOnLeave, Source: attendance.SourceSystem},
	}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (employee_id, date) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (employee_id, date) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0)) // e2 already scanned in

	inserted, err := repo.InsertMissingAttendance(context.Background(), rows...)
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	assert.Equal(t, "e1", inserted[0].EmployeeID)
}

func TestAttendanceRepository_CountAttendanceByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("present", 3).AddRow("late", 1))

	counts, err := repo.CountAttendanceByStatus(context.Background(), attendance.QueryFilter{
		Visibility: core.Visibility{All: true},
		EmployeeID: "e1",
	})
	require.NoError(t, err)
	assert.Equal(t, map[attendance.Status]int{attendance.StatusPresent: 3, attendance.StatusLate: 1}, counts)
}
