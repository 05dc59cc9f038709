package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
)

const (
	attendanceColumns = "id, employee_id, date, check_in, check_out, status, source, notes, created_at, updated_at"

	// attendanceView joins the employee fields shown in lists.
	attendanceView = `(SELECT a.*, e.first_name || ' ' || e.last_name AS employee_name, e.employee_code, e.department_id
		FROM attendance a JOIN employees e ON e.id = a.employee_id) AS att`
)

type attendanceRepository struct {
	exec sqlx.ExtContext
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec sqlx.ExtContext) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func attendanceWhere(filter attendance.QueryFilter) where {
	var w where
	w.visibility(filter.Visibility, "employee_id", "department_id")
	if filter.EmployeeID != "" {
		w.add("employee_id = ?", filter.EmployeeID)
	}
	if filter.DepartmentID != "" {
		w.add("department_id = ?", filter.DepartmentID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Source != "" {
		w.add("source = ?", filter.Source)
	}
	if !filter.DateFrom.IsZero() {
		w.add("date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add("date <= ?", filter.DateTo)
	}
	return w
}

func (repo attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (:id, :employee_id, :date, :check_in, :check_out, :status, :source, :notes, :created_at, :updated_at)`, a)
	if err != nil {
		if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "attendance_employee_id_date_key" {
			return attendance.Attendance{}, attendance.ErrAlreadyRecorded
		}
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	return a, nil
}

func (repo attendanceRepository) getOne(ctx context.Context, cond string, args ...interface{}) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := sqlx.GetContext(ctx, repo.exec, &a, sqlx.Rebind(sqlx.DOLLAR, "SELECT * FROM "+attendanceView+" WHERE "+cond), args...)
	if err != nil {
		return attendance.Attendance{}, trapNoRowsErr(err, attendance.ErrNotFound, "getting attendance")
	}
	return a, nil
}

func (repo attendanceRepository) GetAttendanceByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return repo.getOne(ctx, "id = ?", id)
}

func (repo attendanceRepository) GetAttendanceByEmployeeDate(ctx context.Context, employeeID string, date core.Date) (attendance.Attendance, error) {
	return repo.getOne(ctx, "employee_id = ? AND date = ?", employeeID, date)
}

func (repo attendanceRepository) FilterAttendance(ctx context.Context, filter attendance.QueryFilter, opts core.ListOptions) ([]attendance.Attendance, error) {
	var rows []attendance.Attendance
	err := selectList(ctx, repo.exec, &rows, "SELECT * FROM "+attendanceView, attendanceWhere(filter), opts, "date DESC, employee_code ASC")
	if err != nil {
		return nil, errors.Wrap(err, "filtering attendance")
	}
	return rows, nil
}

func (repo attendanceRepository) CountAttendanceByStatus(ctx context.Context, filter attendance.QueryFilter) (map[attendance.Status]int, error) {
	w := attendanceWhere(filter)
	var counts []struct {
		Status attendance.Status `db:"status"`
		Count  int               `db:"count"`
	}
	query := sqlx.Rebind(sqlx.DOLLAR, "SELECT status, COUNT(*) AS count FROM "+attendanceView+w.String()+" GROUP BY status")
	if err := sqlx.SelectContext(ctx, repo.exec, &counts, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "counting attendance")
	}
	byStatus := make(map[attendance.Status]int, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}
	return byStatus, nil
}

func (repo attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.exec,
		`UPDATE attendance SET check_in = :check_in, check_out = :check_out, status = :status, source = :source,
		notes = :notes, updated_at = :updated_at WHERE id = :id`, a)
	if err := mustAffect(res, err, attendance.ErrNotFound); err != nil {
		if err == attendance.ErrNotFound {
			return attendance.Attendance{}, err
		}
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return a, nil
}

func (repo attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	return mustAffect(res, err, attendance.ErrNotFound)
}

func (repo attendanceRepository) InsertMissingAttendance(ctx context.Context, rows ...attendance.Attendance) ([]attendance.Attendance, error) {
	inserted := make([]attendance.Attendance, 0, len(rows))
	for _, a := range rows {
		q, args, err := sqlx.Named(
			`INSERT INTO attendance (`+attendanceColumns+`)
			VALUES (:id, :employee_id, :date, :check_in, :check_out, :status, :source, :notes, :created_at, :updated_at)
			ON CONFLICT (employee_id, date) DO NOTHING`, a)
		if err != nil {
			return inserted, errors.Wrap(err, "binding attendance")
		}
		res, err := repo.exec.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...)
		if err != nil {
			return inserted, errors.Wrap(err, "inserting missing attendance")
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted = append(inserted, a)
		}
	}
	return inserted, nil
}
