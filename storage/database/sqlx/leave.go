package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/leave"
)

const (
	leaveColumns = `id, employee_id, leave_type, start_date, end_date, days, reason, status,
	department_reviewer_id, department_reviewed_at, department_comment, reviewer_id, reviewed_at, review_comment,
	created_at, updated_at`

	leaveView = `(SELECT l.*, e.first_name || ' ' || e.last_name AS employee_name, e.employee_code, e.department_id
		FROM leave_requests l JOIN employees e ON e.id = l.employee_id) AS lv`
)

type leaveRepository struct {
	exec sqlx.ExtContext
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(exec sqlx.ExtContext) *leaveRepository {
	return &leaveRepository{exec: exec}
}

func statusArray(statuses []leave.Status) interface{} {
	strs := make([]string, 0, len(statuses))
	for _, st := range statuses {
		strs = append(strs, string(st))
	}
	return pq.Array(strs)
}

func (repo leaveRepository) CreateLeave(ctx context.Context, lr leave.LeaveRequest) (leave.LeaveRequest, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO leave_requests (`+leaveColumns+`) VALUES (
			:id, :employee_id, :leave_type, :start_date, :end_date, :days, :reason, :status,
			:department_reviewer_id, :department_reviewed_at, :department_comment, :reviewer_id, :reviewed_at,
			:review_comment, :created_at, :updated_at)`, lr)
	if err != nil {
		return leave.LeaveRequest{}, errors.Wrap(err, "inserting leave request")
	}
	return lr, nil
}

func (repo leaveRepository) GetLeaveByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := sqlx.GetContext(ctx, repo.exec, &lr, `SELECT * FROM `+leaveView+` WHERE id = $1`, id)
	if err != nil {
		return leave.LeaveRequest{}, trapNoRowsErr(err, leave.ErrNotFound, "getting leave request")
	}
	return lr, nil
}

func (repo leaveRepository) FilterLeaves(ctx context.Context, filter leave.QueryFilter, opts core.ListOptions) ([]leave.LeaveRequest, error) {
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
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", statusArray(filter.Statuses))
	}
	if filter.LeaveType != "" {
		w.add("leave_type = ?", filter.LeaveType)
	}
	// requests overlapping the range
	if !filter.DateFrom.IsZero() {
		w.add("end_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add("start_date <= ?", filter.DateTo)
	}

	var lrs []leave.LeaveRequest
	if err := selectList(ctx, repo.exec, &lrs, "SELECT * FROM "+leaveView, w, opts, "created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "filtering leave requests")
	}
	return lrs, nil
}

func (repo leaveRepository) TransitionLeave(ctx context.Context, lr leave.LeaveRequest, from ...leave.Status) (leave.LeaveRequest, error) {
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE leave_requests SET status = $2, department_reviewer_id = $3, department_reviewed_at = $4,
			department_comment = $5, reviewer_id = $6, reviewed_at = $7, review_comment = $8, updated_at = $9
		WHERE id = $1 AND status = ANY($10)`,
		lr.ID, lr.Status, lr.DepartmentReviewerID, lr.DepartmentReviewedAt, lr.DepartmentComment,
		lr.ReviewerID, lr.ReviewedAt, lr.ReviewComment, lr.UpdatedAt, statusArray(from),
	)
	if err != nil {
		return leave.LeaveRequest{}, errors.Wrap(err, "updating leave request")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if n == 0 {
		if _, err := repo.GetLeaveByID(ctx, lr.ID); err != nil {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}
	return lr, nil
}

func (repo leaveRepository) HasOverlappingLeave(ctx context.Context, employeeID string, start, end core.Date, statuses ...leave.Status) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, repo.exec, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND start_date <= $3 AND end_date >= $2 AND status = ANY($4)
		)`,
		employeeID, start, end, statusArray(statuses),
	)
	return exists, errors.Wrap(err, "checking overlapping leave")
}

func (repo leaveRepository) LeaveDaysByType(ctx context.Context, employeeID string, from, to core.Date, statuses ...leave.Status) ([]leave.DaysUsed, error) {
	var used []leave.DaysUsed
	err := sqlx.SelectContext(ctx, repo.exec, &used,
		`SELECT leave_type, status, SUM(days) AS days FROM leave_requests
		WHERE employee_id = $1 AND start_date BETWEEN $2 AND $3 AND status = ANY($4)
		GROUP BY leave_type, status
		ORDER BY leave_type, status`,
		employeeID, from, to, statusArray(statuses),
	)
	return used, errors.Wrap(err, "summing leave days")
}

func (repo leaveRepository) EmployeesOnLeave(ctx context.Context, date core.Date) ([]string, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, repo.exec, &ids,
		`SELECT DISTINCT employee_id FROM leave_requests
		WHERE status = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY employee_id`,
		leave.StatusApproved, date,
	)
	return ids, errors.Wrap(err, "listing employees on leave")
}

func (repo leaveRepository) CountLeaves(ctx context.Context, statuses ...leave.Status) (int, error) {
	if len(statuses) == 0 {
		n, err := count(ctx, repo.exec, `SELECT COUNT(*) FROM leave_requests`)
		return n, errors.Wrap(err, "counting leave requests")
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM leave_requests WHERE status IN (?)`, statuses)
	if err != nil {
		return 0, errors.Wrap(err, "binding leave statuses")
	}
	n, err := count(ctx, repo.exec, query, args...)
	return n, errors.Wrap(err, "counting leave requests")
}
