package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/department"
)

const departmentColumns = "id, name, code, description, head_id, created_at, updated_at"

type departmentRepository struct {
	exec sqlx.ExtContext
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(exec sqlx.ExtContext) *departmentRepository {
	return &departmentRepository{exec: exec}
}

func (repo departmentRepository) uniqueErr(err error, msg string) error {
	switch constraint, _ := constraintError(err, uniqueViolation); constraint {
	case "departments_name_key":
		return department.ErrNameExists
	case "departments_code_key":
		return department.ErrCodeExists
	}
	if _, ok := constraintError(err, foreignKeyViolation); ok {
		return department.ErrHeadNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo departmentRepository) CheckDepartmentUniqueness(ctx context.Context, name, code string, excludeID string) error {
	var taken struct {
		Name bool `db:"name_taken"`
		Code bool `db:"code_taken"`
	}
	err := sqlx.GetContext(ctx, repo.exec, &taken,
		`SELECT
			COALESCE(BOOL_OR(lower(name) = lower($1)), false) AS name_taken,
			COALESCE(BOOL_OR(code = $2), false) AS code_taken
		FROM departments WHERE id::text <> $3`,
		name, code, excludeID,
	)
	if err != nil {
		return errors.Wrap(err, "checking department uniqueness")
	}
	switch {
	case taken.Name:
		return department.ErrNameExists
	case taken.Code:
		return department.ErrCodeExists
	}
	return nil
}

func (repo departmentRepository) CreateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO departments (`+departmentColumns+`)
		VALUES (:id, :name, :code, :description, :head_id, :created_at, :updated_at)`, dept)
	if err != nil {
		return department.Department{}, repo.uniqueErr(err, "inserting department")
	}
	return dept, nil
}

func (repo departmentRepository) GetDepartmentByID(ctx context.Context, id string) (department.Department, error) {
	var dept department.Department
	err := sqlx.GetContext(ctx, repo.exec, &dept, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id)
	if err != nil {
		return department.Department{}, trapNoRowsErr(err, department.ErrNotFound, "getting department")
	}
	return dept, nil
}

func (repo departmentRepository) GetDepartmentsByHead(ctx context.Context, employeeID string) ([]department.Department, error) {
	var depts []department.Department
	err := sqlx.SelectContext(ctx, repo.exec, &depts,
		`SELECT `+departmentColumns+` FROM departments WHERE head_id = $1 ORDER BY name`, employeeID)
	return depts, errors.Wrap(err, "getting departments by head")
}

func (repo departmentRepository) FilterDepartments(ctx context.Context, filter department.QueryFilter, opts core.ListOptions) ([]department.Department, error) {
	var w where
	if filter.Search != "" {
		val := likePattern(filter.Search)
		w.add("(name ILIKE ? OR code ILIKE ?)", val, val)
	}
	var depts []department.Department
	if err := selectList(ctx, repo.exec, &depts, "SELECT "+departmentColumns+" FROM departments", w, opts, "name ASC"); err != nil {
		return nil, errors.Wrap(err, "filtering departments")
	}
	return depts, nil
}

func (repo departmentRepository) UpdateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.exec,
		`UPDATE departments SET name = :name, code = :code, description = :description, head_id = :head_id,
		updated_at = :updated_at WHERE id = :id`, dept)
	if err != nil {
		return department.Department{}, repo.uniqueErr(err, "updating department")
	}
	if err := mustAffect(res, nil, department.ErrNotFound); err != nil {
		return department.Department{}, err
	}
	return dept, nil
}

func (repo departmentRepository) CountDepartmentReferences(ctx context.Context, id string) (int, error) {
	n, err := count(ctx, repo.exec,
		`SELECT (SELECT COUNT(*) FROM employees WHERE department_id = ?) + (SELECT COUNT(*) FROM designations WHERE department_id = ?)`,
		id, id)
	return n, errors.Wrap(err, "counting department references")
}

func (repo departmentRepository) DeleteDepartment(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	return mustAffect(res, err, department.ErrNotFound)
}

func (repo departmentRepository) CountDepartments(ctx context.Context) (int, error) {
	n, err := count(ctx, repo.exec, `SELECT COUNT(*) FROM departments`)
	return n, errors.Wrap(err, "counting departments")
}
