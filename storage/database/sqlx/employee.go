package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
)

const employeeColumns = `id, employee_code, first_name, last_name, email, phone, gender, date_of_birth, address,
	department_id, designation_id, user_id, employment_type, status, date_of_joining, qr_secret, created_at, updated_at`

type employeeRepository struct {
	exec sqlx.ExtContext
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(exec sqlx.ExtContext) *employeeRepository {
	return &employeeRepository{exec: exec}
}

func (repo employeeRepository) uniqueErr(err error, msg string) error {
	switch constraint, _ := constraintError(err, uniqueViolation); constraint {
	case "employees_employee_code_key":
		return employee.ErrCodeExists
	case "employees_email_key":
		return employee.ErrEmailExists
	case "employees_user_id_key":
		return employee.ErrUserTaken
	}
	return errors.Wrap(err, msg)
}

func (repo employeeRepository) CheckEmployeeUniqueness(ctx context.Context, code, email, userID, excludeID string) error {
	var taken struct {
		Code  bool `db:"code_taken"`
		Email bool `db:"email_taken"`
		User  bool `db:"user_taken"`
	}
	err := sqlx.GetContext(ctx, repo.exec, &taken,
		`SELECT
			COALESCE(BOOL_OR(employee_code = $1), false) AS code_taken,
			COALESCE(BOOL_OR(email = $2), false) AS email_taken,
			COALESCE(BOOL_OR($3 <> '' AND user_id::text = $3), false) AS user_taken
		FROM employees WHERE id::text <> $4`,
		code, email, userID, excludeID,
	)
	if err != nil {
		return errors.Wrap(err, "checking employee uniqueness")
	}
	switch {
	case taken.Code:
		return employee.ErrCodeExists
	case taken.Email:
		return employee.ErrEmailExists
	case taken.User:
		return employee.ErrUserTaken
	}
	return nil
}

func (repo employeeRepository) CreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO employees (`+employeeColumns+`) VALUES (
			:id, :employee_code, :first_name, :last_name, :email, :phone, :gender, :date_of_birth, :address,
			:department_id, :designation_id, :user_id, :employment_type, :status, :date_of_joining, :qr_secret,
			:created_at, :updated_at)`, emp)
	if err != nil {
		return employee.Employee{}, repo.uniqueErr(err, "inserting employee")
	}
	return emp, nil
}

func (repo employeeRepository) getOne(ctx context.Context, cond string, arg interface{}) (employee.Employee, error) {
	var emp employee.Employee
	err := sqlx.GetContext(ctx, repo.exec, &emp, `SELECT `+employeeColumns+` FROM employees WHERE `+cond, arg)
	if err != nil {
		return employee.Employee{}, trapNoRowsErr(err, employee.ErrNotFound, "getting employee")
	}
	return emp, nil
}

func (repo employeeRepository) GetEmployeeByID(ctx context.Context, id string) (employee.Employee, error) {
	return repo.getOne(ctx, "id = $1", id)
}

func (repo employeeRepository) GetEmployeeByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return repo.getOne(ctx, "user_id = $1", userID)
}

func (repo employeeRepository) FilterEmployees(ctx context.Context, filter employee.QueryFilter, opts core.ListOptions) ([]employee.Employee, error) {
	var w where
	if filter.Search != "" {
		val := likePattern(filter.Search)
		w.add("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR employee_code ILIKE ?)", val, val, val, val)
	}
	if filter.DepartmentID != "" {
		w.add("department_id = ?", filter.DepartmentID)
	}
	if filter.DesignationID != "" {
		w.add("designation_id = ?", filter.DesignationID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.EmploymentType != "" {
		w.add("employment_type = ?", filter.EmploymentType)
	}
	if filter.DepartmentIDs != nil {
		w.add("department_id = ANY(?)", pq.Array(filter.DepartmentIDs))
	}
	var emps []employee.Employee
	if err := selectList(ctx, repo.exec, &emps, "SELECT "+employeeColumns+" FROM employees", w, opts, "employee_code ASC"); err != nil {
		return nil, errors.Wrap(err, "filtering employees")
	}
	return emps, nil
}

func (repo employeeRepository) ListActiveEmployees(ctx context.Context, joinedBy core.Date) ([]employee.Employee, error) {
	var emps []employee.Employee
	err := sqlx.SelectContext(ctx, repo.exec, &emps,
		`SELECT `+employeeColumns+` FROM employees WHERE status = $1 AND date_of_joining <= $2 ORDER BY employee_code`,
		employee.StatusActive, joinedBy)
	return emps, errors.Wrap(err, "listing active employees")
}

func (repo employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.exec,
		`UPDATE employees SET employee_code = :employee_code, first_name = :first_name, last_name = :last_name,
			email = :email, phone = :phone, gender = :gender, date_of_birth = :date_of_birth, address = :address,
			department_id = :department_id, designation_id = :designation_id, user_id = :user_id,
			employment_type = :employment_type, status = :status, date_of_joining = :date_of_joining,
			updated_at = :updated_at
		WHERE id = :id`, emp)
	if err != nil {
		return employee.Employee{}, repo.uniqueErr(err, "updating employee")
	}
	if err := mustAffect(res, nil, employee.ErrNotFound); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}

func (repo employeeRepository) SetQRSecret(ctx context.Context, id string, secret []byte) error {
	res, err := repo.exec.ExecContext(ctx, `UPDATE employees SET qr_secret = $2, updated_at = now() WHERE id = $1`, id, secret)
	return mustAffect(res, err, employee.ErrNotFound)
}

func (repo employeeRepository) DeleteEmployee(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return mustAffect(res, err, employee.ErrNotFound)
}

func (repo employeeRepository) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, repo.exec, &exists, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id)
	return exists, errors.Wrap(err, "checking employee existence")
}

func (repo employeeRepository) CountEmployees(ctx context.Context) (employee.Counts, error) {
	var counts employee.Counts
	err := sqlx.GetContext(ctx, repo.exec, &counts,
		`SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = $1) AS active FROM employees`, employee.StatusActive)
	return counts, errors.Wrap(err, "counting employees")
}
