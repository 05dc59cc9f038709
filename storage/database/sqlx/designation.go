package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/designation"
)

const designationColumns = "id, title, department_id, description, created_at, updated_at"

type designationRepository struct {
	exec sqlx.ExtContext
}

var _ designation.Repository = (*designationRepository)(nil) // interface compliance check

func NewDesignationRepository(exec sqlx.ExtContext) *designationRepository {
	return &designationRepository{exec: exec}
}

func (repo designationRepository) uniqueErr(err error, msg string) error {
	if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "designations_title_key" {
		return designation.ErrTitleExists
	}
	return errors.Wrap(err, msg)
}

func (repo designationRepository) CheckDesignationUniqueness(ctx context.Context, title, departmentID, excludeID string) error {
	n, err := count(ctx, repo.exec,
		`SELECT COUNT(*) FROM designations
		WHERE lower(title) = lower(?) AND COALESCE(department_id::text, '') = ? AND id::text <> ?`,
		title, departmentID, excludeID)
	if err != nil {
		return errors.Wrap(err, "checking designation uniqueness")
	}
	if n > 0 {
		return designation.ErrTitleExists
	}
	return nil
}

func (repo designationRepository) CreateDesignation(ctx context.Context, d designation.Designation) (designation.Designation, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO designations (`+designationColumns+`)
		VALUES (:id, :title, :department_id, :description, :created_at, :updated_at)`, d)
	if err != nil {
		return designation.Designation{}, repo.uniqueErr(err, "inserting designation")
	}
	return d, nil
}

func (repo designationRepository) GetDesignationByID(ctx context.Context, id string) (designation.Designation, error) {
	var d designation.Designation
	err := sqlx.GetContext(ctx, repo.exec, &d, `SELECT `+designationColumns+` FROM designations WHERE id = $1`, id)
	if err != nil {
		return designation.Designation{}, trapNoRowsErr(err, designation.ErrNotFound, "getting designation")
	}
	return d, nil
}

func (repo designationRepository) FilterDesignations(ctx context.Context, filter designation.QueryFilter, opts core.ListOptions) ([]designation.Designation, error) {
	var w where
	if filter.Search != "" {
		w.add("title ILIKE ?", likePattern(filter.Search))
	}
	if filter.DepartmentID != "" {
		w.add("department_id = ?", filter.DepartmentID)
	}
	var ds []designation.Designation
	if err := selectList(ctx, repo.exec, &ds, "SELECT "+designationColumns+" FROM designations", w, opts, "title ASC"); err != nil {
		return nil, errors.Wrap(err, "filtering designations")
	}
	return ds, nil
}

func (repo designationRepository) UpdateDesignation(ctx context.Context, d designation.Designation) (designation.Designation, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.exec,
		`UPDATE designations SET title = :title, department_id = :department_id, description = :description,
		updated_at = :updated_at WHERE id = :id`, d)
	if err != nil {
		return designation.Designation{}, repo.uniqueErr(err, "updating designation")
	}
	if err := mustAffect(res, nil, designation.ErrNotFound); err != nil {
		return designation.Designation{}, err
	}
	return d, nil
}

func (repo designationRepository) CountDesignationReferences(ctx context.Context, id string) (int, error) {
	n, err := count(ctx, repo.exec, `SELECT COUNT(*) FROM employees WHERE designation_id = ?`, id)
	return n, errors.Wrap(err, "counting designation references")
}

func (repo designationRepository) DeleteDesignation(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM designations WHERE id = $1`, id)
	return mustAffect(res, err, designation.ErrNotFound)
}
