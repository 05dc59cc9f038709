package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/loyalty"
)

const (
	awardColumns = "id, employee_id, title, description, milestone_years, awarded_on, awarded_by, created_at"

	awardView = `(SELECT la.*, e.first_name || ' ' || e.last_name AS employee_name, e.department_id
		FROM loyalty_awards la JOIN employees e ON e.id = la.employee_id) AS aw`
)

type loyaltyRepository struct {
	exec sqlx.ExtContext
}

var _ loyalty.Repository = (*loyaltyRepository)(nil) // interface compliance check

func NewLoyaltyRepository(exec sqlx.ExtContext) *loyaltyRepository {
	return &loyaltyRepository{exec: exec}
}

func (repo loyaltyRepository) CreateAward(ctx context.Context, a loyalty.Award) (loyalty.Award, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO loyalty_awards (`+awardColumns+`)
		VALUES (:id, :employee_id, :title, :description, :milestone_years, :awarded_on, :awarded_by, :created_at)`, a)
	if err != nil {
		if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "loyalty_awards_employee_id_milestone_years_key" {
			return loyalty.Award{}, loyalty.ErrAlreadyAwarded
		}
		return loyalty.Award{}, errors.Wrap(err, "inserting award")
	}
	return a, nil
}

func (repo loyaltyRepository) GetAwardByID(ctx context.Context, id string) (loyalty.Award, error) {
	var a loyalty.Award
	err := sqlx.GetContext(ctx, repo.exec, &a,
		`SELECT `+awardColumns+`, employee_name FROM `+awardView+` WHERE id = $1`, id)
	if err != nil {
		return loyalty.Award{}, trapNoRowsErr(err, loyalty.ErrNotFound, "getting award")
	}
	return a, nil
}

func (repo loyaltyRepository) FilterAwards(ctx context.Context, filter loyalty.QueryFilter, opts core.ListOptions) ([]loyalty.Award, error) {
	var w where
	w.visibility(filter.Visibility, "employee_id", "department_id")
	if filter.EmployeeID != "" {
		w.add("employee_id = ?", filter.EmployeeID)
	}
	if filter.MilestoneYears > 0 {
		w.add("milestone_years = ?", filter.MilestoneYears)
	}
	var awards []loyalty.Award
	err := selectList(ctx, repo.exec, &awards, "SELECT "+awardColumns+", employee_name FROM "+awardView, w, opts, "awarded_on DESC")
	if err != nil {
		return nil, errors.Wrap(err, "filtering awards")
	}
	return awards, nil
}

func (repo loyaltyRepository) UpdateAward(ctx context.Context, a loyalty.Award) (loyalty.Award, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.exec,
		`UPDATE loyalty_awards SET title = :title, description = :description, milestone_years = :milestone_years,
		awarded_on = :awarded_on WHERE id = :id`, a)
	if err != nil {
		if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "loyalty_awards_employee_id_milestone_years_key" {
			return loyalty.Award{}, loyalty.ErrAlreadyAwarded
		}
		return loyalty.Award{}, errors.Wrap(err, "updating award")
	}
	if err := mustAffect(res, nil, loyalty.ErrNotFound); err != nil {
		return loyalty.Award{}, err
	}
	return a, nil
}

func (repo loyaltyRepository) DeleteAward(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM loyalty_awards WHERE id = $1`, id)
	return mustAffect(res, err, loyalty.ErrNotFound)
}

func (repo loyaltyRepository) ListAwardedMilestones(ctx context.Context) ([]loyalty.Milestone, error) {
	var ms []loyalty.Milestone
	err := sqlx.SelectContext(ctx, repo.exec, &ms, `SELECT employee_id, milestone_years FROM loyalty_awards`)
	return ms, errors.Wrap(err, "listing awarded milestones")
}
