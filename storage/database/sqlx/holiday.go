package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/holiday"
)

const holidayColumns = "id, name, date, description, created_at, updated_at"

type holidayRepository struct {
	exec sqlx.ExtContext
}

var _ holiday.Repository = (*holidayRepository)(nil) // interface compliance check

func NewHolidayRepository(exec sqlx.ExtContext) *holidayRepository {
	return &holidayRepository{exec: exec}
}

func (repo holidayRepository) uniqueErr(err error, msg string) error {
	if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "holidays_date_key" {
		return holiday.ErrDateExists
	}
	return errors.Wrap(err, msg)
}

func (repo holidayRepository) CreateHoliday(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	_, err := sqlx.NamedExecContext(ctx, repo.exec,
		`INSERT INTO holidays (`+holidayColumns+`) VALUES (:id, :name, :date, :description, :created_at, :updated_at)`, h)
	if err != nil {
		return holiday.Holiday{}, repo.uniqueErr(err, "inserting holiday")
	}
	return h, nil
}

func (repo holidayRepository) GetHolidayByID(ctx context.Context, id string) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := sqlx.GetContext(ctx, repo.exec, &h, `SELECT `+holidayColumns+` FROM holidays WHERE id = $1`, id)
	if err != nil {
		return holiday.Holiday{}, trapNoRowsErr(err, holiday.ErrNotFound, "getting holiday")
	}
	return h, nil
}

func (repo holidayRepository) GetHolidayByDate(ctx context.Context, date core.Date) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := sqlx.GetContext(ctx, repo.exec, &h, `SELECT `+holidayColumns+` FROM holidays WHERE date = $1`, date)
	if err != nil {
		return holiday.Holiday{}, trapNoRowsErr(err, holiday.ErrNotFound, "getting holiday by date")
	}
	return h, nil
}

func (repo holidayRepository) FilterHolidays(ctx context.Context, filter holiday.QueryFilter, opts core.ListOptions) ([]holiday.Holiday, error) {
	var w where
	if !filter.DateFrom.IsZero() {
		w.add("date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		w.add("date <= ?", filter.DateTo)
	}
	var holidays []holiday.Holiday
	if err := selectList(ctx, repo.exec, &holidays, "SELECT "+holidayColumns+" FROM holidays", w, opts, "date ASC"); err != nil {
		return nil, errors.Wrap(err, "filtering holidays")
	}
	return holidays, nil
}

func (repo holidayRepository) UpdateHoliday(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.exec,
		`UPDATE holidays SET name = :name, date = :date, description = :description, updated_at = :updated_at WHERE id = :id`, h)
	if err != nil {
		return holiday.Holiday{}, repo.uniqueErr(err, "updating holiday")
	}
	if err := mustAffect(res, nil, holiday.ErrNotFound); err != nil {
		return holiday.Holiday{}, err
	}
	return h, nil
}

func (repo holidayRepository) DeleteHoliday(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return mustAffect(res, err, holiday.ErrNotFound)
}
