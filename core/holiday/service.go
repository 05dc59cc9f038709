package holiday

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
)

var (
	// errors
	ErrNotFound   = errors.New("holiday not found")
	ErrDateExists = errors.New("a holiday already exists on this date")
)

type (
	Repository interface {
		CreateHoliday(ctx context.Context, h Holiday) (Holiday, error)
		GetHolidayByID(ctx context.Context, id string) (Holiday, error)
		GetHolidayByDate(ctx context.Context, date core.Date) (Holiday, error)
		FilterHolidays(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Holiday, error)
		UpdateHoliday(ctx context.Context, h Holiday) (Holiday, error)
		DeleteHoliday(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) validateNew(ctx context.Context, nh *NewHoliday, excludeID string) (core.Date, error) {
	nh.Clean()
	if err := svc.validate.Struct(nh); err != nil {
		return core.Date{}, err
	}
	date, err := core.ParseDate(nh.Date)
	if err != nil {
		return core.Date{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	existing, err := svc.repo.GetHolidayByDate(ctx, date)
	switch errors.Cause(err) {
	case nil:
		if existing.ID != excludeID {
			return core.Date{}, core.NewValidationError(ErrDateExists, core.FieldError{Field: "date", Error: ErrDateExists.Error()})
		}
	case ErrNotFound:
	default:
		return core.Date{}, errors.Wrap(err, "getting holiday by date")
	}
	return date, nil
}

func (svc *Service) Create(ctx context.Context, nh NewHoliday) (Holiday, error) {
	date, err := svc.validateNew(ctx, &nh, "")
	if err != nil {
		return Holiday{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateHoliday(ctx, Holiday{
		ID:          uuid.NewString(),
		Name:        nh.Name,
		Date:        date,
		Description: nh.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Holiday, error) {
	return svc.repo.GetHolidayByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Holiday, error) {
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	if filter.Year > 0 {
		filter.DateFrom = core.Date{Time: time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)}
		filter.DateTo = core.Date{Time: time.Date(filter.Year, time.December, 31, 0, 0, 0, 0, time.UTC)}
	}
	return svc.repo.FilterHolidays(ctx, filter, opts)
}

func (svc *Service) Update(ctx context.Context, h Holiday, nh NewHoliday) (Holiday, error) {
	date, err := svc.validateNew(ctx, &nh, h.ID)
	if err != nil {
		return Holiday{}, err
	}
	h.Name = nh.Name
	h.Date = date
	h.Description = nh.Description
	h.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateHoliday(ctx, h)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteHoliday(ctx, id)
}

func (svc *Service) IsHoliday(ctx context.Context, date core.Date) (bool, error) {
	_, err := svc.repo.GetHolidayByDate(ctx, date)
	switch errors.Cause(err) {
	case nil:
		return true, nil
	case ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

// Upcoming returns at most limit holidays from date on.
func (svc *Service) Upcoming(ctx context.Context, from core.Date, limit int) ([]Holiday, error) {
	return svc.repo.FilterHolidays(ctx, QueryFilter{DateFrom: from}, core.ListOptions{
		Orderings: []core.DBOrdering{{Field: "date", Ascending: true}},
		Page:      core.Pagination{Page: 1, PageSize: limit},
	})
}
