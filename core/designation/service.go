package designation

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/department"
)

var (
	// errors
	ErrNotFound    = errors.New("designation not found")
	ErrTitleExists = errors.New("a designation with this title already exists in the department")
	ErrInUse       = errors.New("designation is still assigned to employees")
)

type (
	Repository interface {
		CheckDesignationUniqueness(ctx context.Context, title, departmentID, excludeID string) error
		CreateDesignation(ctx context.Context, d Designation) (Designation, error)
		GetDesignationByID(ctx context.Context, id string) (Designation, error)
		FilterDesignations(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Designation, error)
		UpdateDesignation(ctx context.Context, d Designation) (Designation, error)
		CountDesignationReferences(ctx context.Context, id string) (int, error)
		DeleteDesignation(ctx context.Context, id string) error
	}

	DepartmentGetter interface {
		GetByID(ctx context.Context, id string) (department.Department, error)
	}

	Service struct {
		repo        Repository
		departments DepartmentGetter
		validate    *validator.Validate
	}
)

func NewService(repo Repository, departments DepartmentGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, departments: departments, validate: validate}
}

func (svc *Service) validateNew(ctx context.Context, nd *NewDesignation, excludeID string) error {
	nd.Clean()
	if err := svc.validate.Struct(nd); err != nil {
		return err
	}
	if nd.DepartmentID != "" {
		if _, err := svc.departments.GetByID(ctx, nd.DepartmentID); err != nil {
			if errors.Cause(err) == department.ErrNotFound {
				return core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
			}
			return errors.Wrap(err, "getting department")
		}
	}
	if err := svc.repo.CheckDesignationUniqueness(ctx, nd.Title, nd.DepartmentID, excludeID); err != nil {
		if err == ErrTitleExists {
			return core.NewValidationError(err, core.FieldError{Field: "title", Error: err.Error()})
		}
		return errors.Wrap(err, "checking designation uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nd NewDesignation) (Designation, error) {
	if err := svc.validateNew(ctx, &nd, ""); err != nil {
		return Designation{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateDesignation(ctx, Designation{
		ID:           uuid.NewString(),
		Title:        nd.Title,
		DepartmentID: core.StringPtr(nd.DepartmentID),
		Description:  nd.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Designation, error) {
	return svc.repo.GetDesignationByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Designation, error) {
	filter.Clean()
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterDesignations(ctx, filter, opts)
}

func (svc *Service) Update(ctx context.Context, d Designation, nd NewDesignation) (Designation, error) {
	if err := svc.validateNew(ctx, &nd, d.ID); err != nil {
		return Designation{}, err
	}
	d.Title = nd.Title
	d.DepartmentID = core.StringPtr(nd.DepartmentID)
	d.Description = nd.Description
	d.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDesignation(ctx, d)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	refs, err := svc.repo.CountDesignationReferences(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting designation references")
	}
	if refs > 0 {
		return core.NewConflictError(ErrInUse)
	}
	return svc.repo.DeleteDesignation(ctx, id)
}
