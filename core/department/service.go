package department

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
	ErrNotFound     = errors.New("department not found")
	ErrNameExists   = errors.New("a department with this name already exists")
	ErrCodeExists   = errors.New("a department with this code already exists")
	ErrInUse        = errors.New("department still has employees or designations")
	ErrHeadNotFound = errors.New("head employee not found")
)

type (
	Repository interface {
		CheckDepartmentUniqueness(ctx context.Context, name, code string, excludeID string) error
		CreateDepartment(ctx context.Context, dept Department) (Department, error)
		GetDepartmentByID(ctx context.Context, id string) (Department, error)
		// GetDepartmentsByHead returns the departments headed by the given employee.
		GetDepartmentsByHead(ctx context.Context, employeeID string) ([]Department, error)
		FilterDepartments(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Department, error)
		UpdateDepartment(ctx context.Context, dept Department) (Department, error)
		CountDepartmentReferences(ctx context.Context, id string) (int, error)
		DeleteDepartment(ctx context.Context, id string) error
		CountDepartments(ctx context.Context) (int, error)
	}

	// EmployeeChecker tells whether an employee exists.
	EmployeeChecker interface {
		EmployeeExists(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo      Repository
		employees EmployeeChecker
		validate  *validator.Validate
	}
)

func NewService(repo Repository, employees EmployeeChecker, validate *validator.Validate) *Service {
	return &Service{repo: repo, employees: employees, validate: validate}
}

func (svc *Service) validateNew(ctx context.Context, nd *NewDepartment, excludeID string) error {
	nd.Clean()
	if err := svc.validate.Struct(nd); err != nil {
		return err
	}
	if err := svc.repo.CheckDepartmentUniqueness(ctx, nd.Name, nd.Code, excludeID); err != nil {
		switch err {
		case ErrNameExists:
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		case ErrCodeExists:
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		default:
			return errors.Wrap(err, "checking department uniqueness")
		}
	}
	if nd.HeadID != "" {
		exists, err := svc.employees.EmployeeExists(ctx, nd.HeadID)
		if err != nil {
			return errors.Wrap(err, "checking head employee")
		}
		if !exists {
			return core.NewValidationError(ErrHeadNotFound, core.FieldError{Field: "head_id", Error: ErrHeadNotFound.Error()})
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nd NewDepartment) (Department, error) {
	if err := svc.validateNew(ctx, &nd, ""); err != nil {
		return Department{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateDepartment(ctx, Department{
		ID:          uuid.NewString(),
		Name:        nd.Name,
		Code:        nd.Code,
		Description: nd.Description,
		HeadID:      core.StringPtr(nd.HeadID),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Department, error) {
	return svc.repo.GetDepartmentByID(ctx, id)
}

// HeadedBy returns the departments the employee heads.
func (svc *Service) HeadedBy(ctx context.Context, employeeID string) ([]Department, error) {
	if employeeID == "" {
		return nil, nil
	}
	return svc.repo.GetDepartmentsByHead(ctx, employeeID)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Department, error) {
	filter.Clean()
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterDepartments(ctx, filter, opts)
}

func (svc *Service) Update(ctx context.Context, dept Department, nd NewDepartment) (Department, error) {
	if err := svc.validateNew(ctx, &nd, dept.ID); err != nil {
		return Department{}, err
	}
	dept.Name = nd.Name
	dept.Code = nd.Code
	dept.Description = nd.Description
	dept.HeadID = core.StringPtr(nd.HeadID)
	dept.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDepartment(ctx, dept)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	refs, err := svc.repo.CountDepartmentReferences(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting department references")
	}
	if refs > 0 {
		return core.NewConflictError(ErrInUse)
	}
	return svc.repo.DeleteDepartment(ctx, id)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountDepartments(ctx)
}
