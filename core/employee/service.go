package employee

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/designation"
	"github.com/trezcool/hrms/core/user"
)

const qrSecretLen = 32

var (
	// errors
	ErrNotFound              = errors.New("employee not found")
	ErrCodeExists            = errors.New("an employee with this code already exists")
	ErrEmailExists           = errors.New("an employee with this email already exists")
	ErrUserTaken             = errors.New("this user is already linked to another employee")
	ErrDesignationDepartment = errors.New("designation does not belong to the department")
)

type (
	Repository interface {
		// CheckEmployeeUniqueness returns ErrCodeExists, ErrEmailExists or ErrUserTaken on a clash.
		CheckEmployeeUniqueness(ctx context.Context, code, email, userID, excludeID string) error
		CreateEmployee(ctx context.Context, emp Employee) (Employee, error)
		GetEmployeeByID(ctx context.Context, id string) (Employee, error)
		GetEmployeeByUserID(ctx context.Context, userID string) (Employee, error)
		FilterEmployees(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Employee, error)
		// ListActiveEmployees returns the active employees who joined on or before the given date.
		ListActiveEmployees(ctx context.Context, joinedBy core.Date) ([]Employee, error)
		UpdateEmployee(ctx context.Context, emp Employee) (Employee, error)
		SetQRSecret(ctx context.Context, id string, secret []byte) error
		DeleteEmployee(ctx context.Context, id string) error
		EmployeeExists(ctx context.Context, id string) (bool, error)
		CountEmployees(ctx context.Context) (Counts, error)
	}

	DepartmentGetter interface {
		GetByID(ctx context.Context, id string) (department.Department, error)
	}

	DesignationGetter interface {
		GetByID(ctx context.Context, id string) (designation.Designation, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo         Repository
		departments  DepartmentGetter
		designations DesignationGetter
		users        UserGetter
		validate     *validator.Validate
	}
)

func NewService(
	repo Repository,
	departments DepartmentGetter,
	designations DesignationGetter,
	users UserGetter,
	validate *validator.Validate,
) *Service {
	return &Service{
		repo:         repo,
		departments:  departments,
		designations: designations,
		users:        users,
		validate:     validate,
	}
}

// NewQRSecret returns a fresh random per-employee QR signing secret.
func NewQRSecret() ([]byte, error) {
	secret := make([]byte, qrSecretLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

func (svc *Service) validateNew(ctx context.Context, ne *NewEmployee, excludeID string) (born, joined core.Date, err error) {
	ne.Clean()
	if err = svc.validate.Struct(ne); err != nil {
		return
	}
	if ne.DateOfBirth != "" {
		if born, err = core.ParseDate(ne.DateOfBirth); err != nil {
			return
		}
	}
	if joined, err = core.ParseDate(ne.DateOfJoining); err != nil {
		return
	}

	var fldErrs []core.FieldError
	if ne.DepartmentID != "" {
		if _, dErr := svc.departments.GetByID(ctx, ne.DepartmentID); dErr != nil {
			if errors.Cause(dErr) != department.ErrNotFound {
				err = errors.Wrap(dErr, "getting department")
				return
			}
			fldErrs = append(fldErrs, core.FieldError{Field: "department_id", Error: dErr.Error()})
		}
	}
	if ne.DesignationID != "" {
		desig, dErr := svc.designations.GetByID(ctx, ne.DesignationID)
		switch {
		case dErr == nil:
			if desig.DepartmentID != nil && *desig.DepartmentID != ne.DepartmentID {
				fldErrs = append(fldErrs, core.FieldError{Field: "designation_id", Error: ErrDesignationDepartment.Error()})
			}
		case errors.Cause(dErr) == designation.ErrNotFound:
			fldErrs = append(fldErrs, core.FieldError{Field: "designation_id", Error: dErr.Error()})
		default:
			err = errors.Wrap(dErr, "getting designation")
			return
		}
	}
	if ne.UserID != "" {
		if _, uErr := svc.users.GetByID(ctx, ne.UserID); uErr != nil {
			if errors.Cause(uErr) != user.ErrNotFound {
				err = errors.Wrap(uErr, "getting user")
				return
			}
			fldErrs = append(fldErrs, core.FieldError{Field: "user_id", Error: uErr.Error()})
		}
	}
	if len(fldErrs) > 0 {
		err = core.NewValidationError(nil, fldErrs...)
		return
	}

	if uErr := svc.repo.CheckEmployeeUniqueness(ctx, ne.EmployeeCode, ne.Email, ne.UserID, excludeID); uErr != nil {
		var field string
		switch uErr {
		case ErrCodeExists:
			field = "employee_code"
		case ErrEmailExists:
			field = "email"
		case ErrUserTaken:
			field = "user_id"
		default:
			err = errors.Wrap(uErr, "checking employee uniqueness")
			return
		}
		err = core.NewValidationError(uErr, core.FieldError{Field: field, Error: uErr.Error()})
	}
	return
}

func (svc *Service) apply(emp *Employee, ne NewEmployee, born, joined core.Date) {
	emp.EmployeeCode = ne.EmployeeCode
	emp.FirstName = ne.FirstName
	emp.LastName = ne.LastName
	emp.Email = ne.Email
	emp.Phone = ne.Phone
	emp.Gender = Gender(ne.Gender)
	emp.DateOfBirth = born
	emp.Address = ne.Address
	emp.DepartmentID = core.StringPtr(ne.DepartmentID)
	emp.DesignationID = core.StringPtr(ne.DesignationID)
	emp.UserID = core.StringPtr(ne.UserID)
	emp.EmploymentType = EmploymentType(ne.EmploymentType)
	emp.Status = Status(ne.Status)
	emp.DateOfJoining = joined
}

func (svc *Service) Create(ctx context.Context, ne NewEmployee) (Employee, error) {
	born, joined, err := svc.validateNew(ctx, &ne, "")
	if err != nil {
		return Employee{}, err
	}
	secret, err := NewQRSecret()
	if err != nil {
		return Employee{}, errors.Wrap(err, "generating QR secret")
	}

	now := time.Now().UTC()
	emp := Employee{
		ID:        uuid.NewString(),
		QRSecret:  secret,
		CreatedAt: now,
		UpdatedAt: now,
	}
	svc.apply(&emp, ne, born, joined)
	return svc.repo.CreateEmployee(ctx, emp)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Employee, error) {
	return svc.repo.GetEmployeeByID(ctx, id)
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Employee, error) {
	if userID == "" {
		return Employee{}, ErrNotFound
	}
	return svc.repo.GetEmployeeByUserID(ctx, userID)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Employee, error) {
	filter.Clean()
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterEmployees(ctx, filter, opts)
}

func (svc *Service) Export(ctx context.Context, filter QueryFilter, opts core.ListOptions) (core.Table, error) {
	opts.Page = core.Pagination{}
	rows, err := svc.Query(ctx, filter, opts)
	if err != nil {
		return core.Table{}, err
	}
	return Table(rows), nil
}

func (svc *Service) ListActive(ctx context.Context, joinedBy core.Date) ([]Employee, error) {
	return svc.repo.ListActiveEmployees(ctx, joinedBy)
}

func (svc *Service) Update(ctx context.Context, emp Employee, ne NewEmployee) (Employee, error) {
	born, joined, err := svc.validateNew(ctx, &ne, emp.ID)
	if err != nil {
		return Employee{}, err
	}
	svc.apply(&emp, ne, born, joined)
	emp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEmployee(ctx, emp)
}

// RotateQRSecret replaces the employee's QR secret, invalidating every outstanding QR token.
func (svc *Service) RotateQRSecret(ctx context.Context, emp Employee) (Employee, error) {
	secret, err := NewQRSecret()
	if err != nil {
		return Employee{}, errors.Wrap(err, "generating QR secret")
	}
	if err := svc.repo.SetQRSecret(ctx, emp.ID, secret); err != nil {
		return Employee{}, errors.Wrap(err, "saving QR secret")
	}
	emp.QRSecret = secret
	return emp, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEmployee(ctx, id)
}

func (svc *Service) Counts(ctx context.Context) (Counts, error) {
	return svc.repo.CountEmployees(ctx)
}
