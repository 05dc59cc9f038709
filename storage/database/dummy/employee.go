package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
)

type employeeRepository struct {
	db *DB
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(db *DB) *employeeRepository {
	return &employeeRepository{db: db}
}

var employeeComparers = comparers[employee.Employee]{
	"employee_code":   func(a, b employee.Employee) int { return cmpStrings(a.EmployeeCode, b.EmployeeCode) },
	"first_name":      func(a, b employee.Employee) int { return cmpStrings(a.FirstName, b.FirstName) },
	"last_name":       func(a, b employee.Employee) int { return cmpStrings(a.LastName, b.LastName) },
	"email":           func(a, b employee.Employee) int { return cmpStrings(a.Email, b.Email) },
	"date_of_joining": func(a, b employee.Employee) int { return cmpDates(a.DateOfJoining, b.DateOfJoining) },
	"status":          func(a, b employee.Employee) int { return cmpStrings(string(a.Status), string(b.Status)) },
	"created_at":      func(a, b employee.Employee) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func (repo *employeeRepository) checkUniqueness(code, email, userID, excludeID string) error {
	for _, emp := range repo.db.employees {
		if emp.ID == excludeID {
			continue
		}
		if emp.EmployeeCode == code {
			return employee.ErrCodeExists
		}
		if emp.Email == email {
			return employee.ErrEmailExists
		}
		if userID != "" && core.StringValue(emp.UserID) == userID {
			return employee.ErrUserTaken
		}
	}
	return nil
}

func (repo *employeeRepository) CheckEmployeeUniqueness(_ context.Context, code, email, userID, excludeID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.checkUniqueness(code, email, userID, excludeID)
}

func (repo *employeeRepository) CreateEmployee(_ context.Context, emp employee.Employee) (employee.Employee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkUniqueness(emp.EmployeeCode, emp.Email, core.StringValue(emp.UserID), emp.ID); err != nil {
		return employee.Employee{}, err
	}
	repo.db.employees[emp.ID] = emp
	return emp, nil
}

func (repo *employeeRepository) GetEmployeeByID(_ context.Context, id string) (employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if emp, ok := repo.db.employees[id]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) GetEmployeeByUserID(_ context.Context, userID string) (employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, emp := range repo.db.employees {
		if emp.UserID != nil && *emp.UserID == userID {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) FilterEmployees(_ context.Context, qf employee.QueryFilter, opts core.ListOptions) ([]employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	emps := filter(values(repo.db.employees), func(e employee.Employee) bool {
		if qf.Search != "" && !(contains(e.FirstName, qf.Search) || contains(e.LastName, qf.Search) ||
			contains(e.Email, qf.Search) || contains(e.EmployeeCode, qf.Search)) {
			return false
		}
		if qf.DepartmentID != "" && !e.InDepartment(qf.DepartmentID) {
			return false
		}
		if qf.DesignationID != "" && core.StringValue(e.DesignationID) != qf.DesignationID {
			return false
		}
		if qf.Status != "" && string(e.Status) != qf.Status {
			return false
		}
		if qf.EmploymentType != "" && string(e.EmploymentType) != qf.EmploymentType {
			return false
		}
		return qf.DepartmentIDs == nil || e.InDepartment(qf.DepartmentIDs...)
	})
	return list(emps, opts, employeeComparers, asc("employee_code")), nil
}

func (repo *employeeRepository) ListActiveEmployees(_ context.Context, joinedBy core.Date) ([]employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	emps := filter(values(repo.db.employees), func(e employee.Employee) bool {
		return e.IsActive() && !e.DateOfJoining.After(joinedBy)
	})
	order(emps, nil, employeeComparers, asc("employee_code"))
	return emps, nil
}

func (repo *employeeRepository) UpdateEmployee(_ context.Context, emp employee.Employee) (employee.Employee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.employees[emp.ID]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	if err := repo.checkUniqueness(emp.EmployeeCode, emp.Email, core.StringValue(emp.UserID), emp.ID); err != nil {
		return employee.Employee{}, err
	}
	emp.QRSecret = orig.QRSecret // only SetQRSecret rotates it
	repo.db.employees[emp.ID] = emp
	return emp, nil
}

func (repo *employeeRepository) SetQRSecret(_ context.Context, id string, secret []byte) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	emp, ok := repo.db.employees[id]
	if !ok {
		return employee.ErrNotFound
	}
	emp.QRSecret = append([]byte(nil), secret...)
	emp.UpdatedAt = time.Now().UTC()
	repo.db.employees[id] = emp
	return nil
}

func (repo *employeeRepository) DeleteEmployee(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.employees[id]; !ok {
		return employee.ErrNotFound
	}
	delete(repo.db.employees, id)

	// cascades
	for k, a := range repo.db.attendance {
		if a.EmployeeID == id {
			delete(repo.db.attendance, k)
		}
	}
	for k, lr := range repo.db.leaves {
		if lr.EmployeeID == id {
			delete(repo.db.leaves, k)
		}
	}
	for k, doc := range repo.db.documents {
		if doc.EmployeeID == id {
			delete(repo.db.documents, k)
		}
	}
	for k, aw := range repo.db.awards {
		if aw.EmployeeID == id {
			delete(repo.db.awards, k)
		}
	}
	for k, d := range repo.db.departments {
		if d.HeadID != nil && *d.HeadID == id {
			d.HeadID = nil
			repo.db.departments[k] = d
		}
	}
	return nil
}

func (repo *employeeRepository) EmployeeExists(_ context.Context, id string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	_, ok := repo.db.employees[id]
	return ok, nil
}

func (repo *employeeRepository) CountEmployees(_ context.Context) (employee.Counts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := employee.Counts{Total: len(repo.db.employees)}
	for _, emp := range repo.db.employees {
		if emp.IsActive() {
			counts.Active++
		}
	}
	return counts, nil
}
