package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/department"
)

type departmentRepository struct {
	db *DB
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(db *DB) *departmentRepository {
	return &departmentRepository{db: db}
}

var departmentComparers = comparers[department.Department]{
	"name":       func(a, b department.Department) int { return cmpStrings(a.Name, b.Name) },
	"code":       func(a, b department.Department) int { return cmpStrings(a.Code, b.Code) },
	"created_at": func(a, b department.Department) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func (repo *departmentRepository) checkUniqueness(name, code, excludeID string) error {
	for _, d := range repo.db.departments {
		if d.ID == excludeID {
			continue
		}
		if strings.EqualFold(d.Name, name) {
			return department.ErrNameExists
		}
		if d.Code == code {
			return department.ErrCodeExists
		}
	}
	return nil
}

func (repo *departmentRepository) CheckDepartmentUniqueness(_ context.Context, name, code string, excludeID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.checkUniqueness(name, code, excludeID)
}

func (repo *departmentRepository) CreateDepartment(_ context.Context, dept department.Department) (department.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkUniqueness(dept.Name, dept.Code, dept.ID); err != nil {
		return department.Department{}, err
	}
	repo.db.departments[dept.ID] = dept
	return dept, nil
}

func (repo *departmentRepository) GetDepartmentByID(_ context.Context, id string) (department.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if dept, ok := repo.db.departments[id]; ok {
		return dept, nil
	}
	return department.Department{}, department.ErrNotFound
}

func (repo *departmentRepository) GetDepartmentsByHead(_ context.Context, employeeID string) ([]department.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := filter(values(repo.db.departments), func(d department.Department) bool {
		return d.HeadID != nil && *d.HeadID == employeeID
	})
	order(depts, nil, departmentComparers, asc("name"))
	return depts, nil
}

func (repo *departmentRepository) FilterDepartments(_ context.Context, qf department.QueryFilter, opts core.ListOptions) ([]department.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := filter(values(repo.db.departments), func(d department.Department) bool {
		return qf.Search == "" || contains(d.Name, qf.Search) || contains(d.Code, qf.Search)
	})
	return list(depts, opts, departmentComparers, asc("name")), nil
}

func (repo *departmentRepository) UpdateDepartment(_ context.Context, dept department.Department) (department.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.departments[dept.ID]; !ok {
		return department.Department{}, department.ErrNotFound
	}
	if err := repo.checkUniqueness(dept.Name, dept.Code, dept.ID); err != nil {
		return department.Department{}, err
	}
	repo.db.departments[dept.ID] = dept
	return dept, nil
}

func (repo *departmentRepository) CountDepartmentReferences(_ context.Context, id string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var refs int
	for _, emp := range repo.db.employees {
		if emp.InDepartment(id) {
			refs++
		}
	}
	for _, d := range repo.db.designations {
		if d.DepartmentID != nil && *d.DepartmentID == id {
			refs++
		}
	}
	return refs, nil
}

func (repo *departmentRepository) DeleteDepartment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.departments[id]; !ok {
		return department.ErrNotFound
	}
	delete(repo.db.departments, id)
	return nil
}

func (repo *departmentRepository) CountDepartments(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.departments), nil
}
