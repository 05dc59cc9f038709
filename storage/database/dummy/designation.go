package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/designation"
)

type designationRepository struct {
	db *DB
}

var _ designation.Repository = (*designationRepository)(nil) // interface compliance check

func NewDesignationRepository(db *DB) *designationRepository {
	return &designationRepository{db: db}
}

var designationComparers = comparers[designation.Designation]{
	"title":      func(a, b designation.Designation) int { return cmpStrings(a.Title, b.Title) },
	"created_at": func(a, b designation.Designation) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func (repo *designationRepository) titleTaken(title, departmentID, excludeID string) bool {
	for _, d := range repo.db.designations {
		if d.ID != excludeID && strings.EqualFold(d.Title, title) && core.StringValue(d.DepartmentID) == departmentID {
			return true
		}
	}
	return false
}

func (repo *designationRepository) CheckDesignationUniqueness(_ context.Context, title, departmentID, excludeID string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.titleTaken(title, departmentID, excludeID) {
		return designation.ErrTitleExists
	}
	return nil
}

func (repo *designationRepository) CreateDesignation(_ context.Context, d designation.Designation) (designation.Designation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.titleTaken(d.Title, core.StringValue(d.DepartmentID), d.ID) {
		return designation.Designation{}, designation.ErrTitleExists
	}
	repo.db.designations[d.ID] = d
	return d, nil
}

func (repo *designationRepository) GetDesignationByID(_ context.Context, id string) (designation.Designation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.designations[id]; ok {
		return d, nil
	}
	return designation.Designation{}, designation.ErrNotFound
}

func (repo *designationRepository) FilterDesignations(_ context.Context, qf designation.QueryFilter, opts core.ListOptions) ([]designation.Designation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ds := filter(values(repo.db.designations), func(d designation.Designation) bool {
		if qf.Search != "" && !contains(d.Title, qf.Search) {
			return false
		}
		return qf.DepartmentID == "" || core.StringValue(d.DepartmentID) == qf.DepartmentID
	})
	return list(ds, opts, designationComparers, asc("title")), nil
}

func (repo *designationRepository) UpdateDesignation(_ context.Context, d designation.Designation) (designation.Designation, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.designations[d.ID]; !ok {
		return designation.Designation{}, designation.ErrNotFound
	}
	if repo.titleTaken(d.Title, core.StringValue(d.DepartmentID), d.ID) {
		return designation.Designation{}, designation.ErrTitleExists
	}
	repo.db.designations[d.ID] = d
	return d, nil
}

func (repo *designationRepository) CountDesignationReferences(_ context.Context, id string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var refs int
	for _, emp := range repo.db.employees {
		if emp.DesignationID != nil && *emp.DesignationID == id {
			refs++
		}
	}
	return refs, nil
}

func (repo *designationRepository) DeleteDesignation(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.designations[id]; !ok {
		return designation.ErrNotFound
	}
	delete(repo.db.designations, id)
	return nil
}
