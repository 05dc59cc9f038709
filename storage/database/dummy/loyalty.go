package dummydb

import (
	"context"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/loyalty"
)

type loyaltyRepository struct {
	db *DB
}

var _ loyalty.Repository = (*loyaltyRepository)(nil) // interface compliance check

func NewLoyaltyRepository(db *DB) *loyaltyRepository {
	return &loyaltyRepository{db: db}
}

var awardComparers = comparers[loyalty.Award]{
	"awarded_on":      func(a, b loyalty.Award) int { return cmpDates(a.AwardedOn, b.AwardedOn) },
	"milestone_years": func(a, b loyalty.Award) int { return cmpInts(a.MilestoneYears, b.MilestoneYears) },
	"created_at":      func(a, b loyalty.Award) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func (repo *loyaltyRepository) joined(a loyalty.Award) loyalty.Award {
	a.EmployeeName, _, _ = repo.db.employeeInfo(a.EmployeeID)
	return a
}

func (repo *loyaltyRepository) awarded(a loyalty.Award) bool {
	for _, o := range repo.db.awards {
		if o.ID != a.ID && o.EmployeeID == a.EmployeeID && o.MilestoneYears == a.MilestoneYears {
			return true
		}
	}
	return false
}

func (repo *loyaltyRepository) CreateAward(_ context.Context, a loyalty.Award) (loyalty.Award, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.awarded(a) {
		return loyalty.Award{}, loyalty.ErrAlreadyAwarded
	}
	repo.db.awards[a.ID] = a
	return repo.joined(a), nil
}

func (repo *loyaltyRepository) GetAwardByID(_ context.Context, id string) (loyalty.Award, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.awards[id]; ok {
		return repo.joined(a), nil
	}
	return loyalty.Award{}, loyalty.ErrNotFound
}

func (repo *loyaltyRepository) FilterAwards(_ context.Context, qf loyalty.QueryFilter, opts core.ListOptions) ([]loyalty.Award, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	awards := make([]loyalty.Award, 0, len(repo.db.awards))
	for _, a := range repo.db.awards {
		_, _, deptID := repo.db.employeeInfo(a.EmployeeID)
		if !qf.Visibility.Allows(a.EmployeeID, deptID) {
			continue
		}
		if qf.EmployeeID != "" && a.EmployeeID != qf.EmployeeID {
			continue
		}
		if qf.MilestoneYears > 0 && a.MilestoneYears != qf.MilestoneYears {
			continue
		}
		awards = append(awards, repo.joined(a))
	}
	return list(awards, opts, awardComparers, desc("awarded_on")), nil
}

func (repo *loyaltyRepository) UpdateAward(_ context.Context, a loyalty.Award) (loyalty.Award, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.awards[a.ID]
	if !ok {
		return loyalty.Award{}, loyalty.ErrNotFound
	}
	if repo.awarded(a) {
		return loyalty.Award{}, loyalty.ErrAlreadyAwarded
	}
	orig.Title = a.Title
	orig.Description = a.Description
	orig.MilestoneYears = a.MilestoneYears
	orig.AwardedOn = a.AwardedOn
	repo.db.awards[a.ID] = orig
	return repo.joined(orig), nil
}

func (repo *loyaltyRepository) DeleteAward(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.awards[id]; !ok {
		return loyalty.ErrNotFound
	}
	delete(repo.db.awards, id)
	return nil
}

func (repo *loyaltyRepository) ListAwardedMilestones(_ context.Context) ([]loyalty.Milestone, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ms := make([]loyalty.Milestone, 0, len(repo.db.awards))
	for _, a := range repo.db.awards {
		ms = append(ms, loyalty.Milestone{EmployeeID: a.EmployeeID, MilestoneYears: a.MilestoneYears})
	}
	return ms, nil
}
