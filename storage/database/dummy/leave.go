package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/leave"
)

type leaveRepository struct {
	db *DB
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *DB) *leaveRepository {
	return &leaveRepository{db: db}
}

var leaveComparers = comparers[leave.LeaveRequest]{
	"start_date": func(a, b leave.LeaveRequest) int { return cmpDates(a.StartDate, b.StartDate) },
	"end_date":   func(a, b leave.LeaveRequest) int { return cmpDates(a.EndDate, b.EndDate) },
	"days":       func(a, b leave.LeaveRequest) int { return cmpInts(a.Days, b.Days) },
	"status":     func(a, b leave.LeaveRequest) int { return cmpStrings(string(a.Status), string(b.Status)) },
	"leave_type": func(a, b leave.LeaveRequest) int { return cmpStrings(string(a.LeaveType), string(b.LeaveType)) },
	"created_at": func(a, b leave.LeaveRequest) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
}

func hasStatus(st leave.Status, statuses []leave.Status) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

// joined fills the employee fields. Callers hold the lock.
func (repo *leaveRepository) joined(lr leave.LeaveRequest) leave.LeaveRequest {
	lr.EmployeeName, lr.EmployeeCode, lr.DepartmentID = repo.db.employeeInfo(lr.EmployeeID)
	return lr
}

func (repo *leaveRepository) CreateLeave(_ context.Context, lr leave.LeaveRequest) (leave.LeaveRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.leaves[lr.ID] = lr
	return repo.joined(lr), nil
}

func (repo *leaveRepository) GetLeaveByID(_ context.Context, id string) (leave.LeaveRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lr, ok := repo.db.leaves[id]; ok {
		return repo.joined(lr), nil
	}
	return leave.LeaveRequest{}, leave.ErrNotFound
}

func (repo *leaveRepository) FilterLeaves(_ context.Context, qf leave.QueryFilter, opts core.ListOptions) ([]leave.LeaveRequest, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lrs := make([]leave.LeaveRequest, 0, len(repo.db.leaves))
	for _, lr := range repo.db.leaves {
		lr = repo.joined(lr)
		if !qf.Visibility.Allows(lr.EmployeeID, lr.DepartmentID) {
			continue
		}
		if qf.EmployeeID != "" && lr.EmployeeID != qf.EmployeeID {
			continue
		}
		if qf.DepartmentID != "" && core.StringValue(lr.DepartmentID) != qf.DepartmentID {
			continue
		}
		if qf.Status != "" && string(lr.Status) != qf.Status {
			continue
		}
		if len(qf.Statuses) > 0 && !hasStatus(lr.Status, qf.Statuses) {
			continue
		}
		if qf.LeaveType != "" && string(lr.LeaveType) != qf.LeaveType {
			continue
		}
		// requests overlapping the range
		if !qf.DateFrom.IsZero() && lr.EndDate.Before(qf.DateFrom) {
			continue
		}
		if !qf.DateTo.IsZero() && lr.StartDate.After(qf.DateTo) {
			continue
		}
		lrs = append(lrs, lr)
	}
	return list(lrs, opts, leaveComparers, desc("created_at")), nil
}

func (repo *leaveRepository) TransitionLeave(_ context.Context, lr leave.LeaveRequest, from ...leave.Status) (leave.LeaveRequest, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.leaves[lr.ID]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrNotFound
	}
	if !hasStatus(stored.Status, from) {
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}
	stored.Status = lr.Status
	stored.DepartmentReviewerID = lr.DepartmentReviewerID
	stored.DepartmentReviewedAt = lr.DepartmentReviewedAt
	stored.DepartmentComment = lr.DepartmentComment
	stored.ReviewerID = lr.ReviewerID
	stored.ReviewedAt = lr.ReviewedAt
	stored.ReviewComment = lr.ReviewComment
	stored.UpdatedAt = lr.UpdatedAt
	repo.db.leaves[lr.ID] = stored
	return repo.joined(stored), nil
}

func (repo *leaveRepository) HasOverlappingLeave(_ context.Context, employeeID string, start, end core.Date, statuses ...leave.Status) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, lr := range repo.db.leaves {
		if lr.EmployeeID == employeeID && hasStatus(lr.Status, statuses) &&
			!lr.StartDate.After(end) && !lr.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *leaveRepository) LeaveDaysByType(_ context.Context, employeeID string, from, to core.Date, statuses ...leave.Status) ([]leave.DaysUsed, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	type key struct {
		t  leave.Type
		st leave.Status
	}
	sums := make(map[key]int)
	for _, lr := range repo.db.leaves {
		if lr.EmployeeID == employeeID && hasStatus(lr.Status, statuses) && lr.StartDate.Between(from, to) {
			sums[key{lr.LeaveType, lr.Status}] += lr.Days
		}
	}
	used := make([]leave.DaysUsed, 0, len(sums))
	for k, days := range sums {
		used = append(used, leave.DaysUsed{LeaveType: k.t, Status: k.st, Days: days})
	}
	sort.Slice(used, func(i, j int) bool {
		if used[i].LeaveType != used[j].LeaveType {
			return used[i].LeaveType < used[j].LeaveType
		}
		return used[i].Status < used[j].Status
	})
	return used, nil
}

func (repo *leaveRepository) EmployeesOnLeave(_ context.Context, date core.Date) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, lr := range repo.db.leaves {
		if lr.Status == leave.StatusApproved && lr.Covers(date) && !seen[lr.EmployeeID] {
			seen[lr.EmployeeID] = true
			ids = append(ids, lr.EmployeeID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *leaveRepository) CountLeaves(_ context.Context, statuses ...leave.Status) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, lr := range repo.db.leaves {
		if len(statuses) == 0 || hasStatus(lr.Status, statuses) {
			n++
		}
	}
	return n, nil
}
