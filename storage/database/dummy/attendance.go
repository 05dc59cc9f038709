package dummydb

import (
	"context"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

var attendanceComparers = comparers[attendance.Attendance]{
	"date":          func(a, b attendance.Attendance) int { return cmpDates(a.Date, b.Date) },
	"check_in":      func(a, b attendance.Attendance) int { return cmpTimePtrs(a.CheckIn, b.CheckIn) },
	"check_out":     func(a, b attendance.Attendance) int { return cmpTimePtrs(a.CheckOut, b.CheckOut) },
	"status":        func(a, b attendance.Attendance) int { return cmpStrings(string(a.Status), string(b.Status)) },
	"created_at":    func(a, b attendance.Attendance) int { return cmpTimes(a.CreatedAt, b.CreatedAt) },
	"employee_code": func(a, b attendance.Attendance) int { return cmpStrings(a.EmployeeCode, b.EmployeeCode) },
}

// joined fills the employee fields. Callers hold the lock.
func (repo *attendanceRepository) joined(a attendance.Attendance) attendance.Attendance {
	a.EmployeeName, a.EmployeeCode, a.DepartmentID = repo.db.employeeInfo(a.EmployeeID)
	return a
}

func (repo *attendanceRepository) query(qf attendance.QueryFilter) []attendance.Attendance {
	rows := make([]attendance.Attendance, 0, len(repo.db.attendance))
	for _, a := range repo.db.attendance {
		a = repo.joined(a)
		if !qf.Visibility.Allows(a.EmployeeID, a.DepartmentID) {
			continue
		}
		if qf.EmployeeID != "" && a.EmployeeID != qf.EmployeeID {
			continue
		}
		if qf.DepartmentID != "" && core.StringValue(a.DepartmentID) != qf.DepartmentID {
			continue
		}
		if qf.Status != "" && string(a.Status) != qf.Status {
			continue
		}
		if qf.Source != "" && string(a.Source) != qf.Source {
			continue
		}
		if !a.Date.Between(qf.DateFrom, qf.DateTo) {
			continue
		}
		rows = append(rows, a)
	}
	return rows
}

func (repo *attendanceRepository) recorded(employeeID string, date core.Date) bool {
	for _, a := range repo.db.attendance {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.recorded(a.EmployeeID, a.Date) {
		return attendance.Attendance{}, attendance.ErrAlreadyRecorded
	}
	repo.db.attendance[a.ID] = a
	return repo.joined(a), nil
}

func (repo *attendanceRepository) GetAttendanceByID(_ context.Context, id string) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.attendance[id]; ok {
		return repo.joined(a), nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) GetAttendanceByEmployeeDate(_ context.Context, employeeID string, date core.Date) (attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, a := range repo.db.attendance {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return repo.joined(a), nil
		}
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterAttendance(_ context.Context, qf attendance.QueryFilter, opts core.ListOptions) ([]attendance.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return list(repo.query(qf), opts, attendanceComparers, desc("date"), asc("employee_code")), nil
}

func (repo *attendanceRepository) CountAttendanceByStatus(_ context.Context, qf attendance.QueryFilter) (map[attendance.Status]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[attendance.Status]int)
	for _, a := range repo.query(qf) {
		counts[a.Status]++
	}
	return counts, nil
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.attendance[a.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	orig.CheckIn = a.CheckIn
	orig.CheckOut = a.CheckOut
	orig.Status = a.Status
	orig.Source = a.Source
	orig.Notes = a.Notes
	orig.UpdatedAt = a.UpdatedAt
	repo.db.attendance[a.ID] = orig
	return repo.joined(orig), nil
}

func (repo *attendanceRepository) DeleteAttendance(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.attendance[id]; !ok {
		return attendance.ErrNotFound
	}
	delete(repo.db.attendance, id)
	return nil
}

func (repo *attendanceRepository) InsertMissingAttendance(_ context.Context, rows ...attendance.Attendance) ([]attendance.Attendance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inserted := make([]attendance.Attendance, 0, len(rows))
	for _, a := range rows {
		if repo.recorded(a.EmployeeID, a.Date) {
			continue
		}
		repo.db.attendance[a.ID] = a
		inserted = append(inserted, a)
	}
	return inserted, nil
}
