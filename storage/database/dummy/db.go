package dummydb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/designation"
	"github.com/trezcool/hrms/core/document"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/holiday"
	"github.com/trezcool/hrms/core/leave"
	"github.com/trezcool/hrms/core/loyalty"
	"github.com/trezcool/hrms/core/notification"
	"github.com/trezcool/hrms/core/setting"
	"github.com/trezcool/hrms/core/user"
)

// DB is an in-memory store for tests and local runs. A single lock guards every table
// since some reads join employees.
type DB struct {
	sync.RWMutex

	users         map[string]user.User
	settings      map[string]setting.Setting
	holidays      map[string]holiday.Holiday
	departments   map[string]department.Department
	designations  map[string]designation.Designation
	employees     map[string]employee.Employee
	attendance    map[string]attendance.Attendance
	leaves        map[string]leave.LeaveRequest
	documents     map[string]document.Document
	notifications map[string]notification.Notification
	awards        map[string]loyalty.Award
	activity      []activity.Entry
}

func Open() *DB {
	return &DB{
		users:         make(map[string]user.User),
		settings:      make(map[string]setting.Setting),
		holidays:      make(map[string]holiday.Holiday),
		departments:   make(map[string]department.Department),
		designations:  make(map[string]designation.Designation),
		employees:     make(map[string]employee.Employee),
		attendance:    make(map[string]attendance.Attendance),
		leaves:        make(map[string]leave.LeaveRequest),
		documents:     make(map[string]document.Document),
		notifications: make(map[string]notification.Notification),
		awards:        make(map[string]loyalty.Award),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	fresh := Open()
	db.Lock()
	defer db.Unlock()
	db.users = fresh.users
	db.settings = fresh.settings
	db.holidays = fresh.holidays
	db.departments = fresh.departments
	db.designations = fresh.designations
	db.employees = fresh.employees
	db.attendance = fresh.attendance
	db.leaves = fresh.leaves
	db.documents = fresh.documents
	db.notifications = fresh.notifications
	db.awards = fresh.awards
	db.activity = nil
}

// employeeInfo returns the joined employee fields. Callers hold the lock.
func (db *DB) employeeInfo(id string) (name, code string, deptID *string) {
	emp, ok := db.employees[id]
	if !ok {
		return "", "", nil
	}
	return emp.FullName(), emp.EmployeeCode, emp.DepartmentID
}

func values[T any](table map[string]T) []T {
	rows := make([]T, 0, len(table))
	for _, row := range table {
		rows = append(rows, row)
	}
	return rows
}

func filter[T any](rows []T, keep func(T) bool) []T {
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

// comparers compare two rows on a field, returning <0, 0 or >0.
type comparers[T any] map[string]func(a, b T) int

// order sorts rows by orderings, falling back to def.
func order[T any](rows []T, orderings []core.DBOrdering, cmp comparers[T], def ...core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = def
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range orderings {
			fn, ok := cmp[ord.Field]
			if !ok {
				continue
			}
			c := fn(rows[i], rows[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func paginate[T any](rows []T, p core.Pagination) []T {
	if p.PageSize == 0 {
		return rows
	}
	start := p.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func list[T any](rows []T, opts core.ListOptions, cmp comparers[T], def ...core.DBOrdering) []T {
	order(rows, opts.Orderings, cmp, def...)
	return paginate(rows, opts.Page)
}

func asc(field string) core.DBOrdering  { return core.DBOrdering{Field: field, Ascending: true} }
func desc(field string) core.DBOrdering { return core.DBOrdering{Field: field} }

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cmpStrings(a, b string) int { return strings.Compare(a, b) }

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpDates(a, b core.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func cmpTimes(a, b time.Time) int { return a.Compare(b) }

// cmpTimePtrs sorts nil first.
func cmpTimePtrs(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func cmpBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
