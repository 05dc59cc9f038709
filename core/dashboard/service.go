package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/holiday"
)

const upcomingHolidays = 5

type (
	EmployeeCounter interface {
		Counts(ctx context.Context) (employee.Counts, error)
	}

	DepartmentCounter interface {
		Count(ctx context.Context) (int, error)
	}

	AttendanceCounter interface {
		Today() core.Date
		TodayCounts(ctx context.Context) (map[attendance.Status]int, error)
	}

	LeaveCounter interface {
		PendingCount(ctx context.Context) (int, error)
		EmployeesOnLeave(ctx context.Context, date core.Date) ([]string, error)
	}

	HolidayLister interface {
		Upcoming(ctx context.Context, from core.Date, limit int) ([]holiday.Holiday, error)
	}

	Service struct {
		employees   EmployeeCounter
		departments DepartmentCounter
		attendance  AttendanceCounter
		leaves      LeaveCounter
		holidays    HolidayLister
	}
)

func NewService(
	employees EmployeeCounter,
	departments DepartmentCounter,
	attendance AttendanceCounter,
	leaves LeaveCounter,
	holidays HolidayLister,
) *Service {
	return &Service{employees: employees, departments: departments, attendance: attendance, leaves: leaves, holidays: holidays}
}

type (
	EmployeeStats struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	}

	AttendanceStats struct {
		Date      core.Date                 `json:"date"`
		Counts    map[attendance.Status]int `json:"counts"`
		NotMarked int                       `json:"not_marked"`
	}

	LeaveStats struct {
		Pending      int `json:"pending"`
		OnLeaveToday int `json:"on_leave_today"`
	}

	Summary struct {
		Employees        EmployeeStats     `json:"employees"`
		Departments      int               `json:"departments"`
		Attendance       AttendanceStats   `json:"attendance"`
		Leave            LeaveStats        `json:"leave"`
		UpcomingHolidays []holiday.Holiday `json:"upcoming_holidays"`
	}
)

// Summary gathers the dashboard figures concurrently.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	today := svc.attendance.Today()
	var (
		sum     Summary
		onLeave []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := svc.employees.Counts(ctx)
		if err != nil {
			return errors.Wrap(err, "counting employees")
		}
		sum.Employees = EmployeeStats{Total: counts.Total, Active: counts.Active}
		return nil
	})
	g.Go(func() error {
		n, err := svc.departments.Count(ctx)
		if err != nil {
			return errors.Wrap(err, "counting departments")
		}
		sum.Departments = n
		return nil
	})
	g.Go(func() error {
		counts, err := svc.attendance.TodayCounts(ctx)
		if err != nil {
			return errors.Wrap(err, "counting today's attendance")
		}
		sum.Attendance = AttendanceStats{Date: today, Counts: counts}
		return nil
	})
	g.Go(func() error {
		n, err := svc.leaves.PendingCount(ctx)
		if err != nil {
			return errors.Wrap(err, "counting pending leave")
		}
		sum.Leave.Pending = n
		return nil
	})
	g.Go(func() error {
		ids, err := svc.leaves.EmployeesOnLeave(ctx, today)
		if err != nil {
			return errors.Wrap(err, "listing employees on leave")
		}
		onLeave = ids
		return nil
	})
	g.Go(func() error {
		hols, err := svc.holidays.Upcoming(ctx, today, upcomingHolidays)
		if err != nil {
			return errors.Wrap(err, "listing upcoming holidays")
		}
		sum.UpcomingHolidays = hols
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	sum.Leave.OnLeaveToday = len(onLeave)
	var recorded int
	for _, n := range sum.Attendance.Counts {
		recorded += n
	}
	if notMarked := sum.Employees.Active - recorded; notMarked > 0 {
		sum.Attendance.NotMarked = notMarked
	}
	return sum, nil
}
