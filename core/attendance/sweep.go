package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/setting"
)

// maxCatchUpDays bounds how far back RunDueSweep goes after downtime.
const maxCatchUpDays = 31

// Skip reasons
const (
	SkipFuture  = "future"
	SkipWeekend = "weekend"
	SkipHoliday = "holiday"
)

// Sweep marks every active employee without attendance on date as absent, or on leave when an
// approved leave covers the date. Weekends, holidays and future days are skipped. Existing rows are kept.
func (svc *Service) Sweep(ctx context.Context, date core.Date) (SweepResult, error) {
	svc.sweepMu.Lock()
	defer svc.sweepMu.Unlock()
	return svc.sweep(ctx, date)
}

func (svc *Service) sweep(ctx context.Context, date core.Date) (SweepResult, error) {
	res := SweepResult{Date: date}

	if date.After(svc.Today()) {
		res.Skipped = SkipFuture
		return res, nil
	}
	weekend, err := svc.settings.IsWeekend(ctx, date)
	if err != nil {
		return res, errors.Wrap(err, "checking weekend")
	}
	if weekend {
		res.Skipped = SkipWeekend
		return res, nil
	}
	holiday, err := svc.holidays.IsHoliday(ctx, date)
	if err != nil {
		return res, errors.Wrap(err, "checking holiday")
	}
	if holiday {
		res.Skipped = SkipHoliday
		return res, nil
	}

	emps, err := svc.employees.ListActive(ctx, date)
	if err != nil {
		return res, errors.Wrap(err, "listing active employees")
	}
	if len(emps) == 0 {
		return res, nil
	}
	onLeave, err := svc.leaves.EmployeesOnLeave(ctx, date)
	if err != nil {
		return res, errors.Wrap(err, "listing employees on leave")
	}
	leaveSet := make(map[string]struct{}, len(onLeave))
	for _, id := range onLeave {
		leaveSet[id] = struct{}{}
	}

	now := time.Now().UTC()
	rows := make([]Attendance, 0, len(emps))
	for _, emp := range emps {
		status := StatusAbsent
		if _, ok := leaveSet[emp.ID]; ok {
			status = StatusOnLeave
		}
		rows = append(rows, Attendance{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Date:       date,
			Status:     status,
			Source:     SourceSystem,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	inserted, err := svc.repo.InsertMissingAttendance(ctx, rows...)
	if err != nil {
		return res, errors.Wrap(err, "inserting missing attendance")
	}
	for _, a := range inserted {
		if a.Status == StatusOnLeave {
			res.OnLeave++
		} else {
			res.Absent++
		}
	}
	return res, nil
}

// RunDueSweep sweeps every day that is due and was not swept yet: today once the absent sweep time
// has passed, and the days missed since the last sweep, at most maxCatchUpDays back.
// The last swept day is persisted so restarts neither repeat nor skip a day.
func (svc *Service) RunDueSweep(ctx context.Context) ([]SweepResult, error) {
	svc.sweepMu.Lock()
	defer svc.sweepMu.Unlock()

	loc := svc.location()
	now := NowFunc().In(loc)
	today := core.Today(now, loc)

	hour, min, err := svc.settings.Clock(ctx, setting.AbsentSweepTime)
	if err != nil {
		return nil, errors.Wrap(err, "getting absent sweep time")
	}
	latest := today
	if now.Before(today.At(hour, min, loc)) {
		latest = today.AddDays(-1)
	}

	last, err := svc.settings.Date(ctx, setting.LastSweepDate)
	if err != nil {
		return nil, errors.Wrap(err, "getting last sweep date")
	}
	start := latest
	if !last.IsZero() {
		start = last.AddDays(1)
	}
	if earliest := latest.AddDays(-(maxCatchUpDays - 1)); start.Before(earliest) {
		start = earliest
	}

	var results []SweepResult
	for day := start; !day.After(latest); day = day.AddDays(1) {
		res, err := svc.sweep(ctx, day)
		if err != nil {
			return results, errors.Wrapf(err, "sweeping %s", day)
		}
		if err := svc.settings.SetValue(ctx, setting.LastSweepDate, day.String()); err != nil {
			return results, errors.Wrap(err, "saving last sweep date")
		}
		results = append(results, res)
	}
	return results, nil
}
