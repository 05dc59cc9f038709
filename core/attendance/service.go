package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/setting"
)

const duplicateScanWindow = 60 * time.Second

var (
	// errors
	ErrNotFound          = errors.New("attendance not found")
	ErrAlreadyRecorded   = errors.New("attendance already recorded for this employee and date")
	ErrDuplicateScan     = errors.New("already checked in less than a minute ago")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrCheckOutOrder     = errors.New("check out must be after check in")
	ErrCheckOutAlone     = errors.New("check out requires a check in")
)

type (
	Repository interface {
		// CreateAttendance returns ErrAlreadyRecorded when the employee already has a row on that date.
		CreateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		GetAttendanceByID(ctx context.Context, id string) (Attendance, error)
		GetAttendanceByEmployeeDate(ctx context.Context, employeeID string, date core.Date) (Attendance, error)
		FilterAttendance(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Attendance, error)
		CountAttendanceByStatus(ctx context.Context, filter QueryFilter) (map[Status]int, error)
		UpdateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
		// InsertMissingAttendance inserts rows, skipping the (employee, date) pairs that already exist.
		// It returns the rows actually inserted.
		InsertMissingAttendance(ctx context.Context, rows ...Attendance) ([]Attendance, error)
	}

	EmployeeGetter interface {
		GetByID(ctx context.Context, id string) (employee.Employee, error)
		ListActive(ctx context.Context, joinedBy core.Date) ([]employee.Employee, error)
	}

	SettingStore interface {
		Int(ctx context.Context, key string) (int, error)
		Clock(ctx context.Context, key string) (hour, min int, err error)
		Date(ctx context.Context, key string) (core.Date, error)
		IsWeekend(ctx context.Context, date core.Date) (bool, error)
		SetValue(ctx context.Context, key, value string) error
	}

	HolidayChecker interface {
		IsHoliday(ctx context.Context, date core.Date) (bool, error)
	}

	// LeaveChecker lists the employees with an approved leave covering a date.
	LeaveChecker interface {
		EmployeesOnLeave(ctx context.Context, date core.Date) ([]string, error)
	}

	Service struct {
		repo      Repository
		employees EmployeeGetter
		settings  SettingStore
		holidays  HolidayChecker
		leaves    LeaveChecker
		nonces    NonceStore
		validate  *validator.Validate
		conf      *core.Config

		sweepMu sync.Mutex
	}
)

func NewService(
	repo Repository,
	employees EmployeeGetter,
	settings SettingStore,
	holidays HolidayChecker,
	leaves LeaveChecker,
	nonces NonceStore,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		settings:  settings,
		holidays:  holidays,
		leaves:    leaves,
		nonces:    nonces,
		validate:  validate,
		conf:      conf,
	}
}

func (svc *Service) location() *time.Location {
	return svc.conf.Location()
}

// Today returns the current day in the institution time zone.
func (svc *Service) Today() core.Date {
	return core.Today(NowFunc(), svc.location())
}

// ScanQR verifies a QR token and checks its employee in or out.
func (svc *Service) ScanQR(ctx context.Context, scan Scan) (ScanResult, error) {
	if err := svc.validate.Struct(scan); err != nil {
		return ScanResult{}, err
	}
	emp, err := svc.VerifyQRToken(ctx, scan.Token)
	if err != nil {
		return ScanResult{}, err
	}
	return svc.Punch(ctx, emp, NowFunc())
}

// Punch records a check-in, or a check-out when the employee is already in, at the given instant.
func (svc *Service) Punch(ctx context.Context, emp employee.Employee, at time.Time) (ScanResult, error) {
	at = at.UTC().Truncate(time.Second)
	today := core.Today(at, svc.location())

	existing, err := svc.repo.GetAttendanceByEmployeeDate(ctx, emp.ID, today)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		return svc.checkIn(ctx, emp, Attendance{}, today, at)
	default:
		return ScanResult{}, errors.Wrap(err, "getting today's attendance")
	}

	switch {
	case existing.IsPlaceholder():
		return svc.checkIn(ctx, emp, existing, today, at)
	case existing.CheckIn == nil:
		return ScanResult{}, core.NewConflictError(ErrAlreadyRecorded)
	case existing.CheckOut != nil:
		return ScanResult{}, core.NewConflictError(ErrAlreadyCheckedOut)
	case at.Sub(*existing.CheckIn) < duplicateScanWindow:
		return ScanResult{}, core.NewConflictError(ErrDuplicateScan)
	}
	return svc.checkOut(ctx, emp, existing, at)
}

func (svc *Service) checkIn(ctx context.Context, emp employee.Employee, row Attendance, today core.Date, at time.Time) (ScanResult, error) {
	status, err := svc.arrivalStatus(ctx, today, at)
	if err != nil {
		return ScanResult{}, err
	}

	row.CheckIn = &at
	row.Status = status
	row.Source = SourceQR
	row.UpdatedAt = time.Now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
		row.EmployeeID = emp.ID
		row.Date = today
		row.CreatedAt = row.UpdatedAt
		row, err = svc.repo.CreateAttendance(ctx, row)
	} else {
		row, err = svc.repo.UpdateAttendance(ctx, row)
	}
	if err != nil {
		if errors.Cause(err) == ErrAlreadyRecorded {
			// concurrent scan
			return ScanResult{}, core.NewConflictError(ErrDuplicateScan)
		}
		return ScanResult{}, errors.Wrap(err, "saving check in")
	}
	return ScanResult{Action: ActionCheckIn, Employee: emp.FullName(), Attendance: row}, nil
}

func (svc *Service) checkOut(ctx context.Context, emp employee.Employee, row Attendance, at time.Time) (ScanResult, error) {
	halfDayHours, err := svc.settings.Int(ctx, setting.HalfDayHours)
	if err != nil {
		return ScanResult{}, errors.Wrap(err, "getting half day hours")
	}

	row.CheckOut = &at
	if row.Worked() < time.Duration(halfDayHours)*time.Hour {
		row.Status = StatusHalfDay
	}
	row.UpdatedAt = time.Now().UTC()
	if row, err = svc.repo.UpdateAttendance(ctx, row); err != nil {
		return ScanResult{}, errors.Wrap(err, "saving check out")
	}
	return ScanResult{Action: ActionCheckOut, Employee: emp.FullName(), Attendance: row}, nil
}

// arrivalStatus is late past work start plus the grace period, present otherwise.
func (svc *Service) arrivalStatus(ctx context.Context, day core.Date, at time.Time) (Status, error) {
	hour, min, err := svc.settings.Clock(ctx, setting.WorkStart)
	if err != nil {
		return "", errors.Wrap(err, "getting work start")
	}
	grace, err := svc.settings.Int(ctx, setting.LateGraceMinutes)
	if err != nil {
		return "", errors.Wrap(err, "getting late grace")
	}
	if at.After(day.At(hour, min+grace, svc.location())) {
		return StatusLate, nil
	}
	return StatusPresent, nil
}

// entryTimes turns the HH:MM check in and out of a manual entry into instants on day.
func (svc *Service) entryTimes(day core.Date, in, out string) (*time.Time, *time.Time, error) {
	var checkIn, checkOut *time.Time
	if in != "" {
		hour, min, _ := core.ParseClock(in)
		t := day.At(hour, min, svc.location()).UTC()
		checkIn = &t
	}
	if out != "" {
		if checkIn == nil {
			return nil, nil, core.NewValidationError(ErrCheckOutAlone, core.FieldError{Field: "check_out", Error: ErrCheckOutAlone.Error()})
		}
		hour, min, _ := core.ParseClock(out)
		t := day.At(hour, min, svc.location()).UTC()
		if !t.After(*checkIn) {
			return nil, nil, core.NewValidationError(ErrCheckOutOrder, core.FieldError{Field: "check_out", Error: ErrCheckOutOrder.Error()})
		}
		checkOut = &t
	}
	return checkIn, checkOut, nil
}

// Create records a manual attendance entry.
func (svc *Service) Create(ctx context.Context, na NewAttendance) (Attendance, error) {
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Attendance{}, err
	}
	day, err := core.ParseDate(na.Date)
	if err != nil {
		return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	if _, err := svc.employees.GetByID(ctx, na.EmployeeID); err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "employee_id", Error: err.Error()})
		}
		return Attendance{}, errors.Wrap(err, "getting employee")
	}
	checkIn, checkOut, err := svc.entryTimes(day, na.CheckIn, na.CheckOut)
	if err != nil {
		return Attendance{}, err
	}

	now := time.Now().UTC()
	a, err := svc.repo.CreateAttendance(ctx, Attendance{
		ID:         uuid.NewString(),
		EmployeeID: na.EmployeeID,
		Date:       day,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     Status(na.Status),
		Source:     SourceManual,
		Notes:      na.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyRecorded {
			return Attendance{}, core.NewConflictError(ErrAlreadyRecorded)
		}
		return Attendance{}, err
	}
	return a, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendanceByID(ctx, id)
}

// Update replaces the times, status and notes of an entry. The entry becomes a manual one.
func (svc *Service) Update(ctx context.Context, a Attendance, ua UpdateAttendance) (Attendance, error) {
	ua.Clean()
	if err := svc.validate.Struct(ua); err != nil {
		return Attendance{}, err
	}
	checkIn, checkOut, err := svc.entryTimes(a.Date, ua.CheckIn, ua.CheckOut)
	if err != nil {
		return Attendance{}, err
	}
	a.CheckIn = checkIn
	a.CheckOut = checkOut
	a.Status = Status(ua.Status)
	a.Notes = ua.Notes
	a.Source = SourceManual
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAttendance(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAttendance(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Attendance, error) {
	filter.Clean()
	if filter.Visibility.IsEmpty() {
		return []Attendance{}, nil
	}
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterAttendance(ctx, filter, opts)
}

// Summarize counts the visible rows per status over the filter's date range.
func (svc *Service) Summarize(ctx context.Context, filter QueryFilter) (Summary, error) {
	filter.Clean()
	sum := Summary{
		EmployeeID: filter.EmployeeID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
		Counts:     make(map[Status]int, len(Statuses)),
	}
	for _, st := range Statuses {
		sum.Counts[st] = 0
	}
	if filter.Visibility.IsEmpty() {
		return sum, nil
	}

	counts, err := svc.repo.CountAttendanceByStatus(ctx, filter)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting attendance")
	}
	for st, n := range counts {
		sum.Counts[st] = n
		sum.Total += n
	}
	return sum, nil
}

// TodayCounts counts today's rows per status.
func (svc *Service) TodayCounts(ctx context.Context) (map[Status]int, error) {
	today := svc.Today()
	sum, err := svc.Summarize(ctx, QueryFilter{DateFrom: today, DateTo: today, Visibility: core.Visibility{All: true}})
	if err != nil {
		return nil, err
	}
	return sum.Counts, nil
}

// Export renders the visible rows as a table.
func (svc *Service) Export(ctx context.Context, filter QueryFilter, opts core.ListOptions) (core.Table, error) {
	opts.Page = core.Pagination{}
	rows, err := svc.Query(ctx, filter, opts)
	if err != nil {
		return core.Table{}, err
	}
	return Table(rows, svc.location()), nil
}
