package leave

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/notification"
	"github.com/trezcool/hrms/core/setting"
)

var (
	// errors
	ErrNotFound          = errors.New("leave request not found")
	ErrInvalidTransition = errors.New("leave request is not in a state allowing this action")
	ErrOverlap           = errors.New("overlaps another leave request")
	ErrNoWorkingDays     = errors.New("the requested period contains no working day")
	ErrAllowanceExceeded = errors.New("leave allowance exceeded")
	ErrEmployeeRequired  = errors.New("employee_id is required")
	ErrEmployeeInactive  = errors.New("employee is not active")
	ErrNotOwner          = errors.New("only the employee may do this")
	ErrSelfReview        = errors.New("you cannot review your own leave request")
	ErrNotDepartmentHead = errors.New("only staff or the head of the employee's department may review this request")
	ErrStaffOnly         = errors.New("only staff may give the final decision")
	ErrSubmitForOthers   = errors.New("only staff may submit leave for another employee")
)

var allowanceSettingByType = map[Type]string{
	Annual: setting.AnnualLeaveDays,
	Sick:   setting.SickLeaveDays,
	Casual: setting.CasualLeaveDays,
}

type (
	Repository interface {
		CreateLeave(ctx context.Context, lr LeaveRequest) (LeaveRequest, error)
		GetLeaveByID(ctx context.Context, id string) (LeaveRequest, error)
		FilterLeaves(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]LeaveRequest, error)
		// TransitionLeave saves lr only if its stored status is one of from, atomically.
		// It returns ErrInvalidTransition otherwise.
		TransitionLeave(ctx context.Context, lr LeaveRequest, from ...Status) (LeaveRequest, error)
		HasOverlappingLeave(ctx context.Context, employeeID string, start, end core.Date, statuses ...Status) (bool, error)
		// LeaveDaysByType sums the days of the employee's requests starting within [from, to].
		LeaveDaysByType(ctx context.Context, employeeID string, from, to core.Date, statuses ...Status) ([]DaysUsed, error)
		// EmployeesOnLeave returns the IDs of the employees with an approved leave covering date.
		EmployeesOnLeave(ctx context.Context, date core.Date) ([]string, error)
		CountLeaves(ctx context.Context, statuses ...Status) (int, error)
	}

	EmployeeGetter interface {
		GetByID(ctx context.Context, id string) (employee.Employee, error)
	}

	DepartmentGetter interface {
		GetByID(ctx context.Context, id string) (department.Department, error)
	}

	SettingStore interface {
		Int(ctx context.Context, key string) (int, error)
		IsWeekend(ctx context.Context, date core.Date) (bool, error)
	}

	HolidayChecker interface {
		IsHoliday(ctx context.Context, date core.Date) (bool, error)
	}

	Notifier interface {
		Notify(ctx context.Context, notes ...notification.NewNotification) error
	}

	StaffDirectory interface {
		StaffUserIDs(ctx context.Context) ([]string, error)
	}

	// Deps are the collaborators of the leave Service.
	Deps struct {
		Employees   EmployeeGetter
		Departments DepartmentGetter
		Settings    SettingStore
		Holidays    HolidayChecker
		Notifier    Notifier
		Staff       StaffDirectory
		Mail        core.EmailService
		Logger      core.Logger
	}

	Service struct {
		repo     Repository
		deps     Deps
		validate *validator.Validate
	}
)

func NewService(repo Repository, deps Deps, validate *validator.Validate) *Service {
	return &Service{repo: repo, deps: deps, validate: validate}
}

// WorkingDays counts the days in [start, end] that are neither weekend days nor holidays.
func (svc *Service) WorkingDays(ctx context.Context, start, end core.Date) (int, error) {
	var days int
	for d := start; !d.After(end); d = d.AddDays(1) {
		weekend, err := svc.deps.Settings.IsWeekend(ctx, d)
		if err != nil {
			return 0, errors.Wrap(err, "checking weekend")
		}
		if weekend {
			continue
		}
		holiday, err := svc.deps.Holidays.IsHoliday(ctx, d)
		if err != nil {
			return 0, errors.Wrap(err, "checking holiday")
		}
		if !holiday {
			days++
		}
	}
	return days, nil
}

func fieldErr(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// Submit files a leave request. Employees submit for themselves, staff for anyone.
func (svc *Service) Submit(ctx context.Context, nl NewLeaveRequest, actor Actor) (LeaveRequest, error) {
	nl.Clean()
	if err := svc.validate.Struct(nl); err != nil {
		return LeaveRequest{}, err
	}

	if nl.EmployeeID == "" {
		nl.EmployeeID = actor.EmployeeID
	}
	if nl.EmployeeID == "" {
		return LeaveRequest{}, fieldErr("employee_id", ErrEmployeeRequired)
	}
	if nl.EmployeeID != actor.EmployeeID && !actor.Staff {
		return LeaveRequest{}, core.NewForbiddenError(ErrSubmitForOthers)
	}
	emp, err := svc.deps.Employees.GetByID(ctx, nl.EmployeeID)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return LeaveRequest{}, fieldErr("employee_id", err)
		}
		return LeaveRequest{}, errors.Wrap(err, "getting employee")
	}
	if !emp.IsActive() {
		return LeaveRequest{}, fieldErr("employee_id", ErrEmployeeInactive)
	}

	start, _ := core.ParseDate(nl.StartDate)
	end, _ := core.ParseDate(nl.EndDate)
	days, err := svc.WorkingDays(ctx, start, end)
	if err != nil {
		return LeaveRequest{}, err
	}
	if days == 0 {
		return LeaveRequest{}, fieldErr("end_date", ErrNoWorkingDays)
	}

	overlap, err := svc.repo.HasOverlappingLeave(ctx, emp.ID, start, end, OpenStatuses...)
	if err != nil {
		return LeaveRequest{}, errors.Wrap(err, "checking overlapping leave")
	}
	if overlap {
		return LeaveRequest{}, fieldErr("start_date", ErrOverlap)
	}

	lt := Type(nl.LeaveType)
	if err := svc.checkAllowance(ctx, emp.ID, lt, start.Year(), days); err != nil {
		return LeaveRequest{}, err
	}

	now := time.Now().UTC()
	lr, err := svc.repo.CreateLeave(ctx, LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: emp.ID,
		LeaveType:  lt,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		Reason:     nl.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return LeaveRequest{}, err
	}

	recipients := svc.staffUserIDs(ctx)
	if head := svc.headUserID(ctx, emp); head != "" {
		recipients = append(recipients, head)
	}
	svc.notify(ctx, recipients, actor.UserID,
		"New leave request",
		fmt.Sprintf("%s requested %d day(s) of %s leave from %s to %s.", emp.FullName(), lr.Days, lr.LeaveType, lr.StartDate, lr.EndDate),
		lr,
	)
	return lr, nil
}

func (svc *Service) checkAllowance(ctx context.Context, employeeID string, lt Type, year, days int) error {
	key, limited := allowanceSettingByType[lt]
	if !limited {
		return nil
	}
	allowance, err := svc.deps.Settings.Int(ctx, key)
	if err != nil {
		return errors.Wrap(err, "getting leave allowance")
	}
	from, to := yearRange(year)
	held, err := svc.repo.LeaveDaysByType(ctx, employeeID, from, to, OpenStatuses...)
	if err != nil {
		return errors.Wrap(err, "summing leave days")
	}
	total := days
	for _, du := range held {
		if du.LeaveType == lt {
			total += du.Days
		}
	}
	if total > allowance {
		return fieldErr("leave_type", errors.Errorf("%s: %d of %d %s day(s) left in %d",
			ErrAllowanceExceeded, max(allowance-total+days, 0), allowance, lt, year))
	}
	return nil
}

func yearRange(year int) (core.Date, core.Date) {
	return core.Date{Time: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)},
		core.Date{Time: time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)}
}

func (svc *Service) GetByID(ctx context.Context, id string) (LeaveRequest, error) {
	return svc.repo.GetLeaveByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]LeaveRequest, error) {
	filter.Clean()
	if filter.Visibility.IsEmpty() {
		return []LeaveRequest{}, nil
	}
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterLeaves(ctx, filter, opts)
}

func (svc *Service) Export(ctx context.Context, filter QueryFilter, opts core.ListOptions) (core.Table, error) {
	opts.Page = core.Pagination{}
	rows, err := svc.Query(ctx, filter, opts)
	if err != nil {
		return core.Table{}, err
	}
	return Table(rows), nil
}

// CanReviewDepartment reports whether actor may give the department decision on lr.
func (svc *Service) CanReviewDepartment(ctx context.Context, lr LeaveRequest, actor Actor) (bool, error) {
	if actor.EmployeeID != "" && lr.EmployeeID == actor.EmployeeID {
		return false, nil
	}
	if actor.Staff {
		return true, nil
	}
	if actor.EmployeeID == "" {
		return false, nil
	}
	emp, err := svc.deps.Employees.GetByID(ctx, lr.EmployeeID)
	if err != nil {
		return false, errors.Wrap(err, "getting employee")
	}
	if emp.DepartmentID == nil {
		return false, nil
	}
	dept, err := svc.deps.Departments.GetByID(ctx, *emp.DepartmentID)
	if err != nil {
		return false, errors.Wrap(err, "getting department")
	}
	return dept.HeadID != nil && *dept.HeadID == actor.EmployeeID, nil
}

// DepartmentDecision moves a pending request to department_approved or department_rejected.
func (svc *Service) DepartmentDecision(ctx context.Context, lr LeaveRequest, actor Actor, d Decision) (LeaveRequest, error) {
	d.Clean()
	if err := svc.validate.Struct(d); err != nil {
		return LeaveRequest{}, err
	}
	if actor.EmployeeID != "" && lr.EmployeeID == actor.EmployeeID {
		return LeaveRequest{}, core.NewForbiddenError(ErrSelfReview)
	}
	ok, err := svc.CanReviewDepartment(ctx, lr, actor)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !ok {
		return LeaveRequest{}, core.NewForbiddenError(ErrNotDepartmentHead)
	}

	target := StatusDepartmentRejected
	if d.Approved() {
		target = StatusDepartmentApproved
	}
	now := time.Now().UTC()
	lr.DepartmentReviewerID = &actor.UserID
	lr.DepartmentReviewedAt = &now
	lr.DepartmentComment = d.Comment

	lr, err = svc.transition(ctx, lr, target, now)
	if err != nil {
		return LeaveRequest{}, err
	}

	recipients := svc.staffUserIDs(ctx)
	if emp, err := svc.deps.Employees.GetByID(ctx, lr.EmployeeID); err == nil {
		recipients = append(recipients, core.StringValue(emp.UserID))
	}
	svc.notify(ctx, recipients, actor.UserID,
		"Leave request "+humanStatus(target),
		fmt.Sprintf("The %s leave from %s to %s was %s at department level.", lr.LeaveType, lr.StartDate, lr.EndDate, humanStatus(target)),
		lr,
	)
	return lr, nil
}

// FinalDecision moves a department approved request to approved or rejected. Staff only.
func (svc *Service) FinalDecision(ctx context.Context, lr LeaveRequest, actor Actor, d Decision) (LeaveRequest, error) {
	d.Clean()
	if err := svc.validate.Struct(d); err != nil {
		return LeaveRequest{}, err
	}
	if actor.EmployeeID != "" && lr.EmployeeID == actor.EmployeeID {
		return LeaveRequest{}, core.NewForbiddenError(ErrSelfReview)
	}
	if !actor.Staff {
		return LeaveRequest{}, core.NewForbiddenError(ErrStaffOnly)
	}

	target := StatusRejected
	if d.Approved() {
		target = StatusApproved
	}
	now := time.Now().UTC()
	lr.ReviewerID = &actor.UserID
	lr.ReviewedAt = &now
	lr.ReviewComment = d.Comment

	lr, err := svc.transition(ctx, lr, target, now)
	if err != nil {
		return LeaveRequest{}, err
	}

	emp, err := svc.deps.Employees.GetByID(ctx, lr.EmployeeID)
	if err != nil {
		svc.deps.Logger.Error(fmt.Sprintf("leave.FinalDecision: getting employee: %v", err), err)
		return lr, nil
	}
	svc.notify(ctx, []string{core.StringValue(emp.UserID)}, actor.UserID,
		"Leave request "+humanStatus(target),
		fmt.Sprintf("Your %s leave from %s to %s was %s.", lr.LeaveType, lr.StartDate, lr.EndDate, humanStatus(target)),
		lr,
	)
	svc.sendDecisionMail(emp, lr)
	return lr, nil
}

// Cancel withdraws a request still in review. Only its employee may cancel it.
func (svc *Service) Cancel(ctx context.Context, lr LeaveRequest, actor Actor) (LeaveRequest, error) {
	if actor.EmployeeID == "" || lr.EmployeeID != actor.EmployeeID {
		return LeaveRequest{}, core.NewForbiddenError(ErrNotOwner)
	}
	return svc.transition(ctx, lr, StatusCancelled, time.Now().UTC())
}

func (svc *Service) transition(ctx context.Context, lr LeaveRequest, target Status, now time.Time) (LeaveRequest, error) {
	if !CanTransition(lr.Status, target) {
		return LeaveRequest{}, core.NewConflictError(ErrInvalidTransition)
	}
	lr.Status = target
	lr.UpdatedAt = now
	saved, err := svc.repo.TransitionLeave(ctx, lr, transitions[target]...)
	if err != nil {
		if errors.Cause(err) == ErrInvalidTransition {
			return LeaveRequest{}, core.NewConflictError(ErrInvalidTransition)
		}
		return LeaveRequest{}, errors.Wrap(err, "saving leave transition")
	}
	return saved, nil
}

// Balance reports, for each leave type, the allowance and the days held in year.
func (svc *Service) Balance(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	from, to := yearRange(year)
	held, err := svc.repo.LeaveDaysByType(ctx, employeeID, from, to, OpenStatuses...)
	if err != nil {
		return nil, errors.Wrap(err, "summing leave days")
	}

	balances := make([]Balance, 0, len(Types))
	for _, lt := range Types {
		bal := Balance{LeaveType: lt, Allowance: -1, Remaining: -1}
		for _, du := range held {
			if du.LeaveType != lt {
				continue
			}
			if du.Status == StatusApproved {
				bal.Used += du.Days
			} else {
				bal.Pending += du.Days
			}
		}
		if key, limited := allowanceSettingByType[lt]; limited {
			if bal.Allowance, err = svc.deps.Settings.Int(ctx, key); err != nil {
				return nil, errors.Wrap(err, "getting leave allowance")
			}
			bal.Remaining = bal.Allowance - bal.Used - bal.Pending
		}
		balances = append(balances, bal)
	}
	return balances, nil
}

func (svc *Service) EmployeesOnLeave(ctx context.Context, date core.Date) ([]string, error) {
	return svc.repo.EmployeesOnLeave(ctx, date)
}

// PendingCount counts the requests awaiting a decision.
func (svc *Service) PendingCount(ctx context.Context) (int, error) {
	return svc.repo.CountLeaves(ctx, InReviewStatuses...)
}

func (svc *Service) staffUserIDs(ctx context.Context) []string {
	ids, err := svc.deps.Staff.StaffUserIDs(ctx)
	if err != nil {
		svc.deps.Logger.Error(fmt.Sprintf("leave: getting staff users: %v", err), err)
		return nil
	}
	return ids
}

// headUserID returns the user of the head of emp's department, "" if there is none.
func (svc *Service) headUserID(ctx context.Context, emp employee.Employee) string {
	if emp.DepartmentID == nil {
		return ""
	}
	dept, err := svc.deps.Departments.GetByID(ctx, *emp.DepartmentID)
	if err != nil || dept.HeadID == nil || *dept.HeadID == emp.ID {
		return ""
	}
	head, err := svc.deps.Employees.GetByID(ctx, *dept.HeadID)
	if err != nil {
		return ""
	}
	return core.StringValue(head.UserID)
}

// notify sends a leave notification to recipients, except the acting user.
func (svc *Service) notify(ctx context.Context, recipients []string, actorID, title, msg string, lr LeaveRequest) {
	notes := make([]notification.NewNotification, 0, len(recipients))
	for _, id := range recipients {
		if id == actorID {
			continue
		}
		notes = append(notes, notification.NewNotification{
			UserID:  id,
			Title:   title,
			Message: msg,
			Kind:    notification.KindLeave,
			Link:    "/leave/" + lr.ID,
		})
	}
	if err := svc.deps.Notifier.Notify(ctx, notes...); err != nil {
		svc.deps.Logger.Error(fmt.Sprintf("leave: notifying: %v", err), err)
	}
}

func (svc *Service) sendDecisionMail(emp employee.Employee, lr LeaveRequest) {
	if emp.Email == "" {
		return
	}
	svc.deps.Mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: emp.FullName(), Address: emp.Email}},
		Subject:      "Leave request " + humanStatus(lr.Status),
		TemplateName: "leave_decision",
		TemplateData: map[string]interface{}{
			"Name":      emp.FullName(),
			"LeaveType": string(lr.LeaveType),
			"StartDate": lr.StartDate.String(),
			"EndDate":   lr.EndDate.String(),
			"Days":      lr.Days,
			"Status":    humanStatus(lr.Status),
			"Comment":   lr.ReviewComment,
			"ID":        lr.ID,
		},
	})
}

func humanStatus(st Status) string {
	switch st {
	case StatusDepartmentApproved, StatusApproved:
		return "approved"
	case StatusDepartmentRejected, StatusRejected:
		return "rejected"
	default:
		return string(st)
	}
}
