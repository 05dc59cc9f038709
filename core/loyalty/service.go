package loyalty

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/notification"
	"github.com/trezcool/hrms/core/setting"
)

var (
	// errors
	ErrNotFound       = errors.New("award not found")
	ErrAlreadyAwarded = errors.New("this milestone was already awarded to the employee")
)

type (
	Repository interface {
		// CreateAward returns ErrAlreadyAwarded when the (employee, milestone) pair exists.
		CreateAward(ctx context.Context, a Award) (Award, error)
		GetAwardByID(ctx context.Context, id string) (Award, error)
		FilterAwards(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Award, error)
		UpdateAward(ctx context.Context, a Award) (Award, error)
		DeleteAward(ctx context.Context, id string) error
		ListAwardedMilestones(ctx context.Context) ([]Milestone, error)
	}

	EmployeeGetter interface {
		GetByID(ctx context.Context, id string) (employee.Employee, error)
		ListActive(ctx context.Context, joinedBy core.Date) ([]employee.Employee, error)
	}

	SettingStore interface {
		IntList(ctx context.Context, key string) ([]int, error)
	}

	Notifier interface {
		Notify(ctx context.Context, notes ...notification.NewNotification) error
	}

	Service struct {
		repo      Repository
		employees EmployeeGetter
		settings  SettingStore
		notifier  Notifier
		validate  *validator.Validate
		logger    core.Logger
	}
)

func NewService(
	repo Repository,
	employees EmployeeGetter,
	settings SettingStore,
	notifier Notifier,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, employees: employees, settings: settings, notifier: notifier, validate: validate, logger: logger}
}

func (svc *Service) validateNew(ctx context.Context, na *NewAward) (employee.Employee, core.Date, error) {
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return employee.Employee{}, core.Date{}, err
	}
	emp, err := svc.employees.GetByID(ctx, na.EmployeeID)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return employee.Employee{}, core.Date{}, core.NewValidationError(err, core.FieldError{Field: "employee_id", Error: err.Error()})
		}
		return employee.Employee{}, core.Date{}, errors.Wrap(err, "getting employee")
	}
	awardedOn := core.NewDate(time.Now().UTC())
	if na.AwardedOn != "" {
		awardedOn, _ = core.ParseDate(na.AwardedOn)
	}
	return emp, awardedOn, nil
}

// Create awards a milestone to an employee and notifies them.
func (svc *Service) Create(ctx context.Context, na NewAward, awardedBy string) (Award, error) {
	emp, awardedOn, err := svc.validateNew(ctx, &na)
	if err != nil {
		return Award{}, err
	}
	award, err := svc.repo.CreateAward(ctx, Award{
		ID:             uuid.NewString(),
		EmployeeID:     emp.ID,
		Title:          na.Title,
		Description:    na.Description,
		MilestoneYears: na.MilestoneYears,
		AwardedOn:      awardedOn,
		AwardedBy:      core.StringPtr(awardedBy),
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyAwarded {
			return Award{}, core.NewValidationError(err, core.FieldError{Field: "milestone_years", Error: err.Error()})
		}
		return Award{}, err
	}

	if emp.UserID != nil {
		err := svc.notifier.Notify(ctx, notification.NewNotification{
			UserID:  *emp.UserID,
			Title:   "Congratulations!",
			Message: fmt.Sprintf("You received the %q award for %d year(s) of service.", award.Title, award.MilestoneYears),
			Kind:    notification.KindLoyalty,
			Link:    "/loyalty/" + award.ID,
		})
		if err != nil {
			svc.logger.Error(fmt.Sprintf("loyalty: notifying: %v", err), err)
		}
	}
	return award, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Award, error) {
	return svc.repo.GetAwardByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Award, error) {
	if filter.Visibility.IsEmpty() {
		return []Award{}, nil
	}
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterAwards(ctx, filter, opts)
}

func (svc *Service) Update(ctx context.Context, award Award, na NewAward) (Award, error) {
	emp, awardedOn, err := svc.validateNew(ctx, &na)
	if err != nil {
		return Award{}, err
	}
	award.EmployeeID = emp.ID
	award.Title = na.Title
	award.Description = na.Description
	award.MilestoneYears = na.MilestoneYears
	award.AwardedOn = awardedOn
	award, err = svc.repo.UpdateAward(ctx, award)
	if errors.Cause(err) == ErrAlreadyAwarded {
		return Award{}, core.NewValidationError(err, core.FieldError{Field: "milestone_years", Error: err.Error()})
	}
	return award, err
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAward(ctx, id)
}

// Eligible lists the active employees who reached a milestone not awarded yet,
// each at their highest such milestone.
func (svc *Service) Eligible(ctx context.Context, asOf core.Date) ([]Eligibility, error) {
	milestones, err := svc.settings.IntList(ctx, setting.LoyaltyMilestones)
	if err != nil {
		return nil, errors.Wrap(err, "getting loyalty milestones")
	}
	sort.Sort(sort.Reverse(sort.IntSlice(milestones)))

	emps, err := svc.employees.ListActive(ctx, asOf)
	if err != nil {
		return nil, errors.Wrap(err, "listing active employees")
	}
	awarded, err := svc.repo.ListAwardedMilestones(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing awarded milestones")
	}
	done := make(map[Milestone]struct{}, len(awarded))
	for _, m := range awarded {
		done[m] = struct{}{}
	}

	eligible := make([]Eligibility, 0)
	for _, emp := range emps {
		years := emp.YearsOfService(asOf)
		for _, m := range milestones {
			if m > years {
				continue
			}
			if _, ok := done[Milestone{EmployeeID: emp.ID, MilestoneYears: m}]; ok {
				continue
			}
			eligible = append(eligible, Eligibility{Employee: emp, YearsOfService: years, MilestoneYears: m})
			break
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].YearsOfService > eligible[j].YearsOfService
	})
	return eligible, nil
}
