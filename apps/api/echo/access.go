package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/leave"
	"github.com/trezcool/hrms/core/user"
)

var (
	contextEmployeeKey   = "employee"
	contextVisibilityKey = "visibility"
	contextObjectKey     = "object"
)

func (d *Deps) currentUser(ctx echo.Context) (user.User, error) {
	return getContextUser(ctx, d.UserSvc)
}

// currentEmployee returns the employee linked to the caller. ok is false when there is none.
func (d *Deps) currentEmployee(ctx echo.Context) (emp employee.Employee, ok bool, err error) {
	if cached, found := ctx.Get(contextEmployeeKey).(*employee.Employee); found {
		if cached == nil {
			return employee.Employee{}, false, nil
		}
		return *cached, true, nil
	}

	usr, err := d.currentUser(ctx)
	if err != nil {
		return employee.Employee{}, false, err
	}
	emp, err = d.EmployeeSvc.GetByUserID(ctx.Request().Context(), usr.ID)
	switch errors.Cause(err) {
	case nil:
		ctx.Set(contextEmployeeKey, &emp)
		return emp, true, nil
	case employee.ErrNotFound:
		ctx.Set(contextEmployeeKey, (*employee.Employee)(nil))
		return employee.Employee{}, false, nil
	default:
		return employee.Employee{}, false, errors.Wrap(err, "getting caller's employee")
	}
}

// visibility resolves which employees' records the caller may see:
// everything for staff, the departments they head and their own records otherwise.
func (d *Deps) visibility(ctx echo.Context) (core.Visibility, error) {
	if vis, ok := ctx.Get(contextVisibilityKey).(core.Visibility); ok {
		return vis, nil
	}

	usr, err := d.currentUser(ctx)
	if err != nil {
		return core.Visibility{}, err
	}
	var vis core.Visibility
	if usr.IsStaff() {
		vis.All = true
	} else {
		emp, ok, err := d.currentEmployee(ctx)
		if err != nil {
			return core.Visibility{}, err
		}
		if ok {
			vis.EmployeeID = emp.ID
			depts, err := d.DepartmentSvc.HeadedBy(ctx.Request().Context(), emp.ID)
			if err != nil {
				return core.Visibility{}, errors.Wrap(err, "getting headed departments")
			}
			for _, dept := range depts {
				vis.DepartmentIDs = append(vis.DepartmentIDs, dept.ID)
			}
		}
	}
	ctx.Set(contextVisibilityKey, vis)
	return vis, nil
}

// canSee reports whether the caller may see the records of emp.
func (d *Deps) canSee(ctx echo.Context, emp employee.Employee) (bool, error) {
	vis, err := d.visibility(ctx)
	if err != nil {
		return false, err
	}
	return vis.Allows(emp.ID, emp.DepartmentID), nil
}

// ownVisibility is the visibility of the caller without the departments they head.
func (d *Deps) ownVisibility(ctx echo.Context) (core.Visibility, error) {
	vis, err := d.visibility(ctx)
	if err != nil {
		return core.Visibility{}, err
	}
	vis.DepartmentIDs = nil
	return vis, nil
}

// canSeeEmployee is canSee for an employee known by ID. Unknown employees are only visible to staff.
func (d *Deps) canSeeEmployee(ctx echo.Context, employeeID string) (bool, error) {
	vis, err := d.visibility(ctx)
	if err != nil {
		return false, err
	}
	if vis.All {
		return true, nil
	}
	emp, err := d.EmployeeSvc.GetByID(ctx.Request().Context(), employeeID)
	switch errors.Cause(err) {
	case nil:
		return vis.Allows(emp.ID, emp.DepartmentID), nil
	case employee.ErrNotFound:
		return false, nil
	default:
		return false, errors.Wrap(err, "getting employee")
	}
}

func (d *Deps) leaveActor(ctx echo.Context) (leave.Actor, error) {
	usr, err := d.currentUser(ctx)
	if err != nil {
		return leave.Actor{}, err
	}
	actor := leave.Actor{UserID: usr.ID, Staff: usr.IsStaff()}
	emp, ok, err := d.currentEmployee(ctx)
	if err != nil {
		return leave.Actor{}, err
	}
	if ok {
		actor.EmployeeID = emp.ID
	}
	return actor, nil
}

// record logs an action of the caller in the activity trail.
func (d *Deps) record(ctx echo.Context, action, entityType, entityID, details string) {
	ne := activity.NewEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ctx.RealIP(),
		UserAgent:  ctx.Request().UserAgent(),
	}
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		ne.UserID = usr.ID
		ne.Username = usr.Username
	} else if claims, err := getContextClaims(ctx); err == nil {
		ne.UserID = claims.Subject
		ne.Username = claims.Username
	}
	d.ActivitySvc.Record(ctx.Request().Context(), ne)
}

// recordAs logs an action of usr, for unauthenticated endpoints such as login.
func (d *Deps) recordAs(ctx echo.Context, usr user.User, action string) {
	d.ActivitySvc.Record(ctx.Request().Context(), activity.NewEntry{
		UserID:     usr.ID,
		Username:   usr.Username,
		Action:     action,
		EntityType: "user",
		EntityID:   usr.ID,
		IPAddress:  ctx.RealIP(),
		UserAgent:  ctx.Request().UserAgent(),
	})
}
