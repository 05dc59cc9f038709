package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/leave"
)

var errLeaveNotFoundInCtx = errors.New("leave request not found in echo.Context")

type leaveApi struct {
	*Deps
}

func registerLeaveAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := leaveApi{Deps: deps}

	lg := g.Group("/leaves", jwt)
	lg.GET("", api.query)
	lg.POST("", api.submit)
	lg.GET("/balance", api.balance)
	lg.GET("/export", api.export)

	// detail endpoints
	dg := lg.Group("/:id", api.visibleLeaveMiddleware())
	dg.GET("", api.retrieve)
	dg.POST("/department-decision", api.departmentDecision)
	dg.POST("/final-decision", api.finalDecision, staffMiddleware())
	dg.POST("/cancel", api.cancel)
}

// visibleLeaveMiddleware loads the leave request of the `id` param if the caller may see it.
func (api *leaveApi) visibleLeaveMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			lr, err := api.LeaveSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "getting leave request")
			}
			ok, err := api.canSeeEmployee(ctx, lr.EmployeeID)
			if err != nil {
				return err
			}
			if !ok {
				return errHttpNotFound
			}
			ctx.Set(contextObjectKey, lr)
			return next(ctx)
		}
	}
}

func contextLeave(ctx echo.Context) (leave.LeaveRequest, error) {
	lr, ok := ctx.Get(contextObjectKey).(leave.LeaveRequest)
	if !ok {
		return leave.LeaveRequest{}, errors.Wrap(errLeaveNotFoundInCtx, "retrieving object from context")
	}
	return lr, nil
}

func (api *leaveApi) bindFilter(ctx echo.Context) (leave.QueryFilter, error) {
	var filter leave.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, core.NewValidationError(err)
	}
	vis, err := api.visibility(ctx)
	if err != nil {
		return filter, err
	}
	filter.Visibility = vis
	return filter, nil
}

func (api *leaveApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	leaves, err := api.LeaveSvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying leave requests")
	}
	if leaves == nil {
		leaves = []leave.LeaveRequest{}
	}
	return ctx.JSON(http.StatusOK, leaves)
}

func (api *leaveApi) export(ctx echo.Context) error {
	format, err := bindExportFormat(ctx)
	if err != nil {
		return err
	}
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	tbl, err := api.LeaveSvc.Export(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting leave requests")
	}
	return api.sendTable(ctx, tbl, format)
}

func (api *leaveApi) submit(ctx echo.Context) error {
	var data leave.NewLeaveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLeaveRequest")
	}
	actor, err := api.leaveActor(ctx)
	if err != nil {
		return err
	}
	lr, err := api.LeaveSvc.Submit(ctx.Request().Context(), data, actor)
	if err != nil {
		return errors.Wrap(err, "submitting leave request")
	}
	api.record(ctx, activity.ActionCreate, "leave", lr.ID, string(lr.LeaveType))
	return ctx.JSON(http.StatusCreated, lr)
}

// balance reports the leave balance of `employee_id` (the caller by default) for `year` (the current one by default).
func (api *leaveApi) balance(ctx echo.Context) error {
	empID := ctx.QueryParam("employee_id")
	if empID == "" {
		emp, ok, err := api.currentEmployee(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNoEmployeeRecord
		}
		empID = emp.ID
	} else {
		ok, err := api.canSeeEmployee(ctx, empID)
		if err != nil {
			return err
		}
		if !ok {
			return errHttpNotFound
		}
	}

	year := time.Now().In(api.Conf.Location()).Year()
	if y := ctx.QueryParam("year"); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil || year < 1900 || year > 9999 {
			return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "invalid year"})
		}
	}

	balances, err := api.LeaveSvc.Balance(ctx.Request().Context(), empID, year)
	if err != nil {
		return errors.Wrap(err, "getting leave balance")
	}
	return ctx.JSON(http.StatusOK, balances)
}

func (api *leaveApi) retrieve(ctx echo.Context) error {
	lr, err := contextLeave(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lr)
}

func (api *leaveApi) departmentDecision(ctx echo.Context) error {
	return api.decide(ctx, leave.StageDepartment)
}

func (api *leaveApi) finalDecision(ctx echo.Context) error {
	return api.decide(ctx, leave.StageFinal)
}

func (api *leaveApi) decide(ctx echo.Context, stage leave.Stage) error {
	lr, err := contextLeave(ctx)
	if err != nil {
		return err
	}
	var data leave.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	data.Clean()
	actor, err := api.leaveActor(ctx)
	if err != nil {
		return err
	}

	if stage == leave.StageDepartment {
		lr, err = api.LeaveSvc.DepartmentDecision(ctx.Request().Context(), lr, actor, data)
	} else {
		lr, err = api.LeaveSvc.FinalDecision(ctx.Request().Context(), lr, actor, data)
	}
	if err != nil {
		return errors.Wrapf(err, "%s decision", stage)
	}

	action := activity.ActionReject
	if data.Approved() {
		action = activity.ActionApprove
	}
	api.Metrics.LeaveDecision(string(stage), string(lr.Status))
	api.record(ctx, action, "leave", lr.ID, string(stage)+": "+string(lr.Status))
	return ctx.JSON(http.StatusOK, lr)
}

func (api *leaveApi) cancel(ctx echo.Context) error {
	lr, err := contextLeave(ctx)
	if err != nil {
		return err
	}
	actor, err := api.leaveActor(ctx)
	if err != nil {
		return err
	}
	lr, err = api.LeaveSvc.Cancel(ctx.Request().Context(), lr, actor)
	if err != nil {
		return errors.Wrap(err, "cancelling leave request")
	}
	api.record(ctx, activity.ActionCancel, "leave", lr.ID, "")
	return ctx.JSON(http.StatusOK, lr)
}
