package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/attendance"
)

type attendanceApi struct {
	*Deps
}

func registerAttendanceAPI(g *echo.Group, jwt, limit echo.MiddlewareFunc, deps *Deps) {
	api := attendanceApi{Deps: deps}

	ag := g.Group("/attendance", jwt)
	ag.POST("/scan", api.scan, limit, kioskOrStaffMiddleware())
	ag.POST("/sweep", api.sweep, adminMiddleware())
	ag.GET("", api.query)
	ag.GET("/summary", api.summary)
	ag.GET("/export", api.export)
	ag.POST("", api.create, staffMiddleware())
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, staffMiddleware())
	ag.DELETE("/:id", api.destroy, staffMiddleware())
}

// scanOutcome labels a scan for the metrics.
func scanOutcome(res attendance.ScanResult, err error) string {
	if err == nil {
		return res.Action
	}
	cause := errors.Cause(err)
	if cErr, ok := cause.(*core.ConflictError); ok {
		cause = cErr.Err
	}
	switch cause {
	case attendance.ErrInvalidToken:
		return "invalid"
	case attendance.ErrTokenExpired:
		return "expired"
	case attendance.ErrTokenReplayed:
		return "replayed"
	case attendance.ErrEmployeeInactive:
		return "inactive"
	case attendance.ErrDuplicateScan:
		return "duplicate"
	case attendance.ErrAlreadyCheckedOut, attendance.ErrAlreadyRecorded:
		return "already_recorded"
	}
	return "error"
}

func (api *attendanceApi) scan(ctx echo.Context) error {
	var data attendance.Scan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Scan")
	}
	res, err := api.AttendanceSvc.ScanQR(ctx.Request().Context(), data)
	api.Metrics.QRScan(scanOutcome(res, err))
	if err != nil {
		return err
	}
	api.record(ctx, activity.ActionScan, "attendance", res.Attendance.ID, res.Action+" "+res.Employee)
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) bindFilter(ctx echo.Context) (attendance.QueryFilter, error) {
	var filter attendance.QueryFilter
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

func (api *attendanceApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	rows, err := api.AttendanceSvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	if rows == nil {
		rows = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	sum, err := api.AttendanceSvc.Summarize(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *attendanceApi) export(ctx echo.Context) error {
	format, err := bindExportFormat(ctx)
	if err != nil {
		return err
	}
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	tbl, err := api.AttendanceSvc.Export(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting attendance")
	}
	return api.sendTable(ctx, tbl, format)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	a, err := api.AttendanceSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating attendance")
	}
	api.record(ctx, activity.ActionCreate, "attendance", a.ID, a.Date.String())
	return ctx.JSON(http.StatusCreated, a)
}

// visibleRow loads the `id` row and checks the caller may see it.
func (api *attendanceApi) visibleRow(ctx echo.Context) (attendance.Attendance, error) {
	a, err := api.AttendanceSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "getting attendance")
	}
	ok, err := api.canSeeEmployee(ctx, a.EmployeeID)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return a, nil
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	a, err := api.visibleRow(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	a, err := api.AttendanceSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting attendance")
	}
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	a, err = api.AttendanceSvc.Update(ctx.Request().Context(), a, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	api.record(ctx, activity.ActionUpdate, "attendance", a.ID, a.Date.String())
	return ctx.JSON(http.StatusOK, a)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.AttendanceSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	api.record(ctx, activity.ActionDelete, "attendance", id, "")
	return ctx.NoContent(http.StatusNoContent)
}

// sweep runs the absent sweep for the given date, today by default.
func (api *attendanceApi) sweep(ctx echo.Context) error {
	var data SweepRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SweepRequest")
	}
	if data.Date.IsZero() {
		data.Date = api.AttendanceSvc.Today()
	}
	res, err := api.AttendanceSvc.Sweep(ctx.Request().Context(), data.Date)
	if err != nil {
		return errors.Wrap(err, "sweeping")
	}
	api.Metrics.Sweep(res)
	api.record(ctx, activity.ActionSweep, "attendance", "", res.Date.String())
	return ctx.JSON(http.StatusOK, res)
}
