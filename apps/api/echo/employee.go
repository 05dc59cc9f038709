package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/employee"
)

const qrImageSize = 256 // px

var errEmpNotFoundInCtx = errors.New("employee object not found in echo.Context")

type employeeApi struct {
	*Deps
}

func registerEmployeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := employeeApi{Deps: deps}

	eg := g.Group("/employees", jwt)
	eg.GET("", api.query, staffMiddleware())
	eg.POST("", api.create, staffMiddleware())
	eg.GET("/me", api.me)
	eg.GET("/export", api.export, staffMiddleware())

	// detail endpoints
	dg := eg.Group("/:id", api.selfOrStaffMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.GET("/qr", api.qr)
	dg.POST("/qr/rotate", api.rotateQR, staffMiddleware())
}

// selfOrStaffMiddleware loads the employee of the `id` param for staff and for the employee's own user.
func (api *employeeApi) selfOrStaffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := api.currentUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			emp, err := api.EmployeeSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == employee.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding employee by ID")
			}
			if ctxUsr.IsStaff() || (emp.UserID != nil && *emp.UserID == ctxUsr.ID) {
				ctx.Set(contextObjectKey, emp)
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

func contextEmployee(ctx echo.Context) (employee.Employee, error) {
	emp, ok := ctx.Get(contextObjectKey).(employee.Employee)
	if !ok {
		return employee.Employee{}, errors.Wrap(errEmpNotFoundInCtx, "retrieving object from context")
	}
	return emp, nil
}

func (api *employeeApi) query(ctx echo.Context) error {
	var filter employee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []employee.Employee{})
	}
	emps, err := api.EmployeeSvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying employees")
	}
	if emps == nil {
		emps = []employee.Employee{}
	}
	return ctx.JSON(http.StatusOK, emps)
}

func (api *employeeApi) export(ctx echo.Context) error {
	format, err := bindExportFormat(ctx)
	if err != nil {
		return err
	}
	var filter employee.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to employee.QueryFilter")
	}
	tbl, err := api.EmployeeSvc.Export(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting employees")
	}
	return api.sendTable(ctx, tbl, format)
}

func (api *employeeApi) create(ctx echo.Context) error {
	var data employee.NewEmployee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEmployee")
	}
	emp, err := api.EmployeeSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating employee")
	}
	api.record(ctx, activity.ActionCreate, "employee", emp.ID, emp.EmployeeCode)
	return ctx.JSON(http.StatusCreated, emp)
}

func (api *employeeApi) me(ctx echo.Context) error {
	emp, ok, err := api.currentEmployee(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	emp, err := contextEmployee(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) update(ctx echo.Context) error {
	emp, err := contextEmployee(ctx)
	if err != nil {
		return err
	}
	var data employee.NewEmployee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEmployee")
	}
	emp, err = api.EmployeeSvc.Update(ctx.Request().Context(), emp, data)
	if err != nil {
		return errors.Wrap(err, "updating employee")
	}
	api.record(ctx, activity.ActionUpdate, "employee", emp.ID, emp.EmployeeCode)
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	emp, err := contextEmployee(ctx)
	if err != nil {
		return err
	}
	if err := api.EmployeeSvc.Delete(ctx.Request().Context(), emp.ID); err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	api.record(ctx, activity.ActionDelete, "employee", emp.ID, emp.EmployeeCode)
	return ctx.NoContent(http.StatusNoContent)
}

// qr issues a fresh attendance QR token, as JSON or as a PNG with `?format=png`.
func (api *employeeApi) qr(ctx echo.Context) error {
	emp, err := contextEmployee(ctx)
	if err != nil {
		return err
	}
	if !emp.IsActive() {
		return attendance.ErrEmployeeInactive
	}
	token, err := attendance.MakeQRToken(emp, api.Conf.QRSecretKey)
	if err != nil {
		return errors.Wrap(err, "making QR token")
	}

	if ctx.QueryParam(formatParam) == "png" {
		png, err := qrcode.Encode(token, qrcode.Medium, qrImageSize)
		if err != nil {
			return errors.Wrap(err, "encoding QR code")
		}
		ctx.Response().Header().Set("Cache-Control", "no-store")
		return ctx.Blob(http.StatusOK, "image/png", png)
	}
	return ctx.JSON(http.StatusOK, QRResponse{
		EmployeeID: emp.ID,
		Token:      token,
		ExpiresIn:  int(api.Conf.Attendance.QRTokenTTL.Seconds()),
	})
}

func (api *employeeApi) rotateQR(ctx echo.Context) error {
	emp, err := contextEmployee(ctx)
	if err != nil {
		return err
	}
	if _, err := api.EmployeeSvc.RotateQRSecret(ctx.Request().Context(), emp); err != nil {
		return errors.Wrap(err, "rotating QR secret")
	}
	api.record(ctx, activity.ActionRotateQR, "employee", emp.ID, emp.EmployeeCode)
	return ctx.NoContent(http.StatusNoContent)
}
