package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/designation"
)

type departmentApi struct {
	*Deps
}

func registerDepartmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := departmentApi{Deps: deps}

	dg := g.Group("/departments", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, staffMiddleware())
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update, staffMiddleware())
	dg.DELETE("/:id", api.destroy, staffMiddleware())
}

func (api *departmentApi) query(ctx echo.Context) error {
	var filter department.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []department.Department{})
	}
	depts, err := api.DepartmentSvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []department.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *departmentApi) create(ctx echo.Context) error {
	var data department.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	dept, err := api.DepartmentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	api.record(ctx, activity.ActionCreate, "department", dept.ID, dept.Name)
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *departmentApi) retrieve(ctx echo.Context) error {
	dept, err := api.DepartmentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentApi) update(ctx echo.Context) error {
	dept, err := api.DepartmentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting department")
	}
	var data department.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	dept, err = api.DepartmentSvc.Update(ctx.Request().Context(), dept, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	api.record(ctx, activity.ActionUpdate, "department", dept.ID, dept.Name)
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.DepartmentSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	api.record(ctx, activity.ActionDelete, "department", id, "")
	return ctx.NoContent(http.StatusNoContent)
}

type designationApi struct {
	*Deps
}

func registerDesignationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := designationApi{Deps: deps}

	dg := g.Group("/designations", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, staffMiddleware())
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update, staffMiddleware())
	dg.DELETE("/:id", api.destroy, staffMiddleware())
}

func (api *designationApi) query(ctx echo.Context) error {
	var filter designation.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []designation.Designation{})
	}
	desigs, err := api.DesignationSvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying designations")
	}
	if desigs == nil {
		desigs = []designation.Designation{}
	}
	return ctx.JSON(http.StatusOK, desigs)
}

func (api *designationApi) create(ctx echo.Context) error {
	var data designation.NewDesignation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDesignation")
	}
	desig, err := api.DesignationSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating designation")
	}
	api.record(ctx, activity.ActionCreate, "designation", desig.ID, desig.Title)
	return ctx.JSON(http.StatusCreated, desig)
}

func (api *designationApi) retrieve(ctx echo.Context) error {
	desig, err := api.DesignationSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting designation")
	}
	return ctx.JSON(http.StatusOK, desig)
}

func (api *designationApi) update(ctx echo.Context) error {
	desig, err := api.DesignationSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting designation")
	}
	var data designation.NewDesignation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDesignation")
	}
	desig, err = api.DesignationSvc.Update(ctx.Request().Context(), desig, data)
	if err != nil {
		return errors.Wrap(err, "updating designation")
	}
	api.record(ctx, activity.ActionUpdate, "designation", desig.ID, desig.Title)
	return ctx.JSON(http.StatusOK, desig)
}

func (api *designationApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.DesignationSvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting designation")
	}
	api.record(ctx, activity.ActionDelete, "designation", id, "")
	return ctx.NoContent(http.StatusNoContent)
}
