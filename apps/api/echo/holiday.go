package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/holiday"
)

type holidayApi struct {
	*Deps
}

func registerHolidayAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := holidayApi{Deps: deps}

	hg := g.Group("/holidays", jwt)
	hg.GET("", api.query)
	hg.POST("", api.create, staffMiddleware())
	hg.GET("/:id", api.retrieve)
	hg.PUT("/:id", api.update, staffMiddleware())
	hg.DELETE("/:id", api.destroy, staffMiddleware())
}

func (api *holidayApi) query(ctx echo.Context) error {
	var filter holiday.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return core.NewValidationError(err)
	}
	holidays, err := api.HolidaySvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying holidays")
	}
	if holidays == nil {
		holidays = []holiday.Holiday{}
	}
	return ctx.JSON(http.StatusOK, holidays)
}

func (api *holidayApi) create(ctx echo.Context) error {
	var data holiday.NewHoliday
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHoliday")
	}
	h, err := api.HolidaySvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating holiday")
	}
	api.record(ctx, activity.ActionCreate, "holiday", h.ID, h.Name)
	return ctx.JSON(http.StatusCreated, h)
}

func (api *holidayApi) retrieve(ctx echo.Context) error {
	h, err := api.HolidaySvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting holiday")
	}
	return ctx.JSON(http.StatusOK, h)
}

func (api *holidayApi) update(ctx echo.Context) error {
	h, err := api.HolidaySvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting holiday")
	}
	var data holiday.NewHoliday
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHoliday")
	}
	h, err = api.HolidaySvc.Update(ctx.Request().Context(), h, data)
	if err != nil {
		return errors.Wrap(err, "updating holiday")
	}
	api.record(ctx, activity.ActionUpdate, "holiday", h.ID, h.Name)
	return ctx.JSON(http.StatusOK, h)
}

func (api *holidayApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.HolidaySvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting holiday")
	}
	api.record(ctx, activity.ActionDelete, "holiday", id, "")
	return ctx.NoContent(http.StatusNoContent)
}
