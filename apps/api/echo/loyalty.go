package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/loyalty"
)

type loyaltyApi struct {
	*Deps
}

func registerLoyaltyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := loyaltyApi{Deps: deps}

	lg := g.Group("/loyalty", jwt)
	lg.GET("/eligible", api.eligible, staffMiddleware())
	lg.GET("/awards", api.query)
	lg.POST("/awards", api.create, staffMiddleware())
	lg.GET("/awards/:id", api.retrieve)
	lg.PUT("/awards/:id", api.update, staffMiddleware())
	lg.DELETE("/awards/:id", api.destroy, staffMiddleware())
}

// query lists every award for staff and their own awards for employees.
func (api *loyaltyApi) query(ctx echo.Context) error {
	var filter loyalty.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return core.NewValidationError(err)
	}
	vis, err := api.ownVisibility(ctx)
	if err != nil {
		return err
	}
	filter.Visibility = vis

	awards, err := api.LoyaltySvc.Query(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "querying awards")
	}
	if awards == nil {
		awards = []loyalty.Award{}
	}
	return ctx.JSON(http.StatusOK, awards)
}

func (api *loyaltyApi) create(ctx echo.Context) error {
	var data loyalty.NewAward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAward")
	}
	usr, err := api.currentUser(ctx)
	if err != nil {
		return err
	}
	award, err := api.LoyaltySvc.Create(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating award")
	}
	api.record(ctx, activity.ActionCreate, "award", award.ID, award.Title)
	return ctx.JSON(http.StatusCreated, award)
}

func (api *loyaltyApi) retrieve(ctx echo.Context) error {
	award, err := api.LoyaltySvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting award")
	}
	vis, err := api.ownVisibility(ctx)
	if err != nil {
		return err
	}
	if !vis.Allows(award.EmployeeID, nil) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, award)
}

func (api *loyaltyApi) update(ctx echo.Context) error {
	award, err := api.LoyaltySvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting award")
	}
	var data loyalty.NewAward
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAward")
	}
	award, err = api.LoyaltySvc.Update(ctx.Request().Context(), award, data)
	if err != nil {
		return errors.Wrap(err, "updating award")
	}
	api.record(ctx, activity.ActionUpdate, "award", award.ID, award.Title)
	return ctx.JSON(http.StatusOK, award)
}

func (api *loyaltyApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.LoyaltySvc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting award")
	}
	api.record(ctx, activity.ActionDelete, "award", id, "")
	return ctx.NoContent(http.StatusNoContent)
}

// eligible lists the employees due a loyalty award on `as_of`, today by default.
func (api *loyaltyApi) eligible(ctx echo.Context) error {
	asOf := api.AttendanceSvc.Today()
	if s := ctx.QueryParam("as_of"); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "as_of", Error: "invalid date, use YYYY-MM-DD"})
		}
		asOf = d
	}
	eligible, err := api.LoyaltySvc.Eligible(ctx.Request().Context(), asOf)
	if err != nil {
		return errors.Wrap(err, "listing eligible employees")
	}
	return ctx.JSON(http.StatusOK, eligible)
}
