package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
)

type activityApi struct {
	*Deps
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := activityApi{Deps: deps}

	g.GET("/activity", api.query, jwt, adminMiddleware())
}

func (api *activityApi) query(ctx echo.Context) error {
	var filter activity.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return core.NewValidationError(err)
	}
	entries, err := api.ActivitySvc.List(ctx.Request().Context(), filter, bindListOptions(ctx))
	if err != nil {
		return errors.Wrap(err, "listing activity")
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
