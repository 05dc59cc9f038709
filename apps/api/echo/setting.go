package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core/activity"
)

type settingApi struct {
	*Deps
}

func registerSettingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := settingApi{Deps: deps}

	sg := g.Group("/settings", jwt, staffMiddleware())
	sg.GET("", api.query)
	sg.PUT("", api.update, adminMiddleware())
	sg.GET("/:key", api.retrieve)
}

func (api *settingApi) query(ctx echo.Context) error {
	settings, err := api.SettingSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *settingApi) retrieve(ctx echo.Context) error {
	s, err := api.SettingSvc.Get(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return errors.Wrap(err, "getting setting")
	}
	return ctx.JSON(http.StatusOK, s)
}

// update sets several settings at once from a `{"key": "value"}` object.
func (api *settingApi) update(ctx echo.Context) error {
	values := make(map[string]string)
	if err := ctx.Bind(&values); err != nil {
		return errors.Wrap(err, "binding to settings map")
	}
	settings, err := api.SettingSvc.Update(ctx.Request().Context(), values)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	for key, val := range values {
		api.record(ctx, activity.ActionUpdate, "setting", key, val)
	}
	return ctx.JSON(http.StatusOK, settings)
}
