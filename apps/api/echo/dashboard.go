package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	g.GET("/dashboard", func(ctx echo.Context) error {
		sum, err := deps.DashboardSvc.Summary(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "summarizing dashboard")
		}
		return ctx.JSON(http.StatusOK, sum)
	}, jwt, staffMiddleware())
}
