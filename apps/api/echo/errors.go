package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/department"
	"github.com/trezcool/hrms/core/designation"
	"github.com/trezcool/hrms/core/document"
	"github.com/trezcool/hrms/core/employee"
	"github.com/trezcool/hrms/core/holiday"
	"github.com/trezcool/hrms/core/leave"
	"github.com/trezcool/hrms/core/loyalty"
	"github.com/trezcool/hrms/core/notification"
	"github.com/trezcool/hrms/core/setting"
	"github.com/trezcool/hrms/core/user"
	exportsvc "github.com/trezcool/hrms/services/export"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyRequests      = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	errNoEmployeeRecord     = echo.NewHTTPError(http.StatusForbidden, "no employee record is linked to this account")
)

// sentinelCodes maps domain sentinel errors to their HTTP status.
var sentinelCodes = map[error]int{
	user.ErrNotFound:         http.StatusNotFound,
	department.ErrNotFound:   http.StatusNotFound,
	designation.ErrNotFound:  http.StatusNotFound,
	employee.ErrNotFound:     http.StatusNotFound,
	attendance.ErrNotFound:   http.StatusNotFound,
	leave.ErrNotFound:        http.StatusNotFound,
	holiday.ErrNotFound:      http.StatusNotFound,
	document.ErrNotFound:     http.StatusNotFound,
	notification.ErrNotFound: http.StatusNotFound,
	loyalty.ErrNotFound:      http.StatusNotFound,
	setting.ErrNotFound:      http.StatusNotFound,

	attendance.ErrInvalidToken:     http.StatusBadRequest,
	attendance.ErrTokenExpired:     http.StatusBadRequest,
	attendance.ErrEmployeeInactive: http.StatusBadRequest,
	attendance.ErrTokenReplayed:    http.StatusConflict,
	setting.ErrUnknownKey:          http.StatusBadRequest,
	exportsvc.ErrUnknownFormat:     http.StatusBadRequest,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(deps *Deps, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(deps.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		case *core.ForbiddenError:
			code = http.StatusForbidden
			message = origErr.Error()
		default:
			if c, ok := sentinelCodes[origErr]; ok {
				code = c
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			deps.Logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
