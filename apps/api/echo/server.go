package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/activity"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/dashboard"
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
	metricsvc "github.com/trezcool/hrms/services/metrics"
)

type (
	// Deps are the collaborators of the API server.
	Deps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		Metrics        *metricsvc.Metrics // optional
		DisableReqLogs bool

		UserSvc         *user.Service
		DepartmentSvc   *department.Service
		DesignationSvc  *designation.Service
		EmployeeSvc     *employee.Service
		AttendanceSvc   *attendance.Service
		LeaveSvc        *leave.Service
		HolidaySvc      *holiday.Service
		DocumentSvc     *document.Service
		NotificationSvc *notification.Service
		LoyaltySvc      *loyalty.Service
		ActivitySvc     *activity.Service
		SettingSvc      *setting.Service
		DashboardSvc    *dashboard.Service
	}

	Server struct {
		deps     *Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps *Deps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)
	limits := newRouteLimits(conf.Server)

	registerUserAPI(v1, jwt, limits.auth, s.deps)
	registerDepartmentAPI(v1, jwt, s.deps)
	registerDesignationAPI(v1, jwt, s.deps)
	registerEmployeeAPI(v1, jwt, s.deps)
	registerAttendanceAPI(v1, jwt, limits.scan, s.deps)
	registerLeaveAPI(v1, jwt, s.deps)
	registerHolidayAPI(v1, jwt, s.deps)
	registerDocumentAPI(v1, jwt, s.deps)
	registerNotificationAPI(v1, jwt, s.deps)
	registerLoyaltyAPI(v1, jwt, s.deps)
	registerActivityAPI(v1, jwt, s.deps)
	registerSettingAPI(v1, jwt, s.deps)
	registerDashboardAPI(v1, jwt, s.deps)
}

// Start listens until the server is shut down. Listening failures are sent on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to HRMS API!")
}
