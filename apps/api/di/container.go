// Package di builds the service graph shared by the API server, the admin CLI and the API tests.
package di

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/hrms/apps/api/echo"
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
	dummydb "github.com/trezcool/hrms/storage/database/dummy"
	sqlxrepos "github.com/trezcool/hrms/storage/database/sqlx"
)

type (
	Repositories struct {
		Users         user.Repository
		Settings      setting.Repository
		Holidays      holiday.Repository
		Departments   department.Repository
		Designations  designation.Repository
		Employees     employee.Repository
		Attendance    attendance.Repository
		Leaves        leave.Repository
		Documents     document.Repository
		Notifications notification.Repository
		Awards        loyalty.Repository
		Activity      activity.Repository
	}

	// Options are the infrastructure pieces the services run on.
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Mail       core.EmailService
		Nonces     attendance.NonceStore
		Files      document.FileStore
		Metrics    *metricsvc.Metrics // optional
		Validate   *validator.Validate
		Translator ut.Translator
	}
)

func SQLRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:         sqlxrepos.NewUserRepository(db),
		Settings:      sqlxrepos.NewSettingRepository(db),
		Holidays:      sqlxrepos.NewHolidayRepository(db),
		Departments:   sqlxrepos.NewDepartmentRepository(db),
		Designations:  sqlxrepos.NewDesignationRepository(db),
		Employees:     sqlxrepos.NewEmployeeRepository(db),
		Attendance:    sqlxrepos.NewAttendanceRepository(db),
		Leaves:        sqlxrepos.NewLeaveRepository(db),
		Documents:     sqlxrepos.NewDocumentRepository(db),
		Notifications: sqlxrepos.NewNotificationRepository(db),
		Awards:        sqlxrepos.NewLoyaltyRepository(db),
		Activity:      sqlxrepos.NewActivityRepository(db),
	}
}

func DummyRepositories(db *dummydb.DB) Repositories {
	return Repositories{
		Users:         dummydb.NewUserRepository(db),
		Settings:      dummydb.NewSettingRepository(db),
		Holidays:      dummydb.NewHolidayRepository(db),
		Departments:   dummydb.NewDepartmentRepository(db),
		Designations:  dummydb.NewDesignationRepository(db),
		Employees:     dummydb.NewEmployeeRepository(db),
		Attendance:    dummydb.NewAttendanceRepository(db),
		Leaves:        dummydb.NewLeaveRepository(db),
		Documents:     dummydb.NewDocumentRepository(db),
		Notifications: dummydb.NewNotificationRepository(db),
		Awards:        dummydb.NewLoyaltyRepository(db),
		Activity:      dummydb.NewActivityRepository(db),
	}
}

// NewValidator returns a validator with the custom tags and english messages of every domain package.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	employee.InitValidators(validate, translator)
	leave.InitValidators(validate, translator)
	return validate, translator
}

// Build wires the domain services over repos.
func Build(repos Repositories, opts Options) *echoapi.Deps {
	validate := opts.Validate
	usrSvc := user.NewService(repos.Users, opts.Mail)
	settingSvc := setting.NewService(repos.Settings)
	holidaySvc := holiday.NewService(repos.Holidays, validate)
	deptSvc := department.NewService(repos.Departments, repos.Employees, validate)
	desigSvc := designation.NewService(repos.Designations, deptSvc, validate)
	empSvc := employee.NewService(repos.Employees, deptSvc, desigSvc, usrSvc, validate)
	notifSvc := notification.NewService(repos.Notifications, usrSvc, validate)
	leaveSvc := leave.NewService(repos.Leaves, leave.Deps{
		Employees:   empSvc,
		Departments: deptSvc,
		Settings:    settingSvc,
		Holidays:    holidaySvc,
		Notifier:    notifSvc,
		Staff:       usrSvc,
		Mail:        opts.Mail,
		Logger:      opts.Logger,
	}, validate)
	attSvc := attendance.NewService(repos.Attendance, empSvc, settingSvc, holidaySvc, leaveSvc, opts.Nonces, validate, opts.Conf)

	return &echoapi.Deps{
		Conf:       opts.Conf,
		Logger:     opts.Logger,
		Validate:   validate,
		Translator: opts.Translator,
		Metrics:    opts.Metrics,

		UserSvc:         usrSvc,
		DepartmentSvc:   deptSvc,
		DesignationSvc:  desigSvc,
		EmployeeSvc:     empSvc,
		AttendanceSvc:   attSvc,
		LeaveSvc:        leaveSvc,
		HolidaySvc:      holidaySvc,
		DocumentSvc:     document.NewService(repos.Documents, opts.Files, empSvc, validate, opts.Logger, opts.Conf.Storage.MaxUploadSize),
		NotificationSvc: notifSvc,
		LoyaltySvc:      loyalty.NewService(repos.Awards, empSvc, settingSvc, notifSvc, validate, opts.Logger),
		ActivitySvc:     activity.NewService(repos.Activity, opts.Logger),
		SettingSvc:      settingSvc,
		DashboardSvc:    dashboard.NewService(empSvc, deptSvc, attSvc, leaveSvc, holidaySvc),
	}
}
