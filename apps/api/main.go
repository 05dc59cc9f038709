package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hrms/apps/api/di"
	echoapi "github.com/trezcool/hrms/apps/api/echo"
	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/attendance"
	"github.com/trezcool/hrms/core/user"
	emailsvc "github.com/trezcool/hrms/services/email"
	filestoresvc "github.com/trezcool/hrms/services/filestore"
	logsvc "github.com/trezcool/hrms/services/logger"
	metricsvc "github.com/trezcool/hrms/services/metrics"
	noncesvc "github.com/trezcool/hrms/services/nonce"
	schedulersvc "github.com/trezcool/hrms/services/scheduler"
	"github.com/trezcool/hrms/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf
	logsvc.Setup(conf)

	logger := logsvc.New(logsvc.PrefixAPI)
	dbLogger := logsvc.New(logsvc.PrefixDB)
	defer logger.Flush()

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			dbLogger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger, os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var nonces attendance.NonceStore
	if conf.Redis.Addr != "" {
		client, err := noncesvc.NewRedisClient(context.Background(), conf.Redis)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		defer client.Close()
		nonces = noncesvc.NewRedisStore(client)
	} else {
		logger.Warn("redis.addr not set: QR nonces are kept in memory and lost on restart")
		nonces = noncesvc.NewMemoryStore()
	}

	files, err := filestoresvc.NewLocalStore(conf.Storage.UploadDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up upload dir: %v", err), err)
	}

	metrics := metricsvc.New()
	validate, translator := di.NewValidator()
	deps := di.Build(di.SQLRepositories(db), di.Options{
		Conf:       conf,
		Logger:     logger,
		Mail:       mailSvc,
		Nonces:     nonces,
		Files:      files,
		Metrics:    metrics,
		Validate:   validate,
		Translator: translator,
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(logger)
	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - prometheus exposition of the app registry.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", metrics.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Scheduler

	cronLogger := logsvc.New(logsvc.PrefixCron)
	scheduler := schedulersvc.New(conf.Location(), cronLogger, conf.Server.ShutdownTimeout*6)
	err = scheduler.Add(conf.Attendance.SweepSchedule, "absent sweep", func(ctx context.Context) error {
		results, err := deps.AttendanceSvc.RunDueSweep(ctx)
		metrics.Sweep(results...)
		for _, res := range results {
			cronLogger.Info(fmt.Sprintf("swept %s: absent=%d on_leave=%d skipped=%q", res.Date, res.Absent, res.OnLeave, res.Skipped))
		}
		return err
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("scheduling absent sweep: %v", err), err)
	}
	scheduler.Start()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(deps)
	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	}

	// give outstanding requests and jobs a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(ctx)

	// asking listener to shutdown and shed load
	if err = server.Shutdown(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

		if err = server.Close(); err != nil {
			logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating database")
	}
	return db, nil
}
