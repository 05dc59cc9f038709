package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/hrms/apps/api/di"
	"github.com/trezcool/hrms/core"
	emailsvc "github.com/trezcool/hrms/services/email"
	filestoresvc "github.com/trezcool/hrms/services/filestore"
	logsvc "github.com/trezcool/hrms/services/logger"
	noncesvc "github.com/trezcool/hrms/services/nonce"
	"github.com/trezcool/hrms/storage/database"
)

func main() {
	conf := core.Conf
	logsvc.Setup(conf)
	logger := logsvc.New(logsvc.PrefixAdmin)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
	db, err := database.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	files, err := filestoresvc.NewLocalStore(conf.Storage.UploadDir)
	if err != nil {
		_ = db.Close()
		logger.Fatal(fmt.Sprintf("setting up upload dir: %v", err), err)
	}

	validate, translator := di.NewValidator()
	deps := di.Build(di.SQLRepositories(db), di.Options{
		Conf:       conf,
		Logger:     logger,
		Mail:       emailsvc.NewConsoleService(conf, logger, os.Stdout),
		Nonces:     noncesvc.NewMemoryStore(),
		Files:      files,
		Validate:   validate,
		Translator: translator,
	})

	// start CLI
	cli := commandLine{
		db:     db.DB,
		usrSvc: deps.UserSvc,
		attSvc: deps.AttendanceSvc,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	logger.Flush()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
