package testutil

import (
	"github.com/trezcool/hrms/apps/api/di"
	echoapi "github.com/trezcool/hrms/apps/api/echo"
	"github.com/trezcool/hrms/core"
	emailsvc "github.com/trezcool/hrms/services/email"
	filestoresvc "github.com/trezcool/hrms/services/filestore"
	logsvc "github.com/trezcool/hrms/services/logger"
	noncesvc "github.com/trezcool/hrms/services/nonce"
	dummydb "github.com/trezcool/hrms/storage/database/dummy"
)

// Env is a full service graph over the in-memory database.
type Env struct {
	Conf  *core.Config
	DB    *dummydb.DB
	Repos di.Repositories
	Deps  *echoapi.Deps
	Mail  *emailsvc.ConsoleService
}

// NewEnv builds an Env with rate limiting off and uploads under uploadDir.
func NewEnv(uploadDir string) (*Env, error) {
	conf := *core.Conf
	conf.Server.RateLimitRPS = 0
	conf.Server.ScanRateLimitRPS = 0
	conf.Storage.UploadDir = uploadDir

	files, err := filestoresvc.NewLocalStore(uploadDir)
	if err != nil {
		return nil, err
	}

	logger := logsvc.NewDiscard()
	mail := emailsvc.NewConsoleServiceMock(&conf, logger)
	db := dummydb.Open()
	repos := di.DummyRepositories(db)
	validate, translator := di.NewValidator()

	deps := di.Build(repos, di.Options{
		Conf:       &conf,
		Logger:     logger,
		Mail:       mail,
		Nonces:     noncesvc.NewMemoryStore(),
		Files:      files,
		Validate:   validate,
		Translator: translator,
	})
	deps.DisableReqLogs = true

	return &Env{Conf: &conf, DB: db, Repos: repos, Deps: deps, Mail: mail}, nil
}

// Reset empties the database and the mail outbox.
func (env *Env) Reset() {
	env.DB.Reset()
	env.Mail.Reset()
}
