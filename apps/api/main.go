package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/PARTHSHARMA4010/ClarityAI/apps/api/echo"
	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/assignment"
	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
	"github.com/PARTHSHARMA4010/ClarityAI/core/report"
	"github.com/PARTHSHARMA4010/ClarityAI/core/submission"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
	blobsvc "github.com/PARTHSHARMA4010/ClarityAI/services/blob"
	classifiersvc "github.com/PARTHSHARMA4010/ClarityAI/services/classifier"
	emailsvc "github.com/PARTHSHARMA4010/ClarityAI/services/email"
	logsvc "github.com/PARTHSHARMA4010/ClarityAI/services/logger"
	"github.com/PARTHSHARMA4010/ClarityAI/storage/database"
	inmemdb "github.com/PARTHSHARMA4010/ClarityAI/storage/database/inmem"
	sqlxrepos "github.com/PARTHSHARMA4010/ClarityAI/storage/database/sqlx"
)

type repositories struct {
	users       user.Repository
	assignments assignment.Repository
	submissions submission.Repository
	close       func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up DB
	repos, err := setUpRepositories(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	policy, err := submission.ParsePolicy(conf.Submission.Policy)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up submissions: %v", err), err)
	}
	blobs, err := blobsvc.New(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up blob storage: %v", err), err)
	}
	classifier, err := classifiersvc.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up classifier: %v", err), err)
	}
	mailSvc := emailsvc.New(std, logger, conf)

	usrSvc := user.NewService(repos.users, mailSvc, conf)
	asgSvc := assignment.NewService(repos.assignments, repos.submissions, usrSvc, blobs)
	subSvc := submission.NewService(repos.submissions, asgSvc, usrSvc, blobs, mailSvc, logger, submission.Options{
		Policy:          policy,
		FrontendBaseURL: conf.FrontendBaseURL,
	})
	reportSvc := report.NewService(asgSvc, subSvc, classifier, logger, conf.Classifier.Timeout)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("submission_policy").Set(string(policy))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Guard:         auth.NewGuard(conf),
			UserSvc:       usrSvc,
			AssignmentSvc: asgSvc,
			SubmissionSvc: subSvc,
			ReportSvc:     reportSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpRepositories opens the configured storage engine: postgres, or "memory" for local tryouts.
func setUpRepositories(ctx context.Context, conf *core.Config) (repositories, error) {
	if conf.Database.Engine == "memory" {
		db := inmemdb.Open()
		return repositories{
			users:       inmemdb.NewUserRepository(db),
			assignments: inmemdb.NewAssignmentRepository(db),
			submissions: inmemdb.NewSubmissionRepository(db),
			close:       func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return repositories{}, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return repositories{}, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return repositories{}, err
	}
	return repositories{
		users:       sqlxrepos.NewUserRepository(db),
		assignments: sqlxrepos.NewAssignmentRepository(db),
		submissions: sqlxrepos.NewSubmissionRepository(db),
		close:       db.Close,
	}, nil
}
