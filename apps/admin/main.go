package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/PARTHSHARMA4010/ClarityAI/core"
	"github.com/PARTHSHARMA4010/ClarityAI/core/user"
	emailsvc "github.com/PARTHSHARMA4010/ClarityAI/services/email"
	logsvc "github.com/PARTHSHARMA4010/ClarityAI/services/logger"
	"github.com/PARTHSHARMA4010/ClarityAI/storage/database"
	sqlxrepos "github.com/PARTHSHARMA4010/ClarityAI/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	mailSvc := emailsvc.New(std, logger, conf)
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf),
		validate: validate,
	}

	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
