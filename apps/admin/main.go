package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/schedule"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
	appfs "github.com/trezcool/academia/fs"
	emailsvc "github.com/trezcool/academia/services/email"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	cli, closeDB := newCommandLine(conf)
	defer closeDB()

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("\nerror: "+err.Error(), err)
		}
		closeDB()
		os.Exit(1)
	}
}

func newCommandLine(conf *core.Config) (*commandLine, func()) {
	var (
		db       *sqlx.DB
		tx       core.Transactor
		users    user.Repository
		courses  course.Repository
		sections section.Repository
		meetings meeting.Repository
	)
	if conf.Database.Driver == core.DriverMemory {
		mem := inmemdb.Open()
		tx = mem
		users = inmemdb.NewUserRepository(mem)
		courses = inmemdb.NewCourseRepository(mem)
		sections = inmemdb.NewSectionRepository(mem)
		meetings = inmemdb.NewMeetingRepository(mem)
	} else {
		var err error
		db, err = database.Open(conf)
		errAndDie(err)
		tx = database.NewTransactor(db)
		users = sqlxrepos.NewUserRepository(db)
		courses = sqlxrepos.NewCourseRepository(db)
		sections = sqlxrepos.NewSectionRepository(db)
		meetings = sqlxrepos.NewMeetingRepository(db)
	}

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	tmpls, err := core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, conf)
	errAndDie(err)

	usrSvc := user.NewService(users)
	crsSvc := course.NewService(courses)
	secSvc := section.NewService(sections, meetings, crsSvc, usrSvc, validate, tx)
	schedSvc, err := schedule.NewService(
		conf, meetings, secSvc, crsSvc, usrSvc, emailsvc.NewConsoleService(conf, tmpls, logger), tx, validate, logger,
	)
	errAndDie(err)

	cli := &commandLine{
		conf:     conf,
		db:       db,
		logger:   logger,
		validate: validate,
		usrSvc:   usrSvc,
		crsSvc:   crsSvc,
		secSvc:   secSvc,
		schedSvc: schedSvc,
		in:       os.Stdin,
		out:      os.Stdout,
	}
	closeDB := func() {
		if db != nil {
			_ = db.Close()
			db = nil
		}
	}
	return cli, closeDB
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
