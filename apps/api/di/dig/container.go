package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/lead"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/schedule"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
	appfs "github.com/trezcool/academia/fs"
	calendarsvc "github.com/trezcool/academia/services/calendar"
	emailsvc "github.com/trezcool/academia/services/email"
	jobsvc "github.com/trezcool/academia/services/jobs"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage is every repository of the configured driver, along with its transactor.
type Storage struct {
	dig.Out

	DB       *sqlx.DB // nil with the memory driver
	Tx       core.Transactor
	Users    user.Repository
	Courses  course.Repository
	Sections section.Repository
	Meetings meeting.Repository
	Leads    lead.Repository
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.Driver == core.DriverMemory {
		db := inmemdb.Open()
		return Storage{
			Tx:       db,
			Users:    inmemdb.NewUserRepository(db),
			Courses:  inmemdb.NewCourseRepository(db),
			Sections: inmemdb.NewSectionRepository(db),
			Meetings: inmemdb.NewMeetingRepository(db),
			Leads:    inmemdb.NewLeadRepository(db),
		}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{
		DB:       db,
		Tx:       database.NewTransactor(db),
		Users:    sqlxrepos.NewUserRepository(db),
		Courses:  sqlxrepos.NewCourseRepository(db),
		Sections: sqlxrepos.NewSectionRepository(db),
		Meetings: sqlxrepos.NewMeetingRepository(db),
		Leads:    sqlxrepos.NewLeadRepository(db),
	}
}

func newEmailTemplates(conf *core.Config, logger core.Logger) *core.EmailTemplates {
	tmpls, err := core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	return tmpls
}

func newEmailService(conf *core.Config, tmpls *core.EmailTemplates, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, tmpls, logger)
	}
	return emailsvc.NewSendgridService(conf, tmpls, logger)
}

func newScheduleService(
	conf *core.Config,
	meetings meeting.Repository,
	sections section.ServiceInterface,
	courses course.ServiceInterface,
	users user.ServiceInterface,
	mailSvc core.EmailService,
	tx core.Transactor,
	validate *validator.Validate,
	logger core.Logger,
) (*schedule.Service, error) {
	svc, err := schedule.NewService(conf, meetings, sections, courses, users, mailSvc, tx, validate, logger)
	return svc, errors.Wrap(err, "configuring scheduling")
}

func newCalendarExporter(conf *core.Config) *calendarsvc.Exporter {
	return calendarsvc.NewExporter(conf.AppName, conf.Schedule.Location())
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(validator.New))
	must(c.Provide(newEmailTemplates))
	must(c.Provide(newEmailService))
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(course.NewService, dig.As(new(course.ServiceInterface))))
	must(c.Provide(section.NewService, dig.As(new(section.ServiceInterface))))
	must(c.Provide(lead.NewService, dig.As(new(lead.ServiceInterface))))
	must(c.Provide(newScheduleService, dig.As(new(schedule.ServiceInterface), new(jobsvc.MeetingArchiver))))
	must(c.Provide(newCalendarExporter))
	must(c.Provide(jobsvc.NewScheduler))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
