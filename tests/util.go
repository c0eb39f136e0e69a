// Package testutil builds in-memory applications and fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/lead"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/schedule"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
	appfs "github.com/trezcool/academia/fs"
	emailsvc "github.com/trezcool/academia/services/email"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
)

type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func NewConfig() *core.Config {
	return &core.Config{
		AppName:          "Academia",
		Env:              "TEST",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@academia.test",
		Database:         core.DatabaseConfig{Driver: core.DriverMemory},
		Schedule:         core.ScheduleConfig{Timezone: "UTC"},
	}
}

// NewValidator returns a validator with every custom tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	lead.InitValidators(validate, translator)
	return validate, translator
}

// Env is a whole application running on the in-memory database.
type Env struct {
	Conf       *core.Config
	DB         *inmemdb.DB
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       *emailsvc.ServiceMock

	Meetings meeting.Repository

	UserSvc     *user.Service
	CourseSvc   *course.Service
	SectionSvc  *section.Service
	LeadSvc     *lead.Service
	ScheduleSvc *schedule.Service
}

func NewEnv(t *testing.T, conf ...*core.Config) *Env {
	t.Helper()

	cfg := NewConfig()
	if len(conf) > 0 {
		cfg = conf[0]
	}
	tmpls, err := core.ParseEmailTemplates(appfs.Templates, appfs.EmailTemplatesDir, cfg)
	if err != nil {
		t.Fatalf("ParseEmailTemplates() failed: %v", err)
	}

	db := inmemdb.Open()
	validate, translator := NewValidator()
	meetings := inmemdb.NewMeetingRepository(db)
	mail := emailsvc.NewServiceMock(cfg, tmpls, NopLogger{})

	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	crsSvc := course.NewService(inmemdb.NewCourseRepository(db))
	secSvc := section.NewService(inmemdb.NewSectionRepository(db), meetings, crsSvc, usrSvc, validate, db)
	leadSvc := lead.NewService(inmemdb.NewLeadRepository(db), crsSvc, validate)
	schedSvc, err := schedule.NewService(cfg, meetings, secSvc, crsSvc, usrSvc, mail, db, validate, NopLogger{})
	if err != nil {
		t.Fatalf("schedule.NewService() failed: %v", err)
	}

	return &Env{
		Conf:        cfg,
		DB:          db,
		Validate:    validate,
		Translator:  translator,
		Mail:        mail,
		Meetings:    meetings,
		UserSvc:     usrSvc,
		CourseSvc:   crsSvc,
		SectionSvc:  secSvc,
		LeadSvc:     leadSvc,
		ScheduleSvc: schedSvc,
	}
}

func CreateUser(t *testing.T, svc user.ServiceInterface, name, uname string, roles ...string) user.User {
	t.Helper()
	if roles == nil {
		roles = []string{}
	}
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:     name,
		Username: uname,
		Email:    uname + "@academia.test",
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateInstructor(t *testing.T, svc user.ServiceInterface, name, uname string) user.User {
	t.Helper()
	return CreateUser(t, svc, name, uname, user.RoleInstructor)
}

func CreateCourse(t *testing.T, svc course.ServiceInterface, code, name string, totalHours int) course.Course {
	t.Helper()
	crs, err := svc.Create(context.Background(), course.NewCourse{Code: code, Name: name, TotalHours: totalHours})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateSection(
	t *testing.T,
	svc section.ServiceInterface,
	courseID, instructorID string,
	start civil.Date,
	location string,
) section.Section {
	t.Helper()
	sec, err := svc.Create(context.Background(), section.NewSection{
		CourseID:     courseID,
		InstructorID: instructorID,
		StartDate:    &start,
		Location:     location,
		Capacity:     20,
	})
	if err != nil {
		t.Fatalf("CreateSection() failed: %v", err)
	}
	return sec
}

// CreateMeetings stores meetings as they are, bypassing every scheduling rule.
func CreateMeetings(t *testing.T, repo meeting.Repository, meetings ...meeting.Meeting) []meeting.Meeting {
	t.Helper()
	saved, err := repo.CreateMeetings(context.Background(), meetings)
	if err != nil {
		t.Fatalf("CreateMeetings() failed: %v", err)
	}
	return saved
}

// SectionMeeting is a meeting of sec, carrying the section's instructor and location.
func SectionMeeting(sec section.Section, number int, date civil.Date, start, end string) meeting.Meeting {
	return meeting.Meeting{
		SectionID:     sec.ID,
		SectionNumber: sec.SectionNumber,
		CourseID:      sec.CourseID,
		InstructorID:  sec.InstructorID,
		MeetingNumber: number,
		Date:          date,
		StartTime:     MustTime(start),
		EndTime:       MustTime(end),
		Location:      sec.Location,
	}
}

func MustDate(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func MustTime(s string) core.TimeOfDay {
	return core.MustParseTimeOfDay(s)
}
