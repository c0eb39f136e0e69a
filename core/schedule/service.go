package schedule

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/section"
	"github.com/trezcool/academia/core/user"
)

var NowFunc = time.Now // mockable

const confirmedTemplate = "schedule_confirmed"

type (
	// ScheduleInput is what a user fills in to lay out meetings automatically.
	ScheduleInput struct {
		Weekdays      []int           `json:"weekdays"` // 0 = Sunday
		StartDate     *civil.Date     `json:"start_date"`
		StartTime     *core.TimeOfDay `json:"start_time"`
		TotalMeetings int             `json:"total_meetings"`
	}

	// ProposedMeeting is a previewed candidate sent back for confirmation.
	ProposedMeeting struct {
		Date      *civil.Date     `json:"date" validate:"required"`
		StartTime *core.TimeOfDay `json:"start_time" validate:"required"`
		EndTime   *core.TimeOfDay `json:"end_time" validate:"required"`
		Location  string          `json:"location" validate:"omitempty,max=255"`
	}

	ConfirmInput struct {
		Meetings []ProposedMeeting `json:"meetings" validate:"required,min=1,dive"`
	}

	ConfirmedEmailData struct {
		InstructorName string
		CourseCode     string
		CourseName     string
		SectionNumber  int
		Meetings       []meeting.Meeting
	}

	ServiceInterface interface {
		Today() civil.Date
		Plan(ctx context.Context, sectionID string, in ScheduleInput) (Batch, error)
		Confirm(ctx context.Context, sectionID string, in ConfirmInput) ([]meeting.Meeting, error)
		Calendar(ctx context.Context, sectionID string) ([]CalendarInterval, error)
		QueryMeetings(ctx context.Context, filter *meeting.QueryFilter, ordering []core.DBOrdering) ([]meeting.Meeting, error)
		GetMeeting(ctx context.Context, id string) (meeting.Meeting, error)
		AddMeeting(ctx context.Context, sectionID string, nm meeting.NewMeeting) (meeting.Meeting, error)
		UpdateMeeting(ctx context.Context, mtg meeting.Meeting, um meeting.UpdateMeeting) (meeting.Meeting, error)
		DeleteMeetings(ctx context.Context, ids ...string) (int, error)
		DeleteSectionMeetings(ctx context.Context, sectionID string) (int, error)
		ArchivePast(ctx context.Context, today civil.Date) (int, error)
	}

	// Service runs the scheduling flows of sections: automatic planning, confirmation and manual edits.
	Service struct {
		meetings meeting.Repository
		sections section.ServiceInterface
		courses  course.ServiceInterface
		users    user.ServiceInterface
		mailSvc  core.EmailService
		tx       core.Transactor
		validate *validator.Validate
		logger   core.Logger

		gen      Generator
		loc      *time.Location
		renumber meeting.Renumberer
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

var orderingFields = []string{"date", "start_time", "meeting_number", "location", "created_at"}

func NewService(
	conf *core.Config,
	meetings meeting.Repository,
	sections section.ServiceInterface,
	courses course.ServiceInterface,
	users user.ServiceInterface,
	mailSvc core.EmailService,
	tx core.Transactor,
	validate *validator.Validate,
	logger core.Logger,
) (*Service, error) {
	gen, err := NewGenerator(conf.Schedule)
	if err != nil {
		return nil, err
	}

	var renumber meeting.Renumberer = meeting.KeepNumbers{}
	if conf.Schedule.RenumberOnDelete {
		renumber = meeting.DenseRenumberer{}
	}

	return &Service{
		meetings: meetings,
		sections: sections,
		courses:  courses,
		users:    users,
		mailSvc:  mailSvc,
		tx:       tx,
		validate: validate,
		logger:   logger,
		gen:      gen,
		loc:      conf.Schedule.Location(),
		renumber: renumber,
	}, nil
}

// Today is the current date in the scheduling timezone.
func (svc *Service) Today() civil.Date {
	return civil.DateOf(NowFunc().In(svc.loc))
}

func (svc *Service) earliest(sec section.Section) civil.Date {
	today := svc.Today()
	if sec.StartDate.After(today) {
		return sec.StartDate
	}
	return today
}

func (svc *Service) loadSection(ctx context.Context, sectionID string) (section.Section, course.Course, error) {
	sec, err := svc.sections.GetByID(ctx, sectionID)
	if err != nil {
		return section.Section{}, course.Course{}, err
	}
	crs, err := svc.courses.GetByID(ctx, sec.CourseID)
	if err != nil {
		return section.Section{}, course.Course{}, errors.Wrap(err, "getting section course")
	}
	return sec, crs, nil
}

// snapshot fetches the section's own meetings and those of the sections it shares resources with:
// same instructor or same location, where location is the room the candidate meetings will use.
// With neither, the candidates are checked against the whole center.
func (svc *Service) snapshot(ctx context.Context, sec section.Section, location string, from civil.Date, exec ...core.DBExecutor) ([]CalendarInterval, error) {
	owned, err := svc.meetings.QueryMeetings(ctx, &meeting.QueryFilter{SectionID: sec.ID, DateFrom: from}, nil, exec...)
	if err != nil {
		return nil, errors.Wrap(err, "querying section meetings")
	}

	poolFilter := &meeting.QueryFilter{
		ExcludeSectionID: sec.ID,
		PoolInstructorID: sec.InstructorID,
		PoolLocation:     location,
		DateFrom:         from,
	}
	foreign, err := svc.meetings.QueryMeetings(ctx, poolFilter, nil, exec...)
	if err != nil {
		return nil, errors.Wrap(err, "querying shared meetings")
	}
	return BuildEvents(owned, foreign), nil
}

func (svc *Service) nextMeetingNumber(ctx context.Context, sectionID string, exec ...core.DBExecutor) (int, error) {
	last, err := svc.meetings.MaxMeetingNumber(ctx, sectionID, exec...)
	if err != nil {
		return 0, errors.Wrap(err, "getting last meeting number")
	}
	return last + 1, nil
}

func (svc *Service) buildRequest(sec section.Section, crs course.Course, in ScheduleInput) Request {
	req := Request{
		SectionID:     sec.ID,
		CourseID:      crs.ID,
		InstructorID:  sec.InstructorID,
		Location:      sec.Location,
		Weekdays:      make([]time.Weekday, 0, len(in.Weekdays)),
		StartTime:     -1, // missing
		TotalMeetings: in.TotalMeetings,
		CourseHours:   crs.TotalHours,
	}
	for _, day := range in.Weekdays {
		req.Weekdays = append(req.Weekdays, time.Weekday(day))
	}
	if in.StartDate != nil {
		req.StartDate = *in.StartDate
	}
	if in.StartTime != nil {
		req.StartTime = *in.StartTime
	}
	return req
}

// Plan generates candidate meetings for a section without saving them.
func (svc *Service) Plan(ctx context.Context, sectionID string, in ScheduleInput) (Batch, error) {
	sec, crs, err := svc.loadSection(ctx, sectionID)
	if err != nil {
		return Batch{}, err
	}

	req := svc.buildRequest(sec, crs, in)
	if err = req.Validate(svc.Today(), sec.StartDate); err != nil {
		return Batch{}, err
	}
	if req.NextMeetingNumber, err = svc.nextMeetingNumber(ctx, sec.ID); err != nil {
		return Batch{}, err
	}

	events, err := svc.snapshot(ctx, sec, sec.Location, req.StartDate)
	if err != nil {
		return Batch{}, err
	}
	return svc.gen.Generate(req, events)
}

// Confirm saves previewed meetings, all or none. They are checked again against the current
// meetings first, since those may have changed since the preview. Like generated meetings,
// they must fit the workday.
func (svc *Service) Confirm(ctx context.Context, sectionID string, in ConfirmInput) ([]meeting.Meeting, error) {
	if err := svc.validate.Struct(in); err != nil {
		return nil, err
	}
	sec, crs, err := svc.loadSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	earliest := svc.earliest(sec)
	proposed := make([]ProposedMeeting, len(in.Meetings))
	copy(proposed, in.Meetings)
	for _, p := range proposed {
		if err = meeting.ValidateTimes(*p.StartTime, *p.EndTime); err != nil {
			return nil, err
		}
		if !svc.gen.fitsWorkday(*p.StartTime, *p.EndTime) {
			return nil, core.NewFieldError("meetings", fmt.Sprintf(
				"meetings must take place between %s and %s", svc.gen.WorkdayStart, svc.gen.WorkdayEnd))
		}
		if p.Date.Before(earliest) {
			return nil, &DateTooEarlyError{Earliest: earliest}
		}
	}
	sort.SliceStable(proposed, func(i, j int) bool {
		if *proposed[i].Date != *proposed[j].Date {
			return proposed[i].Date.Before(*proposed[j].Date)
		}
		return *proposed[i].StartTime < *proposed[j].StartTime
	})

	var created []meeting.Meeting
	err = svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		next, err := svc.nextMeetingNumber(ctx, sec.ID, exec)
		if err != nil {
			return err
		}

		// one snapshot per room, each followed by the meetings accepted so far
		pools := make(map[string][]CalendarInterval)
		var accepted []CalendarInterval
		eventsIn := func(location string) ([]CalendarInterval, error) {
			key := strings.ToLower(location)
			if events, ok := pools[key]; ok {
				return events, nil
			}
			events, err := svc.snapshot(ctx, sec, location, earliest, exec)
			if err != nil {
				return nil, err
			}
			pools[key] = append(events, accepted...)
			return pools[key], nil
		}

		now := NowFunc().UTC()
		batch := make([]meeting.Meeting, 0, len(proposed))
		for i, p := range proposed {
			location := sec.Location
			if loc := core.CleanString(p.Location); loc != "" {
				location = loc
			}
			events, err := eventsIn(location)
			if err != nil {
				return err
			}
			cand := Candidate{Date: *p.Date, StartTime: *p.StartTime, EndTime: *p.EndTime}
			if hit, found := FindConflict(cand, events); found {
				return &ConflictError{Candidate: cand, Conflict: hit}
			}

			mtg := meeting.Meeting{
				SectionID:     sec.ID,
				SectionNumber: sec.SectionNumber,
				CourseID:      crs.ID,
				InstructorID:  sec.InstructorID,
				MeetingNumber: next + i,
				Date:          cand.Date,
				StartTime:     cand.StartTime,
				EndTime:       cand.EndTime,
				Location:      location,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			batch = append(batch, mtg)

			iv := Project(mtg, true)
			accepted = append(accepted, iv)
			for key := range pools {
				pools[key] = append(pools[key], iv)
			}
		}

		if created, err = svc.meetings.CreateMeetings(ctx, batch, exec); err != nil {
			return &meeting.PersistenceError{Err: err}
		}
		return nil
	})
	if err != nil {
		switch errors.Cause(err).(type) {
		case *ConflictError, *meeting.PersistenceError:
			return nil, err
		default:
			return nil, &meeting.PersistenceError{Err: err}
		}
	}

	svc.notifyInstructor(ctx, sec, crs, created)
	return created, nil
}

func (svc *Service) notifyInstructor(ctx context.Context, sec section.Section, crs course.Course, meetings []meeting.Meeting) {
	if sec.InstructorID == "" || len(meetings) == 0 || svc.mailSvc == nil {
		return
	}
	instructor, err := svc.users.GetByID(ctx, sec.InstructorID)
	if err != nil {
		svc.logger.Error("getting instructor to notify", errors.Wrap(err, sec.InstructorID))
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: instructor.Name, Address: instructor.Email}},
		Subject:      fmt.Sprintf("New meetings for %s, section %d", crs.Name, sec.SectionNumber),
		TemplateName: confirmedTemplate,
		TemplateData: ConfirmedEmailData{
			InstructorName: instructor.Name,
			CourseCode:     crs.Code,
			CourseName:     crs.Name,
			SectionNumber:  sec.SectionNumber,
			Meetings:       meetings,
		},
	})
}

// Calendar returns the section's meetings along with those it shares resources with, for display.
func (svc *Service) Calendar(ctx context.Context, sectionID string) ([]CalendarInterval, error) {
	sec, err := svc.sections.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	return svc.snapshot(ctx, sec, sec.Location, civil.Date{})
}

func (svc *Service) QueryMeetings(ctx context.Context, filter *meeting.QueryFilter, ordering []core.DBOrdering) ([]meeting.Meeting, error) {
	return svc.meetings.QueryMeetings(ctx, filter, core.FilterOrderings(ordering, orderingFields...))
}

func (svc *Service) GetMeeting(ctx context.Context, id string) (meeting.Meeting, error) {
	return svc.meetings.GetMeeting(ctx, id)
}

// AddMeeting schedules a single meeting by hand. It gets the next meeting number of the section.
func (svc *Service) AddMeeting(ctx context.Context, sectionID string, nm meeting.NewMeeting) (meeting.Meeting, error) {
	if err := svc.validate.Struct(nm); err != nil {
		return meeting.Meeting{}, err
	}
	if err := meeting.ValidateTimes(*nm.StartTime, *nm.EndTime); err != nil {
		return meeting.Meeting{}, err
	}
	sec, crs, err := svc.loadSection(ctx, sectionID)
	if err != nil {
		return meeting.Meeting{}, err
	}
	if earliest := svc.earliest(sec); nm.Date.Before(earliest) {
		return meeting.Meeting{}, &DateTooEarlyError{Earliest: earliest}
	}

	now := NowFunc().UTC()
	mtg := meeting.Meeting{
		SectionID:     sec.ID,
		SectionNumber: sec.SectionNumber,
		CourseID:      crs.ID,
		InstructorID:  sec.InstructorID,
		Date:          *nm.Date,
		StartTime:     *nm.StartTime,
		EndTime:       *nm.EndTime,
		Location:      sec.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if loc := core.CleanString(nm.Location); loc != "" {
		mtg.Location = loc
	}

	err = svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		events, err := svc.snapshot(ctx, sec, mtg.Location, mtg.Date, exec)
		if err != nil {
			return err
		}
		cand := Candidate{Date: mtg.Date, StartTime: mtg.StartTime, EndTime: mtg.EndTime}
		if hit, found := FindConflict(cand, events); found {
			return &ConflictError{Candidate: cand, Conflict: hit}
		}

		if mtg.MeetingNumber, err = svc.nextMeetingNumber(ctx, sec.ID, exec); err != nil {
			return err
		}
		created, err := svc.meetings.CreateMeetings(ctx, []meeting.Meeting{mtg}, exec)
		if err != nil {
			return errors.Wrap(err, "creating meeting")
		}
		mtg = created[0]
		return nil
	})
	if err != nil {
		return meeting.Meeting{}, err
	}
	return mtg, nil
}

// UpdateMeeting moves or relocates a meeting; both are checked for conflicts in the room it ends up in.
// The meeting never conflicts with itself.
func (svc *Service) UpdateMeeting(ctx context.Context, mtg meeting.Meeting, um meeting.UpdateMeeting) (meeting.Meeting, error) {
	if mtg.IsArchived {
		return meeting.Meeting{}, meeting.ErrArchived
	}
	if err := svc.validate.Struct(um); err != nil {
		return meeting.Meeting{}, err
	}

	moved := false
	if um.Date != nil && *um.Date != mtg.Date {
		mtg.Date, moved = *um.Date, true
	}
	if um.StartTime != nil && *um.StartTime != mtg.StartTime {
		mtg.StartTime, moved = *um.StartTime, true
	}
	if um.EndTime != nil && *um.EndTime != mtg.EndTime {
		mtg.EndTime, moved = *um.EndTime, true
	}
	if um.Location != nil {
		location := core.CleanString(*um.Location)
		if !strings.EqualFold(location, mtg.Location) {
			moved = true
		}
		mtg.Location = location
	}
	if err := meeting.ValidateTimes(mtg.StartTime, mtg.EndTime); err != nil {
		return meeting.Meeting{}, err
	}
	mtg.UpdatedAt = NowFunc().UTC()

	if !moved {
		return svc.meetings.UpdateMeeting(ctx, mtg)
	}

	sec, err := svc.sections.GetByID(ctx, mtg.SectionID)
	if err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "getting meeting section")
	}
	if um.Date != nil {
		if earliest := svc.earliest(sec); mtg.Date.Before(earliest) {
			return meeting.Meeting{}, &DateTooEarlyError{Earliest: earliest}
		}
	}

	err = svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		events, err := svc.snapshot(ctx, sec, mtg.Location, mtg.Date, exec)
		if err != nil {
			return err
		}
		cand := Candidate{Date: mtg.Date, StartTime: mtg.StartTime, EndTime: mtg.EndTime}
		if hit, found := FindConflict(cand, events, mtg.ID); found {
			return &ConflictError{Candidate: cand, Conflict: hit}
		}
		mtg, err = svc.meetings.UpdateMeeting(ctx, mtg, exec)
		return errors.Wrap(err, "updating meeting")
	})
	if err != nil {
		return meeting.Meeting{}, err
	}
	return mtg, nil
}

// DeleteMeetings removes meetings by id, then lets the configured Renumberer fix the numbering
// of the sections they belonged to.
func (svc *Service) DeleteMeetings(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int
	err := svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		sectionIDs := make(map[string]struct{})
		for _, id := range ids {
			mtg, err := svc.meetings.GetMeeting(ctx, id, exec)
			if err != nil {
				if errors.Cause(err) == meeting.ErrNotFound {
					continue
				}
				return errors.Wrap(err, "getting meeting")
			}
			sectionIDs[mtg.SectionID] = struct{}{}
		}

		var err error
		if deleted, err = svc.meetings.DeleteMeetingsByID(ctx, ids, exec); err != nil {
			return errors.Wrap(err, "deleting meetings")
		}
		for sectionID := range sectionIDs {
			if err = svc.renumberSection(ctx, sectionID, exec); err != nil {
				return err
			}
		}
		return nil
	})
	return deleted, err
}

func (svc *Service) renumberSection(ctx context.Context, sectionID string, exec core.DBExecutor) error {
	remaining, err := svc.meetings.QueryMeetings(ctx, &meeting.QueryFilter{SectionID: sectionID}, nil, exec)
	if err != nil {
		return errors.Wrap(err, "querying remaining meetings")
	}
	for _, mtg := range svc.renumber.Renumber(remaining) {
		if _, err = svc.meetings.UpdateMeeting(ctx, mtg, exec); err != nil {
			return errors.Wrap(err, "renumbering meeting")
		}
	}
	return nil
}

func (svc *Service) DeleteSectionMeetings(ctx context.Context, sectionID string) (int, error) {
	if _, err := svc.sections.GetByID(ctx, sectionID); err != nil {
		return 0, err
	}
	return svc.meetings.DeleteSectionMeetings(ctx, sectionID)
}

// ArchivePast flags every meeting dated before today as archived.
func (svc *Service) ArchivePast(ctx context.Context, today civil.Date) (int, error) {
	return svc.meetings.ArchiveMeetingsBefore(ctx, today)
}
