package schedule

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
)

const DefaultMaxScanDays = 365

var (
	DefaultWorkdayStart = core.NewTimeOfDay(8, 0)
	DefaultWorkdayEnd   = core.NewTimeOfDay(20, 0)
)

// Generator lays out meetings on consecutive permitted days.
type Generator struct {
	// MaxScanDays bounds the number of calendar days inspected before giving up.
	MaxScanDays  int
	WorkdayStart core.TimeOfDay
	WorkdayEnd   core.TimeOfDay
}

func DefaultGenerator() Generator {
	return Generator{
		MaxScanDays:  DefaultMaxScanDays,
		WorkdayStart: DefaultWorkdayStart,
		WorkdayEnd:   DefaultWorkdayEnd,
	}
}

// NewGenerator reads the generator settings from the config, using defaults for empty values.
func NewGenerator(conf core.ScheduleConfig) (Generator, error) {
	gen := DefaultGenerator()
	if conf.MaxScanDays > 0 {
		gen.MaxScanDays = conf.MaxScanDays
	}
	if conf.WorkdayStart != "" {
		tod, err := core.ParseTimeOfDay(conf.WorkdayStart)
		if err != nil {
			return gen, errors.Wrap(err, "parsing schedule.workdayStart")
		}
		gen.WorkdayStart = tod
	}
	if conf.WorkdayEnd != "" {
		tod, err := core.ParseTimeOfDay(conf.WorkdayEnd)
		if err != nil {
			return gen, errors.Wrap(err, "parsing schedule.workdayEnd")
		}
		gen.WorkdayEnd = tod
	}
	if gen.WorkdayStart >= gen.WorkdayEnd {
		return gen, errors.New("schedule workday must start before it ends")
	}
	return gen, nil
}

// Batch is the outcome of a successful generation. Nothing in it is persisted yet.
type Batch struct {
	HoursPerMeeting int               `json:"hours_per_meeting"`
	Meetings        []meeting.Meeting `json:"meetings"`
}

func (g Generator) fitsWorkday(start, end core.TimeOfDay) bool {
	return start < end && start >= g.WorkdayStart && end <= g.WorkdayEnd && end.IsValid()
}

// Generate walks the calendar from req.StartDate and emits a meeting on every permitted day
// until req.TotalMeetings are placed. The first conflict with `events` (or with a meeting
// generated earlier in the same run) aborts the whole batch with a *ConflictError; running
// out of scan days returns ErrInfeasible. It does not read or write any state besides its arguments.
func (g Generator) Generate(req Request, events []CalendarInterval) (Batch, error) {
	if err := req.validateFields(); err != nil {
		return Batch{}, err
	}

	hours := req.HoursPerMeeting()
	startTime := req.StartTime
	endTime := startTime.Add(time.Duration(hours) * time.Hour)
	fits := g.fitsWorkday(startTime, endTime)
	allowed := req.weekdaySet()

	nextNumber := req.NextMeetingNumber
	if nextNumber < 1 {
		nextNumber = 1
	}

	universe := make([]CalendarInterval, len(events), len(events)+req.TotalMeetings)
	copy(universe, events)

	batch := Batch{HoursPerMeeting: hours, Meetings: make([]meeting.Meeting, 0, req.TotalMeetings)}
	date := req.StartDate
	for scanned := 0; len(batch.Meetings) < req.TotalMeetings; scanned++ {
		if scanned > g.MaxScanDays {
			return Batch{}, ErrInfeasible
		}

		if fits && allowed[Weekday(date)] {
			cand := Candidate{Date: date, StartTime: startTime, EndTime: endTime}
			if hit, found := FindConflict(cand, universe); found {
				return Batch{}, &ConflictError{Candidate: cand, Conflict: hit}
			}

			mtg := meeting.Meeting{
				SectionID:     req.SectionID,
				CourseID:      req.CourseID,
				InstructorID:  req.InstructorID,
				MeetingNumber: nextNumber + len(batch.Meetings),
				Date:          date,
				StartTime:     startTime,
				EndTime:       endTime,
				Location:      req.Location,
			}
			batch.Meetings = append(batch.Meetings, mtg)
			universe = append(universe, Project(mtg, true))
		}

		date = date.AddDays(1)
	}
	return batch, nil
}
