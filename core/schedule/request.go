package schedule

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
)

// Request describes one automatic scheduling run for a section.
type Request struct {
	SectionID    string
	CourseID     string
	InstructorID string
	Location     string

	Weekdays      []time.Weekday // Sunday = 0
	StartDate     civil.Date
	StartTime     core.TimeOfDay
	TotalMeetings int
	CourseHours   int
	// NextMeetingNumber is the number given to the first generated meeting.
	NextMeetingNumber int
}

// MaxHoursPerMeeting caps the derived meeting length: a meeting never spans more than a day.
const MaxHoursPerMeeting = 24

// HoursPerMeeting is ceil(courseHours / totalMeetings).
func HoursPerMeeting(courseHours, totalMeetings int) int {
	if totalMeetings <= 0 {
		return 0
	}
	return (courseHours + totalMeetings - 1) / totalMeetings
}

func (r Request) HoursPerMeeting() int {
	return HoursPerMeeting(r.CourseHours, r.TotalMeetings)
}

// Validate checks the request fields, then that the start date is not before
// max(today, sectionStart).
func (r Request) Validate(today, sectionStart civil.Date) error {
	if err := r.validateFields(); err != nil {
		return err
	}
	earliest := today
	if sectionStart.IsValid() && sectionStart.After(earliest) {
		earliest = sectionStart
	}
	if r.StartDate.Before(earliest) {
		return &DateTooEarlyError{Earliest: earliest}
	}
	return nil
}

func (r Request) validateFields() error {
	var flds []core.FieldError
	addErr := func(field, msg string) {
		flds = append(flds, core.FieldError{Field: field, Error: msg})
	}

	if len(r.Weekdays) == 0 {
		addErr("weekdays", "at least one weekday is required")
	}
	for _, day := range r.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			addErr("weekdays", "weekdays must be between 0 (Sunday) and 6 (Saturday)")
			break
		}
	}
	if !r.StartDate.IsValid() {
		addErr("start_date", "this field is required")
	}
	if !r.StartTime.IsValid() {
		addErr("start_time", "this field is required")
	}
	if r.CourseHours <= 0 {
		addErr("course_hours", "course hours must be greater than 0")
	}
	switch {
	case r.TotalMeetings <= 0:
		addErr("total_meetings", "total meetings must be greater than 0")
	case r.CourseHours > 0 && r.TotalMeetings > r.CourseHours:
		addErr("total_meetings", "total meetings cannot exceed the course hours")
	case r.HoursPerMeeting() > MaxHoursPerMeeting:
		addErr("total_meetings", fmt.Sprintf("too few meetings: each would last more than %d hours", MaxHoursPerMeeting))
	}

	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (r Request) weekdaySet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, day := range r.Weekdays {
		set[day] = true
	}
	return set
}

// Weekday of a civil date.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
