package meeting

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound = errors.New("meeting not found")
	ErrArchived = errors.New("archived meetings cannot be changed")
)

// Meeting is a scheduled session belonging to exactly one section.
type Meeting struct {
	ID            string         `json:"id"`
	SectionID     string         `json:"section_id"`
	SectionNumber int            `json:"section_number,omitempty"` // read-only; filled in from the owning section
	CourseID      string         `json:"course_id"`
	InstructorID  string         `json:"instructor_id,omitempty"`
	MeetingNumber int            `json:"meeting_number"`
	Date          civil.Date     `json:"date"`
	StartTime     core.TimeOfDay `json:"start_time"`
	EndTime       core.TimeOfDay `json:"end_time"`
	Location      string         `json:"location"`
	IsArchived    bool           `json:"is_archived"`
	CreatedAt     time.Time      `json:"created_at"` // UTC
	UpdatedAt     time.Time      `json:"updated_at"` // UTC
}

// Duration of the meeting. Meetings never run over midnight.
func (m Meeting) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// IsPast reports whether the meeting took place before `today`.
func (m Meeting) IsPast(today civil.Date) bool {
	return m.Date.Before(today)
}

// NewMeeting contains information needed to add a single Meeting by hand.
type NewMeeting struct {
	Date      *civil.Date     `json:"date" validate:"required"`
	StartTime *core.TimeOfDay `json:"start_time" validate:"required"`
	EndTime   *core.TimeOfDay `json:"end_time" validate:"required"`
	Location  string          `json:"location" validate:"omitempty,max=255"`
}

// UpdateMeeting defines what may be changed on an existing Meeting.
type UpdateMeeting struct {
	Date      *civil.Date     `json:"date"`
	StartTime *core.TimeOfDay `json:"start_time"`
	EndTime   *core.TimeOfDay `json:"end_time"`
	Location  *string         `json:"location" validate:"omitempty,max=255"`
}

// ValidateTimes checks a start/end pair: both within the day and start strictly before end.
func ValidateTimes(start, end core.TimeOfDay) error {
	var flds []core.FieldError
	if !start.IsValid() {
		flds = append(flds, core.FieldError{Field: "start_time", Error: core.ErrInvalidTimeOfDay.Error()})
	}
	if !end.IsValid() {
		flds = append(flds, core.FieldError{Field: "end_time", Error: core.ErrInvalidTimeOfDay.Error()})
	}
	if len(flds) == 0 && start >= end {
		flds = append(flds, core.FieldError{Field: "end_time", Error: "end time must be after start time"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// QueryFilter narrows meeting lookups; empty fields are ignored.
type QueryFilter struct {
	SectionID        string
	ExcludeSectionID string
	CourseID         string
	InstructorID     string
	Location         string
	// Pool matches meetings sharing PoolInstructorID OR PoolLocation, whichever are set.
	PoolInstructorID string
	PoolLocation     string
	DateFrom         civil.Date
	DateTo           civil.Date
	IsArchived       *bool
}

// PersistenceError wraps a failed write of confirmed meetings; its message is meant to reach the user as is.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "saving meetings: " + e.Err.Error()
}

// Unwrap exposes the underlying error to the std errors package only: errors.Cause stops here.
func (e *PersistenceError) Unwrap() error { return e.Err }
