package schedule

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
)

var ErrInfeasible = errors.New("insufficient available days for the requested weekday/hours combination")

// ConflictError aborts a whole batch: the candidate overlaps an existing (or already generated) meeting.
type ConflictError struct {
	Candidate Candidate
	Conflict  CalendarInterval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"schedule conflict on %s: %s-%s overlaps meeting %d of section %d (%s-%s)",
		e.Candidate.Date, e.Candidate.StartTime, e.Candidate.EndTime,
		e.Conflict.MeetingNumber, e.Conflict.SectionNumber, e.Conflict.StartTime(), e.Conflict.EndTime(),
	)
}

// DateTooEarlyError is returned when the start date precedes today or the section's start date.
type DateTooEarlyError struct {
	Earliest civil.Date
}

func (e *DateTooEarlyError) Error() string {
	return fmt.Sprintf("start date must be on or after %s", e.Earliest)
}
