package schedule

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
)

// Candidate is a proposed meeting slot.
type Candidate struct {
	Date      civil.Date     `json:"date"`
	StartTime core.TimeOfDay `json:"start_time"`
	EndTime   core.TimeOfDay `json:"end_time"`
}

func (c Candidate) Interval() (start, end time.Time) {
	return Instant(c.Date, c.StartTime), Instant(c.Date, c.EndTime)
}

// FindConflict returns the first event, in slice order, that overlaps the candidate.
// Events whose ID is listed in excludeIDs are ignored; empty IDs are never excluded.
func FindConflict(c Candidate, events []CalendarInterval, excludeIDs ...string) (CalendarInterval, bool) {
	start, end := c.Interval()
	for _, ev := range events {
		if ev.Date != c.Date {
			continue
		}
		if ev.ID != "" && core.StringInSlice(ev.ID, excludeIDs) {
			continue
		}
		if ev.Overlaps(start, end) {
			return ev, true
		}
	}
	return CalendarInterval{}, false
}
