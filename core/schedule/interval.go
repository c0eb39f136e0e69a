package schedule

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
)

// CalendarInterval is a meeting projected onto absolute instants.
// It is derived on every request and never persisted.
type CalendarInterval struct {
	ID            string     `json:"id"`
	SectionID     string     `json:"section_id"`
	SectionNumber int        `json:"section_number"`
	MeetingNumber int        `json:"meeting_number"`
	Date          civil.Date `json:"date"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	Location      string     `json:"location,omitempty"`
	Owned         bool       `json:"owned"`
}

// StartTime and EndTime give back the wall-clock times the interval was built from.
func (iv CalendarInterval) StartTime() core.TimeOfDay {
	return core.NewTimeOfDay(iv.Start.Hour(), iv.Start.Minute())
}

func (iv CalendarInterval) EndTime() core.TimeOfDay {
	return core.NewTimeOfDay(iv.End.Hour(), iv.End.Minute())
}

// Overlaps uses half-open intervals: touching endpoints do not overlap.
func (iv CalendarInterval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && end.After(iv.Start)
}

// Instant combines a civil date and a wall-clock time. All instants share one location
// so that comparisons between them stay meaningful.
func Instant(date civil.Date, tod core.TimeOfDay) time.Time {
	return tod.On(date.Year, date.Month, date.Day, time.UTC)
}

// Project turns a single meeting into an interval.
func Project(mtg meeting.Meeting, owned bool) CalendarInterval {
	return CalendarInterval{
		ID:            mtg.ID,
		SectionID:     mtg.SectionID,
		SectionNumber: mtg.SectionNumber,
		MeetingNumber: mtg.MeetingNumber,
		Date:          mtg.Date,
		Start:         Instant(mtg.Date, mtg.StartTime),
		End:           Instant(mtg.Date, mtg.EndTime),
		Location:      mtg.Location,
		Owned:         owned,
	}
}

// BuildEvents projects the section's own meetings followed by the foreign ones, keeping input order.
func BuildEvents(owned, foreign []meeting.Meeting) []CalendarInterval {
	events := make([]CalendarInterval, 0, len(owned)+len(foreign))
	for _, mtg := range owned {
		events = append(events, Project(mtg, true))
	}
	for _, mtg := range foreign {
		events = append(events, Project(mtg, false))
	}
	return events
}
