package schedule

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/meeting"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tod(s string) core.TimeOfDay {
	return core.MustParseTimeOfDay(s)
}

func newMeeting(id, sectionID string, sectionNumber, number int, day, start, end string) meeting.Meeting {
	return meeting.Meeting{
		ID:            id,
		SectionID:     sectionID,
		SectionNumber: sectionNumber,
		MeetingNumber: number,
		Date:          date(day),
		StartTime:     tod(start),
		EndTime:       tod(end),
	}
}

// sundaysAndTuesdays: Sundays and Tuesdays from Sunday 2024-06-02, 2 meetings of a 4 hours course.
func sundaysAndTuesdays() Request {
	return Request{
		SectionID:         "section-1",
		CourseID:          "course-1",
		Weekdays:          []time.Weekday{time.Sunday, time.Tuesday},
		StartDate:         date("2024-06-02"),
		StartTime:         tod("09:00"),
		TotalMeetings:     2,
		CourseHours:       4,
		NextMeetingNumber: 1,
	}
}
