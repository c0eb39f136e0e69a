// Package calendarsvc exports section meetings as iCalendar feeds.
package calendarsvc

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/meeting"
	"github.com/trezcool/academia/core/section"
)

const ContentType = "text/calendar; charset=utf-8"

type Exporter struct {
	appName string
	loc     *time.Location
}

// NewExporter returns an exporter interpreting meeting wall-clock times in loc.
func NewExporter(appName string, loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{appName: appName, loc: loc}
}

// Filename is the suggested download name of a section's calendar.
func Filename(crs course.Course, sec section.Section) string {
	code := strings.ToLower(strings.Join(strings.Fields(crs.Code), "-"))
	return fmt.Sprintf("%s-section-%d.ics", code, sec.SectionNumber)
}

// Export renders one VEVENT per meeting, keyed by the meeting ID.
func (e *Exporter) Export(crs course.Course, sec section.Section, meetings []meeting.Meeting) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//" + e.appName + "//Schedule//EN")
	cal.SetXWRCalName(fmt.Sprintf("%s %s - section %d", crs.Code, crs.Name, sec.SectionNumber))
	cal.SetXWRTimezone(e.loc.String())

	for _, mtg := range meetings {
		ev := cal.AddEvent(mtg.ID)
		ev.SetCreatedTime(mtg.CreatedAt)
		ev.SetDtStampTime(mtg.UpdatedAt)
		ev.SetModifiedAt(mtg.UpdatedAt)
		ev.SetStartAt(e.instant(mtg, mtg.StartTime.Hour(), mtg.StartTime.Minute()))
		ev.SetEndAt(e.instant(mtg, mtg.EndTime.Hour(), mtg.EndTime.Minute()))
		ev.SetSummary(fmt.Sprintf("%s #%d - %s", crs.Code, mtg.MeetingNumber, crs.Name))
		if mtg.Location != "" {
			ev.SetLocation(mtg.Location)
		}
		ev.SetDescription(fmt.Sprintf("Section %d, meeting %d", sec.SectionNumber, mtg.MeetingNumber))
	}
	return []byte(cal.Serialize())
}

func (e *Exporter) instant(mtg meeting.Meeting, hour, minute int) time.Time {
	return time.Date(mtg.Date.Year, mtg.Date.Month, mtg.Date.Day, hour, minute, 0, 0, e.loc)
}
