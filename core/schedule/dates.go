package schedule

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// PermittedDates lists the first `count` dates on or after `from` that fall on one of `weekdays`,
// ignoring existing meetings. Handy to preview what a weekday pattern expands to.
func PermittedDates(weekdays []time.Weekday, from civil.Date, count int) ([]civil.Date, error) {
	if len(weekdays) == 0 || count <= 0 {
		return nil, nil
	}
	byDay := make([]rrule.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		if day < time.Sunday || day > time.Saturday {
			return nil, errors.Errorf("invalid weekday: %d", day)
		}
		byDay = append(byDay, rruleWeekdays[day])
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byDay,
		Dtstart:   from.In(time.UTC),
		Count:     count,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building recurrence rule")
	}

	occurrences := rule.All()
	dates := make([]civil.Date, 0, len(occurrences))
	for _, occ := range occurrences {
		dates = append(dates, civil.DateOf(occ))
	}
	return dates, nil
}
