package core

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const minutesPerDay = 24 * 60

var ErrInvalidTimeOfDay = errors.New(`invalid time of day, expected "HH:MM"`)

// TimeOfDay is a wall-clock time within a single day, stored as minutes since midnight.
// It (un)marshals as "HH:MM".
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", CleanString(s))
	if err != nil {
		// tolerate the "HH:MM:SS" form postgres hands back for TIME columns
		if t, err = time.Parse("15:04:05", CleanString(s)); err != nil {
			return 0, ErrInvalidTimeOfDay
		}
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// MustParseTimeOfDay is meant for constants and tests.
func MustParseTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) IsValid() bool {
	return t >= 0 && t < minutesPerDay
}

// Add returns t+d. The result may run past midnight, in which case IsValid reports false.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

// Sub returns the duration t-u.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t-u) * time.Minute
}

// On combines t with the date (y, m, d) in loc.
func (t TimeOfDay) On(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(data []byte) error {
	tod, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = tod
	return nil
}

// UnmarshalParam lets echo bind query and path params.
func (t *TimeOfDay) UnmarshalParam(param string) error {
	return t.UnmarshalText([]byte(param))
}

// Scan implements sql.Scanner for TIME columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute())
		return nil
	case []byte:
		return t.UnmarshalText(v)
	case string:
		return t.UnmarshalText([]byte(v))
	case int64:
		*t = TimeOfDay(v)
		return nil
	default:
		return errors.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}
