package booking

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Business rules for scheduling. Sessions start on the hour between 09:00
// and 19:00, may be booked up to 60 days out, and can be shown on a 30-day
// availability calendar.
const (
	OpeningHour = 9
	ClosingHour = 20 // exclusive; last bookable start is 19:00

	MaxAdvanceDays = 60
	LookaheadDays  = 30

	// Minimum notice for cancelling or rescheduling a booking.
	ModifyNotice = 24 * time.Hour
)

// TimeOfDay is a clock time without a date, stored as a Postgres TIME
// column.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid time of day %s", data)
	}
	parsed, err := ParseTimeOfDay(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Add returns the time of day the given duration later. Durations never
// cross midnight in practice: the longest service ends well before close.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	total := t.Hour*60 + t.Minute + int(d.Minutes())
	total %= 24 * 60
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Hour*60+t.Minute < other.Hour*60+other.Minute
}

// Scan implements sql.Scanner for TIME columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Hour, t.Minute = v.Hour(), v.Minute()
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute), nil
}

// DateOf truncates a timestamp to midnight in its location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Combine joins a date and a time of day into a timestamp in the date's
// location.
func Combine(date time.Time, tod TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, date.Location())
}
