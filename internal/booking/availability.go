package booking

import (
	"time"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/catalog"
)

// Slot is one bookable (date, start time) pair for a service, with how
// many participant spots are still open.
type Slot struct {
	Date      time.Time `json:"date"`
	StartTime TimeOfDay `json:"start_time"`
	SpotsLeft int       `json:"spots_left"`
}

// SlotUsage is the booked participant total for one occupied slot, as
// aggregated by the repository.
type SlotUsage struct {
	Date         time.Time `db:"date"`
	StartTime    TimeOfDay `db:"start_time"`
	Participants int       `db:"participants"`
}

type slotKey struct {
	date  string
	start TimeOfDay
}

// EnumerateSlots lists the open slots for a service over the lookahead
// window starting today. usage holds the occupied slots only; everything
// else in the window is fully free. A slot appears iff at least one spot
// is open.
func EnumerateSlots(svc catalog.Service, usage []SlotUsage, now time.Time, days int) []Slot {
	booked := make(map[slotKey]int, len(usage))
	for _, u := range usage {
		booked[slotKey{u.Date.Format("2006-01-02"), u.StartTime}] = u.Participants
	}

	today := DateOf(now)
	slots := make([]Slot, 0, days*(ClosingHour-OpeningHour))

	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i)
		dateStr := date.Format("2006-01-02")

		for hour := OpeningHour; hour < ClosingHour; hour++ {
			start := NewTimeOfDay(hour, 0)
			spotsLeft := svc.MaxParticipants - booked[slotKey{dateStr, start}]
			if spotsLeft > 0 {
				slots = append(slots, Slot{Date: date, StartTime: start, SpotsLeft: spotsLeft})
			}
		}
	}

	return slots
}

// AvailableTimesForDate lists open start times for a service on one day.
// Past dates yield nothing.
func AvailableTimesForDate(svc catalog.Service, usage []SlotUsage, date time.Time, now time.Time) []Slot {
	if DateOf(date).Before(DateOf(now)) {
		return []Slot{}
	}

	booked := make(map[TimeOfDay]int, len(usage))
	for _, u := range usage {
		booked[u.StartTime] = u.Participants
	}

	slots := make([]Slot, 0, ClosingHour-OpeningHour)
	for hour := OpeningHour; hour < ClosingHour; hour++ {
		start := NewTimeOfDay(hour, 0)
		spotsLeft := svc.MaxParticipants - booked[start]
		if spotsLeft > 0 {
			slots = append(slots, Slot{Date: DateOf(date), StartTime: start, SpotsLeft: spotsLeft})
		}
	}

	return slots
}
