package booking

import "time"

// Business hours: bookable slots run from 14:00 to 24:00, i.e. the one-hour
// slots starting at hours 14 through 23. Calendar days are interpreted in
// UTC system-wide.
const (
	OpenHour  = 14
	CloseHour = 23
)

// DayStart normalizes a date to its UTC midnight.
func DayStart(day time.Time) time.Time {
	y, m, d := day.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OccupiedHours projects the given bookings onto the fixed one-hour business
// slots of the day and returns the occupied hour-of-day values, ascending and
// duplicate-free. Bookings are expected to be those intersecting the day
// window [dayStart, dayStart+24h); a booking spanning midnight still marks
// every slot it touches. Free slots are simply absent from the result.
func OccupiedHours(day time.Time, bookings []*Booking) []int {
	dayStart := DayStart(day)

	occupied := make([]int, 0, CloseHour-OpenHour+1)
	for h := OpenHour; h <= CloseHour; h++ {
		slot := Interval{
			Start: dayStart.Add(time.Duration(h) * time.Hour),
			End:   dayStart.Add(time.Duration(h+1) * time.Hour),
		}
		for _, b := range bookings {
			if Overlaps(slot, b.Interval()) {
				occupied = append(occupied, h)
				break
			}
		}
	}
	return occupied
}
