// Package availability implements the booking decision rules: effective-date
// matching with weekday recurrence, whole-day desk exclusivity, half-open
// meeting-room interval overlap, and display status computation.
//
// Every function is a pure read over the snapshot passed in; resolving
// resources and bookings from storage is the caller's job.
package availability

import (
	"time"

	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/timeutil"
)

// Status is the display classification of a resource at a point in time.
type Status string

const (
	// StatusAvailable indicates the resource can be booked.
	StatusAvailable Status = "available"
	// StatusBooked indicates at least one booking occupies the resource.
	StatusBooked Status = "booked"
	// StatusMaintenance indicates an administrative override; it always wins.
	StatusMaintenance Status = "maintenance"
)

// Slot is a validated half-open [Start, End) interval in minutes since
// midnight.
type Slot struct {
	Start int
	End   int
}

// ParseSlot validates a stored time slot and converts it to minutes.
func ParseSlot(slot persistence.TimeSlot) (Slot, error) {
	start, err := timeutil.ParseClock(slot.Start)
	if err != nil {
		return Slot{}, err
	}
	end, err := timeutil.ParseClock(slot.End)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints (one slot ending exactly when the other starts) do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start < other.End && s.End > other.Start
}

// OccupiesDate reports whether a booking occupies the given calendar date:
// either its stored date matches exactly, or it is recurring and the date's
// weekday is in its recurrence set.
func OccupiesDate(booking persistence.Booking, date time.Time) bool {
	if booking.Date == timeutil.DateKey(date) {
		return true
	}
	if !booking.Recurring {
		return false
	}
	weekday := timeutil.WeekdayName(date)
	for _, day := range booking.RecurringDays {
		if day == weekday {
			return true
		}
	}
	return false
}

// DeskFree reports whether a desk has no booking on the effective date.
// A desk booking occupies the entire day, so time slots are never examined.
func DeskFree(bookings []persistence.Booking, date time.Time) bool {
	for _, booking := range bookings {
		if OccupiesDate(booking, date) {
			return false
		}
	}
	return true
}

// RoomFreeAt reports whether a meeting room is free for the requested slot
// on the effective date. When the room is taken, the id of the first
// conflicting booking is returned. Stored bookings without a slot or with a
// malformed slot are skipped; they cannot define an interval to collide with.
func RoomFreeAt(bookings []persistence.Booking, date time.Time, requested Slot) (bool, string) {
	for _, booking := range bookings {
		if booking.Slot == nil || !OccupiesDate(booking, date) {
			continue
		}
		existing, err := ParseSlot(*booking.Slot)
		if err != nil {
			continue
		}
		if requested.Overlaps(existing) {
			return false, booking.ID
		}
	}
	return true, ""
}

// StatusOf computes the display status of a resource for a date.
//
// Maintenance wins unconditionally. A meeting room shows as booked when any
// booking exists for the exact date; this is informational only and
// deliberately decoupled from slot-level bookability, so a "booked" room may
// still accept non-overlapping slots. A desk shows as booked when it is not
// free for the whole effective date.
func StatusOf(resource persistence.Resource, bookings []persistence.Booking, date time.Time) Status {
	if resource.Status == persistence.ResourceStatusMaintenance {
		return StatusMaintenance
	}

	if resource.Type == persistence.ResourceTypeMeetingRoom {
		dateKey := timeutil.DateKey(date)
		for _, booking := range bookings {
			if booking.Date == dateKey {
				return StatusBooked
			}
		}
		return StatusAvailable
	}

	if DeskFree(bookings, date) {
		return StatusAvailable
	}
	return StatusBooked
}

// UserHoldsDeskOn reports whether the user already holds a desk booking on
// the exact date. Recurrence is intentionally not considered here: the
// one-desk-per-day rule matches literal dates only, while desk availability
// honours recurring weekdays. The asymmetry is part of the contract.
func UserHoldsDeskOn(bookings []persistence.Booking, resourceTypes map[string]persistence.ResourceType, userID string, date time.Time) bool {
	dateKey := timeutil.DateKey(date)
	for _, booking := range bookings {
		if booking.UserID != userID || booking.Date != dateKey {
			continue
		}
		if resourceTypes[booking.ResourceID] == persistence.ResourceTypeDesk {
			return true
		}
	}
	return false
}
