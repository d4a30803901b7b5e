package persistence

import "time"

// ResourceType distinguishes the two bookable resource variants.
type ResourceType string

const (
	// ResourceTypeDesk is a whole-day-exclusive resource.
	ResourceTypeDesk ResourceType = "desk"
	// ResourceTypeMeetingRoom is a resource booked per time slot.
	ResourceTypeMeetingRoom ResourceType = "meeting_room"
)

// ResourceStatus is the administrative availability override of a resource.
type ResourceStatus string

const (
	// ResourceStatusAvailable marks a resource as bookable.
	ResourceStatusAvailable ResourceStatus = "available"
	// ResourceStatusMaintenance makes a resource unbookable regardless of
	// its booking state.
	ResourceStatusMaintenance ResourceStatus = "maintenance"
)

// User represents an employee directory record.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FloorMap represents a floor plan owning a set of resources.
type FloorMap struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resource represents a desk or meeting room placed on a floor map.
type Resource struct {
	ID        string
	MapID     string
	Name      string
	Type      ResourceType
	Status    ResourceStatus
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimeSlot is a half-open [Start, End) interval within a single day, both
// bounds zero-padded 24-hour "HH:MM" strings.
type TimeSlot struct {
	Start string
	End   string
}

// Booking represents a stored reservation of a resource.
//
// Slot is present exactly when the booked resource is a meeting room, and
// RecurringDays is populated only for recurring desk bookings; the
// application layer rejects every other combination before insert.
type Booking struct {
	ID            string
	ResourceID    string
	UserID        string
	Date          string
	Recurring     bool
	RecurringDays []string
	Slot          *TimeSlot
	CreatedAt     time.Time
}
