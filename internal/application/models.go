package application

import (
	"github.com/example/workplace-booking/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
// Resolving identity and role is the transport's concern; services only
// consume the result.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// BookingInput captures caller provided booking fields.
//
// Slot must be present for meeting rooms and absent for desks; Recurring
// and RecurringDays are accepted for desks only. When UserID is empty the
// booking is created for the principal; only administrators may book on
// behalf of someone else.
type BookingInput struct {
	ResourceID    string
	UserID        string
	Date          string
	Recurring     bool
	RecurringDays []string
	Slot          *persistence.TimeSlot
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// ListBookingsParams narrows booking listings. Zero-valued fields are
// ignored. Non-admin principals are always restricted to their own
// bookings unless they filter by a resource they can see anyway.
type ListBookingsParams struct {
	Principal  Principal
	ResourceID string
	UserID     string
	Date       string
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	MapID    string
	Name     string
	Type     persistence.ResourceType
	Status   persistence.ResourceStatus
	Capacity int
}

// CreateResourceParams wraps the data required to create a resource.
type CreateResourceParams struct {
	Principal Principal
	Input     ResourceInput
}

// UpdateResourceParams wraps the data required to update a resource.
type UpdateResourceParams struct {
	Principal  Principal
	ResourceID string
	Input      ResourceInput
}

// ResourceStatusView pairs a resource with its computed display status for
// a date, for the floor-map view.
type ResourceStatusView struct {
	Resource persistence.Resource
	Status   string
}

// FloorMapInput captures caller provided floor map fields.
type FloorMapInput struct {
	Name string
}

// CreateFloorMapParams wraps the data required to create a floor map.
type CreateFloorMapParams struct {
	Principal Principal
	Input     FloorMapInput
}

// UpdateFloorMapParams wraps the data required to update a floor map.
type UpdateFloorMapParams struct {
	Principal Principal
	MapID     string
	Input     FloorMapInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email       string
	DisplayName string
	IsAdmin     bool
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}
