package persistence

import "context"

// UserRepository exposes CRUD operations for directory users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// FloorMapRepository exposes CRUD operations for floor maps.
//
// DeleteFloorMap removes the map together with every resource placed on it
// and every booking referencing those resources.
type FloorMapRepository interface {
	CreateFloorMap(ctx context.Context, floorMap FloorMap) error
	UpdateFloorMap(ctx context.Context, floorMap FloorMap) error
	GetFloorMap(ctx context.Context, id string) (FloorMap, error)
	ListFloorMaps(ctx context.Context) ([]FloorMap, error)
	DeleteFloorMap(ctx context.Context, id string) error
}

// ResourceRepository exposes CRUD operations for desks and meeting rooms.
//
// DeleteResource cascades to the bookings referencing the resource so the
// engine is never queried with a dangling reference.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context, mapID string) ([]Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

// BookingFilter narrows booking queries. Zero-valued fields are ignored.
type BookingFilter struct {
	ResourceID string
	UserID     string
	Date       string
}

// BookingRepository stores booking records.
//
// ListBookings with a Date filter matches the exact date only; recurrence
// expansion belongs to the availability engine, so callers that need the
// effective-date view query by resource and filter in memory.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	// DeleteBookingsBefore removes non-recurring bookings dated strictly
	// before dateKey and reports how many were removed. Recurring bookings
	// stay: they keep blocking future weekdays regardless of age.
	DeleteBookingsBefore(ctx context.Context, dateKey string) (int, error)
}
