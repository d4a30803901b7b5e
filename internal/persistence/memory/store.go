// Package memory provides an in-process implementation of every repository
// contract. It backs tests and zero-configuration runs; the SQLite
// implementation is the production store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/workplace-booking/internal/persistence"
)

// Store holds all records behind a single RWMutex. Values are cloned on the
// way in and out so callers can never alias internal state.
type Store struct {
	mu        sync.RWMutex
	users     map[string]persistence.User
	floorMaps map[string]persistence.FloorMap
	resources map[string]persistence.Resource
	bookings  map[string]persistence.Booking
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]persistence.User),
		floorMaps: make(map[string]persistence.FloorMap),
		resources: make(map[string]persistence.Resource),
		bookings:  make(map[string]persistence.Booking),
	}
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *Store) Close() error {
	return nil
}

// Migrate initialises the store. No-op for the in-memory implementation.
func (s *Store) Migrate(context.Context) error {
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new directory user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	s.users[user.ID] = user
	return nil
}

// UpdateUser updates an existing directory user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by creation time, then id.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// DeleteUser removes a user by id. Bookings held by the user are kept; the
// directory record and the booking history are owned by different admins.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ensureUniqueEmailLocked(id, email string) error {
	lower := strings.ToLower(email)
	for existingID, user := range s.users {
		if existingID == id {
			continue
		}
		if strings.ToLower(user.Email) == lower {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- FloorMapRepository implementation ---

// CreateFloorMap stores a new floor map.
func (s *Store) CreateFloorMap(ctx context.Context, floorMap persistence.FloorMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floorMaps[floorMap.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.floorMaps[floorMap.ID] = floorMap
	return nil
}

// UpdateFloorMap updates an existing floor map.
func (s *Store) UpdateFloorMap(ctx context.Context, floorMap persistence.FloorMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floorMaps[floorMap.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.floorMaps[floorMap.ID] = floorMap
	return nil
}

// GetFloorMap retrieves a floor map by id.
func (s *Store) GetFloorMap(ctx context.Context, id string) (persistence.FloorMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	floorMap, ok := s.floorMaps[id]
	if !ok {
		return persistence.FloorMap{}, persistence.ErrNotFound
	}
	return floorMap, nil
}

// ListFloorMaps returns all floor maps ordered by name, then id.
func (s *Store) ListFloorMaps(ctx context.Context) ([]persistence.FloorMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	floorMaps := make([]persistence.FloorMap, 0, len(s.floorMaps))
	for _, floorMap := range s.floorMaps {
		floorMaps = append(floorMaps, floorMap)
	}
	sort.Slice(floorMaps, func(i, j int) bool {
		if floorMaps[i].Name == floorMaps[j].Name {
			return floorMaps[i].ID < floorMaps[j].ID
		}
		return floorMaps[i].Name < floorMaps[j].Name
	})
	return floorMaps, nil
}

// DeleteFloorMap removes a floor map together with its resources and their
// bookings.
func (s *Store) DeleteFloorMap(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floorMaps[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.floorMaps, id)

	for resourceID, resource := range s.resources {
		if resource.MapID != id {
			continue
		}
		delete(s.resources, resourceID)
		s.deleteBookingsForResourceLocked(resourceID)
	}
	return nil
}

// --- ResourceRepository implementation ---

// CreateResource stores a new desk or meeting room.
func (s *Store) CreateResource(ctx context.Context, resource persistence.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.floorMaps[resource.MapID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.resources[resource.ID] = cloneResource(resource)
	return nil
}

// UpdateResource updates an existing resource.
func (s *Store) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource.ID]; !ok {
		return persistence.ErrNotFound
	}
	if _, ok := s.floorMaps[resource.MapID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.resources[resource.ID] = cloneResource(resource)
	return nil
}

// GetResource retrieves a resource by id.
func (s *Store) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return cloneResource(resource), nil
}

// ListResources returns resources, optionally filtered by owning map,
// ordered by name then id.
func (s *Store) ListResources(ctx context.Context, mapID string) ([]persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]persistence.Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		if mapID != "" && resource.MapID != mapID {
			continue
		}
		resources = append(resources, cloneResource(resource))
	}
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Name == resources[j].Name {
			return resources[i].ID < resources[j].ID
		}
		return resources[i].Name < resources[j].Name
	})
	return resources, nil
}

// DeleteResource removes a resource and every booking referencing it.
func (s *Store) DeleteResource(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.resources, id)
	s.deleteBookingsForResourceLocked(id)
	return nil
}

func (s *Store) deleteBookingsForResourceLocked(resourceID string) {
	for bookingID, booking := range s.bookings {
		if booking.ResourceID == resourceID {
			delete(s.bookings, bookingID)
		}
	}
}

// --- BookingRepository implementation ---

// CreateBooking stores a new booking.
func (s *Store) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[booking.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.resources[booking.ResourceID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

// GetBooking retrieves a booking by id.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return cloneBooking(booking), nil
}

// ListBookings returns bookings matching the filter, ordered by creation
// time then id. A Date filter matches stored dates exactly; recurrence
// expansion is the availability engine's concern.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0, len(s.bookings))
	for _, booking := range s.bookings {
		if filter.ResourceID != "" && booking.ResourceID != filter.ResourceID {
			continue
		}
		if filter.UserID != "" && booking.UserID != filter.UserID {
			continue
		}
		if filter.Date != "" && booking.Date != filter.Date {
			continue
		}
		bookings = append(bookings, cloneBooking(booking))
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})
	return bookings, nil
}

// DeleteBooking removes a booking by id.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// DeleteBookingsBefore removes non-recurring bookings dated strictly before
// dateKey. Canonical "YYYY-MM-DD" keys order lexicographically.
func (s *Store) DeleteBookingsBefore(ctx context.Context, dateKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, booking := range s.bookings {
		if booking.Recurring || booking.Date >= dateKey {
			continue
		}
		delete(s.bookings, id)
		removed++
	}
	return removed, nil
}

func cloneResource(resource persistence.Resource) persistence.Resource {
	return resource
}

func cloneBooking(booking persistence.Booking) persistence.Booking {
	cloned := booking
	if booking.Slot != nil {
		slot := *booking.Slot
		cloned.Slot = &slot
	}
	if booking.RecurringDays != nil {
		days := make([]string, len(booking.RecurringDays))
		copy(days, booking.RecurringDays)
		cloned.RecurringDays = days
	}
	return cloned
}
