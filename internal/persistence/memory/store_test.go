package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

var testTime = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func seedMap(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.CreateFloorMap(context.Background(), persistence.FloorMap{
		ID: id, Name: "Floor " + id, CreatedAt: testTime, UpdatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("CreateFloorMap(%s) returned error: %v", id, err)
	}
}

func seedResource(t *testing.T, store *Store, id, mapID string, kind persistence.ResourceType) {
	t.Helper()
	err := store.CreateResource(context.Background(), persistence.Resource{
		ID: id, MapID: mapID, Name: id, Type: kind,
		Status: persistence.ResourceStatusAvailable, CreatedAt: testTime, UpdatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("CreateResource(%s) returned error: %v", id, err)
	}
}

func seedBooking(t *testing.T, store *Store, booking persistence.Booking) {
	t.Helper()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = testTime
	}
	if err := store.CreateBooking(context.Background(), booking); err != nil {
		t.Fatalf("CreateBooking(%s) returned error: %v", booking.ID, err)
	}
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	user := persistence.User{ID: "u1", Email: "u1@example.com", DisplayName: "User One", CreatedAt: testTime, UpdatedAt: testTime}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	t.Run("duplicate id rejected", func(t *testing.T) {
		if err := store.CreateUser(ctx, user); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("duplicate email rejected case-insensitively", func(t *testing.T) {
		clash := persistence.User{ID: "u2", Email: "U1@Example.com"}
		if err := store.CreateUser(ctx, clash); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("lookup by email", func(t *testing.T) {
		found, err := store.GetUserByEmail(ctx, "U1@EXAMPLE.COM")
		if err != nil {
			t.Fatalf("GetUserByEmail returned error: %v", err)
		}
		if found.ID != "u1" {
			t.Fatalf("found user %q, want u1", found.ID)
		}
	})

	t.Run("delete then get", func(t *testing.T) {
		if err := store.DeleteUser(ctx, "u1"); err != nil {
			t.Fatalf("DeleteUser returned error: %v", err)
		}
		if _, err := store.GetUser(ctx, "u1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestResourceRequiresFloorMap(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.CreateResource(ctx, persistence.Resource{ID: "desk-1", MapID: "missing", Type: persistence.ResourceTypeDesk})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestBookingRequiresResource(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.CreateBooking(ctx, persistence.Booking{ID: "b1", ResourceID: "missing", UserID: "u1", Date: "2024-06-10"})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestListBookingsFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedMap(t, store, "m1")
	seedResource(t, store, "desk-1", "m1", persistence.ResourceTypeDesk)
	seedResource(t, store, "desk-2", "m1", persistence.ResourceTypeDesk)

	seedBooking(t, store, persistence.Booking{ID: "b1", ResourceID: "desk-1", UserID: "u1", Date: "2024-06-10", CreatedAt: testTime})
	seedBooking(t, store, persistence.Booking{ID: "b2", ResourceID: "desk-2", UserID: "u1", Date: "2024-06-10", CreatedAt: testTime.Add(time.Minute)})
	seedBooking(t, store, persistence.Booking{ID: "b3", ResourceID: "desk-1", UserID: "u2", Date: "2024-06-11", CreatedAt: testTime.Add(2 * time.Minute)})

	cases := []struct {
		name   string
		filter persistence.BookingFilter
		want   []string
	}{
		{name: "by resource", filter: persistence.BookingFilter{ResourceID: "desk-1"}, want: []string{"b1", "b3"}},
		{name: "by user", filter: persistence.BookingFilter{UserID: "u1"}, want: []string{"b1", "b2"}},
		{name: "by date", filter: persistence.BookingFilter{Date: "2024-06-10"}, want: []string{"b1", "b2"}},
		{name: "resource and date", filter: persistence.BookingFilter{ResourceID: "desk-1", Date: "2024-06-11"}, want: []string{"b3"}},
		{name: "unfiltered", filter: persistence.BookingFilter{}, want: []string{"b1", "b2", "b3"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bookings, err := store.ListBookings(ctx, tc.filter)
			if err != nil {
				t.Fatalf("ListBookings returned error: %v", err)
			}
			if len(bookings) != len(tc.want) {
				t.Fatalf("got %d bookings, want %d", len(bookings), len(tc.want))
			}
			for i, id := range tc.want {
				if bookings[i].ID != id {
					t.Fatalf("bookings[%d].ID = %q, want %q", i, bookings[i].ID, id)
				}
			}
		})
	}
}

func TestDeleteResourceCascadesBookings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedMap(t, store, "m1")
	seedResource(t, store, "desk-1", "m1", persistence.ResourceTypeDesk)
	seedBooking(t, store, persistence.Booking{ID: "b1", ResourceID: "desk-1", UserID: "u1", Date: "2024-06-10"})

	if err := store.DeleteResource(ctx, "desk-1"); err != nil {
		t.Fatalf("DeleteResource returned error: %v", err)
	}
	if _, err := store.GetBooking(ctx, "b1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected booking to be cascaded away, got %v", err)
	}
}

func TestDeleteFloorMapCascades(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedMap(t, store, "m1")
	seedMap(t, store, "m2")
	seedResource(t, store, "desk-1", "m1", persistence.ResourceTypeDesk)
	seedResource(t, store, "room-1", "m2", persistence.ResourceTypeMeetingRoom)
	seedBooking(t, store, persistence.Booking{ID: "b1", ResourceID: "desk-1", UserID: "u1", Date: "2024-06-10"})
	seedBooking(t, store, persistence.Booking{ID: "b2", ResourceID: "room-1", UserID: "u1", Date: "2024-06-10", Slot: &persistence.TimeSlot{Start: "09:00", End: "10:00"}})

	if err := store.DeleteFloorMap(ctx, "m1"); err != nil {
		t.Fatalf("DeleteFloorMap returned error: %v", err)
	}

	if _, err := store.GetResource(ctx, "desk-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected resource cascade, got %v", err)
	}
	if _, err := store.GetBooking(ctx, "b1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected booking cascade, got %v", err)
	}
	if _, err := store.GetBooking(ctx, "b2"); err != nil {
		t.Fatalf("booking on the surviving map must remain, got %v", err)
	}
}

func TestDeleteBookingsBefore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedMap(t, store, "m1")
	seedResource(t, store, "desk-1", "m1", persistence.ResourceTypeDesk)

	seedBooking(t, store, persistence.Booking{ID: "old", ResourceID: "desk-1", UserID: "u1", Date: "2024-01-05"})
	seedBooking(t, store, persistence.Booking{ID: "recurring", ResourceID: "desk-1", UserID: "u2", Date: "2024-01-05", Recurring: true, RecurringDays: []string{"monday"}})
	seedBooking(t, store, persistence.Booking{ID: "current", ResourceID: "desk-1", UserID: "u3", Date: "2024-06-10"})

	removed, err := store.DeleteBookingsBefore(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("DeleteBookingsBefore returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d bookings, want 1", removed)
	}

	if _, err := store.GetBooking(ctx, "old"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected old booking to be purged, got %v", err)
	}
	for _, id := range []string{"recurring", "current"} {
		if _, err := store.GetBooking(ctx, id); err != nil {
			t.Fatalf("booking %q must survive the sweep, got %v", id, err)
		}
	}
}

func TestBookingCloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seedMap(t, store, "m1")
	seedResource(t, store, "room-1", "m1", persistence.ResourceTypeMeetingRoom)
	seedBooking(t, store, persistence.Booking{ID: "b1", ResourceID: "room-1", UserID: "u1", Date: "2024-06-10", Slot: &persistence.TimeSlot{Start: "09:00", End: "10:00"}})

	fetched, err := store.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBooking returned error: %v", err)
	}
	fetched.Slot.Start = "13:00"

	again, err := store.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBooking returned error: %v", err)
	}
	if again.Slot.Start != "09:00" {
		t.Fatalf("stored slot mutated through returned pointer: %q", again.Slot.Start)
	}
}
