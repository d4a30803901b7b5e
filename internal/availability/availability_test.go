package availability

import (
	"testing"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", value, err)
	}
	return parsed
}

func slot(t *testing.T, start, end string) Slot {
	t.Helper()
	parsed, err := ParseSlot(persistence.TimeSlot{Start: start, End: end})
	if err != nil {
		t.Fatalf("invalid test slot %s-%s: %v", start, end, err)
	}
	return parsed
}

func TestSlotOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a    [2]string
		b    [2]string
		want bool
	}{
		{name: "identical", a: [2]string{"09:00", "10:00"}, b: [2]string{"09:00", "10:00"}, want: true},
		{name: "partial overlap", a: [2]string{"09:00", "10:00"}, b: [2]string{"09:30", "10:30"}, want: true},
		{name: "containment", a: [2]string{"09:00", "12:00"}, b: [2]string{"10:00", "11:00"}, want: true},
		{name: "touching end to start", a: [2]string{"09:00", "10:00"}, b: [2]string{"10:00", "11:00"}, want: false},
		{name: "touching start to end", a: [2]string{"10:00", "11:00"}, b: [2]string{"09:00", "10:00"}, want: false},
		{name: "disjoint", a: [2]string{"09:00", "10:00"}, b: [2]string{"14:00", "15:00"}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := slot(t, tc.a[0], tc.a[1])
			b := slot(t, tc.b[0], tc.b[1])
			if got := a.Overlaps(b); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := b.Overlaps(a); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v (not symmetric)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestOccupiesDate(t *testing.T) {
	monday := date(t, "2024-06-10")

	t.Run("exact date matches", func(t *testing.T) {
		booking := persistence.Booking{Date: "2024-06-10"}
		if !OccupiesDate(booking, monday) {
			t.Fatal("expected exact date to occupy")
		}
	})

	t.Run("other date does not match", func(t *testing.T) {
		booking := persistence.Booking{Date: "2024-06-11"}
		if OccupiesDate(booking, monday) {
			t.Fatal("expected non-matching date to be free")
		}
	})

	t.Run("recurring weekday matches far future", func(t *testing.T) {
		booking := persistence.Booking{
			Date:          "2024-01-01",
			Recurring:     true,
			RecurringDays: []string{"monday"},
		}
		for weeks := 1; weeks <= 8; weeks++ {
			future := monday.AddDate(0, 0, 7*weeks)
			if !OccupiesDate(booking, future) {
				t.Fatalf("expected recurring monday booking to occupy %v", future)
			}
		}
	})

	t.Run("recurring booking leaves other weekdays free", func(t *testing.T) {
		booking := persistence.Booking{
			Date:          "2024-01-01",
			Recurring:     true,
			RecurringDays: []string{"monday"},
		}
		for offset := 1; offset <= 6; offset++ {
			day := monday.AddDate(0, 0, offset)
			if OccupiesDate(booking, day) {
				t.Fatalf("recurring monday booking should not occupy %v", day)
			}
		}
	})

	t.Run("non-recurring ignores weekday", func(t *testing.T) {
		booking := persistence.Booking{Date: "2024-06-03", RecurringDays: []string{"monday"}}
		if OccupiesDate(booking, monday) {
			t.Fatal("weekday match must require the recurring flag")
		}
	})
}

func TestDeskFree(t *testing.T) {
	monday := date(t, "2024-06-10")

	t.Run("no bookings", func(t *testing.T) {
		if !DeskFree(nil, monday) {
			t.Fatal("expected empty booking set to be free")
		}
	})

	t.Run("exact date blocks whole day", func(t *testing.T) {
		bookings := []persistence.Booking{{ID: "b1", Date: "2024-06-10"}}
		if DeskFree(bookings, monday) {
			t.Fatal("expected desk to be taken")
		}
	})

	t.Run("recurring weekday blocks", func(t *testing.T) {
		bookings := []persistence.Booking{{
			ID:            "b1",
			Date:          "2024-03-04",
			Recurring:     true,
			RecurringDays: []string{"monday", "wednesday"},
		}}
		if DeskFree(bookings, monday) {
			t.Fatal("expected recurring booking to block monday")
		}
		if !DeskFree(bookings, date(t, "2024-06-11")) {
			t.Fatal("expected tuesday to stay free")
		}
	})
}

func TestRoomFreeAt(t *testing.T) {
	monday := date(t, "2024-06-10")
	existing := []persistence.Booking{{
		ID:         "b1",
		ResourceID: "room-1",
		Date:       "2024-06-10",
		Slot:       &persistence.TimeSlot{Start: "09:00", End: "10:00"},
	}}

	t.Run("overlap is rejected", func(t *testing.T) {
		free, conflictID := RoomFreeAt(existing, monday, slot(t, "09:30", "10:30"))
		if free {
			t.Fatal("expected overlap to be detected")
		}
		if conflictID != "b1" {
			t.Fatalf("conflict id = %q, want b1", conflictID)
		}
	})

	t.Run("touching slot is allowed", func(t *testing.T) {
		if free, _ := RoomFreeAt(existing, monday, slot(t, "10:00", "11:00")); !free {
			t.Fatal("touching endpoints must not conflict")
		}
	})

	t.Run("other date is free", func(t *testing.T) {
		if free, _ := RoomFreeAt(existing, date(t, "2024-06-11"), slot(t, "09:00", "10:00")); !free {
			t.Fatal("different date must not conflict")
		}
	})

	t.Run("recurring room booking blocks matching weekday", func(t *testing.T) {
		recurring := []persistence.Booking{{
			ID:            "b2",
			Date:          "2024-05-06",
			Recurring:     true,
			RecurringDays: []string{"monday"},
			Slot:          &persistence.TimeSlot{Start: "13:00", End: "14:00"},
		}}
		free, conflictID := RoomFreeAt(recurring, monday, slot(t, "13:30", "14:30"))
		if free {
			t.Fatal("expected recurring slot to conflict on its weekday")
		}
		if conflictID != "b2" {
			t.Fatalf("conflict id = %q, want b2", conflictID)
		}
	})

	t.Run("slotless bookings are skipped", func(t *testing.T) {
		dayBooking := []persistence.Booking{{ID: "b3", Date: "2024-06-10"}}
		if free, _ := RoomFreeAt(dayBooking, monday, slot(t, "09:00", "10:00")); !free {
			t.Fatal("bookings without a slot define no interval to collide with")
		}
	})
}

func TestStatusOf(t *testing.T) {
	monday := date(t, "2024-06-10")

	t.Run("maintenance wins over everything", func(t *testing.T) {
		resource := persistence.Resource{Type: persistence.ResourceTypeDesk, Status: persistence.ResourceStatusMaintenance}
		if got := StatusOf(resource, nil, monday); got != StatusMaintenance {
			t.Fatalf("status = %q, want maintenance", got)
		}
	})

	t.Run("room with exact-date booking shows booked", func(t *testing.T) {
		resource := persistence.Resource{Type: persistence.ResourceTypeMeetingRoom, Status: persistence.ResourceStatusAvailable}
		bookings := []persistence.Booking{{Date: "2024-06-10", Slot: &persistence.TimeSlot{Start: "09:00", End: "10:00"}}}
		if got := StatusOf(resource, bookings, monday); got != StatusBooked {
			t.Fatalf("status = %q, want booked", got)
		}
	})

	t.Run("room status ignores recurrence", func(t *testing.T) {
		resource := persistence.Resource{Type: persistence.ResourceTypeMeetingRoom, Status: persistence.ResourceStatusAvailable}
		bookings := []persistence.Booking{{
			Date:          "2024-05-06",
			Recurring:     true,
			RecurringDays: []string{"monday"},
			Slot:          &persistence.TimeSlot{Start: "09:00", End: "10:00"},
		}}
		if got := StatusOf(resource, bookings, monday); got != StatusAvailable {
			t.Fatalf("status = %q, want available (display status matches exact dates only)", got)
		}
	})

	t.Run("desk honours recurrence", func(t *testing.T) {
		resource := persistence.Resource{Type: persistence.ResourceTypeDesk, Status: persistence.ResourceStatusAvailable}
		bookings := []persistence.Booking{{
			Date:          "2024-05-06",
			Recurring:     true,
			RecurringDays: []string{"monday"},
		}}
		if got := StatusOf(resource, bookings, monday); got != StatusBooked {
			t.Fatalf("status = %q, want booked", got)
		}
	})

	t.Run("free desk shows available", func(t *testing.T) {
		resource := persistence.Resource{Type: persistence.ResourceTypeDesk, Status: persistence.ResourceStatusAvailable}
		if got := StatusOf(resource, nil, monday); got != StatusAvailable {
			t.Fatalf("status = %q, want available", got)
		}
	})
}

func TestUserHoldsDeskOn(t *testing.T) {
	monday := date(t, "2024-06-10")
	types := map[string]persistence.ResourceType{
		"desk-1": persistence.ResourceTypeDesk,
		"room-1": persistence.ResourceTypeMeetingRoom,
	}

	t.Run("desk booking on the date counts", func(t *testing.T) {
		bookings := []persistence.Booking{{ResourceID: "desk-1", UserID: "u1", Date: "2024-06-10"}}
		if !UserHoldsDeskOn(bookings, types, "u1", monday) {
			t.Fatal("expected desk booking to count")
		}
	})

	t.Run("room bookings never count", func(t *testing.T) {
		bookings := []persistence.Booking{
			{ResourceID: "room-1", UserID: "u1", Date: "2024-06-10", Slot: &persistence.TimeSlot{Start: "09:00", End: "10:00"}},
			{ResourceID: "room-1", UserID: "u1", Date: "2024-06-10", Slot: &persistence.TimeSlot{Start: "11:00", End: "12:00"}},
		}
		if UserHoldsDeskOn(bookings, types, "u1", monday) {
			t.Fatal("meeting-room bookings must not trigger the desk limit")
		}
	})

	t.Run("other users do not count", func(t *testing.T) {
		bookings := []persistence.Booking{{ResourceID: "desk-1", UserID: "u2", Date: "2024-06-10"}}
		if UserHoldsDeskOn(bookings, types, "u1", monday) {
			t.Fatal("another user's booking must not count")
		}
	})

	t.Run("recurring desk booking on the weekday does not count", func(t *testing.T) {
		// The one-desk-per-day rule matches literal dates only, unlike desk
		// availability. This pins the asymmetry so it cannot change silently.
		bookings := []persistence.Booking{{
			ResourceID:    "desk-1",
			UserID:        "u1",
			Date:          "2024-05-06",
			Recurring:     true,
			RecurringDays: []string{"monday"},
		}}
		if UserHoldsDeskOn(bookings, types, "u1", monday) {
			t.Fatal("recurrence must not be considered by the per-user rule")
		}
	})
}
