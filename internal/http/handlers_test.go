package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/workplace-booking/internal/persistence/memory"
	"github.com/example/workplace-booking/internal/testfixtures"
)

type apiHarness struct {
	store   *memory.Store
	handler http.Handler
}

// newAPIHarness wires real services over the in-memory store behind the
// production router so tests exercise routing, middleware, and the JSON
// contract end to end. It seeds an admin, two employees, one floor map,
// one desk, and one meeting room.
func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	store := memory.NewStore()
	factory := testfixtures.NewServiceFactory()

	seed := []testfixtures.UserFixture{
		testfixtures.NewUserFixture(testfixtures.WithUserID("root"), testfixtures.WithUserAdmin(true)),
		testfixtures.NewUserFixture(testfixtures.WithUserID("alice")),
		testfixtures.NewUserFixture(testfixtures.WithUserID("bob")),
	}
	ctx := t.Context()
	for _, fixture := range seed {
		if err := store.CreateUser(ctx, fixture.Persistence()); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
	}
	if err := store.CreateFloorMap(ctx, testfixtures.NewFloorMapFixture(testfixtures.WithFloorMapID("map-1")).Persistence()); err != nil {
		t.Fatalf("seed floor map failed: %v", err)
	}
	if err := store.CreateResource(ctx, testfixtures.NewDeskFixture("map-1", testfixtures.WithResourceID("desk-1")).Persistence()); err != nil {
		t.Fatalf("seed desk failed: %v", err)
	}
	if err := store.CreateResource(ctx, testfixtures.NewMeetingRoomFixture("map-1", testfixtures.WithResourceID("room-1")).Persistence()); err != nil {
		t.Fatalf("seed room failed: %v", err)
	}

	bookings := factory.NewBookingService(testfixtures.BookingServiceDeps{
		Bookings:  store,
		Resources: store,
		Users:     store,
	})
	resources := factory.NewResourceService(testfixtures.ResourceServiceDeps{
		Resources: store,
		Bookings:  store,
	})
	floorMaps := factory.NewFloorMapService(testfixtures.FloorMapServiceDeps{FloorMaps: store})
	users := factory.NewUserService(testfixtures.UserServiceDeps{Users: store})

	handler := NewRouter(RouterConfig{
		Bookings:     NewBookingHandler(bookings, nil),
		Availability: NewAvailabilityHandler(bookings, nil),
		Resources:    NewResourceHandler(resources, nil),
		FloorMaps:    NewFloorMapHandler(floorMaps, nil),
		Users:        NewUserHandler(users, nil),
		Middleware: []func(http.Handler) http.Handler{
			RequirePrincipal(nil),
		},
	})

	return &apiHarness{store: store, handler: handler}
}

type testPrincipal struct {
	ID    string
	Admin bool
}

func (h *apiHarness) do(t *testing.T, method, target string, principal *testPrincipal, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, body)
	if principal != nil {
		req.Header.Set(HeaderPrincipalID, principal.ID)
		if principal.Admin {
			req.Header.Set(HeaderPrincipalAdmin, "true")
		}
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

var (
	asAlice = &testPrincipal{ID: "alice"}
	asBob   = &testPrincipal{ID: "bob"}
	asRoot  = &testPrincipal{ID: "root", Admin: true}
)

func TestRouterRejectsMissingPrincipal(t *testing.T) {
	harness := newAPIHarness(t)

	rec := harness.do(t, http.MethodGet, "/bookings", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Message != errMissingPrincipal.Error() {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	rec := harness.do(t, http.MethodPost, "/bookings", asAlice, bookingRequest{
		ResourceID: "desk-1",
		Date:       "2024-06-03",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created bookingResponse
	decodeBody(t, rec, &created)
	if created.Booking.ID == "" || created.Booking.UserID != "alice" || created.Booking.Date != "2024-06-03" {
		t.Fatalf("unexpected booking payload: %+v", created.Booking)
	}

	rec = harness.do(t, http.MethodPost, "/bookings", asBob, bookingRequest{
		ResourceID: "desk-1",
		Date:       "2024-06-03",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken desk, got %d: %s", rec.Code, rec.Body.String())
	}
	var conflict errorResponse
	decodeBody(t, rec, &conflict)
	if conflict.ErrorCode != "DESK_TAKEN" {
		t.Fatalf("expected DESK_TAKEN, got %q", conflict.ErrorCode)
	}

	rec = harness.do(t, http.MethodGet, "/bookings", asAlice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var listed listBookingsResponse
	decodeBody(t, rec, &listed)
	if len(listed.Bookings) != 1 {
		t.Fatalf("expected 1 booking for alice, got %d", len(listed.Bookings))
	}

	rec = harness.do(t, http.MethodDelete, "/bookings/"+created.Booking.ID, asBob, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign cancel, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = harness.do(t, http.MethodDelete, "/bookings/"+created.Booking.ID, asAlice, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = harness.do(t, http.MethodGet, "/bookings", asAlice, nil)
	decodeBody(t, rec, &listed)
	if len(listed.Bookings) != 0 {
		t.Fatalf("expected no bookings after cancel, got %d", len(listed.Bookings))
	}
}

func TestBookingValidationOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString("{not json"))
		req.Header.Set(HeaderPrincipalID, "alice")
		rec := httptest.NewRecorder()
		harness.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid fields", func(t *testing.T) {
		rec := harness.do(t, http.MethodPost, "/bookings", asAlice, bookingRequest{
			ResourceID: "desk-1",
			Date:       "03-06-2024",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if len(resp.Errors) == 0 {
			t.Fatalf("expected field errors, got %+v", resp)
		}
	})

	t.Run("slot overlap carries error code", func(t *testing.T) {
		first := harness.do(t, http.MethodPost, "/bookings", asAlice, bookingRequest{
			ResourceID: "room-1",
			Date:       "2024-06-04",
			Slot:       &timeSlotDTO{Start: "09:00", End: "10:00"},
		})
		if first.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
		}

		rec := harness.do(t, http.MethodPost, "/bookings", asBob, bookingRequest{
			ResourceID: "room-1",
			Date:       "2024-06-04",
			Slot:       &timeSlotDTO{Start: "09:30", End: "10:30"},
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.ErrorCode != "SLOT_OVERLAP" {
			t.Fatalf("expected SLOT_OVERLAP, got %q", resp.ErrorCode)
		}
	})
}

func TestAvailabilityEndpointOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	rec := harness.do(t, http.MethodGet, "/resources/desk-1/availability?date=2024-06-03", asAlice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp availabilityResponse
	decodeBody(t, rec, &resp)
	if !resp.Available || resp.Status != "available" {
		t.Fatalf("expected available desk, got %+v", resp)
	}

	if got := harness.do(t, http.MethodPost, "/bookings", asAlice, bookingRequest{
		ResourceID: "desk-1",
		Date:       "2024-06-03",
	}); got.Code != http.StatusCreated {
		t.Fatalf("seed booking failed: %d %s", got.Code, got.Body.String())
	}

	rec = harness.do(t, http.MethodGet, "/resources/desk-1/availability?date=2024-06-03", asBob, nil)
	decodeBody(t, rec, &resp)
	if resp.Available || resp.Status != "booked" {
		t.Fatalf("expected booked desk, got %+v", resp)
	}

	t.Run("slot query narrows rooms", func(t *testing.T) {
		rec := harness.do(t, http.MethodGet, "/resources/room-1/availability?date=2024-06-03&start=09:00&end=10:00", asAlice, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp availabilityResponse
		decodeBody(t, rec, &resp)
		if !resp.Available {
			t.Fatalf("expected free room slot, got %+v", resp)
		}
	})

	t.Run("start without end is rejected", func(t *testing.T) {
		rec := harness.do(t, http.MethodGet, "/resources/room-1/availability?date=2024-06-03&start=09:00", asAlice, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing date is rejected", func(t *testing.T) {
		rec := harness.do(t, http.MethodGet, "/resources/desk-1/availability", asAlice, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown resource reports unavailable", func(t *testing.T) {
		rec := harness.do(t, http.MethodGet, "/resources/ghost/availability?date=2024-06-03", asAlice, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp availabilityResponse
		decodeBody(t, rec, &resp)
		if resp.Available || resp.Status != "" {
			t.Fatalf("expected unavailable without status, got %+v", resp)
		}
	})
}

func TestDeskEligibilityOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	rec := harness.do(t, http.MethodGet, "/desk-eligibility?date=2024-06-03", asAlice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp deskEligibilityResponse
	decodeBody(t, rec, &resp)
	if !resp.CanBook {
		t.Fatalf("expected eligibility before booking, got %+v", resp)
	}

	if got := harness.do(t, http.MethodPost, "/bookings", asAlice, bookingRequest{
		ResourceID: "desk-1",
		Date:       "2024-06-03",
	}); got.Code != http.StatusCreated {
		t.Fatalf("seed booking failed: %d %s", got.Code, got.Body.String())
	}

	rec = harness.do(t, http.MethodGet, "/desk-eligibility?date=2024-06-03", asAlice, nil)
	decodeBody(t, rec, &resp)
	if resp.CanBook {
		t.Fatalf("expected exhausted eligibility, got %+v", resp)
	}
}

func TestResourceEndpointsOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	t.Run("mutations require admin", func(t *testing.T) {
		rec := harness.do(t, http.MethodPost, "/resources", asAlice, resourceRequest{
			MapID: "map-1",
			Name:  "Desk 9",
			Type:  "desk",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	var createdID string
	t.Run("admin creates a desk", func(t *testing.T) {
		rec := harness.do(t, http.MethodPost, "/resources", asRoot, resourceRequest{
			MapID: "map-1",
			Name:  "Desk 9",
			Type:  "desk",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp resourceResponse
		decodeBody(t, rec, &resp)
		if resp.Resource.ID == "" || resp.Resource.Status != "available" {
			t.Fatalf("unexpected resource payload: %+v", resp.Resource)
		}
		createdID = resp.Resource.ID
	})

	t.Run("invalid input yields field errors", func(t *testing.T) {
		rec := harness.do(t, http.MethodPost, "/resources", asRoot, resourceRequest{
			MapID: "map-1",
			Name:  "Phone Booth",
			Type:  "meeting_room",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for capacity-less room, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if len(resp.Errors) == 0 {
			t.Fatalf("expected field errors, got %+v", resp)
		}
	})

	t.Run("update flips maintenance", func(t *testing.T) {
		rec := harness.do(t, http.MethodPut, "/resources/"+createdID, asRoot, resourceRequest{
			MapID:  "map-1",
			Name:   "Desk 9",
			Type:   "desk",
			Status: "maintenance",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp resourceResponse
		decodeBody(t, rec, &resp)
		if resp.Resource.Status != "maintenance" {
			t.Fatalf("expected maintenance status, got %+v", resp.Resource)
		}
	})

	t.Run("map listing includes display statuses for a date", func(t *testing.T) {
		rec := harness.do(t, http.MethodGet, "/maps/map-1/resources?date=2024-06-03", asAlice, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp listResourceStatusesResponse
		decodeBody(t, rec, &resp)
		if resp.Date != "2024-06-03" || len(resp.Resources) != 3 {
			t.Fatalf("unexpected status listing: %+v", resp)
		}
		statuses := map[string]string{}
		for _, resource := range resp.Resources {
			statuses[resource.ID] = resource.DisplayStatus
		}
		if statuses[createdID] != "maintenance" || statuses["desk-1"] != "available" {
			t.Fatalf("unexpected display statuses: %+v", statuses)
		}
	})

	t.Run("delete removes the resource", func(t *testing.T) {
		rec := harness.do(t, http.MethodDelete, "/resources/"+createdID, asRoot, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		rec = harness.do(t, http.MethodDelete, "/resources/"+createdID, asRoot, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 on second delete, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestFloorMapEndpointsOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	rec := harness.do(t, http.MethodPost, "/maps", asRoot, floorMapRequest{Name: "Annex"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created floorMapResponse
	decodeBody(t, rec, &created)
	if created.FloorMap.ID == "" || created.FloorMap.Name != "Annex" {
		t.Fatalf("unexpected map payload: %+v", created.FloorMap)
	}

	rec = harness.do(t, http.MethodPost, "/maps", asAlice, floorMapRequest{Name: "Rogue"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = harness.do(t, http.MethodPut, "/maps/"+created.FloorMap.ID, asRoot, floorMapRequest{Name: "Annex East"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = harness.do(t, http.MethodGet, "/maps", asAlice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var listed listFloorMapsResponse
	decodeBody(t, rec, &listed)
	if len(listed.FloorMaps) != 2 {
		t.Fatalf("expected 2 maps, got %d", len(listed.FloorMaps))
	}

	rec = harness.do(t, http.MethodDelete, "/maps/"+created.FloorMap.ID, asRoot, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserEndpointsOverHTTP(t *testing.T) {
	harness := newAPIHarness(t)

	rec := harness.do(t, http.MethodPost, "/users", asRoot, userRequest{
		Email:       "carol@example.com",
		DisplayName: "Carol",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created userResponse
	decodeBody(t, rec, &created)
	if created.User.ID == "" || created.User.Email != "carol@example.com" {
		t.Fatalf("unexpected user payload: %+v", created.User)
	}

	rec = harness.do(t, http.MethodPost, "/users", asRoot, userRequest{
		Email:       "CAROL@example.com",
		DisplayName: "Duplicate",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
	var conflict errorResponse
	decodeBody(t, rec, &conflict)
	if conflict.ErrorCode != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS, got %q", conflict.ErrorCode)
	}

	rec = harness.do(t, http.MethodPost, "/users", asAlice, userRequest{
		Email:       "mallory@example.com",
		DisplayName: "Mallory",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = harness.do(t, http.MethodPut, "/users/"+created.User.ID, asRoot, userRequest{
		Email:       "carol@example.com",
		DisplayName: "Carol Promoted",
		IsAdmin:     true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated userResponse
	decodeBody(t, rec, &updated)
	if !updated.User.IsAdmin || updated.User.DisplayName != "Carol Promoted" {
		t.Fatalf("unexpected user payload: %+v", updated.User)
	}

	rec = harness.do(t, http.MethodDelete, "/users/"+created.User.ID, asRoot, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = harness.do(t, http.MethodDelete, "/users/"+created.User.ID, asRoot, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d: %s", rec.Code, rec.Body.String())
	}
}
