package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/availability"
	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/timeutil"
)

// BookingRepository captures the persistence interactions needed by the
// booking service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// ResourceCatalog exposes the resource lookups needed by the booking service.
type ResourceCatalog interface {
	GetResource(ctx context.Context, id string) (persistence.Resource, error)
}

// UserDirectory exposes the user lookups needed by the booking service.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (persistence.User, error)
}

// BookingService is the single mutating boundary of the booking set. It
// validates commands, applies the availability rules, and serializes the
// check-then-act window per resource.
type BookingService struct {
	bookings    BookingRepository
	resources   ResourceCatalog
	users       UserDirectory
	locks       *resourceLocker
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, resources ResourceCatalog, users UserDirectory, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, resources, users, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified
// logger.
func NewBookingServiceWithLogger(bookings BookingRepository, resources ResourceCatalog, users UserDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		resources:   resources,
		users:       users,
		locks:       newResourceLocker(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Create validates the request, re-checks availability under the resource's
// lock, and persists the booking.
func (s *BookingService) Create(ctx context.Context, params CreateBookingParams) (booking persistence.Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil || s.resources == nil {
		err = fmt.Errorf("booking service not configured")
		return
	}

	input := params.Input
	principal := params.Principal

	logger := s.loggerWith(ctx, "Create",
		"principal_id", principal.UserID,
		"resource_id", input.ResourceID,
		"date", input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID, "user_id", booking.UserID).InfoContext(ctx, "booking created")
	}()

	if input.UserID == "" {
		input.UserID = principal.UserID
	}
	if input.UserID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	date := validateBookingCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureUserExists(ctx, input.UserID); err != nil {
		return
	}

	var resource persistence.Resource
	resource, err = s.resources.GetResource(ctx, input.ResourceID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}
	if resource.Status == persistence.ResourceStatusMaintenance {
		err = ErrResourceUnavailable
		return
	}

	switch resource.Type {
	case persistence.ResourceTypeDesk:
		vErr = validateDeskInput(input)
	case persistence.ResourceTypeMeetingRoom:
		vErr = validateRoomInput(input)
	default:
		err = fmt.Errorf("unknown resource type %q", resource.Type)
		return
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	// The availability check and the insert form one critical section so
	// two racing callers cannot both pass the check.
	unlock := s.locks.Lock(resource.ID)
	defer unlock()

	if resource.Type == persistence.ResourceTypeDesk {
		err = s.checkDeskBookable(ctx, resource, principal, input.UserID, date)
	} else {
		err = s.checkRoomBookable(ctx, resource, date, *input.Slot)
	}
	if err != nil {
		return
	}

	booking = persistence.Booking{
		ID:         s.idGenerator(),
		ResourceID: resource.ID,
		UserID:     input.UserID,
		Date:       input.Date,
		Recurring:  input.Recurring,
		CreatedAt:  s.now(),
	}
	if input.Recurring {
		booking.RecurringDays = normalizeWeekdays(input.RecurringDays)
	}
	if resource.Type == persistence.ResourceTypeMeetingRoom {
		slot := *input.Slot
		booking.Slot = &slot
	}

	if err = s.bookings.CreateBooking(ctx, booking); err != nil {
		err = mapBookingRepoError(err)
		booking = persistence.Booking{}
		return
	}

	return
}

// Cancel removes a booking. The owner and administrators may cancel;
// everyone else is rejected.
func (s *BookingService) Cancel(ctx context.Context, principal Principal, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if booking.UserID != principal.UserID && !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to cancel booking", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		err = mapBookingRepoError(err)
		logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "booking cancelled")
	return nil
}

// List returns bookings matching the filter. Non-admin principals only see
// their own bookings unless they scope the query to a resource.
func (s *BookingService) List(ctx context.Context, params ListBookingsParams) ([]persistence.Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, nil
	}

	filter := persistence.BookingFilter{
		ResourceID: params.ResourceID,
		UserID:     params.UserID,
		Date:       params.Date,
	}
	if !params.Principal.IsAdmin && filter.ResourceID == "" {
		filter.UserID = params.Principal.UserID
	}

	bookings, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	return bookings, nil
}

// ResourceAvailable reports whether the resource can be booked for the date.
// For meeting rooms a slot must be supplied and slot-level availability is
// checked; desks ignore slots and are checked for the whole day. Missing
// and maintenance resources are reported as unavailable, not as errors.
func (s *BookingService) ResourceAvailable(ctx context.Context, resourceID string, date time.Time, slot *persistence.TimeSlot) (bool, error) {
	if s == nil || s.bookings == nil || s.resources == nil {
		return false, fmt.Errorf("booking service not configured")
	}

	resource, err := s.resources.GetResource(ctx, resourceID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if resource.Status == persistence.ResourceStatusMaintenance {
		return false, nil
	}

	if resource.Type == persistence.ResourceTypeMeetingRoom && slot != nil {
		return s.roomAvailableAt(ctx, resource, date, *slot)
	}

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{ResourceID: resourceID})
	if err != nil {
		return false, mapBookingRepoError(err)
	}
	return availability.DeskFree(bookings, date), nil
}

// RoomAvailableAt reports whether the meeting room is free for the slot on
// the date. Missing resources, maintenance, and non-room resources are
// unavailable.
func (s *BookingService) RoomAvailableAt(ctx context.Context, resourceID string, date time.Time, slot persistence.TimeSlot) (bool, error) {
	if s == nil || s.bookings == nil || s.resources == nil {
		return false, fmt.Errorf("booking service not configured")
	}

	resource, err := s.resources.GetResource(ctx, resourceID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if resource.Status == persistence.ResourceStatusMaintenance || resource.Type != persistence.ResourceTypeMeetingRoom {
		return false, nil
	}

	return s.roomAvailableAt(ctx, resource, date, slot)
}

// ResourceStatus computes the display status of a resource for a date.
func (s *BookingService) ResourceStatus(ctx context.Context, resourceID string, date time.Time) (availability.Status, error) {
	if s == nil || s.bookings == nil || s.resources == nil {
		return "", fmt.Errorf("booking service not configured")
	}

	resource, err := s.resources.GetResource(ctx, resourceID)
	if err != nil {
		return "", mapBookingRepoError(err)
	}

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{ResourceID: resourceID})
	if err != nil {
		return "", mapBookingRepoError(err)
	}
	return availability.StatusOf(resource, bookings, date), nil
}

// CanUserBookDesk reports whether the user may take another desk on the
// date. Administrators bypass the rule unconditionally. The check matches
// literal dates only; see availability.UserHoldsDeskOn.
func (s *BookingService) CanUserBookDesk(ctx context.Context, userID string, isAdmin bool, date time.Time) (bool, error) {
	if s == nil || s.bookings == nil || s.resources == nil {
		return false, fmt.Errorf("booking service not configured")
	}
	if isAdmin {
		return true, nil
	}

	holds, err := s.userHoldsDeskOn(ctx, userID, date)
	if err != nil {
		return false, err
	}
	return !holds, nil
}

func (s *BookingService) roomAvailableAt(ctx context.Context, resource persistence.Resource, date time.Time, slot persistence.TimeSlot) (bool, error) {
	requested, err := availability.ParseSlot(slot)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("time_slot", "time slot bounds must be valid HH:MM values")
		return false, vErr
	}

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{ResourceID: resource.ID})
	if err != nil {
		return false, mapBookingRepoError(err)
	}

	free, _ := availability.RoomFreeAt(bookings, date, requested)
	return free, nil
}

func (s *BookingService) checkDeskBookable(ctx context.Context, resource persistence.Resource, principal Principal, userID string, date time.Time) error {
	if !principal.IsAdmin {
		holds, err := s.userHoldsDeskOn(ctx, userID, date)
		if err != nil {
			return err
		}
		if holds {
			return ErrDeskLimitExceeded
		}
	}

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{ResourceID: resource.ID})
	if err != nil {
		return mapBookingRepoError(err)
	}
	if !availability.DeskFree(bookings, date) {
		return ErrDeskTaken
	}
	return nil
}

func (s *BookingService) checkRoomBookable(ctx context.Context, resource persistence.Resource, date time.Time, slot persistence.TimeSlot) error {
	requested, err := availability.ParseSlot(slot)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("time_slot", "time slot bounds must be valid HH:MM values")
		return vErr
	}

	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{ResourceID: resource.ID})
	if err != nil {
		return mapBookingRepoError(err)
	}
	if free, _ := availability.RoomFreeAt(bookings, date, requested); !free {
		return ErrSlotOverlap
	}
	return nil
}

func (s *BookingService) userHoldsDeskOn(ctx context.Context, userID string, date time.Time) (bool, error) {
	bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{
		UserID: userID,
		Date:   timeutil.DateKey(date),
	})
	if err != nil {
		return false, mapBookingRepoError(err)
	}

	types := make(map[string]persistence.ResourceType, len(bookings))
	for _, booking := range bookings {
		if _, ok := types[booking.ResourceID]; ok {
			continue
		}
		resource, err := s.resources.GetResource(ctx, booking.ResourceID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				continue
			}
			return false, err
		}
		types[booking.ResourceID] = resource.Type
	}

	return availability.UserHoldsDeskOn(bookings, types, userID, date), nil
}

func (s *BookingService) ensureUserExists(ctx context.Context, userID string) error {
	if s.users == nil {
		return nil
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("user_id", "user does not exist")
			return vErr
		}
		return err
	}
	return nil
}

// validateBookingCore checks the fields shared by both resource types and
// returns the parsed calendar date.
func validateBookingCore(input BookingInput, vErr *ValidationError) time.Time {
	if strings.TrimSpace(input.ResourceID) == "" {
		vErr.add("resource_id", "resource is required")
	}

	var date time.Time
	if strings.TrimSpace(input.Date) == "" {
		vErr.add("date", "date is required")
	} else {
		parsed, err := timeutil.ParseDate(input.Date)
		if err != nil {
			vErr.add("date", "date must be formatted YYYY-MM-DD")
		} else {
			date = parsed
		}
	}

	return date
}

func validateDeskInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Slot != nil {
		vErr.add("time_slot", "desks are booked for the whole day")
	}

	if input.Recurring {
		if len(input.RecurringDays) == 0 {
			vErr.add("recurring_days", "a recurring booking needs at least one weekday")
		}
		for _, day := range input.RecurringDays {
			if !timeutil.IsWeekdayName(day) {
				vErr.add("recurring_days", fmt.Sprintf("unknown weekday %q", day))
				break
			}
		}
	} else if len(input.RecurringDays) > 0 {
		vErr.add("recurring_days", "weekdays require the recurring flag")
	}

	return vErr
}

func validateRoomInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Recurring || len(input.RecurringDays) > 0 {
		vErr.add("recurring", "meeting rooms do not support recurring bookings")
	}

	if input.Slot == nil {
		vErr.add("time_slot", "meeting rooms require a time slot")
		return vErr
	}

	start, startErr := timeutil.ParseClock(input.Slot.Start)
	if startErr != nil {
		vErr.add("time_slot", "start must be a zero-padded HH:MM value")
	}
	end, endErr := timeutil.ParseClock(input.Slot.End)
	if endErr != nil {
		vErr.add("time_slot", "end must be a zero-padded HH:MM value")
	}
	if startErr == nil && endErr == nil && start >= end {
		vErr.add("time_slot", "start must be before end")
	}

	return vErr
}

func normalizeWeekdays(days []string) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("booking", "booking fields violate storage constraints")
		return vErr
	}
	return err
}
