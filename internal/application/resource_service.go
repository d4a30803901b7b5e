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

// ResourceRepository captures the persistence operations needed by the
// resource service.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource persistence.Resource) error
	GetResource(ctx context.Context, id string) (persistence.Resource, error)
	UpdateResource(ctx context.Context, resource persistence.Resource) error
	DeleteResource(ctx context.Context, id string) error
	ListResources(ctx context.Context, mapID string) ([]persistence.Resource, error)
}

// ResourceBookingReader lists bookings for status computation.
type ResourceBookingReader interface {
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
}

// ResourceService orchestrates validation, authorization, and persistence
// for desks and meeting rooms.
type ResourceService struct {
	resources   ResourceRepository
	bookings    ResourceBookingReader
	statuses    *statusCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService wires dependencies for resource operations.
func NewResourceService(resources ResourceRepository, bookings ResourceBookingReader, idGenerator func() string, now func() time.Time) *ResourceService {
	return NewResourceServiceWithLogger(resources, bookings, idGenerator, now, nil)
}

// NewResourceServiceWithLogger constructs a resource service with a
// specified logger.
func NewResourceServiceWithLogger(resources ResourceRepository, bookings ResourceBookingReader, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResourceService{
		resources:   resources,
		bookings:    bookings,
		statuses:    newStatusCache(0, 0, now),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource validates input and persists a new resource for
// administrators.
func (s *ResourceService) CreateResource(ctx context.Context, params CreateResourceParams) (resource persistence.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource",
		"principal_id", params.Principal.UserID,
		"map_id", params.Input.MapID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeResourceInput(params.Input)
	vErr := validateResourceInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	resource = persistence.Resource{
		ID:        s.idGenerator(),
		MapID:     input.MapID,
		Name:      input.Name,
		Type:      input.Type,
		Status:    input.Status,
		Capacity:  input.Capacity,
		CreatedAt: s.now(),
	}
	resource.UpdatedAt = resource.CreatedAt

	if s.resources == nil {
		return
	}

	if err = s.resources.CreateResource(ctx, resource); err != nil {
		err = mapResourceRepoError(err)
		resource = persistence.Resource{}
		return
	}

	return
}

// UpdateResource validates input and updates an existing resource for
// administrators. A status transition to maintenance is visible to every
// subsequent availability check as soon as this returns.
func (s *ResourceService) UpdateResource(ctx context.Context, params UpdateResourceParams) (resource persistence.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.resources == nil {
		err = fmt.Errorf("resource repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource",
		"principal_id", params.Principal.UserID,
		"resource_id", params.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID, "status", string(resource.Status)).InfoContext(ctx, "resource updated")
	}()

	var existing persistence.Resource
	existing, err = s.resources.GetResource(ctx, params.ResourceID)
	if err != nil {
		err = mapResourceRepoError(err)
		return
	}

	input := normalizeResourceInput(params.Input)
	if input.Type != existing.Type {
		vErr := &ValidationError{}
		vErr.add("type", "resource type cannot be changed")
		err = vErr
		return
	}
	vErr := validateResourceInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.MapID = input.MapID
	updated.Name = input.Name
	updated.Status = input.Status
	updated.Capacity = input.Capacity
	updated.UpdatedAt = s.now()

	if err = s.resources.UpdateResource(ctx, updated); err != nil {
		err = mapResourceRepoError(err)
		return
	}

	resource = updated
	return
}

// DeleteResource removes a resource and, through the repository cascade,
// every booking referencing it.
func (s *ResourceService) DeleteResource(ctx context.Context, principal Principal, resourceID string) error {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.resources == nil {
		return fmt.Errorf("resource repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteResource",
		"principal_id", principal.UserID,
		"resource_id", resourceID,
	)

	if err := s.resources.DeleteResource(ctx, resourceID); err != nil {
		err = mapResourceRepoError(err)
		logger.ErrorContext(ctx, "failed to delete resource", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "resource deleted")
	return nil
}

// ListResources returns the resources on a map (or all resources when
// mapID is empty) for any authenticated user.
func (s *ResourceService) ListResources(ctx context.Context, principal Principal, mapID string) ([]persistence.Resource, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	if s.resources == nil {
		return nil, nil
	}

	resources, err := s.resources.ListResources(ctx, mapID)
	if err != nil {
		return nil, mapResourceRepoError(err)
	}
	return resources, nil
}

// ListResourceStatuses returns the resources on a map together with their
// computed display status for the date, feeding the floor-map view.
func (s *ResourceService) ListResourceStatuses(ctx context.Context, principal Principal, mapID string, date time.Time) ([]ResourceStatusView, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	if s.resources == nil || s.bookings == nil {
		return nil, fmt.Errorf("resource service not configured")
	}

	cacheKey := mapID + "|" + timeutil.DateKey(date)
	if views, ok := s.statuses.Get(cacheKey); ok {
		return views, nil
	}

	resources, err := s.resources.ListResources(ctx, mapID)
	if err != nil {
		return nil, mapResourceRepoError(err)
	}

	views := make([]ResourceStatusView, 0, len(resources))
	for _, resource := range resources {
		bookings, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{ResourceID: resource.ID})
		if err != nil {
			return nil, mapResourceRepoError(err)
		}
		views = append(views, ResourceStatusView{
			Resource: resource,
			Status:   string(availability.StatusOf(resource, bookings, date)),
		})
	}

	s.statuses.Store(cacheKey, views)
	return views, nil
}

func normalizeResourceInput(input ResourceInput) ResourceInput {
	input.MapID = strings.TrimSpace(input.MapID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Status == "" {
		input.Status = persistence.ResourceStatusAvailable
	}
	return input
}

func validateResourceInput(input ResourceInput) *ValidationError {
	vErr := &ValidationError{}

	if input.MapID == "" {
		vErr.add("map_id", "map is required")
	}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}

	switch input.Type {
	case persistence.ResourceTypeDesk:
		if input.Capacity != 0 {
			vErr.add("capacity", "capacity applies to meeting rooms only")
		}
	case persistence.ResourceTypeMeetingRoom:
		if input.Capacity <= 0 {
			vErr.add("capacity", "capacity must be positive")
		}
	default:
		vErr.add("type", "type must be desk or meeting_room")
	}

	switch input.Status {
	case persistence.ResourceStatusAvailable, persistence.ResourceStatusMaintenance:
	default:
		vErr.add("status", "status must be available or maintenance")
	}

	return vErr
}

func mapResourceRepoError(err error) error {
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
		vErr := &ValidationError{}
		vErr.add("map_id", "map does not exist")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	return err
}
