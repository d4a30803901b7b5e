package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

// FloorMapRepository captures the persistence operations needed by the
// floor map service.
type FloorMapRepository interface {
	CreateFloorMap(ctx context.Context, floorMap persistence.FloorMap) error
	GetFloorMap(ctx context.Context, id string) (persistence.FloorMap, error)
	UpdateFloorMap(ctx context.Context, floorMap persistence.FloorMap) error
	DeleteFloorMap(ctx context.Context, id string) error
	ListFloorMaps(ctx context.Context) ([]persistence.FloorMap, error)
}

// FloorMapService orchestrates validation, authorization, and persistence
// for floor maps.
type FloorMapService struct {
	floorMaps   FloorMapRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewFloorMapService wires dependencies for floor map operations.
func NewFloorMapService(floorMaps FloorMapRepository, idGenerator func() string, now func() time.Time) *FloorMapService {
	return NewFloorMapServiceWithLogger(floorMaps, idGenerator, now, nil)
}

// NewFloorMapServiceWithLogger constructs a floor map service with a
// specified logger.
func NewFloorMapServiceWithLogger(floorMaps FloorMapRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *FloorMapService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &FloorMapService{floorMaps: floorMaps, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *FloorMapService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "FloorMapService", operation, attrs...)
}

// CreateFloorMap validates input and persists a new floor map for
// administrators.
func (s *FloorMapService) CreateFloorMap(ctx context.Context, params CreateFloorMapParams) (floorMap persistence.FloorMap, err error) {
	if s == nil {
		err = fmt.Errorf("FloorMapService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateFloorMap", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create floor map", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("map_id", floorMap.ID).InfoContext(ctx, "floor map created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	name := strings.TrimSpace(params.Input.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	floorMap = persistence.FloorMap{
		ID:        s.idGenerator(),
		Name:      name,
		CreatedAt: s.now(),
	}
	floorMap.UpdatedAt = floorMap.CreatedAt

	if s.floorMaps == nil {
		return
	}

	if err = s.floorMaps.CreateFloorMap(ctx, floorMap); err != nil {
		err = mapResourceRepoError(err)
		floorMap = persistence.FloorMap{}
		return
	}

	return
}

// UpdateFloorMap renames an existing floor map for administrators.
func (s *FloorMapService) UpdateFloorMap(ctx context.Context, params UpdateFloorMapParams) (floorMap persistence.FloorMap, err error) {
	if s == nil {
		err = fmt.Errorf("FloorMapService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.floorMaps == nil {
		err = fmt.Errorf("floor map repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateFloorMap",
		"principal_id", params.Principal.UserID,
		"map_id", params.MapID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update floor map", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("map_id", floorMap.ID).InfoContext(ctx, "floor map updated")
	}()

	var existing persistence.FloorMap
	existing, err = s.floorMaps.GetFloorMap(ctx, params.MapID)
	if err != nil {
		err = mapResourceRepoError(err)
		return
	}

	name := strings.TrimSpace(params.Input.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	updated := existing
	updated.Name = name
	updated.UpdatedAt = s.now()

	if err = s.floorMaps.UpdateFloorMap(ctx, updated); err != nil {
		err = mapResourceRepoError(err)
		return
	}

	floorMap = updated
	return
}

// DeleteFloorMap removes a floor map and, through the repository cascade,
// its resources and their bookings.
func (s *FloorMapService) DeleteFloorMap(ctx context.Context, principal Principal, mapID string) error {
	if s == nil {
		return fmt.Errorf("FloorMapService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.floorMaps == nil {
		return fmt.Errorf("floor map repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteFloorMap",
		"principal_id", principal.UserID,
		"map_id", mapID,
	)

	if err := s.floorMaps.DeleteFloorMap(ctx, mapID); err != nil {
		err = mapResourceRepoError(err)
		logger.ErrorContext(ctx, "failed to delete floor map", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "floor map deleted")
	return nil
}

// ListFloorMaps returns the floor map catalog for any authenticated user.
func (s *FloorMapService) ListFloorMaps(ctx context.Context, principal Principal) ([]persistence.FloorMap, error) {
	if s == nil {
		return nil, fmt.Errorf("FloorMapService is nil")
	}
	if s.floorMaps == nil {
		return nil, nil
	}

	floorMaps, err := s.floorMaps.ListFloorMaps(ctx)
	if err != nil {
		return nil, mapResourceRepoError(err)
	}
	return floorMaps, nil
}
