package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

// FloorMapRepository implements persistence.FloorMapRepository on SQLite.
type FloorMapRepository struct {
	pool *ConnectionPool
}

// NewFloorMapRepository creates a SQLite backed floor map repository.
func NewFloorMapRepository(pool *ConnectionPool) *FloorMapRepository {
	return &FloorMapRepository{pool: pool}
}

// CreateFloorMap inserts a new floor map.
func (r *FloorMapRepository) CreateFloorMap(ctx context.Context, floorMap persistence.FloorMap) error {
	query := `
		INSERT INTO floor_maps (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		floorMap.ID,
		floorMap.Name,
		floorMap.CreatedAt.UTC().Format(time.RFC3339),
		floorMap.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// UpdateFloorMap updates an existing floor map.
func (r *FloorMapRepository) UpdateFloorMap(ctx context.Context, floorMap persistence.FloorMap) error {
	query := `UPDATE floor_maps SET name = ?, updated_at = ? WHERE id = ?`
	result, err := r.pool.db.ExecContext(ctx, query,
		floorMap.Name,
		floorMap.UpdatedAt.UTC().Format(time.RFC3339),
		floorMap.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetFloorMap retrieves a floor map by id.
func (r *FloorMapRepository) GetFloorMap(ctx context.Context, id string) (persistence.FloorMap, error) {
	query := `SELECT id, name, created_at, updated_at FROM floor_maps WHERE id = ?`
	return r.scanFloorMap(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListFloorMaps returns all floor maps ordered by name then id.
func (r *FloorMapRepository) ListFloorMaps(ctx context.Context) ([]persistence.FloorMap, error) {
	query := `SELECT id, name, created_at, updated_at FROM floor_maps ORDER BY name ASC, id ASC`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var floorMaps []persistence.FloorMap
	for rows.Next() {
		floorMap, err := r.scanFloorMap(rows)
		if err != nil {
			return nil, err
		}
		floorMaps = append(floorMaps, floorMap)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return floorMaps, nil
}

// DeleteFloorMap removes a floor map; the schema cascades to its resources
// and their bookings.
func (r *FloorMapRepository) DeleteFloorMap(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM floor_maps WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *FloorMapRepository) scanFloorMap(row rowScanner) (persistence.FloorMap, error) {
	var floorMap persistence.FloorMap
	var createdAt, updatedAt string

	err := row.Scan(&floorMap.ID, &floorMap.Name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.FloorMap{}, persistence.ErrNotFound
		}
		return persistence.FloorMap{}, mapError(err)
	}

	if floorMap.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.FloorMap{}, fmt.Errorf("parse created_at: %w", err)
	}
	if floorMap.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.FloorMap{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return floorMap, nil
}
