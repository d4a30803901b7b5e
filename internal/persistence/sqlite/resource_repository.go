package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository on SQLite.
type ResourceRepository struct {
	pool *ConnectionPool
}

// NewResourceRepository creates a SQLite backed resource repository.
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// CreateResource inserts a new resource.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	query := `
		INSERT INTO resources (id, map_id, name, type, status, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		resource.ID,
		resource.MapID,
		resource.Name,
		string(resource.Type),
		string(resource.Status),
		resource.Capacity,
		resource.CreatedAt.UTC().Format(time.RFC3339),
		resource.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// UpdateResource updates an existing resource.
func (r *ResourceRepository) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	query := `
		UPDATE resources
		SET map_id = ?, name = ?, type = ?, status = ?, capacity = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		resource.MapID,
		resource.Name,
		string(resource.Type),
		string(resource.Status),
		resource.Capacity,
		resource.UpdatedAt.UTC().Format(time.RFC3339),
		resource.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetResource retrieves a resource by id.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	query := `
		SELECT id, map_id, name, type, status, capacity, created_at, updated_at
		FROM resources
		WHERE id = ?
	`
	return r.scanResource(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListResources returns resources, restricted to a floor map when mapID is
// non-empty, ordered by name then id.
func (r *ResourceRepository) ListResources(ctx context.Context, mapID string) ([]persistence.Resource, error) {
	query := `
		SELECT id, map_id, name, type, status, capacity, created_at, updated_at
		FROM resources
	`
	args := []any{}
	if mapID != "" {
		query += " WHERE map_id = ?"
		args = append(args, mapID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var resources []persistence.Resource
	for rows.Next() {
		resource, err := r.scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

// DeleteResource removes a resource; the schema cascades to its bookings.
func (r *ResourceRepository) DeleteResource(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *ResourceRepository) scanResource(row rowScanner) (persistence.Resource, error) {
	var resource persistence.Resource
	var resourceType, status, createdAt, updatedAt string

	err := row.Scan(
		&resource.ID,
		&resource.MapID,
		&resource.Name,
		&resourceType,
		&status,
		&resource.Capacity,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Resource{}, persistence.ErrNotFound
		}
		return persistence.Resource{}, mapError(err)
	}

	resource.Type = persistence.ResourceType(resourceType)
	resource.Status = persistence.ResourceStatus(status)
	if resource.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("parse created_at: %w", err)
	}
	if resource.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Resource{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return resource, nil
}
