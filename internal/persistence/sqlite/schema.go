package sqlite

import (
	"context"
	"fmt"
)

// Schema statements are idempotent so Migrate can run on every startup.
// Deleting a floor map cascades to its resources and their bookings;
// deleting a user cascades to the user's bookings.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		display_name TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS floor_maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		map_id TEXT NOT NULL REFERENCES floor_maps(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('desk', 'meeting_room')),
		status TEXT NOT NULL CHECK (status IN ('available', 'maintenance')),
		capacity INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0,
		recurring_days TEXT NOT NULL DEFAULT '',
		slot_start TEXT,
		slot_end TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_resources_map ON resources(map_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_resource ON bookings(resource_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_date ON bookings(user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,
}

// Migrate creates the schema when it does not exist yet.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
