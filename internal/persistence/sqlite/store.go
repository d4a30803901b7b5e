package sqlite

import "context"

// Store bundles the SQLite repositories behind one handle so callers can
// wire it the same way as the in-memory store.
type Store struct {
	*UserRepository
	*FloorMapRepository
	*ResourceRepository
	*BookingRepository

	pool *ConnectionPool
}

// Open connects to the database at dsn and returns a store over it.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		UserRepository:     NewUserRepository(pool),
		FloorMapRepository: NewFloorMapRepository(pool),
		ResourceRepository: NewResourceRepository(pool),
		BookingRepository:  NewBookingRepository(pool),
		pool:               pool,
	}, nil
}

// Migrate creates the schema when missing.
func (s *Store) Migrate(ctx context.Context) error {
	return s.pool.Migrate(ctx)
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
