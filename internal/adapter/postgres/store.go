// Package postgres implements database.Store against PostgreSQL via pgx/v5.
// Queries are split per aggregate into store_<entity>.go files, following
// the same layout the teacher used for its own Store.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
