package store

import "context"

// HealthStore reports whether the database backing the stores is usable.
type HealthStore interface {
	// CheckConnectivity returns an error when the database cannot be reached
	// or the users table has not been migrated.
	CheckConnectivity(ctx context.Context) error
}
