// Package store provides storage abstractions for the church-web server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// The gorm subpackage implements them on postgres; tests use mocks.
//
// # Available Stores
//
//   - UsersStore: Login identities (lookup by phone, create)
//   - PolicyStore: History of loaded permission policies
//   - HealthStore: Database connectivity checks
//
// # Usage
//
//	users := gorm.NewUsersStore(db)
//	user, err := users.FindUserByPhone(ctx, phone)
//	if err != nil {
//	    if errors.Is(err, store.ErrUserNotFound) {
//	        // Handle not found
//	    }
//	}
package store
