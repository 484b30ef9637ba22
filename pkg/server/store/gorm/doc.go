// Package gorm stores church-web users and policy versions in postgres.
//
// UsersStore maps unique violations on users.phone to store.ErrPhoneTaken.
// PolicyStore never loads policy_text when listing versions.
package gorm
