// Package model defines the database models for church-web authorization.
//
// This package contains GORM models for the tables this service owns. Member,
// event and other church data stays in the REST backend.
//
// # Core Models
//
//   - User: Login identity with a bcrypt password hash and role credentials
//   - PolicyVersion: Every permission policy document that was loaded
//
// # Database Schema
//
//   - users: Login identities
//   - policy_versions: Loaded policy history
//   - messages: RFC5424 audit messages (written by pkg/audit, not GORM)
package model
