// Package middleware provides the HTTP middleware used by the church-web
// server: bearer token authentication and per-resource permission checks.
package middleware
