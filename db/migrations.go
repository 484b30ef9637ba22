// Package db embeds the SQL schema migrations so that production builds of
// churchctl can run them without the source tree.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
