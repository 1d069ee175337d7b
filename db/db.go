// Package db holds the embedded database migrations.
package db

import "embed"

// Migrations contains the SQL migration files for the health schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS
