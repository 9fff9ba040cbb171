// Package migrations holds the PostgreSQL schema as goose SQL migrations.
package migrations

import "embed"

// FS contains every migration file in this directory.
//
//go:embed *.sql
var FS embed.FS
