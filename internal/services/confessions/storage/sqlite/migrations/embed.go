package migrations

import "embed"

// FS contains embedded SQLite migrations for confession storage.
//
//go:embed *.sql
var FS embed.FS
