package migrations

import "embed"

// FS contains embedded SQLite migrations for place cache storage.
//
//go:embed *.sql
var FS embed.FS
