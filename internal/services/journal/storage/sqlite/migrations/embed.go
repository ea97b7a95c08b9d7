package migrations

import "embed"

// FS contains embedded SQLite migrations for the journal mirror.
//
//go:embed *.sql
var FS embed.FS
