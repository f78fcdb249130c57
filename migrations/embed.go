// Package migrations embeds the PostgreSQL schema migrations so the server
// binary can apply them without the SQL files on disk.
package migrations

import "embed"

// FS holds every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
