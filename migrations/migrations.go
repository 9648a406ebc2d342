// Package migrations embeds the SQL migration files bundled at compile time.
// Single binary deployment without external file dependencies.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
