// Package migrations embeds the versioned SQL migration files for each
// storage backend.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
