// Package migrations embeds the SQL files for the local cache schema.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS
