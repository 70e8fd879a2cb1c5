// Package migrations embeds the encounter schema, one directory per SQL dialect.
package migrations

import "embed"

// FS contains the sqlite/ and postgres/ migration sets.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
