// Package migrations embeds the server schema. Each dialect has its own
// directory of goose SQL migrations with matching version numbers.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
