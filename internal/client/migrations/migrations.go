// Package migrations embeds the client's local state schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
