// Package migrations embeds the SQL migrations applied by goose on startup
// when the Postgres user store is selected.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
