// Package migrations embeds the SQL schema migrations run against the
// PostgreSQL backend via golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
