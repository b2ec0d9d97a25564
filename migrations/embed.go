// Package migrations embeds the SQL schema for the synced read models and
// chat tables. The migrate binary applies them with golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
