// Package migrations embeds the goose SQL migrations.
//
// Files are named YYYYMMDDHHMMSS_description.sql and applied in order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
