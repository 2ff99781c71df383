// Package migrations embeds the stats schema for golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
