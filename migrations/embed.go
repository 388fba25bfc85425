// Package migrations embeds the Postgres schema for NeuroHub.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
