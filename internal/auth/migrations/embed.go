// Package migrations embeds the goose SQL migration set for the users
// table, so the binary carries its own schema with no external files to
// ship alongside it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
