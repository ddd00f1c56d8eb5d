// Package migrations contains embedded SQL migrations applied with goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
