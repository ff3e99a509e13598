// Package sql holds the embedded store schema, applied in filename order.
package sql

import "embed"

//go:embed schema/*.sql
var Schema embed.FS
