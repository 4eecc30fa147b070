// Package migrations holds the schema for the sqlite store.
//
// Files are named NNN_description.up.sql and applied in version order;
// the matching .down.sql undoes one step by hand when needed.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
