// Package migrations embeds the SQL schema files so both the server
// and the migrate command ship them inside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
