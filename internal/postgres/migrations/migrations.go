// Package migrations embeds the SQL schema files applied by the
// `redbot migrate` command, in lexical order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Files lists the migrations in the order they must be applied.
var Files = []string{
	"001_create_tasks.sql",
	"002_create_accounts.sql",
	"003_create_execution_logs.sql",
}
