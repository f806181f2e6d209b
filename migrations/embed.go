// Package migrations holds the SQL schema for each supported database dialect.
package migrations

import "embed"

// FS contains sqlite/, postgres/ and mysql/ migration files
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
