// Package migrations embeds the per-dialect schema files applied by the
// migration runner.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
