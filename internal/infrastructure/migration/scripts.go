package migration

import "embed"

// Scripts holds the versioned SQL migrations, one directory per dialect.
//
//go:embed scripts/mysql/*.sql scripts/postgres/*.sql
var Scripts embed.FS
