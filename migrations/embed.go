// Package migrations embeds the versioned schema for every supported SQL dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// FS returns the migration files of one dialect, rooted at its directory.
func FS(dialect string) (fs.FS, error) {
	return fs.Sub(files, dialect)
}
