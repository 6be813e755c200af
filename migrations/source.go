package migrations

import (
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Source opens the migration source for dialect. An empty dir selects the
// embedded files; otherwise SQL files are read from dir on disk.
func Source(dialect, dir string) (source.Driver, error) {
	if dir != "" {
		return (&file.File{}).Open(fmt.Sprintf("file://%s", filepath.ToSlash(dir)))
	}
	fsys, err := FS(dialect)
	if err != nil {
		return nil, err
	}
	return iofs.New(fsys, ".")
}
