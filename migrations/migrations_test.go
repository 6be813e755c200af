package migrations

import (
	"errors"
	"io/fs"
	"os"
	"testing"
)

func versions(t *testing.T, dialect string) []uint {
	t.Helper()
	src, err := Source(dialect, "")
	if err != nil {
		t.Fatalf("%s source: %v", dialect, err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		t.Fatalf("%s first: %v", dialect, err)
	}
	out := []uint{v}
	for {
		v, err = src.Next(v)
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
			return out
		}
		if err != nil {
			t.Fatalf("%s next: %v", dialect, err)
		}
		out = append(out, v)
	}
}

func TestDialectsShareVersions(t *testing.T) {
	pg := versions(t, DialectPostgres)
	lite := versions(t, DialectSQLite)
	if len(pg) != len(lite) {
		t.Fatalf("postgres %v vs sqlite %v", pg, lite)
	}
	for i := range pg {
		if pg[i] != lite[i] {
			t.Fatalf("postgres %v vs sqlite %v", pg, lite)
		}
	}
	if pg[len(pg)-1] != 2 {
		t.Fatalf("latest version = %d, want 2", pg[len(pg)-1])
	}
}

func TestEveryVersionHasDown(t *testing.T) {
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		src, err := Source(dialect, "")
		if err != nil {
			t.Fatalf("source: %v", err)
		}
		for _, v := range versions(t, dialect) {
			r, _, err := src.ReadDown(v)
			if err != nil {
				t.Fatalf("%s version %d has no down migration: %v", dialect, v, err)
			}
			r.Close()
		}
		src.Close()
	}
}
