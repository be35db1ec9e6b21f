package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Migration is one numbered pair of up/down SQL scripts.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations = mustLoadMigrations(migrationFS)

func mustLoadMigrations(fsys fs.FS) []Migration {
	all, err := loadMigrations(fsys, "migrations")
	if err != nil {
		panic(err)
	}
	return all
}

// loadMigrations reads NNNNNN_name.up.sql files from dir, each paired with its
// .down.sql, and returns them by ascending version.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	ups, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}

	var out []Migration
	seen := make(map[int]string, len(ups))
	for _, up := range ups {
		base := strings.TrimSuffix(path.Base(up), ".up.sql")
		num, name, ok := strings.Cut(base, "_")
		version, convErr := strconv.Atoi(num)
		if !ok || convErr != nil || version <= 0 {
			return nil, fmt.Errorf("migration %q: want NNNNNN_name.up.sql", up)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by %s and %s", version, prev, base)
		}
		seen[version] = base

		upSQL, err := fs.ReadFile(fsys, up)
		if err != nil {
			return nil, err
		}
		downSQL, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}
		out = append(out, Migration{Version: version, Name: name, UpScript: string(upSQL), DownScript: string(downSQL)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrations returns the embedded migrations in apply order.
func Migrations() []Migration {
	return migrations
}

func migrationByVersion(version int) (Migration, bool) {
	for _, m := range migrations {
		if m.Version == version {
			return m, true
		}
	}
	return Migration{}, false
}
