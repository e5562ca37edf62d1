// Package schema embeds and applies the DDL for postgres and clickhouse
package schema

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/store"
)

//go:embed postgres/*.sql clickhouse/*.sql
var files embed.FS

// Apply runs every postgres file in name order; the DDL is idempotent
func Apply(ctx context.Context, q store.RowQuerier) error {
	return each("postgres", func(name, sql string) error {
		if _, err := q.Exec(ctx, sql); err != nil {
			return perr.FromPostgresf(err, "apply %s", name)
		}
		return nil
	})
}

// ApplyClickhouse creates the event tables
func ApplyClickhouse(ctx context.Context, c store.Clickhouse) error {
	return each("clickhouse", func(name, sql string) error {
		return perr.WrapIf(c.Exec(ctx, sql), perr.ErrorCodeDB, "apply "+name)
	})
}

func each(dir string, fn func(name, sql string) error) error {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := files.ReadFile(dir + "/" + n)
		if err != nil {
			return err
		}
		if err := fn(n, string(b)); err != nil {
			return err
		}
	}
	return nil
}
