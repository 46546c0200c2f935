// Package schema creates and migrates the database schema from
// embedded sql files, applied in lexical order and tracked in the
// "schema_version" table.
package schema

import (
	"context"
	"embed"
	"errors"
	"sort"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	kpool "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/pool"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

type pgSchema struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) db.SchemaInterface {
	return &pgSchema{pool: pool}
}

// nullSchema skips migration. For deployments where the schema is
// managed outside the process.
type nullSchema struct{}

func Null() db.SchemaInterface {
	return nullSchema{}
}

func (nullSchema) Ensure(context.Context) error { return nil }

func (s *pgSchema) version(ctx context.Context) (int, error) {
	var version *int
	err := s.pool.QueryRow(
		ctx, `select max("version") from "schema_version"`,
	).Scan(&version)
	if err != nil {
		pgErr := new(pgconn.PgError)
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
			return 0, nil
		}
		return 0, xe.Wrap(err)
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

// Ensure applies embedded migrations newer than the stored version,
// each in its own transaction.
func (s *pgSchema) Ensure(ctx context.Context) error {
	current, err := s.version(ctx)
	if err != nil {
		return err
	}

	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return xe.Wrap(err)
	}
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if _, err := s.pool.Exec(ctx, `
		create table if not exists "schema_version" ("version" int primary key)
	`); err != nil {
		return xe.Wrap(err)
	}

	for n, name := range names {
		version := n + 1
		if version <= current {
			continue
		}
		query, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return xe.Wrap(err)
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return xe.Wrap(err)
		}
		if _, err := tx.Exec(ctx, string(query)); err != nil {
			tx.Rollback(ctx)
			return xe.WrapWithNote("migration failed: "+name, err)
		}
		if _, err := tx.Exec(
			ctx, `insert into "schema_version" ("version") values ($1)`, version,
		); err != nil {
			tx.Rollback(ctx)
			return xe.Wrap(err)
		}
		if err := tx.Commit(ctx); err != nil {
			return xe.Wrap(err)
		}
	}
	return nil
}
