// Package pool narrows *pgxpool.Pool to the query surface the tracer
// uses, so table packages can be exercised against fakes.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer is the query surface shared by pools and transactions.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Pool interface {
	Queryer
	Begin(ctx context.Context) (Tx, error)
	Close()
}

type wrapped struct {
	*pgxpool.Pool
}

// Wrap adapts a pgx pool to the Pool interface.
func Wrap(p *pgxpool.Pool) Pool {
	return wrapped{Pool: p}
}

func (w wrapped) Begin(ctx context.Context) (Tx, error) {
	tx, err := w.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
