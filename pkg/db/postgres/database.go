// Package postgres binds the table packages into one db.Database
// backed by a pgx connection pool.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/db"
	kpgdiagram "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/diagram"
	kpgembedding "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/embedding"
	kpool "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/pool"
	kpgrun "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/run"
	kpgschema "github.com/ANUcybernetics/trajectory-tracer/pkg/db/postgres/schema"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
)

type tracerDBPostgres struct {
	pool       kpool.Pool
	runs       db.RunInterface
	embeddings db.EmbeddingInterface
	diagrams   db.DiagramInterface
	schema     db.SchemaInterface
}

type Config struct {
	// ManageSchema: apply embedded migrations on startup.
	ManageSchema bool
}

func DefaultConfig() Config {
	return Config{ManageSchema: true}
}

type Option func(*Config) *Config

// WithExternalSchema leaves the schema to outside management.
func WithExternalSchema() Option {
	return func(c *Config) *Config {
		c.ManageSchema = false
		return c
	}
}

func New(ctx context.Context, url string, options ...Option) (db.Database, error) {
	pgpool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	p := kpool.Wrap(pgpool)
	schema := kpgschema.Null()
	if c.ManageSchema {
		schema = kpgschema.New(p)
	}

	return &tracerDBPostgres{
		pool:       p,
		runs:       kpgrun.New(p),
		embeddings: kpgembedding.New(p),
		diagrams:   kpgdiagram.New(p),
		schema:     schema,
	}, nil
}

func (t *tracerDBPostgres) Runs() db.RunInterface             { return t.runs }
func (t *tracerDBPostgres) Embeddings() db.EmbeddingInterface { return t.embeddings }
func (t *tracerDBPostgres) Diagrams() db.DiagramInterface     { return t.diagrams }
func (t *tracerDBPostgres) Schema() db.SchemaInterface        { return t.schema }

func (t *tracerDBPostgres) Close() error {
	t.pool.Close()
	return nil
}
