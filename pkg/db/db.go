// Package db declares the persistence contracts of the tracer.
//
// The postgres implementation lives in pkg/db/postgres; pkg/db/mocks
// has hand-written fakes for handler tests.
package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

var (
	// ErrMissing: requested record does not exist.
	ErrMissing = errors.New("missing")

	// ErrAlreadyExists: a record with the same identity is stored already.
	ErrAlreadyExists = errors.New("already exists")
)

// RunFindQuery filters runs. Zero fields match everything.
type RunFindQuery struct {
	// Status limits to runs in any of these states.
	Status []domain.RunStatus

	// Model limits to runs whose network contains this model.
	Model string
}

type RunInterface interface {
	// Register stores a new Run (without invocations).
	//
	// It causes ErrAlreadyExists when the run id is taken.
	Register(ctx context.Context, run domain.Run) error

	// AddInvocation appends one invocation to its Run.
	AddInvocation(ctx context.Context, inv domain.Invocation) error

	// Finish stores the terminal state of a Run:
	// status, stop reason and error message.
	//
	// Invocations are stored via AddInvocation, not here.
	Finish(ctx context.Context, run domain.Run) error

	// Get retrieves runs by id, invocations included in sequence order.
	//
	// Missing ids are simply absent from the result, not an error.
	Get(ctx context.Context, runIds []uuid.UUID) (map[uuid.UUID]domain.Run, error)

	// Find lists ids of runs matching the query, oldest first.
	Find(ctx context.Context, query RunFindQuery) ([]uuid.UUID, error)
}

type EmbeddingInterface interface {
	// Register stores one embedding.
	//
	// It causes ErrAlreadyExists when the (invocation, embedding model)
	// pair is stored already.
	Register(ctx context.Context, emb domain.Embedding) error

	// ByRun retrieves all embeddings over a run's invocations,
	// in invocation sequence order.
	ByRun(ctx context.Context, runId uuid.UUID) ([]domain.Embedding, error)
}

type DiagramInterface interface {
	// Register stores one persistence diagram, replacing a previous
	// diagram of the same (run, embedding model) pair if any.
	// Diagrams are derived values; recomputation overwrites.
	Register(ctx context.Context, pd domain.PersistenceDiagram) error

	// ByRun retrieves the diagrams of a run, one per embedding model.
	ByRun(ctx context.Context, runId uuid.UUID) ([]domain.PersistenceDiagram, error)
}

type SchemaInterface interface {
	// Ensure brings the database schema up to date.
	Ensure(ctx context.Context) error
}

type Database interface {
	Runs() RunInterface
	Embeddings() EmbeddingInterface
	Diagrams() DiagramInterface
	Schema() SchemaInterface

	Close() error
}
