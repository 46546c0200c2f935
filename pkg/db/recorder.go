package db

import (
	"context"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
)

// recorder adapts a Database to the engine's Recorder.
type recorder struct {
	database Database
}

// NewRecorder makes engine results land in the database as they are
// produced: runs on start and finish, invocations, embeddings and
// diagrams each on completion.
func NewRecorder(database Database) engine.Recorder {
	return recorder{database: database}
}

func (r recorder) RecordRunStarted(ctx context.Context, run domain.Run) error {
	run.Status = domain.Running
	return r.database.Runs().Register(ctx, run)
}

func (r recorder) RecordInvocation(ctx context.Context, inv domain.Invocation) error {
	return r.database.Runs().AddInvocation(ctx, inv)
}

func (r recorder) RecordRunFinished(ctx context.Context, run domain.Run) error {
	return r.database.Runs().Finish(ctx, run)
}

func (r recorder) RecordEmbedding(ctx context.Context, emb domain.Embedding) error {
	return r.database.Embeddings().Register(ctx, emb)
}

func (r recorder) RecordDiagram(ctx context.Context, pd domain.PersistenceDiagram) error {
	return r.database.Diagrams().Register(ctx, pd)
}
