package engine

import (
	"context"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

// Recorder receives engine results as they are produced.
//
// The database-backed implementation lives in pkg/db/postgres; tests
// and dry runs can use Discard or hand-written fakes.
type Recorder interface {
	// RecordRunStarted is called once per Run before its first step.
	RecordRunStarted(ctx context.Context, run domain.Run) error

	// RecordInvocation is called for each completed invocation,
	// in sequence order within its Run.
	RecordInvocation(ctx context.Context, inv domain.Invocation) error

	// RecordRunFinished is called once per Run at its terminal state
	// (Completed or Failed), with invocations filled in.
	RecordRunFinished(ctx context.Context, run domain.Run) error

	// RecordEmbedding is called for each successfully computed embedding.
	RecordEmbedding(ctx context.Context, emb domain.Embedding) error

	// RecordDiagram is called for each computed persistence diagram.
	RecordDiagram(ctx context.Context, pd domain.PersistenceDiagram) error
}

// Discard is a Recorder dropping everything.
type Discard struct{}

var _ Recorder = Discard{}

func (Discard) RecordRunStarted(context.Context, domain.Run) error          { return nil }
func (Discard) RecordInvocation(context.Context, domain.Invocation) error   { return nil }
func (Discard) RecordRunFinished(context.Context, domain.Run) error         { return nil }
func (Discard) RecordEmbedding(context.Context, domain.Embedding) error     { return nil }
func (Discard) RecordDiagram(context.Context, domain.PersistenceDiagram) error { return nil }
