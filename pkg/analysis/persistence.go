// Package analysis turns embedding trajectories into topological
// summaries: persistence diagrams and their entropy.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/analysis/homology"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
)

const defaultMaxDimension = 2

// Builder computes persistence diagrams from embedding trajectories.
//
// The underlying homology computation is delegated to a Computer;
// Builder adds the entropy per dimension and the diagram metadata.
// Building is deterministic given the trajectory, so a lost diagram
// can always be recomputed from stored embeddings.
type Builder struct {
	computer     homology.Computer
	maxDimension int
}

var _ engine.DiagramBuilder = &Builder{}

type BuilderOption func(*Builder) *Builder

// WithMaxDimension raises or lowers the highest homology dimension
// computed (default 2).
func WithMaxDimension(d int) BuilderOption {
	return func(b *Builder) *Builder {
		b.maxDimension = d
		return b
	}
}

func NewBuilder(computer homology.Computer, options ...BuilderOption) *Builder {
	b := &Builder{
		computer:     computer,
		maxDimension: defaultMaxDimension,
	}
	for _, opt := range options {
		b = opt(b)
	}
	return b
}

// Build computes the persistence diagram of one trajectory.
//
// # Args
//
// - ctx
//
// - runID: the Run the trajectory belongs to
//
// - embeddingModel: the model that produced the trajectory's vectors
//
// - trajectory: embedding vectors in sequence order
//
// # Returns
//
// - domain.PersistenceDiagram: generators and entropy per dimension.
// Dimensions where entropy is undefined are absent from Entropy.
//
// - error: when the homology computation fails. The diagram is then
// absent; callers should treat that as a terminal state of the pair,
// not retry blindly.
func (b *Builder) Build(
	ctx context.Context,
	runID uuid.UUID,
	embeddingModel string,
	trajectory [][]float32,
) (domain.PersistenceDiagram, error) {
	startedAt := time.Now()

	generators, err := b.computer.Compute(ctx, trajectory, b.maxDimension)
	if err != nil {
		return domain.PersistenceDiagram{}, err
	}

	entropy := map[int]float64{}
	for dim, gens := range generators {
		if e, ok := PersistenceEntropy(gens); ok {
			entropy[dim] = e
		}
	}

	return domain.PersistenceDiagram{
		ID:             uuid.New(),
		RunID:          runID,
		EmbeddingModel: embeddingModel,
		Generators:     generators,
		Entropy:        entropy,
		StartedAt:      startedAt,
		CompletedAt:    time.Now(),
	}, nil
}
