package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

// Trajectory builds the ordered embedding-vector trajectory of one Run
// under one embedding model.
//
// Only invocations that (a) produced text output and (b) have a
// completed Embedding for exactly embeddingModel contribute, in
// increasing sequence order. Image invocations are excluded even when
// embeddings were stored for them erroneously. Invocations whose
// embedding failed are simply absent (a gap, not a zero vector).
//
// A Run with no eligible invocations yields an empty trajectory.
func Trajectory(run domain.Run, embeddings []domain.Embedding, embeddingModel string) [][]float32 {
	byInvocation := map[uuid.UUID]domain.Embedding{}
	for _, emb := range embeddings {
		if emb.EmbeddingModel == embeddingModel && len(emb.Vector) != 0 {
			byInvocation[emb.InvocationID] = emb
		}
	}

	ordered := make([]domain.Invocation, len(run.Invocations))
	copy(ordered, run.Invocations)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	trajectory := [][]float32{}
	for _, inv := range ordered {
		if inv.Output.Modality != domain.Text {
			continue
		}
		emb, ok := byInvocation[inv.ID]
		if !ok {
			continue
		}
		trajectory = append(trajectory, emb.Vector)
	}
	return trajectory
}
