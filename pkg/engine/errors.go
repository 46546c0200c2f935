package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerationError reports a failed (or modality-mismatched) call to an
// external generator. It is fatal to the enclosing Run: the Run moves
// to Failed and is never resumed by the engine.
type GenerationError struct {
	RunID          uuid.UUID
	SequenceNumber int
	Model          string
	Cause          error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf(
		"generation failed: run %s, sequence %d, model %s: %s",
		e.RunID, e.SequenceNumber, e.Model, e.Cause,
	)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// EmbeddingError reports a failed call to an external embedder.
// It is fatal to that Embedding only: the Run stays valid and the
// invocation becomes a gap in the embedding trajectory.
type EmbeddingError struct {
	RunID          uuid.UUID
	InvocationID   uuid.UUID
	SequenceNumber int
	EmbeddingModel string
	Cause          error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf(
		"embedding failed: run %s, sequence %d, embedder %s: %s",
		e.RunID, e.SequenceNumber, e.EmbeddingModel, e.Cause,
	)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}
