package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
)

// Stepper produces the next invocation of a Run: it selects the model
// cyclically, resolves the input from the previous invocation (or the
// initial prompt at sequence 0), and calls the external generator.
type Stepper struct {
	registry *models.Registry
}

func NewStepper(registry *models.Registry) *Stepper {
	return &Stepper{registry: registry}
}

// Step invokes the generator for the next sequence position of run.
//
// prev is the immediately preceding invocation, or nil at the start of
// the run. Timestamps are recorded around the external call.
//
// Failures (unknown model, generator error, output modality mismatched
// with the model's declared modality) return a *GenerationError and no
// invocation: the failure is fatal to the Run and nothing partial is
// kept.
func (s *Stepper) Step(ctx context.Context, run domain.Run, prev *domain.Invocation) (domain.Invocation, error) {
	sequenceNumber := 0
	input := domain.TextOutput(run.InitialPrompt)
	if prev != nil {
		sequenceNumber = prev.SequenceNumber + 1
		input = prev.Output
	}

	model := run.Network.ModelAt(sequenceNumber)
	entry, ok := s.registry.Generator(model)
	if !ok {
		return domain.Invocation{}, &GenerationError{
			RunID:          run.ID,
			SequenceNumber: sequenceNumber,
			Model:          model,
			Cause:          xe.New("model is not registered"),
		}
	}

	startedAt := time.Now()
	output, err := entry.Generator.Generate(ctx, input, run.Seed)
	completedAt := time.Now()

	if err != nil {
		return domain.Invocation{}, &GenerationError{
			RunID:          run.ID,
			SequenceNumber: sequenceNumber,
			Model:          model,
			Cause:          err,
		}
	}
	if declared := entry.Generator.Modality(); output.Modality != declared {
		return domain.Invocation{}, &GenerationError{
			RunID:          run.ID,
			SequenceNumber: sequenceNumber,
			Model:          model,
			Cause: xe.New(fmt.Sprintf(
				"output modality %s does not match the declared %s",
				output.Modality, declared,
			)),
		}
	}

	return domain.Invocation{
		ID:             uuid.New(),
		RunID:          run.ID,
		Model:          model,
		SequenceNumber: sequenceNumber,
		Seed:           run.Seed,
		Output:         output,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}, nil
}
