package engine

import (
	"context"
	"time"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/loop"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/promise"
)

// Driver advances one Run from Pending to a terminal state:
//
//	Pending -> Running -> Completed(length) | Completed(duplicate) | Failed
//
// Completed invocations stream over a channel as they happen, in
// sequence order, so a consumer can process them incrementally.
// The sequence is not restartable: replaying a Run re-executes the
// external generators.
type Driver struct {
	stepper     *Stepper
	run         domain.Run
	stepTimeout time.Duration
}

type DriverOption func(*Driver) *Driver

// WithDriverStepTimeout bounds each single generator call. When the timeout
// elapses, the Run fails and no further steps execute.
func WithDriverStepTimeout(d time.Duration) DriverOption {
	return func(drv *Driver) *Driver {
		drv.stepTimeout = d
		return drv
	}
}

func NewDriver(registry *models.Registry, run domain.Run, options ...DriverOption) *Driver {
	drv := &Driver{
		stepper: NewStepper(registry),
		run:     run,
	}
	for _, opt := range options {
		drv = opt(drv)
	}
	return drv
}

type driveState struct {
	run      domain.Run
	prev     *domain.Invocation
	detector *CycleDetector
}

// Start begins advancing the run.
//
// The returned channel yields each completed invocation in sequence
// order and is closed when the run reaches a terminal state. The
// promise then resolves with the terminal Run (Status, StopReason and
// Invocations filled in); on failure Err carries the *GenerationError
// and Value still holds the Run with its already-completed invocations.
//
// A consumer that stops reading early must cancel ctx to release the
// producer. Invocations delivered before cancellation stay valid.
func (d *Driver) Start(ctx context.Context) (<-chan domain.Invocation, promise.Promise[domain.Run]) {
	stream := make(chan domain.Invocation)

	result := promise.Go(func() (domain.Run, error) {
		defer close(stream)

		run := d.run
		run.Status = domain.Running

		options := []loop.LoopOption{}
		if 0 < d.stepTimeout {
			options = append(options, loop.WithTimeout(d.stepTimeout))
		}

		state, err := loop.Start(
			ctx,
			driveState{run: run, detector: NewCycleDetector(run.MaxLength)},
			func(stepCtx context.Context, state driveState) (driveState, loop.Next) {
				inv, err := d.stepper.Step(stepCtx, state.run, state.prev)
				if err != nil {
					return state, loop.Break(err)
				}

				hash, err := OutputHash(inv.Output)
				if err != nil {
					return state, loop.Break(&GenerationError{
						RunID:          state.run.ID,
						SequenceNumber: inv.SequenceNumber,
						Model:          inv.Model,
						Cause:          err,
					})
				}
				decision := state.detector.Observe(inv.SequenceNumber, hash)

				state.run.Invocations = append(state.run.Invocations, inv)
				state.prev = &inv

				select {
				case stream <- inv:
				case <-ctx.Done():
					return state, loop.Break(ctx.Err())
				}

				if decision.Stop {
					state.run.Status = domain.Completed
					reason := decision.Reason
					state.run.StopReason = &reason
					return state, loop.Break(nil)
				}
				return state, loop.Continue(0)
			},
			options...,
		)

		if err != nil {
			state.run.Status = domain.Failed
			state.run.Error = err.Error()
			return state.run, err
		}
		return state.run, nil
	})

	return stream, result
}
