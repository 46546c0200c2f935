// Package homology defines the contract of the external persistent-
// homology computation, and a subprocess-backed implementation.
package homology

import (
	"context"
	"fmt"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
)

// Computer computes persistent homology of a point cloud.
//
// The result maps each homology dimension 0..maxDimension to its
// birth/death pairs. Death is math.Inf(1) for essential classes.
// Compute is a pure function of the point set: point order is
// irrelevant and repeated calls return equal results.
type Computer interface {
	Compute(ctx context.Context, points [][]float32, maxDimension int) (map[int][]domain.BirthDeath, error)
}

// Error reports a failed homology computation (degenerate or empty
// point cloud, broken backend). The corresponding diagram is absent;
// callers treat that as a valid terminal state.
type Error struct {
	Points int
	Cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("homology computation failed over %d points: %s", e.Points, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
