package loop

import (
	"context"
	"fmt"
	"time"
)

type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}
	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Continue continues the loop.
//
// # Args
//
// - interval: sleep before starting the next task.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break breaks the loop.
//
// # Args
//
// - err: to break with error, set a non-nil value.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is one iteration of a loop driven by Start.
//
// It receives a (sub-)context and the value from the previous iteration,
// and returns the next value together with Continue or Break.
type Task[T any] func(context.Context, T) (T, Next)

// Start runs task in a loop.
//
// The task returns (new value, Next). On Continue(interval), the task is
// called again with the new value after the interval elapses (can be 0).
// On Break(err), the loop stops and Start returns. The zero value (Next{})
// equals Continue(0).
//
// # Example
//
// count 1 to 10:
//
//	Start(ctx, 1, func(_ context.Context, value int) (int, Next) {
//		value += 1
//		if 10 <= value {
//			return value, Break(nil)
//		}
//		return value, Continue(0)
//	})
//
// # Args
//
// - ctx: when this context is done, the loop breaks with ctx.Err().
//
// - init: the task is called as task(ctx, init) the first time.
//
// - task: task receiving (context, last value), returning (new value, Next).
//
// # Returns
//
// - T: the value the task returned last.
// This value is returned whether or not an error is returned with it.
//
// - error: error passed to Break(error), or ctx.Err() on cancellation.
// It is nil when the loop breaks with Break(nil).
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		interval := 0 * time.Nanosecond

		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			ctx := lc.ctx
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		} else {
			value = v
			interval = n.interval
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			// shutting down has priority over the timer.
			if !timer.Stop() {
				<-timer.C // drain. see: time.Timer.Stop's document
			}
			return value, ctx.Err()

		case <-timer.C:
			continue
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// WithTimeout sets timeout per iteration.
//
// The timeout is set on the context.Context passed to the task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}
