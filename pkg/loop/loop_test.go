package loop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/loop"
)

func TestStart(t *testing.T) {
	t.Run("it repeats the task until Break", func(t *testing.T) {
		ctx := context.Background()

		actual, err := loop.Start(
			ctx, 1, func(_ context.Context, value int) (int, loop.Next) {
				value += 1
				if 10 <= value {
					return value, loop.Break(nil)
				}
				return value, loop.Continue(0)
			},
		)
		if err != nil {
			t.Error("unexpected error:", err)
		}
		if actual != 10 {
			t.Errorf("task stopped at unexpected value: %d (expected 10)", actual)
		}
	})

	t.Run("it returns the error passed to Break", func(t *testing.T) {
		ctx := context.Background()
		expectedErr := errors.New("fake error")

		actual, err := loop.Start(
			ctx, 0, func(_ context.Context, value int) (int, loop.Next) {
				if value == 3 {
					return value, loop.Break(expectedErr)
				}
				return value + 1, loop.Continue(0)
			},
		)
		if !errors.Is(err, expectedErr) {
			t.Error("expected error is not returned:", err)
		}
		if actual != 3 {
			t.Errorf("last value is not returned: %d (expected 3)", actual)
		}
	})

	t.Run("it breaks with ctx.Err when context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		_, err := loop.Start(
			ctx, 0, func(_ context.Context, value int) (int, loop.Next) {
				if value == 2 {
					cancel()
				}
				return value + 1, loop.Continue(time.Millisecond)
			},
		)
		if !errors.Is(err, context.Canceled) {
			t.Error("expected error (Canceled) is not returned:", err)
		}
	})

	t.Run("it does not call the task when context is done already", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		_, err := loop.Start(
			ctx, 0, func(_ context.Context, value int) (int, loop.Next) {
				called = true
				return value, loop.Break(nil)
			},
		)
		if !errors.Is(err, context.Canceled) {
			t.Error("expected error (Canceled) is not returned:", err)
		}
		if called {
			t.Error("task is called against done context")
		}
	})

	t.Run("it passes a deadlined context when WithTimeout is given", func(t *testing.T) {
		ctx := context.Background()
		timeout := 100 * time.Millisecond

		_, err := loop.Start(
			ctx, 0,
			func(taskCtx context.Context, value int) (int, loop.Next) {
				deadline, ok := taskCtx.Deadline()
				if !ok {
					return value, loop.Break(errors.New("context has no deadline"))
				}
				if remain := time.Until(deadline); timeout < remain {
					return value, loop.Break(errors.New("deadline is too far"))
				}
				return value, loop.Break(nil)
			},
			loop.WithTimeout(timeout),
		)
		if err != nil {
			t.Error("unexpected error:", err)
		}
	})
}
