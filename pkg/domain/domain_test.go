package domain_test

import (
	"testing"
	"time"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/pointer"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

func TestNetwork(t *testing.T) {
	t.Run("it cycles over its models", func(t *testing.T) {
		network := domain.Network{"t2i", "i2t"}

		for seq, expected := range []string{"t2i", "i2t", "t2i", "i2t", "t2i"} {
			if actual := network.ModelAt(seq); actual != expected {
				t.Errorf("model at %d: %s (expected %s)", seq, actual, expected)
			}
		}
	})

	t.Run("a single-model network always selects that model", func(t *testing.T) {
		network := domain.Network{"echo"}
		for seq := 0; seq < 5; seq++ {
			if actual := network.ModelAt(seq); actual != "echo" {
				t.Errorf("model at %d: %s (expected echo)", seq, actual)
			}
		}
	})
}

func TestNewRun(t *testing.T) {
	t.Run("it rejects an empty network", func(t *testing.T) {
		if _, err := domain.NewRun(domain.Network{}, 42, "prompt", 10); err == nil {
			t.Error("empty network is accepted")
		}
	})

	t.Run("it rejects non-positive max length", func(t *testing.T) {
		if _, err := domain.NewRun(domain.Network{"m"}, 42, "prompt", 0); err == nil {
			t.Error("max length 0 is accepted")
		}
	})

	t.Run("it starts pending with a fresh id", func(t *testing.T) {
		run := try.To(domain.NewRun(domain.Network{"m"}, 42, "prompt", 10)).OrFatal(t)
		if run.Status != domain.Pending {
			t.Errorf("new run is not pending: %s", run.Status)
		}
		other := try.To(domain.NewRun(domain.Network{"m"}, 42, "prompt", 10)).OrFatal(t)
		if run.ID == other.ID {
			t.Error("two runs share an id")
		}
	})
}

func TestRunIsComplete(t *testing.T) {
	newRun := func(t *testing.T, maxLength int) domain.Run {
		t.Helper()
		return try.To(domain.NewRun(domain.Network{"m"}, 1, "p", maxLength)).OrFatal(t)
	}

	t.Run("a run without invocations is not complete", func(t *testing.T) {
		run := newRun(t, 3)
		if run.IsComplete() {
			t.Error("empty run reports complete")
		}
	})

	t.Run("a run with final invocation output is complete", func(t *testing.T) {
		run := newRun(t, 2)
		run.Invocations = []domain.Invocation{
			{SequenceNumber: 0, Output: domain.TextOutput("a")},
			{SequenceNumber: 1, Output: domain.TextOutput("b")},
		}
		if !run.IsComplete() {
			t.Error("fully-invoked run reports incomplete")
		}
	})

	t.Run("a run missing the final invocation is not complete", func(t *testing.T) {
		run := newRun(t, 3)
		run.Invocations = []domain.Invocation{
			{SequenceNumber: 0, Output: domain.TextOutput("a")},
		}
		if run.IsComplete() {
			t.Error("truncated run reports complete")
		}
	})

	t.Run("a run stopped on duplicate is complete regardless of length", func(t *testing.T) {
		run := newRun(t, 10)
		run.Invocations = []domain.Invocation{
			{SequenceNumber: 0, Output: domain.TextOutput("a")},
			{SequenceNumber: 1, Output: domain.TextOutput("a")},
		}
		run.StopReason = pointer.Ref(domain.StopReason{
			Kind: domain.StopDuplicate, LoopLength: 1,
		})
		if !run.IsComplete() {
			t.Error("duplicate-stopped run reports incomplete")
		}
	})
}

func TestInvocationDuration(t *testing.T) {
	t.Run("it is the span between start and completion", func(t *testing.T) {
		begin := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		inv := domain.Invocation{
			StartedAt:   begin,
			CompletedAt: begin.Add(1500 * time.Millisecond),
		}
		if inv.Duration() != 1500*time.Millisecond {
			t.Errorf("unexpected duration: %s", inv.Duration())
		}
	})

	t.Run("it is zero while incomplete", func(t *testing.T) {
		inv := domain.Invocation{StartedAt: time.Now()}
		if inv.Duration() != 0 {
			t.Errorf("incomplete invocation has non-zero duration: %s", inv.Duration())
		}
	})
}
