package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/engine"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/utils/try"
)

type memoryRecorder struct {
	mu          sync.Mutex
	started     []domain.Run
	invocations []domain.Invocation
	finished    []domain.Run
	embeddings  []domain.Embedding
	diagrams    []domain.PersistenceDiagram
}

func (r *memoryRecorder) RecordRunStarted(_ context.Context, run domain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, run)
	return nil
}

func (r *memoryRecorder) RecordInvocation(_ context.Context, inv domain.Invocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invocations = append(r.invocations, inv)
	return nil
}

func (r *memoryRecorder) RecordRunFinished(_ context.Context, run domain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, run)
	return nil
}

func (r *memoryRecorder) RecordEmbedding(_ context.Context, emb domain.Embedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings = append(r.embeddings, emb)
	return nil
}

func (r *memoryRecorder) RecordDiagram(_ context.Context, pd domain.PersistenceDiagram) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagrams = append(r.diagrams, pd)
	return nil
}

type fixedEmbedder struct {
	err error
}

func (e fixedEmbedder) Embed(_ context.Context, content domain.Output) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(content.Text)), 1}, nil
}

type trajectoryLengthBuilder struct {
	err error

	mu   sync.Mutex
	seen map[uuid.UUID][][]float32
}

func (b *trajectoryLengthBuilder) Build(
	_ context.Context, runID uuid.UUID, embeddingModel string, trajectory [][]float32,
) (domain.PersistenceDiagram, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seen == nil {
		b.seen = map[uuid.UUID][][]float32{}
	}
	b.seen[runID] = trajectory
	if b.err != nil {
		return domain.PersistenceDiagram{}, b.err
	}
	return domain.PersistenceDiagram{
		ID: uuid.New(), RunID: runID, EmbeddingModel: embeddingModel,
		Generators: map[int][]domain.BirthDeath{
			0: {{Birth: 0, Death: float64(len(trajectory))}},
		},
	}, nil
}

// countingRegistry builds a registry with one distinct-output text
// generator and one embedder.
func countingRegistry(t *testing.T, embErr error) *models.Registry {
	t.Helper()
	registry := models.NewRegistry()

	mu := sync.Mutex{}
	counter := 0
	try.To(0, registry.AddGenerator("gen", textGenerator{
		generate: func(input domain.Output, seed int) (domain.Output, error) {
			mu.Lock()
			defer mu.Unlock()
			counter += 1
			return domain.TextOutput(fmt.Sprintf("%s/%d/%d", input.Text, seed, counter)), nil
		},
	}, models.Capacity{Slots: 2})).OrFatal(t)
	try.To(0, registry.AddEmbedder("emb", fixedEmbedder{err: embErr}, models.Capacity{Slots: 2})).OrFatal(t)

	return registry
}

func TestOrchestrator_RunExperiment(t *testing.T) {
	ctx := context.Background()

	cfg := domain.ExperimentConfig{
		Networks:        []domain.Network{{"gen"}},
		Seeds:           []int{1, 2},
		Prompts:         []string{"p1", "p2", "p3"},
		EmbeddingModels: []string{"emb"},
		RunLength:       4,
	}
	runCount := 6 // 1 network x 2 seeds x 3 prompts
	invocationCount := runCount * cfg.RunLength

	t.Run("drives every run to completion with embeddings and diagrams", func(t *testing.T) {
		recorder := &memoryRecorder{}
		builder := &trajectoryLengthBuilder{}
		orchestrator := engine.NewOrchestrator(
			countingRegistry(t, nil), recorder,
			engine.WithRunConcurrency(3),
			engine.WithDiagramBuilder(builder),
		)

		report := try.To(orchestrator.RunExperiment(ctx, cfg)).OrFatal(t)

		if report.RunsCompleted != runCount || report.RunsFailed != 0 {
			t.Errorf("runs: got %d completed / %d failed, want %d / 0",
				report.RunsCompleted, report.RunsFailed, runCount)
		}
		if report.Embeddings != invocationCount || report.EmbeddingsLost != 0 {
			t.Errorf("embeddings: got %d (+%d lost), want %d",
				report.Embeddings, report.EmbeddingsLost, invocationCount)
		}
		if report.Diagrams != runCount || report.DiagramsAbsent != 0 {
			t.Errorf("diagrams: got %d (+%d absent), want %d",
				report.Diagrams, report.DiagramsAbsent, runCount)
		}

		if len(recorder.started) != runCount || len(recorder.finished) != runCount {
			t.Errorf("recorded runs: %d started, %d finished",
				len(recorder.started), len(recorder.finished))
		}
		if len(recorder.invocations) != invocationCount {
			t.Errorf("recorded invocations: got %d, want %d",
				len(recorder.invocations), invocationCount)
		}
		if len(recorder.embeddings) != invocationCount {
			t.Errorf("recorded embeddings: got %d, want %d",
				len(recorder.embeddings), invocationCount)
		}
		if len(recorder.diagrams) != runCount {
			t.Errorf("recorded diagrams: got %d, want %d",
				len(recorder.diagrams), runCount)
		}

		// diagrams see full trajectories, never a prefix
		for runID, trajectory := range builder.seen {
			if len(trajectory) != cfg.RunLength {
				t.Errorf("run %s: builder saw %d points, want %d",
					runID, len(trajectory), cfg.RunLength)
			}
		}

		for _, run := range recorder.finished {
			if run.Status != domain.Completed {
				t.Errorf("run %s finished as %s", run.ID, run.Status)
			}
			if run.StopReason == nil || run.StopReason.Kind != domain.StopLengthExhausted {
				t.Errorf("run %s: stop reason %+v", run.ID, run.StopReason)
			}
		}
	})

	t.Run("embedding failures become gaps, not experiment failures", func(t *testing.T) {
		recorder := &memoryRecorder{}
		builder := &trajectoryLengthBuilder{}
		orchestrator := engine.NewOrchestrator(
			countingRegistry(t, errors.New("embedder down")), recorder,
			engine.WithDiagramBuilder(builder),
		)

		report := try.To(orchestrator.RunExperiment(ctx, cfg)).OrFatal(t)

		if report.RunsCompleted != runCount {
			t.Errorf("runs completed: got %d, want %d", report.RunsCompleted, runCount)
		}
		if report.Embeddings != 0 || report.EmbeddingsLost != invocationCount {
			t.Errorf("embeddings: got %d (+%d lost), want 0 (+%d lost)",
				report.Embeddings, report.EmbeddingsLost, invocationCount)
		}
		// every trajectory is all gaps, so empty
		for runID, trajectory := range builder.seen {
			if len(trajectory) != 0 {
				t.Errorf("run %s: builder saw %d points, want 0", runID, len(trajectory))
			}
		}
	})

	t.Run("a failing builder leaves diagrams absent and runs completed", func(t *testing.T) {
		recorder := &memoryRecorder{}
		builder := &trajectoryLengthBuilder{err: errors.New("degenerate point cloud")}
		orchestrator := engine.NewOrchestrator(
			countingRegistry(t, nil), recorder,
			engine.WithDiagramBuilder(builder),
		)

		report := try.To(orchestrator.RunExperiment(ctx, cfg)).OrFatal(t)

		if report.RunsCompleted != runCount {
			t.Errorf("runs completed: got %d, want %d", report.RunsCompleted, runCount)
		}
		if report.Diagrams != 0 || report.DiagramsAbsent != runCount {
			t.Errorf("diagrams: got %d (+%d absent), want 0 (+%d absent)",
				report.Diagrams, report.DiagramsAbsent, runCount)
		}
		if len(recorder.diagrams) != 0 {
			t.Errorf("no diagram should be recorded, got %d", len(recorder.diagrams))
		}
	})

	t.Run("without a builder no diagram is attempted", func(t *testing.T) {
		recorder := &memoryRecorder{}
		orchestrator := engine.NewOrchestrator(countingRegistry(t, nil), recorder)

		report := try.To(orchestrator.RunExperiment(ctx, cfg)).OrFatal(t)

		if report.Diagrams != 0 || report.DiagramsAbsent != 0 {
			t.Errorf("diagrams: got %d (+%d absent), want none", report.Diagrams, report.DiagramsAbsent)
		}
	})

	t.Run("a run failure is reported, the rest of the experiment continues", func(t *testing.T) {
		registry := models.NewRegistry()
		mu := sync.Mutex{}
		counter := 0
		try.To(0, registry.AddGenerator("gen", textGenerator{
			generate: func(input domain.Output, seed int) (domain.Output, error) {
				if seed == 2 {
					return domain.Output{}, errors.New("model exploded")
				}
				mu.Lock()
				defer mu.Unlock()
				counter += 1
				return domain.TextOutput(fmt.Sprintf("%s/%d", input.Text, counter)), nil
			},
		}, models.Capacity{})).OrFatal(t)
		try.To(0, registry.AddEmbedder("emb", fixedEmbedder{}, models.Capacity{})).OrFatal(t)

		recorder := &memoryRecorder{}
		orchestrator := engine.NewOrchestrator(registry, recorder)

		report := try.To(orchestrator.RunExperiment(ctx, cfg)).OrFatal(t)

		// seeds 1 and 2, three prompts each: seed 2's runs all fail
		if report.RunsCompleted != 3 || report.RunsFailed != 3 {
			t.Errorf("runs: got %d completed / %d failed, want 3 / 3",
				report.RunsCompleted, report.RunsFailed)
		}
		if len(report.FailedRuns) != 3 {
			t.Errorf("failed run ids: got %d, want 3", len(report.FailedRuns))
		}

		failedFinished := 0
		for _, run := range recorder.finished {
			if run.Status == domain.Failed {
				failedFinished += 1
				if run.Error == "" {
					t.Errorf("run %s: failed without an error message", run.ID)
				}
			}
		}
		if failedFinished != 3 {
			t.Errorf("failed runs recorded: got %d, want 3", failedFinished)
		}
	})

	t.Run("an unknown model in a network fails the experiment upfront", func(t *testing.T) {
		orchestrator := engine.NewOrchestrator(countingRegistry(t, nil), &memoryRecorder{})

		bad := cfg
		bad.Networks = []domain.Network{{"gen", "missing"}}
		if _, err := orchestrator.RunExperiment(ctx, bad); err == nil {
			t.Error("an error should be reported for an unknown model")
		}
	})

	t.Run("an unknown embedding model fails the experiment upfront", func(t *testing.T) {
		orchestrator := engine.NewOrchestrator(countingRegistry(t, nil), &memoryRecorder{})

		bad := cfg
		bad.EmbeddingModels = []string{"missing"}
		if _, err := orchestrator.RunExperiment(ctx, bad); err == nil {
			t.Error("an error should be reported for an unknown embedding model")
		}
	})

	t.Run("an invalid config fails the experiment upfront", func(t *testing.T) {
		orchestrator := engine.NewOrchestrator(countingRegistry(t, nil), &memoryRecorder{})

		bad := cfg
		bad.RunLength = 0
		if _, err := orchestrator.RunExperiment(ctx, bad); err == nil {
			t.Error("an error should be reported for an invalid config")
		}
	})
}
