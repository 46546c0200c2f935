package engine

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	xe "github.com/ANUcybernetics/trajectory-tracer/pkg/errors"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
)

// DiagramBuilder derives a persistence diagram from one embedding
// trajectory. pkg/analysis provides the implementation.
type DiagramBuilder interface {
	Build(
		ctx context.Context,
		runID uuid.UUID,
		embeddingModel string,
		trajectory [][]float32,
	) (domain.PersistenceDiagram, error)
}

// Orchestrator executes the Runs of an experiment concurrently.
//
// Runs are mutually independent and proceed in parallel up to a
// configured limit; within one Run, steps stay strictly ordered because
// each step's input is the previous step's output. Every model
// (generation or embedding) gets a small pool of long-lived workers
// sized to its configured capacity; the pools are shared by all runs.
//
// A Run that fails stays Failed and is reported, never resumed. The
// orchestrator performs no retries; retry policy belongs to the caller.
type Orchestrator struct {
	registry       *models.Registry
	recorder       Recorder
	builder        DiagramBuilder
	logger         *log.Logger
	runConcurrency int
	stepTimeout    time.Duration
}

type OrchestratorOption func(*Orchestrator) *Orchestrator

// WithRunConcurrency limits how many Runs advance at the same time.
func WithRunConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) *Orchestrator {
		o.runConcurrency = n
		return o
	}
}

// WithStepTimeout bounds each generator call of every Run.
func WithStepTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) *Orchestrator {
		o.stepTimeout = d
		return o
	}
}

// WithDiagramBuilder enables persistence-diagram computation after each
// Run's embedding trajectories are complete.
func WithDiagramBuilder(b DiagramBuilder) OrchestratorOption {
	return func(o *Orchestrator) *Orchestrator {
		o.builder = b
		return o
	}
}

func WithLogger(l *log.Logger) OrchestratorOption {
	return func(o *Orchestrator) *Orchestrator {
		o.logger = l
		return o
	}
}

func NewOrchestrator(
	registry *models.Registry, recorder Recorder, options ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		registry:       registry,
		recorder:       recorder,
		logger:         log.New(io.Discard, "", 0),
		runConcurrency: 4,
	}
	for _, opt := range options {
		o = opt(o)
	}
	return o
}

// Report summarizes one experiment execution.
type Report struct {
	RunsCompleted  int
	RunsFailed     int
	FailedRuns     []uuid.UUID
	Embeddings     int
	EmbeddingsLost int
	Diagrams       int
	DiagramsAbsent int
}

// RunExperiment expands cfg into Runs and drives them all to a terminal
// state, computing embeddings for every configured embedding model and,
// when a DiagramBuilder is set, a persistence diagram per (Run,
// embedding model) pair.
//
// It returns when every Run has terminated (or ctx is done). Failed
// runs are counted in the Report, not returned as an error: only
// setup problems (invalid config, unknown models) fail the experiment
// as a whole.
func (o *Orchestrator) RunExperiment(ctx context.Context, cfg domain.ExperimentConfig) (Report, error) {
	runs, err := cfg.ExpandRuns()
	if err != nil {
		return Report{}, xe.Wrap(err)
	}

	pooled, embedPools, closeAll, err := o.buildPools(cfg)
	if err != nil {
		return Report{}, err
	}
	defer closeAll()

	report := Report{}
	reportMu := sync.Mutex{}

	sem := make(chan struct{}, o.runConcurrency)
	wg := sync.WaitGroup{}

	for _, run := range runs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return report, ctx.Err()
		}

		wg.Add(1)
		go func(run domain.Run) {
			defer wg.Done()
			defer func() { <-sem }()

			partial := o.executeRun(ctx, pooled, embedPools, cfg.EmbeddingModels, run)

			reportMu.Lock()
			defer reportMu.Unlock()
			report.RunsCompleted += partial.RunsCompleted
			report.RunsFailed += partial.RunsFailed
			report.FailedRuns = append(report.FailedRuns, partial.FailedRuns...)
			report.Embeddings += partial.Embeddings
			report.EmbeddingsLost += partial.EmbeddingsLost
			report.Diagrams += partial.Diagrams
			report.DiagramsAbsent += partial.DiagramsAbsent
		}(run)
	}

	wg.Wait()
	return report, ctx.Err()
}

// buildPools binds every model an experiment can touch to its worker
// pool: generators are wrapped into a derived registry, embedders keep
// their pools alongside.
func (o *Orchestrator) buildPools(cfg domain.ExperimentConfig) (
	*models.Registry, map[string]*workerPool, func(), error,
) {
	pooled := models.NewRegistry()
	pools := []*workerPool{}
	closeAll := func() {
		for _, p := range pools {
			p.close()
		}
	}

	seen := map[string]bool{}
	for _, network := range cfg.Networks {
		for _, name := range network {
			if seen[name] {
				continue
			}
			seen[name] = true

			entry, ok := o.registry.Generator(name)
			if !ok {
				closeAll()
				return nil, nil, nil, xe.New("model is not registered: " + name)
			}
			pool := newWorkerPool(entry.Capacity)
			pools = append(pools, pool)
			if err := pooled.AddGenerator(
				name,
				pooledGenerator{inner: entry.Generator, pool: pool},
				entry.Capacity,
			); err != nil {
				closeAll()
				return nil, nil, nil, xe.Wrap(err)
			}
		}
	}

	embedPools := map[string]*workerPool{}
	for _, name := range cfg.EmbeddingModels {
		if _, ok := embedPools[name]; ok {
			continue
		}
		entry, ok := o.registry.Embedder(name)
		if !ok {
			closeAll()
			return nil, nil, nil, xe.New("embedding model is not registered: " + name)
		}
		pool := newWorkerPool(entry.Capacity)
		pools = append(pools, pool)
		embedPools[name] = pool
	}

	return pooled, embedPools, closeAll, nil
}

// executeRun drives one Run to its terminal state, embedding its text
// invocations as they stream and building diagrams after the join
// barrier (diagrams need the full ordered trajectory, never a prefix).
func (o *Orchestrator) executeRun(
	ctx context.Context,
	pooled *models.Registry,
	embedPools map[string]*workerPool,
	embeddingModels []string,
	run domain.Run,
) Report {
	report := Report{}

	if err := o.recorder.RecordRunStarted(ctx, run); err != nil {
		o.logger.Printf("run %s: recording start failed: %s", run.ID, err)
		report.RunsFailed = 1
		report.FailedRuns = []uuid.UUID{run.ID}
		return report
	}

	options := []DriverOption{}
	if 0 < o.stepTimeout {
		options = append(options, WithDriverStepTimeout(o.stepTimeout))
	}
	stream, result := NewDriver(pooled, run, options...).Start(ctx)

	embeddings := []domain.Embedding{}
	embeddingsMu := sync.Mutex{}
	embedWg := sync.WaitGroup{}

	for inv := range stream {
		if err := o.recorder.RecordInvocation(ctx, inv); err != nil {
			o.logger.Printf("run %s: recording invocation %d failed: %s",
				run.ID, inv.SequenceNumber, err)
		}
		if inv.Output.Modality != domain.Text {
			continue
		}

		for _, embeddingModel := range embeddingModels {
			embedWg.Add(1)
			go func(inv domain.Invocation, embeddingModel string) {
				defer embedWg.Done()

				emb, err := o.embed(ctx, embedPools[embeddingModel], embeddingModel, inv)
				if err != nil {
					// fatal to this embedding only: the invocation
					// becomes a gap in the trajectory.
					o.logger.Printf("%s", err)
					embeddingsMu.Lock()
					report.EmbeddingsLost += 1
					embeddingsMu.Unlock()
					return
				}
				if err := o.recorder.RecordEmbedding(ctx, emb); err != nil {
					o.logger.Printf("run %s: recording embedding failed: %s", run.ID, err)
				}
				embeddingsMu.Lock()
				embeddings = append(embeddings, emb)
				report.Embeddings += 1
				embeddingsMu.Unlock()
			}(inv, embeddingModel)
		}
	}

	terminal := <-result
	embedWg.Wait() // join barrier: diagrams need the whole trajectory

	if err := o.recorder.RecordRunFinished(ctx, terminal.Value); err != nil {
		o.logger.Printf("run %s: recording finish failed: %s", run.ID, err)
	}

	if terminal.Err != nil {
		o.logger.Printf("run %s failed: %s", run.ID, terminal.Err)
		report.RunsFailed += 1
		report.FailedRuns = append(report.FailedRuns, run.ID)
		return report
	}
	report.RunsCompleted += 1

	if o.builder == nil {
		return report
	}
	for _, embeddingModel := range embeddingModels {
		trajectory := Trajectory(terminal.Value, embeddings, embeddingModel)
		pd, err := o.builder.Build(ctx, run.ID, embeddingModel, trajectory)
		if err != nil {
			// "diagram absent" is a valid terminal state, not an error
			// to propagate.
			o.logger.Printf("run %s: no diagram for %s: %s", run.ID, embeddingModel, err)
			report.DiagramsAbsent += 1
			continue
		}
		if err := o.recorder.RecordDiagram(ctx, pd); err != nil {
			o.logger.Printf("run %s: recording diagram failed: %s", run.ID, err)
		}
		report.Diagrams += 1
	}
	return report
}

func (o *Orchestrator) embed(
	ctx context.Context,
	pool *workerPool,
	embeddingModel string,
	inv domain.Invocation,
) (domain.Embedding, error) {
	entry, _ := o.registry.Embedder(embeddingModel)

	var vector []float32
	var err error
	startedAt := time.Now()
	poolErr := pool.do(ctx, func() {
		vector, err = entry.Embedder.Embed(ctx, inv.Output)
	})
	completedAt := time.Now()

	if poolErr != nil {
		err = poolErr
	}
	if err != nil {
		return domain.Embedding{}, &EmbeddingError{
			RunID:          inv.RunID,
			InvocationID:   inv.ID,
			SequenceNumber: inv.SequenceNumber,
			EmbeddingModel: embeddingModel,
			Cause:          err,
		}
	}

	return domain.Embedding{
		ID:             uuid.New(),
		InvocationID:   inv.ID,
		EmbeddingModel: embeddingModel,
		Vector:         vector,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}, nil
}
