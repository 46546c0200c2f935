package engine

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ANUcybernetics/trajectory-tracer/pkg/domain"
	"github.com/ANUcybernetics/trajectory-tracer/pkg/models"
)

// workerPool serializes access to one model.
//
// Each model is a singleton, expensive-to-load resource: a fixed number
// of long-lived workers (capacity slots) take jobs from a channel, so
// the model is reused across invocations instead of reloaded per call.
// An optional rate limiter additionally throttles job admission.
type workerPool struct {
	jobs    chan func()
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

func newWorkerPool(capacity models.Capacity) *workerPool {
	p := &workerPool{
		jobs: make(chan func()),
	}
	if 0 < capacity.RatePerSecond {
		p.limiter = rate.NewLimiter(rate.Limit(capacity.RatePerSecond), 1)
	}

	slots := capacity.Slots
	if slots <= 0 {
		slots = 1
	}
	for i := 0; i < slots; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// do runs f on one of the pool's workers and waits for it to finish.
// It returns ctx.Err() when the context is done before a worker is free.
func (p *workerPool) do(ctx context.Context, f func()) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	select {
	case p.jobs <- func() {
		defer close(done)
		f()
	}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close releases the workers. Jobs already admitted still finish.
func (p *workerPool) close() {
	close(p.jobs)
	p.wg.Wait()
}

// pooledGenerator routes Generate calls of a registered generator
// through its model's worker pool.
type pooledGenerator struct {
	inner models.Generator
	pool  *workerPool
}

func (g pooledGenerator) Modality() domain.Modality {
	return g.inner.Modality()
}

func (g pooledGenerator) Generate(ctx context.Context, input domain.Output, seed int) (domain.Output, error) {
	var out domain.Output
	var err error
	if poolErr := g.pool.do(ctx, func() {
		out, err = g.inner.Generate(ctx, input, seed)
	}); poolErr != nil {
		return domain.Output{}, poolErr
	}
	return out, err
}
