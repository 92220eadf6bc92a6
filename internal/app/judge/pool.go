package judge

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent calls to the execution service so a burst of
// submissions queues instead of fanning out unbounded network calls to the
// sandbox.
type Pool struct {
	inner Executor
	sem   *semaphore.Weighted
}

func NewPool(inner Executor, maxConcurrent int64) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pool{
		inner: inner,
		sem:   semaphore.NewWeighted(maxConcurrent),
	}
}

func (p *Pool) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutorUnavailable, err)
	}
	defer p.sem.Release(1)
	return p.inner.Execute(ctx, req)
}
