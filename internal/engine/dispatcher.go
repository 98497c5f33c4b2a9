package engine

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/metrics"
)

// Dispatcher runs engine calls on a bounded worker pool. The calling
// goroutine suspends on a result channel until the worker completes.
// Each call runs under its own deadline detached from the caller's
// context: an aborted request leaves the engine call running to
// completion instead of killing it mid-mutation of the shared index.
type Dispatcher struct {
	engine  Engine
	pool    *ants.Pool
	timeout time.Duration
}

// NewDispatcher creates a dispatcher with the given pool size,
// queue depth and per-call timeout. queueDepth caps how many callers
// may wait for a free worker; beyond it, submission fails immediately
// instead of queueing without bound.
func NewDispatcher(eng Engine, workers, queueDepth int, timeout time.Duration) (*Dispatcher, error) {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}

	pool, err := ants.NewPool(workers, ants.WithMaxBlockingTasks(queueDepth))
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		engine:  eng,
		pool:    pool,
		timeout: timeout,
	}, nil
}

// Query dispatches a query to the engine.
func (d *Dispatcher) Query(ctx context.Context, question string) (string, error) {
	type result struct {
		answer string
		err    error
	}

	ch := make(chan result, 1)
	callCtx, cancel := context.WithTimeout(context.Background(), d.timeout)

	start := time.Now()
	metrics.EngineCallsInFlight.Inc()
	err := d.pool.Submit(func() {
		defer metrics.EngineCallsInFlight.Dec()
		defer cancel()
		answer, err := d.engine.Query(callCtx, question)
		ch <- result{answer: answer, err: err}
	})
	if err != nil {
		metrics.EngineCallsInFlight.Dec()
		cancel()
		return "", apperr.Engine("failed to dispatch engine query", err)
	}

	select {
	case r := <-ch:
		status := "success"
		if r.err != nil {
			status = "error"
		}
		metrics.RecordEngineCall("query", status, time.Since(start).Seconds())
		if r.err != nil {
			return "", apperr.Engine("engine query failed", r.err)
		}
		return r.answer, nil
	case <-ctx.Done():
		// The worker keeps running; its own deadline bounds the leak.
		metrics.RecordEngineCall("query", "abandoned", time.Since(start).Seconds())
		return "", apperr.Engine("request aborted while engine query in flight", ctx.Err())
	}
}

// Insert dispatches an insert to the engine.
func (d *Dispatcher) Insert(ctx context.Context, text string) error {
	ch := make(chan error, 1)
	callCtx, cancel := context.WithTimeout(context.Background(), d.timeout)

	start := time.Now()
	metrics.EngineCallsInFlight.Inc()
	err := d.pool.Submit(func() {
		defer metrics.EngineCallsInFlight.Dec()
		defer cancel()
		ch <- d.engine.Insert(callCtx, text)
	})
	if err != nil {
		metrics.EngineCallsInFlight.Dec()
		cancel()
		return apperr.Engine("failed to dispatch engine insert", err)
	}

	select {
	case err := <-ch:
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.RecordEngineCall("insert", status, time.Since(start).Seconds())
		if err != nil {
			return apperr.Engine("engine insert failed", err)
		}
		return nil
	case <-ctx.Done():
		metrics.RecordEngineCall("insert", "abandoned", time.Since(start).Seconds())
		return apperr.Engine("request aborted while engine insert in flight", ctx.Err())
	}
}

// Release shuts down the worker pool.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
