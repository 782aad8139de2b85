// Package worker drains recorded-prediction events from the queue into
// their sinks (prediction history, event broker).
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/internal/domain/model"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/logger"
	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Event abstracts what workers read off the queue.
type Event = model.Event

// Sink receives every event a worker takes off the queue.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, ev Event) error { return f(ctx, ev) } //nolint:gocritic // hugeParam: events travel by value

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until its queue is drained or ctx ends.
type Worker interface {
	Run(ctx context.Context)
}

// counters are shared by the workers of one pool.
type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
	active    atomic.Int64
}

// InMemoryWorker hands each event to every sink. A failing sink is logged
// and counted; the remaining sinks still run.
type InMemoryWorker struct {
	queue Queue
	sinks []Sink
	name  string

	counters *counters
	done     chan struct{}
	logger   logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, sinks []Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		sinks:    sinks,
		name:     "worker",
		counters: &counters{},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns when the queue channel closes or
// ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			w.process(ctx, ev)
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, ev Event) { //nolint:gocritic // hugeParam: events travel by value
	w.counters.active.Add(1)
	start := time.Now()
	defer func() {
		w.counters.active.Add(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	failed := false
	for i, s := range w.sinks {
		if err := s.Write(ctx, ev); err != nil {
			failed = true
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "sink_error")
			w.logger.Error(ctx, "sink write failed",
				logger.String("event_id", ev.EventID),
				logger.Int("sink", i),
				logger.Error(err),
			)
		}
	}
	if failed {
		w.counters.failed.Add(1)
		return
	}
	w.counters.processed.Add(1)
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	Workers   int   `json:"workers"`
	Active    int64 `json:"active"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *counters

	cancel   context.CancelFunc
	started  atomic.Bool
	stopOnce sync.Once
	logger   logger.Logger
}

// NewPool creates a pool of workerCount workers writing to sinks. A
// non-positive count means one worker per CPU.
func NewPool(workerCount int, queue Queue, sinks ...Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		counters: &counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(queue, sinks,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(p.counters),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	go p.startMetricsUpdater(runCtx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active := int(p.counters.active.Load())
			metrics.UpdateWorkerActiveCount(active)
			metrics.UpdateWorkerIdleCount(len(p.workers) - active)
		}
	}
}

// Stats returns the pool's counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Active:    p.counters.active.Load(),
		Processed: p.counters.processed.Load(),
		Failed:    p.counters.failed.Load(),
	}
}

// Shutdown closes the queue and waits for the workers to drain it. If ctx
// (or the pool timeout) ends first, remaining events are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		if !p.started.Load() {
			return
		}

		waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()

		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-waitCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown timed out: %w", waitCtx.Err())
			}
			if err != nil {
				break
			}
		}
		if p.cancel != nil {
			p.cancel()
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}
