package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/capscript/vm"
)

// ErrWorkerStopped is returned by Do after Stop.
var ErrWorkerStopped = errors.New("worker stopped")

// workRequest is one source text to run on the worker goroutine.
type workRequest struct {
	ctx    context.Context
	source string
	done   chan error
}

// Worker serializes script runs against one host resolver on a dedicated
// goroutine, so host objects that are not safe for concurrent use are only
// touched by one script at a time.
type Worker struct {
	engine   *Engine
	host     vm.Resolver
	requests chan workRequest
	quit     chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(e *Engine, host vm.Resolver) *Worker {
	w := &Worker{
		engine:   e,
		host:     host,
		requests: make(chan workRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes requests sequentially.
func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req)
		case <-w.quit:
			return
		}
	}
}

// execute runs one request, turning a panic in host code into an error.
func (w *Worker) execute(req workRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host panic: %v", r)
		}
	}()
	return w.engine.Run(req.ctx, req.source, w.host)
}

// Do submits source and blocks until it has run. Cancelling ctx abandons a
// request that is still queued and interrupts one that is running.
func (w *Worker) Do(ctx context.Context, source string) error {
	select {
	case <-w.quit:
		return ErrWorkerStopped
	default:
	}

	req := workRequest{
		ctx:    ctx,
		source: source,
		done:   make(chan error, 1),
	}

	select {
	case w.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrWorkerStopped
	}

	select {
	case err := <-req.done:
		return err
	case <-w.quit:
		return ErrWorkerStopped
	}
}

// Stop shuts down the worker goroutine. Queued requests fail with
// ErrWorkerStopped. Stop is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}
