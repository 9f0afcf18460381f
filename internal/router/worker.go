package router

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/rickgao/intraday-client/internal/subscription"
)

// Worker drains one subscription's queue and invokes its handler in FIFO order.
type Worker struct {
	sub      subscription.Subscription
	queue    *FrameQueue
	handler  Handler
	recorder Recorder
	logger   *slog.Logger

	done      chan struct{}
	started   atomic.Bool
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewWorker creates a worker for sub. Call Start to begin draining.
func NewWorker(sub subscription.Subscription, queue *FrameQueue, handler Handler, recorder Recorder, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = NopRecorder
	}

	return &Worker{
		sub:      sub,
		queue:    queue,
		handler:  handler,
		recorder: recorder,
		logger:   logger.With("subscription_id", sub.ID, "topic", sub.Topic.String()),
		done:     make(chan struct{}),
	}
}

// Start launches the drain goroutine. Subsequent calls are no-ops.
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
}

// Done is closed once the queue is closed and drained, or discarded.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}


// Stats returns delivery counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Topic:     w.sub.Topic.String(),
		Delivered: w.delivered.Load(),
		Failed:    w.failed.Load(),
		Queue:     w.queue.Stats(),
	}
}

func (w *Worker) run() {
	defer close(w.done)

	w.logger.Debug("subscription worker started")

	for {
		f, ok := w.queue.Dequeue()
		if !ok {
			w.logger.Debug("subscription worker stopped",
				"delivered", w.delivered.Load(),
				"failed", w.failed.Load(),
			)
			return
		}

		msg, err := Decode(f)
		if err != nil {
			w.fail("failed to decode frame", err)
			continue
		}

		if err := w.invoke(msg); err != nil {
			w.fail("handler failed", err)
			continue
		}

		w.delivered.Add(1)
		w.recorder.MessageDelivered(w.sub.Topic.String())
	}
}

// invoke calls the handler, converting a panic into an error.
func (w *Worker) invoke(msg Message) (err error) {
	if w.handler == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return w.handler(msg)
}

func (w *Worker) fail(reason string, err error) {
	w.failed.Add(1)
	w.recorder.HandlerFailed(w.sub.Topic.String())
	w.logger.Error(reason, "error", err)
}
