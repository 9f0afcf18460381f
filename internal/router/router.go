package router

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-stomp/stomp/v3/frame"
)

// Router is the transport's inbound frame callback. It never blocks on consumers.
type Router struct {
	registry *Registry
	recorder Recorder
	logger   *slog.Logger

	obsMu     sync.RWMutex
	observers []Observer

	received   atomic.Int64
	routed     atomic.Int64
	nonMessage atomic.Int64
	missingSub atomic.Int64
	unknownSub atomic.Int64
	observed   atomic.Int64
}

// NewRouter creates a Router over registry.
func NewRouter(registry *Registry, recorder Recorder, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = NopRecorder
	}

	return &Router{
		registry: registry,
		recorder: recorder,
		logger:   logger,
	}
}

// Dispatch routes one inbound frame. Safe to call from the transport read loop.
func (r *Router) Dispatch(f *frame.Frame) {
	if f == nil {
		return
	}
	r.received.Add(1)
	r.recorder.FrameReceived()

	if f.Command != frame.MESSAGE {
		r.nonMessage.Add(1)
		r.recorder.FrameDropped(DropNotMessage)
		return
	}

	var id string
	ok := false
	if f.Header != nil {
		id, ok = f.Header.Contains(frame.Subscription)
	}
	if !ok {
		r.missingSub.Add(1)
		r.recorder.FrameDropped(DropNoSubscription)
		return
	}

	queue, ok := r.registry.Lookup(id)
	switch {
	case !ok:
		// Expected while an unsubscribe races in-flight deliveries.
		r.unknownSub.Add(1)
		r.recorder.FrameDropped(DropUnknownSubscription)
		r.logger.Debug("dropping frame for unknown subscription", "subscription_id", id)
	case !queue.Enqueue(f):
		r.unknownSub.Add(1)
		r.recorder.FrameDropped(DropQueueClosed)
		r.logger.Debug("dropping frame for closed subscription", "subscription_id", id)
	default:
		r.routed.Add(1)
	}

	r.notifyObservers(f)
}

// AddObserver registers an observer for every MESSAGE frame with a
// subscription header, matched or not.
func (r *Router) AddObserver(o Observer) {
	if o == nil {
		return
	}
	r.obsMu.Lock()
	r.observers = append(r.observers, o)
	r.obsMu.Unlock()
}

// ClearObservers removes all observers.
func (r *Router) ClearObservers() {
	r.obsMu.Lock()
	r.observers = nil
	r.obsMu.Unlock()
}

// Stats returns dispatcher counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{
		FramesReceived:      r.received.Load(),
		FramesRouted:        r.routed.Load(),
		NonMessageFrames:    r.nonMessage.Load(),
		MissingSubscription: r.missingSub.Load(),
		UnknownSubscription: r.unknownSub.Load(),
		ObserverCalls:       r.observed.Load(),
		ActiveSubscriptions: r.registry.Len(),
	}
}

func (r *Router) notifyObservers(f *frame.Frame) {
	r.obsMu.RLock()
	observers := r.observers
	r.obsMu.RUnlock()

	if len(observers) == 0 {
		return
	}

	msg, err := Decode(f)
	if err != nil {
		r.logger.Warn("failed to decode frame for observers", "error", err)
		return
	}

	for _, o := range observers {
		r.callObserver(o, msg)
	}
}

func (r *Router) callObserver(o Observer, msg Message) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("observer panicked",
				"subscription_id", msg.SubscriptionID,
				"panic", p,
			)
		}
	}()
	r.observed.Add(1)
	o(msg)
}
