package router

// Handler consumes messages for one subscription. A returned error is logged
// and counted; the worker keeps draining.
type Handler func(Message) error

// Observer receives every MESSAGE frame that carries a subscription header,
// whether or not a registered subscription matches it.
type Observer func(Message)

// Recorder receives routing and delivery events. Implementations must be safe
// for concurrent use.
type Recorder interface {
	FrameReceived()
	FrameDropped(reason string)
	MessageDelivered(topic string)
	HandlerFailed(topic string)
}

// Drop reasons reported to Recorder.FrameDropped.
const (
	DropNotMessage          = "not_message"
	DropNoSubscription      = "no_subscription_header"
	DropUnknownSubscription = "unknown_subscription"
	DropQueueClosed         = "queue_closed"
	DropDiscarded           = "discarded"
)

type nopRecorder struct{}

func (nopRecorder) FrameReceived()          {}
func (nopRecorder) FrameDropped(string)     {}
func (nopRecorder) MessageDelivered(string) {}
func (nopRecorder) HandlerFailed(string)    {}

// NopRecorder discards all events.
var NopRecorder Recorder = nopRecorder{}

// RouterStats contains dispatcher counters.
type RouterStats struct {
	FramesReceived      int64
	FramesRouted        int64
	NonMessageFrames    int64
	MissingSubscription int64
	UnknownSubscription int64
	ObserverCalls       int64
	ActiveSubscriptions int
}

// WorkerStats contains per-subscription delivery counters.
type WorkerStats struct {
	Topic     string
	Delivered int64
	Failed    int64
	Queue     QueueStats
}
