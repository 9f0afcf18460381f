package trading

import "github.com/rickgao/intraday-client/internal/router"

// Recorder receives service level events in addition to routing events.
type Recorder interface {
	router.Recorder
	SubscriptionsActive(n int)
	ConnectionState(state string)
}

type nopRecorder struct {
	router.Recorder
}

func (nopRecorder) SubscriptionsActive(int) {}
func (nopRecorder) ConnectionState(string)  {}

// NopRecorder discards all events.
var NopRecorder Recorder = nopRecorder{router.NopRecorder}
