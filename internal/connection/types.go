package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
)

// Errors
var (
	ErrNotConnected      = errors.New("not connected")
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrAlreadyClosed     = errors.New("already closed")
)

// AuthTokenHeader carries the SSO token on the CONNECT frame.
const AuthTokenHeader = "X-AUTH-TOKEN"

// StompVersion is the only protocol version the client negotiates.
const StompVersion = "1.2"

// State is the connection lifecycle state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Events are the callbacks a transport raises. All of them are invoked from
// the transport's read goroutine, never concurrently with each other.
type Events struct {
	OnConnected func()
	OnClosed    func(err error)
	OnFrame     func(f *frame.Frame)
}

// ClientConfig configures a STOMP transport.
type ClientConfig struct {
	URL               string        // WebSocket URL (e.g., wss://intraday-pmd-api-ws.nordpoolgroup.com:443/user)
	Host              string        // STOMP host header
	HeartbeatOutgoing time.Duration // Interval for client heartbeats (0 disables)
	WriteTimeout      time.Duration // Write deadline for sends
	HandshakeTimeout  time.Duration // WebSocket upgrade deadline
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HeartbeatOutgoing: 10 * time.Second,
		WriteTimeout:      5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	State        State
	Attempts     int64
	Timeouts     int64
	FramesIn     int64
	FramesOut    int64
	SendFailures int64
	Disconnects  int64
}

func heartBeatHeader(outgoing time.Duration) string {
	if outgoing < 0 {
		outgoing = 0
	}
	return fmt.Sprintf("%d,0", outgoing.Milliseconds())
}
