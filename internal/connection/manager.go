package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
)

// DefaultConnectTimeout bounds Connect when the caller passes no timeout.
const DefaultConnectTimeout = 20 * time.Second

// Manager owns the transport handle and the connection state.
type Manager interface {
	// Connect opens a transport and blocks until the gateway confirms the
	// session or timeout elapses.
	Connect(ctx context.Context, token string, timeout time.Duration) error

	// Send writes a frame through the current transport. Transport failures
	// are returned unchanged.
	Send(f *frame.Frame) error

	// Disconnect closes the transport and moves the state to Closed.
	Disconnect() error

	// State returns the current connection state.
	State() State

	// IsConnected reports whether State() == Connected.
	IsConnected() bool

	// SetFrameHandler installs the inbound frame callback.
	SetFrameHandler(h func(*frame.Frame))

	// OnStateChange registers a listener for state transitions.
	OnStateChange(fn func(State))

	// Stats returns connection statistics.
	Stats() ManagerStats
}

// TransportFactory creates a transport bound to the given events.
type TransportFactory func(events Events) Transport

// ManagerOption configures a Manager.
type ManagerOption func(*manager)

// WithTransportFactory overrides how transports are created.
func WithTransportFactory(f TransportFactory) ManagerOption {
	return func(m *manager) {
		m.factory = f
	}
}

// manager implements the Manager interface.
type manager struct {
	cfg     ClientConfig
	factory TransportFactory
	logger  *slog.Logger

	mu         sync.RWMutex
	state      State
	transport  Transport
	generation uint64
	onFrame    func(*frame.Frame)
	listeners  []func(State)

	attempts     atomic.Int64
	timeouts     atomic.Int64
	framesIn     atomic.Int64
	framesOut    atomic.Int64
	sendFailures atomic.Int64
	disconnects  atomic.Int64
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ClientConfig, logger *slog.Logger, opts ...ManagerOption) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &manager{
		cfg:    cfg,
		logger: logger,
		state:  Disconnected,
	}
	m.factory = func(events Events) Transport {
		return NewClient(m.cfg, events, m.logger.With("component", "stomp"))
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Connect transitions Disconnected -> Connecting -> Connected.
func (m *manager) Connect(ctx context.Context, token string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	ready := make(chan struct{})
	closed := make(chan error, 1)
	var readyOnce, closedOnce sync.Once

	m.mu.Lock()
	if m.state == Connected {
		m.mu.Unlock()
		return nil
	}
	previous := m.transport
	m.generation++
	gen := m.generation
	m.attempts.Add(1)

	t := m.factory(Events{
		OnConnected: func() {
			readyOnce.Do(func() { close(ready) })
		},
		OnClosed: func(err error) {
			closedOnce.Do(func() { closed <- err })
			m.handleClosed(gen, err)
		},
		OnFrame: m.handleFrame,
	})
	m.transport = t
	m.state = Connecting
	m.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	m.notify(Connecting)

	m.logger.Info("connecting", "url", m.cfg.URL, "timeout", timeout)

	if err := t.Connect(ctx, token); err != nil {
		m.abandon(gen, t)
		return fmt.Errorf("connect: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ready:
		if !m.transition(gen, Connected) {
			return fmt.Errorf("connect: %w", ErrConnectionClosed)
		}
		m.logger.Info("connected", "url", m.cfg.URL)
		return nil
	case err := <-closed:
		m.abandon(gen, t)
		if err == nil {
			err = ErrConnectionClosed
		}
		return fmt.Errorf("connect: closed during handshake: %w", err)
	case <-timer.C:
		m.timeouts.Add(1)
		m.abandon(gen, t)
		m.logger.Error("unable to connect within timeout", "timeout", timeout)
		return fmt.Errorf("%w: no CONNECTED frame within %s", ErrConnectionTimeout, timeout)
	case <-ctx.Done():
		m.abandon(gen, t)
		return ctx.Err()
	}
}

// Send writes f through the current transport.
func (m *manager) Send(f *frame.Frame) error {
	m.mu.RLock()
	t := m.transport
	state := m.state
	m.mu.RUnlock()

	if t == nil || state != Connected {
		return ErrNotConnected
	}

	if err := t.Send(f); err != nil {
		m.sendFailures.Add(1)
		return err
	}
	m.framesOut.Add(1)
	return nil
}

// Disconnect closes the transport.
func (m *manager) Disconnect() error {
	m.mu.Lock()
	t := m.transport
	m.transport = nil
	m.generation++
	changed := m.state != Closed
	m.state = Closed
	m.mu.Unlock()

	var err error
	if t != nil {
		err = t.Close()
	}
	if changed {
		m.notify(Closed)
		m.logger.Info("disconnected")
	}
	return err
}

// State returns the current connection state.
func (m *manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected reports whether the session is established.
func (m *manager) IsConnected() bool {
	return m.State() == Connected
}

// SetFrameHandler installs the inbound frame callback.
func (m *manager) SetFrameHandler(h func(*frame.Frame)) {
	m.mu.Lock()
	m.onFrame = h
	m.mu.Unlock()
}

// OnStateChange registers a listener for state transitions.
func (m *manager) OnStateChange(fn func(State)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Stats returns connection statistics.
func (m *manager) Stats() ManagerStats {
	return ManagerStats{
		State:        m.State(),
		Attempts:     m.attempts.Load(),
		Timeouts:     m.timeouts.Load(),
		FramesIn:     m.framesIn.Load(),
		FramesOut:    m.framesOut.Load(),
		SendFailures: m.sendFailures.Load(),
		Disconnects:  m.disconnects.Load(),
	}
}

func (m *manager) handleFrame(f *frame.Frame) {
	m.framesIn.Add(1)

	m.mu.RLock()
	h := m.onFrame
	m.mu.RUnlock()

	if h != nil {
		h(f)
	}
}

// handleClosed moves the state to Closed unless the transport is stale.
func (m *manager) handleClosed(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.transport = nil
	m.state = Closed
	m.mu.Unlock()

	m.disconnects.Add(1)
	if err != nil {
		m.logger.Warn("connection closed", "error", err)
	} else {
		m.logger.Info("connection closed")
	}
	m.notify(Closed)
}

// transition sets state if gen is still the current attempt and the
// attempt has not already been closed.
func (m *manager) transition(gen uint64, s State) bool {
	m.mu.Lock()
	if gen != m.generation || m.state != Connecting {
		m.mu.Unlock()
		return false
	}
	m.state = s
	m.mu.Unlock()

	m.notify(s)
	return true
}

// abandon drops a failed attempt and returns the state to Disconnected.
func (m *manager) abandon(gen uint64, t Transport) {
	m.mu.Lock()
	current := gen == m.generation
	if current {
		m.generation++
		m.transport = nil
		m.state = Disconnected
	}
	m.mu.Unlock()

	t.Close()
	if current {
		m.notify(Disconnected)
	}
}

func (m *manager) notify(s State) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(s)
	}
}
