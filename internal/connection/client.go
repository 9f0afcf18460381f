package connection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
)

// Transport is a STOMP session over one WebSocket connection.
type Transport interface {
	// Connect dials the gateway and sends the CONNECT frame. It returns once
	// the frame is written; Events.OnConnected fires when CONNECTED arrives.
	Connect(ctx context.Context, token string) error

	// Send writes one frame.
	Send(f *frame.Frame) error

	// Close sends DISCONNECT and closes the socket.
	Close() error
}

// client implements Transport over gorilla/websocket.
type client struct {
	cfg    ClientConfig
	events Events
	logger *slog.Logger

	conn *websocket.Conn

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.RWMutex
	connected bool
	closed    bool
	done      chan struct{}
}

// NewClient creates a new STOMP transport.
func NewClient(cfg ClientConfig, events Events, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}

	return &client{
		cfg:    cfg,
		events: events,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Connect dials the WebSocket and sends CONNECT.
func (c *client) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return errors.New("transport already connected")
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	host := c.cfg.Host
	if host == "" {
		host = "/"
	}
	connect := frame.New(frame.CONNECT,
		frame.AcceptVersion, StompVersion,
		frame.Host, host,
		frame.HeartBeat, heartBeatHeader(c.cfg.HeartbeatOutgoing),
		AuthTokenHeader, token,
	)

	if err := c.write(connect); err != nil {
		conn.Close()
		return fmt.Errorf("send CONNECT: %w", err)
	}

	go c.readLoop(conn)
	if c.cfg.HeartbeatOutgoing > 0 {
		go c.heartbeatLoop()
	}

	c.logger.Debug("stomp CONNECT sent", "url", c.cfg.URL)

	return nil
}

// Send writes one frame as a single text message.
func (c *client) Send(f *frame.Frame) error {
	c.mu.RLock()
	if c.conn == nil || c.closed {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	c.mu.RUnlock()

	return c.write(f)
}

// Close sends DISCONNECT (best effort) and closes the socket.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	wasConnected := c.connected
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)

	if conn == nil {
		return nil
	}

	if wasConnected {
		if err := c.write(frame.New(frame.DISCONNECT)); err != nil {
			c.logger.Debug("failed to send DISCONNECT", "error", err)
		}
	}

	c.writeMu.Lock()
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	return conn.Close()
}

func (c *client) write(f *frame.Frame) error {
	if len(f.Body) > 0 {
		if _, ok := f.Header.Contains(frame.ContentLength); !ok {
			f.Header.Set(frame.ContentLength, strconv.Itoa(len(f.Body)))
		}
	}

	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return fmt.Errorf("encode %s frame: %w", f.Command, err)
	}
	return c.writeRaw(buf.Bytes())
}

func (c *client) writeRaw(data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop decodes every STOMP frame carried by each WebSocket message.
func (c *client) readLoop(conn *websocket.Conn) {
	var closeErr error
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		select {
		case <-c.done:
			closeErr = nil
		default:
		}
		if c.events.OnClosed != nil {
			c.events.OnClosed(closeErr)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeErr = fmt.Errorf("%w: %v", ErrConnectionClosed, err)
			return
		}

		reader := frame.NewReader(bytes.NewReader(data))
		for {
			f, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				c.logger.Warn("failed to decode stomp frame", "error", err, "size", len(data))
				break
			}
			if f == nil {
				// heartbeat
				continue
			}
			c.handleFrame(f)
		}
	}
}

func (c *client) handleFrame(f *frame.Frame) {
	switch f.Command {
	case frame.CONNECTED:
		c.mu.Lock()
		c.connected = true
		c.mu.Unlock()

		version, _ := f.Header.Contains(frame.Version)
		heartBeat, _ := f.Header.Contains(frame.HeartBeat)
		c.logger.Info("stomp session established",
			"version", version,
			"heart_beat", heartBeat,
		)
		if c.events.OnConnected != nil {
			c.events.OnConnected()
		}
	case frame.ERROR:
		msg, _ := f.Header.Contains(frame.Message)
		c.logger.Error("stomp error frame", "message", msg, "body", string(f.Body))
	}

	if c.events.OnFrame != nil {
		c.events.OnFrame(f)
	}
}

// heartbeatLoop writes a bare EOL every outgoing interval.
func (c *client) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.HeartbeatOutgoing)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.writeRaw([]byte("\n")); err != nil {
				c.logger.Debug("failed to send heartbeat", "error", err)
				return
			}
		}
	}
}
