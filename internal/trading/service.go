package trading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"

	"github.com/rickgao/intraday-client/internal/command"
	"github.com/rickgao/intraday-client/internal/connection"
	"github.com/rickgao/intraday-client/internal/router"
	"github.com/rickgao/intraday-client/internal/subscription"
)

// Config configures a Service.
type Config struct {
	User           string        // user identity embedded in destinations
	ConnectTimeout time.Duration // default timeout for Connect
}

// Stats aggregates connection, routing and per-subscription counters.
type Stats struct {
	Connection    connection.ManagerStats
	Router        router.RouterStats
	Subscriptions map[string]router.WorkerStats
}

// Service is the trading client.
type Service struct {
	cfg      Config
	conn     connection.Manager
	registry *router.Registry
	router   *router.Router
	sender   *command.Sender
	recorder Recorder
	logger   *slog.Logger

	mu      sync.Mutex
	workers map[string]*router.Worker
}

// NewService wires conn's inbound frames into a fresh router.
func NewService(cfg Config, conn connection.Manager, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = NopRecorder
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = connection.DefaultConnectTimeout
	}

	registry := router.NewRegistry()
	s := &Service{
		cfg:      cfg,
		conn:     conn,
		registry: registry,
		router:   router.NewRouter(registry, recorder, logger.With("component", "router")),
		sender:   command.NewSender(conn, logger.With("component", "command")),
		recorder: recorder,
		logger:   logger,
		workers:  make(map[string]*router.Worker),
	}

	conn.SetFrameHandler(s.router.Dispatch)
	conn.OnStateChange(func(st connection.State) {
		recorder.ConnectionState(st.String())
	})

	return s
}

// Connect opens the session. A non-positive timeout uses Config.ConnectTimeout.
// On timeout the error wraps connection.ErrConnectionTimeout and the caller
// may retry.
func (s *Service) Connect(ctx context.Context, token string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.cfg.ConnectTimeout
	}
	s.logger.Info("connecting trading service", "user", s.cfg.User, "timeout", timeout)

	if err := s.conn.Connect(ctx, token, timeout); err != nil {
		s.logger.Error("trading service was unable to connect", "error", err)
		return err
	}

	s.logger.Info("trading service connected")
	return nil
}

// IsConnected reports whether the session is established.
func (s *Service) IsConnected() bool {
	return s.conn.IsConnected()
}

// State returns the connection state.
func (s *Service) State() connection.State {
	return s.conn.State()
}

// Subscribe registers sub, starts its worker and sends SUBSCRIBE.
// It returns the subscription id.
func (s *Service) Subscribe(sub subscription.Subscription, handler router.Handler) (string, error) {
	if !s.conn.IsConnected() {
		s.logger.Error("subscribe requires a connected session", "topic", sub.Topic.String())
		return "", fmt.Errorf("subscribe %s: %w", sub.Topic, connection.ErrNotConnected)
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	destination, err := subscription.BuildDestination(sub, s.cfg.User)
	if err != nil {
		s.logger.Error("failed to build destination", "topic", sub.Topic.String(), "error", err)
		return "", err
	}

	queue, err := s.registry.Register(sub)
	if err != nil {
		return "", err
	}

	w := router.NewWorker(sub, queue, handler, s.recorder, s.logger)
	w.Start()

	s.mu.Lock()
	s.workers[sub.ID] = w
	s.mu.Unlock()

	f := frame.New(frame.SUBSCRIBE,
		frame.Destination, destination,
		frame.Id, sub.ID,
	)
	if err := s.conn.Send(f); err != nil {
		s.rollback(sub.ID)
		return "", err
	}

	s.recorder.SubscriptionsActive(s.registry.Len())
	s.logger.Info("subscribed",
		"subscription_id", sub.ID,
		"topic", sub.Topic.String(),
		"destination", destination,
	)

	return sub.ID, nil
}

// SubscribeAll registers an observer for every routed message.
func (s *Service) SubscribeAll(observer router.Observer) {
	s.router.AddObserver(observer)
}

// Unsubscribe removes one subscription. Frames already buffered for it are
// still delivered before its worker exits.
func (s *Service) Unsubscribe(id string) error {
	sub, err := s.registry.Unregister(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.workers, id)
	s.mu.Unlock()

	s.recorder.SubscriptionsActive(s.registry.Len())

	if !s.conn.IsConnected() {
		return nil
	}
	if err := s.conn.Send(frame.New(frame.UNSUBSCRIBE, frame.Id, id)); err != nil {
		return err
	}

	s.logger.Info("unsubscribed", "subscription_id", id, "topic", sub.Topic.String())
	return nil
}

// UnsubscribeAll removes every subscription and observer. Buffered frames
// are discarded.
func (s *Service) UnsubscribeAll() {
	subs, dropped := s.registry.UnregisterAll()
	s.router.ClearObservers()

	s.mu.Lock()
	s.workers = make(map[string]*router.Worker)
	s.mu.Unlock()

	for i := 0; i < dropped; i++ {
		s.recorder.FrameDropped(router.DropDiscarded)
	}
	s.recorder.SubscriptionsActive(0)

	if s.conn.IsConnected() {
		for _, sub := range subs {
			if err := s.conn.Send(frame.New(frame.UNSUBSCRIBE, frame.Id, sub.ID)); err != nil {
				s.logger.Warn("failed to unsubscribe", "subscription_id", sub.ID, "error", err)
			}
		}
	}

	s.logger.Info("unsubscribed all", "subscriptions", len(subs), "discarded_frames", dropped)
}

// SendOrderEntry submits new orders.
func (s *Service) SendOrderEntry(req command.OrderEntryRequest) error {
	return s.sender.SendOrderEntry(req)
}

// SendOrderModification modifies existing orders.
func (s *Service) SendOrderModification(req command.OrderModificationRequest) error {
	return s.sender.SendOrderModification(req)
}

// SendTradeCancellation requests a trade recall.
func (s *Service) SendTradeCancellation(req command.TradeRecallRequest) error {
	return s.sender.SendTradeCancellation(req)
}

// SendLogout ends the trading session.
func (s *Service) SendLogout() error {
	return s.sender.SendLogout()
}

// SendTokenRefresh swaps the session token.
func (s *Service) SendTokenRefresh(oldToken, newToken string) error {
	return s.sender.SendTokenRefresh(oldToken, newToken)
}

// Close unsubscribes everything, disconnects and waits for workers to exit
// or ctx to end.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	workers := make([]*router.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		workers = append(workers, w)
	}
	s.mu.Unlock()

	s.UnsubscribeAll()
	err := s.conn.Disconnect()

	for _, w := range workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			s.logger.Warn("shutdown timeout, handlers still running")
			return errors.Join(err, ctx.Err())
		}
	}

	s.logger.Info("trading service closed")
	return err
}

// Stats returns a snapshot of all counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	subs := make(map[string]router.WorkerStats, len(s.workers))
	for id, w := range s.workers {
		subs[id] = w.Stats()
	}
	s.mu.Unlock()

	return Stats{
		Connection:    s.conn.Stats(),
		Router:        s.router.Stats(),
		Subscriptions: subs,
	}
}

func (s *Service) rollback(id string) {
	if _, err := s.registry.Unregister(id); err != nil {
		s.logger.Debug("rollback found no subscription", "subscription_id", id)
	}
	s.mu.Lock()
	delete(s.workers, id)
	s.mu.Unlock()
}
