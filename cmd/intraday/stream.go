package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/intraday-client/internal/auth"
	"github.com/rickgao/intraday-client/internal/config"
	"github.com/rickgao/intraday-client/internal/connection"
	"github.com/rickgao/intraday-client/internal/logging"
	"github.com/rickgao/intraday-client/internal/metrics"
	"github.com/rickgao/intraday-client/internal/subscription"
	"github.com/rickgao/intraday-client/internal/trading"
	"github.com/rickgao/intraday-client/internal/version"
)

const (
	refreshMargin   = 5 * time.Minute
	refreshRetry    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

var errConnectionLost = errors.New("connection to gateway lost")

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Authenticate, subscribe to the configured topics and log every message",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, cleanup := logging.New(logging.Config{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		})
		defer cleanup()
		slog.SetDefault(logger)

		logger.Info("starting intraday client",
			"version", version.Version,
			"commit", version.Commit,
			"config", cfgFile,
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runStream(ctx, cfg, logger)
	},
}

func runStream(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	collector := metrics.New()

	authClient := auth.NewClient(
		cfg.SSO.TokenURL(),
		cfg.SSO.ClientID,
		cfg.SSO.ClientSecret,
		auth.WithScope(cfg.SSO.Scope),
		auth.WithTimeout(cfg.SSO.Timeout),
		auth.WithRetries(cfg.SSO.MaxRetries, time.Second),
		auth.WithLogger(logger.With("component", "auth")),
	)

	logger.Info("requesting auth token", "sso_host", cfg.SSO.Host, "user", cfg.Credentials.Username)
	token, err := authClient.FetchToken(ctx, cfg.Credentials.Username, cfg.Credentials.Password)
	if err != nil {
		return fmt.Errorf("fetch auth token: %w", err)
	}

	conn := connection.NewManager(connection.ClientConfig{
		URL:               cfg.WebSocket.URL(),
		Host:              cfg.WebSocket.Host,
		HeartbeatOutgoing: cfg.WebSocket.HeartbeatOutgoing,
		WriteTimeout:      cfg.WebSocket.WriteTimeout,
		HandshakeTimeout:  cfg.WebSocket.ConnectTimeout,
	}, logger.With("component", "connection"))

	svc := trading.NewService(trading.Config{
		User:           cfg.Credentials.Username,
		ConnectTimeout: cfg.WebSocket.ConnectTimeout,
	}, conn, collector, logger.With("component", "trading"))

	// Watch before Connect so a close right after the handshake is seen.
	lost := watchClosed(conn)

	if err := svc.Connect(ctx, token.AccessToken, 0); err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.WebSocket.URL(), err)
	}

	if err := subscribeConfigured(svc, cfg, logger); err != nil {
		closeService(svc, logger)
		return err
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: newMetricsMux(cfg.Metrics.Path, collector, svc),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return refreshLoop(gctx, authClient, svc, token, cfg.Credentials, collector, logger)
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-lost:
			if gctx.Err() == nil {
				logger.Error("gateway closed the connection")
				shutdownMetrics(metricsServer, logger)
				return errConnectionLost
			}
		}
		logger.Info("shutting down...")
		shutdownMetrics(metricsServer, logger)
		return nil
	})

	logger.Info("intraday client running", "url", cfg.WebSocket.URL())

	err = g.Wait()
	closeService(svc, logger)

	stats := svc.Stats()
	logger.Info("intraday client stopped",
		"frames_received", stats.Router.FramesReceived,
		"frames_routed", stats.Router.FramesRouted,
		"unknown_subscription", stats.Router.UnknownSubscription,
	)
	return err
}

// watchClosed returns a channel closed the first time conn reports Closed.
func watchClosed(conn connection.Manager) <-chan struct{} {
	lost := make(chan struct{})
	var once sync.Once
	conn.OnStateChange(func(st connection.State) {
		if st == connection.Closed {
			once.Do(func() { close(lost) })
		}
	})
	return lost
}

// subscribeConfigured subscribes to every configured topic, or to all topics
// when none are listed. Area scoped topics are skipped from the full list
// when no area is configured.
func subscribeConfigured(svc *trading.Service, cfg *config.Config, logger *slog.Logger) error {
	subs, err := buildSubscriptions(cfg)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if _, err := svc.Subscribe(sub, messageHandler(sub.Topic, logger)); err != nil {
			return fmt.Errorf("subscribe %s: %w", sub.Topic, err)
		}
	}
	logger.Info("subscriptions active", "count", len(subs))
	return nil
}

func buildSubscriptions(cfg *config.Config) ([]subscription.Subscription, error) {
	typ, err := subscription.ParseType(cfg.Subscriptions.Type)
	if err != nil {
		return nil, err
	}

	var topics []subscription.Topic
	if len(cfg.Subscriptions.Topics) == 0 {
		for _, topic := range subscription.Topics() {
			if topic.AreaScoped() && cfg.Subscriptions.Area == 0 {
				continue
			}
			topics = append(topics, topic)
		}
	} else {
		topics = make([]subscription.Topic, 0, len(cfg.Subscriptions.Topics))
		for _, name := range cfg.Subscriptions.Topics {
			topic, err := subscription.ParseTopic(name)
			if err != nil {
				return nil, err
			}
			topics = append(topics, topic)
		}
	}

	subs := make([]subscription.Subscription, 0, len(topics))
	for _, topic := range topics {
		var opts []subscription.Option
		if topic.AreaScoped() {
			opts = append(opts, subscription.WithArea(cfg.Subscriptions.Area))
		}
		if cfg.Subscriptions.Gzip {
			opts = append(opts, subscription.WithGzip())
		}
		subs = append(subs, subscription.New(topic, cfg.API.Version, typ, opts...))
	}
	return subs, nil
}

// refreshLoop replaces the session token ahead of its expiry until ctx ends.
func refreshLoop(ctx context.Context, client *auth.Client, svc *trading.Service, token auth.Token,
	creds config.CredentialsConfig, collector *metrics.Collector, logger *slog.Logger) error {
	for {
		at := token.RefreshAt(refreshMargin)
		if at.IsZero() {
			logger.Warn("token expiry unknown, refresh disabled")
			<-ctx.Done()
			return nil
		}

		logger.Debug("next token refresh scheduled", "at", at)
		if !sleepUntil(ctx, at) {
			return nil
		}

		for {
			next, err := refreshToken(ctx, client, svc, token, creds)
			if err == nil {
				collector.TokenRefreshed(true)
				logger.Info("token refreshed", "expires_at", next.ExpiresAt())
				token = next
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			collector.TokenRefreshed(false)
			logger.Error("token refresh failed", "error", err, "retry_in", refreshRetry)
			if !sleepUntil(ctx, time.Now().Add(refreshRetry)) {
				return nil
			}
		}
	}
}

func refreshToken(ctx context.Context, client *auth.Client, svc *trading.Service, old auth.Token,
	creds config.CredentialsConfig) (auth.Token, error) {
	next, err := client.FetchToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return auth.Token{}, err
	}
	if err := svc.SendTokenRefresh(old.AccessToken, next.AccessToken); err != nil {
		return auth.Token{}, fmt.Errorf("send token refresh: %w", err)
	}
	return next, nil
}

// sleepUntil blocks until t or ctx cancellation; it reports whether t was reached.
func sleepUntil(ctx context.Context, t time.Time) bool {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func newMetricsMux(path string, collector *metrics.Collector, svc *trading.Service) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, collector.Handler())
	mux.Handle("/health", healthHandler(svc))
	return mux
}

type subscriptionHealth struct {
	Topic     string `json:"topic"`
	Delivered int64  `json:"delivered"`
	Failed    int64  `json:"failed"`
	Queued    int    `json:"queued"`
	Closed    bool   `json:"closed"`
}

// healthHandler reports the connection state and per-subscription counters.
func healthHandler(svc *trading.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := svc.Stats()

		health := struct {
			Status        string                        `json:"status"`
			Connection    string                        `json:"connection"`
			FramesRouted  int64                         `json:"frames_routed"`
			Subscriptions map[string]subscriptionHealth `json:"subscriptions"`
		}{
			Status:        "healthy",
			Connection:    stats.Connection.State.String(),
			FramesRouted:  stats.Router.FramesRouted,
			Subscriptions: make(map[string]subscriptionHealth, len(stats.Subscriptions)),
		}

		for id, ws := range stats.Subscriptions {
			health.Subscriptions[id] = subscriptionHealth{
				Topic:     ws.Topic,
				Delivered: ws.Delivered,
				Failed:    ws.Failed,
				Queued:    ws.Queue.Len,
				Closed:    ws.Queue.Closed,
			}
		}

		code := http.StatusOK
		if stats.Connection.State != connection.Connected {
			health.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(health)
	})
}

func shutdownMetrics(server *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}

func closeService(svc *trading.Service, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		logger.Warn("trading service close", "error", err)
	}
}
