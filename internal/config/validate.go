package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.SSO.ClientID == "" {
		return errors.New("sso.client_id is required")
	}
	if c.SSO.ClientSecret == "" {
		return errors.New("sso.client_secret is required")
	}
	if c.SSO.Protocol != "http" && c.SSO.Protocol != "https" {
		return fmt.Errorf("sso.protocol must be http or https, got %q", c.SSO.Protocol)
	}

	if c.Credentials.Username == "" {
		return errors.New("credentials.username is required")
	}
	if c.Credentials.Password == "" {
		return errors.New("credentials.password is required")
	}

	if c.WebSocket.Host == "" {
		return errors.New("websocket.host is required")
	}
	if p := c.WebSocket.UsedPort(); p < 1 || p > 65535 {
		return fmt.Errorf("websocket port must be between 1 and 65535, got %d", p)
	}
	if c.WebSocket.HeartbeatOutgoing < 0 {
		return errors.New("websocket.heartbeat_outgoing must be >= 0")
	}
	if c.WebSocket.ConnectTimeout <= 0 {
		return errors.New("websocket.connect_timeout must be > 0")
	}

	if c.API.Version == "" {
		return errors.New("api.version is required")
	}

	switch c.Subscriptions.Type {
	case "streaming", "conflated", "empty":
	default:
		return fmt.Errorf("subscriptions.type must be streaming, conflated or empty, got %q", c.Subscriptions.Type)
	}
	if c.Subscriptions.Area < 0 {
		return errors.New("subscriptions.area must be >= 0")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
