package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the intraday client.
type Config struct {
	SSO           SSOConfig           `yaml:"sso"`
	Credentials   CredentialsConfig   `yaml:"credentials"`
	WebSocket     WebSocketConfig     `yaml:"websocket"`
	API           APIConfig           `yaml:"api"`
	Subscriptions SubscriptionsConfig `yaml:"subscriptions"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// SSOConfig holds the token service settings.
type SSOConfig struct {
	Host         string        `yaml:"host"`
	Protocol     string        `yaml:"protocol"`
	TokenURI     string        `yaml:"token_uri"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Scope        string        `yaml:"scope"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
}

// TokenURL returns the full token endpoint URL.
func (s SSOConfig) TokenURL() string {
	return fmt.Sprintf("%s://%s%s", s.Protocol, s.Host, s.TokenURI)
}

// CredentialsConfig holds the trading user's login.
type CredentialsConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WebSocketConfig holds the gateway connection settings.
type WebSocketConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	SSLPort           int           `yaml:"ssl_port"`
	URI               string        `yaml:"uri"`
	UseSSL            *bool         `yaml:"use_ssl"` // nil = true
	HeartbeatOutgoing time.Duration `yaml:"heartbeat_outgoing"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
}

// SSL reports whether the gateway is reached over wss.
func (w WebSocketConfig) SSL() bool {
	return w.UseSSL == nil || *w.UseSSL
}

// UsedPort returns SSLPort or Port depending on SSL().
func (w WebSocketConfig) UsedPort() int {
	if w.SSL() {
		return w.SSLPort
	}
	return w.Port
}

// URL returns the WebSocket URL of the gateway.
func (w WebSocketConfig) URL() string {
	scheme := "ws"
	if w.SSL() {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, w.Host, w.UsedPort(), w.URI)
}

// APIConfig holds the API version used in destinations.
type APIConfig struct {
	Version string `yaml:"version"`
}

// SubscriptionsConfig selects what the stream command subscribes to.
type SubscriptionsConfig struct {
	Area   int      `yaml:"area"`   // delivery area for area-scoped topics
	Type   string   `yaml:"type"`   // streaming, conflated or empty
	Gzip   bool     `yaml:"gzip"`   // request gzipped payloads
	Topics []string `yaml:"topics"` // empty = all topics
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`   // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}
