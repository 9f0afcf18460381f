package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultSSOHost           = "sts.nordpoolgroup.com"
	DefaultSSOProtocol       = "https"
	DefaultTokenURI          = "/connect/token"
	DefaultScope             = "intraday_api"
	DefaultSSOTimeout        = 30 * time.Second
	DefaultSSOMaxRetries     = 3
	DefaultWSHost            = "intraday-pmd-api-ws.nordpoolgroup.com"
	DefaultWSPort            = 80
	DefaultWSSSLPort         = 443
	DefaultWSURI             = "/user"
	DefaultHeartbeatOutgoing = 10 * time.Second
	DefaultConnectTimeout    = 20 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultAPIVersion        = "v1"
	DefaultSubscriptionType  = "streaming"
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
	DefaultLogMaxSizeMB      = 100
	DefaultLogMaxBackups     = 5
	DefaultLogMaxAgeDays     = 28
)

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	// SSO defaults
	if c.SSO.Host == "" {
		c.SSO.Host = DefaultSSOHost
	}
	if c.SSO.Protocol == "" {
		c.SSO.Protocol = DefaultSSOProtocol
	}
	if c.SSO.TokenURI == "" {
		c.SSO.TokenURI = DefaultTokenURI
	}
	if c.SSO.Scope == "" {
		c.SSO.Scope = DefaultScope
	}
	if c.SSO.Timeout == 0 {
		c.SSO.Timeout = DefaultSSOTimeout
	}
	if c.SSO.MaxRetries == 0 {
		c.SSO.MaxRetries = DefaultSSOMaxRetries
	}

	// WebSocket defaults
	if c.WebSocket.Host == "" {
		c.WebSocket.Host = DefaultWSHost
	}
	if c.WebSocket.Port == 0 {
		c.WebSocket.Port = DefaultWSPort
	}
	if c.WebSocket.SSLPort == 0 {
		c.WebSocket.SSLPort = DefaultWSSSLPort
	}
	if c.WebSocket.URI == "" {
		c.WebSocket.URI = DefaultWSURI
	}
	if c.WebSocket.HeartbeatOutgoing == 0 {
		c.WebSocket.HeartbeatOutgoing = DefaultHeartbeatOutgoing
	}
	if c.WebSocket.ConnectTimeout == 0 {
		c.WebSocket.ConnectTimeout = DefaultConnectTimeout
	}
	if c.WebSocket.WriteTimeout == 0 {
		c.WebSocket.WriteTimeout = DefaultWriteTimeout
	}

	if c.API.Version == "" {
		c.API.Version = DefaultAPIVersion
	}
	if c.Subscriptions.Type == "" {
		c.Subscriptions.Type = DefaultSubscriptionType
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
