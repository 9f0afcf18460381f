package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ErrAuthentication is returned when the SSO service rejects a request or
// returns an unusable token.
var ErrAuthentication = errors.New("authentication failed")

// DefaultScope is requested when none is configured.
const DefaultScope = "intraday_api"

// Client obtains access tokens from the SSO service.
type Client struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client
	logger       *slog.Logger

	maxRetries   uint64
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates an SSO client for the token endpoint at tokenURL.
func NewClient(tokenURL, clientID, clientSecret string, opts ...ClientOption) *Client {
	c := &Client{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        DefaultScope,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithScope sets the requested scope.
func WithScope(scope string) ClientOption {
	return func(c *Client) {
		if scope != "" {
			c.scope = scope
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration for transient failures.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if max < 0 {
			max = 0
		}
		c.maxRetries = uint64(max)
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// GetAuthToken returns an access token for the given user.
func (c *Client) GetAuthToken(ctx context.Context, username, password string) (string, error) {
	tok, err := c.FetchToken(ctx, username, password)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
