package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// SSOError is a non-2xx response from the SSO service.
type SSOError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *SSOError) Error() string {
	return fmt.Sprintf("sso error %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match SSO failures with errors.Is(err, ErrAuthentication).
func (e *SSOError) Unwrap() error {
	return ErrAuthentication
}

// IsRetryable returns true if the error should trigger a retry.
func (e *SSOError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// FetchToken performs the password grant and returns the issued token.
// Transient failures are retried with exponential backoff; 4xx responses are not.
func (c *Client) FetchToken(ctx context.Context, username, password string) (Token, error) {
	if username == "" || password == "" {
		return Token{}, fmt.Errorf("%w: username and password are required", ErrAuthentication)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff
	policy.MaxElapsedTime = 0

	var (
		tok     Token
		attempt int
	)
	op := func() error {
		attempt++
		if attempt > 1 {
			c.logger.Debug("retrying token request", "attempt", attempt)
		}

		t, err := c.requestToken(ctx, username, password)
		if err == nil {
			tok = t
			return nil
		}

		var ssoErr *SSOError
		if errors.As(err, &ssoErr) && !ssoErr.IsRetryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		c.logger.Error("failed to retrieve auth token", "user", username, "attempts", attempt, "error", err)
		return Token{}, err
	}

	c.logger.Info("auth token retrieved", "user", username, "expires_at", tok.ExpiresAt())
	return tok, nil
}

func (c *Client) requestToken(ctx context.Context, username, password string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("scope", c.scope)
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	issuedAt := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return Token{}, &SSOError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, backoff.Permanent(fmt.Errorf("%w: unmarshal response: %v", ErrAuthentication, err))
	}
	if tr.AccessToken == "" {
		return Token{}, backoff.Permanent(fmt.Errorf("%w: response carries no access_token", ErrAuthentication))
	}

	return Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		ExpiresIn:   time.Duration(tr.ExpiresIn) * time.Second,
		IssuedAt:    issuedAt,
	}, nil
}
