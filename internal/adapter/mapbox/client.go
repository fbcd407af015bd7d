// Package mapbox checks the map access token against the Mapbox Tokens API.
package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/sf-danger-zones/internal/observability"
)

// Token codes returned by the Tokens API.
const (
	CodeTokenValid     = "TokenValid"
	CodeTokenMalformed = "TokenMalformed"
	CodeTokenInvalid   = "TokenInvalid"
	CodeTokenExpired   = "TokenExpired"
	CodeTokenRevoked   = "TokenRevoked"
	CodeNoToken        = "NoToken"
)

// ErrTokenRejected is returned when the API answers with a non-valid code.
var ErrTokenRejected = errors.New("mapbox token rejected")

// TokenStatus is the outcome of a token check.
type TokenStatus struct {
	Code   string
	Usage  string
	User   string
	Scopes []string
}

// Valid reports whether the API accepted the token.
func (s TokenStatus) Valid() bool {
	return s.Code == CodeTokenValid
}

// Client talks to the Mapbox Tokens API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox token client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/tokens/v2",
		metrics: metrics,
		logger:  logger,
	}
}

// CheckToken asks the Tokens API whether the configured token is usable and
// records the result in the token gauge. A rejected token returns its status
// together with ErrTokenRejected.
func (c *Client) CheckToken(ctx context.Context) (TokenStatus, error) {
	status, err := c.doRequest(ctx)
	if err == nil && status.Valid() {
		c.metrics.MapTokenValid.Set(1)
		return status, nil
	}
	c.metrics.MapTokenValid.Set(0)
	if err != nil {
		return status, err
	}
	return status, fmt.Errorf("%w: %s", ErrTokenRejected, status.Code)
}

// Verify runs CheckToken and logs the outcome. The dashboard keeps serving
// either way; a bad token only leaves the map empty in the browser.
func (c *Client) Verify(ctx context.Context) bool {
	status, err := c.CheckToken(ctx)
	if err != nil {
		c.logger.Warn("map token check failed, map may not render", "error", err, "code", status.Code)
		return false
	}
	c.logger.Info("map token accepted", "usage", status.Usage, "scopes", len(status.Scopes))
	return true
}

func (c *Client) doRequest(ctx context.Context) (TokenStatus, error) {
	params := url.Values{"access_token": {c.token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return TokenStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL carries the token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return TokenStatus{}, fmt.Errorf("token request: %s %s: %w", urlErr.Op, c.baseURL, urlErr.Err)
		}
		return TokenStatus{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenStatus{}, fmt.Errorf("read response: %w", err)
	}

	// Rejected tokens come back as 401 with a code in the body.
	var tokenResp response
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.Code == "" {
		return TokenStatus{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	return TokenStatus{
		Code:   tokenResp.Code,
		Usage:  tokenResp.Token.Usage,
		User:   tokenResp.Token.User,
		Scopes: tokenResp.Token.Scopes,
	}, nil
}

// Mapbox API response types.

type response struct {
	Code  string    `json:"code"`
	Token tokenInfo `json:"token"`
}

type tokenInfo struct {
	Usage  string   `json:"usage"` // "pk" or "sk"
	User   string   `json:"user"`
	Scopes []string `json:"scopes"`
}
