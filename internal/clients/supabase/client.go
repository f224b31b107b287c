// Package supabase provides a client for the external Supabase services:
// GoTrue token verification and the PostgREST data API.
//
// Data access goes through store clients carrying a bearer credential. A
// scoped client carries the caller's own token so the store's row-level
// security policies apply to every query; the privileged client carries the
// service-role key and is used only where policy bypass is expected
// (registration, admin listing).
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 20 // requests per second
)

// Client talks to a Supabase project's auth and REST endpoints.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithServiceKey sets the privileged service-role key
func WithServiceKey(key string) ClientOption {
	return func(c *Client) {
		c.serviceKey = key
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Supabase client for the given project URL and
// public (anon) API key.
func NewClient(baseURL, anonKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// VerifyToken validates a bearer token against GoTrue and returns the
// associated identity.
func (c *Client) VerifyToken(ctx context.Context, token string) (*models.AuthUser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Token verification rejected")
		return nil, fmt.Errorf("token verification failed (status %d)", resp.StatusCode)
	}

	var user models.AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode auth user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("token has no associated identity")
	}
	return &user, nil
}

// Scoped returns a store client authorized with the caller's token.
func (c *Client) Scoped(token string) interfaces.StoreClient {
	return &restStore{client: c, bearer: token}
}

// Privileged returns a store client authorized with the service-role key.
func (c *Client) Privileged() interfaces.StoreClient {
	return &restStore{client: c, bearer: c.serviceKey}
}

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Postgres / PostgREST error codes this system branches on.
const (
	codeInsufficientPrivilege = "42501"    // row-level security rejection
	codeUniqueViolation       = "23505"    // duplicate key
	codeNoRows                = "PGRST116" // zero rows for a single-row request
)

// mapAPIError converts a PostgREST error response into a store error,
// wrapping the sentinel errors callers branch on.
func mapAPIError(status int, body []byte) error {
	var e apiError
	_ = json.Unmarshal(body, &e)

	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("status %d", status)
	}

	switch e.Code {
	case codeInsufficientPrivilege:
		return fmt.Errorf("%w: %s", interfaces.ErrPermissionDenied, msg)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", interfaces.ErrConflict, msg)
	case codeNoRows:
		return fmt.Errorf("%w: %s", interfaces.ErrNotFound, msg)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", interfaces.ErrNotFound, msg)
	}
	return fmt.Errorf("store request failed: %s", msg)
}

// do executes one REST request with the given bearer credential and decodes
// the response into out when non-nil.
func (c *Client) do(ctx context.Context, bearer, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build store request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read store response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Store request rejected")
		return mapAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode store response: %w", err)
		}
	}
	return nil
}

// Compile-time checks
var (
	_ interfaces.IdentityClient = (*Client)(nil)
	_ interfaces.DataStore      = (*Client)(nil)
)
