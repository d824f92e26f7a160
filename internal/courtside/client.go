package courtside

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/metrics"
)

// APIClient talks to the Courtside backend over HTTP.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	tokens     TokenStore
	metrics    metrics.Metrics
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) { a.httpClient = c }
}

// WithTokenStore sets where the access token is read from when a call does
// not pass one.
func WithTokenStore(s TokenStore) Option {
	return func(a *APIClient) { a.tokens = s }
}

// WithMetrics records request outcomes.
func WithMetrics(m metrics.Metrics) Option {
	return func(a *APIClient) { a.metrics = m }
}

// WithTimeout sets a timeout on the underlying http.Client. Zero keeps the
// default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *APIClient) {
		if d > 0 {
			a.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		httpClient: &http.Client{},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure APIClient implements the CourtsideClient interface.
var _ CourtsideClient = (*APIClient)(nil)

// GetPendingMatches lists the matches waiting for the user's confirmation
// (incoming) and those the user submitted (outgoing).
func (c *APIClient) GetPendingMatches(ctx context.Context, token string) (PendingMatches, error) {
	var out PendingMatches
	if err := c.do(ctx, "get_pending_matches", http.MethodGet, "/api/matches/pending", token, nil, &out); err != nil {
		return PendingMatches{}, err
	}
	return out, nil
}

// ConfirmMatch confirms an incoming match. The feedback is nil when the
// backend answers without a body.
func (c *APIClient) ConfirmMatch(ctx context.Context, matchID ID, token string) (*ConfirmationFeedback, error) {
	var out *ConfirmationFeedback
	err := c.do(ctx, "confirm_match", http.MethodPost, matchPath(matchID, "confirm"), token, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) RejectMatch(ctx context.Context, matchID ID, token string) error {
	return c.do(ctx, "reject_match", http.MethodPost, matchPath(matchID, "reject"), token, nil, nil)
}

func (c *APIClient) DeleteMatch(ctx context.Context, matchID ID, token string) error {
	return c.do(ctx, "delete_match", http.MethodDelete, matchPath(matchID, ""), token, nil, nil)
}

func (c *APIClient) EditMatch(ctx context.Context, matchID ID, payload MatchPayload, token string) error {
	return c.do(ctx, "edit_match", http.MethodPut, matchPath(matchID, ""), token, payload, nil)
}

// SubmitMatch records a new match result that the other side has to confirm.
func (c *APIClient) SubmitMatch(ctx context.Context, payload MatchPayload, token string) error {
	return c.do(ctx, "submit_match", http.MethodPost, "/api/matches", token, payload, nil)
}

// FindMatch joins or polls the matchmaking queue for mode.
func (c *APIClient) FindMatch(ctx context.Context, token string, mode MatchType) (FindResult, error) {
	var out FindResult
	body := map[string]MatchType{"mode": mode}
	err := c.do(ctx, "find_match", http.MethodPost, "/api/matchmaking/find", token, body, &out)
	return out, err
}

func (c *APIClient) LeaveQueue(ctx context.Context, token string, mode MatchType) error {
	body := map[string]MatchType{"mode": mode}
	return c.do(ctx, "leave_queue", http.MethodPost, "/api/matchmaking/leave", token, body, nil)
}

// CreateInvite proposes a match between the given players.
func (c *APIClient) CreateInvite(ctx context.Context, req InviteRequest, token string) (Invite, error) {
	var out Invite
	err := c.do(ctx, "create_invite", http.MethodPost, "/api/matches/invite", token, req, &out)
	return out, err
}

func matchPath(matchID ID, action string) string {
	p := "/api/matches/" + url.PathEscape(matchID.String())
	if action != "" {
		p += "/" + action
	}
	return p
}

// resolveToken prefers the explicit token and falls back to the store.
func (c *APIClient) resolveToken(token string) string {
	if strings.TrimSpace(token) != "" || c.tokens == nil {
		return token
	}
	stored, err := c.tokens.AccessToken()
	if err != nil {
		log.Warn("Failed to read stored access token", "error", err)
		return ""
	}
	return stored
}

func (c *APIClient) do(ctx context.Context, operation, method, path, token string, body any, out any) error {
	header, err := RequireAuthHeader(c.resolveToken(token))
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = header
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log.Debug("Calling Courtside API", "operation", operation, "method", method, "path", path, "request_id", requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, metrics.OutcomeNetworkError, start)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	err = handleResponse(resp, out)
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		log.Debug("Courtside API returned an error", "operation", operation, "status", apiErr.Status, "code", apiErr.Code, "request_id", requestID)
		c.observe(operation, metrics.OutcomeAPIError, start)
	case errors.Is(err, errDecode):
		log.Warn("Courtside API response did not match the expected shape", "operation", operation, "error", err, "request_id", requestID)
		c.observe(operation, metrics.OutcomeDecodeError, start)
	case err != nil:
		c.observe(operation, metrics.OutcomeNetworkError, start)
	default:
		c.observe(operation, metrics.OutcomeSuccess, start)
	}
	return err
}

func (c *APIClient) observe(operation, outcome string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveAPIRequest(operation, outcome, time.Since(start).Seconds())
}

var errDecode = errors.New("failed to decode response")

// handleResponse applies the response contract shared by every endpoint:
// 204 is success without a body, a body that is not JSON counts as empty,
// JSON that does not fit out is a decode error, and a non-2xx status becomes
// an *APIError.
func handleResponse(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	data = bytes.TrimSpace(data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload map[string]any
		if len(data) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				log.Debug("Error response body is not JSON", "status", resp.StatusCode)
				payload = nil
			}
		}
		return newAPIError(resp.StatusCode, payload)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if !json.Valid(data) {
		log.Debug("Response body is not JSON, treating as empty", "status", resp.StatusCode)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", errDecode, err)
	}
	return nil
}
