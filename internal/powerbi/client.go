// Package powerbi is a small client for the Power BI REST API authenticated
// as an Azure AD service principal.
package powerbi

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

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"sigo-api/internal/apperrors"
)

// Scope is the application scope granted to the service principal.
const Scope = "https://analysis.windows.net/powerbi/api/.default"

// Config holds everything needed to reach Power BI
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string // e.g. https://api.powerbi.com/v1.0/myorg
	AuthorityURL string // e.g. https://login.microsoftonline.com
	Timeout      time.Duration
	MaxAttempts  uint64
	RetryBackoff time.Duration
}

// Workspace is a Power BI workspace (called "group" by the REST API)
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dashboard is a dashboard as returned by Power BI
type Dashboard struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	EmbedURL    string `json:"embedUrl"`
	WebURL      string `json:"webUrl"`
}

// Refresh is one entry of a dataset's refresh history, newest first
type Refresh struct {
	RequestID   string     `json:"requestId"`
	RefreshType string     `json:"refreshType"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      string     `json:"status"`
}

// StatusError is a non-2xx answer from Power BI. 404 unwraps to
// ErrNotFound, everything else to ErrUpstream.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("powerbi %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	return apperrors.ErrUpstream
}

// Client talks to the Power BI REST API
type Client struct {
	http        *http.Client
	baseURL     string
	maxAttempts uint64
	backoff     time.Duration
	log         *zap.Logger
}

// NewClient builds a client whose transport fetches and caches app-only
// tokens through the OAuth2 client-credentials flow.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     strings.TrimRight(cfg.AuthorityURL, "/") + "/" + url.PathEscape(cfg.TenantID) + "/oauth2/v2.0/token",
		Scopes:       []string{Scope},
	}

	// The token endpoint is called with this client, so it shares the timeout.
	base := &http.Client{Timeout: cfg.Timeout}
	httpClient := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = cfg.Timeout

	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
		log:         log,
	}
}

type listResponse[T any] struct {
	Value []T `json:"value"`
}

// Workspaces lists the workspaces the service principal can see
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	var out listResponse[Workspace]
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// WorkspaceDashboards lists the dashboards of one workspace
func (c *Client) WorkspaceDashboards(ctx context.Context, workspaceID string) ([]Dashboard, error) {
	var out listResponse[Dashboard]
	path := "/groups/" + url.PathEscape(workspaceID) + "/dashboards"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// WorkspaceDashboard fetches a single dashboard; 404 unwraps to ErrNotFound.
func (c *Client) WorkspaceDashboard(ctx context.Context, workspaceID, dashboardID string) (*Dashboard, error) {
	var out Dashboard
	if err := c.do(ctx, http.MethodGet, dashboardPath(workspaceID, dashboardID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDashboard(ctx context.Context, workspaceID, dashboardID string) error {
	return c.do(ctx, http.MethodDelete, dashboardPath(workspaceID, dashboardID), nil, nil)
}

// RefreshDataset queues an asynchronous refresh; Power BI answers 202.
func (c *Client) RefreshDataset(ctx context.Context, workspaceID, datasetID string) error {
	return c.do(ctx, http.MethodPost, refreshesPath(workspaceID, datasetID), struct{}{}, nil)
}

func (c *Client) RefreshHistory(ctx context.Context, workspaceID, datasetID string) ([]Refresh, error) {
	var out listResponse[Refresh]
	if err := c.do(ctx, http.MethodGet, refreshesPath(workspaceID, datasetID), nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

func dashboardPath(workspaceID, dashboardID string) string {
	return "/groups/" + url.PathEscape(workspaceID) + "/dashboards/" + url.PathEscape(dashboardID)
}

func refreshesPath(workspaceID, datasetID string) string {
	return "/groups/" + url.PathEscape(workspaceID) + "/datasets/" + url.PathEscape(datasetID) + "/refreshes"
}

// do sends one request. GET and DELETE are retried on 429, 5xx and transport
// failures with exponential backoff; anything else is sent exactly once, since
// a repeated POST may queue a second refresh against the daily quota. The
// response body is decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	idempotent := method == http.MethodGet || method == http.MethodDelete
	backoff := retry.WithMaxRetries(c.maxAttempts-1, retry.NewExponential(c.backoff))
	attempt := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			var tokenErr *oauth2.RetrieveError
			if errors.As(err, &tokenErr) {
				return fmt.Errorf("%w: acquiring Power BI token: %v", apperrors.ErrUpstream, tokenErr)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			transportErr := fmt.Errorf("%w: %s %s: %v", apperrors.ErrUpstream, method, path, err)
			if !idempotent {
				return transportErr
			}
			c.log.Warn("Power BI request failed, retrying",
				zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(transportErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
			transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
			if transient && idempotent {
				c.log.Warn("Power BI returned a transient status, retrying",
					zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
				return retry.RetryableError(statusErr)
			}
			return statusErr
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding %s %s: %v", apperrors.ErrUpstream, method, path, err)
		}
		return nil
	})
}
