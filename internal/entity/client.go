// Package entity is the REST client for the hosted marketplace service.
// The service owns all persistence, auth, and search ranking; this client
// only exposes the four entity operations and the voice-search function
// the front end consumes.
package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/boilerex/bx/internal/market"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get for an unknown listing ID.
var ErrNotFound = errors.New("listing not found")

// ErrUnavailable wraps transport-level failures. Callers map it to a
// generic retryable message, distinct from an explicit service error.
var ErrUnavailable = errors.New("marketplace service unavailable")

// FilterSpec narrows server-side listing queries.
type FilterSpec struct {
	Status market.Status `json:"status,omitempty"`
}

// VoiceSearchResponse is the voice-search function result. Success=false
// with an Error string is a service-level outcome, not a transport failure.
type VoiceSearchResponse struct {
	Success bool                    `json:"success"`
	Results []market.ListingSummary `json:"results"`
	Error   string                  `json:"error,omitempty"`
}

// Client talks to the hosted entity service for one app.
type Client struct {
	baseURL string
	appID   string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// New creates an entity client. baseURL is the service root without a
// trailing slash.
func New(baseURL, appID, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		appID:   appID,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SetHTTPClient overrides the underlying HTTP client (tests).
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// List returns every listing visible to the app.
func (c *Client) List(ctx context.Context) ([]market.Listing, error) {
	var listings []market.Listing
	if err := c.do(ctx, http.MethodGet, c.entityURL("", nil), nil, &listings); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// Get fetches a single listing by ID. Returns ErrNotFound when the service
// does not know the ID.
func (c *Client) Get(ctx context.Context, id string) (*market.Listing, error) {
	var l market.Listing
	if err := c.do(ctx, http.MethodGet, c.entityURL("/"+url.PathEscape(id), nil), nil, &l); err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	return &l, nil
}

// Filter returns a bounded ordered subset. sort uses the service's field
// syntax, e.g. "-created_date" for newest first.
func (c *Client) Filter(ctx context.Context, spec FilterSpec, sort string, limit int) ([]market.Listing, error) {
	q := url.Values{}
	if spec.Status != "" {
		q.Set("status", string(spec.Status))
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var listings []market.Listing
	if err := c.do(ctx, http.MethodGet, c.entityURL("", q), nil, &listings); err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}
	return listings, nil
}

// Update applies a partial mutation to a listing. Used for the
// fire-and-forget view counter; the service acknowledges or rejects.
func (c *Client) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := c.do(ctx, http.MethodPatch, c.entityURL("/"+url.PathEscape(id), nil), fields, nil); err != nil {
		return fmt.Errorf("update listing %s: %w", id, err)
	}
	return nil
}

// SearchByVoice submits a finalized transcript verbatim to the hosted
// voice-search function. Transport failures return an error wrapping
// ErrUnavailable; service-level failures come back in the response body.
func (c *Client) SearchByVoice(ctx context.Context, query string) (*VoiceSearchResponse, error) {
	u := fmt.Sprintf("%s/apps/%s/functions/searchByVoice", c.baseURL, c.appID)
	var resp VoiceSearchResponse
	if err := c.do(ctx, http.MethodPost, u, map[string]string{"query": query}, &resp); err != nil {
		return nil, fmt.Errorf("voice search: %w", err)
	}
	return &resp, nil
}

func (c *Client) entityURL(suffix string, q url.Values) string {
	u := fmt.Sprintf("%s/apps/%s/entities/Listing%s", c.baseURL, c.appID, suffix)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("entity request failed", zap.String("url", u), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("request rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
