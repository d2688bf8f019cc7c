package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/client/config"
	"github.com/dmitrijs2005/kakeibo/internal/client/models"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/dmitrijs2005/kakeibo/internal/netx"
)

// DefaultRequestTimeout applies when WithTimeout is not given.
const DefaultRequestTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// HTTPClient implements Client over the JSON HTTP API. The base URL and
// access key are read from the Provider on every request.
type HTTPClient struct {
	provider   config.Provider
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout bounds every request. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewHTTPClient builds a client that resolves its server through provider.
func NewHTTPClient(provider config.Provider, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		provider:   provider,
		httpClient: &http.Client{},
		timeout:    DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireItem struct {
	ClientUUID string        `json:"client_uuid"`
	Date       string        `json:"date"`
	Amount     int64         `json:"amount"`
	Category   string        `json:"category"`
	Note       string        `json:"note,omitempty"`
	PaidBy     models.PaidBy `json:"paid_by"`
	Op         models.Op     `json:"op"`
}

type pushRequest struct {
	Items []wireItem `json:"items"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// PushExpenses posts items to /sync/expenses. Local status and timestamps
// are not sent.
func (c *HTTPClient) PushExpenses(ctx context.Context, items []models.Expense) (models.SyncResult, error) {
	body := pushRequest{Items: make([]wireItem, 0, len(items))}
	for _, e := range items {
		body.Items = append(body.Items, wireItem{
			ClientUUID: e.ClientUUID,
			Date:       e.Date,
			Amount:     e.Amount,
			Category:   e.Category,
			Note:       e.Note,
			PaidBy:     e.PaidBy,
			Op:         e.Op,
		})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("failed to encode sync request: %w", err)
	}

	var res models.SyncResult
	if err := c.do(ctx, http.MethodPost, "/sync/expenses", nil, payload, &res); err != nil {
		return models.SyncResult{}, err
	}
	return res, nil
}

// FetchExpenses reads one page of /summary/expenses for [start, end].
func (c *HTTPClient) FetchExpenses(ctx context.Context, start, end string, limit, offset int) ([]models.RemoteExpense, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var rows []models.RemoteExpense
	if err := c.do(ctx, http.MethodGet, "/summary/expenses", q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping checks /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var h healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return err
	}
	if h.Status != "ok" {
		return fmt.Errorf("server unhealthy: status %q", h.Status)
	}
	return nil
}

// endpoint resolves path against the configured base URL and returns the
// access key alongside it.
func (c *HTTPClient) endpoint(ctx context.Context, path string, q url.Values) (string, string, error) {
	raw, err := c.provider.BaseURL(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("%w: server URL is not set", common.ErrConfiguration)
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "", fmt.Errorf("%w: server URL %q is invalid", common.ErrConfiguration, raw)
	}

	key, err := c.provider.AccessKey(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrConfiguration, err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("%w: access key is not set", common.ErrConfiguration)
	}

	u.RawQuery = ""
	u.Fragment = ""
	full := strings.TrimRight(u.String(), "/") + path
	if len(q) > 0 {
		full += "?" + q.Encode()
	}
	return full, key, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, q url.Values, payload []byte, out any) error {
	target, key, err := c.endpoint(ctx, path, q)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.AccessKeyHeaderName, key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: server rejected the access key", common.ErrAuthentication)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if netx.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", common.ErrTimeout, err)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case netx.IsTimeout(err):
		return fmt.Errorf("%w after %s: %w", common.ErrTimeout, c.timeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("request canceled: %w", err)
	case netx.IsTransport(err):
		return fmt.Errorf("%w: %w", common.ErrNetwork, err)
	default:
		return fmt.Errorf("request failed: %w", err)
	}
}
