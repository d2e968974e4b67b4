// Package client talks to the platform's REST API.
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

	"go.uber.org/zap"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

// maxErrorBody bounds how much of a failed response is kept as detail
const maxErrorBody = 4096

// APIError is returned for non-2xx responses. Body carries the server's detail.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// ResponseDetail extracts the server-provided detail from err, or its message
func ResponseDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// SearchRequest is a paged metadata search
type SearchRequest struct {
	Namespace string
	Query     string
	Target    []domain.CategoryID
	Limit     int
	Offset    int
	Sort      string
}

// SearchResponse is the raw search reply
type SearchResponse struct {
	Results []metadata.RawEntity `json:"results"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// Adapter is a published ETL application
type Adapter struct {
	Name        string `json:"name"`
	Template    string `json:"template"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Client is a thin JSON client over net/http
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("client") }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for baseURL (scheme://host[:port][/prefix])
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Search runs a metadata search in a namespace
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	for _, t := range req.Target {
		q.Add("target", string(t))
	}
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("offset", strconv.Itoa(req.Offset))
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	var resp SearchResponse
	path := "/v3/namespaces/" + url.PathEscape(req.Namespace) + "/metadata/search"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &resp, nil
}

func programPath(ref domain.ProgramRef) string {
	return "/v3/namespaces/" + url.PathEscape(ref.Namespace) +
		"/apps/" + url.PathEscape(ref.AppID) +
		"/" + url.PathEscape(ref.ProgramType) +
		"/" + url.PathEscape(ref.ProgramID)
}

// ProgramStatus returns the current lifecycle status of a program
func (c *Client) ProgramStatus(ctx context.Context, ref domain.ProgramRef) (domain.ProgramStatus, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, programPath(ref)+"/status", nil, nil, &resp); err != nil {
		return domain.StatusUnknown, fmt.Errorf("program status: %w", err)
	}
	return domain.ProgramStatus(resp.Status), nil
}

// ProgramAction starts or stops a program
func (c *Client) ProgramAction(ctx context.Context, ref domain.ProgramRef, action domain.ProgramAction) error {
	if action != domain.ActionStart && action != domain.ActionStop {
		return fmt.Errorf("unsupported program action %q", action)
	}
	if err := c.do(ctx, http.MethodPost, programPath(ref)+"/"+string(action), nil, nil, nil); err != nil {
		return fmt.Errorf("program %s: %w", action, err)
	}
	return nil
}

type propertyBag struct {
	Property map[string]any `json:"property"`
}

// GetPreferences returns the user's property bag
func (c *Client) GetPreferences(ctx context.Context) (map[string]any, error) {
	var bag propertyBag
	if err := c.do(ctx, http.MethodGet, "/v3/configuration/user", nil, nil, &bag); err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if bag.Property == nil {
		bag.Property = map[string]any{}
	}
	return bag.Property, nil
}

// SetPreferences replaces the user's property bag
func (c *Client) SetPreferences(ctx context.Context, props map[string]any) error {
	if err := c.do(ctx, http.MethodPut, "/v3/configuration/user", nil, propertyBag{Property: props}, nil); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

// ListAdapters lists published ETL applications created from template
func (c *Client) ListAdapters(ctx context.Context, namespace, template string) ([]Adapter, error) {
	q := url.Values{}
	if template != "" {
		q.Set("template", template)
	}
	var adapters []Adapter
	path := "/v3/namespaces/" + url.PathEscape(namespace) + "/adapters"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &adapters); err != nil {
		return nil, fmt.Errorf("list adapters: %w", err)
	}
	return adapters, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(detail)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
