// Package erpnext is an HTTP client for the ERPNext/Frappe REST API using token
// authentication ("Authorization: token <key>:<secret>").
//
// A Client holds plaintext credentials for its lifetime, so callers build one per
// outbound operation and drop it afterwards.
package erpnext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

const (
	// DefaultTimeout bounds a single outbound call.
	DefaultTimeout = 30 * time.Second
	// DefaultDocTypeLimit is the page size used when listing DocTypes without a limit.
	DefaultDocTypeLimit = 2000

	pingPath        = "/api/method/ping"
	docTypePath     = "/api/resource/DocType"
	versionsPath    = "/api/method/frappe.utils.change_log.get_versions"
	maxResponseSize = 10 << 20
)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
}

var (
	// ErrInvalidMethod indicates a method outside GET, POST, PUT, DELETE and PATCH.
	ErrInvalidMethod = apperrors.Wrap(apperrors.ErrInvalidInput, "method must be one of GET, POST, PUT, DELETE, PATCH")

	// ErrInvalidPath indicates a request path that does not start with /api/.
	ErrInvalidPath = apperrors.Wrap(apperrors.ErrInvalidInput, "path must start with /api/")

	// ErrUnexpectedStatus indicates the instance answered with a non-200 status.
	ErrUnexpectedStatus = apperrors.Wrap(apperrors.ErrUpstream, "unexpected status from ERPNext")

	// ErrTransport indicates no response was received from the instance.
	ErrTransport = apperrors.Wrap(apperrors.ErrUpstream, "no response received from ERPNext")
)

// Credentials is the plaintext API key pair used for token authentication.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Client talks to a single ERPNext instance.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *retryablehttp.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithMaxRetries sets how many times a failed call is retried. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = n
	}
}

// WithRetryWait sets the bounds of the retry backoff.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryWaitMin = minWait
		c.httpClient.RetryWaitMax = maxWait
	}
}

// WithLogger sets the logger used for request and retry logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
			c.httpClient.Logger = logger
		}
	}
}

// NewClient creates a client for baseURL. A trailing slash on baseURL is ignored.
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.HTTPClient.Timeout = DefaultTimeout
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	// Hand back the last response instead of a "giving up" error so callers see
	// the real upstream status.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "token " + creds.APIKey + ":" + creds.APISecret,
		httpClient: httpClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the instance URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request is a raw call against the instance API.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

// Response is the outcome of a raw call. Status is 0 when no response was received,
// in which case Error describes the transport failure.
type Response struct {
	Status   int               `json:"status"`
	Headers  map[string]string `json:"headers"`
	Body     any               `json:"data"`
	Duration time.Duration     `json:"-"`
	Error    string            `json:"error,omitempty"`
}

// DurationMS returns the call duration in milliseconds.
func (r *Response) DurationMS() int64 {
	return r.Duration.Milliseconds()
}

// SendRaw validates and performs a raw call. Validation failures are returned as
// errors. Upstream error statuses and transport failures are reported in the Response.
func (c *Client) SendRaw(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if _, ok := allowedMethods[method]; !ok {
		return nil, ErrInvalidMethod
	}
	if !strings.HasPrefix(req.Path, "/api/") {
		return nil, ErrInvalidPath
	}

	query := url.Values{}
	for k, v := range req.Query {
		query.Set(k, v)
	}

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "request body is not JSON encodable")
		}
		body = encoded
	}

	return c.do(ctx, method, req.Path, query, body), nil
}

// Ping checks connectivity with /api/method/ping and falls back to a one-row
// DocType listing when the ping method is not exposed (404).
func (c *Client) Ping(ctx context.Context) (bool, error) {
	resp := c.do(ctx, http.MethodGet, pingPath, nil, nil)
	if resp.Status == 0 {
		return false, fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	if resp.Status == http.StatusOK {
		return true, nil
	}
	if resp.Status != http.StatusNotFound {
		return false, nil
	}

	c.logger.Debug("ping method not available, trying DocType fallback", slog.String("base_url", c.baseURL))

	resp = c.do(ctx, http.MethodGet, docTypePath, url.Values{"limit": {"1"}}, nil)
	if resp.Status == 0 {
		return false, fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	return resp.Status == http.StatusOK, nil
}

// ListDocTypes returns up to limit DocType names. A non-positive limit selects
// DefaultDocTypeLimit.
func (c *Client) ListDocTypes(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultDocTypeLimit
	}

	query := url.Values{
		"fields":            {`["name"]`},
		"limit_page_length": {strconv.Itoa(limit)},
	}

	resp := c.do(ctx, http.MethodGet, docTypePath, query, nil)
	if resp.Status == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.Status)
	}

	payload, ok := resp.Body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrUnexpectedStatus)
	}
	items, _ := payload["data"].([]any)

	names := make([]string, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := row["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// InstanceInfo describes the instance versions reported by Frappe.
type InstanceInfo struct {
	BaseURL   string    `json:"base_url"`
	Connected bool      `json:"connected"`
	Version   any       `json:"version,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// InstanceInfo fetches the installed app versions. Failures are reported in the
// result, never as an error.
func (c *Client) InstanceInfo(ctx context.Context) *InstanceInfo {
	info := &InstanceInfo{BaseURL: c.baseURL, Timestamp: time.Now().UTC()}

	resp := c.do(ctx, http.MethodGet, versionsPath, nil, nil)
	if resp.Status != http.StatusOK {
		info.Error = resp.Error
		if info.Error == "" {
			info.Error = fmt.Sprintf("failed to get instance info: status %d", resp.Status)
		}
		return info
	}

	info.Connected = true
	info.Version = "Unknown"
	if payload, ok := resp.Body.(map[string]any); ok && payload["message"] != nil {
		info.Version = payload["message"]
	}
	return info
}

// TestResult summarizes a connectivity check.
type TestResult struct {
	Success        bool          `json:"success"`
	Ping           bool          `json:"ping"`
	DocTypesCount  int           `json:"doc_types_count"`
	SampleDocTypes []string      `json:"sample_doc_types"`
	InstanceInfo   *InstanceInfo `json:"instance_info,omitempty"`
	Duration       time.Duration `json:"-"`
	Error          string        `json:"error,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// TestConnection pings the instance, samples a few DocTypes and reads its versions.
func (c *Client) TestConnection(ctx context.Context) *TestResult {
	start := time.Now()
	result := &TestResult{SampleDocTypes: []string{}}

	ping, err := c.Ping(ctx)
	if err != nil {
		result.Error = err.Error()
	}
	result.Ping = ping
	result.Success = ping

	docTypes, err := c.ListDocTypes(ctx, 10)
	if err == nil {
		result.DocTypesCount = len(docTypes)
		result.SampleDocTypes = docTypes[:min(5, len(docTypes))]
	}

	result.InstanceInfo = c.InstanceInfo(ctx)
	result.Duration = time.Since(start)
	result.Timestamp = time.Now().UTC()
	return result
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) *Response {
	start := time.Now()
	resp := &Response{Headers: map[string]string{}}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rawBody any
	if body != nil {
		rawBody = bytes.NewReader(body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, rawBody)
	if err != nil {
		resp.Error = "failed to build request"
		resp.Duration = time.Since(start)
		return resp
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("erpnext request", slog.String("method", method), slog.String("path", path))

	httpResp, err := c.httpClient.Do(req)
	resp.Duration = time.Since(start)
	if err != nil {
		resp.Error = transportError(err)
		c.logger.Warn("erpnext request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", resp.Error),
		)
		return resp
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	resp.Status = httpResp.StatusCode
	for k := range httpResp.Header {
		resp.Headers[strings.ToLower(k)] = httpResp.Header.Get(k)
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		resp.Error = "failed to read response body"
	}
	resp.Body = decodeBody(raw)
	resp.Duration = time.Since(start)

	c.logger.Debug("erpnext response",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.Status),
		slog.Duration("duration", resp.Duration),
	)
	return resp
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}

// transportError describes a failed round trip without echoing request headers.
func transportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "request timed out"
		}
		return "no response received from server: " + urlErr.Err.Error()
	}
	return "no response received from server"
}
