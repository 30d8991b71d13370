package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/SalesForecaster/internal/logger"
)

// UploadField is the multipart field the service reads the CSV from
const UploadField = "csv_file"

// Client talks to the analysis service over HTTP
type Client struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	log     *logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l.WithComponent("api")
		}
	}
}

// New creates a new Client
func New(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindValidation, "config", "invalid base URL", err)
	}

	c := &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
		log:     logger.New("api", nil),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the configured service origin
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListHistory fetches the stored analyses in the order the service returns them
func (c *Client) ListHistory(ctx context.Context) ([]HistoryRecord, error) {
	const op = "list_history"

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("api", "history"), http.NoBody)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindInternal, op, "failed to create request", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindNetwork, op, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.serverError(op, resp)
	}

	var records []HistoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, NewErrorWithCause(ErrKindDecode, op, "failed to decode response", err)
	}
	if records == nil {
		records = []HistoryRecord{}
	}

	return records, nil
}

// CreateAnalysis uploads file as multipart form field csv_file and returns the
// service's report. onProgress may be nil; it is not called when the body
// length is unknown. Any 2xx status counts as success.
func (c *Client) CreateAnalysis(ctx context.Context, file *File, onProgress ProgressFunc) (*Report, error) {
	const op = "create_analysis"

	if file == nil || file.Open == nil {
		return nil, NewError(ErrKindValidation, op, "no file provided")
	}

	framing, err := newMultipartUpload(UploadField, file)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindInternal, op, "failed to build form", err)
	}

	content, err := file.Open()
	if err != nil {
		return nil, NewErrorWithCause(ErrKindValidation, op, "failed to open file", err)
	}
	defer func() { _ = content.Close() }()

	total := framing.length(file.Size)
	body := &progressReader{
		r:          framing.body(content),
		total:      total,
		onProgress: onProgress,
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("api", "analyze"), body)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindInternal, op, "failed to create request", err)
	}
	req.Header.Set("Content-Type", framing.contentType)
	if total >= 0 {
		req.ContentLength = total
	}

	startTime := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return nil, NewErrorWithCause(ErrKindNetwork, op, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.DebugWithFields("upload finished", []logger.Field{
		logger.F("file", file.Name),
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(startTime)),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.serverError(op, resp)
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, NewErrorWithCause(ErrKindDecode, op, "failed to decode response", err)
	}

	return &report, nil
}

// DeleteHistoryItem removes one stored analysis. 200 and 204 are success.
func (c *Client) DeleteHistoryItem(ctx context.Context, id string) error {
	const op = "delete_history_item"

	if strings.TrimSpace(id) == "" {
		return NewError(ErrKindValidation, op, "id is required")
	}

	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint("api", "history", url.PathEscape(id)), http.NoBody)
	if err != nil {
		return NewErrorWithCause(ErrKindInternal, op, "failed to create request", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return NewErrorWithCause(ErrKindNetwork, op, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.serverError(op, resp)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// DownloadURL builds the PDF link for a stored analysis. No request is made.
func (c *Client) DownloadURL(id string) string {
	return c.endpoint("api", "download", url.PathEscape(id))
}

// Download fetches the PDF for id into w and returns the bytes written
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	const op = "download"

	if strings.TrimSpace(id) == "" {
		return 0, NewError(ErrKindValidation, op, "id is required")
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.DownloadURL(id), http.NoBody)
	if err != nil {
		return 0, NewErrorWithCause(ErrKindInternal, op, "failed to create request", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return 0, NewErrorWithCause(ErrKindNetwork, op, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, c.serverError(op, resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, NewErrorWithCause(ErrKindNetwork, op, "failed to read body", err)
	}
	return n, nil
}

// endpoint joins path elements onto the base URL. Service routes end in '/'.
func (c *Client) endpoint(elem ...string) string {
	u := c.baseURL.JoinPath(elem...)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.log.Debug("%s %s", req.Method, req.URL.String())
	return c.client.Do(req)
}

// serverError decodes the optional {"error": "..."} body of a failed response
func (c *Client) serverError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var errorResp errorResponse
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		return NewServerError(op, resp.StatusCode, errorResp.Error)
	}
	return NewServerError(op, resp.StatusCode, "")
}
