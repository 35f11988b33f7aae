// Package api is the HTTP client for the sleep analysis backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

const (
	// DefaultPage is used when a page number below 1 is requested.
	DefaultPage = 1
	// DefaultPageSize is used when a page size below 1 is requested.
	DefaultPageSize = 100

	// FileField is the multipart field carrying the export file.
	FileField = "file"

	maxErrorBody = 64 << 10
)

// UploadResult is the JSON object returned by the upload endpoint.
type UploadResult map[string]any

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	// Timeout applies to each request. Zero leaves the transport default.
	Timeout time.Duration
}

// Client issues requests against the backend. It has no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	mu         sync.RWMutex
}

// New creates a client from cfg.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: hc,
		baseURL:    cfg.BaseURL,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL replaces the base URL used by subsequent requests.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}

// endpoint joins the base URL and path after stripping one trailing slash.
func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.BaseURL(), "/") + path
}

// Upload sends the file at path to the upload endpoint.
func (c *Client) Upload(ctx context.Context, path string) (UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open export file", goerr.V("path", path))
	}
	defer func() {
		if err := f.Close(); err != nil {
			ctxlog.From(ctx).Warn("failed to close export file", "path", path, "error", err)
		}
	}()

	return c.UploadReader(ctx, filepath.Base(path), f)
}

// UploadReader streams r as a multipart file named name to the upload endpoint.
// A 2xx response whose body is not a JSON object yields an empty result.
func (c *Client) UploadReader(ctx context.Context, name string, r io.Reader) (UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(FileField, name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	u := c.endpoint("/upload")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, goerr.Wrap(err, "failed to build upload request", goerr.V("url", u))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(ctx, OpUpload, req)
	if err != nil {
		return nil, err
	}

	result := UploadResult{}
	if err := json.Unmarshal(body, &result); err != nil {
		ctxlog.From(ctx).Warn("upload response is not a JSON object, treating as empty",
			"url", u,
			"bytes", len(body),
			"error", err,
		)
		return UploadResult{}, nil
	}
	return result, nil
}

// FetchSummary returns the aggregate summary.
func (c *Client) FetchSummary(ctx context.Context) (*models.Summary, error) {
	u := c.endpoint("/summary")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build summary request", goerr.V("url", u))
	}

	body, err := c.do(ctx, OpSummary, req)
	if err != nil {
		return nil, err
	}

	summary, err := models.ParseSummary(body)
	if err != nil {
		return nil, &ParseError{Op: OpSummary, Err: err}
	}
	return summary, nil
}

// FetchMetrics returns one page of records for category.
func (c *Client) FetchMetrics(ctx context.Context, category models.Category, page, pageSize int) (*models.MetricPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u := c.endpoint("/metrics/"+url.PathEscape(category.String())) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build metrics request", goerr.V("url", u))
	}

	body, err := c.do(ctx, OpMetrics, req)
	if err != nil {
		return nil, err
	}

	mp, err := models.ParseMetricPage(category, page, pageSize, body)
	if err != nil {
		return nil, &ParseError{Op: OpMetrics, Err: err}
	}
	return mp, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op Op, req *http.Request) ([]byte, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")

	log := ctxlog.From(ctx).With("op", string(op), "request_id", reqID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", "url", req.URL.String(), "error", err)
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error("failed to close response body", "error", err)
		}
	}()

	log.Debug("response received",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{Op: op, Status: resp.StatusCode, Body: string(bytes.TrimSpace(text))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}
