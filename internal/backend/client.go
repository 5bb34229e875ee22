// Package backend provides the HTTP client for the local tablescope backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
	"github.com/koustreak/tablescope/internal/schema"
)

// DefaultTimeout bounds each backend request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request uuid for correlating backend logs.
const RequestIDHeader = "X-Request-ID"

const (
	pathConnect   = "connect-db"
	pathBulk      = "bulk-insert"
	pathSearch    = "comp-column-search"
	pathTablePage = "table-page"
)

// Config holds the client settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// ConnectResult is the backend's answer to a connection attempt.
type ConnectResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BulkInsertRequest asks the backend to load a local CSV file into a table.
type BulkInsertRequest struct {
	File  string `json:"file"`
	Table string `json:"table"`
}

// BulkInsertResult carries the backend's human-readable outcome.
type BulkInsertResult struct {
	Message string `json:"message"`
}

// SearchRequest is a column-scoped value search.
type SearchRequest struct {
	Table       string `json:"table"`
	CompColumn  string `json:"compColumn"`
	SearchValue string `json:"searchValue"`
}

// SearchResult is the backend's search answer.
type SearchResult struct {
	Count   int        `json:"count"`
	Message string     `json:"message,omitempty"`
	Results [][]string `json:"results,omitempty"`
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "invalid backend base URL %q", cfg.BaseURL)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Named("backend"),
	}, nil
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Connect asks the backend to open its database connection.
func (c *Client) Connect(ctx context.Context) (*ConnectResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathConnect, nil, nil)
	if err != nil {
		return nil, err
	}

	var res ConnectResult
	if err := c.doJSON(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BulkInsert asks the backend to load r.File into r.Table.
func (c *Client) BulkInsert(ctx context.Context, r BulkInsertRequest) (*BulkInsertResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, pathBulk, nil, r)
	if err != nil {
		return nil, err
	}

	var res BulkInsertResult
	if err := c.doJSON(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Search runs a column-scoped value search. The request fields are sent
// exactly as given.
func (c *Client) Search(ctx context.Context, r SearchRequest) (*SearchResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, pathSearch, nil, r)
	if err != nil {
		return nil, err
	}

	// count is required; decode through a pointer to tell a missing count from zero.
	var raw struct {
		Count   *int       `json:"count"`
		Message string     `json:"message"`
		Results [][]string `json:"results"`
	}
	if err := c.doJSON(req, &raw); err != nil {
		return nil, err
	}
	if raw.Count == nil {
		return nil, errs.New(errs.ErrKindDecode, "search response has no count")
	}
	return &SearchResult{Count: *raw.Count, Message: raw.Message, Results: raw.Results}, nil
}

// TablePage fetches and parses the rendered page for table.
func (c *Client) TablePage(ctx context.Context, table string) (*schema.TableInfo, error) {
	if table == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "table name is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, pathTablePage, url.Values{"table": {table}}, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return schema.ParseTablePage(bytes.NewReader(body))
}

// InspectTable implements schema.Reader.
func (c *Client) InspectTable(ctx context.Context, table string) (*schema.TableInfo, error) {
	return c.TablePage(ctx, table)
}

var _ schema.Reader = (*Client)(nil)

// newRequest builds a request against the base URL. A non-nil body is
// encoded as JSON.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	target, err := buildURL(c.baseURL, endpoint)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to build URL", err)
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.With().
			Str("url", req.URL.String()).
			Str("body", truncate(string(body), 200)).
			Logger().
			Warn("backend returned malformed JSON")
		return errs.Wrap(errs.ErrKindDecode, "failed to parse response", err)
	}
	return nil
}

// do executes req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	reqID := req.Header.Get(RequestIDHeader)
	log := c.log.With().Str("method", req.Method).Str("url", req.URL.String()).Str("request_id", reqID).Logger()
	log.Debug("backend request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(req.Context(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindTransport, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		log.WarnWith("backend returned error", serr, map[string]interface{}{
			"status": resp.StatusCode,
		})
		return nil, errs.Wrap(errs.ErrKindTransport, fmt.Sprintf("backend returned status %d", resp.StatusCode), serr)
	}

	log.DebugWith("backend response", map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return body, nil
}

func classifyTransport(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return errs.Wrap(errs.ErrKindCancelled, "request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrKindTimeout, "request timed out", err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return errs.Wrap(errs.ErrKindTimeout, "request timed out", err)
	}
	return errs.Wrap(errs.ErrKindTransport, "failed to call backend", err)
}

// buildURL joins endpoint onto the base URL path.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := append([]string{"/", u.Path}, pathSegments...)
	u.Path = path.Join(segments...)

	return u.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
