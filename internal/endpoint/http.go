package endpoint

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/results"
)

// Media types accepted from the endpoint, most preferred first.
const (
	MediaTypeXML  = "application/sparql-results+xml"
	MediaTypeJSON = "application/sparql-results+json"
)

const acceptHeader = MediaTypeXML + ", " + MediaTypeJSON + ";q=0.9, text/plain;q=0.1"

// DefaultTimeout bounds one round-trip when no client is configured.
const DefaultTimeout = 30 * time.Second

// Virtuoso reports partial answers (e.g. anytime queries hitting their
// time limit) with these headers on an otherwise successful response.
const (
	headerSQLState   = "X-SQL-State"
	headerSQLMessage = "X-SQL-Message"
)

// HTTPConnection sends queries to one SPARQL endpoint.
//
// Thread-safety: HTTPConnection is safe for concurrent use.
type HTTPConnection struct {
	queryURL string
	client   *http.Client
	cache    *Cache
	group    singleflight.Group
}

// Option configures an HTTPConnection.
type Option func(*HTTPConnection)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPConnection) {
		c.client = client
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPConnection) {
		if d > 0 {
			c.client = &http.Client{Timeout: d}
		}
	}
}

// WithCache keeps successful responses in cache.
func WithCache(cache *Cache) Option {
	return func(c *HTTPConnection) {
		c.cache = cache
	}
}

// NewHTTPConnection creates a connection to the endpoint at queryURL.
func NewHTTPConnection(queryURL string, opts ...Option) *HTTPConnection {
	c := &HTTPConnection{
		queryURL: queryURL,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryURL returns the endpoint address.
func (c *HTTPConnection) QueryURL() string {
	return c.queryURL
}

// Select runs a SELECT query.
func (c *HTTPConnection) Select(ctx context.Context, sparql string) (*results.FederatedResult, error) {
	return c.query(ctx, sparql)
}

// SelectCount runs a COUNT query.
func (c *HTTPConnection) SelectCount(ctx context.Context, sparql string) (*results.FederatedResult, error) {
	return c.query(ctx, sparql)
}

// Ask runs an ASK query.
func (c *HTTPConnection) Ask(ctx context.Context, sparql string) (*results.FederatedResult, error) {
	return c.query(ctx, sparql)
}

// response is a raw endpoint answer. It is shared between callers that
// collapse onto one request, so each of them decodes its own result.
type response struct {
	status    int
	mediaType string
	body      []byte
	sqlState  string
	message   string
	cached    bool
}

func (c *HTTPConnection) query(ctx context.Context, sparql string) (*results.FederatedResult, error) {
	if err := ctx.Err(); err != nil {
		return results.Failed(results.ErrorUnreachable, c.queryURL+": "+err.Error()), nil
	}
	key := ir.Fingerprint(ir.DomainResponse, c.queryURL, sparql)

	// The shared request outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), key, sparql)
	})
	var call singleflight.Result
	select {
	case <-ctx.Done():
		slog.Warn("endpoint request abandoned", "url", c.queryURL, "error", ctx.Err())
		return results.Failed(results.ErrorUnreachable, c.queryURL+": "+ctx.Err().Error()), nil
	case call = <-ch:
	}
	if call.Err != nil {
		slog.Warn("endpoint unreachable", "url", c.queryURL, "error", call.Err)
		return results.Failed(results.ErrorUnreachable, c.queryURL+": "+call.Err.Error()), nil
	}
	resp := call.Val.(*response)
	slog.Debug("endpoint response",
		"url", c.queryURL,
		"status", resp.status,
		"media_type", resp.mediaType,
		"bytes", len(resp.body),
		"cached", resp.cached,
		"shared", call.Shared,
	)

	if resp.status < 200 || resp.status > 299 {
		return results.Failed(results.ErrorUnreachable, fmt.Sprintf("%s: HTTP %d", c.queryURL, resp.status)), nil
	}

	res, err := results.ParseFor(resp.mediaType, resp.body)
	if err != nil {
		return nil, err
	}
	if resp.sqlState != "" {
		comment := resp.sqlState
		if resp.message != "" {
			comment += ": " + resp.message
		}
		return res.WithErrorCode(results.ErrorIncomplete, comment), nil
	}
	c.store(key, resp)
	return res, nil
}

// store caches a response that decoded into a complete answer.
func (c *HTTPConnection) store(key string, resp *response) {
	if c.cache == nil || resp.cached || resp.status != http.StatusOK {
		return
	}
	if err := c.cache.Put(key, Entry{MediaType: resp.mediaType, Body: resp.body}); err != nil {
		slog.Warn("response cache write failed", "error", err)
	}
}

func (c *HTTPConnection) fetch(ctx context.Context, key, sparql string) (*response, error) {
	if c.cache != nil {
		entry, ok, err := c.cache.Get(key)
		if err != nil {
			slog.Warn("response cache read failed", "error", err)
		} else if ok {
			return &response{status: http.StatusOK, mediaType: entry.MediaType, body: entry.Body, cached: true}, nil
		}
	}

	form := url.Values{"query": {sparql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", acceptHeader)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &response{
		status:    httpResp.StatusCode,
		mediaType: mediaType(httpResp.Header.Get("Content-Type")),
		body:      body,
		sqlState:  httpResp.Header.Get(headerSQLState),
		message:   httpResp.Header.Get(headerSQLMessage),
	}, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(strings.ToLower(contentType))
	}
	return mt
}
