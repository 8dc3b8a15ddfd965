package gitlab

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout is the per-call timeout applied when none is configured.
const DefaultTimeout = 30 * time.Second

// DefaultPageSize is the page size used for paginated listing calls.
const DefaultPageSize = 100

// Config holds the upstream connection settings. It is resolved once at
// process start and never mutated afterwards.
type Config struct {
	// BaseURL is the root of the GitLab instance, e.g. "https://gitlab.example.com".
	// The "/api/v4/" suffix is appended automatically.
	BaseURL string

	// Token is the static private token sent on every call.
	Token string

	// Timeout bounds every upstream call. Zero means DefaultTimeout.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// EnableTracing wraps the transport with OpenTelemetry instrumentation.
	EnableTracing bool
}

// Client is a thin transport over the GitLab REST API. It holds one shared
// connection pool for the process lifetime and injects the authentication
// header on every call.
type Client struct {
	apiBase    *url.URL
	token      string
	httpClient *http.Client
	log        *logrus.Logger
	observer   CallObserver
}

// CallObserver receives the outcome of every upstream call. Used to feed
// metrics without coupling this package to the metrics registry.
type CallObserver func(method, endpoint string, status int, duration time.Duration)

// NewClient creates a client for the given upstream. It fails fast on a
// missing token or an unparseable base URL.
func NewClient(cfg Config, log *logrus.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("gitlab token is required")
	}
	base := cfg.BaseURL
	if base == "" {
		return nil, fmt.Errorf("gitlab base URL is required")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	apiBase, err := url.Parse(base + "api/v4/")
	if err != nil {
		return nil, fmt.Errorf("invalid gitlab base URL %q: %w", cfg.BaseURL, err)
	}
	if apiBase.Scheme != "http" && apiBase.Scheme != "https" {
		return nil, fmt.Errorf("invalid gitlab base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.InsecureSkipVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		transport = t
	}
	if cfg.EnableTracing {
		transport = otelhttp.NewTransport(transport)
	}

	if log == nil {
		log = logrus.New()
	}

	return &Client{
		apiBase: apiBase,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log,
	}, nil
}

// SetObserver registers a call observer. Must be called before the client is
// shared across goroutines.
func (c *Client) SetObserver(obs CallObserver) {
	c.observer = obs
}

// Do performs one upstream call. relPath is relative to the API root
// ("projects/42", not "/api/v4/projects/42"). A non-2xx response or a
// transport failure is returned as *UpstreamError; a 2xx response yields the
// raw JSON body and the pagination headers.
func (c *Client) Do(ctx context.Context, method, relPath string, query url.Values, body any) (json.RawMessage, *PageInfo, error) {
	u, err := c.apiBase.Parse(relPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid upstream path %q: %w", relPath, err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, relPath, 0, duration)
		c.log.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   relPath,
		}).Debug("upstream call failed")
		return nil, nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, relPath, resp.StatusCode, duration)
		return nil, nil, &UpstreamError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.observe(method, relPath, resp.StatusCode, duration)
	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     relPath,
		"status":   resp.StatusCode,
		"duration": duration,
	}).Debug("upstream call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return raw, parsePageInfo(resp.Header), nil
}

// Get performs a GET call.
func (c *Client) Get(ctx context.Context, relPath string, query url.Values) (json.RawMessage, *PageInfo, error) {
	return c.Do(ctx, http.MethodGet, relPath, query, nil)
}

// Post performs a POST call with a JSON body.
func (c *Client) Post(ctx context.Context, relPath string, body any) (json.RawMessage, error) {
	raw, _, err := c.Do(ctx, http.MethodPost, relPath, nil, body)
	return raw, err
}

// Put performs a PUT call with a JSON body.
func (c *Client) Put(ctx context.Context, relPath string, body any) (json.RawMessage, error) {
	raw, _, err := c.Do(ctx, http.MethodPut, relPath, nil, body)
	return raw, err
}

// Ping checks upstream reachability. Used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.Get(ctx, "version", nil)
	return err
}

func (c *Client) observe(method, endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(method, endpoint, status, duration)
	}
}

// PageInfo carries the pagination signals of one listing response. GitLab
// reports either the next page number or the total page count; both are
// handled.
type PageInfo struct {
	Page       int
	NextPage   int // 0 when the upstream signals exhaustion
	TotalPages int // 0 when the upstream omits the total
}

// HasNext reports whether another page exists after the current one.
func (p *PageInfo) HasNext() bool {
	if p == nil {
		return false
	}
	if p.NextPage > 0 {
		return true
	}
	return p.TotalPages > 0 && p.Page > 0 && p.Page < p.TotalPages
}

// Next returns the number of the next page to request. Only valid when
// HasNext is true.
func (p *PageInfo) Next() int {
	if p.NextPage > 0 {
		return p.NextPage
	}
	return p.Page + 1
}

func parsePageInfo(h http.Header) *PageInfo {
	return &PageInfo{
		Page:       headerInt(h, "X-Page"),
		NextPage:   headerInt(h, "X-Next-Page"),
		TotalPages: headerInt(h, "X-Total-Pages"),
	}
}

func headerInt(h http.Header, key string) int {
	v, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return 0
	}
	return v
}
