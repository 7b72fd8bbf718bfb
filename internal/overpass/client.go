package overpass

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/reliefmap/shelter-cli/internal/config"
	"github.com/reliefmap/shelter-cli/internal/model"
)

// Fetcher executes the fixed regional facility query.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Facility, error)
}

// Client issues the facility query against an ordered list of Overpass
// endpoint mirrors. Mirrors are tried strictly in priority order with a
// bounded per-attempt timeout; the first structurally valid response wins,
// even when it carries zero elements. There is no overall deadline across
// mirrors, so worst-case latency is the per-attempt timeout times the number
// of configured mirrors.
type Client struct {
	endpoints  []string
	query      string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.OverpassConfig, opts ...Option) *Client {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		endpoints:  cfg.Endpoints,
		query:      BuildQuery(cfg.BBox, cfg.Amenities),
		timeout:    cfg.Timeout(),
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch runs the query, iterating endpoint mirrors until one returns a
// structurally valid response, then normalizes and filters the elements.
// The returned list may legitimately be empty. If every mirror fails, the
// last observed error is returned.
func (c *Client) Fetch(ctx context.Context) ([]model.Facility, error) {
	if len(c.endpoints) == 0 {
		return nil, eris.New("overpass: no endpoints configured")
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		elements, err := c.fetchOne(ctx, endpoint)
		if err != nil {
			lastErr = err
			zap.L().Warn("overpass endpoint failed, trying next",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			continue
		}

		facilities := NormalizeAll(elements)
		zap.L().Info("overpass fetch complete",
			zap.String("endpoint", endpoint),
			zap.Int("elements", len(elements)),
			zap.Int("facilities", len(facilities)),
		)
		return facilities, nil
	}

	return nil, eris.Wrap(lastErr, "overpass: all endpoints failed")
}

// fetchOne issues one POST attempt against a single mirror. A response is
// structurally valid only if it parses as JSON and carries an `elements`
// array, even an empty one.
func (c *Client) fetchOne(ctx context.Context, endpoint string) ([]Element, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "overpass: rate limiter wait")
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{"data": {c.query}}
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "overpass: request %s", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: %s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read body")
	}

	// Elements stays nil when the key is absent, which distinguishes a
	// malformed payload from a legitimately empty result.
	var payload struct {
		Elements json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrapf(err, "overpass: parse response from %s", endpoint)
	}
	if payload.Elements == nil {
		return nil, eris.Errorf("overpass: response from %s lacks elements array", endpoint)
	}

	var elements []Element
	if err := json.Unmarshal(payload.Elements, &elements); err != nil {
		return nil, eris.Wrapf(err, "overpass: parse elements from %s", endpoint)
	}
	return elements, nil
}
