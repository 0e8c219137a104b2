package gateway

import (
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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"staygrip/internal/domain"
	"staygrip/internal/logging"
	"staygrip/internal/searchstate"
)

// Endpoint paths relative to Config.BaseURL
const (
	SearchPath        = "/properties.php"
	ListIDPath        = "/properties_by_list_id.php"
	FilterOptionsPath = "/getAllViewTypeAndHouseType.php"
)

// Config configures the HTTP client
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero disables limiting
	RateLimit  float64
	Burst      int
	MaxRetries int
	RetryDelay time.Duration
	// ViewTypeRemoveList names view types hidden from the filter panel
	ViewTypeRemoveList []string
}

type traceIDKey struct{}

// WithTraceID stores a trace id that is sent as X-Trace-ID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace id, or "" when there is none
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// HTTPClient implements Searcher, PropertyLookup and FilterOptionsSource
// against the REST API
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
	options    *optionsCache
}

// NewHTTPClient creates a client. A nil httpClient gets one with cfg.Timeout.
func NewHTTPClient(cfg Config, httpClient *http.Client, logger logging.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Nop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c := &HTTPClient{
		cfg:        cfg,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger.WithFields(logging.Fields{"component": "gateway"}),
	}
	c.options = newOptionsCache(c.fetchFilterOptions)
	return c
}

// Search calls properties.php with the flattened parameters
func (c *HTTPClient) Search(ctx context.Context, params searchstate.SearchParams) (domain.ResultPage, error) {
	endpoint := c.cfg.BaseURL + SearchPath
	if q := params.Values().Encode(); q != "" {
		endpoint += "?" + q
	}

	var resp PropertyResponse
	if err := c.getJSON(ctx, "search", endpoint, &resp); err != nil {
		return domain.ResultPage{}, err
	}
	if !resp.Success {
		return domain.ResultPage{}, &Error{Op: "search", Message: resp.Message}
	}

	return domain.ResultPage{
		Properties: resp.Data,
		Pagination: resp.Pagination.toDomain(),
	}, nil
}

// GetByListID looks a listing up by its list id
func (c *HTTPClient) GetByListID(ctx context.Context, listID int) (domain.Property, error) {
	endpoint := c.cfg.BaseURL + ListIDPath + "?" + url.Values{"list_id": {strconv.Itoa(listID)}}.Encode()

	var resp PropertyResponse
	if err := c.getJSON(ctx, "lookup", endpoint, &resp); err != nil {
		var gwErr *Error
		if errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound {
			return domain.Property{}, ErrNotFound
		}
		return domain.Property{}, err
	}
	if !resp.Success || len(resp.Data) == 0 {
		return domain.Property{}, ErrNotFound
	}
	return resp.Data[0], nil
}

// FilterOptions returns the property type and view type options. A
// successful response is cached for the life of the client.
func (c *HTTPClient) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return c.options.get(ctx)
}

func (c *HTTPClient) fetchFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var resp FilterOptionsResponse
	if err := c.getJSON(ctx, "filter options", c.cfg.BaseURL+FilterOptionsPath, &resp); err != nil {
		return domain.FilterOptions{}, err
	}
	return buildFilterOptions(resp, c.cfg.ViewTypeRemoveList), nil
}

// getJSON performs a GET with rate limiting and bounded retries of transient
// failures, and decodes the body into out
func (c *HTTPClient) getJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	log := c.logger.WithFields(logging.Fields{"op": op})

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelay << (attempt - 1)
			log.Warn("retrying request", logging.Fields{"attempt": attempt, "delay": delay.String(), "error": lastErr.Error()})
			select {
			case <-ctx.Done():
				return &Error{Op: op, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		lastErr = c.doJSON(ctx, op, endpoint, out)
		if lastErr == nil || !IsTransient(lastErr) {
			break
		}
	}
	if lastErr != nil {
		log.Error("request failed", lastErr, logging.Fields{"url": endpoint})
	}
	return lastErr
}

func (c *HTTPClient) doJSON(ctx context.Context, op, endpoint string, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: fmt.Errorf("decode: %w", err)}
	}

	c.logger.Debug("request succeeded", logging.Fields{"op": op, "url": endpoint})
	return nil
}

func (c *HTTPClient) doRequest(ctx context.Context, method, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	req.Header.Set("X-Trace-ID", traceID)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}
