// Package listings talks to the catalog backend and runs the search pipeline.
package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"listings-workers/internal/common/database"
	apperrors "listings-workers/internal/common/errors"
	commonhttp "listings-workers/internal/common/http"
	"listings-workers/internal/common/logger"
	"listings-workers/internal/common/metrics"
	"listings-workers/internal/common/observability"
	"listings-workers/internal/models"
)

// CacheKeyPrefix prefixes every cached response key.
const CacheKeyPrefix = "listings:response:"

// Fetcher is what the search service needs from a backend.
type Fetcher interface {
	FetchListings(ctx context.Context, path string) ([]models.Listing, error)
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client fetches listings from the catalog REST service. It never retries.
type Client struct {
	cfg    ClientConfig
	http   *commonhttp.Client
	cache  *database.RedisClient
	logger logger.Logger
	tracer trace.Tracer
}

// NewClient builds a Client. cache may be nil; a zero CacheTTL also disables caching.
func NewClient(cfg ClientConfig, httpClient *commonhttp.Client, cache *database.RedisClient, log logger.Logger) *Client {
	if httpClient == nil {
		// the deadline is applied per request through the context
		httpClient = commonhttp.NewClient(0)
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		cache:  cache,
		logger: log,
		tracer: otel.Tracer(observability.TracerName),
	}
}

// cachedResponse is what goes into redis: the already-normalized listings.
type cachedResponse struct {
	Listings []models.Listing `json:"listings"`
}

// FetchListings performs GET <base><path> and returns the normalized listings.
// Failures are *errors.StandardError values whose Message is fit for display.
func (c *Client) FetchListings(ctx context.Context, path string) ([]models.Listing, error) {
	ctx, span := c.tracer.Start(ctx, "listings.fetch", trace.WithAttributes(attribute.String("listings.path", path)))
	defer span.End()

	if listings, ok := c.fromCache(ctx, path); ok {
		span.SetAttributes(attribute.Bool("listings.cache_hit", true), attribute.Int("listings.count", len(listings)))
		return listings, nil
	}

	start := time.Now()
	listings, err := c.fetch(ctx, path)
	metrics.ListingsBackendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		code := string(apperrors.ErrCodeListingsFetchFailed)
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			code = string(stdErr.Code)
		}
		metrics.ListingsBackendErrors.WithLabelValues(code).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		return nil, err
	}

	span.SetAttributes(attribute.Int("listings.count", len(listings)))
	c.toCache(ctx, path, listings)
	return listings, nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]models.Listing, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.http.Get(ctx, c.cfg.BaseURL+path)
	if err != nil {
		if apperrors.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewListingsTimeoutError(path)
		}
		return nil, apperrors.NewListingsFetchFailedError("", err)
	}

	var env models.ListingsEnvelope
	decodeErr := json.Unmarshal(resp.Body, &env)

	if !resp.OK() {
		message := ""
		if decodeErr == nil {
			message = env.Message
		}
		return nil, apperrors.NewListingsFetchFailedError(message, fmt.Errorf("unexpected status %d", resp.StatusCode)).
			WithMetadata("statusCode", resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, apperrors.NewListingsResponseInvalidError("", fmt.Sprintf("malformed body: %v", decodeErr))
	}

	if !env.IsSuccess() {
		return nil, apperrors.NewListingsResponseInvalidError(env.Message, fmt.Sprintf("status=%q hasListings=%t", env.Status, env.HasListings()))
	}

	return models.ParseListings(env.Data.Listings), nil
}

func (c *Client) cacheEnabled() bool {
	return c.cache != nil && c.cfg.CacheTTL > 0
}

func (c *Client) fromCache(ctx context.Context, path string) ([]models.Listing, bool) {
	if !c.cacheEnabled() {
		return nil, false
	}

	var cached cachedResponse
	err := c.cache.GetJSON(ctx, CacheKeyPrefix+path, &cached)
	switch {
	case err == nil:
		metrics.ListingsCacheRequests.WithLabelValues("hit").Inc()
		return cached.Listings, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.ListingsCacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.ListingsCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("listings cache read failed", map[string]interface{}{"path": path, "error": err})
	}
	return nil, false
}

func (c *Client) toCache(ctx context.Context, path string, listings []models.Listing) {
	if !c.cacheEnabled() {
		return
	}
	if err := c.cache.SetJSON(ctx, CacheKeyPrefix+path, cachedResponse{Listings: listings}, c.cfg.CacheTTL); err != nil {
		c.logger.Warn("listings cache write failed", map[string]interface{}{"path": path, "error": err})
	}
}

// InvalidateCache drops every cached listings response.
func (c *Client) InvalidateCache(ctx context.Context) (int, error) {
	if c.cache == nil {
		return 0, nil
	}
	return c.cache.DeletePrefix(ctx, CacheKeyPrefix)
}

// InvalidatePath drops the cached responses for the given request paths.
func (c *Client) InvalidatePath(ctx context.Context, paths ...string) error {
	if c.cache == nil || len(paths) == 0 {
		return nil
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = CacheKeyPrefix + p
	}
	return c.cache.Del(ctx, keys...)
}

// ErrorMessage returns the display string for an error from FetchListings.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok && stdErr.Message != "" {
		return stdErr.Message
	}
	return apperrors.DefaultListingsMessage
}
