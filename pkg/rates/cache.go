// Package rates supplies the USD conversion rate for the relay's
// target currency, fetched from a public endpoint and cached with a
// TTL. Lookups never fail: a hardcoded fallback covers fetch errors.
package rates

import (
	"context"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/tinyland-inc/rainrelay/pkg/logger"
)

// Defaults mirror the production deployment: USD→INR from the ER-API
// open endpoint, five-minute reuse, 91.0 when the endpoint is down.
const (
	DefaultEndpoint = "https://open.er-api.com/v6/latest/USD"
	DefaultCurrency = "INR"
	DefaultTTL      = 300 * time.Second
	DefaultTimeout  = 5 * time.Second
	DefaultFallback = 91.0
)

// Config tunes a Cache. Zero fields fall back to the defaults above.
type Config struct {
	Endpoint string
	Currency string
	TTL      time.Duration
	Timeout  time.Duration
	Fallback float64
}

// Cache caches the fetched rate for at most TTL. It is deliberately
// not synchronized: the relay controller is its only caller.
type Cache struct {
	client   *resty.Client
	endpoint string
	currency string
	ttl      time.Duration
	fallback float64

	rate      float64
	fetchedAt time.Time

	now func() time.Time
}

func NewCache(cfg Config) *Cache {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Fallback <= 0 {
		cfg.Fallback = DefaultFallback
	}

	return &Cache{
		client:   resty.New().SetTimeout(cfg.Timeout),
		endpoint: cfg.Endpoint,
		currency: cfg.Currency,
		ttl:      cfg.TTL,
		fallback: cfg.Fallback,
		now:      time.Now,
	}
}

// Rate returns the current USD→target rate. A fresh cached value is
// reused; otherwise a fetch is attempted and, on any failure, the
// fallback constant is returned without touching the cached entry, so
// the next call re-attempts the fetch.
func (c *Cache) Rate(ctx context.Context) float64 {
	if c.rate > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rate
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		logger.WarnCF("rates", "Rate fetch failed, using fallback", map[string]any{
			"currency": c.currency,
			"fallback": c.fallback,
			"error":    err.Error(),
		})
		return c.fallback
	}

	c.rate = rate
	c.fetchedAt = c.now()
	return rate
}

func (c *Cache) fetch(ctx context.Context) (float64, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.endpoint)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, &StatusError{Code: resp.StatusCode()}
	}

	value := gjson.GetBytes(resp.Body(), "rates."+c.currency)
	if !value.Exists() {
		return 0, &PayloadError{Reason: "missing rates." + c.currency}
	}
	rate := value.Float()
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, &PayloadError{Reason: "non-positive rate"}
	}
	return rate, nil
}
