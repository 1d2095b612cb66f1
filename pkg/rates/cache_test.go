package rates

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeEndpoint struct {
	mu   sync.Mutex
	rate float64
	fail bool
	hits int
}

func (f *fakeEndpoint) handler(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, `{"result":"success","rates":{"INR":%g,"USD":1}}`, f.rate)
}

func (f *fakeEndpoint) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeEndpoint) hitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits
}

func newTestCache(t *testing.T, ep *fakeEndpoint) *Cache {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(ep.handler))
	t.Cleanup(srv.Close)
	return NewCache(Config{
		Endpoint: srv.URL,
		Currency: "INR",
		TTL:      300 * time.Second,
		Timeout:  2 * time.Second,
		Fallback: 91.0,
	})
}

func TestRate_FetchesAndCaches(t *testing.T) {
	ep := &fakeEndpoint{rate: 88.5}
	c := newTestCache(t, ep)
	ctx := context.Background()

	if got := c.Rate(ctx); got != 88.5 {
		t.Fatalf("Rate = %v, want 88.5", got)
	}
	if got := c.Rate(ctx); got != 88.5 {
		t.Fatalf("cached Rate = %v, want 88.5", got)
	}
	if ep.hitCount() != 1 {
		t.Errorf("endpoint hit %d times, want 1", ep.hitCount())
	}
}

func TestRate_RefetchesAfterTTL(t *testing.T) {
	ep := &fakeEndpoint{rate: 88.5}
	c := newTestCache(t, ep)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Rate(ctx)
	now = now.Add(301 * time.Second)
	c.Rate(ctx)

	if ep.hitCount() != 2 {
		t.Errorf("endpoint hit %d times, want 2", ep.hitCount())
	}
}

func TestRate_FallbackOnFailure(t *testing.T) {
	ep := &fakeEndpoint{rate: 88.5, fail: true}
	c := newTestCache(t, ep)
	ctx := context.Background()

	if got := c.Rate(ctx); got != 91.0 {
		t.Fatalf("Rate = %v, want fallback 91.0", got)
	}

	// The fallback must not be cached: once the endpoint recovers the
	// next call fetches the real rate.
	ep.setFail(false)
	if got := c.Rate(ctx); got != 88.5 {
		t.Fatalf("Rate after recovery = %v, want 88.5", got)
	}
}

func TestRate_FreshCacheSurvivesFailure(t *testing.T) {
	ep := &fakeEndpoint{rate: 88.5}
	c := newTestCache(t, ep)
	ctx := context.Background()

	c.Rate(ctx)
	ep.setFail(true)

	// Still within TTL: cached value wins, no fetch.
	if got := c.Rate(ctx); got != 88.5 {
		t.Fatalf("Rate = %v, want cached 88.5", got)
	}
}

func TestRate_RejectsNonPositive(t *testing.T) {
	ep := &fakeEndpoint{rate: 0}
	c := newTestCache(t, ep)

	if got := c.Rate(context.Background()); got != 91.0 {
		t.Fatalf("Rate = %v, want fallback for non-positive payload", got)
	}
}

func TestRate_MissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":"success","rates":{"EUR":0.9}}`)
	}))
	t.Cleanup(srv.Close)

	c := NewCache(Config{Endpoint: srv.URL, Currency: "INR", Fallback: 91.0})
	if got := c.Rate(context.Background()); got != 91.0 {
		t.Fatalf("Rate = %v, want fallback for missing currency", got)
	}
}

func TestNewCache_Defaults(t *testing.T) {
	c := NewCache(Config{})
	if c.endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q", c.endpoint)
	}
	if c.currency != DefaultCurrency {
		t.Errorf("currency = %q", c.currency)
	}
	if c.ttl != DefaultTTL || c.fallback != DefaultFallback {
		t.Errorf("ttl = %v, fallback = %v", c.ttl, c.fallback)
	}
}
