//go:build unit

package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/offer"
)

// scriptedAdapter returns queued responses per MakeRequest call.
type scriptedAdapter struct {
	mu        sync.Mutex
	name      string
	offers    []dto.Offer
	errs      []error
	normErr   error
	authErr   error
	calls     int
	authCalls int
}

func (a *scriptedAdapter) Name() string {
	if a.name == "" {
		return "Scripted"
	}

	return a.name
}

func (a *scriptedAdapter) Authenticate(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authCalls++

	return a.authErr
}

func (a *scriptedAdapter) MakeRequest(context.Context, dto.SearchCriteria) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	call := a.calls
	a.calls++

	if call < len(a.errs) && a.errs[call] != nil {
		return nil, a.errs[call]
	}

	return []byte("raw"), nil
}

func (a *scriptedAdapter) Normalize([]byte) ([]dto.Offer, error) {
	if a.normErr != nil {
		return nil, a.normErr
	}

	return a.offers, nil
}

func (a *scriptedAdapter) IsRetryable(err error) bool {
	return RetryableError(err)
}

// memCache is an in-memory OfferCacher.
type memCache struct {
	mu      sync.Mutex
	entries map[offer.Fingerprint][]dto.Offer
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[offer.Fingerprint][]dto.Offer)}
}

func (c *memCache) Get(_ context.Context, fp offer.Fingerprint) ([]dto.Offer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offers, ok := c.entries[fp]

	return offers, ok
}

func (c *memCache) Put(_ context.Context, fp offer.Fingerprint, offers []dto.Offer, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fp] = offers
	c.puts++

	return nil
}

// fakeQuota is a scripted QuotaLimiter.
type fakeQuota struct {
	mu      sync.Mutex
	allowed bool
	err     error
	records int
}

func (q *fakeQuota) Allow(context.Context, string) (bool, error) {
	return q.allowed, q.err
}

func (q *fakeQuota) Record(context.Context, string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records++

	return nil
}

func runtimeCriteria() dto.SearchCriteria {
	return dto.SearchCriteria{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: "2026-09-14",
		Passengers:    dto.PassengerCount{Adults: 1},
		CabinClass:    "economy",
		FlexibleDates: true,
	}
}

func matchedOffer(id string, price float64) dto.Offer {
	dep := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)

	return dto.Offer{
		ID: id,
		Segments: []dto.Segment{{
			Origin:      "JFK",
			Destination: "LAX",
			DepartureAt: dep,
			ArrivalAt:   dep.Add(6 * time.Hour),
		}},
		Pricing:      dto.Pricing{TotalCash: price, Currency: "USD"},
		Availability: dto.Availability{Seats: 5},
	}
}

func newTestRuntime(adapter Adapter, cache OfferCacher, quota QuotaLimiter, maxRetries int) *Runtime {
	return NewRuntime(adapter, cache, quota, nil, Config{
		MaxRetries:        maxRetries,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 2,
		CacheTTL:          time.Minute,
	})
}

func TestRuntime_Search_WriteThrough(t *testing.T) {
	adapter := &scriptedAdapter{offers: []dto.Offer{matchedOffer("1", 300)}}
	cache := newMemCache()
	quota := &fakeQuota{allowed: true}
	rt := newTestRuntime(adapter, cache, quota, 0)

	result, err := rt.Search(context.Background(), runtimeCriteria())
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if result.Cached {
		t.Fatal("first call must not report a cache hit")
	}

	if len(result.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(result.Offers))
	}

	if cache.puts != 1 {
		t.Fatalf("expected a write-through, got %d puts", cache.puts)
	}

	if quota.records != 1 {
		t.Fatalf("expected quota Record once, got %d", quota.records)
	}
}

func TestRuntime_Search_CacheHitShortCircuits(t *testing.T) {
	adapter := &scriptedAdapter{offers: []dto.Offer{matchedOffer("1", 300)}}
	cached := []dto.Offer{matchedOffer("cached", 250)}

	cache := newMemCache()
	fp := offer.NewFingerprint(runtimeCriteria(), adapter.Name())
	cache.entries[fp] = cached

	rt := newTestRuntime(adapter, cache, &fakeQuota{allowed: true}, 0)

	result, err := rt.Search(context.Background(), runtimeCriteria())
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if !result.Cached {
		t.Fatal("expected a cache hit")
	}

	if diff := cmp.Diff(cached, result.Offers); diff != "" {
		t.Fatalf("cached offers mismatch (-want +got):\n%s", diff)
	}

	if adapter.calls != 0 {
		t.Fatalf("a hit must never reach the adapter, got %d calls", adapter.calls)
	}
}

func TestRuntime_Search_QuotaDenied(t *testing.T) {
	adapter := &scriptedAdapter{}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: false}, 0)

	_, err := rt.Search(context.Background(), runtimeCriteria())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}

	if adapter.calls != 0 {
		t.Fatal("a denied request must never reach the adapter")
	}
}

func TestRuntime_Search_QuotaStoreFailureDegradesOpen(t *testing.T) {
	adapter := &scriptedAdapter{offers: []dto.Offer{matchedOffer("1", 300)}}
	rt := newTestRuntime(adapter, newMemCache(),
		&fakeQuota{allowed: false, err: errors.New("connection refused")}, 0)

	result, err := rt.Search(context.Background(), runtimeCriteria())
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(result.Offers) != 1 {
		t.Fatalf("expected the request to proceed, got %+v", result)
	}
}

func TestRuntime_Search_RetryThenSuccess(t *testing.T) {
	adapter := &scriptedAdapter{
		offers: []dto.Offer{matchedOffer("1", 300)},
		errs: []error{
			&RequestError{Source: "Scripted", StatusCode: 503},
			&RequestError{Source: "Scripted", StatusCode: 503},
			nil,
		},
	}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: true}, 3)

	result, err := rt.Search(context.Background(), runtimeCriteria())
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if adapter.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", adapter.calls)
	}

	if len(result.Offers) != 1 {
		t.Fatalf("expected offers after retries, got %+v", result)
	}
}

func TestRuntime_Search_RetriesExhausted(t *testing.T) {
	adapter := &scriptedAdapter{
		errs: []error{
			&RequestError{Source: "Scripted", StatusCode: 503},
			&RequestError{Source: "Scripted", StatusCode: 503},
			&RequestError{Source: "Scripted", StatusCode: 503},
		},
	}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: true}, 2)

	_, err := rt.Search(context.Background(), runtimeCriteria())
	if !errors.Is(err, ErrRetryExceeded) {
		t.Fatalf("error = %v, want ErrRetryExceeded", err)
	}

	if adapter.calls != 3 {
		t.Fatalf("expected maxRetries+1 attempts, got %d", adapter.calls)
	}
}

func TestRuntime_Search_NonRetryableAborts(t *testing.T) {
	adapter := &scriptedAdapter{
		errs: []error{
			&RequestError{Source: "Scripted", StatusCode: 401},
		},
	}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: true}, 3)

	_, err := rt.Search(context.Background(), runtimeCriteria())
	if err == nil {
		t.Fatal("expected an error")
	}

	if adapter.calls != 1 {
		t.Fatalf("a non-retryable failure must abort, got %d attempts", adapter.calls)
	}
}

func TestRuntime_Search_MalformedResponse(t *testing.T) {
	adapter := &scriptedAdapter{normErr: errors.New("unexpected end of JSON input")}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: true}, 3)

	_, err := rt.Search(context.Background(), runtimeCriteria())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}

	if adapter.calls != 1 {
		t.Fatalf("a malformed body must not be retried, got %d attempts", adapter.calls)
	}
}

func TestRuntime_Search_FiltersUnmatchedOffers(t *testing.T) {
	adapter := &scriptedAdapter{offers: []dto.Offer{
		matchedOffer("match", 300),
		{
			ID: "wrong_route",
			Segments: []dto.Segment{{
				Origin:      "BOS",
				Destination: "SEA",
				DepartureAt: time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC),
			}},
			Availability: dto.Availability{Seats: 5},
		},
	}}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: true}, 0)

	result, err := rt.Search(context.Background(), runtimeCriteria())
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(result.Offers) != 1 || result.Offers[0].ID != "match" {
		t.Fatalf("expected only matching offers, got %+v", result.Offers)
	}
}

func TestRuntime_Stats(t *testing.T) {
	adapter := &scriptedAdapter{offers: []dto.Offer{matchedOffer("1", 300)}}
	rt := newTestRuntime(adapter, newMemCache(), &fakeQuota{allowed: true}, 0)

	if _, err := rt.Search(context.Background(), runtimeCriteria()); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	stats := rt.Stats()
	if stats.Successes != 1 || stats.Failures != 0 {
		t.Fatalf("unexpected stats after success: %+v", stats)
	}

	if stats.ErrorRate != 0 {
		t.Fatalf("ErrorRate = %v, want 0", stats.ErrorRate)
	}

	if stats.LastSuccess.IsZero() {
		t.Fatal("LastSuccess must be set")
	}
}

func TestRetryableStatus(t *testing.T) {
	cases := map[int]bool{
		408: true,
		429: true,
		500: true,
		502: true,
		503: true,
		504: true,
		400: false,
		401: false,
		404: false,
	}

	for status, want := range cases {
		if got := RetryableStatus(status); got != want {
			t.Fatalf("RetryableStatus(%d) = %v, want %v", status, got, want)
		}
	}
}
