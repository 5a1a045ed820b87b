package source

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/offer"
	"github.com/go-redis/redis_rate/v10"
)

type OfferCacher interface {
	Get(ctx context.Context, fp offer.Fingerprint) ([]dto.Offer, bool)
	Put(ctx context.Context, fp offer.Fingerprint, offers []dto.Offer, ttl time.Duration) error
}

type QuotaLimiter interface {
	Allow(ctx context.Context, source string) (bool, error)
	Record(ctx context.Context, source string) error
}

// RPSLimiter is the burst guard in front of a provider, satisfied by
// *redis_rate.Limiter.
type RPSLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// Result is one source's contribution to a search.
type Result struct {
	Offers []dto.Offer
	Cached bool
}

// Stats is a snapshot of a runtime's rolling counters.
type Stats struct {
	Successes        int64
	Failures         int64
	AvgLatencyMs     int64
	ErrorRate        float64
	LastSuccess      time.Time
	LastError        time.Time
	LastErrorMessage string
}

// Runtime turns a bare adapter into a resilient source: cache lookup, quota
// check, burst guard, retry with backoff, normalization, write-through, and
// stats bookkeeping. Safe for concurrent use; the stats counters are the
// only shared mutable state and they are updated atomically.
type Runtime struct {
	adapter Adapter
	cache   OfferCacher
	quota   QuotaLimiter
	rps     RPSLimiter
	cfg     Config

	successes      atomic.Int64
	failures       atomic.Int64
	totalLatencyMs atomic.Int64
	lastSuccess    atomic.Int64
	lastError      atomic.Int64
	lastErrMsg     atomic.Value
}

func NewRuntime(adapter Adapter, cache OfferCacher, quota QuotaLimiter,
	rps RPSLimiter, cfg Config) *Runtime {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 200 * time.Millisecond
	}

	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = 2
	}

	return &Runtime{
		adapter: adapter,
		cache:   cache,
		quota:   quota,
		rps:     rps,
		cfg:     cfg,
	}
}

func (r *Runtime) Name() string {
	return r.adapter.Name()
}

// Search runs the full resilient sequence for one canonical search.
func (r *Runtime) Search(ctx context.Context, criteria dto.SearchCriteria) (Result, error) {
	name := r.adapter.Name()

	allowed, err := r.quota.Allow(ctx, name)
	if err != nil {
		// quota store unavailable: degrade open, the burst guard still holds
		slog.WarnContext(ctx, "quota check unavailable, allowing request",
			slog.String("source", name), slog.String("error", err.Error()))

		allowed = true
	}

	if !allowed {
		return Result{}, ErrRateLimited.FromSource(name)
	}

	fp := offer.NewFingerprint(criteria, name)
	if offers, hit := r.cache.Get(ctx, fp); hit {
		return Result{Offers: offers, Cached: true}, nil
	}

	if r.rps != nil && r.cfg.RateLimitRPS > 0 {
		res, err := r.rps.Allow(ctx, fmt.Sprintf("limit:%s", name),
			redis_rate.PerSecond(r.cfg.RateLimitRPS))
		if err != nil {
			return Result{}, fmt.Errorf("failed to rate limit: %w", err)
		}

		if res.Allowed == 0 {
			return Result{}, ErrRateLimited.FromSource(name)
		}
	}

	started := time.Now()

	offers, err := r.callWithRetry(ctx, criteria)
	if err != nil {
		r.recordFailure(err)

		return Result{}, err
	}

	offers = offer.MatchCriteria(offers, criteria)

	if err := r.cache.Put(ctx, fp, offers, r.cfg.CacheTTL); err != nil {
		slog.WarnContext(ctx, "failed to write offers to cache",
			slog.String("source", name), slog.String("error", err.Error()))
	}

	if err := r.quota.Record(ctx, name); err != nil {
		slog.WarnContext(ctx, "failed to record quota usage",
			slog.String("source", name), slog.String("error", err.Error()))
	}

	r.recordSuccess(time.Since(started))

	return Result{Offers: offers}, nil
}

func (r *Runtime) callWithRetry(ctx context.Context, criteria dto.SearchCriteria) ([]dto.Offer, error) {
	name := r.adapter.Name()

	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if err := r.adapter.Authenticate(ctx); err != nil {
			return nil, fmt.Errorf("%s: failed to authenticate: %w", name, err)
		}

		raw, err := r.adapter.MakeRequest(ctx, criteria)
		if err == nil {
			offers, err := r.adapter.Normalize(raw)
			if err != nil {
				return nil, ErrMalformedResponse.FromSource(name).WithCause(err)
			}

			return offers, nil
		}

		if !r.adapter.IsRetryable(err) {
			return nil, err
		}

		lastErr = err

		if attempt < r.cfg.MaxRetries {
			backoff := time.Duration(float64(r.cfg.InitialDelay) *
				math.Pow(r.cfg.BackoffMultiplier, float64(attempt)))
			slog.InfoContext(ctx, "retrying with exponential backoff",
				slog.String("source", name),
				slog.Duration("backoff", backoff),
				slog.Int("next_attempt", attempt+2))

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%s: context cancelled or timeout: %w", name, ctx.Err())
			}
		}
	}

	return nil, ErrRetryExceeded.FromSource(name).WithCause(lastErr)
}

// Health runs a synthetic search and reports it alongside the rolling
// error rate and latency.
func (r *Runtime) Health(ctx context.Context) dto.SourceHealth {
	synthetic := dto.SearchCriteria{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Passengers:    dto.PassengerCount{Adults: 1},
		CabinClass:    "economy",
		FlexibleDates: true,
	}

	_, err := r.Search(ctx, synthetic)

	stats := r.Stats()

	health := dto.SourceHealth{
		Healthy:          err == nil,
		ErrorRate:        stats.ErrorRate,
		AvgLatencyMs:     stats.AvgLatencyMs,
		LastErrorMessage: stats.LastErrorMessage,
	}

	if !stats.LastSuccess.IsZero() {
		ts := stats.LastSuccess
		health.LastSuccess = &ts
	}

	if !stats.LastError.IsZero() {
		ts := stats.LastError
		health.LastError = &ts
	}

	return health
}

func (r *Runtime) Stats() Stats {
	successes := r.successes.Load()
	failures := r.failures.Load()

	stats := Stats{
		Successes: successes,
		Failures:  failures,
	}

	if successes > 0 {
		stats.AvgLatencyMs = r.totalLatencyMs.Load() / successes
	}

	if total := successes + failures; total > 0 {
		stats.ErrorRate = float64(failures) / float64(total)
	}

	if ts := r.lastSuccess.Load(); ts > 0 {
		stats.LastSuccess = time.Unix(ts, 0).UTC()
	}

	if ts := r.lastError.Load(); ts > 0 {
		stats.LastError = time.Unix(ts, 0).UTC()
	}

	if msg, ok := r.lastErrMsg.Load().(string); ok {
		stats.LastErrorMessage = msg
	}

	return stats
}

func (r *Runtime) recordSuccess(latency time.Duration) {
	r.successes.Add(1)
	r.totalLatencyMs.Add(latency.Milliseconds())
	r.lastSuccess.Store(time.Now().Unix())
}

func (r *Runtime) recordFailure(err error) {
	r.failures.Add(1)
	r.lastError.Store(time.Now().Unix())
	r.lastErrMsg.Store(err.Error())
}
