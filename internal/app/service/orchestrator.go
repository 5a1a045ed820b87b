package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/events"
	"github.com/abndnt/paris-night-sub002/internal/pkg/exception"
	"github.com/abndnt/paris-night-sub002/internal/pkg/offer"
	"github.com/abndnt/paris-night-sub002/internal/pkg/searchstore"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source"
)

// SourceRuntime is one resilient source as seen by the orchestrator.
type SourceRuntime interface {
	Search(ctx context.Context, criteria dto.SearchCriteria) (source.Result, error)
	Health(ctx context.Context) dto.SourceHealth
}

// SearchStore is the external persistence collaborator.
type SearchStore interface {
	CreateSearch(ctx context.Context, criteria dto.SearchCriteria) (string, error)
	UpdateSearch(ctx context.Context, id string, update searchstore.Update) error
	GetSearch(ctx context.Context, id string) (*searchstore.Record, error)
}

// RouteInvalidator evicts cached entries touching a route pair.
type RouteInvalidator interface {
	InvalidateRoute(ctx context.Context, origin, destination string) (int, error)
}

type sourceOutcome struct {
	Source string
	Result source.Result
	Err    error
}

type activeSearch struct {
	progress dto.SearchProgress
	cancel   context.CancelFunc
}

// Orchestrator fans a canonical search out to the requested sources, tracks
// per-search progress through its state machine, and persists the final
// result set. The active map is the only shared mutable state; the
// orchestrator owns its lifecycle (insert on start, delete on terminal).
type Orchestrator struct {
	sources       map[string]SourceRuntime
	sourceOrder   []string
	store         SearchStore
	cache         RouteInvalidator
	sink          events.Sink
	cachePing     func(ctx context.Context) error
	maxConcurrent int
	sourceTimeout time.Duration

	mu       sync.RWMutex
	active   map[string]*activeSearch
	inflight int
}

type OrchestratorConfig struct {
	MaxConcurrentSearches int
	SourceTimeout         time.Duration
}

func NewOrchestrator(registry *source.Registry, store SearchStore, cache RouteInvalidator,
	sink events.Sink, cachePing func(ctx context.Context) error,
	cfg OrchestratorConfig) *Orchestrator {
	if sink == nil {
		sink = events.NopSink{}
	}

	sources := make(map[string]SourceRuntime)
	order := registry.Names()
	for _, name := range order {
		rt, _ := registry.Get(name)
		sources[name] = rt
	}

	return &Orchestrator{
		sources:       sources,
		sourceOrder:   order,
		store:         store,
		cache:         cache,
		sink:          sink,
		cachePing:     cachePing,
		maxConcurrent: cfg.MaxConcurrentSearches,
		sourceTimeout: cfg.SourceTimeout,
		active:        make(map[string]*activeSearch),
	}
}

// newOrchestratorForTest wires explicit runtimes, bypassing the registry.
func newOrchestratorForTest(sources map[string]SourceRuntime, order []string,
	store SearchStore, sink events.Sink, cfg OrchestratorConfig) *Orchestrator {
	if sink == nil {
		sink = events.NopSink{}
	}

	return &Orchestrator{
		sources:       sources,
		sourceOrder:   order,
		store:         store,
		sink:          sink,
		maxConcurrent: cfg.MaxConcurrentSearches,
		sourceTimeout: cfg.SourceTimeout,
		active:        make(map[string]*activeSearch),
	}
}

// Search runs the full lifecycle of one search and blocks until terminal.
func (o *Orchestrator) Search(ctx context.Context, req dto.SearchRequest) (dto.SearchResponse, error) {
	names, err := o.resolveSources(req.Sources)
	if err != nil {
		return dto.SearchResponse{}, err
	}

	// admission control happens before any adapter call or persistence
	o.mu.Lock()
	if o.inflight >= o.maxConcurrent {
		o.mu.Unlock()

		return dto.SearchResponse{}, ErrTooManySearches
	}
	o.inflight++
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inflight--
		o.mu.Unlock()
	}()

	startedAt := time.Now()

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	id, err := o.store.CreateSearch(ctx, req.SearchCriteria)
	if err != nil {
		return dto.SearchResponse{}, fmt.Errorf("failed to create search record: %w", err)
	}

	estimated := startedAt.Add(o.sourceTimeout)
	progress := dto.SearchProgress{
		SearchID:            id,
		Status:              dto.StatusInitializing,
		CompletedSources:    []string{},
		TotalSources:        len(names),
		StartedAt:           startedAt,
		EstimatedCompletion: &estimated,
	}

	o.mu.Lock()
	o.active[id] = &activeSearch{progress: progress, cancel: cancel}
	o.mu.Unlock()

	o.emitProgress(ctx, "search:started", progress)

	o.setProgress(ctx, id, func(p *dto.SearchProgress) {
		p.Status = dto.StatusSearching
		p.Progress = 5
	})

	outcomes := o.dispatch(searchCtx, names, req.SearchCriteria)

	var (
		allOffers []dto.Offer
		errs      []string
		completed = []string{}
		settled   int
		allCached = true
	)

	for outcome := range outcomes {
		settled++

		if outcome.Err != nil {
			slog.WarnContext(ctx, "source failed",
				slog.String("search_id", id),
				slog.String("source", outcome.Source),
				slog.Any("error", outcome.Err))

			errs = append(errs, outcome.Err.Error())
		} else {
			completed = append(completed, outcome.Source)
			allOffers = append(allOffers, outcome.Result.Offers...)

			if !outcome.Result.Cached {
				allCached = false
			}
		}

		pct := 5 + 85*settled/len(names)
		o.setProgress(ctx, id, func(p *dto.SearchProgress) {
			p.Progress = pct
			p.CompletedSources = append([]string(nil), completed...)
			p.Errors = append([]string(nil), errs...)
			p.Offers = append([]dto.Offer(nil), allOffers...)
		})
	}

	o.mu.RLock()
	_, stillActive := o.active[id]
	o.mu.RUnlock()

	if !stillActive {
		return dto.SearchResponse{}, ErrSearchCancelled
	}

	o.setProgress(ctx, id, func(p *dto.SearchProgress) {
		p.Status = dto.StatusAggregating
		p.Progress = 95
	})

	results := offer.Rank(allOffers)
	if req.Filters != nil {
		results = offer.Filter(results, req.Filters)
	}
	results = offer.Sort(results, req.SortOption)

	if err := o.store.UpdateSearch(ctx, id, searchstore.Update{
		Status:  dto.StatusCompleted,
		Results: results,
		Errors:  errs,
	}); err != nil {
		o.failSearch(ctx, id, fmt.Sprintf("failed to persist results: %s", err))

		return dto.SearchResponse{}, fmt.Errorf("failed to persist search results: %w", err)
	}

	o.setProgress(ctx, id, func(p *dto.SearchProgress) {
		p.Status = dto.StatusCompleted
		p.Progress = 100
	})

	o.mu.Lock()
	terminal := o.active[id]
	delete(o.active, id)
	o.mu.Unlock()

	if terminal != nil {
		o.emitProgress(ctx, "search:completed", terminal.progress)
	}

	return dto.SearchResponse{
		SearchID:     id,
		Results:      results,
		TotalResults: len(results),
		SearchTimeMs: int(time.Since(startedAt).Milliseconds()),
		Sources:      completed,
		Errors:       errs,
		Cached:       allCached && len(completed) > 0,
	}, nil
}

// dispatch races every source against the per-source timeout. Sources that
// neither complete nor error within the timeout are recorded as timed out
// and never block the others.
func (o *Orchestrator) dispatch(ctx context.Context, names []string,
	criteria dto.SearchCriteria) <-chan sourceOutcome {
	outcomes := make(chan sourceOutcome, len(names))

	var wg sync.WaitGroup
	wg.Add(len(names))

	for _, name := range names {
		go func(name string, rt SourceRuntime) {
			defer wg.Done()

			sctx, scancel := context.WithTimeout(ctx, o.sourceTimeout)
			defer scancel()

			result, err := rt.Search(sctx, criteria)
			if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = fmt.Errorf("%s: Search timeout", name)
			}

			outcomes <- sourceOutcome{Source: name, Result: result, Err: err}
		}(name, o.sources[name])
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes
}

func (o *Orchestrator) resolveSources(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return o.sourceOrder, nil
	}

	names := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, ok := o.sources[name]; !ok {
			return nil, exception.ApplicationError{
				StatusCode: 400,
				Message:    fmt.Sprintf("unknown source %s", name),
			}
		}

		names = append(names, name)
	}

	return names, nil
}

// Progress returns a snapshot of an active search, or nil once terminal.
func (o *Orchestrator) Progress(searchID string) *dto.SearchProgress {
	o.mu.RLock()
	defer o.mu.RUnlock()

	entry, ok := o.active[searchID]
	if !ok {
		return nil
	}

	snapshot := entry.progress
	snapshot.CompletedSources = append([]string(nil), entry.progress.CompletedSources...)
	snapshot.Errors = append([]string(nil), entry.progress.Errors...)
	snapshot.Offers = append([]dto.Offer(nil), entry.progress.Offers...)

	return &snapshot
}

// Cancel forces an active search into failed. Cancelling a terminal or
// unknown search is a no-op reported as not found.
func (o *Orchestrator) Cancel(ctx context.Context, searchID string) bool {
	o.mu.Lock()
	entry, ok := o.active[searchID]
	if !ok {
		o.mu.Unlock()

		return false
	}

	delete(o.active, searchID)
	entry.cancel()

	entry.progress.Status = dto.StatusFailed
	entry.progress.Errors = append(entry.progress.Errors, "cancelled by user")
	progress := entry.progress
	o.mu.Unlock()

	if err := o.store.UpdateSearch(ctx, searchID, searchstore.Update{
		Status: dto.StatusFailed,
		Errors: progress.Errors,
	}); err != nil {
		slog.WarnContext(ctx, "failed to persist cancelled search",
			slog.String("search_id", searchID), slog.String("error", err.Error()))
	}

	o.emitProgress(ctx, "search:cancelled", progress)

	return true
}

// Filter applies filters to a completed search's persisted results and
// returns a new sequence. The stored result is never mutated and no
// adapters are contacted.
func (o *Orchestrator) Filter(ctx context.Context, searchID string,
	filters *dto.FilterOption) ([]dto.Offer, error) {
	record, err := o.completedRecord(ctx, searchID)
	if err != nil {
		return nil, err
	}

	results := offer.Filter(record.Results, filters)

	o.sink.Emit(ctx, "search:filtered", map[string]interface{}{
		"search_id": searchID,
		"results":   len(results),
	})

	return results, nil
}

// Sort reorders a completed search's persisted results into a new sequence.
func (o *Orchestrator) Sort(ctx context.Context, searchID string,
	sortOption *dto.SortOption) ([]dto.Offer, error) {
	record, err := o.completedRecord(ctx, searchID)
	if err != nil {
		return nil, err
	}

	results := offer.Sort(record.Results, sortOption)

	o.sink.Emit(ctx, "search:sorted", map[string]interface{}{
		"search_id": searchID,
		"results":   len(results),
	})

	return results, nil
}

// InvalidateRoute evicts cached offer sets touching the route pair.
func (o *Orchestrator) InvalidateRoute(ctx context.Context, origin, destination string) (int, error) {
	if o.cache == nil {
		return 0, nil
	}

	return o.cache.InvalidateRoute(ctx, origin, destination)
}

// Health probes every source concurrently and pings the cache store.
func (o *Orchestrator) Health(ctx context.Context) dto.HealthResponse {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sources = make(map[string]dto.SourceHealth, len(o.sources))
	)

	wg.Add(len(o.sources))
	for name, rt := range o.sources {
		go func(name string, rt SourceRuntime) {
			defer wg.Done()

			health := rt.Health(ctx)

			mu.Lock()
			sources[name] = health
			mu.Unlock()
		}(name, rt)
	}
	wg.Wait()

	cache := "healthy"
	if o.cachePing != nil {
		if err := o.cachePing(ctx); err != nil {
			cache = "unavailable"
		}
	}

	status := "ok"
	if cache != "healthy" {
		status = "degraded"
	}

	for _, h := range sources {
		if !h.Healthy {
			status = "degraded"

			break
		}
	}

	return dto.HealthResponse{
		Status:  status,
		Sources: sources,
		Cache:   cache,
	}
}

func (o *Orchestrator) completedRecord(ctx context.Context, searchID string) (*searchstore.Record, error) {
	record, err := o.store.GetSearch(ctx, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get search record: %w", err)
	}

	if record == nil {
		return nil, ErrSearchNotFound
	}

	if record.Status != dto.StatusCompleted {
		return nil, ErrSearchNotCompleted
	}

	return record, nil
}

// setProgress mutates an active search under the lock and emits the new
// snapshot. Terminal or cancelled searches are left untouched so no events
// follow a terminal state.
func (o *Orchestrator) setProgress(ctx context.Context, searchID string,
	mutate func(*dto.SearchProgress)) {
	o.mu.Lock()
	entry, ok := o.active[searchID]
	if !ok {
		o.mu.Unlock()

		return
	}

	mutate(&entry.progress)
	snapshot := entry.progress
	o.mu.Unlock()

	o.emitProgress(ctx, "search:progress", snapshot)
}

func (o *Orchestrator) emitProgress(ctx context.Context, event string, progress dto.SearchProgress) {
	o.sink.Emit(ctx, event, progress)
}

func (o *Orchestrator) failSearch(ctx context.Context, searchID, reason string) {
	o.mu.Lock()
	entry, ok := o.active[searchID]
	if ok {
		entry.progress.Status = dto.StatusFailed
		entry.progress.Errors = append(entry.progress.Errors, reason)
		delete(o.active, searchID)
	}
	o.mu.Unlock()

	if !ok {
		return
	}

	o.emitProgress(ctx, "search:failed", entry.progress)
}
