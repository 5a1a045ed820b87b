package source

import (
	"context"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

// Adapter is the per-provider capability contract. Implementations own wire
// format translation only; resilience lives in the Runtime.
type Adapter interface {
	Name() string
	// Authenticate refreshes provider credentials when needed. Adapters with
	// static credentials return nil.
	Authenticate(ctx context.Context) error
	// MakeRequest performs one wire call and returns the raw response body.
	MakeRequest(ctx context.Context, criteria dto.SearchCriteria) ([]byte, error)
	// Normalize converts a raw response into canonical offers.
	Normalize(raw []byte) ([]dto.Offer, error)
	// IsRetryable classifies an error from MakeRequest.
	IsRetryable(err error) bool
}

// Config for one source runtime.
type Config struct {
	BaseURL           string
	APIKey            string
	APISecret         string
	Timeout           time.Duration
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	RateLimitRPS      int
	CacheTTL          time.Duration
}

// Registry maps source names to their wrapped runtimes.
type Registry struct {
	runtimes map[string]*Runtime
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[string]*Runtime),
	}
}

func (r *Registry) AddSource(name string, runtime *Runtime) {
	if _, exists := r.runtimes[name]; exists {
		return
	}

	r.runtimes[name] = runtime
	r.order = append(r.order, name)
}

func (r *Registry) Get(name string) (*Runtime, bool) {
	rt, ok := r.runtimes[name]

	return rt, ok
}

// Names returns source names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}
