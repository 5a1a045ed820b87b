package dto

import (
	"fmt"
	"net/http"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/pkg/exception"
)

const dateLayout = "2006-01-02"

type PassengerCount struct {
	Adults   int `json:"adults" validate:"required,min=1,max=9"`
	Children int `json:"children" validate:"min=0,max=8"`
	Infants  int `json:"infants" validate:"min=0,max=4"`
}

func (p PassengerCount) Total() int {
	return p.Adults + p.Children + p.Infants
}

// SearchCriteria is the canonical search. It is immutable once a search
// starts and seeds the response-cache fingerprint.
type SearchCriteria struct {
	Origin        string         `json:"origin" validate:"required,len=3,alpha"`
	Destination   string         `json:"destination" validate:"required,len=3,alpha"`
	DepartureDate string         `json:"departure_date" validate:"required"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Passengers    PassengerCount `json:"passengers"`
	CabinClass    string         `json:"cabin_class" validate:"required,oneof=economy premium business first"`
	FlexibleDates bool           `json:"flexible_dates"`
}

// DepartureDay parses the departure date at day granularity. Full RFC3339
// timestamps are accepted and truncated to the calendar day.
func (s SearchCriteria) DepartureDay() (time.Time, error) {
	return parseDay(s.DepartureDate)
}

// ReturnDay parses the optional return date at day granularity. A zero time
// with nil error means no return date was requested.
func (s SearchCriteria) ReturnDay() (time.Time, error) {
	if s.ReturnDate == nil || *s.ReturnDate == "" {
		return time.Time{}, nil
	}

	return parseDay(*s.ReturnDate)
}

func parseDay(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// SortOption controls post-aggregation ordering. Price ascending is the
// default when unset.
type SortOption struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type FilterOption struct {
	MinPrice           *float64 `json:"min_price,omitempty" validate:"omitempty,gt=0"`
	MaxPrice           *float64 `json:"max_price,omitempty" validate:"omitempty,gt=0"`
	MaxLayovers        *int     `json:"max_layovers,omitempty" validate:"omitempty,gte=0"`
	MaxDurationMinutes *int     `json:"max_duration_minutes,omitempty" validate:"omitempty,gt=0"`
	Airline            *string  `json:"airline,omitempty"`
	MinSeats           *int     `json:"min_seats,omitempty" validate:"omitempty,gt=0"`
}

func (f *FilterOption) Validate() error {
	if err := ValidateSingleError(f); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	if f.MinPrice != nil && f.MaxPrice != nil && *f.MaxPrice <= *f.MinPrice {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    "max_price must be greater than min_price",
		}
	}

	return nil
}

func (f *FilterOption) Bind(_ *http.Request) error {
	return f.Validate()
}

var AllowedSortField = map[string]bool{
	"price":    true,
	"duration": true,
	"score":    true,
}

// SearchRequest is the inbound payload for starting a search.
type SearchRequest struct {
	SearchCriteria
	Sources    []string      `json:"sources,omitempty"`
	SortOption *SortOption   `json:"sort_option,omitempty"`
	Filters    *FilterOption `json:"filters,omitempty"`
}

func (s *SearchRequest) Bind(_ *http.Request) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("error validate request: %w", err)
	}

	return nil
}

func (s *SearchRequest) Validate() error {
	if err := ValidateSingleError(s); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	if _, err := s.DepartureDay(); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    "departure_date must be YYYY-MM-DD or RFC3339",
		}
	}

	if _, err := s.ReturnDay(); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    "return_date must be YYYY-MM-DD or RFC3339",
		}
	}

	if s.SortOption != nil && !AllowedSortField[s.SortOption.Field] {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Invalid sort field %s", s.SortOption.Field),
		}
	}

	if s.Filters != nil {
		if err := s.Filters.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// SearchIDRequest addresses an existing search by its identifier.
type SearchIDRequest struct {
	SearchID string `json:"search_id" validate:"required,uuid"`
}

func (r *SearchIDRequest) Validate() error {
	if err := ValidateSingleError(r); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	return nil
}

// FilterResultsRequest re-filters a completed search's stored results.
type FilterResultsRequest struct {
	SearchID string       `json:"-"`
	Filters  FilterOption `json:"filters"`
}

func (r *FilterResultsRequest) Bind(_ *http.Request) error {
	return r.Filters.Validate()
}

// SortResultsRequest re-sorts a completed search's stored results.
type SortResultsRequest struct {
	SearchID   string     `json:"-"`
	SortOption SortOption `json:"sort_option"`
}

func (r *SortResultsRequest) Validate() error {
	if r.SortOption.Field != "" && !AllowedSortField[r.SortOption.Field] {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Invalid sort field %s", r.SortOption.Field),
		}
	}

	return nil
}

// InvalidateRouteRequest evicts cached offers touching a route pair.
type InvalidateRouteRequest struct {
	Origin      string `json:"origin" validate:"required,len=3,alpha"`
	Destination string `json:"destination" validate:"required,len=3,alpha"`
}

func (r *InvalidateRouteRequest) Bind(_ *http.Request) error {
	return bindValidated(r)
}

type InvalidateRouteResponse struct {
	Invalidated int `json:"invalidated"`
}

type CancelResponse struct {
	SearchID  string `json:"search_id"`
	Cancelled bool   `json:"cancelled"`
}

type FilteredResultsResponse struct {
	SearchID     string  `json:"search_id"`
	Results      []Offer `json:"results"`
	TotalResults int     `json:"total_results"`
}

type SearchStatus string

const (
	StatusInitializing SearchStatus = "initializing"
	StatusSearching    SearchStatus = "searching"
	StatusAggregating  SearchStatus = "aggregating"
	StatusCompleted    SearchStatus = "completed"
	StatusFailed       SearchStatus = "failed"
)

// Terminal reports whether no further progress events may follow.
func (s SearchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SearchProgress is the caller-observable state of one in-flight search.
// Progress is monotonically non-decreasing until a terminal status.
type SearchProgress struct {
	SearchID            string       `json:"search_id"`
	Status              SearchStatus `json:"status"`
	Progress            int          `json:"progress"`
	CompletedSources    []string     `json:"completed_sources"`
	TotalSources        int          `json:"total_sources"`
	Offers              []Offer      `json:"offers,omitempty"`
	Errors              []string     `json:"errors,omitempty"`
	StartedAt           time.Time    `json:"started_at"`
	EstimatedCompletion *time.Time   `json:"estimated_completion,omitempty"`
}

type SearchResponse struct {
	SearchID     string   `json:"search_id"`
	Results      []Offer  `json:"results"`
	TotalResults int      `json:"total_results"`
	SearchTimeMs int      `json:"search_time_ms"`
	Sources      []string `json:"sources"`
	Errors       []string `json:"errors,omitempty"`
	Cached       bool     `json:"cached"`
}

type SourceHealth struct {
	Healthy          bool       `json:"healthy"`
	ErrorRate        float64    `json:"error_rate"`
	AvgLatencyMs     int64      `json:"avg_latency_ms"`
	LastSuccess      *time.Time `json:"last_success,omitempty"`
	LastError        *time.Time `json:"last_error,omitempty"`
	LastErrorMessage string     `json:"last_error_message,omitempty"`
}

type HealthResponse struct {
	Status  string                  `json:"status"`
	Sources map[string]SourceHealth `json:"sources"`
	Cache   string                  `json:"cache"`
}
