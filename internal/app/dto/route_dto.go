package dto

import "net/http"

// Route candidate kinds explored by the route optimizer.
const (
	RouteDirect      = "direct"
	RoutePositioning = "positioning"
	RouteStopover    = "stopover"
	RouteOpenJaw     = "open_jaw"
)

// RouteCandidate is one itinerary shape scored against the direct option.
type RouteCandidate struct {
	Type                 string  `json:"type"`
	Offers               []Offer `json:"offers"`
	TotalCost            float64 `json:"total_cost"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
	PointsRequired       int     `json:"points_required,omitempty"`
	Savings              float64 `json:"savings,omitempty"`
	Score                float64 `json:"score"`
	Notes                string  `json:"notes,omitempty"`
}

type RouteOptimizationResult struct {
	Recommended  *RouteCandidate  `json:"recommended,omitempty"`
	Alternatives []RouteCandidate `json:"alternatives"`
}

type RouteOptimizationRequest struct {
	SearchCriteria
	Offers []Offer `json:"offers" validate:"required,min=1"`
}

func (r *RouteOptimizationRequest) Bind(_ *http.Request) error {
	if err := bindValidated(r); err != nil {
		return err
	}

	return (&SearchRequest{SearchCriteria: r.SearchCriteria}).Validate()
}
