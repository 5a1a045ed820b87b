package dto

import "time"

// Segment is a single flight leg inside an offer itinerary.
type Segment struct {
	Airline         string    `json:"airline"`
	FlightNumber    string    `json:"flight_number"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureAt     time.Time `json:"departure_at"`
	ArrivalAt       time.Time `json:"arrival_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Aircraft        string    `json:"aircraft,omitempty"`
}

// PointsOption is one way to pay for an offer with reward points.
// BestValue is derived by the valuation engine, never set by adapters.
type PointsOption struct {
	ProgramID      string  `json:"program_id" validate:"required"`
	PointsRequired int     `json:"points_required" validate:"required,gt=0"`
	CashComponent  float64 `json:"cash_component,omitempty" validate:"omitempty,gte=0"`
	TransferRatio  float64 `json:"transfer_ratio,omitempty"`
	BestValue      bool    `json:"best_value"`
}

type Pricing struct {
	TotalCash     float64        `json:"total_cash" validate:"gte=0"`
	Currency      string         `json:"currency" validate:"required,len=3"`
	Formatted     string         `json:"formatted,omitempty"`
	PointsOptions []PointsOption `json:"points_options,omitempty" validate:"omitempty,dive"`
}

type Availability struct {
	Seats     int    `json:"seats"`
	FareBasis string `json:"fare_basis,omitempty"`
}

// Offer is a single priced itinerary from one source after normalization.
// Offers are immutable value objects; post-hoc operations always work on
// copies, never on the stored sequence.
type Offer struct {
	ID              string       `json:"id"`
	Source          string       `json:"source"`
	Segments        []Segment    `json:"segments"`
	Pricing         Pricing      `json:"pricing"`
	Availability    Availability `json:"availability"`
	DurationMinutes int          `json:"duration_minutes"`
	// DurationFormatted is the human-readable form of DurationMinutes,
	// e.g. "7h 25m".
	DurationFormatted string  `json:"duration_formatted,omitempty"`
	Layovers          int     `json:"layovers"`
	Score             float64 `json:"score,omitempty"`
}

// Origin returns the first segment's departure airport.
func (o Offer) Origin() string {
	if len(o.Segments) == 0 {
		return ""
	}

	return o.Segments[0].Origin
}

// Destination returns the last segment's arrival airport.
func (o Offer) Destination() string {
	if len(o.Segments) == 0 {
		return ""
	}

	return o.Segments[len(o.Segments)-1].Destination
}

func (o Offer) DepartureAt() time.Time {
	if len(o.Segments) == 0 {
		return time.Time{}
	}

	return o.Segments[0].DepartureAt
}

func (o Offer) ArrivalAt() time.Time {
	if len(o.Segments) == 0 {
		return time.Time{}
	}

	return o.Segments[len(o.Segments)-1].ArrivalAt
}

// TouchesRoute reports whether any segment flies the given airport pair.
func (o Offer) TouchesRoute(origin, destination string) bool {
	for _, seg := range o.Segments {
		if seg.Origin == origin && seg.Destination == destination {
			return true
		}
	}

	return false
}
