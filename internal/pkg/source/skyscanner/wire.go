package skyscanner

import "time"

type searchResponse struct {
	Currency    string      `json:"currency"`
	Itineraries []itinerary `json:"itineraries"`
}

type itinerary struct {
	ID             string          `json:"id"`
	Legs           []leg           `json:"legs"`
	PricingOptions []pricingOption `json:"pricing_options"`
	AvailableSeats int             `json:"available_seats"`
}

type leg struct {
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DurationMinutes int       `json:"duration_minutes"`
	Carrier         string    `json:"carrier"`
	FlightNumber    string    `json:"flight_number"`
	Aircraft        string    `json:"aircraft,omitempty"`
}

type pricingOption struct {
	AgentID string       `json:"agent_id"`
	Price   pricingPrice `json:"price"`
}

type pricingPrice struct {
	Amount float64 `json:"amount"`
}
