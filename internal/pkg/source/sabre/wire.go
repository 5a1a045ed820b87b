package sabre

import "time"

type searchRequest struct {
	Origin        string `json:"Origin"`
	Destination   string `json:"Destination"`
	DepartureDate string `json:"DepartureDate"`
	ReturnDate    string `json:"ReturnDate,omitempty"`
	PassengerQty  int    `json:"PassengerQuantity"`
	CabinPref     string `json:"CabinPref"`
}

type searchResponse struct {
	PricedItineraries []pricedItinerary `json:"PricedItineraries"`
}

type pricedItinerary struct {
	SequenceNumber          int          `json:"SequenceNumber"`
	AirItinerary            airItinerary `json:"AirItinerary"`
	AirItineraryPricingInfo pricingInfo  `json:"AirItineraryPricingInfo"`
	SeatsRemaining          int          `json:"SeatsRemaining"`
}

type airItinerary struct {
	OriginDestinationOptions []odOption `json:"OriginDestinationOptions"`
}

type odOption struct {
	FlightSegments []flightSegment `json:"FlightSegments"`
}

type flightSegment struct {
	DepartureAirport  location  `json:"DepartureAirport"`
	ArrivalAirport    location  `json:"ArrivalAirport"`
	DepartureDateTime time.Time `json:"DepartureDateTime"`
	ArrivalDateTime   time.Time `json:"ArrivalDateTime"`
	MarketingAirline  carrier   `json:"MarketingAirline"`
	FlightNumber      string    `json:"FlightNumber"`
	Equipment         equipment `json:"Equipment"`
}

type location struct {
	LocationCode string `json:"LocationCode"`
}

type carrier struct {
	Code string `json:"Code"`
}

type equipment struct {
	AirEquipType string `json:"AirEquipType"`
}

type pricingInfo struct {
	ItinTotalFare itinTotalFare `json:"ItinTotalFare"`
	FareBasisCode string        `json:"FareBasisCode"`
	AwardOptions  []awardOption `json:"AwardOptions"`
}

type itinTotalFare struct {
	TotalFare fare `json:"TotalFare"`
}

type fare struct {
	Amount       float64 `json:"Amount"`
	CurrencyCode string  `json:"CurrencyCode"`
}

// awardOption is the loyalty price published alongside the cash fare.
type awardOption struct {
	ProgramID     string  `json:"ProgramID"`
	Points        int     `json:"Points"`
	CashComponent float64 `json:"CashComponent"`
}
