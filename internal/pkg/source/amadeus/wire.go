package amadeus

import "time"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type searchRequest struct {
	OriginLocationCode      string `json:"originLocationCode"`
	DestinationLocationCode string `json:"destinationLocationCode"`
	DepartureDate           string `json:"departureDate"`
	ReturnDate              string `json:"returnDate,omitempty"`
	Adults                  int    `json:"adults"`
	Children                int    `json:"children,omitempty"`
	Infants                 int    `json:"infants,omitempty"`
	TravelClass             string `json:"travelClass"`
	CurrencyCode            string `json:"currencyCode"`
	NonStopPreferred        bool   `json:"nonStopPreferred,omitempty"`
}

type searchResponse struct {
	Data []flightOffer `json:"data"`
}

type flightOffer struct {
	ID                    string            `json:"id"`
	Itineraries           []itinerary       `json:"itineraries"`
	Price                 price             `json:"price"`
	TravelerPricings      []travelerPricing `json:"travelerPricings"`
	NumberOfBookableSeats int               `json:"numberOfBookableSeats"`
}

type itinerary struct {
	Duration string    `json:"duration"`
	Segments []segment `json:"segments"`
}

type segment struct {
	Departure   endpoint `json:"departure"`
	Arrival     endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
	Aircraft    aircraft `json:"aircraft"`
}

type endpoint struct {
	IataCode string    `json:"iataCode"`
	At       time.Time `json:"at"`
}

type aircraft struct {
	Code string `json:"code"`
}

type price struct {
	Currency   string `json:"currency"`
	GrandTotal string `json:"grandTotal"`
}

type travelerPricing struct {
	FareDetailsBySegment []fareDetails `json:"fareDetailsBySegment"`
}

type fareDetails struct {
	FareBasis string `json:"fareBasis"`
	Class     string `json:"class"`
}
