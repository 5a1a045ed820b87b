package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source"
	"github.com/abndnt/paris-night-sub002/internal/pkg/utils"
)

const (
	SourceName = "Amadeus"

	tokenPath  = "/v1/security/oauth2/token"
	searchPath = "/v2/shopping/flight-offers"

	// refresh the OAuth token slightly before the provider expires it
	tokenExpiryMargin = 30 * time.Second
)

var cabinClasses = map[string]string{
	"economy":  "ECONOMY",
	"premium":  "PREMIUM_ECONOMY",
	"business": "BUSINESS",
	"first":    "FIRST",
}

// Adapter speaks the Amadeus self-service flight offers API: OAuth2
// client-credentials auth and a JSON POST search.
type Adapter struct {
	cfg    source.Config
	client *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewAdapter(cfg source.Config) *Adapter {
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (a *Adapter) Name() string {
	return SourceName
}

// Authenticate fetches (or reuses) an OAuth2 client-credentials token.
func (a *Adapter) Authenticate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-tokenExpiryMargin)) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.cfg.APIKey)
	form.Set("client_secret", a.cfg.APISecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return &source.RequestError{Source: SourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &source.RequestError{Source: SourceName, StatusCode: resp.StatusCode}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	a.token = token.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	return nil
}

func (a *Adapter) MakeRequest(ctx context.Context, criteria dto.SearchCriteria) ([]byte, error) {
	wireReq := searchRequest{
		OriginLocationCode:      criteria.Origin,
		DestinationLocationCode: criteria.Destination,
		DepartureDate:           criteria.DepartureDate,
		Adults:                  criteria.Passengers.Adults,
		Children:                criteria.Passengers.Children,
		Infants:                 criteria.Passengers.Infants,
		TravelClass:             cabinClasses[criteria.CabinClass],
		CurrencyCode:            "USD",
	}

	if criteria.ReturnDate != nil {
		wireReq.ReturnDate = *criteria.ReturnDate
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	a.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+a.token)
	a.mu.Unlock()
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &source.RequestError{Source: SourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &source.RequestError{Source: SourceName, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &source.RequestError{Source: SourceName, Err: err}
	}

	return raw, nil
}

func (a *Adapter) Normalize(raw []byte) ([]dto.Offer, error) {
	var response searchResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	offers := make([]dto.Offer, 0, len(response.Data))

	for _, wireOffer := range response.Data {
		if len(wireOffer.Itineraries) == 0 || len(wireOffer.Itineraries[0].Segments) == 0 {
			continue
		}

		itin := wireOffer.Itineraries[0]

		segments := make([]dto.Segment, len(itin.Segments))
		for i, seg := range itin.Segments {
			segments[i] = dto.Segment{
				Airline:         seg.CarrierCode,
				FlightNumber:    seg.CarrierCode + seg.Number,
				Origin:          seg.Departure.IataCode,
				Destination:     seg.Arrival.IataCode,
				DepartureAt:     seg.Departure.At,
				ArrivalAt:       seg.Arrival.At,
				DurationMinutes: int(seg.Arrival.At.Sub(seg.Departure.At).Minutes()),
				Aircraft:        seg.Aircraft.Code,
			}
		}

		total, err := strconv.ParseFloat(wireOffer.Price.GrandTotal, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse grand total %q: %w",
				wireOffer.Price.GrandTotal, err)
		}

		first := segments[0]
		last := segments[len(segments)-1]
		duration := int(last.ArrivalAt.Sub(first.DepartureAt).Minutes())

		offers = append(offers, dto.Offer{
			ID:       fmt.Sprintf("%s_%s", wireOffer.ID, SourceName),
			Source:   SourceName,
			Segments: segments,
			Pricing: dto.Pricing{
				TotalCash: total,
				Currency:  wireOffer.Price.Currency,
				Formatted: utils.FormatUSD(total),
			},
			Availability: dto.Availability{
				Seats:     wireOffer.NumberOfBookableSeats,
				FareBasis: fareBasis(wireOffer.TravelerPricings),
			},
			DurationMinutes:   duration,
			DurationFormatted: utils.ConvertMinutesToDuration(int64(duration)),
			Layovers:          len(segments) - 1,
		})
	}

	return offers, nil
}

func (a *Adapter) IsRetryable(err error) bool {
	return source.RetryableError(err)
}

func fareBasis(pricings []travelerPricing) string {
	for _, p := range pricings {
		for _, d := range p.FareDetailsBySegment {
			if d.FareBasis != "" {
				return d.FareBasis
			}
		}
	}

	return ""
}
