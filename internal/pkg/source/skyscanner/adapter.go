package skyscanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source"
	"github.com/abndnt/paris-night-sub002/internal/pkg/utils"
)

const (
	SourceName = "Skyscanner"

	searchPath = "/v3/flights/live/search"
)

// Adapter speaks a Skyscanner-style live search API: GET with query params
// and an api key header, flat itinerary/leg response.
type Adapter struct {
	cfg    source.Config
	client *http.Client
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

func (a *Adapter) Authenticate(_ context.Context) error {
	return nil
}

func (a *Adapter) MakeRequest(ctx context.Context, criteria dto.SearchCriteria) ([]byte, error) {
	params := url.Values{}
	params.Set("origin", criteria.Origin)
	params.Set("destination", criteria.Destination)
	params.Set("departure_date", criteria.DepartureDate)
	params.Set("adults", strconv.Itoa(criteria.Passengers.Adults))
	params.Set("children", strconv.Itoa(criteria.Passengers.Children))
	params.Set("infants", strconv.Itoa(criteria.Passengers.Infants))
	params.Set("cabin_class", criteria.CabinClass)

	if criteria.ReturnDate != nil {
		params.Set("return_date", *criteria.ReturnDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.cfg.BaseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	req.Header.Set("x-api-key", a.cfg.APIKey)

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

	offers := make([]dto.Offer, 0, len(response.Itineraries))

	for _, itin := range response.Itineraries {
		if len(itin.Legs) == 0 || len(itin.PricingOptions) == 0 {
			continue
		}

		segments := make([]dto.Segment, len(itin.Legs))
		for i, l := range itin.Legs {
			segments[i] = dto.Segment{
				Airline:         l.Carrier,
				FlightNumber:    l.FlightNumber,
				Origin:          l.Origin,
				Destination:     l.Destination,
				DepartureAt:     l.Departure,
				ArrivalAt:       l.Arrival,
				DurationMinutes: l.DurationMinutes,
				Aircraft:        l.Aircraft,
			}
		}

		total := cheapestPrice(itin.PricingOptions)
		duration := int(segments[len(segments)-1].ArrivalAt.Sub(segments[0].DepartureAt).Minutes())

		offers = append(offers, dto.Offer{
			ID:       fmt.Sprintf("%s_%s", itin.ID, SourceName),
			Source:   SourceName,
			Segments: segments,
			Pricing: dto.Pricing{
				TotalCash: total,
				Currency:  response.Currency,
				Formatted: utils.FormatUSD(total),
			},
			Availability: dto.Availability{
				Seats: itin.AvailableSeats,
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

func cheapestPrice(options []pricingOption) float64 {
	cheapest := math.MaxFloat64
	for _, opt := range options {
		if opt.Price.Amount < cheapest {
			cheapest = opt.Price.Amount
		}
	}

	return cheapest
}
