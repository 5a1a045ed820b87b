package sabre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source"
	"github.com/abndnt/paris-night-sub002/internal/pkg/utils"
)

const (
	SourceName = "Sabre"

	searchPath = "/v1/offers/shop"
)

// Adapter speaks the Sabre BFM-style shopping API with a static bearer
// token. Award options on the wire become points options on the offer.
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

// Authenticate is a no-op: the token is provisioned out of band.
func (a *Adapter) Authenticate(_ context.Context) error {
	return nil
}

func (a *Adapter) MakeRequest(ctx context.Context, criteria dto.SearchCriteria) ([]byte, error) {
	wireReq := searchRequest{
		Origin:        criteria.Origin,
		Destination:   criteria.Destination,
		DepartureDate: criteria.DepartureDate,
		PassengerQty:  criteria.Passengers.Total(),
		CabinPref:     strings.ToUpper(criteria.CabinClass[:1]),
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

	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
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

	offers := make([]dto.Offer, 0, len(response.PricedItineraries))

	for _, itin := range response.PricedItineraries {
		segments := flattenSegments(itin.AirItinerary.OriginDestinationOptions)
		if len(segments) == 0 {
			continue
		}

		first := segments[0]
		last := segments[len(segments)-1]
		total := itin.AirItineraryPricingInfo.ItinTotalFare.TotalFare.Amount
		duration := int(last.ArrivalAt.Sub(first.DepartureAt).Minutes())

		offers = append(offers, dto.Offer{
			ID:       fmt.Sprintf("%d_%s", itin.SequenceNumber, SourceName),
			Source:   SourceName,
			Segments: segments,
			Pricing: dto.Pricing{
				TotalCash:     total,
				Currency:      itin.AirItineraryPricingInfo.ItinTotalFare.TotalFare.CurrencyCode,
				Formatted:     utils.FormatUSD(total),
				PointsOptions: pointsOptions(itin.AirItineraryPricingInfo.AwardOptions, total),
			},
			Availability: dto.Availability{
				Seats:     itin.SeatsRemaining,
				FareBasis: itin.AirItineraryPricingInfo.FareBasisCode,
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

func flattenSegments(options []odOption) []dto.Segment {
	var segments []dto.Segment

	for _, opt := range options {
		for _, seg := range opt.FlightSegments {
			segments = append(segments, dto.Segment{
				Airline:         seg.MarketingAirline.Code,
				FlightNumber:    seg.MarketingAirline.Code + seg.FlightNumber,
				Origin:          seg.DepartureAirport.LocationCode,
				Destination:     seg.ArrivalAirport.LocationCode,
				DepartureAt:     seg.DepartureDateTime,
				ArrivalAt:       seg.ArrivalDateTime,
				DurationMinutes: int(seg.ArrivalDateTime.Sub(seg.DepartureDateTime).Minutes()),
				Aircraft:        seg.Equipment.AirEquipType,
			})
		}
	}

	return segments
}

// pointsOptions converts award options, dropping any whose cash component
// would push the running sum past the cash fare: an offer's total cash is
// always >= the sum of its points options' cash components.
func pointsOptions(awards []awardOption, totalCash float64) []dto.PointsOption {
	if len(awards) == 0 {
		return nil
	}

	options := make([]dto.PointsOption, 0, len(awards))

	cashSum := 0.0
	for _, award := range awards {
		if cashSum+award.CashComponent > totalCash {
			continue
		}

		cashSum += award.CashComponent

		options = append(options, dto.PointsOption{
			ProgramID:      award.ProgramID,
			PointsRequired: award.Points,
			CashComponent:  award.CashComponent,
		})
	}

	if len(options) == 0 {
		return nil
	}

	return options
}
