//go:build unit

package sabre

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source"
)

func wireItinerary(seq int, totalFare float64, awards []awardOption) pricedItinerary {
	depart := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)

	return pricedItinerary{
		SequenceNumber: seq,
		AirItinerary: airItinerary{
			OriginDestinationOptions: []odOption{
				{
					FlightSegments: []flightSegment{
						{
							DepartureAirport:  location{LocationCode: "JFK"},
							ArrivalAirport:    location{LocationCode: "ORD"},
							DepartureDateTime: depart,
							ArrivalDateTime:   depart.Add(150 * time.Minute),
							MarketingAirline:  carrier{Code: "AA"},
							FlightNumber:      "100",
							Equipment:         equipment{AirEquipType: "738"},
						},
						{
							DepartureAirport:  location{LocationCode: "ORD"},
							ArrivalAirport:    location{LocationCode: "LAX"},
							DepartureDateTime: depart.Add(4 * time.Hour),
							ArrivalDateTime:   depart.Add(8 * time.Hour),
							MarketingAirline:  carrier{Code: "AA"},
							FlightNumber:      "250",
						},
					},
				},
			},
		},
		AirItineraryPricingInfo: pricingInfo{
			ItinTotalFare: itinTotalFare{
				TotalFare: fare{Amount: totalFare, CurrencyCode: "USD"},
			},
			FareBasisCode: "YOW",
			AwardOptions:  awards,
		},
		SeatsRemaining: 4,
	}
}

func normalizeWire(t *testing.T, itineraries ...pricedItinerary) []dto.Offer {
	t.Helper()

	raw, err := json.Marshal(searchResponse{PricedItineraries: itineraries})
	if err != nil {
		t.Fatalf("marshal wire response: %v", err)
	}

	adapter := NewAdapter(source.Config{})

	offers, err := adapter.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	return offers
}

func TestAdapter_Normalize(t *testing.T) {
	offers := normalizeWire(t, wireItinerary(7, 450.5, []awardOption{
		{ProgramID: "aa_aadvantage", Points: 25000, CashComponent: 11.2},
	}))

	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}

	got := offers[0]

	if got.ID != "7_Sabre" || got.Source != SourceName {
		t.Fatalf("unexpected identity: %s / %s", got.ID, got.Source)
	}

	if got.Origin() != "JFK" || got.Destination() != "LAX" || got.Layovers != 1 {
		t.Fatalf("unexpected itinerary shape: %+v", got)
	}

	if got.DurationMinutes != 480 || got.DurationFormatted != "8h" {
		t.Fatalf("duration = %d / %q, want 480 / 8h", got.DurationMinutes, got.DurationFormatted)
	}

	if got.Pricing.Formatted != "$450.50" {
		t.Fatalf("formatted price = %q", got.Pricing.Formatted)
	}

	wantOptions := []dto.PointsOption{
		{ProgramID: "aa_aadvantage", PointsRequired: 25000, CashComponent: 11.2},
	}
	if diff := cmp.Diff(wantOptions, got.Pricing.PointsOptions); diff != "" {
		t.Fatalf("points options mismatch (-want +got):\n%s", diff)
	}

	if got.Availability.Seats != 4 || got.Availability.FareBasis != "YOW" {
		t.Fatalf("unexpected availability: %+v", got.Availability)
	}
}

func TestAdapter_Normalize_AwardCashComponentsBounded(t *testing.T) {
	t.Run("violating_option_dropped", func(t *testing.T) {
		offers := normalizeWire(t, wireItinerary(1, 100, []awardOption{
			{ProgramID: "aa_aadvantage", Points: 20000, CashComponent: 80},
			{ProgramID: "alaska_mileageplan", Points: 18000, CashComponent: 90},
		}))

		got := offers[0].Pricing

		sum := 0.0
		for _, option := range got.PointsOptions {
			sum += option.CashComponent
		}

		if sum > got.TotalCash {
			t.Fatalf("cash components sum %.2f exceeds total %.2f", sum, got.TotalCash)
		}

		if len(got.PointsOptions) != 1 || got.PointsOptions[0].ProgramID != "aa_aadvantage" {
			t.Fatalf("expected only the first award to survive, got %+v", got.PointsOptions)
		}
	})

	t.Run("all_options_violating_leaves_cash_only", func(t *testing.T) {
		offers := normalizeWire(t, wireItinerary(1, 100, []awardOption{
			{ProgramID: "aa_aadvantage", Points: 20000, CashComponent: 150},
		}))

		if offers[0].Pricing.PointsOptions != nil {
			t.Fatalf("expected no points options, got %+v", offers[0].Pricing.PointsOptions)
		}
	})

	t.Run("zero_component_awards_always_kept", func(t *testing.T) {
		offers := normalizeWire(t, wireItinerary(1, 100, []awardOption{
			{ProgramID: "aa_aadvantage", Points: 20000},
			{ProgramID: "alaska_mileageplan", Points: 18000, CashComponent: 100},
		}))

		if len(offers[0].Pricing.PointsOptions) != 2 {
			t.Fatalf("expected both awards kept, got %+v", offers[0].Pricing.PointsOptions)
		}
	})
}

func TestAdapter_Normalize_Malformed(t *testing.T) {
	adapter := NewAdapter(source.Config{})

	if _, err := adapter.Normalize([]byte("not json")); err == nil {
		t.Fatal("expected an error for a malformed response")
	}
}
