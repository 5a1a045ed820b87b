package offer

import (
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

// Filter returns a new sequence holding the offers that pass every
// requested predicate.
func Filter(offers []dto.Offer, filterOpts *dto.FilterOption) []dto.Offer {
	if filterOpts == nil {
		results := make([]dto.Offer, len(offers))
		copy(results, offers)

		return results
	}

	results := make([]dto.Offer, 0, len(offers))

	for _, o := range offers {
		if filterOpts.MinPrice != nil && o.Pricing.TotalCash < *filterOpts.MinPrice {
			continue
		}

		if filterOpts.MaxPrice != nil && o.Pricing.TotalCash > *filterOpts.MaxPrice {
			continue
		}

		if filterOpts.MaxLayovers != nil && o.Layovers > *filterOpts.MaxLayovers {
			continue
		}

		if filterOpts.MaxDurationMinutes != nil && o.DurationMinutes > *filterOpts.MaxDurationMinutes {
			continue
		}

		if filterOpts.Airline != nil && !flownBy(o, *filterOpts.Airline) {
			continue
		}

		if filterOpts.MinSeats != nil && o.Availability.Seats < *filterOpts.MinSeats {
			continue
		}

		results = append(results, o)
	}

	return results
}

func flownBy(o dto.Offer, airline string) bool {
	for _, seg := range o.Segments {
		if seg.Airline == airline {
			return true
		}
	}

	return false
}

// MatchCriteria drops normalized offers that do not satisfy the canonical
// search: wrong route, wrong day, wrong cabin, or not enough seats.
func MatchCriteria(offers []dto.Offer, criteria dto.SearchCriteria) []dto.Offer {
	results := make([]dto.Offer, 0, len(offers))

	departureDay, err := criteria.DepartureDay()
	if err != nil {
		return results
	}

	seats := criteria.Passengers.Total()

	for _, o := range offers {
		if criteria.Origin != "" && o.Origin() != criteria.Origin {
			continue
		}

		if criteria.Destination != "" && o.Destination() != criteria.Destination {
			continue
		}

		if !criteria.FlexibleDates && !sameDay(o.DepartureAt(), departureDay) {
			continue
		}

		if seats > 0 && o.Availability.Seats < seats {
			continue
		}

		results = append(results, o)
	}

	return results
}

func sameDay(t, day time.Time) bool {
	return t.Year() == day.Year() && t.Month() == day.Month() && t.Day() == day.Day()
}
