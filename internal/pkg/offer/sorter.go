package offer

import (
	"sort"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

// Sort returns a new, ordered copy of offers. The input sequence is never
// mutated so stored results stay stable across repeated calls.
func Sort(offers []dto.Offer, sortOption *dto.SortOption) []dto.Offer {
	var (
		field = "price"
		order = "asc"
	)

	if sortOption != nil {
		if sortOption.Field != "" {
			field = sortOption.Field
		}

		if sortOption.Order != "" {
			order = sortOption.Order
		}
	}

	results := make([]dto.Offer, len(offers))
	copy(results, offers)

	asc := order != "desc"

	switch field {
	case "duration":
		sort.SliceStable(results, func(i, j int) bool {
			if asc {
				return results[i].DurationMinutes < results[j].DurationMinutes
			}

			return results[i].DurationMinutes > results[j].DurationMinutes
		})
	case "score":
		sort.SliceStable(results, func(i, j int) bool {
			if asc {
				return results[i].Score < results[j].Score
			}

			return results[i].Score > results[j].Score
		})
	default:
		// price
		sort.SliceStable(results, func(i, j int) bool {
			if asc {
				return results[i].Pricing.TotalCash < results[j].Pricing.TotalCash
			}

			return results[i].Pricing.TotalCash > results[j].Pricing.TotalCash
		})
	}

	return results
}
