package offer

import (
	"math"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

// weighted scoring using normalization
// ref: https://www.1000minds.com/decision-making/what-is-mcdm-mcda

// weights for each criteria
const (
	WeightPrice    = 0.55
	WeightDuration = 0.25
	WeightLayovers = 0.15
	WeightSeats    = 0.05
)

// Rank scores offers with weighted normalized criteria.
// 0 indicates the best offer and 1 indicates the worst offer.
func Rank(offers []dto.Offer) []dto.Offer {
	results := make([]dto.Offer, len(offers))
	copy(results, offers)

	priceMin, priceMax := priceRange(results)
	durationMin, durationMax := durationRange(results)
	layoversMin, layoversMax := layoverRange(results)
	seatsMin, seatsMax := seatRange(results)

	for i, o := range results {
		priceScore := normalize(o.Pricing.TotalCash, priceMin, priceMax)
		durationScore := normalize(float64(o.DurationMinutes),
			float64(durationMin), float64(durationMax))
		layoverScore := normalize(float64(o.Layovers),
			float64(layoversMin), float64(layoversMax))

		// invert seats score because more seats left is better
		seatScore := 0.0
		if seatsMax != seatsMin {
			seatScore = 1 - normalize(float64(o.Availability.Seats),
				float64(seatsMin), float64(seatsMax))
		}

		results[i].Score = WeightPrice*priceScore +
			WeightDuration*durationScore +
			WeightLayovers*layoverScore +
			WeightSeats*seatScore
	}

	return results
}

func priceRange(offers []dto.Offer) (float64, float64) {
	if len(offers) == 0 {
		return 0, 0
	}

	minPrice := math.MaxFloat64
	maxPrice := -math.MaxFloat64
	for _, o := range offers {
		if o.Pricing.TotalCash < minPrice {
			minPrice = o.Pricing.TotalCash
		}
		if o.Pricing.TotalCash > maxPrice {
			maxPrice = o.Pricing.TotalCash
		}
	}
	return minPrice, maxPrice
}

func durationRange(offers []dto.Offer) (int, int) {
	if len(offers) == 0 {
		return 0, 0
	}

	minDuration := math.MaxInt
	maxDuration := -math.MaxInt
	for _, o := range offers {
		if o.DurationMinutes < minDuration {
			minDuration = o.DurationMinutes
		}
		if o.DurationMinutes > maxDuration {
			maxDuration = o.DurationMinutes
		}
	}
	return minDuration, maxDuration
}

func layoverRange(offers []dto.Offer) (int, int) {
	if len(offers) == 0 {
		return 0, 0
	}

	minLayovers := math.MaxInt
	maxLayovers := -math.MaxInt
	for _, o := range offers {
		if o.Layovers < minLayovers {
			minLayovers = o.Layovers
		}
		if o.Layovers > maxLayovers {
			maxLayovers = o.Layovers
		}
	}
	return minLayovers, maxLayovers
}

func seatRange(offers []dto.Offer) (int, int) {
	if len(offers) == 0 {
		return 0, 0
	}

	minSeats := math.MaxInt
	maxSeats := -math.MaxInt
	for _, o := range offers {
		if o.Availability.Seats < minSeats {
			minSeats = o.Availability.Seats
		}
		if o.Availability.Seats > maxSeats {
			maxSeats = o.Availability.Seats
		}
	}
	return minSeats, maxSeats
}

func normalize(value float64, min float64, max float64) float64 {
	if max == min {
		return 0
	}

	return (value - min) / (max - min)
}
