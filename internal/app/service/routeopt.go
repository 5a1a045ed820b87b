package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

// RouteConfig tunes the heuristics the route optimizer applies to an offer
// pool. All values have working defaults from DefaultRouteConfig.
type RouteConfig struct {
	// NearbyAirports maps an airport code to substitutes close enough to
	// reach by ground transport.
	NearbyAirports map[string][]string
	// Hubs are airports where an extended stopover is worth surfacing.
	Hubs map[string]bool

	MinConnection time.Duration
	MaxConnection time.Duration

	StopoverMin time.Duration
	StopoverMax time.Duration

	// MaxGroundTransfer bounds the open-jaw gap between the outbound
	// arrival city and the inbound departure city.
	MaxGroundTransfer time.Duration
	// GroundTransfer is the assumed transfer time between nearby airports
	// when GroundTransfers has no entry for the pair.
	GroundTransfer time.Duration
	// GroundTransfers overrides the assumed transfer time for specific
	// airport pairs, keyed "AAA-BBB" (either direction).
	GroundTransfers map[string]time.Duration

	// SavingsThreshold is the minimum saving (same currency units as offer
	// pricing) a positioning itinerary must beat the direct price by.
	SavingsThreshold float64

	// StopoverCost is the estimated extra spend of breaking a journey at
	// a hub (ground transport, one hotel night).
	StopoverCost float64

	CostWeight   float64
	TimeWeight   float64
	PointsWeight float64
	SavingsBonus float64
}

func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		NearbyAirports: map[string][]string{
			"JFK": {"EWR", "LGA"},
			"EWR": {"JFK", "LGA"},
			"LGA": {"JFK", "EWR"},
			"LHR": {"LGW", "STN", "LCY"},
			"LGW": {"LHR", "STN"},
			"CDG": {"ORY", "BVA"},
			"ORY": {"CDG"},
			"NRT": {"HND"},
			"HND": {"NRT"},
			"SFO": {"OAK", "SJC"},
			"OAK": {"SFO", "SJC"},
			"LAX": {"BUR", "LGB", "SNA", "ONT"},
		},
		Hubs: map[string]bool{
			"JFK": true, "ORD": true, "DFW": true, "ATL": true,
			"LHR": true, "CDG": true, "FRA": true, "AMS": true,
			"DXB": true, "DOH": true, "IST": true,
			"SIN": true, "HKG": true, "NRT": true, "ICN": true,
		},
		MinConnection:     90 * time.Minute,
		MaxConnection:     6 * time.Hour,
		StopoverMin:       8 * time.Hour,
		StopoverMax:       48 * time.Hour,
		MaxGroundTransfer: 4 * time.Hour,
		GroundTransfer:    90 * time.Minute,
		GroundTransfers: map[string]time.Duration{
			"LHR-LGW": 75 * time.Minute,
			"LHR-LCY": 60 * time.Minute,
			"LHR-STN": 105 * time.Minute,
			"JFK-EWR": 80 * time.Minute,
			"JFK-LGA": 40 * time.Minute,
			"CDG-ORY": 75 * time.Minute,
			"CDG-BVA": 2 * time.Hour,
			"NRT-HND": 100 * time.Minute,
		},
		SavingsThreshold: 50,
		StopoverCost:     120,
		CostWeight:       0.5,
		TimeWeight:       0.3,
		PointsWeight:     0.1,
		SavingsBonus:     0.1,
	}
}

// RouteOptimizer explores alternative itinerary shapes over an already
// fetched offer pool. Pure: no adapter calls, no persistence.
type RouteOptimizer struct {
	cfg RouteConfig
}

func NewRouteOptimizer(cfg RouteConfig) *RouteOptimizer {
	return &RouteOptimizer{cfg: cfg}
}

// Optimize builds direct, positioning, stopover and open-jaw candidates from
// the pool, scores them, and returns the highest score as the recommendation
// with the rest ranked as alternatives.
func (r *RouteOptimizer) Optimize(criteria dto.SearchCriteria, pool []dto.Offer) dto.RouteOptimizationResult {
	candidates := []dto.RouteCandidate{}

	direct, hasDirect := r.directCandidate(criteria, pool)
	if hasDirect {
		candidates = append(candidates, direct)
	}

	directCost := 0.0
	if hasDirect {
		directCost = direct.TotalCost
	}

	candidates = append(candidates, r.positioningCandidates(criteria, pool, directCost, hasDirect)...)
	candidates = append(candidates, r.stopoverCandidates(criteria, pool)...)
	candidates = append(candidates, r.openJawCandidates(criteria, pool)...)

	r.score(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	result := dto.RouteOptimizationResult{Alternatives: []dto.RouteCandidate{}}
	if len(candidates) == 0 {
		return result
	}

	recommended := candidates[0]
	result.Recommended = &recommended
	result.Alternatives = candidates[1:]

	return result
}

// directCandidate picks the cheapest pool offer flying the requested pair.
func (r *RouteOptimizer) directCandidate(criteria dto.SearchCriteria, pool []dto.Offer) (dto.RouteCandidate, bool) {
	cheapest, ok := cheapestOffer(pool, criteria.Origin, criteria.Destination)
	if !ok {
		return dto.RouteCandidate{}, false
	}

	return dto.RouteCandidate{
		Type:                 dto.RouteDirect,
		Offers:               []dto.Offer{cheapest},
		TotalCost:            cheapest.Pricing.TotalCash,
		TotalDurationMinutes: cheapest.DurationMinutes,
		PointsRequired:       minPointsRequired(cheapest),
	}, true
}

// positioningCandidates pairs a short hop to a nearby substitute airport with
// a cheaper main leg from there. A candidate qualifies only when the legs
// connect inside the feasible window and the combined price beats the direct
// price by at least the savings threshold.
func (r *RouteOptimizer) positioningCandidates(criteria dto.SearchCriteria, pool []dto.Offer,
	directCost float64, hasDirect bool) []dto.RouteCandidate {
	if !hasDirect {
		return nil
	}

	var candidates []dto.RouteCandidate

	for _, altOrigin := range r.cfg.NearbyAirports[criteria.Origin] {
		positioning, ok := cheapestOffer(pool, criteria.Origin, altOrigin)
		if !ok {
			continue
		}

		main, ok := cheapestOffer(pool, altOrigin, criteria.Destination)
		if !ok {
			continue
		}

		if c, ok := r.buildPositioning(positioning, main, directCost); ok {
			c.Notes = fmt.Sprintf("position via %s", altOrigin)
			candidates = append(candidates, c)
		}
	}

	for _, altDest := range r.cfg.NearbyAirports[criteria.Destination] {
		main, ok := cheapestOffer(pool, criteria.Origin, altDest)
		if !ok {
			continue
		}

		positioning, ok := cheapestOffer(pool, altDest, criteria.Destination)
		if !ok {
			continue
		}

		if c, ok := r.buildPositioning(main, positioning, directCost); ok {
			c.Notes = fmt.Sprintf("arrive via %s", altDest)
			candidates = append(candidates, c)
		}
	}

	return candidates
}

func (r *RouteOptimizer) buildPositioning(first, second dto.Offer, directCost float64) (dto.RouteCandidate, bool) {
	connection := second.DepartureAt().Sub(first.ArrivalAt())
	if connection < r.cfg.MinConnection || connection > r.cfg.MaxConnection {
		return dto.RouteCandidate{}, false
	}

	total := first.Pricing.TotalCash + second.Pricing.TotalCash

	savings := directCost - total
	if savings < r.cfg.SavingsThreshold {
		return dto.RouteCandidate{}, false
	}

	return dto.RouteCandidate{
		Type:                 dto.RoutePositioning,
		Offers:               []dto.Offer{first, second},
		TotalCost:            total,
		TotalDurationMinutes: first.DurationMinutes + int(connection.Minutes()) + second.DurationMinutes,
		PointsRequired:       minPointsRequired(first) + minPointsRequired(second),
		Savings:              savings,
	}, true
}

// stopoverCandidates surfaces multi-segment offers whose layover at a hub is
// long enough to treat as an extended stay.
func (r *RouteOptimizer) stopoverCandidates(criteria dto.SearchCriteria, pool []dto.Offer) []dto.RouteCandidate {
	var candidates []dto.RouteCandidate

	for _, offer := range pool {
		if offer.Origin() != criteria.Origin || offer.Destination() != criteria.Destination {
			continue
		}

		for i := 0; i < len(offer.Segments)-1; i++ {
			hub := offer.Segments[i].Destination
			if !r.cfg.Hubs[hub] {
				continue
			}

			layover := offer.Segments[i+1].DepartureAt.Sub(offer.Segments[i].ArrivalAt)
			if layover < r.cfg.StopoverMin || layover > r.cfg.StopoverMax {
				continue
			}

			candidates = append(candidates, dto.RouteCandidate{
				Type:                 dto.RouteStopover,
				Offers:               []dto.Offer{offer},
				TotalCost:            offer.Pricing.TotalCash + r.cfg.StopoverCost,
				TotalDurationMinutes: offer.DurationMinutes,
				PointsRequired:       minPointsRequired(offer),
				Notes: fmt.Sprintf("%s stopover in %s",
					formatHours(layover), hub),
			})
		}
	}

	return candidates
}

// openJawCandidates pairs, for round trips, an outbound into one city with a
// return out of a nearby different city, bridged by ground transport. The
// inbound leg must depart on the requested return date and the pair's ground
// transfer must fit the budget.
func (r *RouteOptimizer) openJawCandidates(criteria dto.SearchCriteria, pool []dto.Offer) []dto.RouteCandidate {
	if criteria.ReturnDate == nil {
		return nil
	}

	returnDay, err := criteria.ReturnDay()
	if err != nil {
		return nil
	}

	outbound, ok := cheapestOffer(pool, criteria.Origin, criteria.Destination)
	if !ok {
		return nil
	}

	var candidates []dto.RouteCandidate

	for _, altDest := range r.cfg.NearbyAirports[criteria.Destination] {
		if altDest == criteria.Destination {
			continue
		}

		transfer := r.groundTransfer(criteria.Destination, altDest)
		if transfer > r.cfg.MaxGroundTransfer {
			continue
		}

		inbound, ok := cheapestOfferOnDay(pool, altDest, criteria.Origin, returnDay)
		if !ok {
			continue
		}

		candidates = append(candidates, dto.RouteCandidate{
			Type:      dto.RouteOpenJaw,
			Offers:    []dto.Offer{outbound, inbound},
			TotalCost: outbound.Pricing.TotalCash + inbound.Pricing.TotalCash,
			TotalDurationMinutes: outbound.DurationMinutes + int(transfer.Minutes()) +
				inbound.DurationMinutes,
			PointsRequired: minPointsRequired(outbound) + minPointsRequired(inbound),
			Notes: fmt.Sprintf("arrive %s, depart %s",
				criteria.Destination, altDest),
		})
	}

	return candidates
}

// groundTransfer returns the assumed transfer time between two airports,
// direction-insensitive, falling back to the configured default.
func (r *RouteOptimizer) groundTransfer(a, b string) time.Duration {
	if d, ok := r.cfg.GroundTransfers[a+"-"+b]; ok {
		return d
	}

	if d, ok := r.cfg.GroundTransfers[b+"-"+a]; ok {
		return d
	}

	return r.cfg.GroundTransfer
}

// score assigns every candidate a weighted score in place. Cost, time and
// points terms are normalized over the candidate set so 1 is best and 0 is
// worst; positive savings earn a fixed bonus.
func (r *RouteOptimizer) score(candidates []dto.RouteCandidate) {
	if len(candidates) == 0 {
		return
	}

	costs := make([]float64, len(candidates))
	times := make([]float64, len(candidates))
	points := make([]float64, len(candidates))

	for i, c := range candidates {
		costs[i] = c.TotalCost
		times[i] = float64(c.TotalDurationMinutes)
		points[i] = float64(c.PointsRequired)
	}

	for i := range candidates {
		score := r.cfg.CostWeight*inverted(costs, i) +
			r.cfg.TimeWeight*inverted(times, i) +
			r.cfg.PointsWeight*inverted(points, i)

		if candidates[i].Savings > 0 {
			score += r.cfg.SavingsBonus
		}

		candidates[i].Score = score
	}
}

// inverted normalizes values[i] into [0,1] with the lowest value mapping
// to 1. A degenerate range scores everything 1.
func inverted(values []float64, i int) float64 {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}

		if v > max {
			max = v
		}
	}

	if max == min {
		return 1
	}

	return 1 - (values[i]-min)/(max-min)
}

// cheapestOfferOnDay is cheapestOffer restricted to offers departing on the
// given calendar day.
func cheapestOfferOnDay(pool []dto.Offer, origin, destination string, day time.Time) (dto.Offer, bool) {
	var best dto.Offer

	found := false
	for _, offer := range pool {
		if offer.Origin() != origin || offer.Destination() != destination {
			continue
		}

		if !sameDay(offer.DepartureAt(), day) {
			continue
		}

		if !found || offer.Pricing.TotalCash < best.Pricing.TotalCash {
			best = offer
			found = true
		}
	}

	return best, found
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()

	return ay == by && am == bm && ad == bd
}

func cheapestOffer(pool []dto.Offer, origin, destination string) (dto.Offer, bool) {
	var best dto.Offer

	found := false
	for _, offer := range pool {
		if offer.Origin() != origin || offer.Destination() != destination {
			continue
		}

		if !found || offer.Pricing.TotalCash < best.Pricing.TotalCash {
			best = offer
			found = true
		}
	}

	return best, found
}

func minPointsRequired(offer dto.Offer) int {
	min := 0
	for _, option := range offer.Pricing.PointsOptions {
		if min == 0 || option.PointsRequired < min {
			min = option.PointsRequired
		}
	}

	return min
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%dh", int(d.Hours()))
}
