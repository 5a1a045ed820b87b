//go:build unit

package offer

import (
	"testing"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

func TestRank_Closure(t *testing.T) {
	offers := []dto.Offer{
		{
			ID:              "1",
			Pricing:         dto.Pricing{TotalCash: 200},
			DurationMinutes: 300,
			Layovers:        0,
			Availability:    dto.Availability{Seats: 9},
		},
		{
			ID:              "2",
			Pricing:         dto.Pricing{TotalCash: 900},
			DurationMinutes: 700,
			Layovers:        2,
			Availability:    dto.Availability{Seats: 1},
		},
	}

	rankRequest := func(offers []dto.Offer, wantBestID string) func(t *testing.T) {
		return func(t *testing.T) {
			got := Rank(offers)

			bestScore := 999.0
			var gotBestID string
			for _, o := range got {
				if o.Score < bestScore {
					bestScore = o.Score
					gotBestID = o.ID
				}
			}

			if gotBestID != wantBestID {
				t.Fatalf("expected best offer %s, got %s", wantBestID, gotBestID)
			}
		}
	}

	t.Run("dominant_offer_scores_best", rankRequest(offers, "1"))

	t.Run("input_not_mutated", func(t *testing.T) {
		_ = Rank(offers)

		if offers[0].Score != 0 || offers[1].Score != 0 {
			t.Fatalf("Rank mutated its input: %+v", offers)
		}
	})

	t.Run("single_offer_scores_zero", func(t *testing.T) {
		got := Rank(offers[:1])
		if got[0].Score != 0 {
			t.Fatalf("degenerate range must score 0, got %v", got[0].Score)
		}
	})
}
