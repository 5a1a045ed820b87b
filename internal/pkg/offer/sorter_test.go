//go:build unit

package offer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
)

func TestSort_Closure(t *testing.T) {
	offers := []dto.Offer{
		{ID: "1", Pricing: dto.Pricing{TotalCash: 900}, DurationMinutes: 300, Score: 0.8},
		{ID: "2", Pricing: dto.Pricing{TotalCash: 200}, DurationMinutes: 600, Score: 0.1},
		{ID: "3", Pricing: dto.Pricing{TotalCash: 500}, DurationMinutes: 450, Score: 0.5},
	}

	sortRequest := func(offers []dto.Offer, opt *dto.SortOption, wantIDs []string) func(t *testing.T) {
		return func(t *testing.T) {
			got := Sort(offers, opt)

			gotIDs := make([]string, len(got))
			for i, o := range got {
				gotIDs[i] = o.ID
			}

			diff := cmp.Diff(wantIDs, gotIDs)
			if diff != "" {
				t.Fatalf("Sort result mismatch (-want +got):\n%s", diff)
			}
		}
	}

	t.Run("default_price_asc", sortRequest(offers, nil, []string{"2", "3", "1"}))
	t.Run("price_desc", sortRequest(offers, &dto.SortOption{Field: "price", Order: "desc"}, []string{"1", "3", "2"}))
	t.Run("duration_asc", sortRequest(offers, &dto.SortOption{Field: "duration", Order: "asc"}, []string{"1", "3", "2"}))
	t.Run("score_asc", sortRequest(offers, &dto.SortOption{Field: "score"}, []string{"2", "3", "1"}))

	t.Run("input_not_mutated", func(t *testing.T) {
		_ = Sort(offers, &dto.SortOption{Field: "price", Order: "desc"})

		if offers[0].ID != "1" || offers[1].ID != "2" || offers[2].ID != "3" {
			t.Fatalf("Sort mutated its input: %+v", offers)
		}
	})

	t.Run("repeated_sort_is_stable", func(t *testing.T) {
		once := Sort(offers, &dto.SortOption{Field: "price"})
		twice := Sort(once, &dto.SortOption{Field: "price"})

		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("sorting a sorted sequence changed it (-want +got):\n%s", diff)
		}
	})
}
