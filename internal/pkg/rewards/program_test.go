//go:build unit

package rewards

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchPartner_Closure(t *testing.T) {
	matchRequest := func(from Program, target Program, wantName string, wantOK bool) func(t *testing.T) {
		return func(t *testing.T) {
			partner, ok := MatchPartner(from, target)
			if ok != wantOK {
				t.Fatalf("MatchPartner ok = %v, want %v", ok, wantOK)
			}

			if wantOK && partner.Name != wantName {
				t.Fatalf("matched %q, want %q", partner.Name, wantName)
			}
		}
	}

	united := Program{ID: "united_mileageplus", Name: "United MileagePlus", Type: TypeAirline}
	flyingBlue := Program{ID: "af_flying_blue", Name: "Air France-KLM Flying Blue", Type: TypeAirline}

	t.Run("explicit_program_id_wins", matchRequest(Program{
		ID: "bank",
		Partners: []TransferPartner{
			{ProgramID: "united_mileageplus", Name: "Totally Different Label", Active: true},
			{Name: "United MileagePlus", Active: true},
		},
	}, united, "Totally Different Label", true))

	t.Run("substring_either_direction", matchRequest(Program{
		ID: "bank",
		Partners: []TransferPartner{
			{Name: "Flying Blue", Active: true},
		},
	}, flyingBlue, "Flying Blue", true))

	t.Run("carrier_alias", matchRequest(Program{
		ID: "bank",
		Partners: []TransferPartner{
			{Name: "United Airlines", Active: true},
		},
	}, Program{ID: "mp", Name: "MileagePlus", Type: TypeAirline}, "United Airlines", true))

	t.Run("inactive_link_skipped", matchRequest(Program{
		ID: "bank",
		Partners: []TransferPartner{
			{ProgramID: "united_mileageplus", Name: "United MileagePlus", Active: false},
		},
	}, united, "", false))

	t.Run("no_match", matchRequest(Program{
		ID: "bank",
		Partners: []TransferPartner{
			{Name: "Unrelated Hotel Points", Active: true},
		},
	}, united, "", false))
}

func TestLoadPrograms(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		want := []Program{
			{
				ID:            "united_mileageplus",
				Name:          "United MileagePlus",
				Type:          TypeAirline,
				ValuationRate: 1.3,
			},
			{
				ID:            "bank",
				Name:          "Bank Points",
				Type:          TypeCreditCard,
				ValuationRate: 2.0,
				Partners: []TransferPartner{
					{
						ProgramID:       "united_mileageplus",
						Name:            "United MileagePlus",
						Ratio:           1.0,
						MinimumTransfer: 1000,
						Active:          true,
					},
				},
			},
		}

		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal fixture: %v", err)
		}

		path := filepath.Join(t.TempDir(), "programs.json")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		got, err := LoadPrograms(path)
		if err != nil {
			t.Fatalf("LoadPrograms returned error: %v", err)
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("LoadPrograms mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadPrograms(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry([]Program{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "a", Name: "duplicate ignored"},
	})

	if p, ok := reg.Get("a"); !ok || p.Name != "A" {
		t.Fatalf("Get(a) = %+v, %v", p, ok)
	}

	if _, ok := reg.Get("missing"); ok {
		t.Fatal("Get(missing) must miss")
	}

	all := reg.All()
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("All() must keep registration order, got %+v", all)
	}
}
