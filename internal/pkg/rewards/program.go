package rewards

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Program types.
const (
	TypeAirline    = "airline"
	TypeCreditCard = "credit_card"
	TypeHotel      = "hotel"
)

// TransferPartner is a directed link allowing points from one program to
// convert into another at a fixed ratio, subject to min/max limits and an
// optional fee.
type TransferPartner struct {
	ProgramID       string  `json:"program_id,omitempty"`
	Name            string  `json:"name"`
	Ratio           float64 `json:"ratio"`
	MinimumTransfer int     `json:"minimum_transfer"`
	MaximumTransfer int     `json:"maximum_transfer,omitempty"`
	FeeCents        int64   `json:"fee_cents,omitempty"`
	Active          bool    `json:"active"`
}

// Program is a reward currency. ValuationRate is cents of cash value per
// point. Programs are loaded once at startup and read-only afterwards.
type Program struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	ValuationRate float64           `json:"valuation_rate"`
	Partners      []TransferPartner `json:"transfer_partners,omitempty"`
}

type Registry struct {
	programs map[string]Program
	order    []string
}

func NewRegistry(programs []Program) *Registry {
	reg := &Registry{
		programs: make(map[string]Program, len(programs)),
		order:    make([]string, 0, len(programs)),
	}

	for _, p := range programs {
		if _, exists := reg.programs[p.ID]; exists {
			continue
		}

		reg.programs[p.ID] = p
		reg.order = append(reg.order, p.ID)
	}

	return reg
}

// LoadPrograms reads the program registry from a JSON config file.
func LoadPrograms(path string) ([]Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read programs file: %w", err)
	}

	var programs []Program
	if err := json.Unmarshal(data, &programs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal programs file: %w", err)
	}

	return programs, nil
}

func (r *Registry) Get(id string) (Program, bool) {
	p, ok := r.programs[id]

	return p, ok
}

// All returns programs in registration order.
func (r *Registry) All() []Program {
	result := make([]Program, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.programs[id])
	}

	return result
}

// Known-carrier aliases for partner resolution: loyalty program names often
// omit the carrier or vice versa ("United" vs "MileagePlus").
var carrierAliases = map[string][]string{
	"united":     {"mileageplus"},
	"delta":      {"skymiles"},
	"american":   {"aadvantage"},
	"british":    {"avios", "executive club"},
	"alaska":     {"mileage plan"},
	"jetblue":    {"trueblue"},
	"air france": {"flying blue"},
}

// MatchPartner locates an active transfer partner link on from whose name
// fuzzily matches the target program: explicit program id first, then
// case-insensitive substring in either direction, then carrier aliases.
// The heuristic can false-positive on overlapping carrier names, which is
// why explicit program ids win when configured.
func MatchPartner(from Program, target Program) (TransferPartner, bool) {
	for _, partner := range from.Partners {
		if !partner.Active {
			continue
		}

		if partner.ProgramID != "" && partner.ProgramID == target.ID {
			return partner, true
		}
	}

	for _, partner := range from.Partners {
		if !partner.Active {
			continue
		}

		if namesMatch(partner.Name, target.Name) {
			return partner, true
		}
	}

	return TransferPartner{}, false
}

func namesMatch(partnerName, targetName string) bool {
	pn := strings.ToLower(partnerName)
	tn := strings.ToLower(targetName)

	if pn == "" || tn == "" {
		return false
	}

	if strings.Contains(pn, tn) || strings.Contains(tn, pn) {
		return true
	}

	for carrier, aliases := range carrierAliases {
		for _, alias := range aliases {
			if strings.Contains(pn, carrier) && strings.Contains(tn, alias) {
				return true
			}

			if strings.Contains(tn, carrier) && strings.Contains(pn, alias) {
				return true
			}
		}
	}

	return false
}
