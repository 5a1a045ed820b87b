package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/pkg/rewards"
)

// BalanceProvider supplies a traveler's point balances from an external
// account system. Balances are never persisted here.
type BalanceProvider interface {
	Balances(ctx context.Context, accountID string) ([]dto.PointsBalance, error)
}

// ValuationService converts points prices into cash-equivalent values and
// optimizes cash/points/hybrid payment choices. It holds no mutable state
// beyond the read-only program registry, so it requires no locking.
type ValuationService struct {
	programs *rewards.Registry
	balances BalanceProvider
}

func NewValuationService(programs *rewards.Registry) *ValuationService {
	return &ValuationService{programs: programs}
}

// NewAccountValuationService additionally resolves balances by account id
// through the external account collaborator.
func NewAccountValuationService(programs *rewards.Registry,
	balances BalanceProvider) *ValuationService {
	return &ValuationService{programs: programs, balances: balances}
}

// Valuate converts a points amount in a program to cash value. Zero points
// valuates to zero; an unknown program is a typed not-found result.
func (s *ValuationService) Valuate(points int, programID string) (float64, error) {
	program, ok := s.programs.Get(programID)
	if !ok {
		return 0, ErrProgramNotFound
	}

	if points < 0 {
		return 0, ErrInvalidPoints
	}

	return float64(points) * program.ValuationRate / 100, nil
}

// CompareOptions valuates every points option and marks the single lowest
// cash-equivalent as best value. Ties keep the first-seen option.
func (s *ValuationService) CompareOptions(options []dto.PointsOption) ([]dto.PointsValuation, error) {
	valuations := make([]dto.PointsValuation, 0, len(options))

	bestIdx := -1
	bestCost := math.MaxFloat64

	for _, option := range options {
		program, ok := s.programs.Get(option.ProgramID)
		if !ok {
			return nil, ErrProgramNotFound
		}

		cashEq := float64(option.PointsRequired)*program.ValuationRate/100 + option.CashComponent

		valuations = append(valuations, dto.PointsValuation{
			ProgramID:      option.ProgramID,
			ProgramName:    program.Name,
			PointsRequired: option.PointsRequired,
			CashComponent:  option.CashComponent,
			CashEquivalent: cashEq,
		})

		if cashEq < bestCost {
			bestCost = cashEq
			bestIdx = len(valuations) - 1
		}
	}

	if bestIdx >= 0 {
		valuations[bestIdx].BestValue = true
	}

	return valuations, nil
}

// TransferRecommendation finds an active partner link from one program to
// another and computes the transfer. Returns nil when no feasible link
// exists: no partner match, inactive link, or a transfer amount outside the
// link's [minimum, maximum] bounds.
func (s *ValuationService) TransferRecommendation(fromProgramID, toProgramID string,
	pointsNeeded int) (*dto.TransferRecommendation, error) {
	from, ok := s.programs.Get(fromProgramID)
	if !ok {
		return nil, ErrProgramNotFound
	}

	to, ok := s.programs.Get(toProgramID)
	if !ok {
		return nil, ErrProgramNotFound
	}

	if pointsNeeded <= 0 {
		return nil, ErrInvalidPoints
	}

	partner, ok := rewards.MatchPartner(from, to)
	if !ok {
		return nil, nil
	}

	pointsToTransfer := int(math.Ceil(float64(pointsNeeded) * partner.Ratio))

	if pointsToTransfer < partner.MinimumTransfer {
		return nil, nil
	}

	if partner.MaximumTransfer > 0 && pointsToTransfer > partner.MaximumTransfer {
		return nil, nil
	}

	cost := float64(pointsToTransfer)*from.ValuationRate/100 + float64(partner.FeeCents)/100

	return &dto.TransferRecommendation{
		FromProgramID:    fromProgramID,
		ToProgramID:      toProgramID,
		Ratio:            partner.Ratio,
		PointsToTransfer: pointsToTransfer,
		FeeCents:         partner.FeeCents,
		TotalCost:        cost,
	}, nil
}

// FindTransferOpportunities lists transfers from every balance (outside the
// target program) able to cover pointsNeeded, sorted by total cost ascending.
func (s *ValuationService) FindTransferOpportunities(targetProgramID string,
	pointsNeeded int, balances []dto.PointsBalance) ([]dto.TransferRecommendation, error) {
	if _, ok := s.programs.Get(targetProgramID); !ok {
		return nil, ErrProgramNotFound
	}

	recommendations := make([]dto.TransferRecommendation, 0, len(balances))

	for _, balance := range balances {
		if balance.ProgramID == targetProgramID {
			continue
		}

		// balances may reference programs outside the registry; skip them
		if _, ok := s.programs.Get(balance.ProgramID); !ok {
			continue
		}

		rec, err := s.TransferRecommendation(balance.ProgramID, targetProgramID, pointsNeeded)
		if err != nil {
			return nil, err
		}

		if rec == nil || balance.Balance < rec.PointsToTransfer {
			continue
		}

		recommendations = append(recommendations, *rec)
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].TotalCost < recommendations[j].TotalCost
	})

	return recommendations, nil
}

// OptimizeFlightPricing valuates every points option on a priced offer,
// marks availability against the user's balances, and recommends points
// over cash only when the cheapest available option is strictly cheaper.
func (s *ValuationService) OptimizeFlightPricing(pricing dto.Pricing,
	balances []dto.PointsBalance) (dto.PricingComparison, error) {
	return s.optimize(pricing, balances, false)
}

// OptimizeWithTransfers is OptimizeFlightPricing, but options lacking a
// sufficient direct balance substitute the cheapest feasible transfer's
// total cost as their effective cash-equivalent.
func (s *ValuationService) OptimizeWithTransfers(pricing dto.Pricing,
	balances []dto.PointsBalance) (dto.PricingComparison, error) {
	return s.optimize(pricing, balances, true)
}

// OptimizeForAccount resolves the traveler's balances through the configured
// balance provider and optimizes against them.
func (s *ValuationService) OptimizeForAccount(ctx context.Context, accountID string,
	pricing dto.Pricing, withTransfers bool) (dto.PricingComparison, error) {
	if s.balances == nil {
		return dto.PricingComparison{}, ErrNoBalanceProvider
	}

	balances, err := s.balances.Balances(ctx, accountID)
	if err != nil {
		return dto.PricingComparison{}, fmt.Errorf("failed to resolve balances: %w", err)
	}

	return s.optimize(pricing, balances, withTransfers)
}

func (s *ValuationService) optimize(pricing dto.Pricing, balances []dto.PointsBalance,
	withTransfers bool) (dto.PricingComparison, error) {
	balanceByProgram := make(map[string]int, len(balances))
	for _, b := range balances {
		balanceByProgram[b.ProgramID] += b.Balance
	}

	valuations := make([]dto.PointsValuation, 0, len(pricing.PointsOptions))

	for _, option := range pricing.PointsOptions {
		program, ok := s.programs.Get(option.ProgramID)
		if !ok {
			return dto.PricingComparison{}, ErrProgramNotFound
		}

		valuation := dto.PointsValuation{
			ProgramID:      option.ProgramID,
			ProgramName:    program.Name,
			PointsRequired: option.PointsRequired,
			CashComponent:  option.CashComponent,
			CashEquivalent: float64(option.PointsRequired)*program.ValuationRate/100 + option.CashComponent,
			Available:      balanceByProgram[option.ProgramID] >= option.PointsRequired,
		}

		if !valuation.Available && withTransfers {
			recs, err := s.FindTransferOpportunities(option.ProgramID,
				option.PointsRequired, balances)
			if err != nil {
				return dto.PricingComparison{}, err
			}

			if len(recs) > 0 {
				rec := recs[0]
				valuation.Available = true
				valuation.ViaTransfer = &rec
				valuation.CashEquivalent = rec.TotalCost + option.CashComponent
			}
		}

		valuations = append(valuations, valuation)
	}

	comparison := dto.PricingComparison{
		RecommendedOption: "cash",
		CashPrice:         pricing.TotalCash,
		Valuations:        valuations,
	}

	bestIdx := -1
	bestCost := math.MaxFloat64
	for i, v := range valuations {
		if !v.Available {
			continue
		}

		if v.CashEquivalent < bestCost {
			bestCost = v.CashEquivalent
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return comparison, nil
	}

	valuations[bestIdx].BestValue = true
	best := valuations[bestIdx]
	comparison.BestPointsOption = &best

	if best.CashEquivalent < pricing.TotalCash {
		comparison.RecommendedOption = "points"

		savings := pricing.TotalCash - best.CashEquivalent
		if savings > 0 {
			comparison.Savings = savings
			if pricing.TotalCash > 0 {
				comparison.SavingsPercent = savings / pricing.TotalCash * 100
			}
		}
	}

	return comparison, nil
}

// AnalyzeRedemptionValue reports the cents-per-point actually realized by a
// redemption against the program's baseline valuation.
func (s *ValuationService) AnalyzeRedemptionValue(pointsUsed int, cashValue float64,
	programID string) (dto.RedemptionAnalysis, error) {
	program, ok := s.programs.Get(programID)
	if !ok {
		return dto.RedemptionAnalysis{}, ErrProgramNotFound
	}

	if pointsUsed <= 0 {
		return dto.RedemptionAnalysis{}, ErrInvalidPoints
	}

	redemptionValue := cashValue * 100 / float64(pointsUsed)
	multiplier := redemptionValue / program.ValuationRate

	return dto.RedemptionAnalysis{
		ProgramID:       programID,
		RedemptionValue: redemptionValue,
		BaselineValue:   program.ValuationRate,
		ValueMultiplier: multiplier,
		IsGoodValue:     multiplier >= 1.0,
	}, nil
}
