package endpoints

import (
	"context"
	"errors"
	"fmt"

	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/go-kit/kit/endpoint"
)

type RewardsService interface {
	Valuate(points int, programID string) (float64, error)
	CompareOptions(options []dto.PointsOption) ([]dto.PointsValuation, error)
	FindTransferOpportunities(targetProgramID string, pointsNeeded int,
		balances []dto.PointsBalance) ([]dto.TransferRecommendation, error)
	OptimizeFlightPricing(pricing dto.Pricing, balances []dto.PointsBalance) (dto.PricingComparison, error)
	OptimizeWithTransfers(pricing dto.Pricing, balances []dto.PointsBalance) (dto.PricingComparison, error)
	AnalyzeRedemptionValue(pointsUsed int, cashValue float64, programID string) (dto.RedemptionAnalysis, error)
}

type RewardsEndpoint struct {
	Valuate        endpoint.Endpoint
	CompareOptions endpoint.Endpoint
	Transfers      endpoint.Endpoint
	Optimize       endpoint.Endpoint
	Redemption     endpoint.Endpoint
}

func MakeRewardsEndpoint(svc RewardsService) RewardsEndpoint {
	return RewardsEndpoint{
		Valuate:        makeValuateEndpoint(svc),
		CompareOptions: makeCompareOptionsEndpoint(svc),
		Transfers:      makeTransfersEndpoint(svc),
		Optimize:       makeOptimizeEndpoint(svc),
		Redemption:     makeRedemptionEndpoint(svc),
	}
}

func makeValuateEndpoint(svc RewardsService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.ValuateRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		cashEquivalent, err := svc.Valuate(request.Points, request.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("rewards service: %w", err)
		}

		return dto.ValuateResponse{
			ProgramID:      request.ProgramID,
			Points:         request.Points,
			CashEquivalent: cashEquivalent,
		}, nil
	}
}

func makeCompareOptionsEndpoint(svc RewardsService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.CompareOptionsRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		valuations, err := svc.CompareOptions(request.Options)
		if err != nil {
			return nil, fmt.Errorf("rewards service: %w", err)
		}

		return valuations, nil
	}
}

func makeTransfersEndpoint(svc RewardsService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.TransferOpportunitiesRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		recommendations, err := svc.FindTransferOpportunities(request.TargetProgramID,
			request.PointsNeeded, request.Balances)
		if err != nil {
			return nil, fmt.Errorf("rewards service: %w", err)
		}

		return recommendations, nil
	}
}

func makeOptimizeEndpoint(svc RewardsService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.OptimizePricingRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		optimize := svc.OptimizeFlightPricing
		if request.WithTransfers {
			optimize = svc.OptimizeWithTransfers
		}

		comparison, err := optimize(request.Pricing, request.Balances)
		if err != nil {
			return nil, fmt.Errorf("rewards service: %w", err)
		}

		return comparison, nil
	}
}

func makeRedemptionEndpoint(svc RewardsService) endpoint.Endpoint {
	return func(_ context.Context, req interface{}) (interface{}, error) {
		request, ok := req.(*dto.RedemptionAnalysisRequest)
		if !ok || request == nil {
			return nil, errors.New("invalid type")
		}

		analysis, err := svc.AnalyzeRedemptionValue(request.PointsUsed,
			request.CashValue, request.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("rewards service: %w", err)
		}

		return analysis, nil
	}
}
