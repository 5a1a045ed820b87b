package dto

import (
	"fmt"
	"net/http"
	"time"

	"github.com/abndnt/paris-night-sub002/internal/pkg/exception"
)

// PointsBalance is supplied by the external account provider, never owned
// by this service.
type PointsBalance struct {
	AccountID string    `json:"account_id"`
	ProgramID string    `json:"program_id" validate:"required"`
	Balance   int       `json:"balance" validate:"gte=0"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// PointsValuation is a PointsOption expressed as a cash-equivalent cost.
type PointsValuation struct {
	ProgramID      string                  `json:"program_id"`
	ProgramName    string                  `json:"program_name"`
	PointsRequired int                     `json:"points_required"`
	CashComponent  float64                 `json:"cash_component,omitempty"`
	CashEquivalent float64                 `json:"cash_equivalent"`
	BestValue      bool                    `json:"best_value"`
	Available      bool                    `json:"available"`
	ViaTransfer    *TransferRecommendation `json:"via_transfer,omitempty"`
}

// TransferRecommendation is derived, never stored.
type TransferRecommendation struct {
	FromProgramID    string  `json:"from_program_id"`
	ToProgramID      string  `json:"to_program_id"`
	Ratio            float64 `json:"ratio"`
	PointsToTransfer int     `json:"points_to_transfer"`
	FeeCents         int64   `json:"fee_cents"`
	TotalCost        float64 `json:"total_cost"`
}

// PricingComparison is the outcome of optimizing an offer's price against a
// user's point balances.
type PricingComparison struct {
	RecommendedOption string            `json:"recommended_option"`
	CashPrice         float64           `json:"cash_price"`
	BestPointsOption  *PointsValuation  `json:"best_points_option,omitempty"`
	Valuations        []PointsValuation `json:"valuations"`
	Savings           float64           `json:"savings,omitempty"`
	SavingsPercent    float64           `json:"savings_percent,omitempty"`
}

type RedemptionAnalysis struct {
	ProgramID       string  `json:"program_id"`
	RedemptionValue float64 `json:"redemption_value"`
	BaselineValue   float64 `json:"baseline_value"`
	ValueMultiplier float64 `json:"value_multiplier"`
	IsGoodValue     bool    `json:"is_good_value"`
}

type ValuateRequest struct {
	ProgramID string `json:"program_id" validate:"required"`
	Points    int    `json:"points" validate:"gte=0"`
}

func (r *ValuateRequest) Bind(_ *http.Request) error {
	return bindValidated(r)
}

type ValuateResponse struct {
	ProgramID      string  `json:"program_id"`
	Points         int     `json:"points"`
	CashEquivalent float64 `json:"cash_equivalent"`
}

type CompareOptionsRequest struct {
	Options []PointsOption `json:"options" validate:"required,min=1,dive"`
}

func (r *CompareOptionsRequest) Bind(_ *http.Request) error {
	return bindValidated(r)
}

type TransferOpportunitiesRequest struct {
	TargetProgramID string          `json:"target_program_id" validate:"required"`
	PointsNeeded    int             `json:"points_needed" validate:"required,gt=0"`
	Balances        []PointsBalance `json:"balances" validate:"required,min=1,dive"`
}

func (r *TransferOpportunitiesRequest) Bind(_ *http.Request) error {
	return bindValidated(r)
}

type OptimizePricingRequest struct {
	Pricing       Pricing         `json:"pricing" validate:"required"`
	Balances      []PointsBalance `json:"balances" validate:"omitempty,dive"`
	WithTransfers bool            `json:"with_transfers"`
}

func (r *OptimizePricingRequest) Bind(_ *http.Request) error {
	return bindValidated(r)
}

type RedemptionAnalysisRequest struct {
	ProgramID  string  `json:"program_id" validate:"required"`
	PointsUsed int     `json:"points_used" validate:"required,gt=0"`
	CashValue  float64 `json:"cash_value" validate:"required,gt=0"`
}

func (r *RedemptionAnalysisRequest) Bind(_ *http.Request) error {
	return bindValidated(r)
}

func bindValidated(req interface{}) error {
	if err := ValidateSingleError(req); err != nil {
		return exception.ApplicationError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("error validate request: %s", err),
		}
	}

	return nil
}
