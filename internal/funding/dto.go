package funding

import "time"

// StoreBulkRequest imports a founder's historical rounds.
type StoreBulkRequest struct {
	Rounds []LegacyRoundRequest `json:"rounds" validate:"required,min=1,dive"`
}

// LegacyRoundRequest is one imported round.
type LegacyRoundRequest struct {
	RoundType          string                  `json:"round_type" validate:"required"`
	HasNotRaisedBefore bool                    `json:"has_not_raised_before"`
	FundingRaised      float64                 `json:"funding_raised" validate:"gte=0"`
	ValuationAmount    float64                 `json:"valuation_amount" validate:"gte=0"`
	FundingDate        time.Time               `json:"funding_date"`
	EquityDiluted      float64                 `json:"equity_diluted" validate:"gte=0,lt=100"`
	Investors          []LegacyInvestorRequest `json:"investors" validate:"omitempty,dive"`
	Documents          []LegacyDocumentRequest `json:"documents" validate:"omitempty,dive"`
}

// LegacyInvestorRequest is one historical investor row.
type LegacyInvestorRequest struct {
	Name           string  `json:"name" validate:"required"`
	AmountInvested float64 `json:"amount_invested" validate:"gte=0"`
}

// LegacyDocumentRequest references an already stored document.
type LegacyDocumentRequest struct {
	FilePath     string `json:"file_path" validate:"required"`
	OriginalName string `json:"original_name"`
}

// NewRoundRequest opens a platform-raised round.
type NewRoundRequest struct {
	RoundType         string    `json:"round_type" validate:"required"`
	CurrentValuation  float64   `json:"current_valuation" validate:"required,gt=0"`
	SharesDiluted     float64   `json:"shares_diluted" validate:"gte=0,lte=100"`
	TargetAmount      float64   `json:"target_amount" validate:"required,gt=0"`
	MinimumInvestment float64   `json:"minimum_investment" validate:"required,gt=0"`
	RoundOpeningDate  time.Time `json:"round_opening_date" validate:"required"`
	RoundDuration     int       `json:"round_duration" validate:"required,oneof=7 14 21"`
	GracePeriod       int       `json:"grace_period" validate:"required,oneof=3 5 7"`
	ExitStrategy      []string  `json:"preferred_exit_strategy" validate:"omitempty,dive,min=1"`
	ExpectedExitTime  string    `json:"expected_exit_time" validate:"required,oneof=3-5 5-7 7-9"`
	ExpectedReturns   float64   `json:"expected_returns" validate:"required,gte=0"`
	Comments          string    `json:"additional_comments"`
}

// InvestmentRequest records a commitment against a round.
type InvestmentRequest struct {
	Name            string    `json:"name" validate:"required"`
	AmountInvested  float64   `json:"amount_invested" validate:"required,gte=0"`
	CommitmentDate  time.Time `json:"commitment_date" validate:"required"`
	GracePeriodDays int       `json:"grace_period_days" validate:"required,min=1"`
}

// RejectRequest carries the admin rejection message.
type RejectRequest struct {
	RejectionMessage string `json:"rejection_message" validate:"required"`
}
