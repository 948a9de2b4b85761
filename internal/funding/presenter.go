package funding

import (
	"strings"
	"time"
)

// ViewKind discriminates the disjoint round view shapes.
type ViewKind string

const (
	ViewNA      ViewKind = "na"
	ViewPending ViewKind = "pending"
	ViewActive  ViewKind = "active"
	ViewClosed  ViewKind = "closed"
)

// RoundView is the status-shaped rendering of a round. Exactly one of the
// optional sections is populated, matching Kind.
type RoundView struct {
	Kind   ViewKind       `json:"kind"`
	Status ApprovalStatus `json:"status"`

	NA      *NAView      `json:"na,omitempty"`
	Pending *PendingView `json:"pending,omitempty"`
	Active  *ActiveView  `json:"active,omitempty"`
	Closed  *ClosedView  `json:"closed,omitempty"`
}

// NAView is the minimal shape for legacy rounds outside the review queue.
type NAView struct {
	RoundType     string  `json:"round_type"`
	FundingRaised float64 `json:"funding_raised"`
	Valuation     float64 `json:"valuation_amount"`
}

// PendingView carries the full configuration without live totals. It also
// serves approved and rejected rounds awaiting the next step.
type PendingView struct {
	RoundType         string    `json:"round_type"`
	CurrentValuation  float64   `json:"current_valuation"`
	SharesDiluted     float64   `json:"shares_diluted"`
	TargetAmount      float64   `json:"target_amount"`
	MinimumInvestment float64   `json:"minimum_investment"`
	RoundOpeningDate  time.Time `json:"round_opening_date"`
	RoundClosingDate  time.Time `json:"round_closing_date"`
	GracePeriod       int       `json:"grace_period"`
	ExitStrategy      []string  `json:"preferred_exit_strategy"`
	ExpectedExitTime  string    `json:"expected_exit_time"`
	ExpectedReturns   float64   `json:"expected_returns"`
	Comments          string    `json:"additional_comments,omitempty"`
	RejectionMessage  string    `json:"rejection_message,omitempty"`
}

// ActiveView adds live fundraising totals to the full configuration.
type ActiveView struct {
	PendingView
	FundingRaised   float64        `json:"funding_raised"`
	EquityDiluted   float64        `json:"equity_diluted"`
	Investors       []InvestorView `json:"investors"`
	RemainingTarget float64        `json:"remaining_target"`
}

// ClosedView reports final totals and per-investor outcomes.
type ClosedView struct {
	RoundType     string         `json:"round_type"`
	FundingRaised float64        `json:"funding_raised"`
	SharesDiluted float64        `json:"shares_diluted"`
	TargetAmount  float64        `json:"target_amount"`
	Investors     []InvestorView `json:"investors"`
}

// InvestorView is the presentation row for a single commitment.
type InvestorView struct {
	Name             string    `json:"name"`
	AmountInvested   float64   `json:"amount_invested"`
	EquityPercentage string    `json:"equity_percentage"`
	CommitmentDate   time.Time `json:"commitment_date"`
	GracePeriodEnd   time.Time `json:"grace_period_end"`
	Status           string    `json:"status"`
}

// PresentRound maps a round and its nested data to the view shape for its
// lifecycle status. Every status maps to exactly one shape.
func PresentRound(round FundingRound, detail *FundingDetail, investors []FundingInvestor) RoundView {
	status := round.ApprovalStatus
	if status == "" {
		status = StatusNA
	}

	switch status {
	case StatusNA:
		view := NAView{
			RoundType:     strings.ToUpper(round.RoundType),
			FundingRaised: round.FundingRaised,
		}
		if detail != nil {
			view.Valuation = detail.ValuationAmount
		}
		return RoundView{Kind: ViewNA, Status: status, NA: &view}

	case StatusActive:
		active := ActiveView{
			PendingView:     configView(round),
			FundingRaised:   round.FundingRaised,
			Investors:       investorViews(investors),
			RemainingTarget: round.TargetAmount - round.FundingRaised,
		}
		if detail != nil {
			active.EquityDiluted = detail.EquityDiluted
		}
		return RoundView{Kind: ViewActive, Status: status, Active: &active}

	case StatusClosed:
		closed := ClosedView{
			RoundType:     round.RoundType,
			FundingRaised: round.FundingRaised,
			SharesDiluted: round.SharesDiluted,
			TargetAmount:  round.TargetAmount,
			Investors:     investorViews(investors),
		}
		return RoundView{Kind: ViewClosed, Status: status, Closed: &closed}

	case StatusPending, StatusApproved, StatusRejected:
		pending := configView(round)
		return RoundView{Kind: ViewPending, Status: status, Pending: &pending}

	default:
		// Unknown statuses degrade to the configuration shape rather
		// than dropping the round from view.
		pending := configView(round)
		return RoundView{Kind: ViewPending, Status: status, Pending: &pending}
	}
}

func configView(round FundingRound) PendingView {
	return PendingView{
		RoundType:         round.RoundType,
		CurrentValuation:  round.CurrentValuation,
		SharesDiluted:     round.SharesDiluted,
		TargetAmount:      round.TargetAmount,
		MinimumInvestment: round.MinimumInvestment,
		RoundOpeningDate:  round.RoundOpeningDate,
		RoundClosingDate:  round.ClosingDate(),
		GracePeriod:       round.GracePeriod,
		ExitStrategy:      round.ExitStrategy,
		ExpectedExitTime:  round.ExpectedExitTime,
		ExpectedReturns:   round.ExpectedReturns,
		Comments:          round.Comments,
		RejectionMessage:  round.RejectionMessage,
	}
}

func investorViews(investors []FundingInvestor) []InvestorView {
	views := make([]InvestorView, 0, len(investors))
	for _, inv := range investors {
		views = append(views, InvestorView{
			Name:             inv.Name,
			AmountInvested:   inv.AmountInvested,
			EquityPercentage: RoundPercent(inv.EquityPercentage),
			CommitmentDate:   inv.CommitmentDate,
			GracePeriodEnd:   inv.GracePeriodEnd,
			Status:           inv.Status,
		})
	}
	return views
}
