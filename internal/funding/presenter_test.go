package funding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresentRoundNA(t *testing.T) {
	round := FundingRound{RoundType: "Seed", ApprovalStatus: StatusNA, FundingRaised: 500000}
	detail := &FundingDetail{ValuationAmount: 2000000}

	view := PresentRound(round, detail, nil)
	require.Equal(t, ViewNA, view.Kind)
	require.NotNil(t, view.NA)
	require.Nil(t, view.Pending)
	require.Nil(t, view.Active)
	require.Nil(t, view.Closed)
	require.Equal(t, "SEED", view.NA.RoundType)
	require.Equal(t, 500000.0, view.NA.FundingRaised)
	require.Equal(t, 2000000.0, view.NA.Valuation)
}

func TestPresentRoundEmptyStatusDefaultsToNA(t *testing.T) {
	view := PresentRound(FundingRound{RoundType: "Seed"}, nil, nil)
	require.Equal(t, ViewNA, view.Kind)
	require.Equal(t, StatusNA, view.Status)
}

func TestPresentRoundPendingFamily(t *testing.T) {
	opening := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, status := range []ApprovalStatus{StatusPending, StatusApproved, StatusRejected} {
		round := FundingRound{
			RoundType:        "Series A",
			ApprovalStatus:   status,
			CurrentValuation: 5000000,
			TargetAmount:     1000000,
			RoundOpeningDate: opening,
			RoundDuration:    14,
			RejectionMessage: "missing cap table",
		}
		view := PresentRound(round, nil, nil)
		require.Equal(t, ViewPending, view.Kind, string(status))
		require.NotNil(t, view.Pending)
		require.Equal(t, opening.AddDate(0, 0, 14), view.Pending.RoundClosingDate)
		require.Equal(t, "missing cap table", view.Pending.RejectionMessage)
	}
}

func TestPresentRoundActive(t *testing.T) {
	round := FundingRound{
		RoundType:      "Seed",
		ApprovalStatus: StatusActive,
		TargetAmount:   500000,
		FundingRaised:  400000,
	}
	detail := &FundingDetail{EquityDiluted: 12.5}
	investors := []FundingInvestor{
		{Name: "Alice", AmountInvested: 250000, EquityPercentage: 7.8125, Status: InvestorStatusInvested},
		{Name: "Bob", AmountInvested: 150000, EquityPercentage: 4.6875, Status: InvestorStatusConfirmed},
	}

	view := PresentRound(round, detail, investors)
	require.Equal(t, ViewActive, view.Kind)
	require.NotNil(t, view.Active)
	require.Equal(t, 400000.0, view.Active.FundingRaised)
	require.Equal(t, 12.5, view.Active.EquityDiluted)
	require.Equal(t, 100000.0, view.Active.RemainingTarget)
	require.Len(t, view.Active.Investors, 2)
	require.Equal(t, "7.81%", view.Active.Investors[0].EquityPercentage)
}

func TestPresentRoundClosed(t *testing.T) {
	round := FundingRound{
		RoundType:      "Seed",
		ApprovalStatus: StatusClosed,
		TargetAmount:   500000,
		FundingRaised:  500000,
		SharesDiluted:  15,
	}
	investors := []FundingInvestor{{Name: "Alice", AmountInvested: 500000, EquityPercentage: 15}}

	view := PresentRound(round, nil, investors)
	require.Equal(t, ViewClosed, view.Kind)
	require.NotNil(t, view.Closed)
	require.Equal(t, 15.0, view.Closed.SharesDiluted)
	require.Len(t, view.Closed.Investors, 1)
}

func TestPresentRoundUnknownStatusDegradesToConfig(t *testing.T) {
	view := PresentRound(FundingRound{RoundType: "Seed", ApprovalStatus: ApprovalStatus("ARCHIVED")}, nil, nil)
	require.Equal(t, ViewPending, view.Kind)
	require.NotNil(t, view.Pending)
	require.Equal(t, ApprovalStatus("ARCHIVED"), view.Status)
}
