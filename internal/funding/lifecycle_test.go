package funding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplySubmit(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusNA}
	require.NoError(t, Apply(&round, TransitionSubmit, ""))
	require.Equal(t, StatusPending, round.ApprovalStatus)
}

func TestApplySubmitFromEmptyStatus(t *testing.T) {
	round := FundingRound{}
	require.NoError(t, Apply(&round, TransitionSubmit, ""))
	require.Equal(t, StatusPending, round.ApprovalStatus)
}

func TestApplyApprove(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusPending}
	require.NoError(t, Apply(&round, TransitionApprove, ""))
	require.Equal(t, StatusApproved, round.ApprovalStatus)
}

func TestApplyApproveTwiceConflicts(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusApproved}
	require.ErrorIs(t, Apply(&round, TransitionApprove, ""), ErrAlreadyApproved)
	require.Equal(t, StatusApproved, round.ApprovalStatus)
}

func TestApplyApproveFromNA(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusNA}
	require.ErrorIs(t, Apply(&round, TransitionApprove, ""), ErrInvalidTransition)
}

func TestApplyRejectRequiresMessage(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusPending}
	require.ErrorIs(t, Apply(&round, TransitionReject, ""), ErrValidation)
	require.Equal(t, StatusPending, round.ApprovalStatus)
}

func TestApplyRejectPending(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusPending}
	require.NoError(t, Apply(&round, TransitionReject, "incomplete financials"))
	require.Equal(t, StatusRejected, round.ApprovalStatus)
	require.Equal(t, "incomplete financials", round.RejectionMessage)
}

func TestApplyRejectApproved(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusApproved}
	require.NoError(t, Apply(&round, TransitionReject, "terms changed"))
	require.Equal(t, StatusRejected, round.ApprovalStatus)
}

func TestApplyRejectedIsTerminal(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusRejected}
	require.ErrorIs(t, Apply(&round, TransitionApprove, ""), ErrInvalidTransition)
	require.ErrorIs(t, Apply(&round, TransitionActivate, ""), ErrInvalidTransition)
	require.ErrorIs(t, Apply(&round, TransitionReject, "again"), ErrInvalidTransition)
}

func TestApplyActivate(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusApproved}
	require.NoError(t, Apply(&round, TransitionActivate, ""))
	require.Equal(t, StatusActive, round.ApprovalStatus)
	require.True(t, round.IsActive)
}

func TestApplyActivateTwiceConflicts(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusActive, IsActive: true}
	require.ErrorIs(t, Apply(&round, TransitionActivate, ""), ErrInvalidTransition)
}

func TestApplyActivateRequiresApproval(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusPending}
	require.ErrorIs(t, Apply(&round, TransitionActivate, ""), ErrInvalidTransition)
}

func TestApplyClose(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusActive, IsActive: true}
	require.NoError(t, Apply(&round, TransitionClose, ""))
	require.Equal(t, StatusClosed, round.ApprovalStatus)
	require.False(t, round.IsActive)
}

func TestApplyCloseRequiresActive(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusApproved}
	require.ErrorIs(t, Apply(&round, TransitionClose, ""), ErrInvalidTransition)
}

func TestApplyUnknownTransition(t *testing.T) {
	round := FundingRound{ApprovalStatus: StatusPending}
	require.ErrorIs(t, Apply(&round, Transition("ARCHIVE"), ""), ErrInvalidTransition)
}
