package funding

import "fmt"

// Transition identifies a lifecycle action on a funding round.
type Transition string

const (
	TransitionSubmit   Transition = "SUBMIT"
	TransitionApprove  Transition = "APPROVE"
	TransitionReject   Transition = "REJECT"
	TransitionActivate Transition = "ACTIVATE"
	TransitionClose    Transition = "CLOSE"
)

// CanTransition reports whether a transition is legal from the given status.
// The approve/activate conflicts (already approved, already active) are
// reported through Apply so callers can distinguish them from plain
// out-of-order transitions.
func CanTransition(from ApprovalStatus, t Transition) bool {
	switch t {
	case TransitionSubmit:
		return from == StatusNA || from == ""
	case TransitionApprove:
		return from == StatusPending
	case TransitionReject:
		return from == StatusPending || from == StatusApproved
	case TransitionActivate:
		return from == StatusApproved
	case TransitionClose:
		return from == StatusActive
	default:
		return false
	}
}

// Apply validates a transition against the round's current state and mutates
// the round in place. Persistence of the result is the caller's concern; the
// round value is left untouched when an error is returned.
func Apply(round *FundingRound, t Transition, rejectionMessage string) error {
	switch t {
	case TransitionSubmit:
		if !CanTransition(round.ApprovalStatus, t) {
			return transitionErr(round.ApprovalStatus, t)
		}
		round.ApprovalStatus = StatusPending

	case TransitionApprove:
		if round.ApprovalStatus == StatusApproved {
			return ErrAlreadyApproved
		}
		if !CanTransition(round.ApprovalStatus, t) {
			return transitionErr(round.ApprovalStatus, t)
		}
		round.ApprovalStatus = StatusApproved

	case TransitionReject:
		if rejectionMessage == "" {
			return fmt.Errorf("%w: rejection message is required", ErrValidation)
		}
		if !CanTransition(round.ApprovalStatus, t) {
			return transitionErr(round.ApprovalStatus, t)
		}
		round.ApprovalStatus = StatusRejected
		round.RejectionMessage = rejectionMessage

	case TransitionActivate:
		if !CanTransition(round.ApprovalStatus, t) {
			return transitionErr(round.ApprovalStatus, t)
		}
		if round.IsActive {
			return ErrAlreadyActive
		}
		round.ApprovalStatus = StatusActive
		round.IsActive = true

	case TransitionClose:
		if !CanTransition(round.ApprovalStatus, t) {
			return transitionErr(round.ApprovalStatus, t)
		}
		round.ApprovalStatus = StatusClosed
		round.IsActive = false

	default:
		return fmt.Errorf("%w: unknown transition %q", ErrInvalidTransition, t)
	}
	return nil
}

func transitionErr(from ApprovalStatus, t Transition) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, t, statusLabel(from))
}

func statusLabel(s ApprovalStatus) string {
	if s == "" {
		return string(StatusNA)
	}
	return string(s)
}
