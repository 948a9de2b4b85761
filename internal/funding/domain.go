package funding

import (
	"errors"
	"time"
)

// ApprovalStatus tracks a funding round through its review lifecycle.
type ApprovalStatus string

const (
	// StatusNA marks legacy rounds that never entered the review queue.
	StatusNA       ApprovalStatus = "NA"
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
	StatusActive   ApprovalStatus = "ACTIVE"
	StatusClosed   ApprovalStatus = "CLOSED"
)

// Form types distinguish imported history from platform-raised rounds.
type FormType string

const (
	FormLegacy FormType = "legacy"
	FormNew    FormType = "new"
)

// Investor statuses. Commitments start as invested and settle to confirmed
// once their grace period lapses without withdrawal.
const (
	InvestorStatusInvested  = "invested"
	InvestorStatusConfirmed = "confirmed"
)

// FundingRound is one fundraising event owned by a founder.
type FundingRound struct {
	ID                int64
	UserID            int64
	RoundType         string
	SequenceNumber    int
	FormType          FormType
	ApprovalStatus    ApprovalStatus
	IsActive          bool
	RaisedOnPlatform  bool
	CurrentValuation  float64
	SharesDiluted     float64
	TargetAmount      float64
	MinimumInvestment float64
	FundingRaised     float64
	RoundOpeningDate  time.Time
	RoundDuration     int
	GracePeriod       int
	ExitStrategy      []string
	ExpectedExitTime  string
	ExpectedReturns   float64
	Comments          string
	RejectionMessage  string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClosingDate derives the end of the round window from its opening date.
func (r FundingRound) ClosingDate() time.Time {
	return r.RoundOpeningDate.AddDate(0, 0, r.RoundDuration)
}

// FundingDetail holds valuation terms for a round. Exactly one per round.
type FundingDetail struct {
	ID                 int64
	FundingRoundID     int64
	ValuationAmount    float64
	FundingDate        time.Time
	HasNotRaisedBefore bool
	// EquityDiluted is always the sum of investor equity percentages,
	// recomputed by the ledger and never edited independently.
	EquityDiluted float64
}

// FundingInvestor is a single commitment against a round's detail.
type FundingInvestor struct {
	ID               int64
	FundingDetailID  int64
	Name             string
	AmountInvested   float64
	EquityPercentage float64
	CommitmentDate   time.Time
	GracePeriodDays  int
	GracePeriodEnd   time.Time
	Status           string
	CreatedAt        time.Time
}

// FundingDocument is a supporting file record attached to a detail.
type FundingDocument struct {
	ID              int64
	FundingDetailID int64
	FilePath        string
	OriginalName    string
}

// PredefinedRound is a read-only catalog entry from the canonical
// round ordering (Pre-Seed, Seed, ... Open Market).
type PredefinedRound struct {
	ID       int64
	Name     string
	Sequence int
}

var (
	// ErrNotFound indicates a referenced round or investor is absent.
	ErrNotFound = errors.New("funding: not found")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("funding: invalid input")
	// ErrInvalidTransition indicates a lifecycle guard failed.
	ErrInvalidTransition = errors.New("funding: invalid state transition")
	// ErrAlreadyApproved is returned when approving an approved round.
	ErrAlreadyApproved = errors.New("funding: round is already approved")
	// ErrAlreadyActive is returned when activating an active round.
	ErrAlreadyActive = errors.New("funding: round is already active")
	// ErrMissingDetail indicates a round without its funding detail.
	ErrMissingDetail = errors.New("funding: no funding detail for this round")
	// ErrTargetExceeded rejects commitments that push the total past the target.
	ErrTargetExceeded = errors.New("funding: committed amount exceeds the target amount")
	// ErrArithmetic guards zero valuations and 100% dilution inputs.
	ErrArithmetic = errors.New("funding: arithmetic precondition failed")
	// ErrDuplicateRound rejects a second round of the same type per user.
	ErrDuplicateRound = errors.New("funding: round type already exists for user")
)
