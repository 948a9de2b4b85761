package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/equiseed/equiseed/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetRound(ctx context.Context, id int64) (FundingRound, error)
	GetDetail(ctx context.Context, roundID int64) (*FundingDetail, error)
	ListInvestors(ctx context.Context, detailID int64) ([]FundingInvestor, error)
	ListRounds(ctx context.Context, userID int64) ([]FundingRound, error)
	ListNewFormRounds(ctx context.Context, userID int64) ([]FundingRound, error)
	ListDilutionHistory(ctx context.Context, userID int64) ([]RoundDilution, error)
	ListReviewRounds(ctx context.Context) ([]ReviewRound, error)
}

// CatalogPort exposes the predefined round catalog.
type CatalogPort interface {
	ListPredefinedRounds(ctx context.Context) ([]PredefinedRound, error)
}

// AuditPort records admin actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts domain events for observability.
type MetricsPort interface {
	ObserveTransition(transition string)
	ObserveInvestment()
	ObserveTargetRejection()
}

// Service orchestrates the funding round workflow.
type Service struct {
	repo      RepositoryPort
	catalog   CatalogPort
	approvals *shared.ApprovalRecorder
	audit     AuditPort
	metrics   MetricsPort
	now       func() time.Time
}

// NewService constructs the funding service.
func NewService(repo RepositoryPort, catalog CatalogPort, approvals *shared.ApprovalRecorder, audit AuditPort) *Service {
	return &Service{repo: repo, catalog: catalog, approvals: approvals, audit: audit, now: time.Now}
}

// WithMetrics attaches domain event counters.
func (s *Service) WithMetrics(m MetricsPort) {
	s.metrics = m
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// LegacyInvestorInput is one historical investor on an imported round.
type LegacyInvestorInput struct {
	Name           string
	AmountInvested float64
}

// LegacyDocumentInput is a stored document reference for an imported round.
type LegacyDocumentInput struct {
	FilePath     string
	OriginalName string
}

// LegacyRoundInput describes one round of imported fundraising history.
type LegacyRoundInput struct {
	RoundType          string
	FundingRaised      float64
	ValuationAmount    float64
	FundingDate        time.Time
	EquityDiluted      float64
	HasNotRaisedBefore bool
	Investors          []LegacyInvestorInput
	Documents          []LegacyDocumentInput
}

// NewRoundInput describes a platform-raised round configuration.
type NewRoundInput struct {
	RoundType         string
	CurrentValuation  float64
	SharesDiluted     float64
	TargetAmount      float64
	MinimumInvestment float64
	RoundOpeningDate  time.Time
	RoundDuration     int
	GracePeriod       int
	ExitStrategy      []string
	ExpectedExitTime  string
	ExpectedReturns   float64
	Comments          string
}

// InvestmentInput describes a commitment against an active round.
type InvestmentInput struct {
	RoundID         int64
	Name            string
	AmountInvested  float64
	CommitmentDate  time.Time
	GracePeriodDays int
}

// InvestmentResult is returned after a commitment is recorded.
type InvestmentResult struct {
	Investor       FundingInvestor
	EquityPercent  string
	TotalCommitted float64
}

// ReviewRound is one entry in the admin review queue.
type ReviewRound struct {
	Round       FundingRound
	CompanyName string
}

// ReviewRow is the admin-facing projection of a queued round.
type ReviewRow struct {
	ID               int64          `json:"id"`
	CompanyName      string         `json:"company_name"`
	RoundType        string         `json:"round_type"`
	CurrentValuation float64        `json:"current_valuation"`
	TargetAmount     float64        `json:"target_amount"`
	MinimumInvest    float64        `json:"minimum_investment"`
	SharesDiluted    float64        `json:"shares_diluted"`
	DateRaised       string         `json:"date_raised"`
	Status           ApprovalStatus `json:"status"`
	Comments         string         `json:"comments,omitempty"`
	RejectionMessage string         `json:"rejection_message,omitempty"`
}

// RoundSummary is the founder-facing round listing row.
type RoundSummary struct {
	Name             string   `json:"name"`
	FundingRaised    *float64 `json:"funding_raised"`
	RaisedOnPlatform *bool    `json:"raised_on_platform"`
}

// CreateLegacyRounds imports a founder's fundraising history in one
// transaction. Rounds flagged has_not_raised_before get zeroed monetary
// fields and no investors.
func (s *Service) CreateLegacyRounds(ctx context.Context, userID int64, inputs []LegacyRoundInput) ([]FundingRound, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one round is required", ErrValidation)
	}
	var created []FundingRound
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sequence, err := tx.CountRounds(ctx, userID)
		if err != nil {
			return err
		}
		for _, input := range inputs {
			sequence++
			round := FundingRound{
				UserID:         userID,
				RoundType:      input.RoundType,
				SequenceNumber: sequence,
				FormType:       FormLegacy,
				ApprovalStatus: StatusNA,
			}
			if !input.HasNotRaisedBefore {
				round.FundingRaised = input.FundingRaised
			}
			roundID, err := tx.CreateRound(ctx, round)
			if err != nil {
				return err
			}
			round.ID = roundID

			detail := FundingDetail{
				FundingRoundID:     roundID,
				HasNotRaisedBefore: input.HasNotRaisedBefore,
				FundingDate:        s.now(),
			}
			if !input.HasNotRaisedBefore {
				detail.ValuationAmount = input.ValuationAmount
				detail.FundingDate = input.FundingDate
				detail.EquityDiluted = input.EquityDiluted
			}
			detailID, err := tx.CreateDetail(ctx, detail)
			if err != nil {
				return err
			}

			if !input.HasNotRaisedBefore {
				for _, investor := range input.Investors {
					if investor.AmountInvested < 0 {
						return fmt.Errorf("%w: investor amount is required", ErrValidation)
					}
					if _, err := tx.CreateInvestor(ctx, FundingInvestor{
						FundingDetailID: detailID,
						Name:            investor.Name,
						AmountInvested:  investor.AmountInvested,
						Status:          InvestorStatusInvested,
					}); err != nil {
						return err
					}
				}
				for _, doc := range input.Documents {
					if doc.FilePath == "" {
						continue
					}
					if _, err := tx.CreateDocument(ctx, FundingDocument{
						FundingDetailID: detailID,
						FilePath:        doc.FilePath,
						OriginalName:    doc.OriginalName,
					}); err != nil {
						return err
					}
				}
			}
			created = append(created, round)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateNewRound opens a platform-raised round in Pending state.
func (s *Service) CreateNewRound(ctx context.Context, userID int64, input NewRoundInput) (FundingRound, error) {
	if input.SharesDiluted < 0 || input.SharesDiluted > 100 {
		return FundingRound{}, fmt.Errorf("%w: shares diluted must be between 0 and 100", ErrValidation)
	}
	var round FundingRound
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		count, err := tx.CountRounds(ctx, userID)
		if err != nil {
			return err
		}
		round = FundingRound{
			UserID:            userID,
			RoundType:         input.RoundType,
			SequenceNumber:    count + 1,
			FormType:          FormNew,
			RaisedOnPlatform:  true,
			CurrentValuation:  input.CurrentValuation,
			SharesDiluted:     input.SharesDiluted,
			TargetAmount:      input.TargetAmount,
			MinimumInvestment: input.MinimumInvestment,
			RoundOpeningDate:  input.RoundOpeningDate,
			RoundDuration:     input.RoundDuration,
			GracePeriod:       input.GracePeriod,
			ExitStrategy:      input.ExitStrategy,
			ExpectedExitTime:  input.ExpectedExitTime,
			ExpectedReturns:   input.ExpectedReturns,
			Comments:          input.Comments,
		}
		if err := Apply(&round, TransitionSubmit, ""); err != nil {
			return err
		}
		// New-form rounds open against terms they define themselves, so
		// the detail carries the round valuation for the ledger.
		roundID, err := tx.CreateRound(ctx, round)
		if err != nil {
			return err
		}
		round.ID = roundID
		if _, err := tx.CreateDetail(ctx, FundingDetail{
			FundingRoundID:  roundID,
			ValuationAmount: input.CurrentValuation,
			FundingDate:     input.RoundOpeningDate,
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return FundingRound{}, err
	}
	s.recordApproval(ctx, userID, round.ID, shared.ApprovalSubmit, "")
	return round, nil
}

// RecordInvestment writes a commitment and recomputes round totals inside
// one transaction. The parent round row is locked so two concurrent
// commitments cannot both pass the target guard against a stale total; when
// the recomputed total exceeds the target the insert rolls back with it.
func (s *Service) RecordInvestment(ctx context.Context, input InvestmentInput) (InvestmentResult, error) {
	if input.Name == "" {
		return InvestmentResult{}, fmt.Errorf("%w: investor name is required", ErrValidation)
	}
	if input.GracePeriodDays < 1 {
		return InvestmentResult{}, fmt.Errorf("%w: grace period must be at least one day", ErrValidation)
	}
	var result InvestmentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		round, err := tx.GetRoundForUpdate(ctx, input.RoundID)
		if err != nil {
			return err
		}
		detail, err := tx.GetDetail(ctx, round.ID)
		if err != nil {
			return err
		}
		if detail == nil {
			return ErrMissingDetail
		}

		pct, err := EquityPercentage(input.AmountInvested, detail.ValuationAmount)
		if err != nil {
			return err
		}

		investor := FundingInvestor{
			FundingDetailID:  detail.ID,
			Name:             input.Name,
			AmountInvested:   input.AmountInvested,
			EquityPercentage: pct,
			CommitmentDate:   input.CommitmentDate,
			GracePeriodDays:  input.GracePeriodDays,
			GracePeriodEnd:   input.CommitmentDate.AddDate(0, 0, input.GracePeriodDays),
			Status:           InvestorStatusInvested,
		}
		investorID, err := tx.CreateInvestor(ctx, investor)
		if err != nil {
			return err
		}
		investor.ID = investorID

		totalCommitted, totalEquity, err := tx.SumInvestors(ctx, detail.ID)
		if err != nil {
			return err
		}
		if totalCommitted > round.TargetAmount {
			return ErrTargetExceeded
		}
		if err := tx.UpdateDetailEquity(ctx, detail.ID, totalEquity); err != nil {
			return err
		}
		if err := tx.UpdateRoundFunding(ctx, round.ID, totalCommitted); err != nil {
			return err
		}

		result = InvestmentResult{
			Investor:       investor,
			EquityPercent:  RoundPercent(pct),
			TotalCommitted: totalCommitted,
		}
		return nil
	})
	if err != nil {
		if s.metrics != nil && errors.Is(err, ErrTargetExceeded) {
			s.metrics.ObserveTargetRejection()
		}
		return InvestmentResult{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveInvestment()
	}
	return result, nil
}

// Approve moves a pending round into the approved state.
func (s *Service) Approve(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
	round, err := s.applyTransition(ctx, roundID, TransitionApprove, "")
	if err != nil {
		return FundingRound{}, err
	}
	s.recordApproval(ctx, actorID, roundID, shared.ApprovalApprove, "")
	s.recordAudit(ctx, actorID, "ROUND_APPROVE", roundID, nil)
	return round, nil
}

// Reject declines a pending or approved round with a message for the founder.
func (s *Service) Reject(ctx context.Context, actorID, roundID int64, message string) (FundingRound, error) {
	round, err := s.applyTransition(ctx, roundID, TransitionReject, message)
	if err != nil {
		return FundingRound{}, err
	}
	s.recordApproval(ctx, actorID, roundID, shared.ApprovalReject, message)
	s.recordAudit(ctx, actorID, "ROUND_REJECT", roundID, map[string]any{"message": message})
	return round, nil
}

// Activate opens an approved round for investment.
func (s *Service) Activate(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
	round, err := s.applyTransition(ctx, roundID, TransitionActivate, "")
	if err != nil {
		return FundingRound{}, err
	}
	s.recordAudit(ctx, actorID, "ROUND_ACTIVATE", roundID, nil)
	return round, nil
}

// Close finishes an active round and freezes its diluted shares at the sum
// of all investor equity percentages.
func (s *Service) Close(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
	round, err := s.applyTransition(ctx, roundID, TransitionClose, "")
	if err != nil {
		return FundingRound{}, err
	}
	s.recordAudit(ctx, actorID, "ROUND_CLOSE", roundID, map[string]any{"shares_diluted": round.SharesDiluted})
	return round, nil
}

func (s *Service) applyTransition(ctx context.Context, roundID int64, t Transition, message string) (FundingRound, error) {
	var updated FundingRound
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		round, err := tx.GetRoundForUpdate(ctx, roundID)
		if err != nil {
			return err
		}
		if err := Apply(&round, t, message); err != nil {
			return err
		}
		if t == TransitionClose {
			detail, err := tx.GetDetail(ctx, round.ID)
			if err != nil {
				return err
			}
			if detail == nil {
				return ErrMissingDetail
			}
			_, totalEquity, err := tx.SumInvestors(ctx, detail.ID)
			if err != nil {
				return err
			}
			round.SharesDiluted = totalEquity
			if err := tx.UpdateDetailEquity(ctx, detail.ID, totalEquity); err != nil {
				return err
			}
		}
		if err := tx.UpdateRoundState(ctx, round); err != nil {
			return err
		}
		updated = round
		return nil
	})
	if err != nil {
		return FundingRound{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(t))
	}
	return updated, nil
}

// TotalSharesAvailable folds cumulative dilution across the founder's full
// round history from the baseline pool.
func (s *Service) TotalSharesAvailable(ctx context.Context, userID int64) (float64, error) {
	history, err := s.repo.ListDilutionHistory(ctx, userID)
	if err != nil {
		return 0, err
	}
	return TotalShares(history)
}

// NextRoundFor resolves the next canonical round for the founder based on
// their latest raised round.
func (s *Service) NextRoundFor(ctx context.Context, userID int64) (*PredefinedRound, error) {
	catalog, err := s.catalog.ListPredefinedRounds(ctx)
	if err != nil {
		return nil, err
	}
	rounds, err := s.repo.ListRounds(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := make([]RaisedRound, 0, len(rounds))
	for _, round := range rounds {
		history = append(history, RaisedRound{RoundType: round.RoundType, SequenceNumber: round.SequenceNumber})
	}
	currentType := ""
	if len(rounds) > 0 {
		// ListRounds orders by sequence number; the last entry is the
		// founder's most recent round.
		currentType = rounds[len(rounds)-1].RoundType
	}
	return NextRound(catalog, history, currentType), nil
}

// RoundView loads a round with its nested data and shapes it for its status.
func (s *Service) RoundView(ctx context.Context, roundID int64) (RoundView, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return RoundView{}, err
	}
	detail, err := s.repo.GetDetail(ctx, round.ID)
	if err != nil {
		return RoundView{}, err
	}
	var investors []FundingInvestor
	if detail != nil {
		investors, err = s.repo.ListInvestors(ctx, detail.ID)
		if err != nil {
			return RoundView{}, err
		}
	}
	return PresentRound(round, detail, investors), nil
}

// ListUserRounds returns the founder's raised rounds as summary rows,
// falling back to the registration questionnaire names when the founder has
// no round records yet.
func (s *Service) ListUserRounds(ctx context.Context, userID int64, questionnaireRounds []string) ([]RoundSummary, error) {
	rounds, err := s.repo.ListRounds(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		summaries := make([]RoundSummary, 0, len(questionnaireRounds))
		for _, name := range questionnaireRounds {
			summaries = append(summaries, RoundSummary{Name: strings.ToUpper(name)})
		}
		return summaries, nil
	}
	summaries := make([]RoundSummary, 0, len(rounds))
	for _, round := range rounds {
		raised := round.FundingRaised
		onPlatform := round.RaisedOnPlatform
		summaries = append(summaries, RoundSummary{
			Name:             strings.ToUpper(round.RoundType),
			FundingRaised:    &raised,
			RaisedOnPlatform: &onPlatform,
		})
	}
	return summaries, nil
}

// ListNewRounds returns the founder's platform-raised rounds in sequence order.
func (s *Service) ListNewRounds(ctx context.Context, userID int64) ([]FundingRound, error) {
	return s.repo.ListNewFormRounds(ctx, userID)
}

// ReviewQueue groups rounds awaiting or past review by normalised status.
func (s *Service) ReviewQueue(ctx context.Context) (map[string][]ReviewRow, error) {
	rounds, err := s.repo.ListReviewRounds(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]ReviewRow)
	for _, entry := range rounds {
		round := entry.Round
		key := strings.ToLower(string(round.ApprovalStatus))
		grouped[key] = append(grouped[key], ReviewRow{
			ID:               round.ID,
			CompanyName:      entry.CompanyName,
			RoundType:        round.RoundType,
			CurrentValuation: round.CurrentValuation,
			TargetAmount:     round.TargetAmount,
			MinimumInvest:    round.MinimumInvestment,
			SharesDiluted:    round.SharesDiluted,
			DateRaised:       round.CreatedAt.Format("2006-01-02"),
			Status:           round.ApprovalStatus,
			Comments:         round.Comments,
			RejectionMessage: round.RejectionMessage,
		})
	}
	return grouped, nil
}

// ApprovalHistory returns the review trail for a round, oldest first.
func (s *Service) ApprovalHistory(ctx context.Context, roundID int64) ([]shared.ApprovalLog, error) {
	if s.approvals == nil {
		return nil, nil
	}
	return s.approvals.List(ctx, "funding", roundID)
}

func (s *Service) recordApproval(ctx context.Context, actorID, roundID int64, action shared.ApprovalAction, note string) {
	if s.approvals == nil {
		return
	}
	_ = s.approvals.Record(ctx, shared.ApprovalLog{
		Module:  "funding",
		RefID:   roundID,
		ActorID: actorID,
		Action:  action,
		Note:    note,
	})
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, roundID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "funding_round",
		EntityID: fmt.Sprintf("%d", roundID),
		Meta:     meta,
	})
}
