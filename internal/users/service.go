package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/equiseed/equiseed/internal/funding"
	"github.com/equiseed/equiseed/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	QuestionnaireRounds(ctx context.Context, userID int64) ([]string, error)
	UpdateValuation(ctx context.Context, userID int64, valuation float64) error
}

// FundingPort exposes the fundraising state the profile needs.
type FundingPort interface {
	TotalSharesAvailable(ctx context.Context, userID int64) (float64, error)
	NextRoundFor(ctx context.Context, userID int64) (*funding.PredefinedRound, error)
}

// Service handles user business logic.
type Service struct {
	repo    RepositoryPort
	funding FundingPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, fundingSvc FundingPort) *Service {
	return &Service{repo: repo, funding: fundingSvc}
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns one page of users plus pagination metadata.
func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	meta := shared.NewPagination(page, perPage, total)
	list, err := s.repo.ListUsers(ctx, meta.PerPage, (meta.Page-1)*meta.PerPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, meta, nil
}

// QuestionnaireRounds returns the round names declared at registration.
func (s *Service) QuestionnaireRounds(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.QuestionnaireRounds(ctx, userID)
}

// UpdateValuation validates and stores a new company valuation.
func (s *Service) UpdateValuation(ctx context.Context, userID int64, valuation float64) error {
	if valuation <= 0 {
		return fmt.Errorf("%w: valuation must be positive", funding.ErrValidation)
	}
	return s.repo.UpdateValuation(ctx, userID, valuation)
}

// Profile assembles the founder dashboard. The independent reads fan out
// concurrently; a missing dilution history degrades to the baseline pool
// rather than failing the whole profile.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	var (
		user          User
		questionnaire []string
		totalShares   float64
		nextRound     *funding.PredefinedRound
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.repo.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		questionnaire, err = s.repo.QuestionnaireRounds(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		totalShares, err = s.funding.TotalSharesAvailable(gctx, userID)
		if errors.Is(err, funding.ErrArithmetic) || errors.Is(err, shared.ErrNotFound) {
			totalShares = funding.BaselineShares
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		nextRound, err = s.funding.NextRoundFor(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}

	profile := Profile{
		User:                 user,
		QuestionnaireRounds:  questionnaire,
		TotalSharesAvailable: totalShares,
	}
	if nextRound != nil {
		name := nextRound.Name
		profile.NextRound = &name
	}
	return profile, nil
}
