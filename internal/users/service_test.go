package users

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/equiseed/equiseed/internal/funding"
	"github.com/equiseed/equiseed/internal/shared"
)

type fakeUserRepo struct {
	users         map[int64]User
	questionnaire map[int64][]string
	valuations    map[int64]float64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:         make(map[int64]User),
		questionnaire: make(map[int64][]string),
		valuations:    make(map[int64]float64),
	}
}

func (r *fakeUserRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) CountUsers(ctx context.Context) (int, error) {
	return len(r.users), nil
}

func (r *fakeUserRepo) QuestionnaireRounds(ctx context.Context, userID int64) ([]string, error) {
	return r.questionnaire[userID], nil
}

func (r *fakeUserRepo) UpdateValuation(ctx context.Context, userID int64, valuation float64) error {
	if _, ok := r.users[userID]; !ok {
		return shared.ErrNotFound
	}
	r.valuations[userID] = valuation
	return nil
}

type fakeFunding struct {
	totalShares float64
	totalErr    error
	nextRound   *funding.PredefinedRound
}

func (f fakeFunding) TotalSharesAvailable(ctx context.Context, userID int64) (float64, error) {
	return f.totalShares, f.totalErr
}

func (f fakeFunding) NextRoundFor(ctx context.Context, userID int64) (*funding.PredefinedRound, error) {
	return f.nextRound, nil
}

func TestProfileAssemblesDerivedState(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users[7] = User{ID: 7, Email: "founder@acme.test", CompanyName: "Acme", CreatedAt: time.Now()}
	repo.questionnaire[7] = []string{"Pre-Seed", "Seed"}

	svc := NewService(repo, fakeFunding{
		totalShares: 125000,
		nextRound:   &funding.PredefinedRound{ID: 3, Name: "Series A", Sequence: 3},
	})

	profile, err := svc.Profile(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Acme", profile.User.CompanyName)
	require.Equal(t, []string{"Pre-Seed", "Seed"}, profile.QuestionnaireRounds)
	require.Equal(t, 125000.0, profile.TotalSharesAvailable)
	require.NotNil(t, profile.NextRound)
	require.Equal(t, "Series A", *profile.NextRound)
}

func TestProfileDegradesToBaselineShares(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users[7] = User{ID: 7}

	svc := NewService(repo, fakeFunding{totalErr: funding.ErrArithmetic})

	profile, err := svc.Profile(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, funding.BaselineShares, profile.TotalSharesAvailable)
}

func TestProfileWithoutNextRound(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users[7] = User{ID: 7}

	svc := NewService(repo, fakeFunding{})
	profile, err := svc.Profile(context.Background(), 7)
	require.NoError(t, err)
	require.Nil(t, profile.NextRound)
}

func TestProfileMissingUser(t *testing.T) {
	svc := NewService(newFakeUserRepo(), fakeFunding{})
	_, err := svc.Profile(context.Background(), 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListUsersPaginates(t *testing.T) {
	repo := newFakeUserRepo()
	for i := int64(1); i <= 5; i++ {
		repo.users[i] = User{ID: i}
	}
	svc := NewService(repo, fakeFunding{})

	list, meta, err := svc.ListUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, []int64{3, 4}, []int64{list[0].ID, list[1].ID})
	require.Equal(t, 5, meta.Total)
	require.Equal(t, 3, meta.TotalPages)

	// Out-of-range params fall back to the defaults.
	list, meta, err = svc.ListUsers(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, list, 5)
	require.Equal(t, 1, meta.Page)
	require.Equal(t, 20, meta.PerPage)
}

func TestUpdateValuationValidates(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users[7] = User{ID: 7}
	svc := NewService(repo, fakeFunding{})

	require.ErrorIs(t, svc.UpdateValuation(context.Background(), 7, 0), funding.ErrValidation)
	require.ErrorIs(t, svc.UpdateValuation(context.Background(), 7, -10), funding.ErrValidation)
	require.NoError(t, svc.UpdateValuation(context.Background(), 7, 2000000))
	require.Equal(t, 2000000.0, repo.valuations[7])
}
