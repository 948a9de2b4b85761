package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/equiseed/equiseed/internal/shared"
)

type fakeAuthRepo struct {
	users    map[string]*User
	sessions map[string]int64
	nextID   int64
	created  []Registration
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[string]*User), sessions: make(map[string]int64)}
}

func (r *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeAuthRepo) CreateUser(ctx context.Context, reg Registration, passwordHash string) (int64, error) {
	if _, ok := r.users[reg.Email]; ok {
		return 0, ErrEmailTaken
	}
	r.nextID++
	r.users[reg.Email] = &User{ID: r.nextID, Email: reg.Email, Name: reg.Name, CompanyName: reg.CompanyName, PasswordHash: passwordHash, IsActive: true}
	r.created = append(r.created, reg)
	return r.nextID, nil
}

func (r *fakeAuthRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = userID
	return nil
}

func (r *fakeAuthRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeAuthRepo) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeRoles struct {
	granted map[int64]string
}

func (f *fakeRoles) AssignRole(ctx context.Context, userID int64, roleName string) error {
	if f.granted == nil {
		f.granted = make(map[int64]string)
	}
	f.granted[userID] = roleName
	return nil
}

func seedUser(t *testing.T, repo *fakeAuthRepo, email, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.nextID++
	repo.users[email] = &User{ID: repo.nextID, Email: email, PasswordHash: string(hash), IsActive: active}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "founder@acme.test", "correct-horse", true)
	svc := NewService(repo, nil, "founder")

	user, err := svc.Authenticate(context.Background(), "founder@acme.test", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "founder@acme.test", user.Email)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "founder@acme.test", "correct-horse", true)
	svc := NewService(repo, nil, "founder")

	_, err := svc.Authenticate(context.Background(), "founder@acme.test", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(newFakeAuthRepo(), nil, "founder")
	_, err := svc.Authenticate(context.Background(), "ghost@acme.test", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newFakeAuthRepo()
	seedUser(t, repo, "founder@acme.test", "correct-horse", false)
	svc := NewService(repo, nil, "founder")

	_, err := svc.Authenticate(context.Background(), "founder@acme.test", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterHashesPasswordAndAssignsRole(t *testing.T) {
	repo := newFakeAuthRepo()
	roles := &fakeRoles{}
	svc := NewService(repo, roles, "founder")

	userID, err := svc.Register(context.Background(), Registration{
		Email:               "founder@acme.test",
		Name:                "Ada",
		CompanyName:         "Acme",
		Password:            "correct-horse",
		QuestionnaireRounds: []string{"Pre-Seed"},
	})
	require.NoError(t, err)
	require.Equal(t, "founder", roles.granted[userID])

	stored := repo.users["founder@acme.test"]
	require.NotEqual(t, "correct-horse", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := NewService(repo, nil, "founder")

	_, err := svc.Register(context.Background(), Registration{Email: "founder@acme.test", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), Registration{Email: "founder@acme.test", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrEmailTaken)
}
