package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/equiseed/equiseed/internal/shared"
)

type fakePermissions struct {
	perms []string
}

func (f fakePermissions) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return f.perms, nil
}

type fakeRoleLister struct {
	roles []Role
}

func (f fakeRoleLister) ListRoles(ctx context.Context) ([]Role, error) {
	return f.roles, nil
}

func rolesRouter(perms []string) http.Handler {
	lister := fakeRoleLister{roles: []Role{{ID: 1, Name: RoleAdmin}, {ID: 2, Name: RoleFounder}}}
	h := NewHandler(slog.Default(), lister, Middleware{Service: fakePermissions{perms: perms}})
	r := chi.NewRouter()
	h.MountAdminRoutes(r)
	return r
}

func signedInRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess := &shared.Session{}
	sess.SetUser("1")
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestListRolesRequiresReviewPermission(t *testing.T) {
	router := rolesRouter([]string{PermFundingView})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedInRequest("/roles"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListRolesRequiresSession(t *testing.T) {
	router := rolesRouter([]string{PermFundingReview})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListRolesReturnsDirectory(t *testing.T) {
	router := rolesRouter([]string{PermFundingReview})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedInRequest("/roles"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"admin"`)
	require.Contains(t, rec.Body.String(), `"name":"founder"`)
}
