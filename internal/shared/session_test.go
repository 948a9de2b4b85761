package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T) (*miniredis.Miniredis, *SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewSessionManager(client, "equiseed_session", "test-secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	_, sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	sess.SetUser("42")
	sess.Set("csrf_token", "abc")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "equiseed_session", cookies[0].Name)

	// A follow-up request carrying the cookie sees the stored state.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "42", reloaded.User())
	require.Equal(t, "abc", reloaded.Get("csrf_token"))
}

func TestSessionDestroyClearsCookieAndStore(t *testing.T) {
	mr, sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	require.False(t, mr.Exists("session:"+sess.ID))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, -1, cookies[0].MaxAge)
}

func TestActorIDFromSession(t *testing.T) {
	sess := &Session{}
	sess.SetUser("42")
	ctx := ContextWithSession(context.Background(), sess)

	id, ok := ActorID(ctx)
	require.True(t, ok)
	require.Equal(t, int64(42), id)
}

func TestActorIDMissingSession(t *testing.T) {
	_, ok := ActorID(context.Background())
	require.False(t, ok)
}

func TestActorIDNonNumericUser(t *testing.T) {
	sess := &Session{}
	sess.SetUser("not-a-number")
	ctx := ContextWithSession(context.Background(), sess)

	_, ok := ActorID(ctx)
	require.False(t, ok)
}
