package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/kaliweb-go/logging"
)

// okHandler records whether it ran and which user (if any) it saw.
type okHandler struct {
	called bool
	user   *User
	found  bool
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.user, h.found = UserFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func newAuthedRequest(t *testing.T, svc *Service, user *User) *http.Request {
	t.Helper()
	token, err := svc.IssueToken(user.ID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthenticateResolvesActiveUser(t *testing.T) {
	t.Parallel()
	store := newFakeUserStore()
	svc := newTestService(t, store, nil)
	user := seedUser(t, svc, store, "ada@example.com", "secret1", RoleMember, true)
	mw := NewMiddleware(svc, logging.NewDefault())

	next := &okHandler{}
	rec := httptest.NewRecorder()
	mw.Authenticate(next).ServeHTTP(rec, newAuthedRequest(t, svc, user))

	require.True(t, next.called)
	require.True(t, next.found)
	assert.Equal(t, user.ID, next.user.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejections(t *testing.T) {
	t.Parallel()
	store := newFakeUserStore()
	svc := newTestService(t, store, nil)
	inactive := seedUser(t, svc, store, "gone@example.com", "secret1", RoleMember, false)
	mw := NewMiddleware(svc, logging.NewDefault())

	ghost := seedUser(t, svc, store, "ghost@example.com", "secret1", RoleMember, true)
	ghostReq := newAuthedRequest(t, svc, ghost)
	delete(store.users, ghost.ID)

	noHeader := httptest.NewRequest(http.MethodGet, "/protected", nil)

	badPrefix := httptest.NewRequest(http.MethodGet, "/protected", nil)
	badPrefix.Header.Set("Authorization", "Token abc")

	garbage := httptest.NewRequest(http.MethodGet, "/protected", nil)
	garbage.Header.Set("Authorization", "Bearer garbage")

	cases := []struct {
		name string
		req  *http.Request
	}{
		{"no header", noHeader},
		{"missing bearer prefix", badPrefix},
		{"garbage token", garbage},
		{"user not found", ghostReq},
		{"deactivated account", newAuthedRequest(t, svc, inactive)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := &okHandler{}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, tc.req)

			assert.False(t, next.called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":"error"`)
		})
	}
}

func TestOptionalAuthenticateNeverRejects(t *testing.T) {
	t.Parallel()
	store := newFakeUserStore()
	svc := newTestService(t, store, nil)
	user := seedUser(t, svc, store, "ada@example.com", "secret1", RoleMember, true)
	inactive := seedUser(t, svc, store, "gone@example.com", "secret1", RoleMember, false)
	mw := NewMiddleware(svc, logging.NewDefault())

	t.Run("valid token resolves the user", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		mw.OptionalAuthenticate(next).ServeHTTP(rec, newAuthedRequest(t, svc, user))

		require.True(t, next.called)
		require.True(t, next.found)
		assert.Equal(t, user.ID, next.user.ID)
	})

	anonCases := []struct {
		name string
		req  func() *http.Request
	}{
		{"no header", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/public", nil)
		}},
		{"garbage token", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/public", nil)
			r.Header.Set("Authorization", "Bearer garbage")
			return r
		}},
		{"deactivated account", func() *http.Request {
			return newAuthedRequest(t, svc, inactive)
		}},
	}

	for _, tc := range anonCases {
		t.Run(tc.name+" degrades to anonymous", func(t *testing.T) {
			next := &okHandler{}
			rec := httptest.NewRecorder()
			mw.OptionalAuthenticate(next).ServeHTTP(rec, tc.req())

			require.True(t, next.called)
			assert.False(t, next.found)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	store := newFakeUserStore()
	svc := newTestService(t, store, nil)
	member := seedUser(t, svc, store, "member@example.com", "secret1", RoleMember, true)
	admin := seedUser(t, svc, store, "admin@example.com", "secret1", RoleAdmin, true)
	mw := NewMiddleware(svc, logging.NewDefault())

	chain := func(next http.Handler) http.Handler {
		return mw.Authenticate(mw.RequireAdmin(next))
	}

	t.Run("admin passes", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		chain(next).ServeHTTP(rec, newAuthedRequest(t, svc, admin))
		assert.True(t, next.called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member is forbidden, not unauthorized", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		chain(next).ServeHTTP(rec, newAuthedRequest(t, svc, member))
		assert.False(t, next.called)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no identity fails closed with 401", func(t *testing.T) {
		next := &okHandler{}
		rec := httptest.NewRecorder()
		// RequireAdmin wired without Authenticate in front: must reject.
		mw.RequireAdmin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.False(t, next.called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
