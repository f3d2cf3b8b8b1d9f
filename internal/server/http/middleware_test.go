package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/service"
	"github.com/clipstream/clipstream/internal/token"
)

var (
	testAccessKey  = []byte("test-access-key")
	testRefreshKey = []byte("test-refresh-key")
)

// stubAuth backs the middleware's account lookup. Only Me is implemented;
// the embedded interface covers the rest of AuthService.
type stubAuth struct {
	service.AuthService
	users map[uuid.UUID]*model.User
}

func (a *stubAuth) add(u *model.User) { a.users[u.ID] = u }

func (a *stubAuth) Me(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := a.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func newTestServer(t *testing.T) (*Server, *stubAuth) {
	t.Helper()
	mgr := token.NewManager(testAccessKey, testRefreshKey, 15*time.Minute, 7*24*time.Hour)
	auth := &stubAuth{users: map[uuid.UUID]*model.User{}}
	s := New(Deps{
		Log:        zap.NewNop(),
		Tokens:     mgr,
		RefreshTTL: 7 * 24 * time.Hour,
		Auth:       auth,
	})
	return s, auth
}

func testUser(t *testing.T) *model.User {
	t.Helper()
	return &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    "ada@example.com",
		Username: "ada",
	}
}

func issueAccess(t *testing.T, u *model.User, ttl time.Duration) string {
	t.Helper()
	mgr := token.NewManager(testAccessKey, testRefreshKey, ttl, time.Hour)
	signed, _, err := mgr.IssueAccess(u)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return signed
}

// echoIdentity reports whether the middleware resolved an identity and which
// user it belongs to.
func echoIdentity() (http.Handler, *struct {
	called bool
	ident  token.Identity
	ok     bool
}) {
	state := &struct {
		called bool
		ident  token.Identity
		ok     bool
	}{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state.called = true
		state.ident, state.ok = IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, state
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return e
}

func TestAuthenticate(t *testing.T) {
	s, auth := newTestServer(t)

	t.Run("no token", func(t *testing.T) {
		next, state := echoIdentity()
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if state.called {
			t.Fatal("handler reached without a token")
		}
	})

	t.Run("bearer header", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueAccess(t, u, 15*time.Minute))
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !state.ok || state.ident.UserID != u.ID {
			t.Fatalf("identity = %+v, want user %s", state.ident, u.ID)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: issueAccess(t, u, 15*time.Minute)})
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if state.ident.UserID != u.ID {
			t.Fatalf("identity user = %s, want %s", state.ident.UserID, u.ID)
		}
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: "garbage"})
		req.Header.Set("Authorization", "Bearer "+issueAccess(t, u, 15*time.Minute))
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if state.called {
			t.Fatal("handler reached with a bad cookie")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, _ := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueAccess(t, u, -time.Minute))
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if e := decodeEnvelope(t, rec); e.Message != "Access token expired" {
			t.Fatalf("message = %q", e.Message)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		next, _ := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if e := decodeEnvelope(t, rec); e.Message != "Unauthorized" {
			t.Fatalf("message = %q", e.Message)
		}
	})

	t.Run("token for a deleted account", func(t *testing.T) {
		u := testUser(t) // never added to the store
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issueAccess(t, u, 15*time.Minute))
		rec := httptest.NewRecorder()
		s.Authenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if state.called {
			t.Fatal("handler reached for a deleted account")
		}
	})
}

func TestMaybeAuthenticate(t *testing.T) {
	s, auth := newTestServer(t)

	t.Run("anonymous passes", func(t *testing.T) {
		next, state := echoIdentity()
		rec := httptest.NewRecorder()
		s.MaybeAuthenticate(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if state.ok {
			t.Fatal("anonymous request resolved an identity")
		}
	})

	t.Run("valid token resolves identity", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: issueAccess(t, u, 15*time.Minute)})
		rec := httptest.NewRecorder()
		s.MaybeAuthenticate(next).ServeHTTP(rec, req)
		if !state.ok || state.ident.UserID != u.ID {
			t.Fatalf("identity = %+v, want user %s", state.ident, u.ID)
		}
	})

	t.Run("expired token still fails", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: issueAccess(t, u, -time.Minute)})
		rec := httptest.NewRecorder()
		s.MaybeAuthenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if state.called {
			t.Fatal("handler reached with an expired token")
		}
	})

	t.Run("malformed token degrades to anonymous", func(t *testing.T) {
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		s.MaybeAuthenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if state.ok {
			t.Fatal("malformed token resolved an identity")
		}
	})

	t.Run("deleted account degrades to anonymous", func(t *testing.T) {
		u := testUser(t)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: issueAccess(t, u, 15*time.Minute)})
		rec := httptest.NewRecorder()
		s.MaybeAuthenticate(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if state.ok {
			t.Fatal("deleted account resolved an identity")
		}
	})
}

func TestRequireGuest(t *testing.T) {
	s, auth := newTestServer(t)

	t.Run("logged in rejected", func(t *testing.T) {
		u := testUser(t)
		auth.add(u)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: issueAccess(t, u, 15*time.Minute)})
		rec := httptest.NewRecorder()
		s.RequireGuest(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if e := decodeEnvelope(t, rec); e.Message != "You are already logged in" {
			t.Fatalf("message = %q", e.Message)
		}
		if state.called {
			t.Fatal("handler reached by a logged-in client")
		}
	})

	t.Run("guest passes", func(t *testing.T) {
		next, state := echoIdentity()
		rec := httptest.NewRecorder()
		s.RequireGuest(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		if !state.called {
			t.Fatal("guest request did not reach the handler")
		}
	})

	t.Run("stale token passes", func(t *testing.T) {
		u := testUser(t)
		next, state := echoIdentity()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: issueAccess(t, u, -time.Minute)})
		rec := httptest.NewRecorder()
		s.RequireGuest(next).ServeHTTP(rec, req)
		if !state.called {
			t.Fatal("stale token blocked a guest route")
		}
	})
}

func TestAuthCookies(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.setAuthCookies(rec, "acc", "ref")
	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}
	ac, ok := byName[accessCookie]
	if !ok || ac.Value != "acc" {
		t.Fatalf("access cookie = %+v", ac)
	}
	if !ac.HttpOnly || ac.Path != "/" || ac.SameSite != http.SameSiteLaxMode {
		t.Fatalf("access cookie attributes = %+v", ac)
	}
	if ac.Secure {
		t.Fatal("Secure set outside production")
	}
	rc := byName[refreshCookie]
	if rc == nil || rc.Value != "ref" || rc.MaxAge != int((7*24*time.Hour).Seconds()) {
		t.Fatalf("refresh cookie = %+v", rc)
	}

	rec = httptest.NewRecorder()
	s.clearAuthCookies(rec)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Fatalf("cookie %s not expired: MaxAge=%d", c.Name, c.MaxAge)
		}
	}
}
