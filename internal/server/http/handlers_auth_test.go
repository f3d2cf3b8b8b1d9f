package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/service"
	"github.com/clipstream/clipstream/internal/token"
)

// flowAuth is a stateful single-account fake that reproduces the session
// lifecycle: one verification code, one stored refresh token, rotation on
// refresh. Tokens are real so the cookie and middleware paths stay honest.
type flowAuth struct {
	service.AuthService
	tokens   *token.Manager
	user     *model.User
	password string
	code     string
	refresh  string
}

func (f *flowAuth) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	f.user = &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
	}
	f.password = in.Password
	f.code = "123456"
	return f.user, nil
}

func (f *flowAuth) VerifyAccount(ctx context.Context, email, code string) error {
	if f.user == nil || email != f.user.Email {
		return errs.ErrNotFound
	}
	if f.user.IsVerified {
		return errs.ErrAlreadyVerified
	}
	if code != f.code {
		return errs.ErrCodeInvalid
	}
	f.user.IsVerified = true
	f.code = ""
	return nil
}

func (f *flowAuth) Login(ctx context.Context, identifier, password, ip string) (model.Tokens, *model.User, error) {
	if f.user == nil || !f.user.IsVerified || password != f.password {
		return model.Tokens{}, nil, errs.ErrInvalidCredentials
	}
	t, err := f.issue()
	return t, f.user, err
}

func (f *flowAuth) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	if refreshToken == "" || refreshToken != f.refresh {
		return model.Tokens{}, errs.ErrRefreshInvalid
	}
	return f.issue()
}

func (f *flowAuth) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, errs.ErrNotFound
	}
	return f.user, nil
}

func (f *flowAuth) issue() (model.Tokens, error) {
	access, exp, err := f.tokens.IssueAccess(f.user)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, err := f.tokens.IssueRefresh(f.user)
	if err != nil {
		return model.Tokens{}, err
	}
	f.refresh = refresh
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func cookieValue(t *testing.T, rec *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %q not set", name)
	return ""
}

func TestAuthFlow_RegisterVerifyLoginRefreshReplay(t *testing.T) {
	mgr := token.NewManager(testAccessKey, testRefreshKey, 15*time.Minute, 7*24*time.Hour)
	auth := &flowAuth{tokens: mgr}
	s := New(Deps{
		Log:        zap.NewNop(),
		Tokens:     mgr,
		RefreshTTL: 7 * 24 * time.Hour,
		Auth:       auth,
	})
	router := s.Router()

	post := func(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// Register: account exists unverified, no session yet.
	rec := post("/api/v1/auth/register",
		`{"username":"alice","email":"a@x.com","name":"A","password":"Abcdef1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	if auth.user == nil || auth.user.IsVerified {
		t.Fatal("register did not create an unverified account")
	}
	if strings.Contains(rec.Body.String(), "pwdHash") || strings.Contains(rec.Body.String(), "refreshToken") {
		t.Fatal("register response leaks credential fields")
	}

	// Login before verification is rejected.
	rec = post("/api/v1/auth/login", `{"identifier":"alice","password":"Abcdef1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unverified login status = %d, want 401", rec.Code)
	}

	// Verify, then login.
	rec = post("/api/v1/auth/verify", `{"email":"a@x.com","code":"123456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = post("/api/v1/auth/login", `{"identifier":"alice","password":"Abcdef1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	access := cookieValue(t, rec, accessCookie)
	firstRefresh := cookieValue(t, rec, refreshCookie)
	if access == "" || firstRefresh == "" {
		t.Fatal("login did not set both cookies")
	}

	// A logged-in client may not hit guest-only routes.
	rec = post("/api/v1/auth/login", `{"identifier":"alice","password":"Abcdef1"}`,
		&http.Cookie{Name: accessCookie, Value: access})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("login while logged in status = %d, want 400", rec.Code)
	}

	// Refresh rotates the pair.
	rec = post("/api/v1/auth/refresh", "",
		&http.Cookie{Name: refreshCookie, Value: firstRefresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", rec.Code, rec.Body.String())
	}
	secondRefresh := cookieValue(t, rec, refreshCookie)
	if secondRefresh == firstRefresh {
		t.Fatal("refresh did not rotate the refresh token")
	}

	// Replaying the rotated-out token fails and drops the cookies.
	rec = post("/api/v1/auth/refresh", "",
		&http.Cookie{Name: refreshCookie, Value: firstRefresh})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replay status = %d, want 401", rec.Code)
	}
	if e := decodeEnvelope(t, rec); e.Message != "Invalid refresh token" {
		t.Fatalf("replay message = %q", e.Message)
	}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Fatalf("cookie %s not cleared on failed refresh", c.Name)
		}
	}

	// The fresh token still works.
	rec = post("/api/v1/auth/refresh", "",
		&http.Cookie{Name: refreshCookie, Value: secondRefresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("fresh refresh status = %d: %s", rec.Code, rec.Body.String())
	}

	// A cookieless client may present the refresh token as a Bearer header.
	thirdRefresh := cookieValue(t, rec, refreshCookie)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+thirdRefresh)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("header refresh status = %d: %s", rec.Code, rec.Body.String())
	}
	if cookieValue(t, rec, refreshCookie) == thirdRefresh {
		t.Fatal("header refresh did not rotate the refresh token")
	}

	// No token anywhere is a missing session, not an invalid token.
	rec = post("/api/v1/auth/refresh", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tokenless refresh status = %d, want 401", rec.Code)
	}
	if e := decodeEnvelope(t, rec); e.Message != "Unauthorized" {
		t.Fatalf("tokenless refresh message = %q", e.Message)
	}
}
