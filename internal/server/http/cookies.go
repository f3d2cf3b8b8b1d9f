package httpserver

import (
	"net/http"
	"strings"
	"time"
)

// Session cookie names. Both are httpOnly; the browser client never reads
// them, it just carries them.
const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

func (s *Server) setAuthCookies(w http.ResponseWriter, access, refresh string) {
	s.setCookie(w, accessCookie, access, s.tokens.AccessTTL())
	s.setCookie(w, refreshCookie, refresh, s.refreshTTL)
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	s.setCookie(w, accessCookie, "", -time.Hour)
	s.setCookie(w, refreshCookie, "", -time.Hour)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.production,
		SameSite: http.SameSiteLaxMode,
	})
}

// bearerToken extracts the access token: the cookie wins, a Bearer header
// is the fallback for non-browser clients.
func bearerToken(r *http.Request) string {
	if c, err := r.Cookie(accessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// refreshTokenFrom extracts the refresh token: the cookie wins, a Bearer
// header is the fallback. A JSON body field is handled by the caller.
func refreshTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(refreshCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
