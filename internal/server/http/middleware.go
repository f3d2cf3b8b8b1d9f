package httpserver

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/token"
)

// Logging logs one line per request with metadata only, never payloads.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}

// Recover turns panics into 500s instead of dropping the connection.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", r.URL.Path),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"success":false,"message":"internal error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Authenticate requires a valid access token (cookie first, then Bearer
// header), checks the account still exists and stores the identity in
// context. An expired token answers distinctly from an invalid one so
// clients know to refresh.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			s.respondErr(w, r, errs.ErrUnauthorized)
			return
		}
		ident, err := s.tokens.ParseAccess(tok)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		// A token can outlive its account. The record is the source of
		// truth for the attached identity.
		u, err := s.auth.Me(r.Context(), ident.UserID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				err = errs.ErrUnauthorized
			}
			s.respondErr(w, r, err)
			return
		}
		ident = token.Identity{UserID: u.ID, Email: u.Email, Username: u.Username}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

// MaybeAuthenticate resolves the identity when a valid access token is
// present but lets anonymous requests through. Used on public routes whose
// responses are viewer-aware. An expired token still fails so a logged-in
// client is never silently degraded to anonymous.
func (s *Server) MaybeAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		ident, err := s.tokens.ParseAccess(tok)
		if err != nil {
			if errors.Is(err, errs.ErrTokenExpired) {
				s.respondErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		u, err := s.auth.Me(r.Context(), ident.UserID)
		if err != nil {
			// A token for a deleted account reads as anonymous here.
			next.ServeHTTP(w, r)
			return
		}
		ident = token.Identity{UserID: u.ID, Email: u.Email, Username: u.Username}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

// RequireGuest rejects requests that already carry a valid session. Login
// and signup are guest-only.
func (s *Server) RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" {
			if _, err := s.tokens.ParseAccess(tok); err == nil {
				s.respondErr(w, r, errs.ErrAlreadyAuthenticated)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
