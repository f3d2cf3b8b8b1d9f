package httpserver

import (
	"net"
	"net/http"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/service"
)

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	u, err := s.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, u.Public(), "Verification code sent")
}

func (s *Server) handleUsernameAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := s.auth.UsernameAvailable(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"available": available}, "")
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.auth.VerifyAccount(r.Context(), req.Email, req.Code); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Account verified")
}

func (s *Server) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.auth.ResendVerifyCode(r.Context(), req.Email); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Verification code sent")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	// Older clients send "email"; it is just an identifier spelling.
	if req.Identifier == "" {
		req.Identifier = req.Email
	}
	tokens, u, err := s.auth.Login(r.Context(), req.Identifier, req.Password, clientIP(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.setAuthCookies(w, tokens.AccessToken, tokens.RefreshToken)
	s.respond(w, http.StatusOK, map[string]any{
		"user":         u.Public(),
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "Logged in")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh := refreshTokenFrom(r)
	if refresh == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decode(r, &req); err == nil {
			refresh = req.RefreshToken
		}
	}
	if refresh == "" {
		// No token presented at all: the caller has no session to refresh.
		s.respondErr(w, r, errs.ErrUnauthorized)
		return
	}
	tokens, err := s.auth.Refresh(r.Context(), refresh)
	if err != nil {
		s.clearAuthCookies(w)
		s.respondErr(w, r, err)
		return
	}
	s.setAuthCookies(w, tokens.AccessToken, tokens.RefreshToken)
	s.respond(w, http.StatusOK, map[string]any{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	}, "Session refreshed")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	if err := s.auth.Logout(r.Context(), ident.UserID); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.clearAuthCookies(w)
	s.respond(w, http.StatusOK, nil, "Logged out")
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Reset code sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		s.respondErr(w, r, err)
		return
	}
	// The reset revoked any open session; drop the cookies to match.
	s.clearAuthCookies(w)
	s.respond(w, http.StatusOK, nil, "Password reset")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.auth.ChangePassword(r.Context(), ident.UserID, req.OldPassword, req.NewPassword); err != nil {
		s.respondErr(w, r, err)
		return
	}
	// Unlike a reset, the session and its cookies stay.
	s.respond(w, http.StatusOK, nil, "Password changed")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	u, err := s.auth.Me(r.Context(), ident.UserID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, u.Public(), "")
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		ProfileImage string `json:"profileImage"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	u, err := s.auth.UpdateProfile(r.Context(), ident.UserID, req.Name, req.ProfileImage)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, u.Public(), "Profile updated")
}
