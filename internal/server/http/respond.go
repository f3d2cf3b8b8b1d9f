package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/clipstream/clipstream/internal/errs"
)

// envelope is the uniform response body. Data is set on success, Message on
// both success and failure; Detail carries the internal error text outside
// production.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Message: message})
}

// respondErr maps sentinel errors onto stable status codes and messages.
// Anything unmapped is a 500 with the detail suppressed in production.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, errs.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrAlreadyAuthenticated):
		status, message = http.StatusBadRequest, "You are already logged in"
	case errors.Is(err, errs.ErrCodeExpired):
		status, message = http.StatusBadRequest, "Code expired"
	case errors.Is(err, errs.ErrCodeInvalid):
		status, message = http.StatusBadRequest, "Invalid code"
	case errors.Is(err, errs.ErrAlreadyVerified):
		status, message = http.StatusBadRequest, "Account already verified"
	case errors.Is(err, errs.ErrSelfFollow):
		status, message = http.StatusBadRequest, "Cannot follow yourself"
	case errors.Is(err, errs.ErrTokenExpired):
		status, message = http.StatusUnauthorized, "Access token expired"
	case errors.Is(err, errs.ErrRefreshInvalid):
		status, message = http.StatusUnauthorized, "Invalid refresh token"
	case errors.Is(err, errs.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, errs.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, errs.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, errs.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, errs.ErrAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, errs.ErrRateLimited):
		status, message = http.StatusTooManyRequests, "Too many attempts, try again later"
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	e := envelope{Success: false, Message: message}
	if !s.production && status == http.StatusInternalServerError {
		e.Detail = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.ErrValidation
	}
	return nil
}
