package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/api/v1/middleware"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/infrastructure/identity"
	"github.com/hbs-1991/XM-Port-Tm-sub002/internal/services/session"
	"github.com/hbs-1991/XM-Port-Tm-sub002/pkg/httpext"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LogoutResponse struct {
	RedirectTo string `json:"redirect_to"`
}

// HandleLogin establishes a session from credentials. Bad credentials come
// back as a form error the login screen can display inline.
func HandleLogin(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "A valid email and a password of at least 8 characters are required",
		})
		return
	}

	sess, err := sessionService.Establish(r.Context(), w, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			httpext.JsonErrorWithDetails(w, http.StatusUnauthorized, httpext.ErrorResponse{
				Error:            "invalid_credentials",
				ErrorDescription: "Email or password is incorrect",
			})
		case errors.Is(err, identity.ErrTokenInvalid), errors.Is(err, identity.ErrUserNotFound):
			// Login succeeded but the user could not be hydrated; no session exists.
			httpext.JsonErrorWithDetails(w, http.StatusUnauthorized, httpext.ErrorResponse{
				Error:            "invalid_credentials",
				ErrorDescription: "Account could not be verified",
			})
		default:
			log.Error().Err(err).Msg("Login failed against identity service")
			httpext.JsonError(w, "Authentication service unavailable", http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusOK, sess.View())
}

// HandleLogout tears the session down. The remote revocation is best-effort;
// the response always points the UI at the post-logout destination.
func HandleLogout(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	redirect := sessionService.Destroy(r.Context(), w, r)
	writeJSON(w, http.StatusOK, LogoutResponse{RedirectTo: redirect})
}

// HandleSession returns the current session for the UI shell. Runs behind
// RequireSession, so resolving it here never fails.
func HandleSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r)
	if sess == nil {
		httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sess.View())
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
