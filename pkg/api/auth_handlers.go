package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/network-analysis-service/pkg/models"
	"github.com/gilchrisn/network-analysis-service/pkg/service"
	"github.com/gilchrisn/network-analysis-service/pkg/store"
	"github.com/gilchrisn/network-analysis-service/pkg/utils"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// Login authenticates a user and opens a session
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.authService.Login(req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeAuthError(w, http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeAuthError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case err != nil:
		log.Error().Err(err).Msg("Login failed")
		writeAuthError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	utils.WriteJSON(w, http.StatusOK, models.AuthResponse{Success: true, User: user})
}

// Logout clears the session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, models.AuthResponse{Success: true})
}

// Signup registers a user and opens a session
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	const requiredMsg = "Name, username, email, and password are required"

	var req models.SignupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeAuthError(w, http.StatusBadRequest, requiredMsg)
		return
	}

	user, token, err := h.authService.Signup(req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeAuthError(w, http.StatusBadRequest, validationMessage(err, requiredMsg))
		return
	case errors.Is(err, store.ErrUserExists):
		writeAuthError(w, http.StatusBadRequest, "User with this email already exists")
		return
	case errors.Is(err, store.ErrUsernameTaken):
		writeAuthError(w, http.StatusBadRequest, "Username is already taken")
		return
	case err != nil:
		log.Error().Err(err).Msg("Signup failed")
		writeAuthError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.setSessionCookie(w, token)
	utils.WriteJSON(w, http.StatusOK, models.AuthResponse{Success: true, User: user})
}

// ForgotPassword issues a password reset token
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "Email is required")
		return
	}

	_, err := h.authService.ForgotPassword(req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeAuthError(w, http.StatusBadRequest, "Email is required")
		return
	case errors.Is(err, store.ErrUserNotFound):
		writeAuthError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Error().Err(err).Msg("Forgot password failed")
		writeAuthError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.AuthResponse{Success: true, Message: "Reset instructions sent"})
}

// ResetPassword sets a new password from a reset token
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "Token and password required")
		return
	}

	err := h.authService.ResetPassword(req)
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeAuthError(w, http.StatusBadRequest, "Token and password required")
		return
	case errors.Is(err, store.ErrInvalidToken):
		writeAuthError(w, http.StatusBadRequest, "Invalid token")
		return
	case errors.Is(err, store.ErrUserNotFound):
		writeAuthError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Error().Err(err).Msg("Reset password failed")
		writeAuthError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.WriteJSON(w, http.StatusOK, models.AuthResponse{Success: true})
}

// CheckAuth reports whether the request carries a valid session
func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	user, err := sessionUser(h.authService, r)
	if err != nil {
		utils.WriteJSON(w, http.StatusOK, models.CheckAuthResponse{Authenticated: false})
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.CheckAuthResponse{Authenticated: true, User: user})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.authService.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionUser(auth *service.AuthService, r *http.Request) (*models.SessionUser, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, service.ErrInvalidSession
	}
	return auth.ParseSession(cookie.Value)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	utils.WriteJSON(w, status, models.AuthResponse{Success: false, Error: message})
}

// validationMessage keeps the fixed message for missing fields and reports
// format violations verbatim.
func validationMessage(err error, requiredMsg string) string {
	var verr *utils.ValidationError
	if errors.As(err, &verr) && !verr.HasTag("required") {
		return verr.Error()
	}
	return requiredMsg
}
