package server

import (
	"net/http"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.logger.WithError(err).Info("login rejected")
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	encryptedToken, err := s.cookie.Encode(s.config.CookieName, session.AccessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   session.ExpiresIn,
		Path:     "/",
	})

	s.respondJSON(w, http.StatusOK, map[string]any{
		"expires_in": session.ExpiresIn,
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
