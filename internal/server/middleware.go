package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyUser contextKey = "user"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth checks for a valid access token and adds the user to the
// request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.CookieName)
		if err != nil {
			s.logger.WithError(err).Debug("no access token cookie found")
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var accessToken string
		err = s.cookie.Decode(s.config.CookieName, cookie.Value, &accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			s.respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		user, err := s.verifier.Verify(r.Context(), accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to verify access token")
			s.respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		if s.config.Debug {
			pp.Println(user)
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
			"admin":   user.IsAdmin,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin sits behind RequireAuth and gates the category admin
// surface on Cognito group membership.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.userFromContext(r.Context())
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if !user.IsAdmin {
			s.logger.WithField("user_id", user.ID).Warn("non-admin hit admin route")
			s.respondError(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
