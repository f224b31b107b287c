package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware adds CORS headers for the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = r.Header.Get("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		w.Header().Set("X-Correlation-ID", corrID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			dur := time.Since(start)
			corrID := w.Header().Get("X-Correlation-ID")

			event := logger.Trace()
			if rw.statusCode >= 500 {
				event = logger.Error()
			} else if rw.statusCode >= 400 {
				event = logger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytesWritten).
				Dur("duration", dur).
				Str("correlation_id", corrID).
				Msg("HTTP request")
		})
	}
}

// protect is the auth gate guarding a route: it verifies the bearer token
// against the identity service, then ensures a local profile row exists for
// the verified identity (creating it on first authenticated request), and
// attaches profile plus token to the request context.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			WriteError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		ctx := r.Context()

		authUser, err := s.app.Identity.VerifyToken(ctx, token)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Token verification failed")
			WriteError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		// The scoped client carries the caller's own token so the store's
		// row-level policies apply to the lookup and the provisioning insert.
		store := s.app.Store.Scoped(token)

		profile, err := store.GetProfile(ctx, authUser.ID)
		if err != nil {
			profile = s.provisionProfile(w, r, store, authUser)
			if profile == nil {
				return // response already written
			}
		}

		uc := &common.UserContext{User: profile, Token: token}
		next(w, r.WithContext(common.WithUserContext(ctx, uc)))
	}
}

// provisionProfile creates the local profile row for a verified identity on
// its first authenticated request. Returns nil after writing an error
// response on failure.
func (s *Server) provisionProfile(w http.ResponseWriter, r *http.Request, store interfaces.StoreClient, authUser *models.AuthUser) *models.UserProfile {
	ctx := r.Context()

	username := authUser.MetadataString("username")
	if username == "" {
		username = authUser.Email
		if idx := strings.Index(username, "@"); idx > 0 {
			username = username[:idx]
		}
	}

	s.logger.Info().Str("email", authUser.Email).Msg("Syncing user profile")

	profile, err := store.CreateProfile(ctx, &models.UserProfile{
		ID:       authUser.ID,
		Email:    authUser.Email,
		Username: username,
		Role:     models.RoleUser,
	})
	switch {
	case err == nil:
		return profile

	case errors.Is(err, interfaces.ErrConflict):
		// Another request provisioned the row concurrently; re-read it.
		existing, readErr := store.GetProfile(ctx, authUser.ID)
		if readErr != nil {
			s.logger.Error().Err(readErr).Str("user_id", authUser.ID).Msg("Profile re-read after conflict failed")
			WriteError(w, http.StatusInternalServerError, "Error syncing user profile: "+readErr.Error())
			return nil
		}
		return existing

	case errors.Is(err, interfaces.ErrPermissionDenied):
		// The store's policy blocked an expected write: a deployment defect,
		// not bad input.
		s.logger.Error().Err(err).Str("user_id", authUser.ID).Msg("Profile insert blocked by store policy")
		WriteError(w, http.StatusInternalServerError, "Database Permission Error: Please ensure RLS policies allow INSERT.")
		return nil

	default:
		s.logger.Error().Err(err).Str("user_id", authUser.ID).Msg("Profile sync failed")
		WriteError(w, http.StatusInternalServerError, "Error syncing user profile: "+err.Error())
		return nil
	}
}

// admin composes after protect and passes through only admin-role profiles.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := common.ResolveUser(r.Context())
		if user == nil || user.Role != models.RoleAdmin {
			WriteError(w, http.StatusUnauthorized, "Not authorized as an admin")
			return
		}
		next(w, r)
	}
}

// applyMiddleware wraps a handler with the middleware stack.
func applyMiddleware(handler http.Handler, logger *common.Logger) http.Handler {
	// Apply in reverse order (last applied = first executed)
	handler = loggingMiddleware(logger)(handler)
	handler = correlationIDMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)
	return handler
}
