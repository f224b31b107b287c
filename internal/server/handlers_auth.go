package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

// signLocalToken creates the legacy local session token returned at
// registration. Sessions otherwise use identity-service tokens; this one is
// kept for older clients.
func signLocalToken(id, role string, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   id,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Store.Privileged()

	// Existence check comes first so a duplicate registration does no
	// hashing and no insert.
	_, err := store.GetProfileByEmail(ctx, req.Email)
	if err == nil {
		WriteError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Registration lookup failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Password hashing failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	user, err := store.CreateProfile(ctx, &models.UserProfile{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleUser,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Registration insert failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	token, err := signLocalToken(user.ID, user.Role, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign session token")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"model": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
			"token":    token,
		},
	})
}

// handleMagicLink handles POST /api/auth/magic-link. Deprecated: clients
// sign in against the identity service directly.
func (s *Server) handleMagicLink(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	WriteError(w, http.StatusBadRequest, "Use Supabase Auth on client directly.")
}

// handleMe handles GET /api/auth/me. The profile was attached by the auth
// gate; the password hash is stripped.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	user := common.ResolveUser(r.Context())
	WriteJSON(w, http.StatusOK, user.Sanitized())
}
