package server

import (
	"net/http"

	"github.com/mibolsillo/server/internal/models"
)

// handleAdminUsers handles GET /api/admin/users: every registered profile,
// passwords stripped.
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	profiles, err := s.app.Store.Privileged().ListProfiles(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Admin user list failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	sanitized := make([]*models.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		sanitized = append(sanitized, p.Sanitized())
	}

	WriteJSON(w, http.StatusOK, sanitized)
}
