package server

import (
	"net/http"

	"github.com/mibolsillo/server/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/magic-link", s.handleMagicLink)
	mux.HandleFunc("/api/auth/me", s.protect(s.handleMe))

	// Transactions
	mux.HandleFunc("/api/transactions", s.protect(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.protect(s.handleTransactionByID))

	// Reports
	mux.HandleFunc("/api/reports/pdf", s.protect(s.handleReportPDF))

	// Chat
	mux.HandleFunc("/api/chat", s.protect(s.handleChat))

	// Admin
	mux.HandleFunc("/api/admin/users", s.protect(s.admin(s.handleAdminUsers)))
}

// handleRoot responds on / with a plain liveness message.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("MiBolsillo API Running with Supabase"))
}

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to GET /api/version with version info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
