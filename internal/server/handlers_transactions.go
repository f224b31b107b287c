package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

// handleTransactions dispatches /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTransactionList(w, r)
	case http.MethodPost:
		s.handleTransactionCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTransactionList handles GET /api/transactions: the caller's
// transactions with joined categories, newest date first.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uc := common.UserContextFromContext(ctx)
	store := s.app.Store.Scoped(uc.Token)

	txs, err := store.ListTransactions(ctx, uc.User.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uc.User.ID).Msg("Transaction list failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, txs)
}

// parseDate accepts the client's date formats: RFC 3339 or a bare day.
func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// handleTransactionCreate handles POST /api/transactions.
func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      *decimal.Decimal `json:"amount"`
		Description string           `json:"description"`
		Date        string           `json:"date"`
		CategoryID  string           `json:"categoryId"`
		// Older clients send the category reference under "category".
		LegacyCategory string `json:"category"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	categoryID := req.CategoryID
	if categoryID == "" {
		categoryID = req.LegacyCategory
	}

	if req.Amount == nil || req.Description == "" || req.Date == "" || categoryID == "" {
		WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	date, ok := parseDate(req.Date)
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	ctx := r.Context()
	uc := common.UserContextFromContext(ctx)
	store := s.app.Store.Scoped(uc.Token)

	tx, err := store.CreateTransaction(ctx, &models.NewTransaction{
		UserID:      uc.User.ID,
		Amount:      *req.Amount,
		Description: req.Description,
		Date:        date,
		CategoryID:  categoryID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uc.User.ID).Msg("Transaction insert failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, tx)
}

// handleTransactionByID handles DELETE /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/transactions/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Transaction id is required")
		return
	}

	ctx := r.Context()
	user := common.ResolveUser(ctx)

	// Ownership is checked on a privileged read so a foreign row is
	// distinguishable from a missing one; the caller's scoped client would
	// hide both.
	store := s.app.Store.Privileged()

	tx, err := store.GetTransaction(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("Transaction lookup failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	if tx.UserID != user.ID {
		WriteError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	if err := store.DeleteTransaction(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("Transaction delete failed")
		WriteError(w, http.StatusInternalServerError, "Server error: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Transaction removed"})
}
