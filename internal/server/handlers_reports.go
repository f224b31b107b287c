package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mibolsillo/server/internal/common"
)

// handleReportPDF handles GET /api/reports/pdf: a monthly movement report
// as a downloadable PDF. year and month default to the current month; an
// out-of-range month falls back to the current one.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			year = v
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 12 {
			month = v
		}
	}

	ctx := r.Context()
	uc := common.UserContextFromContext(ctx)
	store := s.app.Store.Scoped(uc.Token)

	// The report is rendered into memory first so a mid-generation failure
	// never leaves a truncated PDF on the wire.
	var buf bytes.Buffer
	if err := s.app.ReportService.GenerateMonthly(ctx, store, uc.User, year, month, &buf); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", uc.User.ID).
			Int("year", year).
			Int("month", month).
			Msg("Report generation failed")
		WriteError(w, http.StatusInternalServerError, "Error generating PDF: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=reporte_%d.pdf", time.Now().UnixMilli()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
