package server

import (
	"net/http"
	"strings"
)

// handleChat handles POST /api/chat: forwards the user's message to the
// assistant backend and returns its reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := s.app.ChatService.GetChatResponse(r.Context(), req.Message)
	if err != nil {
		s.logger.Error().Err(err).Msg("Chat request failed")
		WriteErrorCause(w, http.StatusInternalServerError, "Error processing chat", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"response": reply})
}
