package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	salonErrors "github.com/ninhvo/salonmate/internal/errors"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	TurnID      string   `json:"turn_id"`
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions"`
	Degraded    bool     `json:"degraded,omitempty"`
}

type suggestionsRequest struct {
	SessionID string `json:"session_id"`
	Topic     string `json:"topic,omitempty"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.orch.HandleTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Suggestions ride along best-effort; a miss never fails the turn.
	suggestions, err := s.orch.Suggestions(r.Context(), req.SessionID, "")
	if err != nil {
		suggestions = []string{}
	}

	respondJSON(w, http.StatusOK, chatResponse{
		TurnID:      result.TurnID,
		Reply:       result.Reply,
		Suggestions: suggestions,
		Degraded:    result.Degraded,
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" && req.Topic == "" {
		respondError(w, http.StatusBadRequest, "session_id or topic is required")
		return
	}

	suggestions, err := s.orch.Suggestions(r.Context(), req.SessionID, req.Topic)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required")
		return
	}

	s.orch.ClearConversation(sessionID)
	respondJSON(w, http.StatusNoContent, nil)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, salonErrors.ErrUnknownSession):
		respondError(w, http.StatusNotFound, "unknown session")
	case errors.Is(err, salonErrors.ErrInvalidArguments):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
