package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mwrona/vocaflash/internal/auth"
)

func (s *Server) handleStartFlashcardSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	session, err := s.Flashcards.StartSession(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleFinishFlashcardSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	session, err := s.Flashcards.FinishSession(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleListFlashcardSessions(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	sessions, err := s.Flashcards.ListSessions(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, sessions)
}

func (s *Server) handleGetFlashcardSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	session, err := s.Flashcards.GetSession(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session)
}

type scoreRequest struct {
	Score int `json:"score"`
}

func (s *Server) handleScoreFlashcardItem(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.Flashcards.SendScore(r.Context(), chi.URLParam(r, "id"), user.ID, req.Score)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, item)
}
